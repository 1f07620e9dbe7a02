package spotify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/spotify-grabber/internal/logger"
)

const (
	// unknownParentKey is used as a fallback key when parent collection is unknown.
	unknownParentKey = "unknown"
	// summarySeparator frames the summary.
	summarySeparator = "═══════════════════════════════════════════════════════════════"
	// retryCommandName starts the suggested retry command.
	retryCommandName = "spotify-grabber"
)

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

func (s *ServiceImpl) incrementURLsProcessed() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.URLsProcessed++
}

// incrementTrackDownloaded increments the downloaded tracks counter and adds bytes.
func (s *ServiceImpl) incrementTrackDownloaded(bytes int64) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TracksDownloaded++
	s.stats.TotalTracksProcessed++
	s.stats.TotalBytesDownloaded += bytes
}

// incrementTrackSkipped increments the counter of tracks that already existed.
func (s *ServiceImpl) incrementTrackSkipped() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TracksSkipped++
	s.stats.TotalTracksProcessed++
}

func (s *ServiceImpl) incrementTrackNotFound() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TracksNotFound++
	s.stats.TotalTracksProcessed++
}

// incrementTrackFailed increments the failed tracks counter.
func (s *ServiceImpl) incrementTrackFailed() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TracksFailed++
	s.stats.TotalTracksProcessed++
}

func (s *ServiceImpl) incrementTagsWritten() {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.TagsWritten++
}

// groupErrors separates track errors from collection errors for better display organization.
func (s *ServiceImpl) groupErrors(errors []DownloadError) (trackErrors, collectionErrors []DownloadError) {
	for i := range errors {
		if errors[i].Category == DownloadCategoryTrack {
			trackErrors = append(trackErrors, errors[i])
		} else {
			collectionErrors = append(collectionErrors, errors[i])
		}
	}

	return trackErrors, collectionErrors
}

// PrintDownloadSummary prints a formatted summary of download statistics.
func (s *ServiceImpl) PrintDownloadSummary(ctx context.Context) {
	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	stats := s.stats

	// If nothing was processed, don't print summary.
	if stats.URLsProcessed == 0 && len(stats.Errors) == 0 {
		return
	}

	// Check if the context was canceled (CTRL+C or timeout).
	wasInterrupted := ctx.Err() != nil

	s.printSummaryHeader(ctx, wasInterrupted, stats.IsDryRun)
	s.printTrackStatistics(ctx, stats)
	s.printDataTransferStatistics(ctx, stats)
	logger.Info(ctx, summarySeparator)
	s.printErrorDetails(ctx, stats)
	s.printFinalMessage(ctx, wasInterrupted, stats)
}

func (s *ServiceImpl) printSummaryHeader(ctx context.Context, wasInterrupted, isDryRun bool) {
	title := "                     DOWNLOAD SUMMARY"

	switch {
	case isDryRun:
		title = "                  DRY-RUN PREVIEW"
	case wasInterrupted:
		title = "           DOWNLOAD SUMMARY (Interrupted)"
	}

	logger.Info(ctx, "")
	logger.Info(ctx, summarySeparator)
	logger.Info(ctx, title)
	logger.Info(ctx, summarySeparator)
}

func (s *ServiceImpl) printTrackStatistics(ctx context.Context, stats *DownloadStatistics) {
	logger.Infof(ctx, "URLs:             %d processed", stats.URLsProcessed)
	logger.Infof(ctx, "Tracks:           %d total processed", stats.TotalTracksProcessed)

	downloadedLabel := "  Downloaded:      %d"
	if stats.IsDryRun {
		downloadedLabel = "  Would Download:  %d"
	}

	if stats.TracksDownloaded > 0 {
		logger.Infof(ctx, downloadedLabel, stats.TracksDownloaded)
	}

	if stats.TracksSkipped > 0 {
		logger.Infof(ctx, "  Already Exist:   %d", stats.TracksSkipped)
	}

	if stats.TracksNotFound > 0 {
		logger.Infof(ctx, "  Not Found:       %d", stats.TracksNotFound)
	}

	if stats.TracksFailed > 0 {
		logger.Infof(ctx, "  Failed:          %d", stats.TracksFailed)
	}

	if stats.TagsWritten > 0 {
		logger.Infof(ctx, "  Tagged:          %d", stats.TagsWritten)
	}

	if stats.TotalTracksProcessed > 0 && !stats.IsDryRun {
		successCount := stats.TracksDownloaded + stats.TracksSkipped
		successRate := float64(successCount) / float64(stats.TotalTracksProcessed) * 100
		logger.Infof(ctx, "  Success Rate:    %.1f%%", successRate)
	}
}

func (s *ServiceImpl) printDataTransferStatistics(ctx context.Context, stats *DownloadStatistics) {
	if stats.TotalBytesDownloaded > 0 {
		logger.Info(ctx, "")
		//nolint:gosec // TotalBytesDownloaded is always positive, no overflow risk.
		logger.Infof(ctx, "Data Written:     %s", humanize.Bytes(uint64(stats.TotalBytesDownloaded)))
	}

	if stats.IsDryRun || stats.StartTime.IsZero() || stats.EndTime.IsZero() {
		return
	}

	duration := stats.EndTime.Sub(stats.StartTime)

	// Only show if duration is meaningful (> 100ms).
	if duration > 100*time.Millisecond {
		logger.Infof(ctx, "Duration:         %s", formatDuration(duration))
	}
}

// printErrorDetails prints detailed error information if any errors occurred.
func (s *ServiceImpl) printErrorDetails(ctx context.Context, stats *DownloadStatistics) {
	if len(stats.Errors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "ERRORS ENCOUNTERED: %d", len(stats.Errors))

	trackErrors, collectionErrors := s.groupErrors(stats.Errors)

	s.printCollectionErrors(ctx, collectionErrors)
	s.printTrackErrors(ctx, trackErrors)

	logger.Info(ctx, "")
	logger.Info(ctx, summarySeparator)

	s.printRetryCommand(ctx, stats.Errors)
}

// printCollectionErrors prints URL-level errors (invalid URLs, albums, playlists, single tracks).
func (s *ServiceImpl) printCollectionErrors(ctx context.Context, collectionErrors []DownloadError) {
	if len(collectionErrors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "URL ERRORS:")

	for i := range collectionErrors {
		e := &collectionErrors[i]

		logger.Info(ctx, "")
		logger.Errorf(ctx, "  [%d] %s: %s", i+1, e.Category, e.ItemTitle)

		if e.ItemURL != "" && e.ItemURL != e.ItemTitle {
			logger.Errorf(ctx, "      URL: %s", e.ItemURL)
		}

		if e.ItemID != "" {
			logger.Errorf(ctx, "      ID: %s", e.ItemID)
		}

		logger.Errorf(ctx, "      Phase: %s", e.Phase)
		logger.Errorf(ctx, "      Error: %s", e.ErrorMessage)
	}
}

// printTrackErrors prints track-level errors grouped by parent collection.
func (s *ServiceImpl) printTrackErrors(ctx context.Context, trackErrors []DownloadError) {
	if len(trackErrors) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Errorf(ctx, "TRACK ERRORS:")

	keys, parentGroups := s.groupTrackErrorsByParent(trackErrors)

	for _, key := range keys {
		s.printParentGroupErrors(ctx, parentGroups[key])
	}
}

// groupTrackErrorsByParent groups track errors by their parent collection, keeping first-seen order.
func (s *ServiceImpl) groupTrackErrorsByParent(
	trackErrors []DownloadError,
) ([]string, map[string][]DownloadError) {
	var (
		keys         []string
		parentGroups = make(map[string][]DownloadError)
	)

	for i := range trackErrors {
		key := trackErrors[i].ParentID
		if key == "" {
			key = unknownParentKey
		}

		if _, ok := parentGroups[key]; !ok {
			keys = append(keys, key)
		}

		parentGroups[key] = append(parentGroups[key], trackErrors[i])
	}

	return keys, parentGroups
}

// printParentGroupErrors prints errors for tracks from a specific parent collection.
func (s *ServiceImpl) printParentGroupErrors(ctx context.Context, errs []DownloadError) {
	firstErr := errs[0]

	logger.Info(ctx, "")

	if firstErr.ParentTitle != "" {
		logger.Errorf(ctx, "  From %s: %s (ID: %s)",
			firstErr.ParentCategory, firstErr.ParentTitle, firstErr.ParentID)
	} else {
		logger.Errorf(ctx, "  Single tracks:")
	}

	for i := range errs {
		logger.Info(ctx, "")
		logger.Errorf(ctx, "    [%d] %s", i+1, errs[i].ItemTitle)
		logger.Errorf(ctx, "        Track ID: %s", errs[i].ItemID)
		logger.Errorf(ctx, "        Phase: %s", errs[i].Phase)
		logger.Errorf(ctx, "        Error: %s", errs[i].ErrorMessage)
	}
}

// printRetryCommand prints a command that retries the collections whose fetch failed.
func (s *ServiceImpl) printRetryCommand(ctx context.Context, errors []DownloadError) {
	var (
		urlsMap = make(map[string]bool)
		urls    []string
	)

	for i := range errors {
		// Only references that could be retried as a whole; invalid URLs would fail again.
		if errors[i].Category == DownloadCategoryTrack || errors[i].Category == DownloadCategoryUnknown {
			continue
		}

		if errors[i].ItemURL == "" || urlsMap[errors[i].ItemURL] {
			continue
		}

		urlsMap[errors[i].ItemURL] = true
		urls = append(urls, errors[i].ItemURL)
	}

	if len(urls) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Info(ctx, "To retry only failed downloads, run:")
	logger.Info(ctx, "")
	logger.Infof(ctx, "  %s %s", retryCommandName, strings.Join(urls, " "))
}

// printFinalMessage prints a helpful message based on download results.
func (s *ServiceImpl) printFinalMessage(ctx context.Context, wasInterrupted bool, stats *DownloadStatistics) {
	if stats.IsDryRun {
		if stats.TracksDownloaded > 0 {
			logger.Info(ctx, "")
			logger.Info(ctx, "To proceed with actual download, remove the --dry-run flag.")
		}

		return
	}

	switch {
	case wasInterrupted:
		logger.Info(ctx, "")
		logger.Warn(ctx, "Download interrupted by user (CTRL+C).")

		if stats.TracksDownloaded > 0 {
			logger.Infof(ctx, "Successfully downloaded %d track(s) before interruption.", stats.TracksDownloaded)
		}
	case len(stats.Errors) > 0:
		logger.Info(ctx, "")
		logger.Warnf(ctx, "%d error(s) occurred during download. See detailed error log above.", len(stats.Errors))
	case stats.TracksDownloaded > 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "All downloads completed successfully!")
	case stats.TracksSkipped > 0:
		logger.Info(ctx, "")
		logger.Info(ctx, "All tracks already exist in the output directory.")
	}
}
