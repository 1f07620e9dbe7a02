package spotify

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/oshokin/spotify-grabber/internal/logger"
)

// downloadTracks downloads the tracks of a collection on a bounded pool.
// Tasks never cancel each other; results keep submission order.
func (s *ServiceImpl) downloadTracks(
	ctx context.Context,
	collection *Collection,
	contexts []*TrackDownloadContext,
) []*MediaResult {
	var (
		results = make([]*MediaResult, len(contexts))
		bar     = s.newProgressBar(collection)
		group   errgroup.Group
	)

	group.SetLimit(s.cfg.ParsedMaxConcurrentDownloads)

	for i, dctx := range contexts {
		// Stop queueing once the run is canceled; running tasks finish on their own.
		if ctx.Err() != nil {
			break
		}

		group.Go(func() error {
			results[i] = s.downloadTrack(ctx, dctx)

			if bar != nil {
				_ = bar.Add(1) //nolint:errcheck // Progress output is best-effort.
			}

			return nil
		})
	}

	_ = group.Wait() //nolint:errcheck // Tasks report through results, never through errors.

	if bar != nil {
		_ = bar.Finish() //nolint:errcheck // Progress output is best-effort.
	}

	// Tasks that were never queued count as absent.
	for i := range results {
		if results[i] == nil {
			results[i] = &MediaResult{Err: context.Canceled}
		}
	}

	return results
}

func (s *ServiceImpl) newProgressBar(collection *Collection) *progressbar.ProgressBar {
	if !s.cfg.ProgressBar || logger.Level() > zap.InfoLevel {
		return nil
	}

	return progressbar.Default(int64(len(collection.Tracks)), collection.Name)
}

// downloadTrack downloads a single track and writes its tags.
func (s *ServiceImpl) downloadTrack(ctx context.Context, dctx *TrackDownloadContext) *MediaResult {
	result := s.mediaDownloader.Download(ctx, dctx.MediaRequest())

	s.errorHandler.HandleTrackResult(ctx, result, dctx.ErrorContext(phaseDownloadingTrack))

	if result.IsAbsent() || result.Skipped || s.cfg.DryRun || !s.cfg.WriteTags {
		return result
	}

	s.writeTags(ctx, dctx, result.Path)

	return result
}

// writeTags writes catalog metadata into a downloaded file.
// A tagging failure is recorded but leaves the download a success.
func (s *ServiceImpl) writeTags(ctx context.Context, dctx *TrackDownloadContext, trackPath string) {
	var cover []byte

	if s.cfg.EmbedCover && dctx.Track.CoverURL != "" {
		var err error

		cover, err = s.fetchCover(ctx, dctx.Track.CoverURL)
		if err != nil {
			logger.Warnf(ctx, "Failed to download cover for '%s': %v", dctx.Track.Title, err)
		}
	}

	tracksCount := 0
	if dctx.ParentCategory == DownloadCategoryAlbum {
		tracksCount = dctx.TracksCount
	}

	err := s.tagProcessor.WriteTags(ctx, &WriteTagsRequest{
		TrackPath:   trackPath,
		AudioFormat: s.cfg.AudioFormat,
		Track:       dctx.Track,
		TracksCount: tracksCount,
		Cover:       cover,
	})
	if errors.Is(err, ErrUnsupportedTagFormat) {
		logger.Debugf(ctx, "Skipping tags for '%s': %v", trackPath, err)

		return
	}

	if s.errorHandler.HandleError(ctx, err, dctx.ErrorContext(phaseWritingTags)) {
		return
	}

	s.incrementTagsWritten()
}

// fetchCover returns the cover image at url, downloading it once per cache lifetime.
func (s *ServiceImpl) fetchCover(ctx context.Context, url string) ([]byte, error) {
	if cover, ok := s.coversCache.Get(url); ok {
		return cover, nil
	}

	body, err := s.spotifyClient.DownloadFromURL(ctx, url)
	if err != nil {
		return nil, err
	}

	defer body.Close() //nolint:errcheck // Error on close is not critical here.

	cover, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cover: %w", err)
	}

	s.coversCache.Add(url, cover)

	return cover, nil
}
