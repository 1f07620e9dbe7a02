package spotify

//go:generate $MOCKGEN -source=service.go -destination=mocks/service_mock.go

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// Service provides methods for downloading audio for Spotify URLs.
type Service interface {
	// DownloadURLs runs the full pipeline for every URL, one URL after another.
	DownloadURLs(ctx context.Context, urls []string)
	// PrintDownloadSummary prints a formatted summary of download statistics.
	PrintDownloadSummary(ctx context.Context)
}

// ServiceImpl implements the download pipeline.
type ServiceImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// spotifyClient downloads cover art.
	spotifyClient spotify.Client
	// urlProcessor handles URL parsing.
	urlProcessor URLProcessor
	// catalogAdapter resolves references into track records.
	catalogAdapter CatalogAdapter
	// templateManager generates filenames and folder names.
	templateManager TemplateManager
	// mediaDownloader locates and transcodes tracks.
	mediaDownloader MediaDownloader
	// tagProcessor writes metadata tags to audio files.
	tagProcessor TagProcessor
	// errorHandler logs and records failures.
	errorHandler *ErrorHandler
	// coversCache keeps cover images by URL, album tracks share one cover.
	coversCache *lru.Cache[string, []byte]
	// stats tracks download statistics for the current session.
	stats *DownloadStatistics
	// statsMutex protects concurrent access to statistics.
	statsMutex *sync.Mutex
}

// coversCacheSize defines the maximum number of cover images kept in memory.
const coversCacheSize = 64

// NewService creates a download service instance with dependency-injected components.
func NewService(
	cfg *config.Config,
	spotifyClient spotify.Client,
	urlProcessor URLProcessor,
	catalogAdapter CatalogAdapter,
	templateManager TemplateManager,
	mediaDownloader MediaDownloader,
	tagProcessor TagProcessor,
) (Service, error) {
	return newServiceImpl(
		cfg,
		spotifyClient,
		urlProcessor,
		catalogAdapter,
		templateManager,
		mediaDownloader,
		tagProcessor)
}

func newServiceImpl(
	cfg *config.Config,
	spotifyClient spotify.Client,
	urlProcessor URLProcessor,
	catalogAdapter CatalogAdapter,
	templateManager TemplateManager,
	mediaDownloader MediaDownloader,
	tagProcessor TagProcessor,
) (*ServiceImpl, error) {
	coversCache, err := lru.New[string, []byte](coversCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create covers cache: %w", err)
	}

	s := &ServiceImpl{
		cfg:             cfg,
		spotifyClient:   spotifyClient,
		urlProcessor:    urlProcessor,
		catalogAdapter:  catalogAdapter,
		templateManager: templateManager,
		mediaDownloader: mediaDownloader,
		tagProcessor:    tagProcessor,
		coversCache:     coversCache,
		stats:           new(DownloadStatistics),
		statsMutex:      new(sync.Mutex),
	}

	s.errorHandler = NewErrorHandler(s)

	return s, nil
}

// DownloadURLs runs the full pipeline for every URL, one URL after another.
// Failures are logged and recorded; the method always returns normally.
func (s *ServiceImpl) DownloadURLs(ctx context.Context, urls []string) {
	s.statsMutex.Lock()
	s.stats.StartTime = time.Now()
	s.stats.IsDryRun = s.cfg.DryRun
	s.statsMutex.Unlock()

	items, err := s.urlProcessor.ExtractDownloadItems(ctx, urls)
	if err != nil {
		logger.Errorf(ctx, "Failed to extract items to download: %v", err)

		return
	}

	logger.Info(ctx, "Starting download process")

	itemsCount := len(items)

	for index, item := range items {
		// Check if context was canceled (CTRL+C pressed) - stop immediately.
		if ctx.Err() != nil {
			break
		}

		logger.Infof(ctx, "Processing %s (%d / %d)", item.URL, index+1, itemsCount)

		s.downloadItem(ctx, item)
	}

	logger.Info(ctx, "Download process completed")

	s.statsMutex.Lock()
	s.stats.EndTime = time.Now()
	s.statsMutex.Unlock()
}

// downloadItem runs one reference through fetch, path preparation and dispatch.
// It returns the paths of the produced files in track order.
func (s *ServiceImpl) downloadItem(ctx context.Context, item *DownloadItem) []string {
	s.incrementURLsProcessed()

	if item.Category == DownloadCategoryUnknown {
		s.errorHandler.HandleError(ctx, fmt.Errorf("%w: %s", ErrInvalidURL, item.URL), &ErrorContext{
			Category:  DownloadCategoryUnknown,
			ItemTitle: item.URL,
			ItemURL:   item.URL,
			Phase:     phaseParsingURL,
		})

		return nil
	}

	collection, err := s.catalogAdapter.FetchCollection(ctx, item)
	if s.errorHandler.HandleError(ctx, err, &ErrorContext{
		Category:  item.Category,
		ItemID:    item.ItemID,
		ItemTitle: item.URL,
		ItemURL:   item.URL,
		Phase:     phaseFetchingCatalog,
	}) {
		return nil
	}

	if len(collection.Tracks) == 0 {
		logger.Warnf(ctx, "%s '%s': %v", collection.Category, collection.Name, ErrEmptyCollection)

		return nil
	}

	directory, err := s.prepareDirectory(ctx, collection)
	if s.errorHandler.HandleError(ctx, err, &ErrorContext{
		Category:  collection.Category,
		ItemID:    collection.ID,
		ItemTitle: collection.Name,
		ItemURL:   collection.URL,
		Phase:     phasePreparingDirectory,
	}) {
		return nil
	}

	var (
		filenames = s.templateManager.AssignFilenames(ctx, collection)
		contexts  = make([]*TrackDownloadContext, 0, len(collection.Tracks))
	)

	for i := range collection.Tracks {
		contexts = append(contexts,
			NewTrackDownloadContext(collection, i, directory, filenames[i], s.cfg.SearchQuerySuffix))
	}

	var results []*MediaResult

	if isSingleDownload(collection) {
		results = []*MediaResult{s.downloadTrack(ctx, contexts[0])}
	} else {
		results = s.downloadTracks(ctx, collection, contexts)
	}

	paths := make([]string, 0, len(results))

	for _, result := range results {
		if !result.IsAbsent() {
			paths = append(paths, result.Path)
		}
	}

	logger.Infof(ctx, "Downloaded %d/%d tracks of %s '%s'",
		len(paths), len(collection.Tracks), collection.Category, collection.Name)

	return paths
}

// isSingleDownload reports whether a collection is downloaded inline into the output folder.
func isSingleDownload(collection *Collection) bool {
	return collection.Category == DownloadCategoryTrack || len(collection.Tracks) == 1
}

// prepareDirectory creates the output folder and, for multi-track collections, the collection folder.
// Returns the folder the tracks of the collection are written to.
func (s *ServiceImpl) prepareDirectory(ctx context.Context, collection *Collection) (string, error) {
	directory := s.cfg.OutputPath
	if !isSingleDownload(collection) {
		directory = filepath.Join(directory, s.templateManager.GetCollectionFolderName(collection))
	}

	if s.cfg.DryRun {
		logger.Infof(ctx, "[DRY-RUN] Would create directory: %s", directory)

		return directory, nil
	}

	if err := os.MkdirAll(directory, constants.DefaultFolderPermissions); err != nil {
		return "", fmt.Errorf("failed to create directory '%s': %w", directory, err)
	}

	return directory, nil
}
