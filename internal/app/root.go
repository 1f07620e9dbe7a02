package app

import (
	"context"
	"os"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/client/youtube"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
	spotify_service "github.com/oshokin/spotify-grabber/internal/service/spotify"
)

// ExecuteRootCommand is the entry point for downloads.
// Without URLs it asks for one on standard input.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, urls []string) {
	if len(urls) == 0 {
		url, err := NewURLPrompt(os.Stdin, os.Stdout).Ask(ctx)
		if err != nil {
			logger.Fatalf(ctx, "Failed to read URL: %v", err)
		}

		urls = []string{url}
	}

	spotifyClient, err := spotify.NewClient(cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize Spotify client: %v", err)
	}

	youtubeClient := youtube.NewClient(cfg)

	var (
		urlProcessor    = spotify_service.NewURLProcessor()
		catalogAdapter  = spotify_service.NewCatalogAdapter(spotifyClient)
		templateManager = spotify_service.NewTemplateManager(ctx, cfg)
		ranker          = spotify_service.NewCandidateRanker(cfg.MatchStrategy)
		mediaDownloader = spotify_service.NewMediaDownloader(cfg, youtubeClient, ranker)
		tagProcessor    = spotify_service.NewTagProcessor()
	)

	s, err := spotify_service.NewService(
		cfg,
		spotifyClient,
		urlProcessor,
		catalogAdapter,
		templateManager,
		mediaDownloader,
		tagProcessor)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize download service: %v", err)
	}

	// Ensure statistics are ALWAYS printed, even on panic.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		s.PrintDownloadSummary(ctx)
	}()

	s.DownloadURLs(ctx, urls)
}
