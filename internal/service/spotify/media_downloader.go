package spotify

//go:generate $MOCKGEN -source=media_downloader.go -destination=mocks/media_downloader_mock.go

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oshokin/spotify-grabber/internal/client/youtube"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// MediaDownloader locates a track on the search index and transcodes it into the output folder.
type MediaDownloader interface {
	// Download never returns an error: failures are reported as an absent result with Err set.
	Download(ctx context.Context, req *MediaRequest) *MediaResult
}

// MediaDownloaderImpl implements MediaDownloader on top of the YouTube client.
type MediaDownloaderImpl struct {
	youtubeClient    youtube.Client
	ranker           CandidateRanker
	audioFormat      string
	audioQuality     string
	searchCandidates int
	replaceTracks    bool
	isDryRun         bool
}

// outputTemplateExtension lets yt-dlp pick the extension; ffmpeg then rewrites it to the target format.
const outputTemplateExtension = ".%(ext)s"

// NewMediaDownloader creates and returns a new instance of MediaDownloaderImpl.
func NewMediaDownloader(cfg *config.Config, youtubeClient youtube.Client, ranker CandidateRanker) MediaDownloader {
	return &MediaDownloaderImpl{
		youtubeClient:    youtubeClient,
		ranker:           ranker,
		audioFormat:      cfg.AudioFormat,
		audioQuality:     cfg.AudioQuality,
		searchCandidates: int(cfg.SearchCandidates),
		replaceTracks:    cfg.ReplaceTracks,
		isDryRun:         cfg.DryRun,
	}
}

// ExpectedPath returns where the transcoded file of a request ends up.
func (md *MediaDownloaderImpl) ExpectedPath(req *MediaRequest) string {
	return filepath.Join(req.Directory, req.BaseFilename+constants.AudioFormatExtension(md.audioFormat))
}

// Download locates, downloads and transcodes a track.
// Success is decided only by the presence of the expected file once the transcoder has finished.
func (md *MediaDownloaderImpl) Download(ctx context.Context, req *MediaRequest) *MediaResult {
	expectedPath := md.ExpectedPath(req)

	if !md.replaceTracks {
		isExist, err := utils.IsFileExist(expectedPath)
		if err != nil {
			return md.absent(ctx, req, fmt.Errorf("failed to check if track file exists: %w", err))
		}

		if isExist {
			logger.Infof(ctx, "Track '%s' already exists, skipping", expectedPath)

			return &MediaResult{
				Path:         expectedPath,
				Skipped:      true,
				BytesWritten: 0,
			}
		}
	}

	videos, err := md.youtubeClient.Search(ctx, req.Query, md.searchCandidates)
	if err != nil {
		return md.absent(ctx, req, err)
	}

	video := md.ranker.Choose(req.Track, videos)
	if video == nil {
		return md.absent(ctx, req, fmt.Errorf("%w for '%s'", ErrNoSearchResults, req.Query))
	}

	logger.Debugf(ctx, "Query '%s' matched '%s' (%s)", req.Query, video.Title, video.URL)

	if md.isDryRun {
		logger.Infof(ctx, "[DRY-RUN] Would download '%s' to %s", video.URL, expectedPath)

		return &MediaResult{Path: expectedPath, Video: video}
	}

	downloadRequest := &youtube.DownloadAudioRequest{
		VideoURL:       video.URL,
		OutputTemplate: filepath.Join(req.Directory, escapeOutputTemplate(req.BaseFilename)) + outputTemplateExtension,
		AudioFormat:    md.audioFormat,
		AudioQuality:   md.audioQuality,
	}

	if logger.IsDebugLevel() {
		downloadRequest.OnProgress = func(downloadedBytes, totalBytes int64) {
			logger.Debugf(ctx, "'%s': %d of %d bytes", req.BaseFilename, downloadedBytes, totalBytes)
		}
	}

	if err = md.youtubeClient.DownloadAudio(ctx, downloadRequest); err != nil {
		return md.absent(ctx, req, err)
	}

	isExist, err := utils.IsFileExist(expectedPath)
	if err != nil || !isExist {
		return md.absent(ctx, req, fmt.Errorf("%w: %s", ErrOutputMissing, expectedPath))
	}

	logger.Infof(ctx, "Downloaded '%s'", expectedPath)

	return &MediaResult{
		Path:         expectedPath,
		Video:        video,
		BytesWritten: utils.FileSize(expectedPath),
	}
}

func (md *MediaDownloaderImpl) absent(ctx context.Context, req *MediaRequest, err error) *MediaResult {
	if !errors.Is(err, context.Canceled) {
		logger.Errorf(ctx, "Failed to download '%s': %v", req.Query, err)
	}

	return &MediaResult{Err: err}
}

// escapeOutputTemplate keeps yt-dlp from expanding '%' sequences that are part of a file name.
func escapeOutputTemplate(name string) string {
	return strings.ReplaceAll(name, "%", "%%")
}
