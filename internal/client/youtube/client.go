package youtube

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"golang.org/x/time/rate"

	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
	http_transport "github.com/oshokin/spotify-grabber/internal/transport/http"
)

// Client defines the interface for searching YouTube and downloading audio from it.
type Client interface {
	// Search returns up to limit videos matching the query, in search index order.
	Search(ctx context.Context, query string, limit int) ([]*Video, error)
	// DownloadAudio downloads a video's best audio stream and transcodes it.
	DownloadAudio(ctx context.Context, req *DownloadAudioRequest) error
}

// ClientImpl implements the Client interface by running yt-dlp.
type ClientImpl struct {
	// ffmpegPath is passed as --ffmpeg-location when set.
	ffmpegPath string
	// retries is passed as --retries.
	retries int64
	// speedLimit is passed as --limit-rate when positive, in bytes per second.
	speedLimit int64
	// limiter paces yt-dlp invocations; nil disables pacing.
	limiter *rate.Limiter
}

const (
	// watchURLPrefix builds a watch URL from a video ID.
	watchURLPrefix = "https://www.youtube.com/watch?v="
	// searchPrefix is the yt-dlp pseudo-URL scheme for YouTube searches.
	searchPrefix = "ytsearch"
	// audioFormatSelector picks the best audio-only stream, or the best muxed one.
	audioFormatSelector = "bestaudio/best"
	// progressInterval is how often download progress is reported.
	progressInterval = 500 * time.Millisecond
)

// NewClient creates and returns a new instance of ClientImpl.
func NewClient(cfg *config.Config) Client {
	return &ClientImpl{
		ffmpegPath: cfg.FFmpegPath,
		retries:    cfg.RetryAttemptsCount,
		speedLimit: cfg.ParsedDownloadSpeedLimit,
		limiter:    http_transport.NewLimiter(cfg.YouTubeRequestsPerSecond),
	}
}

// Search returns up to limit videos matching the query, in search index order.
func (c *ClientImpl) Search(ctx context.Context, query string, limit int) ([]*Video, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	if limit < 1 {
		limit = 1
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	target := searchPrefix + strconv.Itoa(limit) + ":" + query

	logger.Debugf(ctx, "Searching YouTube: %s", target)

	result, err := ytdlp.New().
		FlatPlaylist().
		DumpSingleJSON().
		SkipDownload().
		NoWarnings().
		Run(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to search for '%s': %w", query, err)
	}

	return parseSearchResult([]byte(result.Stdout))
}

// DownloadAudio downloads a video's best audio stream and transcodes it.
func (c *ClientImpl) DownloadAudio(ctx context.Context, req *DownloadAudioRequest) error {
	if req == nil || req.VideoURL == "" {
		return ErrEmptyVideoURL
	}

	if err := c.wait(ctx); err != nil {
		return err
	}

	command := ytdlp.New().
		Format(audioFormatSelector).
		NoPlaylist().
		ExtractAudio().
		AudioFormat(req.AudioFormat).
		AudioQuality(req.AudioQuality).
		Retries(strconv.FormatInt(c.retries, 10)).
		Output(req.OutputTemplate).
		ForceOverwrites().
		NoWarnings()

	if c.ffmpegPath != "" {
		command = command.FFmpegLocation(c.ffmpegPath)
	}

	if c.speedLimit > 0 {
		command = command.LimitRate(strconv.FormatInt(c.speedLimit, 10))
	}

	if req.OnProgress != nil {
		command = command.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
			req.OnProgress(int64(update.DownloadedBytes), int64(update.TotalBytes))
		})
	}

	logger.Debugf(ctx, "Downloading audio from %s to %s", req.VideoURL, req.OutputTemplate)

	if _, err := command.Run(ctx, req.VideoURL); err != nil {
		return fmt.Errorf("failed to download audio from %s: %w", req.VideoURL, err)
	}

	return nil
}

func (c *ClientImpl) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}

	return c.limiter.Wait(ctx)
}

// parseSearchResult converts yt-dlp's single JSON document into videos.
// Entries without an ID are dropped.
func parseSearchResult(data []byte) ([]*Video, error) {
	var result searchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSearchOutput, err)
	}

	videos := make([]*Video, 0, len(result.Entries))

	for _, entry := range result.Entries {
		if entry == nil || entry.ID == "" {
			continue
		}

		video := &Video{
			ID:      entry.ID,
			Title:   entry.Title,
			Channel: entry.Channel,
			URL:     entry.URL,
		}

		if video.Channel == "" {
			video.Channel = entry.Uploader
		}

		if !strings.HasPrefix(video.URL, "http") {
			video.URL = watchURLPrefix + entry.ID
		}

		if entry.Duration != nil && *entry.Duration > 0 {
			video.Duration = time.Duration(*entry.Duration * float64(time.Second))
		}

		videos = append(videos, video)
	}

	return videos, nil
}
