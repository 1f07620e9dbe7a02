package spotify

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	mock_spotify "github.com/oshokin/spotify-grabber/internal/client/spotify/mocks"
	"github.com/oshokin/spotify-grabber/internal/client/youtube"
	mock_youtube "github.com/oshokin/spotify-grabber/internal/client/youtube/mocks"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/constants"
)

// testTrack builds a track record with the fields the pipeline relies on.
func testTrack(id, title string, artists ...string) *spotify.Track {
	return &spotify.Track{
		ID:          id,
		Title:       title,
		ArtistNames: artists,
		AlbumName:   "Test Album",
		ReleaseDate: "2020-01-02",
		TrackNumber: 1,
		DiscNumber:  1,
		Duration:    3 * time.Minute,
	}
}

// testVideo builds a search result.
func testVideo(id, title string, duration time.Duration) *youtube.Video {
	return &youtube.Video{
		ID:       id,
		Title:    title,
		URL:      "https://www.youtube.com/watch?v=" + id,
		Duration: duration,
	}
}

// newTestConfig returns a validated-looking configuration writing into a temporary folder.
func newTestConfig(t *testing.T, overrides ...func(*config.Config)) *config.Config {
	t.Helper()

	cfg := &config.Config{
		ClientID:                     "id",
		ClientSecret:                 "secret",
		OutputPath:                   t.TempDir(),
		AudioFormat:                  constants.AudioFormatMP3,
		AudioQuality:                 config.DefaultAudioQuality,
		SearchQuerySuffix:            config.DefaultSearchQuerySuffix,
		SearchCandidates:             1,
		MatchStrategy:                config.MatchStrategyFirst,
		FilenameTemplate:             config.DefaultFilenameTemplate,
		ParsedMaxConcurrentDownloads: 2,
	}

	for _, override := range overrides {
		override(cfg)
	}

	return cfg
}

// outputPathFromTemplate resolves a yt-dlp output template the way the transcoder would for cfg's format.
func outputPathFromTemplate(outputTemplate, audioFormat string) string {
	path := strings.TrimSuffix(outputTemplate, outputTemplateExtension) + constants.AudioFormatExtension(audioFormat)

	return strings.ReplaceAll(path, "%%", "%")
}

// writeTranscodedFile imitates a successful yt-dlp run.
func writeTranscodedFile(audioFormat string) func(context.Context, *youtube.DownloadAudioRequest) error {
	return func(_ context.Context, req *youtube.DownloadAudioRequest) error {
		return os.WriteFile(
			outputPathFromTemplate(req.OutputTemplate, audioFormat),
			[]byte("audio"),
			constants.DefaultFilePermissions)
	}
}

// fakeTagProcessor records tag requests.
type fakeTagProcessor struct {
	mu       sync.Mutex
	requests []*WriteTagsRequest
	err      error
}

func (f *fakeTagProcessor) WriteTags(_ context.Context, req *WriteTagsRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)

	return f.err
}

// testServiceSetup bundles a service with its mocked clients.
type testServiceSetup struct {
	service       *ServiceImpl
	cfg           *config.Config
	spotifyClient *mock_spotify.MockClient
	youtubeClient *mock_youtube.MockClient
	tagProcessor  *fakeTagProcessor
}

func newTestServiceSetup(t *testing.T, overrides ...func(*config.Config)) *testServiceSetup {
	t.Helper()

	var (
		ctrl          = gomock.NewController(t)
		cfg           = newTestConfig(t, overrides...)
		spotifyClient = mock_spotify.NewMockClient(ctrl)
		youtubeClient = mock_youtube.NewMockClient(ctrl)
		tagProcessor  = new(fakeTagProcessor)
	)

	service, err := newServiceImpl(
		cfg,
		spotifyClient,
		NewURLProcessor(),
		NewCatalogAdapter(spotifyClient),
		NewTemplateManager(t.Context(), cfg),
		NewMediaDownloader(cfg, youtubeClient, NewCandidateRanker(cfg.MatchStrategy)),
		tagProcessor)
	require.NoError(t, err)

	return &testServiceSetup{
		service:       service,
		cfg:           cfg,
		spotifyClient: spotifyClient,
		youtubeClient: youtubeClient,
		tagProcessor:  tagProcessor,
	}
}

// subdirectories lists the folders directly inside dir.
func subdirectories(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var result []string

	for _, entry := range entries {
		if entry.IsDir() {
			result = append(result, entry.Name())
		}
	}

	return result
}
