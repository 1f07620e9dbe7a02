package spotify

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/client/youtube"
	"github.com/oshokin/spotify-grabber/internal/config"
)

// expectSearchHit makes every search return one video.
func (s *testServiceSetup) expectSearchHit() {
	s.youtubeClient.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]*youtube.Video{testVideo("v1", "x", 0)}, nil).
		AnyTimes()
}

// TestServiceImpl_DownloadItem_SingleTrack tests that a track lands in the output folder without a subfolder.
func TestServiceImpl_DownloadItem_SingleTrack(t *testing.T) {
	t.Parallel()

	s := newTestServiceSetup(t)

	s.spotifyClient.EXPECT().GetTrack(gomock.Any(), "t1").Return(testTrack("t1", "Song", "A", "B"), nil)
	s.youtubeClient.EXPECT().Search(gomock.Any(), "A, B - Song official audio", 1).
		Return([]*youtube.Video{testVideo("v1", "x", 0)}, nil)
	s.youtubeClient.EXPECT().DownloadAudio(gomock.Any(), gomock.Any()).DoAndReturn(writeTranscodedFile(s.cfg.AudioFormat))

	paths := s.service.downloadItem(t.Context(), &DownloadItem{
		Category: DownloadCategoryTrack,
		URL:      "https://open.spotify.com/track/t1",
		ItemID:   "t1",
	})

	assert.Equal(t, []string{filepath.Join(s.cfg.OutputPath, "A, B - Song.mp3")}, paths)
	assert.Empty(t, subdirectories(t, s.cfg.OutputPath))
	assert.Equal(t, int64(1), s.service.stats.TracksDownloaded)
}

// TestServiceImpl_DownloadItem_Album tests the collection folder, partial success and result order.
func TestServiceImpl_DownloadItem_Album(t *testing.T) {
	t.Parallel()

	s := newTestServiceSetup(t)

	s.spotifyClient.EXPECT().GetAlbum(gomock.Any(), "a1").Return(&spotify.Album{ID: "a1", Name: "AC/DC: Hits?"}, nil)
	s.spotifyClient.EXPECT().GetAlbumTrackIDs(gomock.Any(), "a1").Return([]string{"t1", "t2", "t3", "t4"}, nil)

	for _, id := range []string{"t1", "t2", "t3", "t4"} {
		s.spotifyClient.EXPECT().GetTrack(gomock.Any(), id).Return(testTrack(id, "Song "+id, "A"), nil).Times(1)
	}

	s.expectSearchHit()
	s.youtubeClient.EXPECT().DownloadAudio(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, req *youtube.DownloadAudioRequest) error {
			if strings.Contains(req.OutputTemplate, "Song t2") {
				return errTranscoderFailed
			}

			return writeTranscodedFile(s.cfg.AudioFormat)(ctx, req)
		}).Times(4)

	paths := s.service.downloadItem(t.Context(), &DownloadItem{
		Category: DownloadCategoryAlbum,
		URL:      "https://open.spotify.com/album/a1",
		ItemID:   "a1",
	})

	folder := filepath.Join(s.cfg.OutputPath, "ACDC Hits")
	assert.Equal(t, []string{
		filepath.Join(folder, "A - Song t1.mp3"),
		filepath.Join(folder, "A - Song t3.mp3"),
		filepath.Join(folder, "A - Song t4.mp3"),
	}, paths)
	assert.Equal(t, []string{"ACDC Hits"}, subdirectories(t, s.cfg.OutputPath))

	stats := s.service.stats
	assert.Equal(t, int64(4), stats.TotalTracksProcessed)
	assert.Equal(t, int64(3), stats.TracksDownloaded)
	assert.Equal(t, int64(1), stats.TracksFailed)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, "t2", stats.Errors[0].ItemID)
	assert.Equal(t, phaseDownloadingTrack, stats.Errors[0].Phase)
	assert.Equal(t, "AC/DC: Hits?", stats.Errors[0].ParentTitle)
}

// TestServiceImpl_DownloadItem_PlaylistOfOne tests that a one-track collection is downloaded inline.
func TestServiceImpl_DownloadItem_PlaylistOfOne(t *testing.T) {
	t.Parallel()

	s := newTestServiceSetup(t)

	s.spotifyClient.EXPECT().GetPlaylist(gomock.Any(), "p1").Return(&spotify.Playlist{
		ID:     "p1",
		Name:   "Tiny",
		Tracks: []*spotify.Track{testTrack("t1", "Song", "A")},
	}, nil)
	s.spotifyClient.EXPECT().GetTrack(gomock.Any(), gomock.Any()).Times(0)
	s.expectSearchHit()
	s.youtubeClient.EXPECT().DownloadAudio(gomock.Any(), gomock.Any()).DoAndReturn(writeTranscodedFile(s.cfg.AudioFormat))

	paths := s.service.downloadItem(t.Context(), &DownloadItem{Category: DownloadCategoryPlaylist, ItemID: "p1"})

	assert.Equal(t, []string{filepath.Join(s.cfg.OutputPath, "A - Song.mp3")}, paths)
	assert.Empty(t, subdirectories(t, s.cfg.OutputPath))
}

// TestServiceImpl_DownloadItem_NothingFound tests a run where no track succeeds.
func TestServiceImpl_DownloadItem_NothingFound(t *testing.T) {
	t.Parallel()

	s := newTestServiceSetup(t)

	s.spotifyClient.EXPECT().GetPlaylist(gomock.Any(), "p1").Return(&spotify.Playlist{
		ID:     "p1",
		Name:   "Obscure",
		Tracks: []*spotify.Track{testTrack("t1", "One", "A"), testTrack("t2", "Two", "A")},
	}, nil)
	s.youtubeClient.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	s.youtubeClient.EXPECT().DownloadAudio(gomock.Any(), gomock.Any()).Times(0)

	paths := s.service.downloadItem(t.Context(), &DownloadItem{Category: DownloadCategoryPlaylist, ItemID: "p1"})

	assert.Empty(t, paths)
	assert.Equal(t, []string{"Obscure"}, subdirectories(t, s.cfg.OutputPath))
	assert.Equal(t, int64(2), s.service.stats.TracksNotFound)
	assert.Len(t, s.service.stats.Errors, 2)
}

// TestServiceImpl_DownloadURLs tests the pipeline over several inputs, including bad ones.
func TestServiceImpl_DownloadURLs(t *testing.T) {
	t.Parallel()

	s := newTestServiceSetup(t)

	s.spotifyClient.EXPECT().GetTrack(gomock.Any(), "missing").Return(nil, errCatalogUnavailable)
	s.spotifyClient.EXPECT().GetTrack(gomock.Any(), "t1").Return(testTrack("t1", "Song", "A"), nil)
	s.expectSearchHit()
	s.youtubeClient.EXPECT().DownloadAudio(gomock.Any(), gomock.Any()).DoAndReturn(writeTranscodedFile(s.cfg.AudioFormat))

	s.service.DownloadURLs(t.Context(), []string{
		"not a url",
		"https://open.spotify.com/track/missing",
		"https://open.spotify.com/track/t1",
		"spotify:track:t1",
	})

	stats := s.service.stats
	assert.Equal(t, int64(3), stats.URLsProcessed)
	assert.Equal(t, int64(1), stats.TracksDownloaded)
	assert.False(t, stats.StartTime.IsZero())
	assert.False(t, stats.EndTime.IsZero())

	require.Len(t, stats.Errors, 2)
	assert.Equal(t, phaseParsingURL, stats.Errors[0].Phase)
	assert.Equal(t, "not a url", stats.Errors[0].ItemURL)
	assert.Equal(t, phaseFetchingCatalog, stats.Errors[1].Phase)
	assert.Equal(t, "missing", stats.Errors[1].ItemID)

	assert.FileExists(t, filepath.Join(s.cfg.OutputPath, "A - Song.mp3"))

	s.service.PrintDownloadSummary(t.Context())
}

// TestServiceImpl_DownloadURLs_Canceled tests that a canceled run stops before touching the catalog.
func TestServiceImpl_DownloadURLs_Canceled(t *testing.T) {
	t.Parallel()

	s := newTestServiceSetup(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	s.spotifyClient.EXPECT().GetTrack(gomock.Any(), gomock.Any()).Times(0)

	s.service.DownloadURLs(ctx, []string{"https://open.spotify.com/track/t1"})

	assert.Zero(t, s.service.stats.URLsProcessed)
	assert.Empty(t, s.service.stats.Errors)
}

// TestServiceImpl_DownloadItem_Tags tests tagging and that the album cover is downloaded once.
func TestServiceImpl_DownloadItem_Tags(t *testing.T) {
	t.Parallel()

	s := newTestServiceSetup(t, func(cfg *config.Config) {
		cfg.WriteTags = true
		cfg.EmbedCover = true
		cfg.ParsedMaxConcurrentDownloads = 1
	})

	tracks := []*spotify.Track{testTrack("t1", "One", "A"), testTrack("t2", "Two", "A")}
	for _, track := range tracks {
		track.CoverURL = "https://img.example/cover.jpg"
	}

	s.spotifyClient.EXPECT().GetAlbum(gomock.Any(), "a1").Return(&spotify.Album{ID: "a1", Name: "Album"}, nil)
	s.spotifyClient.EXPECT().GetAlbumTrackIDs(gomock.Any(), "a1").Return([]string{"t1", "t2"}, nil)
	s.spotifyClient.EXPECT().GetTrack(gomock.Any(), "t1").Return(tracks[0], nil)
	s.spotifyClient.EXPECT().GetTrack(gomock.Any(), "t2").Return(tracks[1], nil)
	s.spotifyClient.EXPECT().DownloadFromURL(gomock.Any(), "https://img.example/cover.jpg").
		Return(io.NopCloser(bytes.NewReader([]byte{0xFF, 0xD8, 0xFF})), nil).
		Times(1)
	s.expectSearchHit()
	s.youtubeClient.EXPECT().DownloadAudio(gomock.Any(), gomock.Any()).
		DoAndReturn(writeTranscodedFile(s.cfg.AudioFormat)).
		Times(2)

	paths := s.service.downloadItem(t.Context(), &DownloadItem{Category: DownloadCategoryAlbum, ItemID: "a1"})
	require.Len(t, paths, 2)

	require.Len(t, s.tagProcessor.requests, 2)

	for i, req := range s.tagProcessor.requests {
		assert.Equal(t, paths[i], req.TrackPath)
		assert.Same(t, tracks[i], req.Track)
		assert.Equal(t, 2, req.TracksCount)
		assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, req.Cover)
	}

	assert.Equal(t, int64(2), s.service.stats.TagsWritten)
}

// TestServiceImpl_DownloadItem_TagFailure tests that a tagging failure keeps the download.
func TestServiceImpl_DownloadItem_TagFailure(t *testing.T) {
	t.Parallel()

	s := newTestServiceSetup(t, func(cfg *config.Config) {
		cfg.WriteTags = true
	})
	s.tagProcessor.err = errTranscoderFailed

	s.spotifyClient.EXPECT().GetTrack(gomock.Any(), "t1").Return(testTrack("t1", "Song", "A"), nil)
	s.expectSearchHit()
	s.youtubeClient.EXPECT().DownloadAudio(gomock.Any(), gomock.Any()).DoAndReturn(writeTranscodedFile(s.cfg.AudioFormat))

	paths := s.service.downloadItem(t.Context(), &DownloadItem{Category: DownloadCategoryTrack, ItemID: "t1"})

	assert.Len(t, paths, 1)
	assert.Equal(t, int64(1), s.service.stats.TracksDownloaded)
	assert.Zero(t, s.service.stats.TagsWritten)
	require.Len(t, s.service.stats.Errors, 1)
	assert.Equal(t, phaseWritingTags, s.service.stats.Errors[0].Phase)
}

// TestServiceImpl_DownloadItem_DryRun tests that a preview creates no folders and no files.
func TestServiceImpl_DownloadItem_DryRun(t *testing.T) {
	t.Parallel()

	s := newTestServiceSetup(t, func(cfg *config.Config) {
		cfg.DryRun = true
	})

	s.spotifyClient.EXPECT().GetPlaylist(gomock.Any(), "p1").Return(&spotify.Playlist{
		ID:     "p1",
		Name:   "Preview",
		Tracks: []*spotify.Track{testTrack("t1", "One", "A"), testTrack("t2", "Two", "A")},
	}, nil)
	s.expectSearchHit()
	s.youtubeClient.EXPECT().DownloadAudio(gomock.Any(), gomock.Any()).Times(0)

	paths := s.service.downloadItem(t.Context(), &DownloadItem{Category: DownloadCategoryPlaylist, ItemID: "p1"})

	assert.Len(t, paths, 2)
	assert.Empty(t, subdirectories(t, s.cfg.OutputPath))
	assert.Empty(t, s.tagProcessor.requests)
}
