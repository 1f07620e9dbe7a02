package spotify

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	spotify_api "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
	http_transport "github.com/oshokin/spotify-grabber/internal/transport/http"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// Client defines the interface for reading the Spotify catalog.
type Client interface {
	// DownloadFromURL downloads content (cover art) from the specified URL.
	DownloadFromURL(ctx context.Context, url string) (io.ReadCloser, error)
	// GetTrack fetches the full record of a single track.
	GetTrack(ctx context.Context, trackID string) (*Track, error)
	// GetAlbum fetches album metadata without its track listing.
	GetAlbum(ctx context.Context, albumID string) (*Album, error)
	// GetAlbumTrackIDs lists the IDs of every track on an album, following all pages.
	GetAlbumTrackIDs(ctx context.Context, albumID string) ([]string, error)
	// GetPlaylist fetches a playlist with its embedded track records, following all pages.
	GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error)
}

// ClientImpl implements the Client interface on top of the zmb3/spotify SDK.
type ClientImpl struct {
	// api is the Spotify Web API client.
	api *spotify_api.Client
	// httpClient is the HTTP client for plain downloads.
	httpClient *http.Client
	// tracksCache caches track records to avoid repeated lookups of the same track.
	tracksCache *lru.Cache[string, *Track]
}

const (
	// tracksCacheSize defines the maximum number of track entries to cache.
	tracksCacheSize = 10000
	// albumTracksPageSize is the largest page the album tracks endpoint returns.
	albumTracksPageSize = 50
	// episodeURIPrefix marks podcast episodes embedded in playlists.
	episodeURIPrefix = "spotify:episode:"
)

// NewClient creates and returns a new instance of ClientImpl.
// The HTTP transport chain is rate limiting, logging and User-Agent injection,
// with client credentials token handling layered on top.
func NewClient(cfg *config.Config) (Client, error) {
	baseHTTPClient := &http.Client{
		Transport: http_transport.NewUserAgentInjector(
			http_transport.NewLogTransport(
				http_transport.NewRateLimitTransport(
					http.DefaultTransport,
					http_transport.NewLimiter(cfg.SpotifyRequestsPerSecond)),
				0),
			utils.NewSimpleUserAgentProvider(http_transport.DefaultUserAgent)),
		Timeout: http_transport.DefaultTimeout,
	}

	credentials := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	// The token source reuses the decorated client for its own requests.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, baseHTTPClient)
	authHTTPClient := credentials.Client(tokenCtx)
	authHTTPClient.Timeout = http_transport.DefaultTimeout

	api := spotify_api.New(authHTTPClient, spotify_api.WithRetry(true))

	return newClientImpl(api, baseHTTPClient)
}

func newClientImpl(api *spotify_api.Client, httpClient *http.Client) (*ClientImpl, error) {
	tracksCache, err := lru.New[string, *Track](tracksCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracks cache: %w", err)
	}

	return &ClientImpl{
		api:         api,
		httpClient:  httpClient,
		tracksCache: tracksCache,
	}, nil
}

// DownloadFromURL downloads content from the specified URL.
func (c *ClientImpl) DownloadFromURL(ctx context.Context, url string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		response.Body.Close() //nolint:errcheck,gosec // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return response.Body, nil
}

// GetTrack fetches the full record of a single track.
// Uses an LRU cache to avoid redundant API calls for the same track.
func (c *ClientImpl) GetTrack(ctx context.Context, trackID string) (*Track, error) {
	if trackID == "" {
		return nil, ErrEmptyID
	}

	if cached, ok := c.tracksCache.Get(trackID); ok {
		return cached, nil
	}

	fullTrack, err := c.api.GetTrack(ctx, spotify_api.ID(trackID))
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", trackID, err)
	}

	track := convertTrack(fullTrack)
	c.tracksCache.Add(trackID, track)

	return track, nil
}

// GetAlbum fetches album metadata without its track listing.
func (c *ClientImpl) GetAlbum(ctx context.Context, albumID string) (*Album, error) {
	if albumID == "" {
		return nil, ErrEmptyID
	}

	fullAlbum, err := c.api.GetAlbum(ctx, spotify_api.ID(albumID))
	if err != nil {
		return nil, fmt.Errorf("failed to get album %s: %w", albumID, err)
	}

	return convertAlbum(fullAlbum), nil
}

// GetAlbumTrackIDs lists the IDs of every track on an album, following all pages.
func (c *ClientImpl) GetAlbumTrackIDs(ctx context.Context, albumID string) ([]string, error) {
	if albumID == "" {
		return nil, ErrEmptyID
	}

	page, err := c.api.GetAlbumTracks(ctx, spotify_api.ID(albumID), spotify_api.Limit(albumTracksPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to get tracks of album %s: %w", albumID, err)
	}

	trackIDs := make([]string, 0, int(page.Total))

	for {
		for _, track := range page.Tracks {
			trackIDs = append(trackIDs, track.ID.String())
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify_api.ErrNoMorePages) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to get next page of album %s: %w", albumID, err)
		}
	}

	logger.Debugf(ctx, "Album %s lists %d tracks", albumID, len(trackIDs))

	return trackIDs, nil
}

// GetPlaylist fetches a playlist with its embedded track records, following all pages.
// Entries that are not tracks (removed tracks, podcast episodes) are skipped.
func (c *ClientImpl) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	if playlistID == "" {
		return nil, ErrEmptyID
	}

	fullPlaylist, err := c.api.GetPlaylist(ctx, spotify_api.ID(playlistID))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %s: %w", playlistID, err)
	}

	playlist := &Playlist{
		ID:        fullPlaylist.ID.String(),
		Name:      fullPlaylist.Name,
		OwnerName: fullPlaylist.Owner.DisplayName,
	}

	page := &fullPlaylist.Tracks

	for {
		for i := range page.Tracks {
			fullTrack := &page.Tracks[i].Track
			if !isPlayableTrack(fullTrack) {
				logger.Debugf(ctx, "Skipping playlist %s entry %d: not a track", playlistID, i)

				continue
			}

			track := convertTrack(fullTrack)
			c.tracksCache.Add(track.ID, track)

			playlist.Tracks = append(playlist.Tracks, track)
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify_api.ErrNoMorePages) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to get next page of playlist %s: %w", playlistID, err)
		}
	}

	return playlist, nil
}

func isPlayableTrack(track *spotify_api.FullTrack) bool {
	if track.ID == "" {
		return false
	}

	return !strings.HasPrefix(string(track.URI), episodeURIPrefix)
}
