package spotify

//go:generate $MOCKGEN -source=catalog.go -destination=mocks/catalog_mock.go

import (
	"context"
	"fmt"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// CatalogAdapter resolves catalog references into track records.
type CatalogAdapter interface {
	// FetchCollection returns the display name and the track records of a reference, in catalog order.
	FetchCollection(ctx context.Context, item *DownloadItem) (*Collection, error)
}

// CatalogAdapterImpl implements CatalogAdapter on top of the Spotify client.
type CatalogAdapterImpl struct {
	spotifyClient spotify.Client
}

// NewCatalogAdapter creates and returns a new instance of CatalogAdapterImpl.
func NewCatalogAdapter(spotifyClient spotify.Client) CatalogAdapter {
	return &CatalogAdapterImpl{spotifyClient: spotifyClient}
}

// FetchCollection returns the display name and the track records of a reference, in catalog order.
// Albums cost one lookup per listed track; playlists embed their records and cost none.
// Failures are logged at debug level here and reported to the user by the caller.
func (ca *CatalogAdapterImpl) FetchCollection(ctx context.Context, item *DownloadItem) (*Collection, error) {
	if item == nil {
		return nil, ErrUnknownCategory
	}

	var (
		collection *Collection
		err        error
	)

	//nolint:exhaustive // Unknown falls into default on purpose.
	switch item.Category {
	case DownloadCategoryTrack:
		collection, err = ca.fetchTrack(ctx, item)
	case DownloadCategoryAlbum:
		collection, err = ca.fetchAlbum(ctx, item)
	case DownloadCategoryPlaylist:
		collection, err = ca.fetchPlaylist(ctx, item)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, item.Category)
	}

	if err != nil {
		logger.Debugf(ctx, "Failed to fetch %s %s: %v", item.Category, item.ItemID, err)

		return nil, err
	}

	return collection, nil
}

func (ca *CatalogAdapterImpl) fetchTrack(ctx context.Context, item *DownloadItem) (*Collection, error) {
	track, err := ca.spotifyClient.GetTrack(ctx, item.ItemID)
	if err != nil {
		return nil, err
	}

	return &Collection{
		Category: item.Category,
		ID:       item.ItemID,
		URL:      item.URL,
		Name:     track.Title,
		Tracks:   []*spotify.Track{track},
	}, nil
}

func (ca *CatalogAdapterImpl) fetchAlbum(ctx context.Context, item *DownloadItem) (*Collection, error) {
	album, err := ca.spotifyClient.GetAlbum(ctx, item.ItemID)
	if err != nil {
		return nil, err
	}

	trackIDs, err := ca.spotifyClient.GetAlbumTrackIDs(ctx, item.ItemID)
	if err != nil {
		return nil, err
	}

	tracks := make([]*spotify.Track, 0, len(trackIDs))

	for _, trackID := range trackIDs {
		// Local files listed on an album have no catalog ID.
		if trackID == "" {
			continue
		}

		track, err := ca.spotifyClient.GetTrack(ctx, trackID)
		if err != nil {
			return nil, err
		}

		tracks = append(tracks, track)
	}

	logger.Infof(ctx, "Album '%s' has %d tracks", album.Name, len(tracks))

	return &Collection{
		Category: item.Category,
		ID:       item.ItemID,
		URL:      item.URL,
		Name:     album.Name,
		Tracks:   tracks,
	}, nil
}

func (ca *CatalogAdapterImpl) fetchPlaylist(ctx context.Context, item *DownloadItem) (*Collection, error) {
	playlist, err := ca.spotifyClient.GetPlaylist(ctx, item.ItemID)
	if err != nil {
		return nil, err
	}

	logger.Infof(ctx, "Playlist '%s' has %d tracks", playlist.Name, len(playlist.Tracks))

	return &Collection{
		Category: item.Category,
		ID:       item.ItemID,
		URL:      item.URL,
		Name:     playlist.Name,
		Tracks:   playlist.Tracks,
	}, nil
}
