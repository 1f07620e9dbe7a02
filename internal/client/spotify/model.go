package spotify

import (
	"time"

	spotify_api "github.com/zmb3/spotify/v2"

	"github.com/oshokin/spotify-grabber/internal/utils"
)

// Track is the metadata of a single catalog track.
type Track struct {
	// ID is the catalog ID of the track.
	ID string
	// Title is the track name.
	Title string
	// ArtistNames lists the performing artists in catalog order.
	ArtistNames []string
	// AlbumName is the name of the album the track belongs to.
	AlbumName string
	// AlbumArtistNames lists the album artists.
	AlbumArtistNames []string
	// ReleaseDate is the album release date as returned by the catalog (YYYY, YYYY-MM or YYYY-MM-DD).
	ReleaseDate string
	// TrackNumber is the position of the track on its disc.
	TrackNumber int
	// DiscNumber is the disc the track is on.
	DiscNumber int
	// Duration is the track length.
	Duration time.Duration
	// ISRC is the International Standard Recording Code, if known.
	ISRC string
	// CoverURL is the largest album image.
	CoverURL string
}

// Album is the metadata of a catalog album without its track listing.
type Album struct {
	// ID is the catalog ID of the album.
	ID string
	// Name is the album title.
	Name string
	// ArtistNames lists the album artists.
	ArtistNames []string
	// ReleaseDate is the album release date.
	ReleaseDate string
	// CoverURL is the largest album image.
	CoverURL string
}

// Playlist is a catalog playlist together with its embedded track records.
type Playlist struct {
	// ID is the catalog ID of the playlist.
	ID string
	// Name is the playlist title.
	Name string
	// OwnerName is the display name of the playlist owner.
	OwnerName string
	// Tracks are the playlist entries that are tracks, in playlist order.
	Tracks []*Track
}

// ReleaseYear returns the first four characters of the release date.
func (t *Track) ReleaseYear() string {
	const yearLength = 4

	if len(t.ReleaseDate) < yearLength {
		return t.ReleaseDate
	}

	return t.ReleaseDate[:yearLength]
}

func convertTrack(src *spotify_api.FullTrack) *Track {
	return &Track{
		ID:               src.ID.String(),
		Title:            src.Name,
		ArtistNames:      artistNames(src.Artists),
		AlbumName:        src.Album.Name,
		AlbumArtistNames: artistNames(src.Album.Artists),
		ReleaseDate:      src.Album.ReleaseDate,
		TrackNumber:      int(src.TrackNumber),
		DiscNumber:       int(src.DiscNumber),
		Duration:         time.Duration(int(src.Duration)) * time.Millisecond,
		ISRC:             src.ExternalIDs["isrc"],
		CoverURL:         largestImageURL(src.Album.Images),
	}
}

func convertAlbum(src *spotify_api.FullAlbum) *Album {
	return &Album{
		ID:          src.ID.String(),
		Name:        src.Name,
		ArtistNames: artistNames(src.Artists),
		ReleaseDate: src.ReleaseDate,
		CoverURL:    largestImageURL(src.Images),
	}
}

func artistNames(artists []spotify_api.SimpleArtist) []string {
	return utils.Map(artists, func(artist spotify_api.SimpleArtist) string {
		return artist.Name
	})
}

// largestImageURL returns the URL of the widest image; the catalog usually lists it first.
func largestImageURL(images []spotify_api.Image) string {
	var (
		bestURL   string
		bestWidth = -1
	)

	for _, image := range images {
		if int(image.Width) > bestWidth {
			bestURL = image.URL
			bestWidth = int(image.Width)
		}
	}

	return bestURL
}
