package spotify

import (
	"strings"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
)

// BuildSearchQuery builds the search index query for a track: "<artists> - <title> <suffix>".
// Artists are joined with ", " in catalog order. Empty inputs are not guarded.
func BuildSearchQuery(track *spotify.Track, suffix string) string {
	query := strings.Join(track.ArtistNames, ", ") + " - " + track.Title
	if suffix != "" {
		query += " " + suffix
	}

	return query
}
