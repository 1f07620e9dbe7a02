package spotify

import (
	"strings"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
)

// TrackDownloadContext encapsulates all data needed for downloading a single track.
// Contexts are built before fan-out, so download tasks share no mutable state.
type TrackDownloadContext struct {
	// Track metadata.
	Track       *spotify.Track
	TrackIndex  int
	TracksCount int

	// Search.
	Query string

	// File paths.
	Directory     string
	TrackFilename string

	// Error reporting context.
	ParentID       string
	ParentTitle    string
	ParentCategory DownloadCategory
}

// NewTrackDownloadContext creates a download context for the track at index of a collection.
func NewTrackDownloadContext(
	collection *Collection,
	trackIndex int,
	directory, trackFilename, querySuffix string,
) *TrackDownloadContext {
	track := collection.Tracks[trackIndex]

	dctx := &TrackDownloadContext{
		Track:         track,
		TrackIndex:    trackIndex,
		TracksCount:   len(collection.Tracks),
		Query:         BuildSearchQuery(track, querySuffix),
		Directory:     directory,
		TrackFilename: trackFilename,
	}

	// A track reference is its own collection; only real collections are reported as parents.
	if collection.Category != DownloadCategoryTrack {
		dctx.ParentID = collection.ID
		dctx.ParentTitle = collection.Name
		dctx.ParentCategory = collection.Category
	}

	return dctx
}

// MediaRequest converts the context into a request for the media downloader.
func (dctx *TrackDownloadContext) MediaRequest() *MediaRequest {
	return &MediaRequest{
		Query:        dctx.Query,
		Directory:    dctx.Directory,
		BaseFilename: dctx.TrackFilename,
		Track:        dctx.Track,
	}
}

// ErrorContext returns the error reporting context of the track.
func (dctx *TrackDownloadContext) ErrorContext(phase string) *ErrorContext {
	return &ErrorContext{
		Category:       DownloadCategoryTrack,
		ItemID:         dctx.Track.ID,
		ItemTitle:      strings.Join(dctx.Track.ArtistNames, ", ") + " - " + dctx.Track.Title,
		Phase:          phase,
		ParentCategory: dctx.ParentCategory,
		ParentID:       dctx.ParentID,
		ParentTitle:    dctx.ParentTitle,
	}
}
