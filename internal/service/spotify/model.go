package spotify

import (
	"fmt"
	"time"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/client/youtube"
)

const (
	// fallbackStemPrefix starts the base filename of a track whose name sanitizes to nothing.
	fallbackStemPrefix = "track-"
	// duplicateStemFormat decorates the second and later occurrences of a base filename.
	duplicateStemFormat = "%s (%d)"
)

// DownloadCategory represents the type of content being downloaded.
type DownloadCategory uint8

const (
	// DownloadCategoryUnknown - unknown category.
	DownloadCategoryUnknown DownloadCategory = iota
	// DownloadCategoryTrack - single track.
	DownloadCategoryTrack
	// DownloadCategoryAlbum - full album.
	DownloadCategoryAlbum
	// DownloadCategoryPlaylist - playlist.
	DownloadCategoryPlaylist
)

// String returns a human-readable representation of the DownloadCategory.
func (dc DownloadCategory) String() string {
	switch dc {
	case DownloadCategoryUnknown:
		return "unknown"
	case DownloadCategoryTrack:
		return "track"
	case DownloadCategoryAlbum:
		return "album"
	case DownloadCategoryPlaylist:
		return "playlist"
	default:
		return fmt.Sprintf("unknown: %d", dc)
	}
}

// DownloadItem represents a parsed catalog reference: its category, source URL and catalog ID.
type DownloadItem struct {
	// Category is the type of content (track, album, playlist).
	Category DownloadCategory
	// URL is the string the item was parsed from.
	URL string
	// ItemID is the catalog ID of the item.
	ItemID string
}

// ShortDownloadItem is a lightweight version of DownloadItem without the URL.
type ShortDownloadItem struct {
	// Category is the type of content.
	Category DownloadCategory
	// ItemID is the catalog ID of the item.
	ItemID string
}

// Collection is a resolved catalog reference: a display name and its track records in catalog order.
// For a track reference it holds exactly one track and Name is the track title.
type Collection struct {
	// Category is the category of the reference the collection was resolved from.
	Category DownloadCategory
	// ID is the catalog ID of the reference.
	ID string
	// URL is the source URL of the reference.
	URL string
	// Name is the display name of the track, album or playlist.
	Name string
	// Tracks are the track records in catalog order.
	Tracks []*spotify.Track
}

// MediaRequest describes a single track to locate and download.
type MediaRequest struct {
	// Query is the search query for the track.
	Query string
	// Directory is the folder the audio file is written to.
	Directory string
	// BaseFilename is the sanitized file name without extension.
	BaseFilename string
	// Track is the catalog record, used by ranking and tagging.
	Track *spotify.Track
}

// MediaResult is the outcome of a MediaRequest.
// An empty Path means absence: nothing usable was produced.
type MediaResult struct {
	// Path is the location of the audio file.
	Path string
	// Video is the chosen search result, nil when the file already existed.
	Video *youtube.Video
	// Err explains an absence.
	Err error
	// Skipped is true when the file already existed and was kept.
	Skipped bool
	// BytesWritten is the size of the produced file.
	BytesWritten int64
}

// IsAbsent reports whether the request produced no file.
func (r *MediaResult) IsAbsent() bool {
	return r == nil || r.Path == ""
}

// DownloadStatistics tracks metrics for a download session.
type DownloadStatistics struct {
	// StartTime is when the download session began.
	StartTime time.Time
	// EndTime is when the download session ended.
	EndTime time.Time
	// IsDryRun indicates whether the session was a preview.
	IsDryRun bool
	// URLsProcessed is the number of input URLs handled.
	URLsProcessed int64
	// TotalTracksProcessed is the number of tracks that reached the download stage.
	TotalTracksProcessed int64
	// TracksDownloaded is the number of tracks whose file was produced.
	TracksDownloaded int64
	// TracksSkipped is the number of tracks whose file already existed.
	TracksSkipped int64
	// TracksNotFound is the number of tracks with no search results.
	TracksNotFound int64
	// TracksFailed is the number of tracks that failed for any other reason.
	TracksFailed int64
	// TagsWritten is the number of files tagged with catalog metadata.
	TagsWritten int64
	// TotalBytesDownloaded is the combined size of produced files.
	TotalBytesDownloaded int64
	// Errors holds the details of every recorded failure.
	Errors []DownloadError
}

// DownloadError is a recorded failure with enough context to print a useful report.
type DownloadError struct {
	// Category is the type of item that failed.
	Category DownloadCategory
	// ItemID is the catalog ID of the item that failed.
	ItemID string
	// ItemTitle is the human-readable title of the item.
	ItemTitle string
	// ItemURL is the URL of the failed item (for collections).
	ItemURL string
	// ErrorMessage is the error text.
	ErrorMessage string
	// Phase indicates when the error occurred (e.g., "fetching catalog", "downloading track").
	Phase string
	// ParentCategory is the type of parent collection for tracks.
	ParentCategory DownloadCategory
	// ParentID is the ID of the parent collection.
	ParentID string
	// ParentTitle is the title of the parent collection.
	ParentTitle string
}
