package spotify

import (
	"context"
	"errors"
)

// Common errors for the service layer.
var (
	// ErrInvalidURL indicates that a string is not a recognizable catalog URL.
	ErrInvalidURL = errors.New("invalid Spotify URL")
	// ErrUnknownCategory indicates that a catalog reference has no supported category.
	ErrUnknownCategory = errors.New("unknown Spotify URL type")
	// ErrEmptyCollection indicates that a catalog reference resolved to zero tracks.
	ErrEmptyCollection = errors.New("collection has no tracks")
	// ErrNoSearchResults indicates that the search index returned nothing for a track.
	ErrNoSearchResults = errors.New("no search results")
	// ErrOutputMissing indicates that the transcoder finished but the expected file is not there.
	ErrOutputMissing = errors.New("expected output file is missing")
)

// Phases reported in error details.
const (
	phaseParsingURL         = "parsing URL"
	phaseFetchingCatalog    = "fetching catalog"
	phasePreparingDirectory = "preparing directory"
	phaseDownloadingTrack   = "downloading track"
	phaseWritingTags        = "writing tags"
)

// ErrorContext provides context information for download errors.
type ErrorContext struct {
	// Category is the type of item that failed.
	Category DownloadCategory
	// ItemID is the catalog ID of the item that failed.
	ItemID string
	// ItemTitle is the human-readable title of the item.
	ItemTitle string
	// ItemURL is the URL of the failed item.
	ItemURL string
	// Phase indicates when the error occurred.
	Phase string
	// ParentCategory is the type of parent collection for tracks.
	ParentCategory DownloadCategory
	// ParentID is the ID of the parent collection.
	ParentID string
	// ParentTitle is the title of the parent collection.
	ParentTitle string
}

// recordError records an error in the statistics with proper context.
// Context cancellation errors are ignored as they are expected during graceful shutdown.
func (s *ServiceImpl) recordError(errCtx *ErrorContext, err error) {
	if errCtx == nil || err == nil {
		return
	}

	if errors.Is(err, context.Canceled) {
		return
	}

	s.statsMutex.Lock()
	defer s.statsMutex.Unlock()

	s.stats.Errors = append(s.stats.Errors, DownloadError{
		Category:       errCtx.Category,
		ItemID:         errCtx.ItemID,
		ItemTitle:      errCtx.ItemTitle,
		ItemURL:        errCtx.ItemURL,
		ErrorMessage:   err.Error(),
		Phase:          errCtx.Phase,
		ParentCategory: errCtx.ParentCategory,
		ParentID:       errCtx.ParentID,
		ParentTitle:    errCtx.ParentTitle,
	})
}
