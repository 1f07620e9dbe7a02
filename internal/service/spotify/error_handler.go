package spotify

import (
	"context"
	"errors"

	"github.com/oshokin/spotify-grabber/internal/logger"
)

// ErrorHandler provides centralized error handling and recording.
type ErrorHandler struct {
	service *ServiceImpl
}

// NewErrorHandler creates an error handler for the service.
func NewErrorHandler(service *ServiceImpl) *ErrorHandler {
	return &ErrorHandler{service: service}
}

// HandleError logs and records an error.
// Returns true if there was an error, so callers can write `if h.HandleError(...) { return }`.
func (h *ErrorHandler) HandleError(ctx context.Context, err error, errorCtx *ErrorContext) bool {
	if err == nil {
		return false
	}

	// Don't log context cancellation - it's expected when user presses CTRL+C.
	if !errors.Is(err, context.Canceled) {
		logger.Errorf(ctx, "%s failed: %v", errorCtx.Phase, err)
	}

	h.service.recordError(errorCtx, err)

	return true
}

// HandleTrackResult updates the counters for a finished track and records its failure, if any.
func (h *ErrorHandler) HandleTrackResult(ctx context.Context, result *MediaResult, errorCtx *ErrorContext) {
	switch {
	case result.Skipped:
		h.service.incrementTrackSkipped()
	case !result.IsAbsent():
		h.service.incrementTrackDownloaded(result.BytesWritten)
	case errors.Is(result.Err, ErrNoSearchResults):
		h.service.incrementTrackNotFound()
		h.service.recordError(errorCtx, result.Err)
	case errors.Is(result.Err, context.Canceled):
		logger.Debugf(ctx, "Track %s canceled", errorCtx.ItemTitle)
	default:
		h.service.incrementTrackFailed()
		h.service.recordError(errorCtx, result.Err)
	}
}
