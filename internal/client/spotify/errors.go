package spotify

import "errors"

var (
	// ErrUnexpectedHTTPStatus indicates an unexpected HTTP status code was received.
	ErrUnexpectedHTTPStatus = errors.New("unexpected HTTP status")
	// ErrEmptyID indicates that a catalog lookup was requested without an ID.
	ErrEmptyID = errors.New("catalog ID is empty")
)
