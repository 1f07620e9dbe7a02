package youtube

import "errors"

var (
	// ErrEmptyQuery indicates that a search was requested without a query.
	ErrEmptyQuery = errors.New("search query is empty")
	// ErrEmptyVideoURL indicates that a download was requested without a video URL.
	ErrEmptyVideoURL = errors.New("video URL is empty")
	// ErrMalformedSearchOutput indicates that yt-dlp printed something other than the expected JSON.
	ErrMalformedSearchOutput = errors.New("malformed search output")
	// ErrNoInstaller indicates that a missing executable cannot be installed automatically.
	ErrNoInstaller = errors.New("no installer available")
)
