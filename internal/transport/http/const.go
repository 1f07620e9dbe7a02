package http

import "time"

const (
	// DefaultTimeout is the default timeout duration for HTTP requests.
	DefaultTimeout = 60 * time.Second

	// DefaultUserAgent is the default User-Agent string used for Spotify Web API and cover art requests.
	DefaultUserAgent = "spotify-grabber (+https://github.com/oshokin/spotify-grabber)"
)
