// Package spotify provides the core functionality for turning Spotify catalog URLs into audio files.
// It parses URLs, resolves them into track records, searches YouTube for each track,
// downloads and transcodes the best match, tags the result and reports what happened.
package spotify
