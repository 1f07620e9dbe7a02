// Package spotify provides a read-only client for the Spotify Web API catalog.
// It authenticates with the OAuth2 client credentials flow, paces requests with a
// token-bucket limiter and converts SDK objects into plain track, album and playlist records.
// Album listings and playlists are followed through every page.
// Track records are kept in an LRU cache so repeated lookups within a run are free.
package spotify
