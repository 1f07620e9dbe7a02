// Package http provides custom HTTP transport utilities:
// request/response logging, User-Agent header injection and client-side rate limiting.
// The decorators wrap an http.RoundTripper and are stacked by the application
// before the OAuth2 client credentials transport is layered on top.
package http
