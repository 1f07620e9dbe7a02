// Package app wires the application together: it builds the Spotify and YouTube clients,
// the service components and runs the download pipeline or the dependency setup.
package app
