// Package youtube wraps the yt-dlp executable through github.com/lrstanley/go-ytdlp.
// It searches YouTube with "ytsearchN:" queries, downloads the best audio stream of a
// chosen video and has ffmpeg transcode it, and installs yt-dlp, ffmpeg and ffprobe
// when they are missing.
package youtube
