package youtube

import "time"

// Video is a single search result.
type Video struct {
	// ID is the YouTube video ID.
	ID string
	// Title is the video title.
	Title string
	// Channel is the name of the uploading channel.
	Channel string
	// URL is the watch URL of the video.
	URL string
	// Duration is the video length, zero when unknown.
	Duration time.Duration
}

// DownloadAudioRequest describes a single audio download.
type DownloadAudioRequest struct {
	// VideoURL is the watch URL to download.
	VideoURL string
	// OutputTemplate is the yt-dlp output template, e.g. "/music/Song.%(ext)s".
	OutputTemplate string
	// AudioFormat is the format ffmpeg transcodes to.
	AudioFormat string
	// AudioQuality is the VBR level or bitrate passed to ffmpeg.
	AudioQuality string
	// OnProgress is called periodically with the downloaded and total bytes. Optional.
	OnProgress func(downloadedBytes, totalBytes int64)
}

// searchResult is the part of yt-dlp's --dump-single-json output used for searches.
type searchResult struct {
	Entries []*searchEntry `json:"entries"`
}

type searchEntry struct {
	ID       string   `json:"id"`
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Channel  string   `json:"channel"`
	Uploader string   `json:"uploader"`
	Duration *float64 `json:"duration"`
}
