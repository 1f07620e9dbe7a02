package constants

import "os"

const (
	// DefaultFilePermissions sets the default permissions for regular files: (rw-r--r--).
	// Owner: read and write;
	// Group: read;
	// Others: read.
	DefaultFilePermissions os.FileMode = 0o644

	// DefaultFolderPermissions sets the default permissions for regular folders: (rwxr-xr-x).
	// Owner: read, write, and execute;
	// Group: read and execute;
	// Others: read and execute.
	DefaultFolderPermissions os.FileMode = 0o755
)

// Audio formats accepted by the transcoder step.
const (
	AudioFormatMP3    = "mp3"
	AudioFormatFLAC   = "flac"
	AudioFormatM4A    = "m4a"
	AudioFormatOpus   = "opus"
	AudioFormatVorbis = "vorbis"
	AudioFormatWAV    = "wav"
)

// AudioFormatExtension returns the file extension yt-dlp produces for an audio format.
func AudioFormatExtension(format string) string {
	switch format {
	case AudioFormatVorbis:
		return ".ogg"
	case "":
		return "." + AudioFormatMP3
	default:
		return "." + format
	}
}
