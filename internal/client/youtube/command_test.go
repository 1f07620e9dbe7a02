package youtube

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeSearchOutput = `{"_type": "playlist", "entries": [` +
	`{"id": "v1", "title": "A - Song (Official Audio)", "channel": "A", "duration": 215.0}, ` +
	`{"id": "v2", "url": "https://www.youtube.com/watch?v=v2", "title": "Song live", "uploader": "Fan"}]}`

// installFakeYTDLP puts a yt-dlp script on PATH that records its arguments, prints stdout and exits with exitCode.
// It returns a function reading the recorded arguments.
// yt-dlp is started with an environment holding only PATH, so the log location is written into the script.
func installFakeYTDLP(t *testing.T, stdout string, exitCode int) func() []string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}

	binDir := t.TempDir()
	argsFile := filepath.Join(t.TempDir(), "args.txt")

	script := "#!/bin/sh\n" +
		"for arg in \"$@\"; do printf '%s\\n' \"$arg\" >> '" + argsFile + "'; done\n"

	if stdout != "" {
		script += "printf '%s\\n' '" + stdout + "'\n"
	}

	script += "exit " + strconv.Itoa(exitCode) + "\n"

	//nolint:gosec // The script must be executable.
	require.NoError(t, os.WriteFile(filepath.Join(binDir, ExecutableYTDLP), []byte(script), 0o755))

	t.Setenv("PATH", binDir)
	// An empty cache keeps go-ytdlp from picking a previously installed yt-dlp.
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	return func() []string {
		data, err := os.ReadFile(argsFile)
		require.NoError(t, err)

		return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	}
}

func assertFlagValue(t *testing.T, args []string, flag, value string) {
	t.Helper()

	for i := range len(args) - 1 {
		if args[i] == flag {
			assert.Equal(t, value, args[i+1], "value of %s", flag)

			return
		}
	}

	t.Errorf("flag %s not found in %q", flag, args)
}

// TestClientImpl_Search tests the search invocation and the parsed result.
func TestClientImpl_Search(t *testing.T) {
	recordedArgs := installFakeYTDLP(t, fakeSearchOutput, 0)

	client := &ClientImpl{retries: 3}

	videos, err := client.Search(t.Context(), "A - Song official audio", 2)
	require.NoError(t, err)

	args := recordedArgs()
	require.NotEmpty(t, args)

	assert.Equal(t, "ytsearch2:A - Song official audio", args[len(args)-1])
	assert.Subset(t, args, []string{"--flat-playlist", "--dump-single-json", "--skip-download", "--no-warnings"})
	assert.NotContains(t, args, "--extract-audio")

	require.Len(t, videos, 2)

	assert.Equal(t, "v1", videos[0].ID)
	assert.Equal(t, "A - Song (Official Audio)", videos[0].Title)
	assert.Equal(t, "A", videos[0].Channel)
	assert.Equal(t, "https://www.youtube.com/watch?v=v1", videos[0].URL)
	assert.Equal(t, 215*time.Second, videos[0].Duration)

	assert.Equal(t, "Fan", videos[1].Channel)
	assert.Zero(t, videos[1].Duration)
}

// TestClientImpl_DownloadAudio tests the download and transcode invocation.
func TestClientImpl_DownloadAudio(t *testing.T) {
	recordedArgs := installFakeYTDLP(t, "", 0)

	client := &ClientImpl{
		ffmpegPath: "/opt/ff",
		retries:    3,
		speedLimit: 500000,
	}

	outputTemplate := filepath.Join(t.TempDir(), "A - Song") + ".%(ext)s"

	err := client.DownloadAudio(t.Context(), &DownloadAudioRequest{
		VideoURL:       "https://www.youtube.com/watch?v=v1",
		OutputTemplate: outputTemplate,
		AudioFormat:    "mp3",
		AudioQuality:   "192",
	})
	require.NoError(t, err)

	args := recordedArgs()
	require.NotEmpty(t, args)

	assert.Equal(t, "https://www.youtube.com/watch?v=v1", args[len(args)-1])
	assert.Subset(t, args, []string{"--no-playlist", "--extract-audio", "--force-overwrites", "--no-warnings"})

	assertFlagValue(t, args, "--format", audioFormatSelector)
	assertFlagValue(t, args, "--audio-format", "mp3")
	assertFlagValue(t, args, "--audio-quality", "192")
	assertFlagValue(t, args, "--retries", "3")
	assertFlagValue(t, args, "--output", outputTemplate)
	assertFlagValue(t, args, "--ffmpeg-location", "/opt/ff")
	assertFlagValue(t, args, "--limit-rate", "500000")
}

// TestClientImpl_DownloadAudio_OptionalFlags tests that unset ffmpeg location and speed limit are not passed.
func TestClientImpl_DownloadAudio_OptionalFlags(t *testing.T) {
	recordedArgs := installFakeYTDLP(t, "", 0)

	client := &ClientImpl{retries: 1}

	err := client.DownloadAudio(t.Context(), &DownloadAudioRequest{
		VideoURL:       "https://www.youtube.com/watch?v=v1",
		OutputTemplate: filepath.Join(t.TempDir(), "Song") + ".%(ext)s",
		AudioFormat:    "flac",
		AudioQuality:   "0",
	})
	require.NoError(t, err)

	args := recordedArgs()

	assert.NotContains(t, args, "--ffmpeg-location")
	assert.NotContains(t, args, "--limit-rate")
	assertFlagValue(t, args, "--audio-format", "flac")
	assertFlagValue(t, args, "--retries", "1")
}

// TestClientImpl_DownloadAudio_Failure tests that a failing yt-dlp run is reported.
func TestClientImpl_DownloadAudio_Failure(t *testing.T) {
	installFakeYTDLP(t, "", 1)

	client := &ClientImpl{retries: 3}

	err := client.DownloadAudio(t.Context(), &DownloadAudioRequest{
		VideoURL:       "https://www.youtube.com/watch?v=v1",
		OutputTemplate: filepath.Join(t.TempDir(), "Song") + ".%(ext)s",
		AudioFormat:    "mp3",
		AudioQuality:   "192",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download audio from https://www.youtube.com/watch?v=v1")
}
