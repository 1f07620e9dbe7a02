//nolint:nolintlint,revive // utils is a common and acceptable package name for utility functions.
package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/spotify-grabber/internal/constants"
)

// TestSafeUint64ToInt64 tests the SafeUint64ToInt64 function.
func TestSafeUint64ToInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    uint64
		expected int64
	}{
		{
			name:     "normal value",
			input:    100,
			expected: 100,
		},
		{
			name:     "zero value",
			input:    0,
			expected: 0,
		},
		{
			name:     "max int64 value",
			input:    9223372036854775807,
			expected: 9223372036854775807,
		},
		{
			name:     "value exceeding max int64",
			input:    9223372036854775808,
			expected: 9223372036854775807,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := SafeUint64ToInt64(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestSanitizeFilename tests the SanitizeFilename function.
func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "valid filename",
			input:    "Daft Punk - One More Time",
			expected: "Daft Punk - One More Time",
		},
		{
			name:     "illegal characters are removed",
			input:    "A/B:C?",
			expected: "ABC",
		},
		{
			name:     "every illegal character",
			input:    `\\/*?:"<>|`,
			expected: "",
		},
		{
			name:     "whitespace is preserved",
			input:    "  AC/DC  ",
			expected: "  ACDC  ",
		},
		{
			name:     "dots and unicode are preserved",
			input:    "Sigur Rós - ( ).",
			expected: "Sigur Rós - ( ).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := SanitizeFilename(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestIsFileExist tests the IsFileExist function.
func TestIsFileExist(t *testing.T) {
	t.Parallel()

	// Create a temporary file.
	tempFile, err := os.CreateTemp(t.TempDir(), "test_file")
	require.NoError(t, err)

	tempFile.Close()                 //nolint:errcheck,gosec // Test cleanup, error is not critical.
	defer os.Remove(tempFile.Name()) //nolint:errcheck // Test cleanup, error is not critical.

	// Test existing file.
	exists, err := IsFileExist(tempFile.Name())
	require.NoError(t, err)
	assert.True(t, exists)

	// Test non-existing file.
	exists, err = IsFileExist("/non/existing/file")
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestReadUniqueLinesFromFile tests the ReadUniqueLinesFromFile function.
func TestReadUniqueLinesFromFile(t *testing.T) {
	t.Parallel()

	// Create a temporary file with test content.
	tempFile, err := os.CreateTemp(t.TempDir(), "test_lines")
	require.NoError(t, err)

	defer os.Remove(tempFile.Name()) //nolint:errcheck // Test cleanup, error is not critical.

	content := "line1\nline2\nline1\nline3\nline2\n"
	_, err = tempFile.WriteString(content)
	require.NoError(t, err)
	tempFile.Close() //nolint:errcheck,gosec // Test cleanup, error is not critical.

	// Test reading unique lines.
	lines, err := ReadUniqueLinesFromFile(tempFile.Name())
	require.NoError(t, err)
	assert.Len(t, lines, 3)
	assert.Contains(t, lines, "line1")
	assert.Contains(t, lines, "line2")
	assert.Contains(t, lines, "line3")

	// Test non-existing file.
	_, err = ReadUniqueLinesFromFile("/non/existing/file")
	require.Error(t, err)
}

// TestExtractNamedGroup tests the ExtractNamedGroup function.
func TestExtractNamedGroup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		regex     *regexp.Regexp
		groupName string
		input     string
		expected  string
	}{
		{
			name:      "valid match",
			regex:     regexp.MustCompile(`(?P<id>\d+)`),
			groupName: "id",
			input:     "test123",
			expected:  "123",
		},
		{
			name:      "no match",
			regex:     regexp.MustCompile(`(?P<id>\d+)`),
			groupName: "id",
			input:     "test",
			expected:  "",
		},
		{
			name:      "valid match with name group",
			regex:     regexp.MustCompile(`(?P<name>\w+)`),
			groupName: "name",
			input:     "test",
			expected:  "test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := ExtractNamedGroup(tt.regex, tt.groupName, tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestIsTextContentType tests the IsTextContentType function.
func TestIsTextContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		expected    bool
	}{
		{
			name:        "text/plain",
			contentType: "text/plain",
			expected:    true,
		},
		{
			name:        "text/html with charset",
			contentType: "text/html; charset=utf-8",
			expected:    true,
		},
		{
			name:        "application/json",
			contentType: "application/json",
			expected:    true,
		},
		{
			name:        "application/samlmetadata+xml",
			contentType: "application/samlmetadata+xml",
			expected:    true,
		},
		{
			name:        "image/jpeg",
			contentType: "image/jpeg",
			expected:    false,
		},
		{
			name:        "text with invalid charset",
			contentType: "text/plain; charset=invalid",
			expected:    false,
		},
		{
			name:        "invalid content type",
			contentType: "invalid/type",
			expected:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := IsTextContentType(tt.contentType)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// TestMap tests the Map function.
func TestMap(t *testing.T) {
	t.Parallel()

	// Test with string slice.
	input := []string{"hello", "world"}
	result := Map(input, strings.ToUpper)
	expected := []string{"HELLO", "WORLD"}
	assert.Equal(t, expected, result)

	// Test with empty slice.
	empty := []string{}
	result = Map(empty, strings.ToUpper)
	assert.Empty(t, result)
}

// TestFileSize tests the FileSize function.
func TestFileSize(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("12345"), constants.DefaultFilePermissions))

	assert.Equal(t, int64(5), FileSize(path))
	assert.Equal(t, int64(0), FileSize(filepath.Join(t.TempDir(), "missing.mp3")))
}

// TestDetectImageMimeType tests the DetectImageMimeType function.
func TestDetectImageMimeType(t *testing.T) {
	t.Parallel()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, ImagePNGMimeType, DetectImageMimeType(png))
	assert.Equal(t, ImageJPEGMimeType, DetectImageMimeType([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	assert.Equal(t, ImageJPEGMimeType, DetectImageMimeType(nil))
}

// TestConstants tests the constants.
func TestConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "image/jpeg", ImageJPEGMimeType)
	assert.Equal(t, "image/png", ImagePNGMimeType)
}
