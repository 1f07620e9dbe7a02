package youtube

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInstallFailed = errors.New("network unreachable")

func fakeInstaller(onPath map[string]string, installed map[string]string, calls *[]string) *Installer {
	installers := make(map[string]InstallFunc)

	for _, name := range []string{ExecutableYTDLP, ExecutableFFmpeg, ExecutableFFprobe} {
		installers[name] = func(_ context.Context) (string, error) {
			*calls = append(*calls, name)

			path, ok := installed[name]
			if !ok {
				return "", errInstallFailed
			}

			return path, nil
		}
	}

	return &Installer{
		lookPath: func(file string) (string, error) {
			if path, ok := onPath[file]; ok {
				return path, nil
			}

			return "", exec.ErrNotFound
		},
		installers: installers,
	}
}

// TestInstaller_Resolve_AllOnPath tests that nothing is installed when every executable is on PATH.
func TestInstaller_Resolve_AllOnPath(t *testing.T) {
	t.Parallel()

	var calls []string

	installer := fakeInstaller(map[string]string{
		ExecutableYTDLP:   "/usr/bin/yt-dlp",
		ExecutableFFmpeg:  "/usr/bin/ffmpeg",
		ExecutableFFprobe: "/usr/bin/ffprobe",
	}, nil, &calls)

	dependencies, err := installer.Resolve(t.Context())
	require.NoError(t, err)
	require.Len(t, dependencies, 3)

	assert.Empty(t, calls)

	for _, dependency := range dependencies {
		assert.False(t, dependency.Installed)
	}

	assert.Equal(t, "/usr/bin/ffmpeg", dependencies[1].Path)
}

// TestInstaller_Resolve_InstallsMissing tests that only missing executables are installed.
func TestInstaller_Resolve_InstallsMissing(t *testing.T) {
	t.Parallel()

	var calls []string

	installer := fakeInstaller(
		map[string]string{ExecutableYTDLP: "/usr/bin/yt-dlp"},
		map[string]string{
			ExecutableFFmpeg:  "/cache/ffmpeg",
			ExecutableFFprobe: "/cache/ffprobe",
		},
		&calls)

	dependencies, err := installer.Resolve(t.Context())
	require.NoError(t, err)

	assert.Equal(t, []string{ExecutableFFmpeg, ExecutableFFprobe}, calls)
	assert.Equal(t, &Dependency{Name: ExecutableFFmpeg, Path: "/cache/ffmpeg", Installed: true}, dependencies[1])
	assert.Equal(t, &Dependency{Name: ExecutableFFprobe, Path: "/cache/ffprobe", Installed: true}, dependencies[2])
}

// TestInstaller_Resolve_InstallFailure tests that resolution stops at the first failed installation.
func TestInstaller_Resolve_InstallFailure(t *testing.T) {
	t.Parallel()

	var calls []string

	installer := fakeInstaller(nil, nil, &calls)

	dependencies, err := installer.Resolve(t.Context())
	require.ErrorIs(t, err, errInstallFailed)
	assert.Empty(t, dependencies)
	assert.Equal(t, []string{ExecutableYTDLP}, calls)
}

// TestInstaller_Resolve_NoInstaller tests the missing installer guard.
func TestInstaller_Resolve_NoInstaller(t *testing.T) {
	t.Parallel()

	installer := &Installer{
		lookPath:   func(string) (string, error) { return "", exec.ErrNotFound },
		installers: map[string]InstallFunc{},
	}

	_, err := installer.Resolve(t.Context())
	require.ErrorIs(t, err, ErrNoInstaller)
}
