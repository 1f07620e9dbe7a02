package youtube

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/lrstanley/go-ytdlp"

	"github.com/oshokin/spotify-grabber/internal/logger"
)

// Names of the external executables the downloader depends on.
const (
	ExecutableYTDLP   = "yt-dlp"
	ExecutableFFmpeg  = "ffmpeg"
	ExecutableFFprobe = "ffprobe"
)

// Dependency is a resolved external executable.
type Dependency struct {
	// Name is the executable name.
	Name string
	// Path is the absolute location of the executable.
	Path string
	// Installed is true when the executable was downloaded rather than found on PATH.
	Installed bool
}

// InstallFunc downloads an executable and returns its location.
type InstallFunc func(ctx context.Context) (string, error)

// Installer resolves yt-dlp, ffmpeg and ffprobe, downloading the ones that are missing.
type Installer struct {
	lookPath   func(file string) (string, error)
	installers map[string]InstallFunc
}

// NewInstaller creates an Installer that looks executables up on PATH and falls back to go-ytdlp's installers.
func NewInstaller() *Installer {
	return &Installer{
		lookPath: exec.LookPath,
		installers: map[string]InstallFunc{
			ExecutableYTDLP: func(ctx context.Context) (string, error) {
				resolved, err := ytdlp.Install(ctx, nil)
				if err != nil {
					return "", err
				}

				return resolved.Executable, nil
			},
			ExecutableFFmpeg: func(ctx context.Context) (string, error) {
				resolved, err := ytdlp.InstallFFmpeg(ctx, nil)
				if err != nil {
					return "", err
				}

				return resolved.Executable, nil
			},
			ExecutableFFprobe: func(ctx context.Context) (string, error) {
				resolved, err := ytdlp.InstallFFprobe(ctx, nil)
				if err != nil {
					return "", err
				}

				return resolved.Executable, nil
			},
		},
	}
}

// Resolve returns every dependency in the order yt-dlp, ffmpeg, ffprobe.
// The first failed installation stops the resolution.
func (i *Installer) Resolve(ctx context.Context) ([]*Dependency, error) {
	names := []string{ExecutableYTDLP, ExecutableFFmpeg, ExecutableFFprobe}
	dependencies := make([]*Dependency, 0, len(names))

	for _, name := range names {
		dependency, err := i.resolveOne(ctx, name)
		if err != nil {
			return dependencies, err
		}

		dependencies = append(dependencies, dependency)
	}

	return dependencies, nil
}

func (i *Installer) resolveOne(ctx context.Context, name string) (*Dependency, error) {
	if path, err := i.lookPath(name); err == nil {
		logger.Infof(ctx, "%s found at %s", name, path)

		return &Dependency{Name: name, Path: path}, nil
	}

	install, ok := i.installers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoInstaller, name)
	}

	logger.Infof(ctx, "%s not found, installing", name)

	path, err := install(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to install %s: %w", name, err)
	}

	logger.Infof(ctx, "%s installed at %s", name, path)

	return &Dependency{Name: name, Path: path, Installed: true}, nil
}
