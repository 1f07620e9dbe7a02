package app

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/oshokin/spotify-grabber/internal/client/youtube"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// dependencyResolver finds or installs the external executables.
type dependencyResolver interface {
	Resolve(ctx context.Context) ([]*youtube.Dependency, error)
}

// launchFunc starts the downloader with the given configuration file.
type launchFunc func(ctx context.Context, configFile string) error

// ExecuteSetupCommand makes sure yt-dlp, ffmpeg and ffprobe are available,
// stores the ffmpeg location in the configuration file and, unless disabled, starts the downloader.
func ExecuteSetupCommand(ctx context.Context, cfg *config.Config, shouldLaunch bool) {
	var launch launchFunc
	if shouldLaunch {
		launch = launchSelf
	}

	if err := runSetup(ctx, cfg, youtube.NewInstaller(), launch); err != nil {
		logger.Fatalf(ctx, "Setup failed: %v", err)
	}
}

func runSetup(ctx context.Context, cfg *config.Config, resolver dependencyResolver, launch launchFunc) error {
	dependencies, err := resolver.Resolve(ctx)
	if err != nil {
		return err
	}

	for _, dependency := range dependencies {
		if dependency.Name != youtube.ExecutableFFmpeg {
			continue
		}

		cfg.FFmpegPath = dependency.Path

		if err = config.SaveConfig(cfg); err != nil {
			return fmt.Errorf("failed to save ffmpeg location: %w", err)
		}

		logger.Infof(ctx, "Saved ffmpeg location %s to %s", cfg.FFmpegPath, cfg.ConfigFile)
	}

	logger.Info(ctx, "All dependencies are installed")

	if launch == nil {
		return nil
	}

	return launch(ctx, cfg.ConfigFile)
}

// launchSelf runs this executable again as a subprocess sharing the terminal.
func launchSelf(ctx context.Context, configFile string) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	logger.Infof(ctx, "Starting %s", executable)

	//nolint:gosec // The executable is this very program.
	command := exec.CommandContext(ctx, executable, "--config", configFile)
	command.Stdin = os.Stdin
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr

	return command.Run()
}
