package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/spotify-grabber/internal/app"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
)

// dumpConfigFlag is a hidden flag printing the effective configuration as JSON instead of downloading.
const dumpConfigFlag = "dump-config"

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "spotify-grabber [flags] [urls]",
		Short: "Download Spotify tracks, albums and playlists as audio files.",
		Long: `Spotify Grabber reads track metadata from the Spotify Web API,
finds each track on YouTube and saves it as an audio file with yt-dlp and ffmpeg.
It supports:
- Individual tracks
- Full albums
- Playlists

Arguments ending in .txt are read as lists of URLs, one per line.
Without arguments, a URL is read from standard input.`,
		Args:             cobra.ArbitraryArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, urls []string) {
			if err := bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
				logger.Fatalf(cmd.Context(), "Failed to parse flags: %v", err)
			}

			logger.SetLevel(appConfig.ParsedLogLevel)

			if isDump, _ := cmd.Flags().GetBool(dumpConfigFlag); isDump {
				if err := dumpConfig(cmd.OutOrStdout(), appConfig); err != nil {
					logger.Fatalf(cmd.Context(), "Failed to dump configuration: %v", err)
				}

				return
			}

			app.ExecuteRootCommand(cmd.Context(), appConfig, urls)
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	rootCmdFlags := rootCmd.Flags()

	rootCmdFlags.StringP(
		"output",
		"o",
		"",
		"directory to save downloaded files (the path will be created if it doesn’t exist).")

	rootCmdFlags.StringP(
		"format",
		"f",
		"",
		"audio format: mp3, flac, m4a, opus, vorbis or wav.")

	rootCmdFlags.IntP(
		"concurrency",
		"n",
		0,
		"number of tracks downloaded at the same time, 0 picks a value from the CPU count.")

	rootCmdFlags.StringP(
		"speed-limit",
		"s",
		"",
		"set download speed limit, for example: 500 kbps, 1 mbps, 1.5 mbps.")

	rootCmdFlags.String(
		"strategy",
		"",
		"how a YouTube result is chosen: first, title or duration.")

	rootCmdFlags.Bool(
		"dry-run",
		false,
		"search for every track and show what would be downloaded without downloading.")

	rootCmdFlags.Bool(dumpConfigFlag, false, "print the effective configuration as JSON and exit.")
	//nolint:errcheck // The flag is defined right above.
	rootCmdFlags.MarkHidden(dumpConfigFlag)

	rootCmd.AddCommand(setupCmd, versionCmd)
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	if level, ok := logger.ParseLogLevel(appConfig.LogLevel); ok {
		logger.SetLevel(level)
	}
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		cfg.OutputPath, _ = flags.GetString("output")
	}

	if flag := flags.Lookup("format"); flag != nil && flag.Changed {
		cfg.AudioFormat, _ = flags.GetString("format")
	}

	if flag := flags.Lookup("concurrency"); flag != nil && flag.Changed {
		concurrency, _ := flags.GetInt("concurrency")
		cfg.MaxConcurrentDownloads = int64(concurrency)
	}

	if flag := flags.Lookup("speed-limit"); flag != nil && flag.Changed {
		cfg.DownloadSpeedLimit, _ = flags.GetString("speed-limit")
	}

	if flag := flags.Lookup("strategy"); flag != nil && flag.Changed {
		cfg.MatchStrategy, _ = flags.GetString("strategy")
	}

	if flag := flags.Lookup("dry-run"); flag != nil && flag.Changed {
		cfg.DryRun, _ = flags.GetBool("dry-run")
	}

	return config.ValidateConfig(cfg)
}

// configDump is the part of the configuration that command-line flags can change.
type configDump struct {
	OutputPath             string `json:"output_path"`
	AudioFormat            string `json:"audio_format"`
	MaxConcurrentDownloads int    `json:"max_concurrent_downloads"`
	DownloadSpeedLimit     int64  `json:"download_speed_limit"`
	MatchStrategy          string `json:"match_strategy"`
	DryRun                 bool   `json:"dry_run"`
}

func dumpConfig(w io.Writer, cfg *config.Config) error {
	return json.NewEncoder(w).Encode(&configDump{
		OutputPath:             cfg.OutputPath,
		AudioFormat:            cfg.AudioFormat,
		MaxConcurrentDownloads: cfg.ParsedMaxConcurrentDownloads,
		DownloadSpeedLimit:     cfg.ParsedDownloadSpeedLimit,
		MatchStrategy:          cfg.MatchStrategy,
		DryRun:                 cfg.DryRun,
	})
}
