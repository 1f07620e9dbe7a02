package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/spotify-grabber/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install yt-dlp, ffmpeg and ffprobe when they are missing, then start the downloader.",
	Long: `Setup looks for yt-dlp, ffmpeg and ffprobe on PATH and downloads the missing ones.
The ffmpeg location is written to the configuration file as ffmpeg_path.
Afterwards the downloader is started and asks for a URL, unless --no-launch is given.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		noLaunch, _ := cmd.Flags().GetBool("no-launch")

		app.ExecuteSetupCommand(cmd.Context(), appConfig, !noLaunch)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	setupCmd.Flags().Bool("no-launch", false, "only install dependencies, do not start the downloader.")
}
