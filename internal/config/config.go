package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// ClientID is the Spotify application client ID.
	ClientID string `mapstructure:"client_id"`
	// ClientSecret is the Spotify application client secret.
	ClientSecret string `mapstructure:"client_secret"`
	// OutputPath is the directory path where downloaded files will be saved.
	OutputPath string `mapstructure:"output_path"`
	// AudioFormat is the format ffmpeg transcodes to (mp3, flac, m4a, opus, vorbis, wav).
	AudioFormat string `mapstructure:"audio_format"`
	// AudioQuality is passed to yt-dlp as --audio-quality (0-10 VBR or a bitrate like 192K).
	AudioQuality string `mapstructure:"audio_quality"`
	// FFmpegPath is the location of the ffmpeg binary or its folder. Empty means PATH lookup.
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	// SearchQuerySuffix is appended to every YouTube search query.
	SearchQuerySuffix string `mapstructure:"search_query_suffix"`
	// SearchCandidates is the number of search results considered per track.
	SearchCandidates int64 `mapstructure:"search_candidates"`
	// MatchStrategy selects how a search result is chosen (first, title, duration).
	MatchStrategy string `mapstructure:"match_strategy"`
	// FilenameTemplate is the template for naming downloaded track files.
	FilenameTemplate string `mapstructure:"filename_template"`
	// ReplaceTracks indicates whether to replace existing track files.
	ReplaceTracks bool `mapstructure:"replace_tracks"`
	// WriteTags indicates whether catalog metadata is written into downloaded files.
	WriteTags bool `mapstructure:"write_tags"`
	// EmbedCover indicates whether album art is embedded when tags are written.
	EmbedCover bool `mapstructure:"embed_cover"`
	// ProgressBar indicates whether a progress bar is shown for collections.
	ProgressBar bool `mapstructure:"progress_bar"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// DownloadSpeedLimit sets the maximum download speed (e.g., "1MB", "500KB").
	DownloadSpeedLimit string `mapstructure:"download_speed_limit"`
	// RetryAttemptsCount is the number of retries yt-dlp makes for a failed download.
	RetryAttemptsCount int64 `mapstructure:"retry_attempts_count"`
	// MaxConcurrentDownloads is the maximum number of tracks to download simultaneously.
	// Zero picks min(32, NumCPU+4).
	MaxConcurrentDownloads int64 `mapstructure:"max_concurrent_downloads"`
	// SpotifyRequestsPerSecond limits Spotify Web API calls. Zero disables the limit.
	SpotifyRequestsPerSecond float64 `mapstructure:"spotify_requests_per_second"`
	// YouTubeRequestsPerSecond limits yt-dlp invocations. Zero disables the limit.
	YouTubeRequestsPerSecond float64 `mapstructure:"youtube_requests_per_second"`
	// ConfigFile is the file the configuration was read from (set automatically).
	ConfigFile string
	// DryRun indicates whether to preview downloads without actually downloading files.
	DryRun bool
	// ParsedDownloadSpeedLimit is the parsed download speed limit in bytes.
	ParsedDownloadSpeedLimit int64
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedMaxConcurrentDownloads is the effective worker pool size.
	ParsedMaxConcurrentDownloads int
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".spotify-grabber.yaml"

	// EnvPrefix is the prefix of environment variables overriding configuration keys.
	EnvPrefix = "SPOTIFY_GRABBER"

	// DefaultOutputPath is the default download folder.
	DefaultOutputPath = "downloads"

	// DefaultAudioQuality is the default bitrate requested from the transcoder.
	DefaultAudioQuality = "192"

	// DefaultSearchQuerySuffix biases search results towards studio recordings.
	DefaultSearchQuerySuffix = "official audio"

	// DefaultFilenameTemplate is the default template for naming downloaded track files.
	DefaultFilenameTemplate = "{{.trackArtist}} - {{.trackTitle}}"

	// DefaultMaxLogLength is the default maximum size (in bytes) for log files.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// MatchStrategyFirst takes the first search result.
	MatchStrategyFirst = "first"
	// MatchStrategyTitle takes the result whose title shares the most words with the track.
	MatchStrategyTitle = "title"
	// MatchStrategyDuration takes the result whose duration is closest to the track.
	MatchStrategyDuration = "duration"

	// maxDefaultWorkers caps the derived worker pool size.
	maxDefaultWorkers = 32
	// extraDefaultWorkers is added to the CPU count when deriving the worker pool size.
	extraDefaultWorkers = 4
)

// Static error definitions for better error handling.
var (
	// ErrMissingCredentials indicates that the Spotify client ID or secret is missing.
	ErrMissingCredentials = errors.New("spotify client id and client secret must be set")
	// ErrUnknownAudioFormat indicates that the audio format is not supported.
	ErrUnknownAudioFormat = errors.New("unknown audio format")
	// ErrInvalidAudioQuality indicates that the audio quality is malformed.
	ErrInvalidAudioQuality = errors.New("invalid audio quality")
	// ErrInvalidSearchCandidates indicates that the search candidates count is invalid.
	ErrInvalidSearchCandidates = errors.New("search candidates count must be a positive integer")
	// ErrUnknownMatchStrategy indicates that the match strategy is not recognized.
	ErrUnknownMatchStrategy = errors.New("unknown match strategy")
	// ErrInvalidFilenameTemplate indicates that the filename template cannot be parsed.
	ErrInvalidFilenameTemplate = errors.New("invalid filename template")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidRetryAttempts indicates that the retry attempts count is invalid.
	ErrInvalidRetryAttempts = errors.New("retry attempts count must be a positive integer")
	// ErrInvalidConcurrentDownloads indicates that the concurrent downloads count is invalid.
	ErrInvalidConcurrentDownloads = errors.New("max concurrent downloads must not be negative")
	// ErrInvalidRequestsPerSecond indicates that a rate limit is negative.
	ErrInvalidRequestsPerSecond = errors.New("requests per second must not be negative")
)

var (
	//nolint:gochecknoglobals // Immutable lookup table used as a constant.
	supportedAudioFormats = map[string]struct{}{
		constants.AudioFormatMP3:    {},
		constants.AudioFormatFLAC:   {},
		constants.AudioFormatM4A:    {},
		constants.AudioFormatOpus:   {},
		constants.AudioFormatVorbis: {},
		constants.AudioFormatWAV:    {},
	}

	//nolint:gochecknoglobals // Immutable lookup table used as a constant.
	supportedMatchStrategies = map[string]struct{}{
		MatchStrategyFirst:    {},
		MatchStrategyTitle:    {},
		MatchStrategyDuration: {},
	}

	// audioQualityPattern accepts a VBR level or a bitrate with an optional K suffix.
	//nolint:gochecknoglobals // This is immutable, pre-compiled regex pattern and used as a constant.
	audioQualityPattern = regexp.MustCompile(`^\d+[kK]?$`)

	// credentialEnvVars are the conventional Spotify variable names checked besides the prefixed ones.
	//nolint:gochecknoglobals // Immutable lookup table used as a constant.
	credentialEnvVars = map[string]string{
		"client_id":     "SPOTIFY_CLIENT_ID",
		"client_secret": "SPOTIFY_CLIENT_SECRET",
	}
)

// LoadConfig loads configuration settings from a YAML file and the environment.
// A missing file is an error only when it was named explicitly.
func LoadConfig(configFilename string) (*Config, error) {
	isExplicit := configFilename != ""
	if !isExplicit {
		configFilename = DefaultConfigFilename
	}

	v := newViper()
	v.SetConfigFile(configFilename)

	if err := v.ReadInConfig(); err != nil {
		if isExplicit || !isNotExist(configFilename) {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ConfigFile = configFilename

	return &cfg, nil
}

// newViper returns a viper instance with defaults and environment bindings for every key.
func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("client_id", "")
	v.SetDefault("client_secret", "")
	v.SetDefault("output_path", DefaultOutputPath)
	v.SetDefault("audio_format", constants.AudioFormatMP3)
	v.SetDefault("audio_quality", DefaultAudioQuality)
	v.SetDefault("ffmpeg_path", "")
	v.SetDefault("search_query_suffix", DefaultSearchQuerySuffix)
	v.SetDefault("search_candidates", 1)
	v.SetDefault("match_strategy", MatchStrategyFirst)
	v.SetDefault("filename_template", DefaultFilenameTemplate)
	v.SetDefault("replace_tracks", false)
	v.SetDefault("write_tags", true)
	v.SetDefault("embed_cover", true)
	v.SetDefault("progress_bar", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("download_speed_limit", "")
	v.SetDefault("retry_attempts_count", 3)
	v.SetDefault("max_concurrent_downloads", 0)
	v.SetDefault("spotify_requests_per_second", 10)
	v.SetDefault("youtube_requests_per_second", 2)

	for key, envVar := range credentialEnvVars {
		//nolint:errcheck // BindEnv fails only when called without arguments.
		v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), envVar)
	}

	return v
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var (
		downloadSpeedLimit       = strings.TrimSpace(cfg.DownloadSpeedLimit)
		parsedDownloadSpeedLimit uint64
		err                      error
	)

	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return ErrMissingCredentials
	}

	if strings.TrimSpace(cfg.OutputPath) == "" {
		cfg.OutputPath = DefaultOutputPath
	}

	cfg.AudioFormat = strings.ToLower(strings.TrimSpace(cfg.AudioFormat))
	if cfg.AudioFormat == "" {
		cfg.AudioFormat = constants.AudioFormatMP3
	}

	if _, ok := supportedAudioFormats[cfg.AudioFormat]; !ok {
		return fmt.Errorf("%w: '%s'", ErrUnknownAudioFormat, cfg.AudioFormat)
	}

	cfg.AudioQuality = strings.TrimSpace(cfg.AudioQuality)
	if cfg.AudioQuality == "" {
		cfg.AudioQuality = DefaultAudioQuality
	}

	if !audioQualityPattern.MatchString(cfg.AudioQuality) {
		return fmt.Errorf("%w: '%s'", ErrInvalidAudioQuality, cfg.AudioQuality)
	}

	if cfg.SearchCandidates <= 0 {
		return ErrInvalidSearchCandidates
	}

	cfg.MatchStrategy = strings.ToLower(strings.TrimSpace(cfg.MatchStrategy))
	if cfg.MatchStrategy == "" {
		cfg.MatchStrategy = MatchStrategyFirst
	}

	if _, ok := supportedMatchStrategies[cfg.MatchStrategy]; !ok {
		return fmt.Errorf("%w: '%s'", ErrUnknownMatchStrategy, cfg.MatchStrategy)
	}

	if strings.TrimSpace(cfg.FilenameTemplate) == "" {
		cfg.FilenameTemplate = DefaultFilenameTemplate
	}

	if _, err = template.New("filename").Parse(cfg.FilenameTemplate); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFilenameTemplate, err)
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !(isLogLevelCorrect) {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if downloadSpeedLimit != "" && downloadSpeedLimit != "0" {
		parsedDownloadSpeedLimit, err = humanize.ParseBytes(downloadSpeedLimit)
		if err != nil {
			return fmt.Errorf("failed to parse download speed limit: %w", err)
		}
	}

	// yt-dlp takes the limit as a plain byte count.
	cfg.ParsedDownloadSpeedLimit = utils.SafeUint64ToInt64(parsedDownloadSpeedLimit)

	if cfg.RetryAttemptsCount <= 0 {
		return ErrInvalidRetryAttempts
	}

	if cfg.MaxConcurrentDownloads < 0 {
		return ErrInvalidConcurrentDownloads
	}

	cfg.ParsedMaxConcurrentDownloads = int(cfg.MaxConcurrentDownloads)
	if cfg.ParsedMaxConcurrentDownloads == 0 {
		cfg.ParsedMaxConcurrentDownloads = DefaultConcurrentDownloads()
	}

	if cfg.SpotifyRequestsPerSecond < 0 || cfg.YouTubeRequestsPerSecond < 0 {
		return ErrInvalidRequestsPerSecond
	}

	return nil
}

// DefaultConcurrentDownloads returns min(32, NumCPU+4).
func DefaultConcurrentDownloads() int {
	return min(maxDefaultWorkers, runtime.NumCPU()+extraDefaultWorkers)
}

// SaveConfig stores the ffmpeg location in the configuration file while preserving the original format and order.
// The file is created when it does not exist yet.
func SaveConfig(cfg *Config) error {
	configFile := cfg.ConfigFile
	if configFile == "" {
		configFile = DefaultConfigFilename
	}

	// Read the original file content.
	originalContent, err := os.ReadFile(configFile) //nolint:gosec // The path comes from the user's own flag.
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		originalContent = nil
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	setValueInNode(&node, "ffmpeg_path", cfg.FFmpegPath)

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	// Write the file back with preserved order.
	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setValueInNode sets a top-level string value in the YAML node tree, appending the key when it is absent.
func setValueInNode(node *yaml.Node, key, value string) {
	if node.Kind == 0 {
		node.Kind = yaml.DocumentNode
	}

	// The root node is a document node, content[0] is the actual map.
	if len(node.Content) == 0 {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
	}

	mapNode := node.Content[0]
	if mapNode.Kind != yaml.MappingNode {
		return
	}

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value != key {
			continue
		}

		valueNode := mapNode.Content[i+1]
		valueNode.Kind = yaml.ScalarNode
		valueNode.Tag = "!!str"
		valueNode.Value = value

		// Paths on Windows contain backslashes, keep them quoted.
		if valueNode.Style == 0 {
			valueNode.Style = yaml.DoubleQuotedStyle
		}

		return
	}

	mapNode.Content = append(mapNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle},
	)
}

func isNotExist(path string) bool {
	_, err := os.Stat(path)

	return os.IsNotExist(err)
}
