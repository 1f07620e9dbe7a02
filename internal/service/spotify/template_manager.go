package spotify

//go:generate $MOCKGEN -source=template_manager.go -destination=mocks/template_manager_mock.go

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/config"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// TemplateManager defines the interface for naming downloaded files and folders.
type TemplateManager interface {
	// GetTrackFilename renders the base filename of a track (no directory, no extension), sanitized.
	// It never returns an empty string.
	GetTrackFilename(ctx context.Context, track *spotify.Track, position, tracksCount int) string
	// GetCollectionFolderName returns the sanitized folder name of a multi-track collection.
	GetCollectionFolderName(collection *Collection) string
	// AssignFilenames returns a unique base filename for every track of a collection, in track order.
	AssignFilenames(ctx context.Context, collection *Collection) []string
}

// TemplateManagerImpl implements the TemplateManager interface.
type TemplateManagerImpl struct {
	// trackFilenameTemplate is the template for track filenames.
	trackFilenameTemplate *template.Template
	// defaultTrackFilenameTemplate is the fallback template for track filenames.
	defaultTrackFilenameTemplate *template.Template
}

// NewTemplateManager creates and returns a new instance of TemplateManagerImpl.
// It falls back to the default template if the configured one does not parse.
func NewTemplateManager(ctx context.Context, cfg *config.Config) TemplateManager {
	defaultTrackFilenameTemplate := template.Must(
		template.New("defaultTrackFilenameTemplate").Parse(config.DefaultFilenameTemplate))

	trackFilenameTemplate, err := template.New("trackFilenameTemplate").
		Option("missingkey=zero").
		Parse(cfg.FilenameTemplate)
	if err != nil {
		logger.Errorf(ctx, "Failed to parse track filename template, using default: %v", err)

		trackFilenameTemplate = nil
	}

	return &TemplateManagerImpl{
		trackFilenameTemplate:        trackFilenameTemplate,
		defaultTrackFilenameTemplate: defaultTrackFilenameTemplate,
	}
}

// GetTrackFilename renders the base filename of a track (no directory, no extension), sanitized.
// A name that sanitizes to nothing becomes "track-<id>", or "track-<uuid>" for records without an ID.
func (tm *TemplateManagerImpl) GetTrackFilename(
	ctx context.Context,
	track *spotify.Track,
	position, tracksCount int,
) string {
	var (
		textBuilder = tm.trackFilenameTemplate
		trackTags   = trackTemplateTags(track, position, tracksCount)
		buffer      bytes.Buffer
	)

	if textBuilder != nil {
		if err := textBuilder.Execute(&buffer, trackTags); err != nil {
			logger.Errorf(ctx, "Failed to execute track filename template, using default: %v", err)
			buffer.Reset()
			_ = tm.defaultTrackFilenameTemplate.Execute(&buffer, trackTags) //nolint:errcheck // Default template is always valid.
		}
	} else {
		_ = tm.defaultTrackFilenameTemplate.Execute(&buffer, trackTags) //nolint:errcheck // Default template is always valid.
	}

	filename := utils.SanitizeFilename(buffer.String())
	if strings.TrimSpace(filename) != "" {
		return filename
	}

	if track.ID != "" {
		return fallbackStemPrefix + utils.SanitizeFilename(track.ID)
	}

	return fallbackStemPrefix + uuid.NewString()
}

// GetCollectionFolderName returns the sanitized folder name of a multi-track collection.
func (tm *TemplateManagerImpl) GetCollectionFolderName(collection *Collection) string {
	folderName := utils.SanitizeFilename(collection.Name)
	if strings.TrimSpace(folderName) != "" {
		return folderName
	}

	return collection.Category.String() + "-" + utils.SanitizeFilename(collection.ID)
}

// AssignFilenames returns a unique base filename for every track of a collection, in track order.
// Repeated names get " (2)", " (3)" and so on; comparison ignores case.
func (tm *TemplateManagerImpl) AssignFilenames(ctx context.Context, collection *Collection) []string {
	var (
		tracksCount = len(collection.Tracks)
		filenames   = make([]string, 0, tracksCount)
		usedNames   = make(map[string]int, tracksCount)
	)

	for i, track := range collection.Tracks {
		stem := tm.GetTrackFilename(ctx, track, i+1, tracksCount)
		filename := stem

		for {
			key := strings.ToLower(filename)

			seen := usedNames[key]
			if seen == 0 {
				usedNames[key] = 1

				break
			}

			usedNames[key] = seen + 1
			filename = fmt.Sprintf(duplicateStemFormat, stem, seen+1)
		}

		if filename != stem {
			logger.Debugf(ctx, "Track '%s' renamed to '%s' to avoid a name collision", stem, filename)
		}

		filenames = append(filenames, filename)
	}

	return filenames
}

// trackTemplateTags returns the values available to the filename template.
func trackTemplateTags(track *spotify.Track, position, tracksCount int) map[string]string {
	tags := map[string]string{
		"trackID":       track.ID,
		"trackTitle":    track.Title,
		"trackArtist":   strings.Join(track.ArtistNames, ", "),
		"albumTitle":    track.AlbumName,
		"albumArtist":   strings.Join(track.AlbumArtistNames, ", "),
		"releaseDate":   track.ReleaseDate,
		"releaseYear":   track.ReleaseYear(),
		"isrc":          track.ISRC,
		"trackNumber":   "",
		"discNumber":    "",
		"trackPosition": strconv.Itoa(position),
		"trackCount":    strconv.Itoa(tracksCount),
	}

	if track.TrackNumber > 0 {
		tags["trackNumber"] = strconv.Itoa(track.TrackNumber)
	}

	if track.DiscNumber > 0 {
		tags["discNumber"] = strconv.Itoa(track.DiscNumber)
	}

	// Zero-padded position, e.g. "007" in a collection of 120 tracks.
	tags["trackPositionPadded"] = fmt.Sprintf("%0*d", len(strconv.Itoa(tracksCount)), position)

	return tags
}
