package spotify

//go:generate $MOCKGEN -source=tag_processor.go -destination=mocks/tag_processor_mock.go

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
	"github.com/oshokin/id3v2/v2"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/constants"
	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// TagProcessor defines the interface for writing metadata tags to audio files.
type TagProcessor interface {
	WriteTags(ctx context.Context, req *WriteTagsRequest) error
}

// WriteTagsRequest contains parameters for writing metadata to audio files.
type WriteTagsRequest struct {
	// TrackPath is the file path of the audio track.
	TrackPath string
	// AudioFormat is the format the file was transcoded to.
	AudioFormat string
	// Track is the catalog record the tags come from.
	Track *spotify.Track
	// TracksCount is the number of tracks on the album, zero when unknown.
	TracksCount int
	// Cover is the cover art image, nil to skip embedding.
	Cover []byte
}

// TagProcessorImpl provides the default implementation of TagProcessor.
type TagProcessorImpl struct{}

// imageMetadata contains image data and its MIME type.
type imageMetadata struct {
	// data contains the raw image bytes.
	data []byte
	// mimeType specifies the image format (e.g., "image/jpeg").
	mimeType string
}

// extractFLACCommentResult contains the result of extracting FLAC comment metadata.
type extractFLACCommentResult struct {
	// Comment is the FLAC Vorbis comment metadata block.
	Comment *flacvorbis.MetaDataBlockVorbisComment
	// Index is the index of the comment block in the FLAC file metadata (-1 if not found).
	Index int
}

var (
	// ErrEmptyTrackPath indicates that the track file path is empty.
	ErrEmptyTrackPath = errors.New("track path cannot be empty")
	// ErrUnsupportedTagFormat indicates that tags cannot be written for the audio format.
	ErrUnsupportedTagFormat = errors.New("tags are not supported for audio format")
)

// NewTagProcessor creates a new TagProcessor instance.
func NewTagProcessor() TagProcessor {
	return new(TagProcessorImpl)
}

// WriteTags writes metadata to audio files based on the provided request.
func (tp *TagProcessorImpl) WriteTags(ctx context.Context, req *WriteTagsRequest) error {
	if req.TrackPath == "" {
		return ErrEmptyTrackPath
	}

	var image *imageMetadata

	if len(req.Cover) > 0 {
		image = &imageMetadata{
			data:     req.Cover,
			mimeType: utils.DetectImageMimeType(req.Cover),
		}
	}

	switch req.AudioFormat {
	case constants.AudioFormatFLAC:
		return tp.writeFLACTags(ctx, req, image)
	case constants.AudioFormatMP3, "":
		return tp.writeMP3Tags(req, image)
	default:
		return ErrUnsupportedTagFormat
	}
}

func (tp *TagProcessorImpl) writeFLACTags(ctx context.Context, req *WriteTagsRequest, image *imageMetadata) error {
	f, err := flac.ParseFile(filepath.Clean(req.TrackPath))
	if err != nil {
		return err
	}

	commentResult := tp.extractFLACComment(f)

	tag := commentResult.Comment
	if tag == nil {
		tag = flacvorbis.New()
	}

	if err = tp.addFLACTags(tag, req); err != nil {
		return err
	}

	tagMeta := tag.Marshal()
	if commentResult.Index >= 0 {
		f.Meta[commentResult.Index] = &tagMeta
	} else {
		f.Meta = append(f.Meta, &tagMeta)
	}

	tp.embedFLACCover(ctx, f, image)

	return f.Save(req.TrackPath)
}

func (tp *TagProcessorImpl) extractFLACComment(f *flac.File) *extractFLACCommentResult {
	for idx, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}

		comment, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err == nil {
			return &extractFLACCommentResult{
				Comment: comment,
				Index:   idx,
			}
		}
	}

	return &extractFLACCommentResult{
		Comment: nil,
		Index:   -1,
	}
}

func (tp *TagProcessorImpl) addFLACTags(tag *flacvorbis.MetaDataBlockVorbisComment, req *WriteTagsRequest) error {
	track := req.Track

	flacTags := map[string]string{
		"ALBUM":       track.AlbumName,
		"ALBUMARTIST": strings.Join(track.AlbumArtistNames, ", "),
		"ARTIST":      strings.Join(track.ArtistNames, ", "),
		"DATE":        track.ReleaseDate,
		"DISCNUMBER":  positiveIntString(track.DiscNumber),
		"ISRC":        track.ISRC,
		"TITLE":       track.Title,
		"TOTALTRACKS": positiveIntString(req.TracksCount),
		"TRACKNUMBER": positiveIntString(track.TrackNumber),
		"SPOTIFY_ID":  track.ID,
		"YEAR":        track.ReleaseYear(),
	}

	for k, v := range flacTags {
		if v == "" {
			continue
		}

		if err := tag.Add(k, v); err != nil {
			return err
		}
	}

	return nil
}

func (tp *TagProcessorImpl) embedFLACCover(ctx context.Context, f *flac.File, image *imageMetadata) {
	if image == nil {
		return
	}

	picture, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "", image.data, image.mimeType)
	if err != nil {
		logger.Errorf(ctx, "Failed to embed image to FLAC: %v", err)

		return
	}

	pictureMeta := picture.Marshal()
	f.Meta = append(f.Meta, &pictureMeta)
}

func (tp *TagProcessorImpl) writeMP3Tags(req *WriteTagsRequest, image *imageMetadata) error {
	//nolint:exhaustruct // ParseFrames intentionally omitted when Parse=false (parsing disabled).
	tag, err := id3v2.Open(req.TrackPath, id3v2.Options{Parse: false})
	if err != nil {
		return err
	}

	defer tag.Close()

	tp.addMP3Tags(tag, req)

	if image != nil {
		//nolint:exhaustruct // Description field intentionally empty for cover images.
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    image.mimeType,
			PictureType: id3v2.PTFrontCover,
			Picture:     image.data,
		})
	}

	return tag.Save()
}

func (tp *TagProcessorImpl) addMP3Tags(tag *id3v2.Tag, req *WriteTagsRequest) {
	track := req.Track

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	tag.SetAlbum(track.AlbumName)
	tag.SetArtist(strings.Join(track.ArtistNames, ", "))
	tag.SetTitle(track.Title)
	tag.SetYear(track.ReleaseYear())

	// Track number with the total when known, e.g. "1/10".
	if trackNumber := positiveIntString(track.TrackNumber); trackNumber != "" {
		if req.TracksCount > 0 {
			trackNumber += "/" + strconv.Itoa(req.TracksCount)
		}

		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(), trackNumber)
	}

	if discNumber := positiveIntString(track.DiscNumber); discNumber != "" {
		tag.AddTextFrame(tag.CommonID("Part of a set"), tag.DefaultEncoding(), discNumber)
	}

	if len(track.AlbumArtistNames) > 0 {
		tag.AddTextFrame(
			tag.CommonID("Band/Orchestra/Accompaniment"),
			tag.DefaultEncoding(),
			strings.Join(track.AlbumArtistNames, ", "))
	}

	if track.ISRC != "" {
		tag.AddTextFrame(tag.CommonID("ISRC"), tag.DefaultEncoding(), track.ISRC)
	}
}

func positiveIntString(value int) string {
	if value <= 0 {
		return ""
	}

	return strconv.Itoa(value)
}
