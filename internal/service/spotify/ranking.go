package spotify

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/oshokin/spotify-grabber/internal/client/spotify"
	"github.com/oshokin/spotify-grabber/internal/client/youtube"
	"github.com/oshokin/spotify-grabber/internal/config"
)

// CandidateRanker chooses one search result for a track.
// Implementations are pure: they only look at their arguments.
type CandidateRanker interface {
	// Choose returns the preferred video, or nil when there are none.
	// Ties go to the earliest candidate in search index order.
	Choose(track *spotify.Track, videos []*youtube.Video) *youtube.Video
}

type (
	// FirstCandidateRanker takes the first search result.
	FirstCandidateRanker struct{}
	// TitleCandidateRanker takes the result whose title shares the most words with the track.
	TitleCandidateRanker struct{}
	// DurationCandidateRanker takes the result whose duration is closest to the track.
	DurationCandidateRanker struct{}
)

// titlePenalty is subtracted for every unwanted version marker found in a video title.
const titlePenalty = 3

// unwantedVersionMarkers are words that point at a different recording of the same song.
//
//nolint:gochecknoglobals // Immutable lookup table.
var unwantedVersionMarkers = []string{"live", "cover", "remix", "karaoke"}

// NewCandidateRanker returns the ranker for a match strategy. Unknown strategies fall back to the first result.
func NewCandidateRanker(strategy string) CandidateRanker {
	switch strategy {
	case config.MatchStrategyTitle:
		return TitleCandidateRanker{}
	case config.MatchStrategyDuration:
		return DurationCandidateRanker{}
	default:
		return FirstCandidateRanker{}
	}
}

// Choose returns the first video.
func (FirstCandidateRanker) Choose(_ *spotify.Track, videos []*youtube.Video) *youtube.Video {
	if len(videos) == 0 {
		return nil
	}

	return videos[0]
}

// Choose returns the video with the best title score.
func (TitleCandidateRanker) Choose(track *spotify.Track, videos []*youtube.Video) *youtube.Video {
	if len(videos) == 0 {
		return nil
	}

	var (
		wanted      = tokenize(track.Title + " " + strings.Join(track.ArtistNames, " "))
		titleTokens = tokenize(track.Title)
		best        = videos[0]
		bestScore   = math.MinInt
	)

	for _, video := range videos {
		score := titleScore(wanted, titleTokens, tokenize(video.Title))
		if score > bestScore {
			best, bestScore = video, score
		}
	}

	return best
}

// Choose returns the video with the smallest duration difference.
// Videos of unknown duration rank last; a track of unknown duration gets the first video.
func (DurationCandidateRanker) Choose(track *spotify.Track, videos []*youtube.Video) *youtube.Video {
	if len(videos) == 0 {
		return nil
	}

	if track.Duration <= 0 {
		return videos[0]
	}

	var (
		best     = videos[0]
		bestDiff = time.Duration(math.MaxInt64)
	)

	for _, video := range videos {
		diff := time.Duration(math.MaxInt64)

		if video.Duration > 0 {
			diff = video.Duration - track.Duration
			if diff < 0 {
				diff = -diff
			}
		}

		if diff < bestDiff {
			best, bestDiff = video, diff
		}
	}

	return best
}

func titleScore(wanted, trackTitle, candidate map[string]struct{}) int {
	score := 0

	for token := range candidate {
		if _, ok := wanted[token]; ok {
			score++
		}
	}

	for _, marker := range unwantedVersionMarkers {
		if _, inCandidate := candidate[marker]; !inCandidate {
			continue
		}

		if _, inTrack := trackTitle[marker]; inTrack {
			continue
		}

		score -= titlePenalty
	}

	return score
}

// tokenize splits text into a set of lowercase words.
func tokenize(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		tokens[field] = struct{}{}
	}

	return tokens
}
