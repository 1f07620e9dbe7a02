package spotify

//go:generate $MOCKGEN -source=url_processor.go -destination=mocks/url_processor_mock.go

import (
	"context"
	"regexp"
	"strings"

	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// URLProcessor defines the interface for turning command-line arguments into catalog references.
type URLProcessor interface {
	// ParseURL returns the category and ID of a catalog URL.
	// A string that is not a catalog URL yields DownloadCategoryUnknown and an empty ID.
	ParseURL(url string) (DownloadCategory, string)
	// ExtractDownloadItems expands text files, parses every URL and removes duplicates, keeping input order.
	// Unrecognized URLs are returned with DownloadCategoryUnknown so the caller can report them.
	ExtractDownloadItems(ctx context.Context, urls []string) ([]*DownloadItem, error)
}

// URLProcessorImpl implements the URLProcessor interface.
type URLProcessorImpl struct{}

// defaultTextExtension is the default file extension for text files.
const defaultTextExtension = ".txt"

// catalogURLPatterns match web links and URIs, each capturing the category name and the ID.
// Patterns are searched anywhere in the string, so query strings and locale prefixes are tolerated.
//
//nolint:gochecknoglobals // This is immutable, pre-compiled regex patterns and used as a constant.
var catalogURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`open\.spotify\.com/(?:intl-[a-z]+/)?(?<Category>track|album|playlist)/(?<ID>[a-zA-Z0-9]+)`),
	regexp.MustCompile(`spotify:(?<Category>track|album|playlist):(?<ID>[a-zA-Z0-9]+)`),
}

//nolint:gochecknoglobals // Immutable lookup table used as a constant.
var categoriesByNames = map[string]DownloadCategory{
	"track":    DownloadCategoryTrack,
	"album":    DownloadCategoryAlbum,
	"playlist": DownloadCategoryPlaylist,
}

// NewURLProcessor creates and returns a new instance of URLProcessorImpl.
func NewURLProcessor() URLProcessor {
	return &URLProcessorImpl{}
}

// ParseURL returns the category and ID of a catalog URL.
// Besides open.spotify.com links it accepts localized paths (open.spotify.com/intl-de/track/...)
// and spotify:track:... URIs. When the string holds several references, the leftmost one wins.
func (up *URLProcessorImpl) ParseURL(url string) (DownloadCategory, string) {
	var (
		pattern *regexp.Regexp
		start   = -1
	)

	for _, p := range catalogURLPatterns {
		loc := p.FindStringIndex(url)
		if loc != nil && (start < 0 || loc[0] < start) {
			pattern, start = p, loc[0]
		}
	}

	if pattern == nil {
		return DownloadCategoryUnknown, ""
	}

	// The match found at start is the leftmost one in the remainder as well.
	match := url[start:]

	category, ok := categoriesByNames[utils.ExtractNamedGroup(pattern, "Category", match)]
	if !ok {
		return DownloadCategoryUnknown, ""
	}

	return category, utils.ExtractNamedGroup(pattern, "ID", match)
}

// ExtractDownloadItems expands text files, parses every URL and removes duplicates, keeping input order.
func (up *URLProcessorImpl) ExtractDownloadItems(ctx context.Context, urls []string) ([]*DownloadItem, error) {
	// Process and flatten URLs to handle text files containing multiple URLs.
	urls, err := up.processAndFlattenURLs(urls)
	if err != nil {
		return nil, err
	}

	var (
		items       = make([]*DownloadItem, 0, len(urls))
		uniqueItems = make(map[ShortDownloadItem]struct{}, len(urls))
	)

	for _, url := range urls {
		category, itemID := up.ParseURL(url)
		if category == DownloadCategoryUnknown {
			logger.Warnf(ctx, "Unknown URL: %s", url)

			items = append(items, &DownloadItem{Category: category, URL: url})

			continue
		}

		// The same item can hide behind different URLs (share links, URIs).
		key := ShortDownloadItem{Category: category, ItemID: itemID}
		if _, ok := uniqueItems[key]; ok {
			continue
		}

		uniqueItems[key] = struct{}{}

		items = append(items, &DownloadItem{Category: category, URL: url, ItemID: itemID})
	}

	return items, nil
}

func (up *URLProcessorImpl) processAndFlattenURLs(urls []string) ([]string, error) {
	var (
		// Track processed URLs.
		processedSet = make(map[string]struct{})
		// Track processed text files.
		processedTextFiles = make(map[string]struct{})
		// Store the final list of URLs.
		processedURLs []string
	)

	addURL := func(url string) {
		url = strings.TrimSpace(url)
		if url == "" {
			return
		}

		if _, ok := processedSet[url]; ok {
			return
		}

		processedSet[url] = struct{}{}

		processedURLs = append(processedURLs, url)
	}

	for _, url := range urls {
		if !strings.HasSuffix(url, defaultTextExtension) {
			addURL(url)

			continue
		}

		// Skip already processed text files.
		if _, exists := processedTextFiles[url]; exists {
			continue
		}

		lines, err := utils.ReadUniqueLinesFromFile(url)
		if err != nil {
			return nil, err
		}

		for _, line := range lines {
			addURL(line)
		}

		processedTextFiles[url] = struct{}{}
	}

	return processedURLs, nil
}
