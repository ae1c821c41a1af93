package applemusic

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/grafov/m3u8"
)

const (
	mediaSuffix    = ".mp4"
	playlistSuffix = ".m3u8"
)

var (
	absoluteMediaURL = regexp.MustCompile(`https?://[^\s"']+\.mp4`)
	quotedMediaURI   = regexp.MustCompile(`URI="([^"]+\.mp4)"`)
)

// ExtractMediaURL finds the playable .mp4 referenced by an HLS manifest.
//
// Three shapes are recognised, in order of precedence:
//  1. An absolute http(s) URL ending in .mp4 anywhere in the text
//  2. A quoted URI attribute, as in #EXT-X-MAP:URI="clip.mp4"
//  3. A bare reference line ending in .mp4
//
// Relative references in (2) and (3) are resolved against baseURL, the URL
// the manifest was fetched from.
func ExtractMediaURL(manifest, baseURL string) (string, bool) {
	if match := absoluteMediaURL.FindString(manifest); match != "" {
		return match, true
	}

	if match := quotedMediaURI.FindStringSubmatch(manifest); match != nil {
		if resolved, ok := resolveReference(baseURL, match[1]); ok {
			return resolved, true
		}
	}

	for _, line := range manifestLines(manifest) {
		if strings.HasSuffix(line, mediaSuffix) {
			if resolved, ok := resolveReference(baseURL, line); ok {
				return resolved, true
			}
		}
	}

	return "", false
}

// ExtractPlaylistURLs returns every reference line ending in .m3u8, resolved
// against baseURL, in document order. Duplicates are kept; the crawler
// filters them.
func ExtractPlaylistURLs(manifest, baseURL string) []string {
	var urls []string
	for _, line := range manifestLines(manifest) {
		if !strings.HasSuffix(line, playlistSuffix) {
			continue
		}
		if resolved, ok := resolveReference(baseURL, line); ok {
			urls = append(urls, resolved)
		}
	}
	return urls
}

// manifestLines returns the trimmed, non-blank lines that are not tags or
// comments.
func manifestLines(manifest string) []string {
	var lines []string
	for _, line := range strings.FieldsFunc(manifest, func(r rune) bool { return r == '\n' || r == '\r' }) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func resolveReference(baseURL, ref string) (string, bool) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	target, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(target).String(), true
}

// ManifestKind classifies an HLS manifest.
type ManifestKind int

const (
	// ManifestUnknown is anything the HLS decoder could not make sense of.
	ManifestUnknown ManifestKind = iota

	// ManifestMaster lists variant playlists.
	ManifestMaster

	// ManifestMedia lists segments or maps a media file.
	ManifestMedia
)

func (k ManifestKind) String() string {
	switch k {
	case ManifestMaster:
		return "master"
	case ManifestMedia:
		return "media"
	default:
		return "unknown"
	}
}

// ManifestInfo summarises a manifest for crawl diagnostics.
type ManifestInfo struct {
	Kind     ManifestKind
	Variants int
	Segments int
}

// DescribeManifest decodes manifest leniently and reports what kind of
// playlist it is. It never affects which URLs the crawler follows; the
// text extractors above are authoritative.
func DescribeManifest(manifest string) ManifestInfo {
	playlist, listType, err := m3u8.DecodeFrom(strings.NewReader(manifest), false)
	if err != nil {
		return ManifestInfo{Kind: ManifestUnknown}
	}

	switch listType {
	case m3u8.MASTER:
		if master, ok := playlist.(*m3u8.MasterPlaylist); ok {
			return ManifestInfo{Kind: ManifestMaster, Variants: len(master.Variants)}
		}
	case m3u8.MEDIA:
		if media, ok := playlist.(*m3u8.MediaPlaylist); ok {
			return ManifestInfo{Kind: ManifestMedia, Segments: int(media.Count())}
		}
	}
	return ManifestInfo{Kind: ManifestUnknown}
}
