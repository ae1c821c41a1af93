package model

import (
	"regexp"
	"strings"
)

// Artwork holds the assets and metadata resolved from one album page.
//
// Empty string means the field was not found on the page. Absence is never
// an error: a release without motion artwork simply has no VideoURL.
type Artwork struct {
	// ImageURL is the full-resolution cover image URL.
	ImageURL string

	// VideoURL is the playable motion artwork file (an .mp4), resolved
	// from the advertised HLS playlist.
	VideoURL string

	// ArtistName is the first linked subtitle on the page.
	ArtistName string

	// AlbumName is the title of the first item on the page.
	AlbumName string
}

// HasImage returns true if a cover image URL was found.
func (a *Artwork) HasImage() bool {
	return a.ImageURL != ""
}

// HasVideo returns true if a motion artwork URL was found.
func (a *Artwork) HasVideo() bool {
	return a.VideoURL != ""
}

// IsEmpty reports whether neither an image nor a video was discovered.
// Metadata alone does not count as an asset.
func (a *Artwork) IsEmpty() bool {
	return !a.HasImage() && !a.HasVideo()
}

// AssetKind distinguishes the two downloadable assets.
type AssetKind int

const (
	// AssetImage is the static cover image.
	AssetImage AssetKind = iota

	// AssetVideo is the motion artwork clip.
	AssetVideo
)

// String returns "image" or "video".
func (k AssetKind) String() string {
	if k == AssetVideo {
		return "video"
	}
	return "image"
}

// URL returns the asset URL of the given kind, or "" if absent.
func (a *Artwork) URL(kind AssetKind) string {
	if kind == AssetVideo {
		return a.VideoURL
	}
	return a.ImageURL
}

// ExtensionFromURL guesses a file extension (without the dot) for an asset URL.
//
// Cover URLs look like ".../196871846042.jpg/4000x4000bb.jpg", so a ".jpg/"
// path segment also counts as JPEG. Unknown URLs get "bin".
func ExtensionFromURL(url string) string {
	switch {
	case strings.HasSuffix(url, ".mp4"):
		return "mp4"
	case strings.HasSuffix(url, ".jpg"), strings.Contains(url, ".jpg/"):
		return "jpg"
	default:
		return "bin"
	}
}

// FileName computes the local file name for a downloaded asset.
//
// The base name is "Artist - Album", "Album", "Artist" or
// "artwork_<kind>" depending on which metadata is available. Video assets
// get a "_video" suffix so they never collide with the image.
//
// Example:
//
//	FileName("Willie Nelson", "The Border", AssetVideo, "mp4")
//	// "Willie Nelson - The Border_video.mp4"
func FileName(artist, album string, kind AssetKind, ext string) string {
	var base string
	switch {
	case artist != "" && album != "":
		base = sanitizeFileName(artist) + " - " + sanitizeFileName(album)
	case album != "":
		base = sanitizeFileName(album)
	case artist != "":
		base = sanitizeFileName(artist)
	default:
		base = "artwork_" + kind.String()
	}

	if kind == AssetVideo {
		return base + "_video." + ext
	}
	return base + "." + ext
}

var (
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// sanitizeFileName removes or replaces characters that are invalid in file names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Multiple whitespace is collapsed to single space
//   - Leading and trailing whitespace and dots are removed
//
// Example:
//
//	sanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
func sanitizeFileName(name string) string {
	name = invalidFileChars.ReplaceAllString(name, "_")
	name = whitespaceRun.ReplaceAllString(name, " ")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(name), "."))
}
