package applemusic

import (
	"context"
	"io"
	"time"

	"github.com/handiism/getart/internal/http"
	"github.com/handiism/getart/internal/model"
	"github.com/sirupsen/logrus"
)

// DefaultMaxManifestFetches caps how many manifests one video resolution
// may download.
const DefaultMaxManifestFetches = 64

// Options configures a Resolver.
type Options struct {
	// MaxManifestFetches bounds the number of manifests fetched while
	// resolving one video. When the budget runs out the video is reported
	// as not found. Zero or negative means no limit.
	MaxManifestFetches int

	// Logger receives crawl diagnostics. Nil discards them.
	Logger logrus.FieldLogger
}

// DefaultOptions returns Options with the default fetch budget and no logger.
func DefaultOptions() Options {
	return Options{MaxManifestFetches: DefaultMaxManifestFetches}
}

// Resolver turns album pages into Artwork.
//
// A Resolver holds no per-call state and does not own its client; closing
// the client is the caller's job.
//
// Example:
//
//	client := http.NewClient(http.DefaultConfig())
//	defer client.Close()
//
//	resolver := NewResolver(client, DefaultOptions())
//	art, err := resolver.Resolve(ctx, "https://music.apple.com/us/album/x/123")
type Resolver struct {
	client     *http.Client
	maxFetches int
	log        logrus.FieldLogger
}

// NewResolver creates a Resolver that issues requests through client.
func NewResolver(client *http.Client, opts Options) *Resolver {
	log := opts.Logger
	if log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		log = quiet
	}

	return &Resolver{
		client:     client,
		maxFetches: opts.MaxManifestFetches,
		log:        log,
	}
}

// Resolve fetches the album page and resolves its artwork.
//
// This method performs the following steps:
//  1. Fetches the page and decodes its embedded payload
//  2. Builds the cover image URL
//  3. Looks up the motion artwork playlist and, if present, crawls it for
//     the .mp4
//  4. Reads the artist and album names
//
// Returns an error if:
//   - The page or any manifest cannot be fetched (*http.FetchError)
//   - The page has no usable payload (ErrPayloadNotFound)
//
// A page without some asset is not an error; the corresponding field is
// left empty. No partial result is returned alongside an error.
func (r *Resolver) Resolve(ctx context.Context, pageURL string) (*model.Artwork, error) {
	data, err := r.FetchServerData(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	art := &model.Artwork{}
	art.ImageURL, _ = data.ImageArtworkURL()

	if playlistURL, ok := data.VideoPlaylistURL(); ok && playlistURL != "" {
		videoURL, _, err := r.ResolveVideoURL(ctx, playlistURL)
		if err != nil {
			return nil, err
		}
		art.VideoURL = videoURL
	} else {
		r.log.WithField("url", pageURL).Debug("no motion artwork advertised")
	}

	art.ArtistName, _ = data.ArtistName()
	art.AlbumName, _ = data.AlbumName()

	r.log.WithFields(logrus.Fields{
		"url":    pageURL,
		"image":  art.HasImage(),
		"video":  art.HasVideo(),
		"artist": art.ArtistName,
		"album":  art.AlbumName,
	}).Debug("resolved album page")

	return art, nil
}

// Resolve resolves pageURL with a fresh client whose requests time out
// after timeout. The client is closed before Resolve returns, on every
// path.
func Resolve(ctx context.Context, pageURL string, timeout time.Duration) (*model.Artwork, error) {
	cfg := http.DefaultConfig()
	cfg.Timeout = timeout

	client := http.NewClient(cfg)
	defer client.Close()

	return NewResolver(client, DefaultOptions()).Resolve(ctx, pageURL)
}
