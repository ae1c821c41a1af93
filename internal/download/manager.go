package download

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/handiism/getart/internal/applemusic"
	"github.com/handiism/getart/internal/config"
	"github.com/handiism/getart/internal/http"
	ioutils "github.com/handiism/getart/internal/io"
	"github.com/handiism/getart/internal/logging"
	"github.com/handiism/getart/internal/model"
	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// NoAssetsMessage is reported when a page resolves without any artwork.
const NoAssetsMessage = "No artwork assets were discovered."

// maxConcurrentDownloads bounds parallel asset transfers (image and video).
const maxConcurrentDownloads = 2

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// SavedFile is an asset written to disk.
type SavedFile struct {
	Kind model.AssetKind
	Path string

	// Image is set for image assets whose header could be decoded.
	Image *ioutils.ImageInfo
}

// Result is the outcome of Run.
type Result struct {
	Artwork *model.Artwork
	Files   []SavedFile
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the diagnostic logger shared with the resolver.
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithOpener replaces the function used to open saved files. The default
// opens them with the desktop's default application.
func WithOpener(open func(path string) error) Option {
	return func(m *Manager) {
		m.opener = open
	}
}

// Manager resolves an album page and saves its artwork.
type Manager struct {
	settings     *config.Settings
	httpClient   *http.Client
	resolver     *applemusic.Resolver
	imageService *ioutils.ImageService
	opener       func(path string) error
	log          logrus.FieldLogger

	receivedBytes   int64
	totalFiles      int32
	downloadedFiles int32

	onProgress func(ProgressEvent)
}

// NewManager creates a new Manager. The Manager owns its HTTP client;
// call Close when done.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	m := &Manager{
		settings:     settings,
		httpClient:   http.NewClient(settings.ToHTTPConfig()),
		imageService: ioutils.NewImageService(),
		opener:       browser.OpenFile,
		log:          logging.Discard(),
		onProgress:   onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.resolver = applemusic.NewResolver(m.httpClient, settings.ToResolverOptions(m.log))
	return m
}

// Close releases the Manager's network resources.
func (m *Manager) Close() {
	m.httpClient.Close()
}

// Resolve validates and normalises pageURL, then resolves its artwork.
//
// Returns an error wrapping applemusic.ErrInvalidURL for malformed input,
// or the resolver's error (*http.FetchError, applemusic.ErrPayloadNotFound).
func (m *Manager) Resolve(ctx context.Context, pageURL string) (*model.Artwork, error) {
	if err := applemusic.ValidateURL(pageURL); err != nil {
		return nil, err
	}

	normalized := applemusic.NormalizeURL(pageURL)
	if normalized != pageURL {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Using %s", normalized), Level: LevelVerbose})
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching album page: %s", normalized), Level: LevelVerbose})
	art, err := m.resolver.Resolve(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if art.ArtistName != "" || art.AlbumName != "" {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Found album: %s - %s", art.ArtistName, art.AlbumName), Level: LevelVerbose})
	}
	return art, nil
}

// Run resolves pageURL, reports the asset URLs and, unless downloading
// is disabled, saves each asset to the output directory. Each asset's URL
// is reported right before its download outcome, image first.
//
// A page without artwork is not an error: NoAssetsMessage is reported
// and the returned Result has an empty Artwork. Failure to save one asset
// is reported as a warning and does not stop the other.
func (m *Manager) Run(ctx context.Context, pageURL string) (*Result, error) {
	art, err := m.Resolve(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	result := &Result{Artwork: art}
	if art.IsEmpty() {
		m.progress(ProgressEvent{Message: NoAssetsMessage, Level: LevelInfo})
		return result, nil
	}

	if m.settings.Download {
		if err := ioutils.EnsureDir(m.settings.OutputDir); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	kinds := assetKinds(art)
	if !m.settings.Download {
		for _, kind := range kinds {
			m.reportURL(art, kind)
		}
		return result, nil
	}

	result.Files = m.downloadAll(ctx, art, kinds)
	return result, nil
}

func (m *Manager) reportURL(art *model.Artwork, kind model.AssetKind) {
	m.progress(ProgressEvent{Message: fmt.Sprintf("%s_url: %s", kind, art.URL(kind)), Level: LevelInfo})
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes),
		atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

func (m *Manager) downloadAll(ctx context.Context, art *model.Artwork, kinds []model.AssetKind) []SavedFile {
	atomic.StoreInt32(&m.totalFiles, int32(len(kinds)))

	type outcome struct {
		file *SavedFile
		err  error
	}
	outcomes := make([]outcome, len(kinds))

	var g errgroup.Group
	g.SetLimit(maxConcurrentDownloads)

	for i, kind := range kinds {
		g.Go(func() error {
			file, err := m.downloadAsset(ctx, art, kind)
			outcomes[i] = outcome{file: file, err: err}
			return nil
		})
	}
	g.Wait() // Always nil; per-asset errors are in outcomes

	// Report in asset order regardless of completion order
	var files []SavedFile
	for i, kind := range kinds {
		m.reportURL(art, kind)

		file, err := outcomes[i].file, outcomes[i].err
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Failed to download %s: %v", kind, err), Level: LevelWarning})
			continue
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", file.Path), Level: LevelSuccess})
		if file.Image != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Saved image is %s", file.Image), Level: LevelVerbose})
		}
		if m.settings.OpenAfterDownload {
			m.open(file.Path)
		}
		files = append(files, *file)
	}
	return files
}

func (m *Manager) downloadAsset(ctx context.Context, art *model.Artwork, kind model.AssetKind) (*SavedFile, error) {
	assetURL := art.URL(kind)
	name := model.FileName(art.ArtistName, art.AlbumName, kind, model.ExtensionFromURL(assetURL))
	path := filepath.Join(m.settings.OutputDir, name)

	m.progress(ProgressEvent{Message: fmt.Sprintf("Saving %s to %s", kind, path), Level: LevelVerbose})

	var last int64
	err := m.httpClient.DownloadFile(ctx, assetURL, path, func(written, _ int64) {
		atomic.AddInt64(&m.receivedBytes, written-last)
		last = written
	})
	if err != nil {
		return nil, err
	}
	atomic.AddInt32(&m.downloadedFiles, 1)

	file := &SavedFile{Kind: kind, Path: path}
	if kind == model.AssetImage {
		info, err := m.imageService.ProbeFile(path)
		if err != nil {
			m.log.WithError(err).WithField("path", path).Debug("saved image header not recognised")
		} else {
			file.Image = &info
		}
	}
	return file, nil
}

// open hands path to the opener. Failures are logged and otherwise ignored.
func (m *Manager) open(path string) {
	if err := m.opener(path); err != nil {
		m.log.WithError(err).WithField("path", path).Debug("could not open saved file")
	}
}

func assetKinds(art *model.Artwork) []model.AssetKind {
	var kinds []model.AssetKind
	if art.HasImage() {
		kinds = append(kinds, model.AssetImage)
	}
	if art.HasVideo() {
		kinds = append(kinds, model.AssetVideo)
	}
	return kinds
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
