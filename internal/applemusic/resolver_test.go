package applemusic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	httpclient "github.com/handiism/getart/internal/http"
	"github.com/handiism/getart/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storefront is a fake album page host. Routes map a path to a response
// body; the literal "{base}" in a body is replaced with the server URL.
type storefront struct {
	srv    *httptest.Server
	routes map[string]route

	mu   sync.Mutex
	hits map[string]int
}

type route struct {
	status int
	body   string
}

func newStorefront(t *testing.T, routes map[string]route) *storefront {
	t.Helper()
	sf := &storefront{routes: routes, hits: make(map[string]int)}
	sf.srv = httptest.NewServer(http.HandlerFunc(sf.serve))
	t.Cleanup(sf.srv.Close)
	return sf
}

func (sf *storefront) serve(w http.ResponseWriter, r *http.Request) {
	sf.mu.Lock()
	sf.hits[r.URL.Path]++
	sf.mu.Unlock()

	rt, ok := sf.routes[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	status := rt.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	fmt.Fprint(w, strings.ReplaceAll(rt.body, "{base}", sf.srv.URL))
}

func (sf *storefront) url(path string) string {
	return sf.srv.URL + path
}

func (sf *storefront) hitCount(path string) int {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.hits[path]
}

func (sf *storefront) totalHits() int {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	total := 0
	for _, n := range sf.hits {
		total += n
	}
	return total
}

func albumPage(payload string) string {
	return "<html><head><title>Album</title></head><body>" +
		"<script type=\"application/json\" id=\"serialized-server-data\">" + payload + "</script>" +
		"</body></html>"
}

func newTestResolver(t *testing.T, opts Options) *Resolver {
	t.Helper()
	client := httpclient.NewClient(httpclient.DefaultConfig())
	t.Cleanup(client.Close)
	return NewResolver(client, opts)
}

const imageOnlyPayload = `[{"data": {"sections": [{
	"containerArtwork": {"dictionary": {"width": 3000, "height": 3000, "url": "https://x/{w}x{h}.{f}"}},
	"items": [{"title": "The Border", "subtitleLinks": [{"title": "Willie Nelson"}]}]
}]}}]`

const videoPayload = `[{"data": {"sections": [
	{"containerArtwork": {"dictionary": {"width": 3000, "height": 3000, "url": "https://x/{w}x{h}.{f}"}}},
	{"items": [{
		"title": "The Border",
		"subtitleLinks": [{"title": "Willie Nelson"}],
		"videoArtwork": {"dictionary": {"motionDetailSquare": {"video": "{base}/hls/master.m3u8"}}}
	}]}
]}}]`

func TestResolve_ImageOnly(t *testing.T) {
	sf := newStorefront(t, map[string]route{
		"/album/example": {body: albumPage(imageOnlyPayload)},
	})

	art, err := newTestResolver(t, DefaultOptions()).Resolve(context.Background(), sf.url("/album/example"))
	require.NoError(t, err)

	assert.Equal(t, &model.Artwork{
		ImageURL:   "https://x/3000x3000.jpg",
		ArtistName: "Willie Nelson",
		AlbumName:  "The Border",
	}, art)
	assert.Equal(t, 1, sf.totalHits(), "no manifest should be fetched without a playlist URL")
}

func TestResolve_WithVideo(t *testing.T) {
	sf := newStorefront(t, map[string]route{
		"/album/example":          {body: albumPage(videoPayload)},
		"/hls/master.m3u8":        {body: "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=4000000\nvariant/v1.m3u8\n"},
		"/hls/variant/v1.m3u8":    {body: "#EXTM3U\n#EXT-X-TARGETDURATION:6\n#EXT-X-MAP:URI=\"clip.mp4\"\n"},
		"/hls/variant/other.m3u8": {body: "#EXTM3U\n"},
	})

	art, err := newTestResolver(t, DefaultOptions()).Resolve(context.Background(), sf.url("/album/example"))
	require.NoError(t, err)

	assert.Equal(t, "https://x/3000x3000.jpg", art.ImageURL)
	assert.Equal(t, sf.url("/hls/variant/clip.mp4"), art.VideoURL)
	assert.Equal(t, "Willie Nelson", art.ArtistName)
	assert.Equal(t, "The Border", art.AlbumName)
	assert.Equal(t, 1, sf.hitCount("/hls/master.m3u8"))
	assert.Equal(t, 1, sf.hitCount("/hls/variant/v1.m3u8"))
}

func TestResolve_PageNotFound(t *testing.T) {
	sf := newStorefront(t, map[string]route{})

	art, err := newTestResolver(t, DefaultOptions()).Resolve(context.Background(), sf.url("/album/missing"))
	assert.Nil(t, art)

	var fetchErr *httpclient.FetchError
	require.True(t, errors.As(err, &fetchErr), "expected *FetchError, got %v", err)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestResolve_PayloadErrors(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"element absent", "<html><body><div id=\"app\">[]</div></body></html>"},
		{"element empty", "<html><body><script id=\"serialized-server-data\"></script></body></html>"},
		{"element whitespace", "<html><body><div id='serialized-server-data'>  \n </div></body></html>"},
		{"invalid json", albumPage(`[{"data": `)},
		{"not html at all", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sf := newStorefront(t, map[string]route{"/album/x": {body: tt.page}})

			art, err := newTestResolver(t, DefaultOptions()).Resolve(context.Background(), sf.url("/album/x"))
			assert.Nil(t, art)
			assert.True(t, errors.Is(err, ErrPayloadNotFound), "got %v", err)
		})
	}
}

func TestResolve_PayloadInDivWithEntities(t *testing.T) {
	payload := strings.ReplaceAll(imageOnlyPayload, `"`, "&quot;")
	page := "<html><body><div id='serialized-server-data'>" + payload + "</div></body></html>"
	sf := newStorefront(t, map[string]route{"/album/x": {body: page}})

	art, err := newTestResolver(t, DefaultOptions()).Resolve(context.Background(), sf.url("/album/x"))
	require.NoError(t, err)
	assert.Equal(t, "https://x/3000x3000.jpg", art.ImageURL)
	assert.Equal(t, "Willie Nelson", art.ArtistName)
}

func TestResolve_VideoFetchFailurePropagates(t *testing.T) {
	sf := newStorefront(t, map[string]route{
		"/album/example":       {body: albumPage(videoPayload)},
		"/hls/master.m3u8":     {body: "#EXTM3U\nvariant/v1.m3u8\n"},
		"/hls/variant/v1.m3u8": {status: http.StatusInternalServerError},
	})

	art, err := newTestResolver(t, DefaultOptions()).Resolve(context.Background(), sf.url("/album/example"))
	assert.Nil(t, art, "no partial result on error")

	var fetchErr *httpclient.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
	assert.Equal(t, sf.url("/hls/variant/v1.m3u8"), fetchErr.URL)
}

func TestResolve_PlaylistLeadsNowhere(t *testing.T) {
	sf := newStorefront(t, map[string]route{
		"/album/example":   {body: albumPage(videoPayload)},
		"/hls/master.m3u8": {body: "#EXTM3U\n#EXT-X-ENDLIST\n"},
	})

	art, err := newTestResolver(t, DefaultOptions()).Resolve(context.Background(), sf.url("/album/example"))
	require.NoError(t, err)
	assert.Empty(t, art.VideoURL)
	assert.Equal(t, "https://x/3000x3000.jpg", art.ImageURL)
}

func TestResolve_Idempotent(t *testing.T) {
	sf := newStorefront(t, map[string]route{
		"/album/example":       {body: albumPage(videoPayload)},
		"/hls/master.m3u8":     {body: "#EXTM3U\nvariant/v1.m3u8\n"},
		"/hls/variant/v1.m3u8": {body: "#EXT-X-MAP:URI=\"clip.mp4\"\n"},
	})
	resolver := newTestResolver(t, DefaultOptions())

	first, err := resolver.Resolve(context.Background(), sf.url("/album/example"))
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), sf.url("/album/example"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, sf.hitCount("/hls/master.m3u8"), "visited set must not leak across calls")
}

func TestResolveVideoURL_Cycle(t *testing.T) {
	sf := newStorefront(t, map[string]route{
		"/a.m3u8": {body: "#EXTM3U\nb.m3u8\n"},
		"/b.m3u8": {body: "#EXTM3U\na.m3u8\n{base}/b.m3u8\n"},
	})

	got, ok, err := newTestResolver(t, Options{}).ResolveVideoURL(context.Background(), sf.url("/a.m3u8"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, 1, sf.hitCount("/a.m3u8"))
	assert.Equal(t, 1, sf.hitCount("/b.m3u8"))
	assert.Equal(t, 2, sf.totalHits())
}

func TestResolveVideoURL_ShallowestWins(t *testing.T) {
	sf := newStorefront(t, map[string]route{
		"/master.m3u8": {body: "#EXTM3U\nv1.m3u8\nv2.m3u8\n"},
		"/v1.m3u8":     {body: "#EXTM3U\ndeep.m3u8\n"},
		"/v2.m3u8":     {body: "#EXTM3U\n#EXTINF:6,\nshallow.mp4\n"},
		"/deep.m3u8":   {body: "#EXTM3U\n#EXTINF:6,\ndeep.mp4\n"},
	})

	got, ok, err := newTestResolver(t, Options{}).ResolveVideoURL(context.Background(), sf.url("/master.m3u8"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sf.url("/shallow.mp4"), got)
	assert.Zero(t, sf.hitCount("/deep.m3u8"), "crawl must stop at the first media file")
}

func TestResolveVideoURL_FetchBudget(t *testing.T) {
	routes := make(map[string]route)
	for i := 0; i < 10; i++ {
		routes[fmt.Sprintf("/m%d.m3u8", i)] = route{body: fmt.Sprintf("#EXTM3U\nm%d.m3u8\n", i+1)}
	}
	routes["/m10.m3u8"] = route{body: "#EXTM3U\nclip.mp4\n"}
	sf := newStorefront(t, routes)

	got, ok, err := newTestResolver(t, Options{MaxManifestFetches: 3}).ResolveVideoURL(context.Background(), sf.url("/m0.m3u8"))
	require.NoError(t, err, "an exhausted budget is not an error")
	assert.False(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, 3, sf.totalHits())

	got, ok, err = newTestResolver(t, Options{}).ResolveVideoURL(context.Background(), sf.url("/m0.m3u8"))
	require.NoError(t, err)
	require.True(t, ok, "unlimited budget reaches the media file")
	assert.Equal(t, sf.url("/clip.mp4"), got)
}

func TestResolveVideoURL_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	client := httpclient.NewClient(cfg)
	defer client.Close()

	_, _, err := NewResolver(client, Options{}).ResolveVideoURL(context.Background(), srv.URL+"/master.m3u8")
	var fetchErr *httpclient.FetchError
	assert.True(t, errors.As(err, &fetchErr), "timeouts surface as fetch errors, got %v", err)
}

func TestResolve_ScopedClient(t *testing.T) {
	sf := newStorefront(t, map[string]route{
		"/album/example": {body: albumPage(imageOnlyPayload)},
	})

	art, err := Resolve(context.Background(), sf.url("/album/example"), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "https://x/3000x3000.jpg", art.ImageURL)

	_, err = Resolve(context.Background(), sf.url("/album/gone"), 5*time.Second)
	var fetchErr *httpclient.FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://music.apple.com/us/album/infinite/1837337842", false},
		{"http://localhost:8080/album", false},
		{"music.apple.com/us/album/x", true},
		{"not a url", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidURL), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://beta.music.apple.com/us/album/infinite/1837337842", "https://music.apple.com/us/album/infinite/1837337842"},
		{"https://music.apple.com/us/album/infinite/1837337842", "https://music.apple.com/us/album/infinite/1837337842"},
		{"https://beta./x", "https://beta./x"},
		{"https://notbeta.music.apple.com/x", "https://notbeta.music.apple.com/x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.input))
		})
	}
}
