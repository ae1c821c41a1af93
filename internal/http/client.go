package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultUserAgent identifies requests as desktop Safari.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) " +
	"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15"

// DefaultTimeout is the per-request timeout used by DefaultConfig.
const DefaultTimeout = 10 * time.Second

// Config holds everything a Client needs at construction.
//
// There is no package-level header set: each Client carries its own copy,
// so two clients configured differently never interfere.
type Config struct {
	// Timeout bounds a single Get or GetString, including reading the body.
	// For DownloadFile it is an idle limit instead: the transfer fails only
	// if no data arrives for this long. Zero means no timeout.
	Timeout time.Duration

	// Header is sent with every request.
	Header http.Header

	// Transport overrides the round tripper. Nil means a private clone of
	// http.DefaultTransport that is released by Close.
	Transport http.RoundTripper
}

// DefaultConfig returns a Config with the browser User-Agent and a
// 10 second timeout.
func DefaultConfig() Config {
	header := make(http.Header)
	header.Set("User-Agent", DefaultUserAgent)
	return Config{
		Timeout: DefaultTimeout,
		Header:  header,
	}
}

// Client wraps HTTP operations with storefront-specific configuration.
//
// A Client owns its connection pool. Call Close when done with it:
//
//	client := NewClient(DefaultConfig())
//	defer client.Close()
//
//	html, err := client.GetString(ctx, pageURL)
type Client struct {
	httpClient   *http.Client
	streamClient *http.Client
	header       http.Header
	timeout      time.Duration
}

// ErrStalled is reported by DownloadFile when no data arrives within the
// configured timeout.
var ErrStalled = errors.New("transfer stalled")

// NewClient creates a new Client from cfg.
//
// Redirects are followed using the net/http default policy.
func NewClient(cfg Config) *Client {
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	header := cfg.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		streamClient: &http.Client{
			Transport: transport,
		},
		header:  header,
		timeout: cfg.Timeout,
	}
}

// FetchError reports a failed GET: either the request never produced a
// response (StatusCode is zero and Err holds the transport error) or the
// server answered with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ProgressWriter wraps a writer to track download progress.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	// It is -1 when the server did not announce a length.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns a *FetchError if:
//   - The request cannot be built or sent (including timeouts)
//   - The response status is not 2xx
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, c.httpClient, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return body, nil
}

// GetString performs a GET request and returns the response body as a string.
//
// This is a convenience wrapper around Get for text content like HTML
// pages and playlists.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DownloadFile streams url into destPath with an optional progress callback.
//
// A large file may take longer than the configured timeout to arrive. The
// timeout only bounds the wait for the response and each gap between
// chunks; a stalled transfer fails with a *FetchError wrapping ErrStalled.
//
// The file is created (or truncated if it exists). If the transfer fails
// midway the partial file is removed. HTTP failures are reported as
// *FetchError; local file failures are wrapped with the destination path.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	idle := newIdleTimer(c.timeout, func() { cancel(ErrStalled) })
	defer idle.stop()

	resp, err := c.do(ctx, c.streamClient, url)
	if err != nil {
		return stalledOr(ctx, err)
	}
	defer resp.Body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}

	var writer io.Writer = &idleWriter{Writer: file, idle: idle}
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   writer,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	_, copyErr := io.Copy(writer, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		os.Remove(destPath)
		return stalledOr(ctx, &FetchError{URL: url, Err: copyErr})
	}
	if closeErr != nil {
		return fmt.Errorf("write %s: %w", destPath, closeErr)
	}
	return nil
}

// Close releases idle connections held by the client's transport.
// The Client must not be used afterwards.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// idleTimer fires once when it is not reset within d. A zero d never fires.
type idleTimer struct {
	d     time.Duration
	timer *time.Timer
}

func newIdleTimer(d time.Duration, fire func()) *idleTimer {
	t := &idleTimer{d: d}
	if d > 0 {
		t.timer = time.AfterFunc(d, fire)
	}
	return t
}

func (t *idleTimer) reset() {
	if t.timer != nil {
		t.timer.Reset(t.d)
	}
}

func (t *idleTimer) stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
}

// idleWriter pushes the idle deadline back on every chunk written.
type idleWriter struct {
	io.Writer
	idle *idleTimer
}

func (w *idleWriter) Write(p []byte) (int, error) {
	w.idle.reset()
	return w.Writer.Write(p)
}

// stalledOr replaces err with a stall report when the idle timer cancelled ctx.
func stalledOr(ctx context.Context, err error) error {
	if !errors.Is(context.Cause(ctx), ErrStalled) {
		return err
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return &FetchError{URL: fetchErr.URL, Err: ErrStalled}
	}
	return err
}

func (c *Client) do(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	for key, values := range c.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	return resp, nil
}
