// Package http provides the HTTP client used to talk to the storefront and
// its media CDN.
//
// The Client in this package handles:
//   - Browser-identifying request headers (the storefront serves a reduced
//     page to unknown agents)
//   - A per-request timeout (an idle limit for file downloads) and
//     automatic redirect following
//   - Typed fetch failures (*FetchError) for transport errors and non-2xx
//     responses
//   - Streaming file downloads with progress tracking
//
// # Basic Usage
//
//	client := http.NewClient(http.DefaultConfig())
//	defer client.Close()
//
//	// Fetch an album page
//	page, err := client.GetString(ctx, "https://music.apple.com/us/album/x/123")
//
//	// Download a file with a progress callback
//	client.DownloadFile(ctx, videoURL, "/tmp/video.mp4", func(written, total int64) {
//	    fmt.Printf("%d/%d\n", written, total)
//	})
//
// # Errors
//
// Every failed request is reported as a *FetchError, so callers can tell a
// network problem apart from anything that happens after the body arrived:
//
//	var fetchErr *http.FetchError
//	if errors.As(err, &fetchErr) {
//	    fmt.Println(fetchErr.URL, fetchErr.StatusCode)
//	}
package http
