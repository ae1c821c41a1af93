package applemusic

import "errors"

// ErrInvalidURL is returned by ValidateURL for input that is not an
// absolute URL with a scheme and host.
var ErrInvalidURL = errors.New("invalid URL")

// ErrPayloadNotFound is returned when the album page has no usable
// serialized-server-data payload.
//
// This typically occurs when:
//   - The URL is not an album page
//   - The storefront served a reduced page (e.g. an unexpected User-Agent)
//   - The element exists but is empty or not valid JSON
var ErrPayloadNotFound = errors.New("server data payload not found")
