package applemusic

import (
	"fmt"
	"net/url"
	"strings"
)

const betaHostPrefix = "beta."

// ValidateURL checks that candidate is an absolute URL with a scheme and host.
func ValidateURL(candidate string) error {
	u, err := url.Parse(candidate)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, candidate)
	}
	return nil
}

// NormalizeURL rewrites beta storefront links to the public host.
//
//	NormalizeURL("https://beta.music.apple.com/us/album/x/1")
//	// "https://music.apple.com/us/album/x/1"
//
// Any other input is returned unchanged.
func NormalizeURL(candidate string) string {
	u, err := url.Parse(candidate)
	if err != nil {
		return candidate
	}
	if !strings.HasPrefix(u.Host, betaHostPrefix) || len(u.Host) == len(betaHostPrefix) {
		return candidate
	}
	u.Host = strings.TrimPrefix(u.Host, betaHostPrefix)
	return u.String()
}
