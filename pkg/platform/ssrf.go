// Package platform provides URL validation for CI endpoints
package platform

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// ErrMalformedURL is returned for endpoints that cannot be requested at all.
var ErrMalformedURL = errors.New("malformed URL")

// validURLPattern matches safe URL schemes (http/https only)
var validURLPattern = regexp.MustCompile(`^https?://`)

// validateBaseURL checks that rawURL is an absolute http(s) URL with a host.
// CI servers usually live on private networks, so no address ranges are blocked.
func validateBaseURL(rawURL string) error {
	if !validURLPattern.MatchString(rawURL) {
		return fmt.Errorf("%w: only http and https are allowed: %q", ErrMalformedURL, rawURL)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}

	if parsedURL.Hostname() == "" {
		return fmt.Errorf("%w: URL has no hostname: %q", ErrMalformedURL, rawURL)
	}

	return nil
}
