package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxEndpointLength bounds configured API base URLs.
const MaxEndpointLength = 2048

// ValidateEndpoint checks that raw is usable as an API base URL: http or
// https, a hostname, and no query string or fragment (request parameters
// are appended by the clients).
func ValidateEndpoint(raw string) error {
	raw = strings.TrimSpace(raw)

	if raw == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(raw) > MaxEndpointLength {
		return fmt.Errorf("URL too long (max %d characters)", MaxEndpointLength)
	}
	if strings.ContainsAny(raw, "<>\"'` ") {
		return fmt.Errorf("URL contains invalid characters")
	}

	parsedURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must use http or https protocol")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}
	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return fmt.Errorf("URL must not carry a query or fragment")
	}
	if strings.Contains(parsedURL.Path, "..") {
		return fmt.Errorf("directory traversal patterns not allowed in URL path")
	}

	return nil
}
