// Package favicon derives display icon URLs for websites. Only a URL is
// constructed here; nothing is ever fetched.
package favicon

import (
	"fmt"
	"net/url"
)

// Resolver maps a normalized website URL to a displayable image URL.
type Resolver interface {
	Resolve(websiteURL string) string
}

// ServiceResolver builds icon URLs against a favicon service endpoint.
type ServiceResolver struct {
	// Endpoint is a format string receiving the website host.
	Endpoint string
}

// NewServiceResolver returns the default resolver backed by the Google s2
// favicon service.
func NewServiceResolver() *ServiceResolver {
	return &ServiceResolver{Endpoint: "https://www.google.com/s2/favicons?domain=%s&sz=64"}
}

// Resolve returns the icon URL for the website, or an empty string when the
// website URL cannot be parsed.
func (r *ServiceResolver) Resolve(websiteURL string) string {
	u, err := url.Parse(websiteURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return fmt.Sprintf(r.Endpoint, u.Host)
}
