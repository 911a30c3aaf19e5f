package docdex

import (
	"net/url"
	"strings"
)

// SiteMetadata describes one crawled documentation site as a whole. It is
// extracted once from the site's homepage and denormalized onto every
// record produced for the site.
type SiteMetadata struct {
	// RootURL is the canonical URL prefix shared by all pages of the
	// site. It is the partition key for the sweep and delete protocols:
	// every record derived from the site carries this exact value.
	// Always ends in "/" and carries no query or fragment.
	RootURL string `json:"rootUrl"`

	Title       string `json:"title"`
	LogoURL     string `json:"logoUrl"`
	Description string `json:"description"`

	// HomepageURL is the URL of the site's homepage, which is not
	// necessarily the RootURL (the root often redirects to it).
	HomepageURL string `json:"homepageUrl"`

	// SourceRepository is the URL of the site's source repository,
	// when one is advertised. Optional.
	SourceRepository string `json:"sourceRepository,omitempty"`

	// PageURLs are the URLs of the site's known content pages.
	PageURLs []string `json:"pageUrls"`

	// Priority elevates the site's records in default result sorting.
	Priority int `json:"priority"`
}

// Validate returns an error if required metadata is missing or unparsable.
func (m *SiteMetadata) Validate() error {
	if m.RootURL == "" {
		return Errorf(EINVALID, "site root URL required")
	}
	if _, err := url.Parse(m.RootURL); err != nil {
		return Errorf(EINVALID, "invalid site root URL %q: %v", m.RootURL, err)
	}
	if m.HomepageURL == "" {
		return Errorf(EINVALID, "site homepage URL required")
	}
	if _, err := url.Parse(m.HomepageURL); err != nil {
		return Errorf(EINVALID, "invalid site homepage URL %q: %v", m.HomepageURL, err)
	}
	return nil
}

// AllPageURLs returns PageURLs together with the homepage URL, deduplicated
// and in insertion order.
func (m *SiteMetadata) AllPageURLs() []string {
	seen := make(map[string]bool, len(m.PageURLs)+1)
	urls := make([]string, 0, len(m.PageURLs)+1)
	for _, u := range append([]string{m.HomepageURL}, m.PageURLs...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// NormalizeRootURL canonicalizes a root URL so it points to a directory,
// not a file: path segments ending in ".html" are dropped, the path gains
// a trailing "/", and query and fragment are stripped.
func NormalizeRootURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", Errorf(EINVALID, "invalid root URL %q: %v", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", Errorf(EINVALID, "root URL %q must be absolute", raw)
	}

	segments := strings.Split(u.Path, "/")
	kept := segments[:0]
	for _, s := range segments {
		if strings.HasSuffix(s, ".html") {
			continue
		}
		kept = append(kept, s)
	}
	path := strings.Join(kept, "/")
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	u.Path = path
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
