package docdex

import "context"

// HTMLPage is a downloaded HTML page together with its canonical URL
// (the URL the content was ultimately served from, after any redirects).
type HTMLPage struct {
	URL  string
	HTML string
}

// Fetcher retrieves HTML pages from URLs.
type Fetcher interface {
	// Fetch downloads the page at url. The context controls timeout and
	// cancellation.
	Fetch(ctx context.Context, url string) (*HTMLPage, error)
}

// PageSource discovers the content page URLs of a site. Used as a
// fallback when a site's navigation does not enumerate its pages.
type PageSource interface {
	// DiscoverURLs returns the URLs of pages under rootURL.
	DiscoverURLs(ctx context.Context, rootURL string) ([]string, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// PageInspector extracts site- and tutorial-level metadata from a page.
type PageInspector interface {
	// SiteMetadata assembles metadata for a whole site from its
	// homepage. rootURL is normalized before use as the partition key.
	SiteMetadata(page *HTMLPage, rootURL string, priority int) (*SiteMetadata, error)

	// TutorialMetadata extracts tutorial-level metadata from a
	// single-page tutorial.
	TutorialMetadata(page *HTMLPage) (*TutorialMetadata, error)

	// RedirectTarget returns the destination URL when the page is an
	// immediate meta-refresh redirect, or empty when it is not.
	RedirectTarget(page *HTMLPage) string
}
