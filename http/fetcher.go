// Package http provides HTTP-based implementations of docdex.Fetcher and
// docdex.PageSource for static documentation sites.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/docdex"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements docdex.Fetcher at compile time.
var _ docdex.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML pages over HTTP. It does not execute JavaScript
// and is suitable for static sites only.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the page at url. The returned page carries the final URL
// after any HTTP redirects, so anchors and relative links resolve against
// the page that actually served the content.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*docdex.HTMLPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "invalid URL %q: %v", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "failed to fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, docdex.Errorf(docdex.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "failed to read %s: %v", url, err)
	}

	return &docdex.HTMLPage{
		URL:  resp.Request.URL.String(),
		HTML: string(body),
	}, nil
}
