package mock

import (
	"context"

	"github.com/fwojciec/docdex"
)

var _ docdex.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of docdex.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*docdex.HTMLPage, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*docdex.HTMLPage, error) {
	return f.FetchFn(ctx, url)
}

var _ docdex.PageSource = (*PageSource)(nil)

// PageSource is a mock implementation of docdex.PageSource.
type PageSource struct {
	DiscoverURLsFn func(ctx context.Context, rootURL string) ([]string, error)
}

func (s *PageSource) DiscoverURLs(ctx context.Context, rootURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, rootURL)
}

var _ docdex.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of docdex.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
