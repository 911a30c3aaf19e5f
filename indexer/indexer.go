// Package indexer provides documentation indexing orchestration.
// It coordinates page fetching, section reduction, record building, and
// epoch-based synchronization of the search index.
package indexer

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fwojciec/docdex"
)

// Indexer orchestrates the indexing of documentation sites.
type Indexer struct {
	Fetcher   docdex.Fetcher
	Reducers  docdex.ReducerRegistry
	Inspector docdex.PageInspector
	Epochs    docdex.EpochGenerator
	Index     docdex.IndexService

	// Pages, when set, supplements navigation-based page discovery with
	// sitemap discovery for sites whose homepages carry no navigation.
	Pages docdex.PageSource

	// Limiter, when set, throttles fetches per domain.
	Limiter docdex.DomainLimiter

	Concurrency int
	Logger      *slog.Logger
}

// Result holds the outcome of an indexing run.
type Result struct {
	RootURL string
	Epoch   docdex.Epoch
	Pages   int
	Failed  int
	Saved   int
	Swept   int
}

// ignoredTutorialHeadings are metadata sections of a tutorial page that are
// lifted into record fields instead of being indexed as content.
var ignoredTutorialHeadings = map[string]bool{
	"authors":  true,
	"keywords": true,
	"summary":  true,
}

// pageResult holds the outcome of processing a single guide page.
type pageResult struct {
	url     string
	records []*docdex.SearchRecord
	err     error
}

// IndexGuide indexes a multi-page documentation site rooted at url. It
// reads site metadata and the page listing from the homepage, reduces
// every page to sections, and synchronizes the index under a fresh epoch.
// Individual page failures are logged and skipped; the run fails only
// when the homepage itself cannot be processed.
func (i *Indexer) IndexGuide(ctx context.Context, rawURL string, priority int) (*Result, error) {
	homepage, err := i.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	// Site roots often serve a meta-refresh stub pointing at the real
	// homepage. Follow it once.
	if target := i.Inspector.RedirectTarget(homepage); target != "" {
		i.logger().Info("following redirect", "from", homepage.URL, "to", target)
		homepage, err = i.fetch(ctx, target)
		if err != nil {
			return nil, err
		}
	}

	site, err := i.Inspector.SiteMetadata(homepage, homepage.URL, priority)
	if err != nil {
		return nil, err
	}

	urls := site.AllPageURLs()
	if len(site.PageURLs) == 0 && i.Pages != nil {
		urls = i.discoverPages(ctx, site, urls)
	}

	epoch := i.Epochs.NewEpoch()
	records, failed := i.reduceGuidePages(ctx, urls, homepage, site, epoch)

	sync := &Synchronizer{Index: i.Index, Logger: i.Logger}
	sr, err := sync.Run(ctx, site.RootURL, epoch, records)
	if err != nil {
		return nil, err
	}

	return &Result{
		RootURL: site.RootURL,
		Epoch:   epoch,
		Pages:   len(urls),
		Failed:  failed,
		Saved:   sr.Saved,
		Swept:   sr.Swept,
	}, nil
}

// IndexTutorial indexes a single-page tutorial at url. The tutorial's own
// URL acts as the root URL, so each tutorial forms its own sweep partition.
func (i *Indexer) IndexTutorial(ctx context.Context, rawURL string, priority int) (*Result, error) {
	page, err := i.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if target := i.Inspector.RedirectTarget(page); target != "" {
		i.logger().Info("following redirect", "from", page.URL, "to", target)
		page, err = i.fetch(ctx, target)
		if err != nil {
			return nil, err
		}
	}

	tutorial, err := i.Inspector.TutorialMetadata(page)
	if err != nil {
		return nil, err
	}

	reducer := i.Reducers.GetForHTML(page.HTML)
	sections, err := reducer.ReduceSections(page.HTML, page.URL)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		i.logger().Warn("no sections extracted", "url", page.URL, "reducer", reducer.Name())
	}

	epoch := i.Epochs.NewEpoch()
	var records []*docdex.SearchRecord
	var rootURL string
	for _, section := range sections {
		if ignoredTutorialHeadings[strings.ToLower(section.Title())] {
			continue
		}
		// The h1 section's body repeats the whole tutorial; the summary
		// is the better search snippet for it.
		if section.Depth() == 1 && section.Title() == tutorial.H1 && tutorial.Summary != "" {
			section.Content = tutorial.Summary
		}
		rec, err := docdex.NewTutorialRecord(section, tutorial, epoch, priority)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		rootURL = rec.RootURL
	}
	if rootURL == "" {
		// No indexable sections; derive the partition key directly so the
		// result still names it.
		rootURL = tutorial.URL
		if u, err := url.Parse(tutorial.URL); err == nil {
			u.Fragment = ""
			u.RawQuery = ""
			rootURL = u.String()
		}
	}

	sync := &Synchronizer{Index: i.Index, Logger: i.Logger}
	sr, err := sync.Run(ctx, rootURL, epoch, records)
	if err != nil {
		return nil, err
	}

	return &Result{
		RootURL: rootURL,
		Epoch:   epoch,
		Pages:   1,
		Saved:   sr.Saved,
		Swept:   sr.Swept,
	}, nil
}

// DeleteRootURL removes all records partitioned under rawURL, regardless
// of the epoch that produced them. The URL is matched verbatim against
// record root URLs: guide partitions end in "/" while tutorial partitions
// carry the page's own URL with its ".html" segment intact, so the only
// canonicalization applied is dropping the fragment and query.
func (i *Indexer) DeleteRootURL(ctx context.Context, rawURL string) (int, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, docdex.Errorf(docdex.EINVALID, "invalid root URL %q: %v", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return 0, docdex.Errorf(docdex.EINVALID, "root URL %q must be absolute", rawURL)
	}
	u.Fragment = ""
	u.RawQuery = ""

	sync := &Synchronizer{Index: i.Index, Logger: i.Logger}
	return sync.DeleteRootURL(ctx, u.String())
}

// reduceGuidePages fans out over the site's pages, reducing each to records.
// The already fetched homepage is reused rather than fetched again.
func (i *Indexer) reduceGuidePages(ctx context.Context, urls []string, homepage *docdex.HTMLPage, site *docdex.SiteMetadata, epoch docdex.Epoch) ([]*docdex.SearchRecord, int) {
	concurrency := i.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	resultCh := make(chan pageResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, pageURL := range urls {
			pageURL := pageURL
			g.Go(func() error {
				resultCh <- i.processGuidePage(gctx, pageURL, homepage, site, epoch)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	var records []*docdex.SearchRecord
	var failed int
	for res := range resultCh {
		if res.err != nil {
			failed++
			i.logger().Warn("page indexing failed", "url", res.url, "err", res.err)
			continue
		}
		records = append(records, res.records...)
	}
	return records, failed
}

// processGuidePage fetches one page and reduces it to search records.
func (i *Indexer) processGuidePage(ctx context.Context, pageURL string, homepage *docdex.HTMLPage, site *docdex.SiteMetadata, epoch docdex.Epoch) pageResult {
	result := pageResult{url: pageURL}

	page := homepage
	if pageURL != homepage.URL {
		var err error
		page, err = i.fetch(ctx, pageURL)
		if err != nil {
			result.err = err
			return result
		}
	}

	reducer := i.Reducers.GetForHTML(page.HTML)
	sections, err := reducer.ReduceSections(page.HTML, page.URL)
	if err != nil {
		result.err = err
		return result
	}
	if len(sections) == 0 {
		i.logger().Warn("no sections extracted", "url", page.URL, "reducer", reducer.Name())
		return result
	}

	for _, section := range sections {
		rec, err := docdex.NewGuideRecord(section, site, page.URL, epoch)
		if err != nil {
			result.err = err
			return result
		}
		result.records = append(result.records, rec)
	}
	return result
}

// discoverPages falls back to sitemap discovery when the homepage
// navigation advertises no pages.
func (i *Indexer) discoverPages(ctx context.Context, site *docdex.SiteMetadata, urls []string) []string {
	discovered, err := i.Pages.DiscoverURLs(ctx, site.RootURL)
	if err != nil {
		i.logger().Warn("page discovery failed", "root_url", site.RootURL, "err", err)
		return urls
	}
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		seen[u] = true
	}
	for _, u := range discovered {
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

// fetch rate-limits and fetches a single page.
func (i *Indexer) fetch(ctx context.Context, rawURL string) (*docdex.HTMLPage, error) {
	if i.Limiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, docdex.Errorf(docdex.EINVALID, "invalid URL %q: %v", rawURL, err)
		}
		if err := i.Limiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}
	return i.Fetcher.Fetch(ctx, rawURL)
}

func (i *Indexer) logger() *slog.Logger {
	if i.Logger != nil {
		return i.Logger
	}
	return slog.Default()
}
