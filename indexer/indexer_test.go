package indexer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/docdex"
	"github.com/fwojciec/docdex/indexer"
	"github.com/fwojciec/docdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	guideRootURL  = "https://example.com/docs/"
	guideHomepage = "https://example.com/docs/index.html"
	guidePageA    = "https://example.com/docs/a.html"
	guidePageB    = "https://example.com/docs/b.html"
)

// pagesFetcher serves a fixed set of pages. The page map is read-only, so
// concurrent fetches are safe.
func pagesFetcher(pages map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) (*docdex.HTMLPage, error) {
			html, ok := pages[url]
			if !ok {
				return nil, docdex.Errorf(docdex.ENOTFOUND, "page %q not found", url)
			}
			return &docdex.HTMLPage{URL: url, HTML: html}, nil
		},
	}
}

func guideInspector() *mock.PageInspector {
	return &mock.PageInspector{
		SiteMetadataFn: func(page *docdex.HTMLPage, rootURL string, priority int) (*docdex.SiteMetadata, error) {
			return &docdex.SiteMetadata{
				RootURL:     guideRootURL,
				Title:       "Example Docs",
				HomepageURL: page.URL,
				PageURLs:    []string{guidePageA, guidePageB},
				Priority:    priority,
			}, nil
		},
	}
}

// sectionPerPage reduces every page to a single section titled after its HTML.
func sectionPerPage() *mock.ReducerRegistry {
	reducer := &mock.SectionReducer{
		ReduceSectionsFn: func(html string, baseURL string) ([]docdex.Section, error) {
			return []docdex.Section{{Headings: []string{html}, Anchor: "s", Content: "content of " + html}}, nil
		},
		NameFn: func() string { return "book" },
	}
	return &mock.ReducerRegistry{
		GetForHTMLFn: func(html string) docdex.SectionReducer { return reducer },
	}
}

func fixedEpoch(e docdex.Epoch) *mock.EpochGenerator {
	return &mock.EpochGenerator{NewEpochFn: func() docdex.Epoch { return e }}
}

// capturingIndex saves everything and reports no stale records.
type capturingIndex struct {
	saved   []*docdex.SearchRecord
	browsed bool
}

func (c *capturingIndex) service() *mock.IndexService {
	return &mock.IndexService{
		SaveRecordsFn: func(ctx context.Context, records []*docdex.SearchRecord) ([]string, error) {
			c.saved = records
			ids := make([]string, len(records))
			for i, r := range records {
				ids[i] = r.ObjectID
			}
			return ids, nil
		},
		BrowseRecordsFn: func(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
			c.browsed = true
			return &mock.RecordIterator{}, nil
		},
		DeleteRecordsFn: func(ctx context.Context, ids []string) error { return nil },
	}
}

func TestIndexer_IndexGuide(t *testing.T) {
	t.Parallel()

	t.Run("indexes every page under one epoch", func(t *testing.T) {
		t.Parallel()

		index := &capturingIndex{}
		idx := &indexer.Indexer{
			Fetcher: pagesFetcher(map[string]string{
				guideHomepage: "home",
				guidePageA:    "page-a",
				guidePageB:    "page-b",
			}),
			Reducers:  sectionPerPage(),
			Inspector: guideInspector(),
			Epochs:    fixedEpoch("epoch-1"),
			Index:     index.service(),
		}

		result, err := idx.IndexGuide(context.Background(), guideHomepage, 3)
		require.NoError(t, err)

		assert.Equal(t, guideRootURL, result.RootURL)
		assert.Equal(t, docdex.Epoch("epoch-1"), result.Epoch)
		assert.Equal(t, 3, result.Pages)
		assert.Zero(t, result.Failed)
		assert.Equal(t, 3, result.Saved)

		require.Len(t, index.saved, 3)
		for _, rec := range index.saved {
			assert.Equal(t, docdex.Epoch("epoch-1"), rec.IndexEpoch)
			assert.Equal(t, guideRootURL, rec.RootURL)
			assert.Equal(t, docdex.ContentTypeGuide, rec.ContentType)
			assert.Equal(t, 3, rec.Priority)
		}
	})

	t.Run("follows a meta refresh stub to the real homepage", func(t *testing.T) {
		t.Parallel()

		index := &capturingIndex{}
		inspector := guideInspector()
		inspector.RedirectTargetFn = func(page *docdex.HTMLPage) string {
			if page.HTML == "redirect-stub" {
				return guideHomepage
			}
			return ""
		}
		idx := &indexer.Indexer{
			Fetcher: pagesFetcher(map[string]string{
				guideRootURL:  "redirect-stub",
				guideHomepage: "home",
				guidePageA:    "page-a",
				guidePageB:    "page-b",
			}),
			Reducers:  sectionPerPage(),
			Inspector: inspector,
			Epochs:    fixedEpoch("epoch-1"),
			Index:     index.service(),
		}

		result, err := idx.IndexGuide(context.Background(), guideRootURL, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, result.Saved)
	})

	t.Run("a failing page is skipped, not fatal", func(t *testing.T) {
		t.Parallel()

		index := &capturingIndex{}
		idx := &indexer.Indexer{
			Fetcher: pagesFetcher(map[string]string{
				guideHomepage: "home",
				guidePageA:    "page-a",
				// guidePageB missing: its fetch fails.
			}),
			Reducers:  sectionPerPage(),
			Inspector: guideInspector(),
			Epochs:    fixedEpoch("epoch-1"),
			Index:     index.service(),
		}

		result, err := idx.IndexGuide(context.Background(), guideHomepage, 0)
		require.NoError(t, err)

		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 2, result.Saved)
	})

	t.Run("a run that produces nothing leaves the index untouched", func(t *testing.T) {
		t.Parallel()

		index := &capturingIndex{}
		empty := &mock.SectionReducer{
			ReduceSectionsFn: func(html string, baseURL string) ([]docdex.Section, error) { return nil, nil },
			NameFn:           func() string { return "book" },
		}
		idx := &indexer.Indexer{
			Fetcher: pagesFetcher(map[string]string{
				guideHomepage: "home",
				guidePageA:    "page-a",
				guidePageB:    "page-b",
			}),
			Reducers:  &mock.ReducerRegistry{GetForHTMLFn: func(html string) docdex.SectionReducer { return empty }},
			Inspector: guideInspector(),
			Epochs:    fixedEpoch("epoch-2"),
			Index:     index.service(),
		}

		result, err := idx.IndexGuide(context.Background(), guideHomepage, 0)
		require.NoError(t, err)

		assert.Zero(t, result.Saved)
		assert.Zero(t, result.Swept)
		assert.False(t, index.browsed, "an empty run must not sweep")
	})

	t.Run("homepage fetch failure is fatal", func(t *testing.T) {
		t.Parallel()

		idx := &indexer.Indexer{
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (*docdex.HTMLPage, error) {
					return nil, errors.New("unreachable")
				},
			},
			Reducers:  sectionPerPage(),
			Inspector: guideInspector(),
			Epochs:    fixedEpoch("epoch-1"),
			Index:     (&capturingIndex{}).service(),
		}

		_, err := idx.IndexGuide(context.Background(), guideHomepage, 0)
		require.Error(t, err)
	})

	t.Run("falls back to sitemap discovery when navigation is empty", func(t *testing.T) {
		t.Parallel()

		index := &capturingIndex{}
		inspector := &mock.PageInspector{
			SiteMetadataFn: func(page *docdex.HTMLPage, rootURL string, priority int) (*docdex.SiteMetadata, error) {
				return &docdex.SiteMetadata{
					RootURL:     guideRootURL,
					HomepageURL: page.URL,
					Priority:    priority,
				}, nil
			},
		}
		idx := &indexer.Indexer{
			Fetcher: pagesFetcher(map[string]string{
				guideHomepage: "home",
				guidePageA:    "page-a",
			}),
			Reducers:  sectionPerPage(),
			Inspector: inspector,
			Epochs:    fixedEpoch("epoch-1"),
			Index:     index.service(),
			Pages: &mock.PageSource{
				DiscoverURLsFn: func(ctx context.Context, rootURL string) ([]string, error) {
					return []string{guideHomepage, guidePageA}, nil
				},
			},
		}

		result, err := idx.IndexGuide(context.Background(), guideHomepage, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Pages, "discovered pages are merged without duplicating the homepage")
		assert.Equal(t, 2, result.Saved)
	})
}

func TestIndexer_IndexTutorial(t *testing.T) {
	t.Parallel()

	const tutorialURL = "https://example.com/tutorials/color-excess.html"

	newTutorialIndexer := func(index *capturingIndex, sections []docdex.Section) *indexer.Indexer {
		reducer := &mock.SectionReducer{
			ReduceSectionsFn: func(html string, baseURL string) ([]docdex.Section, error) {
				return sections, nil
			},
			NameFn: func() string { return "notebook" },
		}
		return &indexer.Indexer{
			Fetcher:  pagesFetcher(map[string]string{tutorialURL: "tutorial"}),
			Reducers: &mock.ReducerRegistry{GetForHTMLFn: func(html string) docdex.SectionReducer { return reducer }},
			Inspector: &mock.PageInspector{
				TutorialMetadataFn: func(page *docdex.HTMLPage) (*docdex.TutorialMetadata, error) {
					return &docdex.TutorialMetadata{
						URL:      page.URL,
						H1:       "Color Excess",
						Authors:  []string{"Ada Lovelace"},
						Keywords: []string{"dust"},
						Summary:  "We estimate color excess.",
					}, nil
				},
			},
			Epochs: fixedEpoch("epoch-1"),
			Index:  index.service(),
		}
	}

	t.Run("indexes content sections and drops metadata sections", func(t *testing.T) {
		t.Parallel()

		index := &capturingIndex{}
		idx := newTutorialIndexer(index, []docdex.Section{
			{Headings: []string{"Color Excess"}, Anchor: "Color-Excess", Content: "full tutorial text"},
			{Headings: []string{"Color Excess", "Authors"}, Content: "Ada Lovelace"},
			{Headings: []string{"Color Excess", "Keywords"}, Content: "dust"},
			{Headings: []string{"Color Excess", "Summary"}, Content: "We estimate color excess."},
			{Headings: []string{"Color Excess", "Learning Goals"}, Anchor: "Learning-Goals", Content: "learn things"},
		})

		result, err := idx.IndexTutorial(context.Background(), tutorialURL, 7)
		require.NoError(t, err)

		assert.Equal(t, tutorialURL, result.RootURL)
		assert.Equal(t, 2, result.Saved)

		require.Len(t, index.saved, 2)
		h1 := index.saved[0]
		assert.Equal(t, docdex.ContentTypeTutorial, h1.ContentType)
		assert.Equal(t, "We estimate color excess.", h1.Content, "the h1 section body is replaced by the summary")
		assert.Equal(t, tutorialURL, h1.RootURL)
		assert.Equal(t, 7, h1.Priority)

		goals := index.saved[1]
		assert.Equal(t, []string{"Color Excess", "Learning Goals"}, goals.Headings)
		assert.Equal(t, "learn things", goals.Content)
	})

	t.Run("a tutorial with no sections leaves the index untouched", func(t *testing.T) {
		t.Parallel()

		index := &capturingIndex{}
		idx := newTutorialIndexer(index, nil)

		result, err := idx.IndexTutorial(context.Background(), tutorialURL, 0)
		require.NoError(t, err)

		assert.Equal(t, tutorialURL, result.RootURL)
		assert.Zero(t, result.Saved)
		assert.False(t, index.browsed)
	})
}

func TestIndexer_DeleteRootURL(t *testing.T) {
	t.Parallel()

	// deletingIndexer browses a fixed record set and captures the filter.
	deletingIndexer := func(records []*docdex.SearchRecord, browsed *docdex.RecordFilter) *indexer.Indexer {
		return &indexer.Indexer{
			Index: &mock.IndexService{
				BrowseRecordsFn: func(ctx context.Context, filter docdex.RecordFilter) (docdex.RecordIterator, error) {
					*browsed = filter
					return &mock.RecordIterator{Records: records}, nil
				},
				DeleteRecordsFn: func(ctx context.Context, ids []string) error { return nil },
			},
		}
	}

	t.Run("deletes a guide partition by its exact root URL", func(t *testing.T) {
		t.Parallel()

		var browsed docdex.RecordFilter
		idx := deletingIndexer([]*docdex.SearchRecord{
			staleRecord("a", "https://example.com/docs/", "epoch-1"),
		}, &browsed)

		count, err := idx.DeleteRootURL(context.Background(), "https://example.com/docs/")
		require.NoError(t, err)

		assert.Equal(t, 1, count)
		assert.Equal(t, "https://example.com/docs/", browsed.RootURL)
	})

	t.Run("deletes a tutorial partition keyed by its page URL", func(t *testing.T) {
		t.Parallel()

		// Tutorial records are partitioned under the page's own URL with
		// its ".html" segment intact, so the target must not be rewritten
		// into a directory-style root.
		const tutorialRoot = "https://learn.example.com/tutorials/coords.html"

		var browsed docdex.RecordFilter
		idx := deletingIndexer([]*docdex.SearchRecord{
			staleRecord("a", tutorialRoot, "epoch-1"),
		}, &browsed)

		count, err := idx.DeleteRootURL(context.Background(), tutorialRoot)
		require.NoError(t, err)

		assert.Equal(t, 1, count)
		assert.Equal(t, tutorialRoot, browsed.RootURL)
	})

	t.Run("strips fragment and query from the target", func(t *testing.T) {
		t.Parallel()

		var browsed docdex.RecordFilter
		idx := deletingIndexer(nil, &browsed)

		_, err := idx.DeleteRootURL(context.Background(), "https://example.com/docs/page.html?v=2#intro")
		require.NoError(t, err)

		assert.Equal(t, "https://example.com/docs/page.html", browsed.RootURL)
	})

	t.Run("rejects an invalid root URL", func(t *testing.T) {
		t.Parallel()

		idx := &indexer.Indexer{}
		_, err := idx.DeleteRootURL(context.Background(), "not-a-url")
		require.Error(t, err)
		assert.Equal(t, docdex.EINVALID, docdex.ErrorCode(err))
	})
}
