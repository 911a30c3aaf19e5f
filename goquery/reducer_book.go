package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fwojciec/docdex"
)

var _ docdex.SectionReducer = (*BookReducer)(nil)

// BookReducer extracts sections from JupyterBook- and Sphinx-generated
// pages, which nest content in section containers under a main content
// element. The content root is located with an ordered fallback list of
// selectors; a page where none match yields an empty result, never an
// error.
type BookReducer struct {
	selectors []string
}

// NewBookReducer creates a BookReducer. With no arguments it uses
// DefaultContentSelectors; callers may supply their own ordered selector
// list.
func NewBookReducer(selectors ...string) *BookReducer {
	if len(selectors) == 0 {
		selectors = DefaultContentSelectors
	}
	return &BookReducer{selectors: selectors}
}

// Name returns the reducer's identifier.
func (r *BookReducer) Name() string {
	return "book"
}

// ReduceSections extracts sections in document order.
func (r *BookReducer) ReduceSections(htmlText string, baseURL string) ([]docdex.Section, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "failed to parse HTML: %v", err)
	}

	root := findContentRoot(doc, r.selectors)
	if root == nil {
		return nil, nil
	}

	c := &sectionCollector{}
	walkSections(root, c)
	return c.result(), nil
}
