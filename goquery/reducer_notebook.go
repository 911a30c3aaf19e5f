package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/fwojciec/docdex"
)

var _ docdex.SectionReducer = (*NotebookReducer)(nil)

// NotebookReducer extracts sections from nbcollection/nbconvert-rendered
// notebook pages. Content lives in two kinds of cells, visited in
// document order: rendered prose cells (jp-RenderedHTMLCommon), whose
// child elements include the headings that delimit sections, and source
// code cells (jp-CodeMirrorEditor), whose text is indexed whole. Code
// outputs are not part of either and are never indexed.
type NotebookReducer struct{}

// NewNotebookReducer creates a new NotebookReducer.
func NewNotebookReducer() *NotebookReducer {
	return &NotebookReducer{}
}

// Name returns the reducer's identifier.
func (r *NotebookReducer) Name() string {
	return "notebook"
}

// ReduceSections extracts sections in document order.
func (r *NotebookReducer) ReduceSections(htmlText string, baseURL string) ([]docdex.Section, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "failed to parse HTML: %v", err)
	}

	c := &sectionCollector{}
	doc.Find(".jp-CodeMirrorEditor, .jp-RenderedHTMLCommon").Each(func(_ int, sel *goquery.Selection) {
		node := sel.Nodes[0]
		if hasClass(node, "jp-RenderedHTMLCommon") {
			r.reduceProseCell(node, c)
			return
		}
		c.text(textContent(node))
	})
	return c.result(), nil
}

// reduceProseCell feeds a rendered markdown cell's child elements to the
// collector. Headings delimit sections; everything else is content.
func (r *NotebookReducer) reduceProseCell(cell *html.Node, c *sectionCollector) {
	for n := cell.FirstChild; n != nil; n = n.NextSibling {
		walkNode(n, c)
	}
}
