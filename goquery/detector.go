package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fwojciec/docdex"
)

// Ensure Detector implements docdex.PageKindDetector at compile time.
var _ docdex.PageKindDetector = (*Detector)(nil)

// Detector identifies documentation page kinds from HTML content. It
// checks structural markers unique to each renderer rather than relying
// on a single selector, so it keeps working across generator versions.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified page kind.
// Returns PageKindUnknown if the kind cannot be determined.
func (d *Detector) Detect(htmlText string) docdex.PageKind {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return docdex.PageKindUnknown
	}

	// Notebook markers first: notebook pages also carry generic main
	// content containers, so the more specific check must win.
	if d.hasSelector(doc, ".jp-Notebook") ||
		d.hasSelector(doc, ".jp-RenderedHTMLCommon") {
		return docdex.PageKindNotebook
	}

	// Meta generator tags are the most reliable book markers when present.
	if generator := d.metaGenerator(doc); generator != "" {
		if strings.Contains(generator, "sphinx") || strings.Contains(generator, "jupyter") {
			return docdex.PageKindBook
		}
	}

	// JupyterBook / Sphinx structural markers.
	if d.hasSelector(doc, "#main-content") ||
		d.hasSelector(doc, "nav#bd-docs-nav") ||
		d.hasSelector(doc, ".toctree-wrapper") ||
		d.hasSelector(doc, ".sphinxsidebar") ||
		d.hasSelector(doc, ".wy-nav-side") {
		return docdex.PageKindBook
	}

	return docdex.PageKindUnknown
}

// metaGenerator returns the lowercased content of the meta generator tag.
func (d *Detector) metaGenerator(doc *goquery.Document) string {
	generator := ""
	doc.Find("meta[name='generator']").Each(func(_ int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			generator = strings.ToLower(content)
		}
	})
	return generator
}

// hasSelector checks if the document contains at least one element matching the selector.
func (d *Detector) hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}
