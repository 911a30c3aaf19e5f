// Package goquery provides CSS-selector based implementations of the
// docdex section reducers, page-kind detection and page metadata
// accessors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/fwojciec/docdex"
)

// DefaultContentSelectors is the ordered fallback list used to locate a
// page's content root: most generator-specific first, most generic last.
// The first selector that matches any element wins. This absorbs
// structural drift between generator versions without per-version
// branching in callers.
var DefaultContentSelectors = []string{
	"#main-content .section",
	"#main-content",
	".main-content .section",
	".main-content",
	"main .section",
	"main",
	".section",
	"article",
}

// findContentRoot returns the first element matched by the first selector
// in selectors that matches anything, or nil when none match.
func findContentRoot(doc *goquery.Document, selectors []string) *html.Node {
	for _, selector := range selectors {
		sel := doc.Find(selector)
		if sel.Length() > 0 {
			return sel.Nodes[0]
		}
	}
	return nil
}

// headingEntry is one open heading on the collector's stack.
type headingEntry struct {
	level int
	title string
}

// sectionCollector accumulates sections during a single page traversal.
// It maintains a heading stack keyed by heading level and a text buffer
// belonging to the innermost open heading. A section boundary occurs when
// a new heading arrives or the traversal ends; sections whose cleaned
// content is empty are dropped.
type sectionCollector struct {
	stack    []headingEntry
	buf      strings.Builder
	anchor   string
	sections []docdex.Section
}

// heading closes the open section and opens a new one at the given level.
// The closed section carries the heading-path snapshot taken before the
// new heading is pushed. id is the new heading's own fragment identifier,
// possibly empty.
func (c *sectionCollector) heading(level int, title, id string) {
	c.flush()
	for len(c.stack) > 0 && c.stack[len(c.stack)-1].level >= level {
		c.stack = c.stack[:len(c.stack)-1]
	}
	c.stack = append(c.stack, headingEntry{level: level, title: title})
	c.anchor = id
}

// text appends raw text to the open section's buffer.
func (c *sectionCollector) text(s string) {
	if s == "" {
		return
	}
	c.buf.WriteString(s)
	c.buf.WriteByte(' ')
}

// anchorCandidate records an anchor target as the open section's anchor
// if none has been seen since the last heading.
func (c *sectionCollector) anchorCandidate(id string) {
	if c.anchor == "" && id != "" {
		c.anchor = id
	}
}

// flush emits the open section if its cleaned content is non-empty, and
// resets the buffer either way.
func (c *sectionCollector) flush() {
	content := docdex.CleanContent(c.buf.String())
	c.buf.Reset()
	if content == "" || len(c.stack) == 0 {
		return
	}
	headings := make([]string, len(c.stack))
	for i, e := range c.stack {
		headings[i] = e.title
	}
	c.sections = append(c.sections, docdex.Section{
		Headings: headings,
		Anchor:   c.anchor,
		Content:  content,
	})
}

// result closes the final section and returns everything collected.
func (c *sectionCollector) result() []docdex.Section {
	c.flush()
	return c.sections
}

// walkSections walks the children of root depth-first, feeding the
// collector. Heading elements become boundaries; their text is consumed
// as the title and not descended into. Jupyter cell outputs and
// non-content elements are skipped.
func walkSections(root *html.Node, c *sectionCollector) {
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		walkNode(n, c)
	}
}

func walkNode(n *html.Node, c *sectionCollector) {
	switch n.Type {
	case html.TextNode:
		c.text(n.Data)
		return
	case html.ElementNode:
		// fallthrough below
	default:
		return
	}

	if level := headingLevel(n.Data); level > 0 {
		title := docdex.CleanHeading(docdex.CleanContent(textContent(n)))
		c.heading(level, title, attrValue(n, "id"))
		return
	}

	switch n.Data {
	case "script", "style", "noscript", "template":
		return
	}

	// Jupyter code-cell outputs are large and rarely searchable.
	if hasClass(n, "cell_output") {
		return
	}

	c.anchorCandidate(attrValue(n, "id"))

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walkNode(child, c)
	}
}

// headingLevel returns 1..6 for h1..h6 element names and 0 otherwise.
func headingLevel(name string) int {
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return int(name[1] - '0')
	}
	return 0
}

// textContent returns the concatenated text of a node's subtree.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// hasClass reports whether the element carries the given class.
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
