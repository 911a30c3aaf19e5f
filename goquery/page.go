package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fwojciec/docdex"
)

// Page wraps a parsed documentation page with accessors for the metadata
// docdex denormalizes onto records. All accessors are best-effort:
// a missing element yields a zero value, never an error.
type Page struct {
	url string
	doc *goquery.Document
}

// ParsePage parses an HTML page for metadata access.
func ParsePage(page *docdex.HTMLPage) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Page{url: page.URL, doc: doc}, nil
}

// URL returns the page's canonical URL.
func (p *Page) URL() string {
	return p.url
}

// SiteTitle returns the site's title (selector: #site-title).
func (p *Page) SiteTitle() string {
	return strings.TrimSpace(p.doc.Find("#site-title").First().Text())
}

// LogoURL returns the URL of the site's logo (selector: img.logo),
// resolved against the page URL.
func (p *Page) LogoURL() string {
	src, exists := p.doc.Find("img.logo").First().Attr("src")
	if !exists {
		return ""
	}
	return p.resolve(src)
}

// FirstParagraph returns the cleaned content of the first paragraph in
// the main content area.
func (p *Page) FirstParagraph() string {
	return docdex.CleanContent(p.doc.Find("#main-content p").First().Text())
}

// SourceRepository returns the page's GitHub repository URL, detected
// among the external links of the navigation.
func (p *Page) SourceRepository() string {
	var repo string
	p.doc.Find("nav a.external").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, exists := s.Attr("href")
		if exists && strings.HasPrefix(href, "https://github.com") {
			repo = href
			return false
		}
		return true
	})
	return repo
}

// PageURLs returns the URLs of all content pages advertised by the book
// navigation (selector: nav#bd-docs-nav a.internal), resolved against
// the page URL. The "#" self link to the homepage is skipped.
func (p *Page) PageURLs() []string {
	var urls []string
	p.doc.Find("nav#bd-docs-nav a.internal").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" || href == "#" {
			return
		}
		if resolved := p.resolve(href); resolved != "" {
			urls = append(urls, resolved)
		}
	})
	return urls
}

// ImageURLs returns the URLs of images in the main content area,
// skipping embedded data URLs.
func (p *Page) ImageURLs() []string {
	var urls []string
	p.doc.Find("#main-content img").Each(func(_ int, s *goquery.Selection) {
		src, exists := s.Attr("src")
		if !exists || strings.HasPrefix(src, "data:") {
			return
		}
		if resolved := p.resolve(src); resolved != "" {
			urls = append(urls, resolved)
		}
	})
	return urls
}

// metaRefreshRe parses the content attribute of a meta refresh tag,
// e.g. "0; url=notebooks/00-00-Preface.html".
var metaRefreshRe = regexp.MustCompile(`^\s*\d+;\s*url=(.+)$`)

// MetaRefreshURL returns the destination of an immediate meta-refresh
// redirect, resolved against the page URL, or "" when the page is not a
// redirect.
func (p *Page) MetaRefreshURL() string {
	var target string
	p.doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		equiv, exists := s.Attr("http-equiv")
		if !exists || !strings.EqualFold(equiv, "refresh") {
			return true
		}
		content, exists := s.Attr("content")
		if !exists {
			return true
		}
		m := metaRefreshRe.FindStringSubmatch(content)
		if m == nil {
			return true
		}
		target = p.resolve(strings.TrimSpace(m[1]))
		return false
	})
	return target
}

// H1 returns the page's first h1 heading, cleaned.
func (p *Page) H1() string {
	return docdex.CleanHeading(docdex.CleanContent(p.doc.Find("h1").First().Text()))
}

// Authors returns the author names declared by a tutorial page.
func (p *Page) Authors() []string {
	return parseCommaList(p.tutorialField("authors"))
}

// Keywords returns the keywords declared by a tutorial page.
func (p *Page) Keywords() []string {
	return parseCommaList(p.tutorialField("keywords"))
}

// Summary returns a tutorial page's summary paragraph.
func (p *Page) Summary() string {
	return docdex.CleanContent(p.tutorialField("summary"))
}

// tutorialField looks up a tutorial metadata paragraph. Notebook
// renderers capitalize the heading id and place the paragraph as a
// sibling; Sphinx-style pages nest it under a lowercase id.
func (p *Page) tutorialField(name string) string {
	capitalized := strings.ToUpper(name[:1]) + name[1:]
	for _, selector := range []string{
		"#" + name + " p",
		"#" + capitalized + " + p",
		"#" + capitalized + " ~ p",
	} {
		if sel := p.doc.Find(selector).First(); sel.Length() > 0 {
			return sel.Text()
		}
	}
	return ""
}

// resolve resolves a possibly relative URL against the page URL.
func (p *Page) resolve(href string) string {
	base, err := url.Parse(p.url)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// parseCommaList splits a comma-separated value into trimmed items.
func parseCommaList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Ensure Inspector implements docdex.PageInspector at compile time.
var _ docdex.PageInspector = (*Inspector)(nil)

// Inspector extracts site- and tutorial-level metadata from pages.
type Inspector struct{}

// NewInspector creates a new Inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// SiteMetadata assembles metadata for a whole site from its homepage.
func (i *Inspector) SiteMetadata(page *docdex.HTMLPage, rootURL string, priority int) (*docdex.SiteMetadata, error) {
	p, err := ParsePage(page)
	if err != nil {
		return nil, err
	}
	normalized, err := docdex.NormalizeRootURL(rootURL)
	if err != nil {
		return nil, err
	}

	md := &docdex.SiteMetadata{
		RootURL:          normalized,
		Title:            p.SiteTitle(),
		LogoURL:          p.LogoURL(),
		Description:      p.FirstParagraph(),
		HomepageURL:      page.URL,
		SourceRepository: p.SourceRepository(),
		PageURLs:         p.PageURLs(),
		Priority:         priority,
	}
	if err := md.Validate(); err != nil {
		return nil, err
	}
	return md, nil
}

// TutorialMetadata extracts tutorial-level metadata from a single page.
func (i *Inspector) TutorialMetadata(page *docdex.HTMLPage) (*docdex.TutorialMetadata, error) {
	p, err := ParsePage(page)
	if err != nil {
		return nil, err
	}

	var images []string
	p.doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, exists := s.Attr("src")
		if !exists || strings.HasPrefix(src, "data:") {
			return
		}
		if resolved := p.resolve(src); resolved != "" {
			images = append(images, resolved)
		}
	})

	md := &docdex.TutorialMetadata{
		URL:      page.URL,
		H1:       p.H1(),
		Authors:  p.Authors(),
		Keywords: p.Keywords(),
		Summary:  p.Summary(),
		Images:   images,
	}
	if err := md.Validate(); err != nil {
		return nil, err
	}
	return md, nil
}

// RedirectTarget returns the destination URL when the page is an
// immediate meta-refresh redirect, or empty when it is not.
func (i *Inspector) RedirectTarget(page *docdex.HTMLPage) string {
	p, err := ParsePage(page)
	if err != nil {
		return ""
	}
	return p.MetaRefreshURL()
}
