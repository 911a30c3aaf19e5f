package mock

import "github.com/fwojciec/docdex"

var _ docdex.PageInspector = (*PageInspector)(nil)

// PageInspector is a mock implementation of docdex.PageInspector.
type PageInspector struct {
	SiteMetadataFn     func(page *docdex.HTMLPage, rootURL string, priority int) (*docdex.SiteMetadata, error)
	TutorialMetadataFn func(page *docdex.HTMLPage) (*docdex.TutorialMetadata, error)
	RedirectTargetFn   func(page *docdex.HTMLPage) string
}

func (i *PageInspector) SiteMetadata(page *docdex.HTMLPage, rootURL string, priority int) (*docdex.SiteMetadata, error) {
	return i.SiteMetadataFn(page, rootURL, priority)
}

func (i *PageInspector) TutorialMetadata(page *docdex.HTMLPage) (*docdex.TutorialMetadata, error) {
	return i.TutorialMetadataFn(page)
}

func (i *PageInspector) RedirectTarget(page *docdex.HTMLPage) string {
	if i.RedirectTargetFn == nil {
		return ""
	}
	return i.RedirectTargetFn(page)
}
