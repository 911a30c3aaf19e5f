package mock

import "github.com/fwojciec/docdex"

var _ docdex.SectionReducer = (*SectionReducer)(nil)

// SectionReducer is a mock implementation of docdex.SectionReducer.
type SectionReducer struct {
	ReduceSectionsFn func(html string, baseURL string) ([]docdex.Section, error)
	NameFn           func() string
}

func (r *SectionReducer) ReduceSections(html string, baseURL string) ([]docdex.Section, error) {
	return r.ReduceSectionsFn(html, baseURL)
}

func (r *SectionReducer) Name() string {
	return r.NameFn()
}

var _ docdex.PageKindDetector = (*PageKindDetector)(nil)

// PageKindDetector is a mock implementation of docdex.PageKindDetector.
type PageKindDetector struct {
	DetectFn func(html string) docdex.PageKind
}

func (d *PageKindDetector) Detect(html string) docdex.PageKind {
	return d.DetectFn(html)
}

var _ docdex.ReducerRegistry = (*ReducerRegistry)(nil)

// ReducerRegistry is a mock implementation of docdex.ReducerRegistry.
type ReducerRegistry struct {
	GetFn        func(kind docdex.PageKind) docdex.SectionReducer
	GetForHTMLFn func(html string) docdex.SectionReducer
	RegisterFn   func(kind docdex.PageKind, reducer docdex.SectionReducer)
	ListFn       func() []docdex.PageKind
}

func (r *ReducerRegistry) Get(kind docdex.PageKind) docdex.SectionReducer {
	return r.GetFn(kind)
}

func (r *ReducerRegistry) GetForHTML(html string) docdex.SectionReducer {
	return r.GetForHTMLFn(html)
}

func (r *ReducerRegistry) Register(kind docdex.PageKind, reducer docdex.SectionReducer) {
	r.RegisterFn(kind, reducer)
}

func (r *ReducerRegistry) List() []docdex.PageKind {
	return r.ListFn()
}
