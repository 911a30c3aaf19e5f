package goquery

import "github.com/fwojciec/docdex"

var _ docdex.ReducerRegistry = (*Registry)(nil)

// Registry manages kind-specific section reducers and auto-detects page
// kinds from HTML content. It uses a PageKindDetector to identify the
// page's renderer and returns the appropriate reducer, falling back to a
// generic reducer when the kind is unknown or no specific reducer is
// registered.
type Registry struct {
	detector docdex.PageKindDetector
	fallback docdex.SectionReducer
	reducers map[docdex.PageKind]docdex.SectionReducer
}

// NewRegistry creates a new Registry with the given detector and fallback
// reducer. The fallback is used when GetForHTML cannot find a specific
// reducer for the detected kind.
func NewRegistry(detector docdex.PageKindDetector, fallback docdex.SectionReducer) *Registry {
	return &Registry{
		detector: detector,
		fallback: fallback,
		reducers: make(map[docdex.PageKind]docdex.SectionReducer),
	}
}

// Get returns the reducer for a specific page kind.
// Returns nil if no reducer is registered for the kind.
func (r *Registry) Get(kind docdex.PageKind) docdex.SectionReducer {
	return r.reducers[kind]
}

// GetForHTML detects the page kind from HTML and returns the appropriate
// reducer. Falls back to the fallback reducer if the kind is unknown or
// no reducer is registered for the detected kind.
func (r *Registry) GetForHTML(html string) docdex.SectionReducer {
	kind := r.detector.Detect(html)
	if reducer, ok := r.reducers[kind]; ok {
		return reducer
	}
	return r.fallback
}

// Register adds a reducer for a page kind.
// If a reducer is already registered for the kind, it is replaced.
func (r *Registry) Register(kind docdex.PageKind, reducer docdex.SectionReducer) {
	r.reducers[kind] = reducer
}

// List returns all registered page kinds.
func (r *Registry) List() []docdex.PageKind {
	kinds := make([]docdex.PageKind, 0, len(r.reducers))
	for k := range r.reducers {
		kinds = append(kinds, k)
	}
	return kinds
}
