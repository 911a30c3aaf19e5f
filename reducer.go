package docdex

// PageKind identifies the structural flavor of a documentation page.
type PageKind string

// Recognized page kinds.
const (
	// PageKindUnknown means no structural markers were recognized.
	PageKindUnknown PageKind = ""

	// PageKindBook covers JupyterBook and Sphinx-generated pages, which
	// share the same nested-section structure.
	PageKindBook PageKind = "book"

	// PageKindNotebook covers nbcollection/nbconvert-rendered notebook
	// pages, where content lives in flat rendered cells.
	PageKindNotebook PageKind = "notebook"
)

// PageKindDetector identifies the page kind from HTML markers.
type PageKindDetector interface {
	// Detect analyzes HTML and returns the identified page kind.
	// Returns PageKindUnknown if the kind cannot be determined.
	Detect(html string) PageKind
}

// SectionReducer converts one HTML page into an ordered sequence of
// sections.
type SectionReducer interface {
	// ReduceSections extracts sections in document order. Malformed or
	// unrecognizable structure is not a fault: a page with no
	// extractable content yields an empty result and a nil error.
	ReduceSections(html string, baseURL string) ([]Section, error)

	// Name returns the reducer's identifier (e.g., "book", "notebook").
	Name() string
}

// ReducerRegistry maps page kinds to section reducers.
type ReducerRegistry interface {
	// Get returns the reducer for a specific page kind.
	// Returns nil if no reducer is registered for the kind.
	Get(kind PageKind) SectionReducer

	// GetForHTML detects the page kind and returns the appropriate
	// reducer, falling back to a generic reducer when the kind is
	// unknown.
	GetForHTML(html string) SectionReducer

	// Register adds a reducer for a page kind.
	Register(kind PageKind, reducer SectionReducer)

	// List returns all registered page kinds.
	List() []PageKind
}
