package docdex

import "strings"

// Section is one heading-scoped unit of content extracted from a page.
// Sections are transient: they are produced by one traversal of one page
// and consumed immediately by the record builder.
type Section struct {
	// Headings is the heading hierarchy from the outermost heading down
	// to this section's own heading, which is the last element.
	Headings []string `json:"headings"`

	// Anchor is the fragment identifier locating the section within its
	// page, or empty when none is derivable. It holds the bare element id
	// without the "#" prefix; SectionURL adds the separator when resolving
	// the section's full URL.
	Anchor string `json:"anchor,omitempty"`

	// Content is the cleaned plain-text body of the section.
	Content string `json:"content"`
}

// Depth returns the heading level of this section. For example, 1
// corresponds to an "h1" section.
func (s Section) Depth() int {
	return len(s.Headings)
}

// Title returns the section's own heading, i.e. the last element of the
// heading hierarchy. Returns an empty string for a section with no headings.
func (s Section) Title() string {
	if len(s.Headings) == 0 {
		return ""
	}
	return s.Headings[len(s.Headings)-1]
}

// CleanContent normalizes extracted text for indexing: escaped and literal
// newlines and backslashes become single spaces and runs of whitespace
// collapse. Word order is preserved.
func CleanContent(s string) string {
	s = strings.ReplaceAll(s, `\n`, " ")
	s = strings.ReplaceAll(s, "\\", " ")
	return strings.Join(strings.Fields(s), " ")
}

// CleanHeading normalizes a heading title by dropping the trailing
// permalink marker that Sphinx-family generators append to headings.
func CleanHeading(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), "¶"))
}
