package docdex

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ContentType classifies the kind of documentation a record came from.
type ContentType string

// Supported content types.
const (
	ContentTypeGuide    ContentType = "guide"
	ContentTypeTutorial ContentType = "tutorial"
)

// SearchRecord is the externally indexed unit: one section of one page,
// denormalized with its site's metadata and stamped with the indexing
// run's epoch. Records are written by upsert and retired by the sweep or
// delete protocol; they are never mutated in place.
type SearchRecord struct {
	// ObjectID is a deterministic identifier derived from the section's
	// resolved URL and heading hierarchy. Identical inputs always yield
	// the identical id, so re-indexing overwrites rather than duplicates.
	ObjectID string `json:"objectID"`

	// IndexEpoch identifies the indexing run that produced this record.
	IndexEpoch Epoch `json:"index_epoch"`

	ContentType ContentType `json:"content_type"`

	// URL is the most specific URL for the record, including the anchor
	// fragment when the section has one.
	URL string `json:"url"`

	// BaseURL is the page URL without fragment or query.
	BaseURL string `json:"base_url"`

	// RootURL is the site's canonical URL prefix; the partition key for
	// sweep and delete.
	RootURL string `json:"root_url"`

	RootTitle   string `json:"root_title"`
	RootSummary string `json:"root_summary,omitempty"`

	// Headings is the section's heading hierarchy, outermost first.
	Headings []string `json:"headings"`

	// Anchor is the section's fragment identifier, when one exists.
	Anchor string `json:"anchor,omitempty"`

	Content string `json:"content"`

	// ContentHash is an xxHash fingerprint of Content, useful for change
	// detection and debugging.
	ContentHash string `json:"content_hash"`

	// Importance mirrors the section's heading depth; 1 is reserved for
	// a site homepage's top section so it leads default listings.
	Importance int `json:"importance"`

	// Priority elevates records in default result sorting. Copied from
	// the site metadata.
	Priority int `json:"priority"`

	ThumbnailURL     string `json:"thumbnail_url,omitempty"`
	LogoURL          string `json:"logo_url,omitempty"`
	Description      string `json:"description,omitempty"`
	SourceRepository string `json:"source_repository,omitempty"`
	HomepageURL      string `json:"homepage_url,omitempty"`

	DateIndexed time.Time `json:"date_indexed"`
}

// Validate returns an error if the record contains invalid fields.
func (r *SearchRecord) Validate() error {
	if r.ObjectID == "" {
		return Errorf(EINVALID, "record object ID required")
	}
	if r.RootURL == "" {
		return Errorf(EINVALID, "record root URL required")
	}
	if r.IndexEpoch == "" {
		return Errorf(EINVALID, "record index epoch required")
	}
	return nil
}

// ComputeObjectID derives the record identifier for a section located at
// sectionURL. The encoding is injective, so distinct sections can never
// collide, and stable across process restarts.
func ComputeObjectID(sectionURL string, headings []string) string {
	urlPart := base64.StdEncoding.EncodeToString([]byte(strings.ToLower(sectionURL)))
	headingPart := base64.StdEncoding.EncodeToString([]byte(strings.Join(headings, " ")))
	return urlPart + "-" + headingPart
}

// SectionURL resolves a section's anchor against its page URL to form the
// fully qualified link for the section.
func SectionURL(pageURL string, anchor string) string {
	if anchor == "" {
		return pageURL
	}
	return strings.TrimSuffix(pageURL, "#") + "#" + anchor
}

// NewGuideRecord builds a search record for one section of a guide page.
// It fails with EINVALID only when required site metadata is missing or
// unparsable, never on section content.
func NewGuideRecord(section Section, site *SiteMetadata, pageURL string, epoch Epoch) (*SearchRecord, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}
	baseURL, err := stripFragment(pageURL)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid page URL %q: %v", pageURL, err)
	}

	// The homepage's top section is pinned to importance 1 so that it is
	// featured in default listings; everything else sorts below it.
	importance := section.Depth() + 1
	if pageURL == site.HomepageURL && section.Depth() == 1 {
		importance = 1
	}

	thumbnail := site.LogoURL

	sectionURL := SectionURL(baseURL, section.Anchor)
	return &SearchRecord{
		ObjectID:         ComputeObjectID(sectionURL, section.Headings),
		IndexEpoch:       epoch,
		ContentType:      ContentTypeGuide,
		URL:              sectionURL,
		BaseURL:          baseURL,
		RootURL:          site.RootURL,
		RootTitle:        site.Title,
		RootSummary:      site.Description,
		Headings:         section.Headings,
		Anchor:           section.Anchor,
		Content:          section.Content,
		ContentHash:      hashContent(section.Content),
		Importance:       importance,
		Priority:         site.Priority,
		ThumbnailURL:     thumbnail,
		LogoURL:          site.LogoURL,
		Description:      site.Description,
		SourceRepository: site.SourceRepository,
		HomepageURL:      site.HomepageURL,
		DateIndexed:      time.Now().UTC(),
	}, nil
}

// TutorialMetadata describes a single-page tutorial.
type TutorialMetadata struct {
	URL      string   `json:"url"`
	H1       string   `json:"h1"`
	Authors  []string `json:"authors,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Images   []string `json:"images,omitempty"`
}

// Validate returns an error if required tutorial metadata is missing or
// unparsable.
func (m *TutorialMetadata) Validate() error {
	if m.URL == "" {
		return Errorf(EINVALID, "tutorial URL required")
	}
	u, err := url.Parse(m.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Errorf(EINVALID, "invalid tutorial URL %q", m.URL)
	}
	return nil
}

// NewTutorialRecord builds a search record for one section of a tutorial
// page. The tutorial's own URL, stripped of fragment and query, acts as
// both base URL and root URL.
func NewTutorialRecord(section Section, tutorial *TutorialMetadata, epoch Epoch, priority int) (*SearchRecord, error) {
	if err := tutorial.Validate(); err != nil {
		return nil, err
	}
	baseURL, err := stripFragment(tutorial.URL)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid tutorial URL %q: %v", tutorial.URL, err)
	}

	var thumbnail string
	if len(tutorial.Images) > 0 {
		thumbnail = tutorial.Images[0]
	}

	sectionURL := SectionURL(baseURL, section.Anchor)
	return &SearchRecord{
		ObjectID:     ComputeObjectID(sectionURL, section.Headings),
		IndexEpoch:   epoch,
		ContentType:  ContentTypeTutorial,
		URL:          sectionURL,
		BaseURL:      baseURL,
		RootURL:      baseURL,
		RootTitle:    tutorial.H1,
		RootSummary:  tutorial.Summary,
		Headings:     section.Headings,
		Anchor:       section.Anchor,
		Content:      section.Content,
		ContentHash:  hashContent(section.Content),
		Importance:   section.Depth(),
		Priority:     priority,
		ThumbnailURL: thumbnail,
		DateIndexed:  time.Now().UTC(),
	}, nil
}

// stripFragment removes the fragment and query from a URL.
func stripFragment(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	u.RawQuery = ""
	return u.String(), nil
}

// hashContent computes the xxHash of content and returns it as a hex string.
func hashContent(content string) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64String(content))
	return hex.EncodeToString(b[:])
}
