// Package docdex turns documentation sites into search-indexable records.
// It reduces heading-structured HTML pages into atomic content sections,
// maps each section to a search record, and keeps a remote search index
// consistent across repeated crawls using an epoch-based sweep protocol.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, bleve/).
package docdex
