package catalog

import (
	"errors"
	"fmt"

	"github.com/shreyaa-mohan/opc-ua-client-logger/internal/infrastructure/config"
)

// Errors returned by catalog construction.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrEmpty is returned when a catalog is constructed with no entries.
	ErrEmpty = errors.New("catalog: must contain at least one tag")

	// ErrDuplicateName is returned when two entries share a tag name.
	ErrDuplicateName = errors.New("catalog: duplicate tag name")
)

// Entry is a single tag: a human-readable name and the source-specific
// node identifier it resolves to (e.g. "ns=3;i=1001").
type Entry struct {
	Name   string
	NodeID string
}

// Catalog is an ordered, immutable set of tag entries.
//
// The zero value is not usable; construct with New or FromConfig.
type Catalog struct {
	entries []Entry
}

// New creates a catalog from the given entries.
//
// Parameters:
//   - entries: Ordered tag entries; order defines CSV column order
//
// Returns:
//   - Catalog: Validated catalog
//   - error: ErrEmpty or ErrDuplicateName on invalid input
func New(entries []Entry) (Catalog, error) {
	if len(entries) == 0 {
		return Catalog{}, ErrEmpty
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return Catalog{}, fmt.Errorf("catalog: tag name is required (node %q)", e.NodeID)
		}
		if e.NodeID == "" {
			return Catalog{}, fmt.Errorf("catalog: node id is required (tag %q)", e.Name)
		}
		if seen[e.Name] {
			return Catalog{}, fmt.Errorf("%w: %q", ErrDuplicateName, e.Name)
		}
		seen[e.Name] = true
	}

	// Copy so callers cannot mutate the catalog after construction
	owned := make([]Entry, len(entries))
	copy(owned, entries)

	return Catalog{entries: owned}, nil
}

// FromConfig builds a catalog from the tags section of the configuration.
func FromConfig(tags []config.TagConfig) (Catalog, error) {
	entries := make([]Entry, 0, len(tags))
	for _, t := range tags {
		entries = append(entries, Entry{Name: t.Name, NodeID: t.NodeID})
	}
	return New(entries)
}

// Len returns the number of tags in the catalog.
func (c Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the catalog entries in order.
func (c Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Names returns the tag names in catalog order.
// These are the CSV value column headers.
func (c Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}
