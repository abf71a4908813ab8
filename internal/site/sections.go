package site

import (
	"fmt"
	"sort"

	"github.com/Bitlatte/tome/internal/content"
	"github.com/Bitlatte/tome/internal/model"
)

// Section is an ordered collection of documents sharing a content directory.
type Section struct {
	Key     string
	Entries []*model.Document
}

// Marker returns the section's marker document, or nil.
func (s *Section) Marker() *model.Document {
	for _, d := range s.Entries {
		if d.IsSectionMarker || d.IsRootMarker {
			return d
		}
	}
	return nil
}

// Members returns the entries that are not the marker, in current order.
func (s *Section) Members() []*model.Document {
	members := make([]*model.Document, 0, len(s.Entries))
	for _, d := range s.Entries {
		if d.IsSectionMarker || d.IsRootMarker {
			continue
		}
		members = append(members, d)
	}
	return members
}

// SortByDate orders entries newest first. Equal dates keep discovery order.
func (s *Section) SortByDate() {
	SortByDate(s.Entries)
}

// SortByDate orders docs newest first, stable for equal dates.
func SortByDate(docs []*model.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Date.After(docs[j].Date)
	})
}

// Registry owns every section of a build. Sections live in an append-only
// slice in discovery order; index maps a key to its slot.
type Registry struct {
	index    map[string]int
	sections []*Section
}

// NewRegistry returns a registry holding the sentinel sections.
func NewRegistry() *Registry {
	r := &Registry{index: make(map[string]int)}
	r.Discover(model.SectionRoot)
	r.Discover(model.SectionDefault)
	r.Discover(model.SectionPages)
	return r
}

// Discover registers key if it is new and returns its section.
func (r *Registry) Discover(key string) *Section {
	if i, ok := r.index[key]; ok {
		return r.sections[i]
	}
	s := &Section{Key: key}
	r.index[key] = len(r.sections)
	r.sections = append(r.sections, s)
	return s
}

// Get returns the section for key.
func (r *Registry) Get(key string) (*Section, bool) {
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.sections[i], true
}

// Keys lists every key in discovery order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.sections))
	for i, s := range r.sections {
		keys[i] = s.Key
	}
	return keys
}

// Sections lists every section in discovery order.
func (r *Registry) Sections() []*Section {
	return r.sections
}

// Add places a classified document. Drafts are never collected. Markers
// join their own section only; every other document joins its section and
// the site-wide pages collection.
func (r *Registry) Add(doc *model.Document) error {
	if doc.Draft {
		return nil
	}
	s := r.Discover(doc.Section)
	if doc.IsSectionMarker || doc.IsRootMarker {
		if existing := s.Marker(); existing != nil {
			return fmt.Errorf("%w: '%s' and '%s' in section %q",
				ErrDuplicateMarker, existing.SourcePath, doc.SourcePath, s.Key)
		}
		s.Entries = append(s.Entries, doc)
		return nil
	}
	s.Entries = append(s.Entries, doc)
	pages := r.Discover(model.SectionPages)
	pages.Entries = append(pages.Entries, doc)
	return nil
}

// Aggregatable lists the content sections that get a listing and feed:
// every non-sentinel section with at least one entry.
func (r *Registry) Aggregatable() []*Section {
	var out []*Section
	for _, s := range r.sections {
		if content.IsSentinel(s.Key) || len(s.Entries) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}
