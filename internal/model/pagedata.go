package model

import (
	"html/template"

	"github.com/Bitlatte/tome/internal/config"
)

// PageData is the context handed to every page, listing and index template.
// Templates always see the site configuration as .Site and the document
// being rendered (or the marker document of a listing) as .Page.
type PageData struct {
	Site    config.Config
	Page    *Document
	Content template.HTML
	Section string

	// Only populated for listings and the site index.
	Entries  []*Document
	Years    []YearGroup
	FeedLink string
}

// YearGroup is a run of consecutive entries sharing the same year.
type YearGroup struct {
	Year    string
	Entries []*Document
}

// GroupByYear splits entries, assumed sorted newest first, into year runs.
func GroupByYear(entries []*Document) []YearGroup {
	var groups []YearGroup
	for _, e := range entries {
		y := e.Year()
		if n := len(groups); n > 0 && groups[n-1].Year == y {
			groups[n-1].Entries = append(groups[n-1].Entries, e)
			continue
		}
		groups = append(groups, YearGroup{Year: y, Entries: []*Document{e}})
	}
	return groups
}

// NewPageData builds the context for page. A nil page is allowed for the
// site index when no root marker exists.
func NewPageData(site config.Config, page *Document) PageData {
	data := PageData{Site: site, Page: page}
	if page != nil {
		data.Content = page.Body
		data.Section = page.Section
	}
	return data
}

// WithEntries attaches an ordered collection to a listing context.
func (p PageData) WithEntries(entries []*Document, feedLink string) PageData {
	p.Entries = entries
	p.Years = GroupByYear(entries)
	p.FeedLink = feedLink
	return p
}
