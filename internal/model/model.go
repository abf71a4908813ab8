package model

import (
	"html/template"
	"strings"
	"time"
)

// Sentinel section keys. A top level content directory carrying one of
// these names is rejected during discovery.
const (
	SectionRoot    = "_index"
	SectionDefault = "_default"
	SectionPages   = "_pages"
)

// WordsPerMinute drives the reading time estimate.
const WordsPerMinute = 200

const (
	dateFullLayout  = "Mon Jan 02 2006"
	dateShortLayout = "2006-01-02"
	dateYearLayout  = "2006"
)

// Document represents a single content source file after its metadata has
// been decoded and its body converted to HTML.
type Document struct {
	Title       string
	Description string
	Date        time.Time
	Tags        []string
	Draft       bool
	Body        template.HTML
	ReadingTime int

	// SourcePath is relative to the content root, slash separated.
	SourcePath string

	// Set by classification.
	Section          string
	Template         string
	IsSectionMarker  bool
	IsRootMarker     bool
	Link             string
	OutputPath       string
	FeedLinkOverride string
}

// DateFull renders the date as "Thu Mar 05 2020".
func (d *Document) DateFull() string { return d.Date.Format(dateFullLayout) }

// DateShort renders the date as an ISO day, "2020-03-05".
func (d *Document) DateShort() string { return d.Date.Format(dateShortLayout) }

// Year renders the four digit year.
func (d *Document) Year() string { return d.Date.Format(dateYearLayout) }

// Rendered reports whether the document produces a standalone output page.
func (d *Document) Rendered() bool {
	return !d.Draft && !d.IsSectionMarker && !d.IsRootMarker
}

// ReadingTime estimates minutes to read body: whitespace separated tokens
// divided by WordsPerMinute, rounded up, never below one.
func ReadingTime(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
