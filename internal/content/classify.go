package content

import (
	"path"
	"strings"

	"github.com/Bitlatte/tome/internal/model"
)

const (
	// MarkerName is the base name of a section marker document.
	MarkerName = "_index"

	// DefaultTemplate renders documents without a template override.
	DefaultTemplate = "page.html"
	// RootTemplate renders the site index.
	RootTemplate = "index.html"

	indexFile    = "index.html"
	templateExt  = ".html"
	markerSuffix = "_index.html"
)

// Classification describes where a document lives in the output tree and
// how it is rendered.
type Classification struct {
	Section       string
	Template      string
	Link          string
	OutputPath    string
	SectionMarker bool
	RootMarker    bool
}

// IsSentinel reports whether key is one of the synthetic section keys.
func IsSentinel(key string) bool {
	switch key {
	case model.SectionRoot, model.SectionDefault, model.SectionPages:
		return true
	}
	return false
}

// SectionFor returns the section of the document at rel: the longest known
// key that is an ancestor directory of rel. Documents at the content root,
// or under no known key, fall back to the default section.
func SectionFor(rel string, keys []string) string {
	dir := path.Dir(rel)
	if dir == "." {
		return model.SectionDefault
	}
	best := ""
	for _, k := range keys {
		if k == "" || IsSentinel(k) {
			continue
		}
		if dir != k && !strings.HasPrefix(dir, k+"/") {
			continue
		}
		if len(k) > len(best) {
			best = k
		}
	}
	if best == "" {
		return model.SectionDefault
	}
	return best
}

// TemplateName resolves the template identifier for a document.
//
//	section     marker  result
//	_index      any     index.html
//	_default    false   base
//	_default    true    base
//	S           false   S_base
//	S           true    S_index.html
func TemplateName(section, base string, marker bool) string {
	if section == model.SectionRoot {
		return RootTemplate
	}
	if section == "" || IsSentinel(section) {
		return base
	}
	if marker {
		return section + markerSuffix
	}
	return section + "_" + base
}

// TemplateBase returns the template base name for a document, honouring a
// metadata override. Overrides without an extension get ".html".
func TemplateBase(override string) string {
	override = strings.TrimSpace(override)
	if override == "" {
		return DefaultTemplate
	}
	if path.Ext(override) == "" {
		override += templateExt
	}
	return override
}

// IsMarker reports whether rel names a marker document.
func IsMarker(rel string) bool {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base)) == MarkerName
}

// Classify derives section membership, template and output location for the
// document at rel. The three output cases are checked in order: root
// marker, section marker, regular document.
func Classify(rel, override string, keys []string) Classification {
	dir := path.Dir(rel)
	marker := IsMarker(rel)

	if marker && dir == "." {
		return Classification{
			Section:    model.SectionRoot,
			Template:   RootTemplate,
			Link:       "",
			OutputPath: indexFile,
			RootMarker: true,
		}
	}

	if marker {
		// A marker always describes its own directory.
		return Classification{
			Section:       dir,
			Template:      TemplateName(dir, "", true),
			Link:          dir + "/",
			OutputPath:    path.Join(dir, indexFile),
			SectionMarker: true,
		}
	}

	section := SectionFor(rel, keys)
	stem := strings.TrimSuffix(rel, path.Ext(rel))
	return Classification{
		Section:    section,
		Template:   TemplateName(section, TemplateBase(override), false),
		Link:       stem + "/",
		OutputPath: path.Join(stem, indexFile),
	}
}

// Apply copies a classification onto doc.
func (c Classification) Apply(doc *model.Document) {
	doc.Section = c.Section
	doc.Template = c.Template
	doc.Link = c.Link
	doc.OutputPath = c.OutputPath
	doc.IsSectionMarker = c.SectionMarker
	doc.IsRootMarker = c.RootMarker
}
