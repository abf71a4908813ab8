package content

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"github.com/Bitlatte/tome/internal/model"
)

// IsDocument reports whether name has a content document extension. Other
// files in the content tree are ignored.
func IsDocument(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

var (
	ErrMetadata     = errors.New("invalid document metadata")
	ErrMissingDate  = errors.New("document metadata is missing date")
	ErrMissingTitle = errors.New("document metadata is missing title")
)

// metadataFormats lists the accepted metadata blocks. TOML between "+++"
// lines is the primary format; YAML between "---" lines is also accepted.
var metadataFormats = []*frontmatter.Format{
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
}

// Metadata is the typed metadata block of a document.
type Metadata struct {
	Title       string    `toml:"title" yaml:"title"`
	Description string    `toml:"description" yaml:"description"`
	Date        time.Time `toml:"date" yaml:"date"`
	Draft       bool      `toml:"draft" yaml:"draft"`
	Template    string    `toml:"template" yaml:"template"`
	Tags        []string  `toml:"tags" yaml:"tags"`
	RSSLink     string    `toml:"rsslink" yaml:"rsslink"`
}

// MacroExpander runs a document body through the theme's macro templates
// before Markdown conversion.
type MacroExpander interface {
	Expand(name, src string, data any) (string, error)
}

// Loader reads content documents.
type Loader struct {
	fs        afero.Fs
	root      string
	converter Converter
	macros    MacroExpander
}

// NewLoader creates a Loader reading documents below root. macros may be nil.
func NewLoader(fsys afero.Fs, root string, converter Converter, macros MacroExpander) *Loader {
	return &Loader{fs: fsys, root: root, converter: converter, macros: macros}
}

// Load reads the document at rel, a slash separated path relative to the
// content root. It returns a nil document and nil error when the file has
// no metadata block, so arbitrary files may live in the content tree.
func (l *Loader) Load(rel string) (*model.Document, error) {
	raw, err := afero.ReadFile(l.fs, path.Join(l.root, rel))
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", rel, err)
	}
	return l.Parse(rel, raw)
}

// Parse builds a document from raw file contents.
func (l *Loader) Parse(rel string, raw []byte) (*model.Document, error) {
	var meta Metadata
	body, err := frontmatter.MustParse(bytes.NewReader(stripPreamble(raw)), &meta, metadataFormats...)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w in '%s': %w", ErrMetadata, rel, err)
	}
	if meta.Date.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrMissingDate, rel)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingTitle, rel)
	}

	doc := &model.Document{
		Title:            meta.Title,
		Description:      meta.Description,
		Date:             normalizeDate(meta.Date),
		Tags:             meta.Tags,
		Draft:            meta.Draft,
		Template:         meta.Template,
		FeedLinkOverride: strings.TrimPrefix(meta.RSSLink, "/"),
		SourcePath:       rel,
	}

	src := string(body)
	if l.macros != nil {
		src, err = l.macros.Expand(rel, src, doc)
		if err != nil {
			return nil, fmt.Errorf("failed to expand macros in '%s': %w", rel, err)
		}
	}
	doc.ReadingTime = model.ReadingTime(src)

	doc.Body, err = l.converter.Convert([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML for file '%s': %w", rel, err)
	}
	return doc, nil
}

// normalizeDate pins TOML local dates and datetimes, which carry the host's
// offset, to UTC with the same wall clock so output does not depend on the
// machine running the build.
func normalizeDate(t time.Time) time.Time {
	switch t.Location().String() {
	case "date-local", "datetime-local":
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return t
}

// stripPreamble drops any text preceding the first "+++" line. A document
// that opens with a delimiter, YAML included, is returned unchanged.
func stripPreamble(raw []byte) []byte {
	offset, seen := 0, false
	for rest := raw; len(rest) > 0; {
		line, tail, _ := bytes.Cut(rest, []byte("\n"))
		switch trimmed := string(bytes.TrimSpace(line)); {
		case trimmed == "+++":
			return raw[offset:]
		case !seen && trimmed == "---":
			return raw
		case trimmed != "":
			seen = true
		}
		offset += len(line) + 1
		rest = tail
	}
	return raw
}
