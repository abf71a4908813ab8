// Package render wraps html/template as the opaque template engine of a
// build and writes syndication feeds.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	texttemplate "text/template"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	baseLayout  = "base.html"
	partialsDir = "partials"
	macrosDir   = "macros"
)

var (
	ErrNoTemplates      = errors.New("no templates found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrRender           = errors.New("template rendering failed")
)

// Engine holds every page template of a theme. Each page template is parsed
// into its own clone of the shared set (base.html plus partials/), so pages
// may redefine the same blocks without clobbering each other.
type Engine struct {
	pages  map[string]*template.Template
	macros *texttemplate.Template
	count  int
}

// Funcs returns the functions available to page and macro templates.
func Funcs(baseURL string) map[string]any {
	caser := cases.Title(language.English)
	return map[string]any{
		"absURL": func(link string) string {
			return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(link, "/")
		},
		"title": caser.String,
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"join":  strings.Join,
	}
}

// Load parses the theme found at root. Template identifiers are slash
// separated paths relative to root, e.g. "blog_index.html".
func Load(fsys afero.Fs, root, baseURL string) (*Engine, error) {
	files, err := collect(fsys, root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in '%s'", ErrNoTemplates, root)
	}

	funcs := Funcs(baseURL)
	shared := template.New("").Funcs(funcs)
	macros := texttemplate.New("").Funcs(funcs)
	var pages []string

	for _, name := range files {
		switch {
		case strings.HasPrefix(name, macrosDir+"/"):
			src, err := readTemplate(fsys, root, name)
			if err != nil {
				return nil, err
			}
			if _, err := macros.New(name).Parse(src); err != nil {
				return nil, fmt.Errorf("failed to parse macro template '%s': %w", name, err)
			}
		case name == baseLayout || strings.HasPrefix(name, partialsDir+"/"):
			src, err := readTemplate(fsys, root, name)
			if err != nil {
				return nil, err
			}
			if _, err := shared.New(name).Parse(src); err != nil {
				return nil, fmt.Errorf("failed to parse layout '%s': %w", name, err)
			}
		default:
			pages = append(pages, name)
		}
	}

	e := &Engine{
		pages:  make(map[string]*template.Template, len(pages)),
		macros: macros,
		count:  len(files),
	}
	for _, name := range pages {
		src, err := readTemplate(fsys, root, name)
		if err != nil {
			return nil, err
		}
		set, err := shared.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layouts for '%s': %w", name, err)
		}
		t, err := set.New(name).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template '%s': %w", name, err)
		}
		e.pages[name] = t
	}
	return e, nil
}

func collect(fsys afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".html" && ext != ".xml" {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", p, err)
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find templates in '%s': %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func readTemplate(fsys afero.Fs, root, name string) (string, error) {
	b, err := afero.ReadFile(fsys, path.Join(filepath.ToSlash(root), name))
	if err != nil {
		return "", fmt.Errorf("failed to read template '%s': %w", name, err)
	}
	return string(b), nil
}

// Count is the number of template files loaded, macros and layouts included.
func (e *Engine) Count() int { return e.count }

// Has reports whether name is a renderable page template.
func (e *Engine) Has(name string) bool {
	_, ok := e.pages[name]
	return ok
}

// Render executes the page template name with data and returns the output
// with surrounding whitespace trimmed.
func (e *Engine) Render(name string, data any) (string, error) {
	t, ok := e.pages[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRender, name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Expand executes src as a text template that can call every macro
// defined under macros/. It satisfies content.MacroExpander.
func (e *Engine) Expand(name, src string, data any) (string, error) {
	set, err := e.macros.Clone()
	if err != nil {
		return "", fmt.Errorf("failed to clone macros: %w", err)
	}
	t, err := set.New("body:" + name).Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRender, name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrRender, name, err)
	}
	return buf.String(), nil
}
