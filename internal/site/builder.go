// Package site drives a full build: static mirroring, section discovery,
// document loading and classification, page rendering and aggregation.
package site

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/Bitlatte/tome/internal/config"
	"github.com/Bitlatte/tome/internal/content"
	"github.com/Bitlatte/tome/internal/logging"
	"github.com/Bitlatte/tome/internal/model"
	"github.com/Bitlatte/tome/internal/render"
)

// Stats summarises a build.
type Stats struct {
	Pages           int
	Drafts          int
	SectionFiles    int
	FeedFiles       int
	SkippedSections int
	StaticFiles     int
	StaticBytes     int64
	Templates       int
	Elapsed         time.Duration
}

// Builder runs one build. It is not reusable: create a new Builder for
// every build so no state leaks between runs.
type Builder struct {
	cfg    config.Config
	fs     afero.Fs
	log    *slog.Logger
	engine *render.Engine
	loader *content.Loader

	registry *Registry
	static   map[string]bool
	pages    map[string]string
	stats    Stats
}

// New creates a Builder. Directories in cfg are resolved against fsys.
func New(cfg config.Config, fsys afero.Fs, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Builder{
		cfg:      cfg,
		fs:       fsys,
		log:      logger,
		registry: NewRegistry(),
		static:   make(map[string]bool),
		pages:    make(map[string]string),
	}
}

// Registry exposes the sections collected by the last Build.
func (b *Builder) Registry() *Registry { return b.registry }

// Build performs a full rebuild. Any error aborts the build; sections that
// cannot be aggregated are skipped and reported through the logger.
func (b *Builder) Build() (Stats, error) {
	start := time.Now()

	if err := b.checkDirs(); err != nil {
		return b.stats, err
	}
	if err := b.prepareOutput(); err != nil {
		return b.stats, err
	}
	if err := b.copyStatic(); err != nil {
		return b.stats, err
	}
	if err := b.loadTemplates(); err != nil {
		return b.stats, err
	}

	files, err := b.discover()
	if err != nil {
		return b.stats, err
	}
	docs, err := b.process(files)
	if err != nil {
		return b.stats, err
	}

	// Every document is classified before any aggregate is built.
	for _, doc := range docs {
		if err := b.registry.Add(doc); err != nil {
			return b.stats, err
		}
	}
	for _, s := range b.registry.Aggregatable() {
		if err := b.aggregateSection(s); err != nil {
			return b.stats, err
		}
	}
	if err := b.aggregateSite(); err != nil {
		return b.stats, err
	}

	b.stats.Elapsed = time.Since(start)
	return b.stats, nil
}

func (b *Builder) checkDirs() error {
	if ok, _ := afero.DirExists(b.fs, b.cfg.ContentDir); !ok {
		return fmt.Errorf("%w: '%s'", ErrContentDirMissing, b.cfg.ContentDir)
	}
	if ok, _ := afero.DirExists(b.fs, b.cfg.ThemeDir); !ok {
		return fmt.Errorf("%w: '%s'", ErrThemeDirMissing, b.cfg.ThemeDir)
	}
	return nil
}

func (b *Builder) prepareOutput() error {
	out := b.cfg.OutputDir
	b.log.Debug("Cleaning output directory", logging.Path(out))
	if err := b.fs.RemoveAll(out); err != nil {
		return fmt.Errorf("failed to remove output directory '%s': %w", out, err)
	}
	if err := b.fs.MkdirAll(out, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", out, err)
	}
	return nil
}

func (b *Builder) copyStatic() error {
	dir := b.cfg.StaticDir
	if ok, _ := afero.DirExists(b.fs, dir); !ok {
		b.log.Info("Static assets directory not found, skipping copy", logging.Path(dir))
		return nil
	}
	n, err := copyDirContents(b.fs, dir, b.cfg.OutputDir, b.static)
	if err != nil {
		return fmt.Errorf("failed to copy static assets: %w", err)
	}
	b.stats.StaticFiles = len(b.static)
	b.stats.StaticBytes = n
	b.log.Info("Static assets copied", logging.Count(len(b.static)))
	return nil
}

func (b *Builder) loadTemplates() error {
	engine, err := render.Load(b.fs, b.cfg.ThemeDir, b.cfg.BaseURL)
	if err != nil {
		return err
	}
	b.engine = engine
	b.stats.Templates = engine.Count()

	var macros content.MacroExpander
	if b.cfg.Macros {
		macros = engine
	}
	converter := content.NewGoldmarkConverter(b.cfg.HighlightStyle)
	b.loader = content.NewLoader(b.fs, b.cfg.ContentDir, converter, macros)
	b.log.Info("Templates loaded", logging.Path(b.cfg.ThemeDir), logging.Count(engine.Count()))
	return nil
}

// discover walks the content tree once: it registers a section per
// directory, mirrors the directory under the output root, and returns the
// document candidates in walk order.
func (b *Builder) discover() ([]string, error) {
	root := b.cfg.ContentDir
	var files []string
	err := afero.Walk(b.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path '%s' during walk: %w", p, err)
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", p, err)
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if content.IsSentinel(rel) {
				return fmt.Errorf("%w: '%s'", ErrReservedSection, rel)
			}
			b.registry.Discover(rel)
			if err := b.fs.MkdirAll(filepath.Join(b.cfg.OutputDir, filepath.FromSlash(rel)), os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory for section '%s': %w", rel, err)
			}
			b.log.Debug("Discovered section", logging.Section(rel))
			return nil
		}
		if content.IsDocument(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during content discovery: %w", err)
	}
	return files, nil
}

// process loads, classifies and renders every document candidate.
func (b *Builder) process(files []string) ([]*model.Document, error) {
	keys := b.registry.Keys()
	docs := make([]*model.Document, 0, len(files))
	for _, rel := range files {
		doc, err := b.loader.Load(rel)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			b.log.Debug("Not a document, ignoring", logging.Path(rel))
			continue
		}
		content.Classify(rel, doc.Template, keys).Apply(doc)

		if doc.Draft {
			b.stats.Drafts++
			b.log.Debug("Skipping draft", logging.Path(rel))
			continue
		}
		if doc.Rendered() {
			if err := b.renderPage(doc); err != nil {
				return nil, err
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// renderPage renders a standalone document page.
func (b *Builder) renderPage(doc *model.Document) error {
	data := model.NewPageData(b.cfg, doc)
	if err := b.renderTo(doc.OutputPath, doc.Template, data); err != nil {
		return fmt.Errorf("failed to render '%s': %w", doc.SourcePath, err)
	}
	b.pages[doc.OutputPath] = doc.SourcePath
	b.stats.Pages++
	b.log.Debug("Rendered page", logging.Path(doc.OutputPath), logging.Template(doc.Template))
	return nil
}

func (b *Builder) renderTo(rel, tpl string, data any) error {
	out, err := b.engine.Render(tpl, data)
	if err != nil {
		return err
	}
	return b.write(rel, out)
}

// write stores s at rel, a slash separated path below the output root.
func (b *Builder) write(rel, s string) error {
	local := filepath.FromSlash(path.Clean(rel))
	if !filepath.IsLocal(local) {
		return fmt.Errorf("%w: '%s'", ErrOutputEscape, rel)
	}
	p := filepath.Join(b.cfg.OutputDir, local)
	if err := b.fs.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", filepath.Dir(p), err)
	}
	// #nosec G306 -- generated site output is public
	if err := afero.WriteFile(b.fs, p, []byte(s), 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", p, err)
	}
	return nil
}
