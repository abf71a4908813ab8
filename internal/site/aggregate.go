package site

import (
	"fmt"
	"path"
	"time"

	"github.com/Bitlatte/tome/internal/content"
	"github.com/Bitlatte/tome/internal/logging"
	"github.com/Bitlatte/tome/internal/model"
	"github.com/Bitlatte/tome/internal/render"
)

// sectionSkipReason decides whether a section can produce its listing.
// An empty result means it can.
func (b *Builder) sectionSkipReason(marker *model.Document) string {
	switch {
	case marker == nil:
		return "no marker document"
	case b.static[marker.OutputPath]:
		return "listing collides with static file " + marker.OutputPath
	case b.pages[marker.OutputPath] != "":
		return "listing collides with page " + b.pages[marker.OutputPath]
	case !b.engine.Has(marker.Template):
		return "missing listing template " + marker.Template
	}
	return ""
}

// aggregateSection renders the listing page and feed of one section.
func (b *Builder) aggregateSection(s *Section) error {
	s.SortByDate()
	marker := s.Marker()
	if reason := b.sectionSkipReason(marker); reason != "" {
		b.stats.SkippedSections++
		b.log.Warn("Skipping section", logging.Section(s.Key), logging.Reason(reason))
		return nil
	}

	entries := s.Members()
	feedPath := marker.FeedLinkOverride
	if feedPath == "" {
		feedPath = path.Join(s.Key, b.cfg.FeedPath)
	}

	data := model.NewPageData(b.cfg, marker).WithEntries(entries, feedPath)
	if err := b.renderTo(marker.OutputPath, marker.Template, data); err != nil {
		return fmt.Errorf("failed to render listing for section '%s': %w", s.Key, err)
	}
	b.stats.SectionFiles++

	title := b.cfg.Title
	if marker.Title != "" {
		title += " - " + marker.Title
	}
	if err := b.writeFeed(title, feedPath, entries); err != nil {
		return fmt.Errorf("failed to write feed for section '%s': %w", s.Key, err)
	}
	b.log.Info("Built section", logging.Section(s.Key), logging.Count(len(entries)))
	return nil
}

// aggregateSite renders the site index and the site feed from every
// collected page. Both are mandatory.
func (b *Builder) aggregateSite() error {
	pages, _ := b.registry.Get(model.SectionPages)
	pages.SortByDate()

	var root *model.Document
	if s, ok := b.registry.Get(model.SectionRoot); ok {
		root = s.Marker()
	}

	feedPath := b.cfg.FeedPath
	if root != nil && root.FeedLinkOverride != "" {
		feedPath = root.FeedLinkOverride
	}

	data := model.NewPageData(b.cfg, root).WithEntries(pages.Entries, feedPath)
	if err := b.renderTo("index.html", content.RootTemplate, data); err != nil {
		return fmt.Errorf("failed to render site index: %w", err)
	}
	b.stats.SectionFiles++

	if err := b.writeFeed(b.cfg.Title, feedPath, pages.Entries); err != nil {
		return fmt.Errorf("failed to write site feed: %w", err)
	}
	b.log.Info("Built site index", logging.Count(len(pages.Entries)))
	return nil
}

// writeFeed emits a feed whose date is that of the newest entry.
func (b *Builder) writeFeed(title, feedPath string, entries []*model.Document) error {
	var updated time.Time
	if len(entries) > 0 {
		updated = entries[0].Date
	}
	out, err := render.RenderFeed(b.cfg.FeedFormat, render.Feed{
		Title:   title,
		BaseURL: b.cfg.BaseURL,
		Path:    feedPath,
		Author:  b.cfg.Author,
		Updated: updated,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	if err := b.write(feedPath, out); err != nil {
		return err
	}
	b.stats.FeedFiles++
	return nil
}
