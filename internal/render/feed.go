package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/Bitlatte/tome/internal/model"
)

// Feed describes one syndication artifact.
type Feed struct {
	Title   string
	BaseURL string
	// Path is the site relative location of the feed file.
	Path    string
	Author  string
	Updated time.Time
	Entries []*model.Document
}

// URL is the absolute address of the feed.
func (f Feed) URL() string {
	return strings.TrimSuffix(f.BaseURL, "/") + "/" + strings.TrimPrefix(f.Path, "/")
}

// RenderFeed serialises f as "atom" or "rss". Entry ids derive from entry
// links so repeated builds produce identical bytes.
func RenderFeed(format string, f Feed) (string, error) {
	var author *feeds.Author
	if f.Author != "" {
		author = &feeds.Author{Name: f.Author}
	}
	feed := &feeds.Feed{
		Title:   f.Title,
		Link:    &feeds.Link{Href: f.URL(), Rel: "self"},
		Author:  author,
		Id:      f.URL(),
		Created: f.Updated,
		Updated: f.Updated,
	}
	for _, e := range f.Entries {
		link := strings.TrimSuffix(f.BaseURL, "/") + "/" + e.Link
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          link,
			Title:       e.Title,
			Link:        &feeds.Link{Href: link},
			Author:      author,
			Description: e.Description,
			Content:     string(e.Body),
			Created:     e.Date,
			Updated:     e.Date,
		})
	}

	switch format {
	case "atom", "":
		return feed.ToAtom()
	case "rss":
		return feed.ToRss()
	default:
		return "", fmt.Errorf("unknown feed format %q", format)
	}
}
