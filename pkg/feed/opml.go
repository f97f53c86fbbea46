package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// OPMLGenerator renders the registry as an OPML subscription list
type OPMLGenerator struct {
	title string
}

// NewOPMLGenerator creates a new OPML generator
func NewOPMLGenerator(title string) *OPMLGenerator {
	if title == "" {
		title = "Feedkeeper Registry"
	}
	return &OPMLGenerator{title: title}
}

// Generate creates an OPML 2.0 document with all live feeds of the registry.
// Entries not yet active are included with their status as the category.
func (g *OPMLGenerator) Generate(reg *domain.Registry, now time.Time) (string, error) {
	outlines := make([]OPMLOutline, 0, reg.Len())
	for _, f := range reg.Feeds {
		if f.Status == domain.StatusEvicted {
			continue
		}
		outline := OPMLOutline{
			Text:     f.Identity,
			Title:    f.Identity,
			Type:     "rss",
			XMLURL:   f.URL,
			Language: f.Language,
		}
		if f.Status != domain.StatusActive {
			outline.Category = string(f.Status)
		}
		outlines = append(outlines, outline)
	}

	doc := OPML{
		Version: "2.0",
		Head: OPMLHead{
			Title:       g.title,
			DateCreated: now.Format(time.RFC1123Z),
		},
		Body: OPMLBody{Outlines: outlines},
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal OPML: %w", err)
	}

	return xml.Header + string(output), nil
}
