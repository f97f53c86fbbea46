package feed

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedkeeper/pkg/domain"
)

func TestOPMLGenerator_Generate(t *testing.T) {
	generator := NewOPMLGenerator("")
	reg := &domain.Registry{Feeds: []domain.FeedEntry{
		{URL: "https://technews.com/feed.xml", Identity: "Tech News", Language: "en", Status: domain.StatusActive},
		{URL: "https://science.jp/rss?a=1&b=2", Identity: "Science & Co", Language: "ja", Status: domain.StatusPendingRepair},
		{URL: "https://gone.com/feed", Identity: "Gone Feed", Status: domain.StatusEvicted},
		{URL: "https://fresh.com/feed", Identity: "Fresh", Status: domain.StatusUnverified},
	}}

	opml, err := generator.Generate(reg, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Contains(t, opml, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, opml, `<opml version="2.0">`)
	assert.Contains(t, opml, `<title>Feedkeeper Registry</title>`)
	assert.Contains(t, opml, `<dateCreated>Sun, 18 Oct 2026 12:00:00 +0000</dateCreated>`)

	assert.Contains(t, opml, `text="Tech News"`)
	assert.Contains(t, opml, `xmlUrl="https://technews.com/feed.xml"`)
	assert.Contains(t, opml, `language="en"`)
	assert.Contains(t, opml, `text="Science &amp; Co"`)
	assert.Contains(t, opml, `category="pending_repair"`)
	assert.Contains(t, opml, `category="unverified"`)
	assert.NotContains(t, opml, "Gone Feed")

	// must be valid xml and round-trip
	var doc OPML
	require.NoError(t, xml.Unmarshal([]byte(opml), &doc))
	require.Len(t, doc.Body.Outlines, 3)
	assert.Empty(t, doc.Body.Outlines[0].Category)
	assert.Equal(t, "https://science.jp/rss?a=1&b=2", doc.Body.Outlines[1].XMLURL)
	assert.Equal(t, "rss", doc.Body.Outlines[0].Type)
}

func TestOPMLGenerator_Empty(t *testing.T) {
	opml, err := NewOPMLGenerator("My Feeds").Generate(&domain.Registry{}, time.Now())
	require.NoError(t, err)
	assert.Contains(t, opml, `<title>My Feeds</title>`)
	assert.Contains(t, opml, `<body></body>`)
}
