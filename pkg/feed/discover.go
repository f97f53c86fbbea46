package feed

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/net/html"
)

// feedMimeTypes are link types advertised by sites for their feeds
var feedMimeTypes = map[string]bool{
	"application/rss+xml":   true,
	"application/atom+xml":  true,
	"application/feed+json": true,
}

// feedLinks returns feed urls advertised by an html page with
// <link rel="alternate" type="application/rss+xml|atom+xml|feed+json">, resolved against the page url.
func feedLinks(page []byte, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url %s: %w", pageURL, err)
	}

	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "link" {
			if href, ok := feedLinkHref(n); ok {
				if ref, err := url.Parse(href); err == nil {
					if abs := base.ResolveReference(ref); abs.Scheme == "http" || abs.Scheme == "https" {
						links = append(links, abs.String())
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return lo.Uniq(links), nil
}

// feedLinkHref returns href of a <link> node if it points to a feed
func feedLinkHref(n *html.Node) (string, bool) {
	var rel, typ, href string
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "rel":
			rel = strings.ToLower(a.Val)
		case "type":
			typ = strings.ToLower(strings.TrimSpace(a.Val))
		case "href":
			href = strings.TrimSpace(a.Val)
		}
	}
	if href == "" || !lo.Contains(strings.Fields(rel), "alternate") {
		return "", false
	}
	if i := strings.Index(typ, ";"); i >= 0 {
		typ = strings.TrimSpace(typ[:i])
	}
	return href, feedMimeTypes[typ]
}
