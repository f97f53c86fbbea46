package feed

import (
	"math/rand"
	"net/http"
)

// feedAccept prefers feed formats, html is accepted for autodiscovery of candidate pages
const feedAccept = "application/rss+xml,application/atom+xml,application/feed+json;q=0.9," +
	"application/xml;q=0.8,text/xml;q=0.8,text/html;q=0.6,*/*;q=0.3"

var probeLanguages = []string{"en-US,en;q=0.9", "en-GB,en;q=0.9", "en;q=0.8,*;q=0.5"}

// setProbeHeaders makes a probe request look like a regular feed reader.
// Some publishers block clients without Accept or Accept-Language headers.
func setProbeHeaders(req *http.Request, userAgent string) {
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", feedAccept)
	req.Header.Set("Accept-Language", probeLanguages[rand.Intn(len(probeLanguages))]) //nolint:gosec // not security sensitive
	req.Header.Set("Cache-Control", "no-cache")
}
