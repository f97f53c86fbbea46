package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedkeeper/pkg/domain"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Test Feed</title>
	<link>http://example.com</link>
	<description>Test Description</description>
	<item>
		<title>Test Article 1</title>
		<link>http://example.com/article1</link>
		<pubDate>Mon, 02 Jan 2006 15:04:05 -0700</pubDate>
	</item>
	<item>
		<title>Test Article 2</title>
		<link>http://example.com/article2</link>
	</item>
</channel>
</rss>`

const testAtom = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Test Atom Feed</title>
	<link href="http://example.com"/>
	<entry>
		<title>Atom Entry 1</title>
		<link href="http://example.com/entry1"/>
		<id>urn:entry1</id>
		<updated>2006-01-02T15:04:05Z</updated>
	</entry>
</feed>`

const testJSONFeed = `{
	"version": "https://jsonfeed.org/version/1.1",
	"title": "Test JSON Feed",
	"items": [{"id": "1", "url": "http://example.com/1", "content_text": "hello"}]
}`

const emptyRSS = `<?xml version="1.0"?><rss version="2.0"><channel><title>Quiet</title></channel></rss>`

func TestProber_Probe(t *testing.T) {
	var gotUA, gotAccept string
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		gotUA, gotAccept = r.Header.Get("User-Agent"), r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testRSS))
	})
	mux.HandleFunc("/atom", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testAtom))
	})
	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/feed+json")
		_, _ = w.Write([]byte(testJSONFeed))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(emptyRSS))
	})
	mux.HandleFunc("/html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>not a feed</h1></body></html>"))
	})
	mux.HandleFunc("/blank", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	mux.HandleFunc("/error", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/rss", http.StatusMovedPermanently)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	prober := NewProber(5*time.Second, "feedkeeper-test/1.0", 1024*1024)

	tests := []struct {
		name      string
		path      string
		alive     bool
		errKind   domain.ProbeError
		articles  int
		title     string
		reasonSub string
	}{
		{name: "rss", path: "/rss", alive: true, articles: 2, title: "Test Feed"},
		{name: "atom", path: "/atom", alive: true, articles: 1, title: "Test Atom Feed"},
		{name: "json feed", path: "/json", alive: true, articles: 1, title: "Test JSON Feed"},
		{name: "zero items is alive", path: "/empty", alive: true, articles: 0, title: "Quiet"},
		{name: "redirect followed", path: "/redirect", alive: true, articles: 2, title: "Test Feed"},
		{name: "html page", path: "/html", errKind: domain.ProbeErrorParse, reasonSub: "parse feed"},
		{name: "empty body", path: "/blank", errKind: domain.ProbeErrorParse},
		{name: "410", path: "/gone", errKind: domain.ProbeErrorHTTP, reasonSub: "410"},
		{name: "500", path: "/error", errKind: domain.ProbeErrorHTTP, reasonSub: "500"},
		{name: "404", path: "/missing", errKind: domain.ProbeErrorHTTP, reasonSub: "404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := prober.Probe(context.Background(), ts.URL+tt.path)
			assert.Equal(t, ts.URL+tt.path, res.URL)
			assert.Equal(t, tt.alive, res.Alive)
			assert.Equal(t, tt.errKind, res.Error)
			assert.False(t, res.CheckedAt.IsZero())
			if tt.alive {
				assert.Equal(t, tt.articles, res.ArticleCount)
				assert.Equal(t, tt.title, res.Title)
				assert.Empty(t, res.Reason)
				return
			}
			assert.NotEmpty(t, res.Reason)
			if tt.reasonSub != "" {
				assert.Contains(t, res.Reason, tt.reasonSub)
			}
		})
	}

	assert.Equal(t, "feedkeeper-test/1.0", gotUA)
	assert.Contains(t, gotAccept, "application/rss+xml")
}

func TestProber_ProbeTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(testRSS))
	}))
	defer ts.Close()

	prober := NewProber(100*time.Millisecond, "test", 1024)
	st := time.Now()
	res := prober.Probe(context.Background(), ts.URL)
	assert.Less(t, time.Since(st), time.Second, "probe must not wait beyond its timeout")
	assert.False(t, res.Alive)
	assert.Equal(t, domain.ProbeErrorTimeout, res.Error)
	assert.NotEmpty(t, res.Reason)
}

func TestProber_ProbeConnectionErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := ts.URL
	ts.Close()

	prober := NewProber(time.Second, "test", 1024)

	t.Run("refused", func(t *testing.T) {
		res := prober.Probe(context.Background(), closedURL+"/feed")
		assert.False(t, res.Alive)
		assert.Equal(t, domain.ProbeErrorConnection, res.Error)
	})

	t.Run("invalid url", func(t *testing.T) {
		res := prober.Probe(context.Background(), "not-a-url")
		assert.False(t, res.Alive)
		assert.Equal(t, domain.ProbeErrorConnection, res.Error)
	})

	t.Run("bad scheme", func(t *testing.T) {
		res := prober.Probe(context.Background(), "ftp://example.com/feed")
		assert.False(t, res.Alive)
		assert.Equal(t, domain.ProbeErrorConnection, res.Error)
	})
}

func TestProber_ProbeBodyLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testRSS))
	}))
	defer ts.Close()

	res := NewProber(time.Second, "test", 64).Probe(context.Background(), ts.URL)
	assert.False(t, res.Alive)
	assert.Equal(t, domain.ProbeErrorParse, res.Error)
	assert.Contains(t, res.Reason, "exceeds limit")
}

func TestProber_ProbeCandidate(t *testing.T) {
	var ts *httptest.Server
	var homeHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			homeHits.Add(1)
		}
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprintf(w, `<html><head>
<link rel="alternate" type="application/rss+xml" href="/dead.xml">
<link rel="alternate" type="application/rss+xml" href="%s/feed.xml">
</head><body>home</body></html>`, ts.URL)
	})
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testRSS))
	})
	mux.HandleFunc("/nolinks", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>nothing here</body></html>"))
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	prober := NewProber(time.Second, "test", 1024*1024)

	t.Run("direct feed", func(t *testing.T) {
		res := prober.ProbeCandidate(context.Background(), ts.URL+"/feed.xml")
		assert.True(t, res.Alive)
		assert.Equal(t, ts.URL+"/feed.xml", res.URL)
	})

	t.Run("homepage resolved to advertised feed", func(t *testing.T) {
		res := prober.ProbeCandidate(context.Background(), ts.URL+"/")
		assert.True(t, res.Alive)
		assert.Equal(t, ts.URL+"/feed.xml", res.URL)
		assert.Equal(t, 2, res.ArticleCount)
		assert.Equal(t, int32(1), homeHits.Load(), "page body is reused for link lookup")
	})

	t.Run("page without links", func(t *testing.T) {
		res := prober.ProbeCandidate(context.Background(), ts.URL+"/nolinks")
		assert.False(t, res.Alive)
		assert.Equal(t, domain.ProbeErrorParse, res.Error)
		assert.Equal(t, ts.URL+"/nolinks", res.URL)
	})

	t.Run("http error is not expanded", func(t *testing.T) {
		res := prober.ProbeCandidate(context.Background(), ts.URL+"/missing")
		assert.False(t, res.Alive)
		assert.Equal(t, domain.ProbeErrorHTTP, res.Error)
	})
}

func TestFeedLinks(t *testing.T) {
	page := `<!DOCTYPE html><html><head>
<title>Site</title>
<link rel="stylesheet" href="/style.css">
<link rel="alternate" type="application/rss+xml" title="RSS" href="/rss.xml">
<link rel="alternate" type="application/atom+xml; charset=utf-8" href="atom.xml">
<link rel="Alternate" type="application/feed+json" href="https://cdn.example.com/feed.json">
<link rel="alternate" type="application/rss+xml" href="/rss.xml">
<link rel="alternate" type="application/json" href="/wp-json/wp/v2/pages/1">
<link rel="alternate" hreflang="de" href="/de/">
<link rel="alternate" type="application/rss+xml" href="javascript:alert(1)">
</head><body><a rel="alternate" type="application/rss+xml" href="/not-a-link-tag">x</a></body></html>`

	links, err := feedLinks([]byte(page), "https://example.com/blog/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/rss.xml",
		"https://example.com/blog/atom.xml",
		"https://cdn.example.com/feed.json",
	}, links)

	t.Run("no links", func(t *testing.T) {
		links, err := feedLinks([]byte("<html><body>nothing</body></html>"), "https://example.com/")
		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("bad page url", func(t *testing.T) {
		_, err := feedLinks([]byte(page), "http://[::1")
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "parse page url"))
	})
}
