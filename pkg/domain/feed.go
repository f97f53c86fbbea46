package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Status represents the lifecycle state of a registered feed.
// An active entry has passed at least one probe, unverified is a live entry that never did.
type Status string

const (
	StatusActive        Status = "active"
	StatusUnverified    Status = "unverified"
	StatusPendingRepair Status = "pending_repair"
	StatusEvicted       Status = "evicted"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusUnverified, StatusPendingRepair, StatusEvicted:
		return true
	}
	return false
}

// FeedEntry is a single registered feed source
type FeedEntry struct {
	URL                 string     `json:"url"`
	Identity            string     `json:"identity"`
	Language            string     `json:"language,omitempty"`
	Weight              float64    `json:"weight,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	Status              Status     `json:"status"`
	Discovered          bool       `json:"discovered"`
	RepairAttempted     bool       `json:"repair_attempted"` // a repair failed in the current failure episode
	LastChecked         *time.Time `json:"last_checked,omitempty"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
}

// Name returns a human-readable identifier for log messages
func (e FeedEntry) Name() string {
	if e.Identity != "" {
		return e.Identity
	}
	return e.URL
}

// Registry is the ordered collection of feed entries keyed by url.
// No two entries share a url and no two live (not evicted) entries
// share the same normalized identity.
type Registry struct {
	Feeds []FeedEntry
}

// Len returns number of entries
func (r *Registry) Len() int {
	return len(r.Feeds)
}

// Find returns a pointer to the entry with the given url or nil
func (r *Registry) Find(feedURL string) *FeedEntry {
	key := NormalizeURL(feedURL)
	for i := range r.Feeds {
		if NormalizeURL(r.Feeds[i].URL) == key {
			return &r.Feeds[i]
		}
	}
	return nil
}

// HasURL checks if any entry uses the given url
func (r *Registry) HasURL(feedURL string) bool {
	return r.Find(feedURL) != nil
}

// HasIdentity checks if a live entry carries the given identity, compared normalized
func (r *Registry) HasIdentity(identity string) bool {
	key := NormalizeIdentity(identity)
	if key == "" {
		return false
	}
	for _, f := range r.Feeds {
		if f.Status != StatusEvicted && NormalizeIdentity(f.Identity) == key {
			return true
		}
	}
	return false
}

// Add appends an entry, rejecting duplicates by url or live identity
func (r *Registry) Add(entry FeedEntry) error {
	if strings.TrimSpace(entry.URL) == "" {
		return fmt.Errorf("empty url")
	}
	if NormalizeIdentity(entry.Identity) == "" {
		return fmt.Errorf("empty identity for %s", entry.URL)
	}
	if r.HasURL(entry.URL) {
		return fmt.Errorf("duplicate url %s", entry.URL)
	}
	if entry.Status != StatusEvicted && r.HasIdentity(entry.Identity) {
		return fmt.Errorf("duplicate identity %q", entry.Identity)
	}
	r.Feeds = append(r.Feeds, entry)
	return nil
}

// Remove deletes the entry with the given url, returns false if not found
func (r *Registry) Remove(feedURL string) bool {
	key := NormalizeURL(feedURL)
	for i := range r.Feeds {
		if NormalizeURL(r.Feeds[i].URL) == key {
			r.Feeds = append(r.Feeds[:i], r.Feeds[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the registry
func (r *Registry) Clone() *Registry {
	res := &Registry{Feeds: make([]FeedEntry, len(r.Feeds))}
	for i, f := range r.Feeds {
		if f.LastChecked != nil {
			t := *f.LastChecked
			f.LastChecked = &t
		}
		if f.LastSuccess != nil {
			t := *f.LastSuccess
			f.LastSuccess = &t
		}
		res.Feeds[i] = f
	}
	return res
}

// ActiveCount returns number of entries in active status
func (r *Registry) ActiveCount() int {
	res := 0
	for _, f := range r.Feeds {
		if f.Status == StatusActive {
			res++
		}
	}
	return res
}

// LanguageCount returns number of live entries in the given language, compared case-insensitively
func (r *Registry) LanguageCount(lang string) int {
	res := 0
	for _, f := range r.Feeds {
		if f.Status != StatusEvicted && strings.EqualFold(strings.TrimSpace(f.Language), strings.TrimSpace(lang)) {
			res++
		}
	}
	return res
}

// Identities returns identities of all live entries
func (r *Registry) Identities() []string {
	res := make([]string, 0, len(r.Feeds))
	for _, f := range r.Feeds {
		if f.Status != StatusEvicted {
			res = append(res, f.Identity)
		}
	}
	return res
}

// NormalizeIdentity lower-cases the identity and collapses whitespace,
// used to detect the same source registered under different urls
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.Join(strings.Fields(identity), " "))
}

// NormalizeURL returns a comparison key for a feed url: lower-cased scheme and host,
// no fragment, no trailing slash. Unparsable urls are returned trimmed.
func NormalizeURL(feedURL string) string {
	raw := strings.TrimSpace(feedURL)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

// IdentityFromURL derives a fallback identity from the feed host, without "www." prefix
func IdentityFromURL(feedURL string) string {
	u, err := url.Parse(strings.TrimSpace(feedURL))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(feedURL)
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// ValidFeedURL checks that the url is absolute http(s) with a host
func ValidFeedURL(feedURL string) bool {
	u, err := url.Parse(strings.TrimSpace(feedURL))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
