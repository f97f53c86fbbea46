// Package registry loads and persists the feed registry file.
// The file is a human-editable YAML document, operators may change it between runs,
// so loading tolerates missing optional fields and skips malformed records.
// Saving is atomic: the new content is written to a temporary file in the same
// directory and renamed over the old one.
package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// ErrLocked is returned by Lock when another maintenance cycle holds the registry
var ErrLocked = errors.New("registry is locked by another cycle")

// Store reads and writes the registry file
type Store struct {
	path     string
	lockPath string
}

// record is the on-disk representation of a feed entry
type record struct {
	URL                 string     `yaml:"url"`
	Identity            string     `yaml:"identity,omitempty"`
	Name                string     `yaml:"name,omitempty"` // legacy alias for identity, read only
	Language            string     `yaml:"language,omitempty"`
	Weight              float64    `yaml:"weight,omitempty"`
	ConsecutiveFailures int        `yaml:"consecutive_failures"`
	Status              string     `yaml:"status,omitempty"`
	Discovered          bool       `yaml:"discovered"`
	RepairAttempted     bool       `yaml:"repair_attempted,omitempty"`
	LastChecked         *time.Time `yaml:"last_checked,omitempty"`
	LastSuccess         *time.Time `yaml:"last_success,omitempty"`
}

type document struct {
	Feeds []yaml.Node `yaml:"feeds"`
}

type outDocument struct {
	Feeds []record `yaml:"feeds"`
}

// NewStore creates a store for the registry at path. Empty lockPath defaults to path + ".lock".
func NewStore(path, lockPath string) *Store {
	if lockPath == "" {
		lockPath = path + ".lock"
	}
	return &Store{path: path, lockPath: lockPath}
}

// Path returns location of the registry file
func (s *Store) Path() string {
	return s.path
}

// Load reads the registry. Malformed, duplicate and evicted records are skipped with a warning,
// only an unreadable or structurally broken file is an error.
func (s *Store) Load(_ context.Context) (*domain.Registry, error) {
	data, err := os.ReadFile(s.path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", s.path, err)
	}
	return Parse(data)
}

// Parse decodes registry content
func Parse(data []byte) (*domain.Registry, error) {
	reg := &domain.Registry{}
	if len(bytes.TrimSpace(data)) == 0 {
		return reg, nil
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	for i, node := range doc.Feeds {
		var rec record
		if err := node.Decode(&rec); err != nil {
			lgr.Printf("[WARN] skip malformed registry record #%d (line %d): %v", i+1, node.Line, err)
			continue
		}
		entry, err := rec.toEntry()
		if err != nil {
			lgr.Printf("[WARN] skip invalid registry record #%d (line %d): %v", i+1, node.Line, err)
			continue
		}
		if entry.Status == domain.StatusEvicted {
			lgr.Printf("[INFO] drop evicted registry record %s", entry.URL)
			continue
		}
		if err := reg.Add(entry); err != nil {
			lgr.Printf("[WARN] skip registry record #%d (line %d): %v", i+1, node.Line, err)
			continue
		}
	}
	return reg, nil
}

// Save atomically replaces the registry file with reg. Evicted and duplicate entries are not written.
// On failure the previous file is left untouched.
func (s *Store) Save(_ context.Context, reg *domain.Registry) error {
	data, err := Marshal(reg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp registry file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp registry file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp registry file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp registry file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil { //nolint:gosec // registry is read by downstream tools
		cleanup()
		return fmt.Errorf("chmod temp registry file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("rename registry file: %w", err)
	}
	return nil
}

// Marshal encodes the registry to YAML, keeping only live, non-duplicate entries
func Marshal(reg *domain.Registry) ([]byte, error) {
	clean := &domain.Registry{}
	for _, f := range reg.Feeds {
		if f.Status == domain.StatusEvicted {
			continue
		}
		if err := clean.Add(f); err != nil {
			lgr.Printf("[WARN] not persisting %s: %v", f.URL, err)
		}
	}

	out := outDocument{Feeds: make([]record, 0, clean.Len())}
	for _, f := range clean.Feeds {
		out.Feeds = append(out.Feeds, fromEntry(f))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode registry: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close registry encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// Lock acquires the cross-process cycle lock without waiting.
// Returns ErrLocked if another process or goroutine already holds it.
func (s *Store) Lock() (unlock func(), err error) {
	fl := flock.New(s.lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock registry %s: %w", s.lockPath, err)
	}
	if !locked {
		return nil, ErrLocked
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			lgr.Printf("[WARN] failed to unlock %s: %v", s.lockPath, err)
		}
	}, nil
}

func (r record) toEntry() (domain.FeedEntry, error) {
	feedURL := strings.TrimSpace(r.URL)
	if feedURL == "" {
		return domain.FeedEntry{}, fmt.Errorf("missing url")
	}
	if !domain.ValidFeedURL(feedURL) {
		return domain.FeedEntry{}, fmt.Errorf("invalid url %q", feedURL)
	}
	if r.ConsecutiveFailures < 0 {
		return domain.FeedEntry{}, fmt.Errorf("negative consecutive_failures for %s", feedURL)
	}

	status := domain.Status(strings.ToLower(strings.TrimSpace(r.Status)))
	if status == "" {
		status = domain.StatusActive
	}
	if !status.Valid() {
		return domain.FeedEntry{}, fmt.Errorf("unknown status %q for %s", r.Status, feedURL)
	}

	identity := strings.TrimSpace(r.Identity)
	if identity == "" {
		identity = strings.TrimSpace(r.Name)
	}
	if identity == "" {
		identity = domain.IdentityFromURL(feedURL)
	}

	weight := r.Weight
	if weight == 0 {
		weight = 1.0
	}

	return domain.FeedEntry{
		URL:                 feedURL,
		Identity:            identity,
		Language:            strings.TrimSpace(r.Language),
		Weight:              weight,
		ConsecutiveFailures: r.ConsecutiveFailures,
		Status:              status,
		Discovered:          r.Discovered,
		RepairAttempted:     r.RepairAttempted || status == domain.StatusPendingRepair,
		LastChecked:         r.LastChecked,
		LastSuccess:         r.LastSuccess,
	}, nil
}

func fromEntry(e domain.FeedEntry) record {
	return record{
		URL:                 e.URL,
		Identity:            e.Identity,
		Language:            e.Language,
		Weight:              e.Weight,
		ConsecutiveFailures: e.ConsecutiveFailures,
		Status:              string(e.Status),
		Discovered:          e.Discovered,
		RepairAttempted:     e.RepairAttempted,
		LastChecked:         utcTime(e.LastChecked),
		LastSuccess:         utcTime(e.LastSuccess),
	}
}

func utcTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	res := t.UTC().Truncate(time.Second)
	return &res
}
