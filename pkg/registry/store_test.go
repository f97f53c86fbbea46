package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedkeeper/pkg/domain"
)

func TestStore_Load(t *testing.T) {
	content := `
feeds:
  - url: https://example.com/feed.xml
    identity: Example News
    language: en
    weight: 1.2
    consecutive_failures: 2
    status: active
    discovered: false
    last_checked: 2026-10-11T10:00:00Z
  - url: https://legacy.example.org/rss
    name: Legacy Source
  - url: https://www.nameless.io/atom.xml
  - identity: No URL
  - url: not-a-url
    identity: Broken
  - url: https://bad-counter.com/feed
    consecutive_failures: -1
  - url: https://bad-status.com/feed
    status: paused
  - url: https://bad-type.com/feed
    consecutive_failures: many
  - url: https://example.com/feed.xml/
    identity: Duplicate URL
  - url: https://other.com/feed
    identity: "  example   NEWS "
  - url: https://gone.com/feed
    identity: Gone
    status: evicted
  - url: https://pending.com/feed
    identity: Pending
    status: pending_repair
    consecutive_failures: 3
  - url: https://retried.com/feed
    identity: Retried
    status: active
    repair_attempted: true
    consecutive_failures: 4
  - url: https://fresh.com/feed
    identity: Fresh
    status: unverified
    consecutive_failures: 1
`
	path := filepath.Join(t.TempDir(), "feeds.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	reg, err := NewStore(path, "").Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 6, reg.Len())

	first := reg.Feeds[0]
	assert.Equal(t, "https://example.com/feed.xml", first.URL)
	assert.Equal(t, "Example News", first.Identity)
	assert.Equal(t, "en", first.Language)
	assert.InDelta(t, 1.2, first.Weight, 0.0001)
	assert.Equal(t, 2, first.ConsecutiveFailures)
	assert.Equal(t, domain.StatusActive, first.Status)
	assert.False(t, first.RepairAttempted)
	require.NotNil(t, first.LastChecked)
	assert.Equal(t, time.Date(2026, 10, 11, 10, 0, 0, 0, time.UTC), first.LastChecked.UTC())

	legacy := reg.Feeds[1]
	assert.Equal(t, "Legacy Source", legacy.Identity, "name is accepted as identity")
	assert.Equal(t, domain.StatusActive, legacy.Status, "status defaults to active")
	assert.InDelta(t, 1.0, legacy.Weight, 0.0001, "weight defaults to 1")
	assert.Equal(t, 0, legacy.ConsecutiveFailures)

	assert.Equal(t, "nameless.io", reg.Feeds[2].Identity, "identity defaults to host")

	pending := reg.Feeds[3]
	assert.Equal(t, domain.StatusPendingRepair, pending.Status)
	assert.Equal(t, 3, pending.ConsecutiveFailures)
	assert.True(t, pending.RepairAttempted, "pending_repair without the flag implies a failed repair")

	retried := reg.Feeds[4]
	assert.Equal(t, domain.StatusActive, retried.Status)
	assert.True(t, retried.RepairAttempted, "flag kept when status was edited by hand")

	fresh := reg.Feeds[5]
	assert.Equal(t, domain.StatusUnverified, fresh.Status)
	assert.False(t, fresh.RepairAttempted)
}

func TestStore_LoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewStore(filepath.Join(t.TempDir(), "nope.yml"), "").Load(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("broken document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "feeds.yml")
		require.NoError(t, os.WriteFile(path, []byte("feeds: [unclosed"), 0o600))
		_, err := NewStore(path, "").Load(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse registry")
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "feeds.yml")
		require.NoError(t, os.WriteFile(path, nil, 0o600))
		reg, err := NewStore(path, "").Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, reg.Len())
	})
}

func TestStore_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yml")
	store := NewStore(path, "")
	checked := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	reg := &domain.Registry{Feeds: []domain.FeedEntry{
		{URL: "https://a.com/feed", Identity: "A", Weight: 1, Status: domain.StatusActive, LastChecked: &checked, LastSuccess: &checked},
		{URL: "https://b.com/feed", Identity: "B", Weight: 1.3, Language: "ja", Status: domain.StatusPendingRepair,
			ConsecutiveFailures: 3, RepairAttempted: true, Discovered: true, LastChecked: &checked},
		{URL: "https://c.com/feed", Identity: "C", Weight: 1, Status: domain.StatusEvicted},
		{URL: "https://A.com/feed/", Identity: "A dup", Weight: 1, Status: domain.StatusActive},
		{URL: "https://d.com/feed", Identity: "D", Weight: 1, Status: domain.StatusUnverified, ConsecutiveFailures: 1, LastChecked: &checked},
	}}
	require.NoError(t, store.Save(context.Background(), reg))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Len(), "evicted and duplicate entries are not persisted")
	assert.Equal(t, reg.Feeds[0].URL, loaded.Feeds[0].URL)
	assert.Equal(t, checked, loaded.Feeds[0].LastChecked.UTC())
	assert.Equal(t, reg.Feeds[1], normalizeTimes(loaded.Feeds[1]))
	assert.Equal(t, reg.Feeds[4], normalizeTimes(loaded.Feeds[2]))

	data, err := os.ReadFile(path) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Contains(t, string(data), "repair_attempted: true")
	assert.Contains(t, string(data), "status: unverified")

	// no temp files left behind
	files, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "feeds.yml", files[0].Name())
}

func TestStore_SaveFailureKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yml")
	original := []byte("feeds:\n  - url: https://a.com/feed\n    identity: A\n")
	require.NoError(t, os.WriteFile(path, original, 0o600))

	// make the directory read-only so the temp file can't be created
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })
	if f, err := os.CreateTemp(dir, "probe"); err == nil {
		// running as root, permissions are not enforced
		_ = f.Close()
		_ = os.Remove(f.Name())
		t.Skip("directory permissions are not enforced")
	}

	store := NewStore(path, "")
	err := store.Save(context.Background(), &domain.Registry{Feeds: []domain.FeedEntry{
		{URL: "https://b.com/feed", Identity: "B", Status: domain.StatusActive},
	}})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, data, "registry file must be byte-identical after failed save")
}

func TestStore_Lock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yml")
	store := NewStore(path, "")

	unlock, err := store.Lock()
	require.NoError(t, err)

	_, err = NewStore(path, "").Lock()
	require.ErrorIs(t, err, ErrLocked)

	unlock()

	unlock2, err := store.Lock()
	require.NoError(t, err)
	unlock2()
}

func TestMarshal(t *testing.T) {
	data, err := Marshal(&domain.Registry{Feeds: []domain.FeedEntry{
		{URL: "https://a.com/feed", Identity: "A", Weight: 1, Status: domain.StatusActive},
	}})
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "feeds:")
	assert.Contains(t, out, "- url: https://a.com/feed")
	assert.Contains(t, out, "identity: A")
	assert.Contains(t, out, "consecutive_failures: 0")
	assert.Contains(t, out, "status: active")
	assert.Contains(t, out, "discovered: false")
	assert.NotContains(t, out, "last_checked", "empty optional fields are omitted")
	assert.NotContains(t, out, "name:")
}

func normalizeTimes(e domain.FeedEntry) domain.FeedEntry {
	if e.LastChecked != nil {
		t := e.LastChecked.UTC()
		e.LastChecked = &t
	}
	if e.LastSuccess != nil {
		t := e.LastSuccess.UTC()
		e.LastSuccess = &t
	}
	return e
}
