package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/registry"
	"github.com/umputun/feedkeeper/pkg/repository"
)

const testRSS = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Live Feed</title>
<item><title>first</title><link>http://example.com/1</link></item>
<item><title>second</title><link>http://example.com/2</link></item>
</channel></rss>`

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: "non-existent-config.yml"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "invalid-config.yml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("invalid: yaml: content: ["), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: tmpFile})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load config")
}

func TestRun_Once(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rss" {
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(testRSS))
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	dir := t.TempDir()
	regPath := filepath.Join(dir, "feeds.yml")
	regContent := fmt.Sprintf(`feeds:
  - url: %[1]s/rss
    identity: Live Source
    consecutive_failures: 2
  - url: %[1]s/gone
    identity: Gone Source
    consecutive_failures: 0
`, ts.URL)
	require.NoError(t, os.WriteFile(regPath, []byte(regContent), 0o600))

	dbPath := filepath.Join(dir, "history.db")
	cfgPath := filepath.Join(dir, "config.yml")
	cfgContent := fmt.Sprintf(`
registry:
  path: /not/used/feeds.yml
database:
  dsn: %s
  max_open_conns: 1
maintenance:
  keywords: [test]
probe:
  timeout: 2s
`, dbPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgContent), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	t.Run("dry run keeps registry", func(t *testing.T) {
		err := run(ctx, Opts{Config: cfgPath, Registry: regPath, Once: true, SkipSearch: true, DryRun: true})
		require.NoError(t, err)
		data, err := os.ReadFile(regPath) //nolint:gosec // test file
		require.NoError(t, err)
		assert.Equal(t, regContent, string(data))
	})

	t.Run("cycle updates registry", func(t *testing.T) {
		err := run(ctx, Opts{Config: cfgPath, Registry: regPath, Once: true, SkipSearch: true})
		require.NoError(t, err)

		reg, err := registry.NewStore(regPath, "").Load(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, reg.Len())

		live := reg.Find(ts.URL + "/rss")
		require.NotNil(t, live)
		assert.Equal(t, 0, live.ConsecutiveFailures)
		assert.Equal(t, domain.StatusActive, live.Status)
		require.NotNil(t, live.LastSuccess)

		gone := reg.Find(ts.URL + "/gone")
		require.NotNil(t, gone)
		assert.Equal(t, 1, gone.ConsecutiveFailures)
		assert.Equal(t, domain.StatusUnverified, gone.Status)
		assert.Nil(t, gone.LastSuccess)
	})

	t.Run("history recorded", func(t *testing.T) {
		repos, err := repository.NewRepositories(ctx, repository.Config{DSN: dbPath, MaxOpenConns: 1})
		require.NoError(t, err)
		defer repos.Close()

		runs, err := repos.History.ListRuns(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.True(t, runs[0].Persisted)
		assert.False(t, runs[1].Persisted)
		assert.True(t, runs[1].DryRun)

		probes, err := repos.History.FeedProbes(ctx, ts.URL+"/rss", 10)
		require.NoError(t, err)
		require.Len(t, probes, 2)
		assert.True(t, probes[0].Alive)
		assert.Equal(t, 2, probes[0].ArticleCount)
	})
}

func TestRun_ServerStartStop(t *testing.T) {
	regPath := filepath.Join(t.TempDir(), "feeds.yml")
	data, err := os.ReadFile("testdata/feeds.yml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(regPath, data, 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- run(ctx, Opts{Config: "testdata/test_config.yml", Registry: regPath, SkipSearch: true})
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://127.0.0.1:18765/ping")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond, "server didn't start")
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", string(body))

	resp, err = http.Get("http://127.0.0.1:18765/api/v1/status")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"registry_size":2`)
	assert.Contains(t, string(body), `"pending_repair":0`)

	resp, err = http.Get("http://127.0.0.1:18765/opml")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "https://go.dev/blog/feed.atom")

	// history endpoints are disabled without database
	resp, err = http.Get("http://127.0.0.1:18765/api/v1/runs")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	cancel()
	select {
	case err := <-serverErr:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server shutdown timeout")
	}
}

func TestPrintReport(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	report := domain.CycleReport{
		RunID: "run-1", StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond),
		Probed: 3, Alive: 2, Dead: 1, Evicted: 1, RegistrySize: 2, Persisted: true,
		Events: []domain.Event{{Type: domain.EventEvicted, URL: "https://a.com/rss", Identity: "Source A", Detail: "no replacement"}},
	}

	var buf bytes.Buffer
	printReport(&buf, report)
	out := buf.String()
	assert.Contains(t, out, "run run-1 finished in 1.5s, saved")
	assert.Contains(t, out, "probed 3, alive 2, dead 1")
	assert.Contains(t, out, "evicted 1, discovered 0, registry size 2")
	assert.Contains(t, out, "evicted       Source A (https://a.com/rss) no replacement")

	buf.Reset()
	report.Error = "registry is locked by another cycle"
	printReport(&buf, report)
	assert.Contains(t, buf.String(), "failed: registry is locked by another cycle")

	buf.Reset()
	report.Error, report.DryRun = "", true
	printReport(&buf, report)
	assert.Contains(t, buf.String(), "dry run, not saved")
}

func TestSetupLog(t *testing.T) {
	SetupLog(false)
	SetupLog(true, "secret-key")
	SetupLog(false, "secret-key")

	t.Run("non-debug keeps info, warn and error", func(t *testing.T) {
		defer SetupLog(false)
		var out, errOut bytes.Buffer
		setupLog(&out, &errOut, false, "secret-key")

		log.Printf("[DEBUG] probing details")
		log.Printf("[INFO] cycle finished")
		log.Printf("[WARN] search is not configured")
		log.Printf("[ERROR] save failed with key secret-key")

		assert.NotContains(t, out.String(), "probing details")
		assert.Contains(t, out.String(), "cycle finished")
		assert.Contains(t, out.String(), "search is not configured")
		assert.Contains(t, out.String(), "save failed")
		assert.NotContains(t, out.String(), "secret-key")
		assert.Contains(t, errOut.String(), "save failed")
		assert.NotContains(t, errOut.String(), "cycle finished")
	})

	t.Run("debug adds debug messages", func(t *testing.T) {
		defer SetupLog(false)
		var out, errOut bytes.Buffer
		setupLog(&out, &errOut, true)
		log.Printf("[DEBUG] probing details")
		assert.Contains(t, out.String(), "probing details")
	})
}
