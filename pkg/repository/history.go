package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// ErrNotFound is returned when a requested run doesn't exist
var ErrNotFound = errors.New("not found")

// HistoryRepository handles the maintenance journal
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

type runRow struct {
	ID           string    `db:"id"`
	StartedAt    time.Time `db:"started_at"`
	FinishedAt   time.Time `db:"finished_at"`
	AutoAdd      bool      `db:"auto_add"`
	DryRun       bool      `db:"dry_run"`
	Probed       int       `db:"probed"`
	Alive        int       `db:"alive"`
	Dead         int       `db:"dead"`
	Repaired     int       `db:"repaired"`
	RepairFailed int       `db:"repair_failed"`
	Evicted      int       `db:"evicted"`
	Discovered   int       `db:"discovered"`
	RegistrySize int       `db:"registry_size"`
	Persisted    bool      `db:"persisted"`
	Error        string    `db:"error"`
}

type probeRow struct {
	ID           int64     `db:"id"`
	RunID        string    `db:"run_id"`
	URL          string    `db:"url"`
	Alive        bool      `db:"alive"`
	ErrorKind    string    `db:"error_kind"`
	Reason       string    `db:"reason"`
	Title        string    `db:"title"`
	ArticleCount int       `db:"article_count"`
	DurationMs   int64     `db:"duration_ms"`
	CheckedAt    time.Time `db:"checked_at"`
}

type eventRow struct {
	ID        int64     `db:"id"`
	RunID     string    `db:"run_id"`
	Type      string    `db:"type"`
	URL       string    `db:"url"`
	Identity  string    `db:"identity"`
	Detail    string    `db:"detail"`
	CreatedAt time.Time `db:"created_at"`
}

// EventFilter narrows ListEvents results, empty fields match everything
type EventFilter struct {
	Type  domain.EventType
	URL   string
	Limit int
}

// Ping verifies the history database is reachable
func (r *HistoryRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping history db: %w", err)
	}
	return nil
}

// SaveRun records a finished cycle with its probes and events. Saving the same run again replaces it.
func (r *HistoryRepository) SaveRun(ctx context.Context, report domain.CycleReport) error {
	if report.RunID == "" {
		return fmt.Errorf("save run: empty run id")
	}

	return withRetry(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		// replace semantics, children are removed explicitly as foreign keys pragma is per connection
		for _, q := range []string{"DELETE FROM probes WHERE run_id = ?", "DELETE FROM events WHERE run_id = ?",
			"DELETE FROM runs WHERE id = ?"} {
			if _, err := tx.ExecContext(ctx, q, report.RunID); err != nil {
				return fmt.Errorf("clear run %s: %w", report.RunID, err)
			}
		}

		query := `
			INSERT INTO runs (id, started_at, finished_at, auto_add, dry_run, probed, alive, dead, repaired,
			                  repair_failed, evicted, discovered, registry_size, persisted, error)
			VALUES (:id, :started_at, :finished_at, :auto_add, :dry_run, :probed, :alive, :dead, :repaired,
			        :repair_failed, :evicted, :discovered, :registry_size, :persisted, :error)
		`
		if _, err := tx.NamedExecContext(ctx, query, toRunRow(report)); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, p := range report.Probes {
			row := toProbeRow(report.RunID, p)
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO probes (run_id, url, alive, error_kind, reason, title, article_count, duration_ms, checked_at)
				VALUES (:run_id, :url, :alive, :error_kind, :reason, :title, :article_count, :duration_ms, :checked_at)`,
				row); err != nil {
				return fmt.Errorf("insert probe %s: %w", p.URL, err)
			}
		}

		for _, e := range report.Events {
			created := e.CreatedAt
			if created.IsZero() {
				created = report.FinishedAt
			}
			row := eventRow{RunID: report.RunID, Type: string(e.Type), URL: e.URL, Identity: e.Identity,
				Detail: e.Detail, CreatedAt: created.UTC()}
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO events (run_id, type, url, identity, detail, created_at)
				VALUES (:run_id, :type, :url, :identity, :detail, :created_at)`, row); err != nil {
				return fmt.Errorf("insert event %s: %w", e.URL, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run: %w", err)
		}
		return nil
	})
}

// ListRuns returns most recent runs first, without probes and events
func (r *HistoryRepository) ListRuns(ctx context.Context, limit int) ([]domain.CycleReport, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT * FROM runs ORDER BY started_at DESC LIMIT ?", limit); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	res := make([]domain.CycleReport, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toDomain())
	}
	return res, nil
}

// GetRun returns a run with its probes and events
func (r *HistoryRepository) GetRun(ctx context.Context, runID string) (domain.CycleReport, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM runs WHERE id = ?", runID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CycleReport{}, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return domain.CycleReport{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	report := row.toDomain()

	var probes []probeRow
	if err := r.db.SelectContext(ctx, &probes, "SELECT * FROM probes WHERE run_id = ? ORDER BY id", runID); err != nil {
		return domain.CycleReport{}, fmt.Errorf("get probes of run %s: %w", runID, err)
	}
	for _, p := range probes {
		report.Probes = append(report.Probes, p.toDomain())
	}

	var events []eventRow
	if err := r.db.SelectContext(ctx, &events, "SELECT * FROM events WHERE run_id = ? ORDER BY id", runID); err != nil {
		return domain.CycleReport{}, fmt.Errorf("get events of run %s: %w", runID, err)
	}
	for _, e := range events {
		report.Events = append(report.Events, e.toDomain())
	}
	return report, nil
}

// ListEvents returns registry events across runs, newest first
func (r *HistoryRepository) ListEvents(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	query := "SELECT * FROM events WHERE 1=1"
	args := []any{}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, string(filter.Type))
	}
	if filter.URL != "" {
		query += " AND url = ?"
		args = append(args, filter.URL)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, filter.Limit)

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	res := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toDomain())
	}
	return res, nil
}

// FeedProbes returns probe history of a single feed url, newest first
func (r *HistoryRepository) FeedProbes(ctx context.Context, feedURL string, limit int) ([]domain.ProbeResult, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []probeRow
	err := r.db.SelectContext(ctx, &rows, "SELECT * FROM probes WHERE url = ? ORDER BY checked_at DESC, id DESC LIMIT ?",
		feedURL, limit)
	if err != nil {
		return nil, fmt.Errorf("get probes of %s: %w", feedURL, err)
	}
	res := make([]domain.ProbeResult, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toDomain())
	}
	return res, nil
}

// Cleanup removes runs started before now - retention, with their probes and events.
// Returns number of removed runs.
func (r *HistoryRepository) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC()
	var removed int64
	err := withRetry(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, q := range []string{
			"DELETE FROM probes WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)",
			"DELETE FROM events WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)",
		} {
			if _, err := tx.ExecContext(ctx, q, cutoff); err != nil {
				return fmt.Errorf("cleanup run details: %w", err)
			}
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff)
		if err != nil {
			return fmt.Errorf("cleanup runs: %w", err)
		}
		if removed, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("get affected rows: %w", err)
		}
		return tx.Commit()
	})
	return removed, err
}

func toRunRow(r domain.CycleReport) runRow {
	return runRow{
		ID:           r.RunID,
		StartedAt:    r.StartedAt.UTC(),
		FinishedAt:   r.FinishedAt.UTC(),
		AutoAdd:      r.AutoAdd,
		DryRun:       r.DryRun,
		Probed:       r.Probed,
		Alive:        r.Alive,
		Dead:         r.Dead,
		Repaired:     r.Repaired,
		RepairFailed: r.RepairFailed,
		Evicted:      r.Evicted,
		Discovered:   r.Discovered,
		RegistrySize: r.RegistrySize,
		Persisted:    r.Persisted,
		Error:        r.Error,
	}
}

func (r runRow) toDomain() domain.CycleReport {
	return domain.CycleReport{
		RunID:        r.ID,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		AutoAdd:      r.AutoAdd,
		DryRun:       r.DryRun,
		Probed:       r.Probed,
		Alive:        r.Alive,
		Dead:         r.Dead,
		Repaired:     r.Repaired,
		RepairFailed: r.RepairFailed,
		Evicted:      r.Evicted,
		Discovered:   r.Discovered,
		RegistrySize: r.RegistrySize,
		Persisted:    r.Persisted,
		Error:        r.Error,
	}
}

func toProbeRow(runID string, p domain.ProbeResult) probeRow {
	return probeRow{
		RunID:        runID,
		URL:          p.URL,
		Alive:        p.Alive,
		ErrorKind:    string(p.Error),
		Reason:       p.Reason,
		Title:        p.Title,
		ArticleCount: p.ArticleCount,
		DurationMs:   p.Duration.Milliseconds(),
		CheckedAt:    p.CheckedAt.UTC(),
	}
}

func (p probeRow) toDomain() domain.ProbeResult {
	return domain.ProbeResult{
		URL:          p.URL,
		Alive:        p.Alive,
		ArticleCount: p.ArticleCount,
		Title:        p.Title,
		Error:        domain.ProbeError(p.ErrorKind),
		Reason:       p.Reason,
		Duration:     time.Duration(p.DurationMs) * time.Millisecond,
		CheckedAt:    p.CheckedAt,
	}
}

func (e eventRow) toDomain() domain.Event {
	return domain.Event{
		RunID:     e.RunID,
		Type:      domain.EventType(e.Type),
		URL:       e.URL,
		Identity:  e.Identity,
		Detail:    e.Detail,
		CreatedAt: e.CreatedAt,
	}
}
