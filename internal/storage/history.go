package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docdelta/internal/diff"
	"docdelta/internal/materialize"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one recorded diff
type Run struct {
	ID             string    `json:"id" yaml:"id"`
	WorkDir        string    `json:"workDir" yaml:"workDir"`
	BeforeRev      string    `json:"beforeRev" yaml:"beforeRev"`
	AfterRev       string    `json:"afterRev" yaml:"afterRev"`
	BeforeSnapshot string    `json:"beforeSnapshot" yaml:"beforeSnapshot"`
	AfterSnapshot  string    `json:"afterSnapshot" yaml:"afterSnapshot"`
	Added          int       `json:"added" yaml:"added"`
	Removed        int       `json:"removed" yaml:"removed"`
	Improved       int       `json:"improved" yaml:"improved"`
	Degraded       int       `json:"degraded" yaml:"degraded"`
	Unchanged      int       `json:"unchanged" yaml:"unchanged"`
	NetDelta       int       `json:"netDelta" yaml:"netDelta"`
	CreatedAt      time.Time `json:"createdAt" yaml:"createdAt"`
}

// Materialization is one recorded snapshot production
type Materialization struct {
	ID         int64     `json:"id" yaml:"id"`
	Revision   string    `json:"revision" yaml:"revision"`
	Live       bool      `json:"live" yaml:"live"`
	Source     string    `json:"source" yaml:"source"`
	Commit     string    `json:"commit,omitempty" yaml:"commit,omitempty"`
	Objects    int       `json:"objects" yaml:"objects"`
	DurationMs int64     `json:"durationMs" yaml:"durationMs"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
}

// CacheStats summarizes how fixed revisions were materialized
type CacheStats struct {
	Hits    int     `json:"hits" yaml:"hits"`
	Misses  int     `json:"misses" yaml:"misses"`
	Live    int     `json:"live" yaml:"live"`
	HitRate float64 `json:"hitRate" yaml:"hitRate"`
}

// History provides CRUD operations for the runs and materializations tables
type History struct {
	db  *DB
	now func() time.Time
}

// NewHistory creates a new history repository
func NewHistory(db *DB) *History {
	return &History{db: db, now: time.Now}
}

// RecordMaterialization stores ev. It satisfies materialize.Recorder.
func (h *History) RecordMaterialization(ctx context.Context, ev materialize.Event) error {
	var commit *string
	if ev.Commit != "" {
		commit = &ev.Commit
	}

	_, err := h.db.conn.ExecContext(ctx, `
		INSERT INTO materializations (revision, live, source, commit_hash, objects, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		ev.Revision.String(),
		boolToInt(ev.Revision.IsLive()),
		string(ev.Source),
		commit,
		ev.Objects,
		ev.Duration.Milliseconds(),
		h.now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record materialization: %w", err)
	}
	return nil
}

// SaveRun stores a report and returns the new run ID
func (h *History) SaveRun(ctx context.Context, r *diff.Report) (string, error) {
	reportJSON, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	id := uuid.NewString()
	err = h.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (
				id, work_dir, before_rev, after_rev, before_snapshot, after_snapshot,
				added, removed, improved, degraded, unchanged, net_delta, report_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			id,
			r.WorkDir,
			r.Before.Revision,
			r.After.Revision,
			r.Before.SnapshotID,
			r.After.SnapshotID,
			r.Summary.Added,
			r.Summary.Removed,
			r.Summary.Improved,
			r.Summary.Degraded,
			r.Summary.Unchanged,
			r.Summary.NetDelta,
			string(reportJSON),
			h.now().UTC().Format(timeLayout),
		)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 means all.
func (h *History) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, work_dir, before_rev, after_rev, before_snapshot, after_snapshot,
			added, removed, improved, degraded, unchanged, net_delta, created_at
		FROM runs
		ORDER BY created_at DESC, rowid DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(
			&run.ID, &run.WorkDir, &run.BeforeRev, &run.AfterRev,
			&run.BeforeSnapshot, &run.AfterSnapshot,
			&run.Added, &run.Removed, &run.Improved, &run.Degraded, &run.Unchanged,
			&run.NetDelta, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetReport returns the stored report of a run, or nil if there is no
// run with that ID.
func (h *History) GetReport(ctx context.Context, id string) (*diff.Report, error) {
	var reportJSON string
	err := h.db.conn.QueryRowContext(ctx, "SELECT report_json FROM runs WHERE id = ?", id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var r diff.Report
	if err := json.Unmarshal([]byte(reportJSON), &r); err != nil {
		return nil, fmt.Errorf("failed to decode report of run %s: %w", id, err)
	}
	return &r, nil
}

// ListMaterializations returns recent materializations, newest first.
// limit <= 0 means all.
func (h *History) ListMaterializations(ctx context.Context, limit int) ([]Materialization, error) {
	query := `
		SELECT id, revision, live, source, commit_hash, objects, duration_ms, created_at
		FROM materializations
		ORDER BY id DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list materializations: %w", err)
	}
	defer rows.Close()

	var out []Materialization
	for rows.Next() {
		var m Materialization
		var live int
		var commit sql.NullString
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Revision, &live, &m.Source, &commit, &m.Objects, &m.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan materialization: %w", err)
		}
		m.Live = live == 1
		m.Commit = commit.String
		m.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

// CacheStats counts cache hits and misses over all recorded materializations
func (h *History) CacheStats(ctx context.Context) (CacheStats, error) {
	var s CacheStats
	rows, err := h.db.conn.QueryContext(ctx, "SELECT source, COUNT(*) FROM materializations GROUP BY source")
	if err != nil {
		return s, fmt.Errorf("failed to count materializations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var n int
		if err := rows.Scan(&source, &n); err != nil {
			return s, err
		}
		switch materialize.Source(source) {
		case materialize.SourceCache:
			s.Hits = n
		case materialize.SourceClone:
			s.Misses = n
		case materialize.SourceLive:
			s.Live = n
		}
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s, nil
}

// Prune deletes runs and materializations older than cutoff and returns
// how many rows were removed
func (h *History) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ts := cutoff.UTC().Format(timeLayout)
	var removed int64

	err := h.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"runs", "materializations"} {
			res, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE created_at < ?", ts)
			if err != nil {
				return err
			}
			n, _ := res.RowsAffected()
			removed += n
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return removed, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
