// Package store handles SQLite persistence of usage metrics.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/chartcard/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for org usage data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orgs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			plan TEXT NOT NULL,
			total_requests INTEGER NOT NULL,
			error_rate REAL NOT NULL,
			avg_latency_ms REAL NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS usage_points (
			org_id TEXT NOT NULL,
			period TEXT NOT NULL,
			idx INTEGER NOT NULL,
			label TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (org_id, period, idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_usage_points_org ON usage_points(org_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// PutMetrics stores the org summary and replaces every series present in m.
func (s *Store) PutMetrics(ctx context.Context, m model.UsageMetrics) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if err = upsertOrg(ctx, tx, m); err != nil {
		return err
	}
	for _, p := range model.Periods() {
		points, ok := m.Series[p]
		if !ok {
			continue
		}
		if err = replaceSeries(ctx, tx, m.OrgID, p, points); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metrics: %w", err)
	}
	return nil
}

// UpsertOrg stores the org summary fields of m, leaving series untouched.
func (s *Store) UpsertOrg(ctx context.Context, m model.UsageMetrics) error {
	return upsertOrg(ctx, s.db, m)
}

// ReplaceSeries replaces one period's series for orgID. A missing org is created
// with an empty summary.
func (s *Store) ReplaceSeries(ctx context.Context, orgID string, p model.Period, points []model.DataPoint) (err error) {
	if !p.Valid() {
		return fmt.Errorf("invalid period %d", int(p))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO orgs (id, name, plan, total_requests, error_rate, avg_latency_ms, updated_at)
		 VALUES (?, ?, '', 0, 0, 0, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		orgID, orgID, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("failed to ensure org: %w", err)
	}
	if err = replaceSeries(ctx, tx, orgID, p, points); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit series: %w", err)
	}
	return nil
}

// GetUsageMetrics loads the summary and all series for orgID. It returns
// model.ErrUsageNotFound when the org is unknown.
func (s *Store) GetUsageMetrics(ctx context.Context, orgID string) (model.UsageMetrics, error) {
	m := model.UsageMetrics{OrgID: orgID}
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, plan, total_requests, error_rate, avg_latency_ms, updated_at
		 FROM orgs WHERE id = ?`, orgID,
	).Scan(&m.OrgName, &m.Plan, &m.TotalRequests, &m.ErrorRate, &m.AvgLatencyMs, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UsageMetrics{}, fmt.Errorf("org %q: %w", orgID, model.ErrUsageNotFound)
	}
	if err != nil {
		return model.UsageMetrics{}, fmt.Errorf("failed to load org: %w", err)
	}
	if updatedAt != "" {
		parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return model.UsageMetrics{}, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		m.UpdatedAt = parsed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT period, label, value FROM usage_points
		 WHERE org_id = ?
		 ORDER BY period, idx`, orgID)
	if err != nil {
		return model.UsageMetrics{}, fmt.Errorf("failed to load series: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	m.Series = map[model.Period][]model.DataPoint{}
	for rows.Next() {
		var period string
		var pt model.DataPoint
		if err := rows.Scan(&period, &pt.Label, &pt.Value); err != nil {
			return model.UsageMetrics{}, fmt.Errorf("failed to scan point: %w", err)
		}
		p, err := model.ParsePeriod(period)
		if err != nil {
			return model.UsageMetrics{}, err
		}
		m.Series[p] = append(m.Series[p], pt)
	}
	if err := rows.Err(); err != nil {
		return model.UsageMetrics{}, fmt.Errorf("failed to read series: %w", err)
	}
	return m, nil
}

// ListOrgs returns org summaries ordered by id. Series are not loaded.
func (s *Store) ListOrgs(ctx context.Context) ([]model.UsageMetrics, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, plan, total_requests, error_rate, avg_latency_ms
		 FROM orgs ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orgs: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.UsageMetrics
	for rows.Next() {
		var m model.UsageMetrics
		if err := rows.Scan(&m.OrgID, &m.OrgName, &m.Plan, &m.TotalRequests, &m.ErrorRate, &m.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("failed to scan org: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orgs: %w", err)
	}
	return result, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertOrg(ctx context.Context, db execer, m model.UsageMetrics) error {
	if m.OrgID == "" {
		return fmt.Errorf("org id is required")
	}
	updatedAt := m.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	name := m.OrgName
	if name == "" {
		name = m.OrgID
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO orgs (id, name, plan, total_requests, error_rate, avg_latency_ms, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			plan = excluded.plan,
			total_requests = excluded.total_requests,
			error_rate = excluded.error_rate,
			avg_latency_ms = excluded.avg_latency_ms,
			updated_at = excluded.updated_at`,
		m.OrgID, name, m.Plan, m.TotalRequests, m.ErrorRate, m.AvgLatencyMs,
		updatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert org: %w", err)
	}
	return nil
}

func replaceSeries(ctx context.Context, tx *sql.Tx, orgID string, p model.Period, points []model.DataPoint) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM usage_points WHERE org_id = ? AND period = ?`, orgID, p.String()); err != nil {
		return fmt.Errorf("failed to clear series: %w", err)
	}
	if len(points) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO usage_points (org_id, period, idx, label, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, pt := range points {
		if _, err := stmt.ExecContext(ctx, orgID, p.String(), i, pt.Label, pt.Value); err != nil {
			return fmt.Errorf("failed to insert point %d: %w", i, err)
		}
	}
	return nil
}
