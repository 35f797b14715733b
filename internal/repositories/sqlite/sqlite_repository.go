// Package sqlite stores run history in a local SQLite file through the pure
// Go modernc driver. It backs the CLI and single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS report_runs (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    source_name TEXT NOT NULL DEFAULT '',
    row_count INTEGER NOT NULL DEFAULT 0,
    summary TEXT,
    requested_by TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_report_runs_kind ON report_runs(kind);
CREATE INDEX IF NOT EXISTS idx_report_runs_created_at ON report_runs(created_at);
`

type Repository struct {
	db   *sql.DB
	runs *ReportRunSQLite
}

// NewRepository opens (or creates) the database at path. ":memory:" keeps
// the database in memory.
func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serialises writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return &Repository{db: db, runs: &ReportRunSQLite{db: db}}, nil
}

func (r *Repository) ReportRun() repositories.ReportRunRepository {
	return r.runs
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type ReportRunSQLite struct {
	db *sql.DB
}

func (s *ReportRunSQLite) Create(ctx context.Context, run *models.ReportRun) error {
	var summary interface{}
	if len(run.Summary) > 0 {
		summary = string(run.Summary)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO report_runs (id, kind, source_name, row_count, summary, requested_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.SourceName, run.RowCount, summary, run.RequestedBy, run.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to create report run: %w", err)
	}
	return nil
}

const selectRun = `SELECT id, kind, source_name, row_count, summary, requested_by, created_at FROM report_runs`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.ReportRun, error) {
	var (
		run       models.ReportRun
		kind      string
		summary   sql.NullString
		createdAt int64
	)
	if err := row.Scan(&run.ID, &kind, &run.SourceName, &run.RowCount, &summary, &run.RequestedBy, &createdAt); err != nil {
		return nil, err
	}
	run.Kind = models.ReportKind(kind)
	if summary.Valid {
		run.Summary = []byte(summary.String)
	}
	run.CreatedAt = time.Unix(0, createdAt).UTC()
	return &run, nil
}

func (s *ReportRunSQLite) GetByID(ctx context.Context, id string) (*models.ReportRun, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, selectRun+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report run: %w", err)
	}
	return run, nil
}

func (s *ReportRunSQLite) List(ctx context.Context, filters repositories.ReportRunFilters) ([]*models.ReportRun, int64, error) {
	filters = filters.Normalize()

	var (
		where []string
		args  []interface{}
	)
	if filters.Kind != nil {
		where = append(where, "kind = ?")
		args = append(args, string(*filters.Kind))
	}
	if filters.RequestedBy != nil {
		where = append(where, "requested_by = ?")
		args = append(args, *filters.RequestedBy)
	}
	if filters.DateFrom != nil {
		where = append(where, "created_at >= ?")
		args = append(args, filters.DateFrom.UnixNano())
	}
	if filters.DateTo != nil {
		where = append(where, "created_at <= ?")
		args = append(args, filters.DateTo.UnixNano())
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM report_runs"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count report runs: %w", err)
	}

	query := selectRun + clause + " ORDER BY created_at " + filters.SortOrder + ", id LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(args, filters.Limit, filters.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list report runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*models.ReportRun, 0, filters.Limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan report run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}
