// Package storage persists simulation runs in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pthm-cable/drowse/efficiency"
	"github.com/pthm-cable/drowse/energy"
	"github.com/pthm-cable/drowse/storage/migrations"
)

var (
	// ErrNotFound indicates a requested run is missing.
	ErrNotFound = errors.New("run not found")
	// ErrNotConfigured is returned by methods on a nil store.
	ErrNotConfigured = errors.New("storage is not configured")
)

// Run is one stored simulation with its inputs.
type Run struct {
	ID        int64
	Label     string
	CreatedAt time.Time
	Params    energy.Parameters
	Rates     energy.Rates
	Inventory *energy.Inventory
	Result    *efficiency.Result
}

// RunSummary is the listing view of a run.
type RunSummary struct {
	ID         int64
	Label      string
	CreatedAt  time.Time
	AvgTotal   float64
	HelpsTotal float64
	TimeToFull float64
}

// Store persists runs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite run store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRun inserts a run and returns its ID. CreatedAt defaults to now.
func (s *Store) SaveRun(ctx context.Context, run Run) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, ErrNotConfigured
	}
	label := strings.TrimSpace(run.Label)
	if label == "" {
		return 0, fmt.Errorf("run label is required")
	}
	if run.Result == nil {
		return 0, fmt.Errorf("run result is required")
	}
	createdAt := run.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	paramsJSON, err := json.Marshal(run.Params)
	if err != nil {
		return 0, fmt.Errorf("encode params: %w", err)
	}
	ratesJSON, err := json.Marshal(run.Rates)
	if err != nil {
		return 0, fmt.Errorf("encode rates: %w", err)
	}
	var inventoryJSON sql.NullString
	if run.Inventory != nil {
		data, err := json.Marshal(run.Inventory)
		if err != nil {
			return 0, fmt.Errorf("encode inventory: %w", err)
		}
		inventoryJSON = sql.NullString{String: string(data), Valid: true}
	}
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return 0, fmt.Errorf("encode result: %w", err)
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO runs (
		   label,
		   created_at,
		   avg_total,
		   helps_total,
		   time_to_full,
		   params_json,
		   rates_json,
		   inventory_json,
		   result_json
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		label,
		toMillis(createdAt),
		run.Result.AverageEfficiency.Total,
		run.Result.HelpCount.Total(),
		run.Result.TimeToFullInventory,
		string(paramsJSON),
		string(ratesJSON),
		inventoryJSON,
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}
	return id, nil
}

// GetRun returns one run by ID.
func (s *Store) GetRun(ctx context.Context, id int64) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Run{}, ErrNotConfigured
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, label, created_at, params_json, rates_json, inventory_json, result_json
		   FROM runs
		  WHERE id = ?`,
		id,
	)

	var (
		run           Run
		createdAt     int64
		paramsJSON    string
		ratesJSON     string
		inventoryJSON sql.NullString
		resultJSON    string
	)
	err := row.Scan(&run.ID, &run.Label, &createdAt, &paramsJSON, &ratesJSON, &inventoryJSON, &resultJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	run.CreatedAt = fromMillis(createdAt)

	if err := json.Unmarshal([]byte(paramsJSON), &run.Params); err != nil {
		return Run{}, fmt.Errorf("decode params of run %d: %w", id, err)
	}
	if err := json.Unmarshal([]byte(ratesJSON), &run.Rates); err != nil {
		return Run{}, fmt.Errorf("decode rates of run %d: %w", id, err)
	}
	if inventoryJSON.Valid {
		run.Inventory = &energy.Inventory{}
		if err := json.Unmarshal([]byte(inventoryJSON.String), run.Inventory); err != nil {
			return Run{}, fmt.Errorf("decode inventory of run %d: %w", id, err)
		}
	}
	run.Result = &efficiency.Result{}
	if err := json.Unmarshal([]byte(resultJSON), run.Result); err != nil {
		return Run{}, fmt.Errorf("decode result of run %d: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the newest runs first. An empty label lists every run.
func (s *Store) ListRuns(ctx context.Context, label string, limit int) ([]RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	label = strings.TrimSpace(label)

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, label, created_at, avg_total, helps_total, time_to_full
		   FROM runs
		  WHERE ? = '' OR label = ?
		  ORDER BY created_at DESC, id DESC
		  LIMIT ?`,
		label,
		label,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r         RunSummary
			createdAt int64
		)
		if err := rows.Scan(&r.ID, &r.Label, &createdAt, &r.AvgTotal, &r.HelpsTotal, &r.TimeToFull); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = fromMillis(createdAt)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
