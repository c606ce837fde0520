package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS forecast_runs (
	id TEXT PRIMARY KEY,
	location TEXT NOT NULL,
	energy_type TEXT NOT NULL,
	days INTEGER NOT NULL,
	total_expected DOUBLE PRECISION NOT NULL,
	created_at BIGINT NOT NULL,
	predictions TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS forecast_runs_created_at ON forecast_runs (created_at);
`

// SQLStore implements Store on database/sql for SQLite and PostgreSQL
type SQLStore struct {
	db       *sql.DB
	postgres bool
}

// OpenSQLite opens (and creates) the SQLite database at path
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, false)
}

// OpenPostgres connects to PostgreSQL with a lib/pq connection string
func OpenPostgres(ctx context.Context, connString string) (*SQLStore, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	return newSQLStore(ctx, db, true)
}

func newSQLStore(ctx context.Context, db *sql.DB, postgres bool) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLStore{db: db, postgres: postgres}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return s, nil
}

// rebind turns ? placeholders into $n for PostgreSQL
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) SaveForecast(ctx context.Context, r Record) error {
	predictions, err := json.Marshal(r.Predictions)
	if err != nil {
		return fmt.Errorf("failed to encode predictions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO forecast_runs (id, location, energy_type, days, total_expected, created_at, predictions)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.Location, r.EnergyType, r.Days, r.TotalExpected, r.CreatedAt.Unix(), string(predictions),
	)
	if err != nil {
		return fmt.Errorf("failed to insert forecast %s: %w", r.ID, err)
	}
	return nil
}

func (s *SQLStore) Recent(ctx context.Context, location string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, location, energy_type, days, total_expected, created_at, predictions FROM forecast_runs`
	args := []any{}
	if location != "" {
		query += ` WHERE location = ?`
		args = append(args, location)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecasts: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var createdAt int64
		var predictions string
		if err := rows.Scan(&r.ID, &r.Location, &r.EnergyType, &r.Days, &r.TotalExpected, &createdAt, &predictions); err != nil {
			return nil, fmt.Errorf("failed to scan forecast: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0).UTC()
		if err := json.Unmarshal([]byte(predictions), &r.Predictions); err != nil {
			return nil, fmt.Errorf("failed to decode predictions of %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLStore) MonthlySolar(ctx context.Context, year int, loc *time.Location) (map[time.Month]float64, error) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(1, 0, 0)

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT created_at, total_expected FROM forecast_runs
		WHERE created_at >= ? AND created_at < ?`),
		start.Unix(), end.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[time.Month]float64)
	for rows.Next() {
		var createdAt int64
		var total float64
		if err := rows.Scan(&createdAt, &total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		totals[time.Unix(createdAt, 0).In(loc).Month()] += total
	}
	return totals, rows.Err()
}

func (s *SQLStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM forecast_runs WHERE created_at < ?`), cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune forecasts: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
