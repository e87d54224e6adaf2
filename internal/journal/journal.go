package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/cycle"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-edge/migrations"
)

// ErrInvalidRetention is returned for a non-positive retention.
var ErrInvalidRetention = errors.New("journal: retention must be positive")

// Store writes cycle reports to the cycle_journal table.
type Store struct {
	db        *database.DB
	retention int
}

// Open migrates db and returns a store keeping at most retention rows.
func Open(ctx context.Context, db *database.DB, retention int) (*Store, error) {
	if retention <= 0 {
		return nil, ErrInvalidRetention
	}
	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
		return nil, fmt.Errorf("migrating journal schema: %w", err)
	}
	return &Store{db: db, retention: retention}, nil
}

// Record implements cycle.Sink.
func (s *Store) Record(ctx context.Context, r cycle.Report) error {
	var errText sql.NullString
	if r.Error != "" {
		errText = sql.NullString{String: r.Error, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cycle_journal (
			recorded_at, outcome, run_counter, fail_count,
			cpu, cpu_min, cpu_max, memory, memory_min, memory_max,
			temperature, period_seconds, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.At.UTC().Format(time.RFC3339Nano), string(r.Outcome), int64(r.RunCounter), int64(r.FailCount),
		r.CPU.Current, r.CPU.Min, r.CPU.Max, r.Memory.Current, r.Memory.Min, r.Memory.Max,
		r.Temperature, int64(r.Period/time.Second), errText,
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cycle_journal WHERE id <= (SELECT MAX(id) FROM cycle_journal) - ?`,
		s.retention,
	); err != nil {
		return fmt.Errorf("pruning journal: %w", err)
	}
	return nil
}

// Recent returns up to limit reports, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]cycle.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT recorded_at, outcome, run_counter, fail_count,
			cpu, cpu_min, cpu_max, memory, memory_min, memory_max,
			temperature, period_seconds, error
		FROM cycle_journal ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var out []cycle.Report
	for rows.Next() {
		var (
			r         cycle.Report
			at        string
			outcome   string
			runs      int64
			fails     int64
			periodSec int64
			errText   sql.NullString
		)
		if err := rows.Scan(&at, &outcome, &runs, &fails,
			&r.CPU.Current, &r.CPU.Min, &r.CPU.Max,
			&r.Memory.Current, &r.Memory.Min, &r.Memory.Max,
			&r.Temperature, &periodSec, &errText,
		); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		r.At, _ = time.Parse(time.RFC3339Nano, at) //nolint:errcheck // Format is controlled
		r.Outcome = cycle.Outcome(outcome)
		r.RunCounter = uint64(runs)
		r.FailCount = uint32(fails)
		r.Period = time.Duration(periodSec) * time.Second
		r.Error = errText.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}
	return out, nil
}

// Count returns the number of stored reports.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cycle_journal").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting journal: %w", err)
	}
	return n, nil
}
