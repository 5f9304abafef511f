package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"leverlab/internal/modules/checkin/domain"
	checkinout "leverlab/internal/modules/checkin/port/out"
	"leverlab/internal/platform/database"
	"leverlab/internal/platform/day"
	apperrors "leverlab/internal/platform/errors"
	"leverlab/internal/platform/tx"
)

// SQLMetricStore keeps daily rows in the daily_metrics table, one nullable
// REAL column per metric key.
type SQLMetricStore struct {
	db *database.DB
}

func NewSQLMetricStore(ctx context.Context, db *database.DB) (checkinout.MetricStore, error) {
	store := &SQLMetricStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLMetricStore) ensureSchema(ctx context.Context) error {
	var cols strings.Builder
	for _, key := range domain.AllMetrics() {
		fmt.Fprintf(&cols, "  %s REAL,\n", key)
	}
	ddl := `
CREATE TABLE IF NOT EXISTS daily_metrics (
  user_id TEXT NOT NULL,
  date TEXT NOT NULL,
` + cols.String() + `  updated_at TEXT NOT NULL,
  PRIMARY KEY (user_id, date)
);
`
	if err := s.db.ApplySchema(ctx, []string{ddl}); err != nil {
		return fmt.Errorf("create daily_metrics table: %w", err)
	}
	return nil
}

func (s *SQLMetricStore) Get(ctx context.Context, userID string, date day.Date) (domain.DailyMetricRow, error) {
	query := s.db.Rebind(`SELECT ` + selectColumns() + ` FROM daily_metrics WHERE user_id = ? AND date = ?`)
	row, err := scanRow(tx.From(ctx, s.db.DB).QueryRowContext(ctx, query, userID, date.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyMetricRow{}, fmt.Errorf("daily row %s: %w", date, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.DailyMetricRow{}, fmt.Errorf("load daily row: %w", err)
	}
	return row, nil
}

func (s *SQLMetricStore) Upsert(ctx context.Context, row domain.DailyMetricRow) error {
	keys := domain.AllMetrics()
	cols := make([]string, 0, len(keys)+3)
	updates := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+3)
	cols = append(cols, "user_id", "date")
	args = append(args, row.UserID, row.Date.String())
	for _, key := range keys {
		cols = append(cols, string(key))
		updates = append(updates, fmt.Sprintf("%s=excluded.%s", key, key))
		if v, ok := row.Value(key); ok {
			args = append(args, v)
		} else {
			args = append(args, nil)
		}
	}
	cols = append(cols, "updated_at")
	updates = append(updates, "updated_at=excluded.updated_at")
	args = append(args, time.Now().UTC().Format(time.RFC3339))

	stmt := fmt.Sprintf(`
INSERT INTO daily_metrics (%s)
VALUES (%s)
ON CONFLICT(user_id, date) DO UPDATE SET
  %s`, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "), strings.Join(updates, ",\n  "))
	if _, err := tx.From(ctx, s.db.DB).ExecContext(ctx, s.db.Rebind(stmt), args...); err != nil {
		return fmt.Errorf("upsert daily row: %w", err)
	}
	return nil
}

func (s *SQLMetricStore) Range(ctx context.Context, userID string, from, to day.Date) ([]domain.DailyMetricRow, error) {
	query := s.db.Rebind(`SELECT ` + selectColumns() + ` FROM daily_metrics
WHERE user_id = ? AND date >= ? AND date <= ?
ORDER BY date`)
	rows, err := tx.From(ctx, s.db.DB).QueryContext(ctx, query, userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("query daily rows: %w", err)
	}
	defer rows.Close()

	out := []domain.DailyMetricRow{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily rows: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func selectColumns() string {
	cols := []string{"user_id", "date"}
	for _, key := range domain.AllMetrics() {
		cols = append(cols, string(key))
	}
	return strings.Join(cols, ", ")
}

func scanRow(sc scanner) (domain.DailyMetricRow, error) {
	keys := domain.AllMetrics()
	var userID, rawDate string
	nulls := make([]sql.NullFloat64, len(keys))
	dest := []any{&userID, &rawDate}
	for i := range nulls {
		dest = append(dest, &nulls[i])
	}
	if err := sc.Scan(dest...); err != nil {
		return domain.DailyMetricRow{}, err
	}
	date, err := day.Parse(rawDate)
	if err != nil {
		return domain.DailyMetricRow{}, err
	}
	row := domain.NewRow(userID, date)
	for i, key := range keys {
		if nulls[i].Valid {
			row.Values[key] = nulls[i].Float64
		}
	}
	return row, nil
}
