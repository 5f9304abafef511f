package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	checkindomain "leverlab/internal/modules/checkin/domain"
	"leverlab/internal/modules/experiment/domain"
	experimentout "leverlab/internal/modules/experiment/port/out"
	"leverlab/internal/platform/database"
	"leverlab/internal/platform/day"
	apperrors "leverlab/internal/platform/errors"
	"leverlab/internal/platform/tx"
)

const timeLayout = time.RFC3339Nano

// SQLExperimentStore keeps experiments in one table. The partial unique
// index is the final word on "one open experiment per user".
type SQLExperimentStore struct {
	db *database.DB
}

func NewSQLExperimentStore(ctx context.Context, db *database.DB) (*SQLExperimentStore, error) {
	store := &SQLExperimentStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

var _ experimentout.ExperimentStore = (*SQLExperimentStore)(nil)

func (s *SQLExperimentStore) ensureSchema(ctx context.Context) error {
	ddl := []string{`
CREATE TABLE IF NOT EXISTS experiments (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  hypothesis TEXT NOT NULL DEFAULT '',
  lever_type TEXT NOT NULL,
  lever_ref TEXT NOT NULL,
  target_metric TEXT NOT NULL,
  start_date TEXT NOT NULL,
  end_date TEXT,
  baseline_days INTEGER NOT NULL,
  recommended_days INTEGER NOT NULL,
  effort TEXT NOT NULL,
  impact TEXT NOT NULL,
  stated_confidence TEXT NOT NULL,
  status TEXT NOT NULL,
  outcome TEXT NOT NULL,
  version INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_experiments_one_active ON experiments(user_id) WHERE status = 'active' AND end_date IS NULL;`,
		`CREATE INDEX IF NOT EXISTS ix_experiments_user_start ON experiments(user_id, start_date);`,
	}
	if err := s.db.ApplySchema(ctx, ddl); err != nil {
		return fmt.Errorf("create experiments table: %w", err)
	}
	return nil
}

const experimentColumns = `id, user_id, title, hypothesis, lever_type, lever_ref, target_metric, start_date, end_date,
  baseline_days, recommended_days, effort, impact, stated_confidence, status, outcome, version, created_at, updated_at`

func (s *SQLExperimentStore) Insert(ctx context.Context, e domain.Experiment) error {
	outcome, err := json.Marshal(e.Outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	stmt := `INSERT INTO experiments (` + experimentColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.From(ctx, s.db.DB).ExecContext(ctx, s.db.Rebind(stmt),
		e.ID, e.UserID, e.Title, e.Hypothesis, string(e.LeverType), e.LeverRef, string(e.TargetMetric),
		e.StartDate.String(), nullableDate(e.EndDate), e.BaselineDays, e.RecommendedDays,
		string(e.Effort), string(e.Impact), string(e.StatedConfidence), string(e.Status), string(outcome), e.Version,
		e.CreatedAt.UTC().Format(timeLayout), e.UpdatedAt.UTC().Format(timeLayout),
	)
	if database.IsUniqueViolation(err) {
		return &apperrors.ConflictError{Precondition: apperrors.PreconditionActiveExists, Status: string(e.Status)}
	}
	if err != nil {
		return fmt.Errorf("insert experiment: %w", err)
	}
	return nil
}

func (s *SQLExperimentStore) Get(ctx context.Context, userID, id string) (domain.Experiment, error) {
	query := s.db.Rebind(`SELECT ` + experimentColumns + ` FROM experiments WHERE id = ? AND user_id = ?`)
	e, err := scanExperiment(tx.From(ctx, s.db.DB).QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Experiment{}, fmt.Errorf("experiment %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Experiment{}, fmt.Errorf("load experiment: %w", err)
	}
	return e, nil
}

func (s *SQLExperimentStore) FindActive(ctx context.Context, userID string) (domain.Experiment, error) {
	query := s.db.Rebind(`SELECT ` + experimentColumns + ` FROM experiments
WHERE user_id = ? AND status = ? AND end_date IS NULL
ORDER BY start_date DESC LIMIT 1`)
	e, err := scanExperiment(tx.From(ctx, s.db.DB).QueryRowContext(ctx, query, userID, string(domain.StatusActive)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Experiment{}, apperrors.ErrNoActiveExperiment
	}
	if err != nil {
		return domain.Experiment{}, fmt.Errorf("load active experiment: %w", err)
	}
	return e, nil
}

func (s *SQLExperimentStore) Swap(ctx context.Context, prev, next domain.Experiment) (bool, error) {
	outcome, err := json.Marshal(next.Outcome)
	if err != nil {
		return false, fmt.Errorf("encode outcome: %w", err)
	}
	stmt := `UPDATE experiments
SET status = ?, end_date = ?, outcome = ?, updated_at = ?, version = version + 1
WHERE id = ? AND user_id = ? AND version = ? AND status = ?`
	args := []any{
		string(next.Status), nullableDate(next.EndDate), string(outcome), next.UpdatedAt.UTC().Format(timeLayout),
		prev.ID, prev.UserID, prev.Version, string(prev.Status),
	}
	if prev.EndDate.IsZero() {
		stmt += ` AND end_date IS NULL`
	} else {
		stmt += ` AND end_date = ?`
		args = append(args, prev.EndDate.String())
	}

	res, err := tx.From(ctx, s.db.DB).ExecContext(ctx, s.db.Rebind(stmt), args...)
	if database.IsUniqueViolation(err) {
		return false, &apperrors.ConflictError{Precondition: apperrors.PreconditionAnotherActive, Status: string(prev.Status)}
	}
	if err != nil {
		return false, fmt.Errorf("update experiment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update experiment: %w", err)
	}
	return n == 1, nil
}

func (s *SQLExperimentStore) List(ctx context.Context, userID string, statuses []domain.Status, limit, offset int) ([]domain.Experiment, error) {
	if len(statuses) == 0 {
		return []domain.Experiment{}, nil
	}
	args := []any{userID}
	for _, st := range statuses {
		args = append(args, string(st))
	}
	args = append(args, limit, offset)
	query := `SELECT ` + experimentColumns + ` FROM experiments
WHERE user_id = ? AND status IN (` + placeholders(len(statuses)) + `)
ORDER BY start_date DESC, created_at DESC
LIMIT ? OFFSET ?`
	return s.query(ctx, query, args...)
}

func (s *SQLExperimentStore) ListStartedSince(ctx context.Context, userID string, since day.Date) ([]domain.Experiment, error) {
	query := `SELECT ` + experimentColumns + ` FROM experiments
WHERE user_id = ? AND start_date >= ?
ORDER BY start_date`
	return s.query(ctx, query, userID, since.String())
}

func (s *SQLExperimentStore) query(ctx context.Context, query string, args ...any) ([]domain.Experiment, error) {
	rows, err := tx.From(ctx, s.db.DB).QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query experiments: %w", err)
	}
	defer rows.Close()

	out := []domain.Experiment{}
	for rows.Next() {
		e, err := scanExperiment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan experiment: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate experiments: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExperiment(sc scanner) (domain.Experiment, error) {
	var (
		e                                         domain.Experiment
		leverType, target, effort, impact, stated string
		status, rawStart, rawOutcome              string
		rawCreated, rawUpdated                    string
		rawEnd                                    sql.NullString
	)
	err := sc.Scan(
		&e.ID, &e.UserID, &e.Title, &e.Hypothesis, &leverType, &e.LeverRef, &target, &rawStart, &rawEnd,
		&e.BaselineDays, &e.RecommendedDays, &effort, &impact, &stated, &status, &rawOutcome, &e.Version, &rawCreated, &rawUpdated,
	)
	if err != nil {
		return domain.Experiment{}, err
	}
	e.LeverType = domain.LeverType(leverType)
	e.TargetMetric = checkindomain.MetricKey(target)
	e.Effort = domain.Level(effort)
	e.Impact = domain.Level(impact)
	e.StatedConfidence = domain.StatedConfidence(stated)
	e.Status = domain.Status(status)
	if !e.Status.Valid() {
		return domain.Experiment{}, fmt.Errorf("experiment %s has unknown status %q", e.ID, status)
	}
	if e.StartDate, err = day.Parse(rawStart); err != nil {
		return domain.Experiment{}, err
	}
	if rawEnd.Valid && rawEnd.String != "" {
		if e.EndDate, err = day.Parse(rawEnd.String); err != nil {
			return domain.Experiment{}, err
		}
	}
	if rawOutcome != "" {
		if err := json.Unmarshal([]byte(rawOutcome), &e.Outcome); err != nil {
			return domain.Experiment{}, fmt.Errorf("decode outcome: %w", err)
		}
	}
	if e.CreatedAt, err = time.Parse(timeLayout, rawCreated); err != nil {
		return domain.Experiment{}, err
	}
	if e.UpdatedAt, err = time.Parse(timeLayout, rawUpdated); err != nil {
		return domain.Experiment{}, err
	}
	return e, nil
}

func nullableDate(d day.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
