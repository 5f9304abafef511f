package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leverlab/internal/modules/experiment/domain"
	experimentout "leverlab/internal/modules/experiment/port/out"
	"leverlab/internal/platform/database"
	apperrors "leverlab/internal/platform/errors"
	"leverlab/internal/platform/tx"
)

type SQLReviewStore struct {
	db *database.DB
}

func NewSQLReviewStore(ctx context.Context, db *database.DB) (*SQLReviewStore, error) {
	store := &SQLReviewStore{db: db}
	ddl := []string{`
CREATE TABLE IF NOT EXISTS experiment_reviews (
  experiment_id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  rating TEXT NOT NULL DEFAULT '',
  alignment TEXT NOT NULL DEFAULT '',
  confidence_score REAL NOT NULL DEFAULT 0,
  confidence_label TEXT NOT NULL DEFAULT '',
  snapshot TEXT NOT NULL,
  conclusion TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);`}
	if err := db.ApplySchema(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create experiment_reviews table: %w", err)
	}
	return store, nil
}

var _ experimentout.ReviewStore = (*SQLReviewStore)(nil)

// reviewSnapshot holds the list-shaped parts of a review in one JSON column.
type reviewSnapshot struct {
	Metrics    []domain.MetricStats `json:"metrics"`
	Sample     domain.Sample        `json:"sample"`
	Windows    domain.Windows       `json:"windows"`
	WhatWorked []string             `json:"what_worked"`
	TryNext    []string             `json:"try_next"`
}

func (s *SQLReviewStore) InsertOnce(ctx context.Context, review domain.Review) (domain.Review, error) {
	snapshot, err := json.Marshal(reviewSnapshot{
		Metrics:    review.Metrics,
		Sample:     review.Sample,
		Windows:    review.Windows,
		WhatWorked: review.WhatWorked,
		TryNext:    review.TryNext,
	})
	if err != nil {
		return domain.Review{}, fmt.Errorf("encode review: %w", err)
	}
	stmt := `INSERT INTO experiment_reviews
  (experiment_id, user_id, rating, alignment, confidence_score, confidence_label, snapshot, conclusion, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(experiment_id) DO NOTHING`
	_, err = tx.From(ctx, s.db.DB).ExecContext(ctx, s.db.Rebind(stmt),
		review.ExperimentID, review.UserID, string(review.Rating), string(review.Alignment),
		review.ConfidenceScore, string(review.ConfidenceLabel), string(snapshot), review.Conclusion,
		review.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return domain.Review{}, fmt.Errorf("insert review: %w", err)
	}
	return s.Get(ctx, review.UserID, review.ExperimentID)
}

func (s *SQLReviewStore) Get(ctx context.Context, userID, experimentID string) (domain.Review, error) {
	query := s.db.Rebind(`SELECT experiment_id, user_id, rating, alignment, confidence_score, confidence_label, snapshot, conclusion, created_at
FROM experiment_reviews WHERE experiment_id = ? AND user_id = ?`)
	var (
		r                        domain.Review
		rating, alignment, label string
		rawSnapshot, rawCreated  string
	)
	err := tx.From(ctx, s.db.DB).QueryRowContext(ctx, query, experimentID, userID).Scan(
		&r.ExperimentID, &r.UserID, &rating, &alignment, &r.ConfidenceScore, &label, &rawSnapshot, &r.Conclusion, &rawCreated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Review{}, fmt.Errorf("review for %s: %w", experimentID, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Review{}, fmt.Errorf("load review: %w", err)
	}
	var snap reviewSnapshot
	if err := json.Unmarshal([]byte(rawSnapshot), &snap); err != nil {
		return domain.Review{}, fmt.Errorf("decode review: %w", err)
	}
	r.Rating = domain.Rating(rating)
	r.Alignment = domain.Alignment(alignment)
	r.ConfidenceLabel = domain.ConfidenceLabel(label)
	r.Metrics = snap.Metrics
	r.Sample = snap.Sample
	r.Windows = snap.Windows
	r.WhatWorked = snap.WhatWorked
	r.TryNext = snap.TryNext
	if r.CreatedAt, err = time.Parse(timeLayout, rawCreated); err != nil {
		return domain.Review{}, err
	}
	return r, nil
}
