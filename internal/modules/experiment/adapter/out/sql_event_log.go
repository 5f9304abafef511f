package out

import (
	"context"
	"encoding/json"
	"fmt"

	"leverlab/internal/modules/experiment/domain"
	experimentout "leverlab/internal/modules/experiment/port/out"
	"leverlab/internal/platform/database"
	"leverlab/internal/platform/tx"
)

// SQLEventLog appends audit events. Rows are never updated.
type SQLEventLog struct {
	db *database.DB
}

func NewSQLEventLog(ctx context.Context, db *database.DB) (*SQLEventLog, error) {
	ddl := []string{`
CREATE TABLE IF NOT EXISTS experiment_events (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  experiment_id TEXT NOT NULL,
  type TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS ix_experiment_events_experiment ON experiment_events(experiment_id, created_at);`,
	}
	if err := db.ApplySchema(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create experiment_events table: %w", err)
	}
	return &SQLEventLog{db: db}, nil
}

var _ experimentout.EventLog = (*SQLEventLog)(nil)

func (l *SQLEventLog) Append(ctx context.Context, event domain.Event) error {
	payload := event.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}
	stmt := `INSERT INTO experiment_events (id, user_id, experiment_id, type, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = tx.From(ctx, l.db.DB).ExecContext(ctx, l.db.Rebind(stmt),
		event.ID, event.UserID, event.ExperimentID, string(event.Type), string(raw), event.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("append %s event: %w", event.Type, err)
	}
	return nil
}

// Types lists the event types recorded for an experiment in order.
func (l *SQLEventLog) Types(ctx context.Context, userID, experimentID string) ([]domain.EventType, error) {
	query := l.db.Rebind(`SELECT type FROM experiment_events WHERE user_id = ? AND experiment_id = ? ORDER BY created_at, id`)
	rows, err := tx.From(ctx, l.db.DB).QueryContext(ctx, query, userID, experimentID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	var out []domain.EventType
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, domain.EventType(t))
	}
	return out, rows.Err()
}
