package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"leverlab/internal/modules/focus/domain"
	focusout "leverlab/internal/modules/focus/port/out"
)

// DefaultSnapshotTTL keeps a ranking for the rest of a working day.
const DefaultSnapshotTTL = 6 * time.Hour

// BadgerSnapshotCache stores insights as JSON with a per-entry TTL.
type BadgerSnapshotCache struct {
	db  *badger.DB
	ttl time.Duration
}

var _ focusout.SnapshotCache = (*BadgerSnapshotCache)(nil)

func NewBadgerSnapshotCache(db *badger.DB, ttl time.Duration) *BadgerSnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &BadgerSnapshotCache{db: db, ttl: ttl}
}

func (c *BadgerSnapshotCache) Get(_ context.Context, key string) (domain.Insight, bool, error) {
	var insight domain.Insight
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &insight)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Insight{}, false, nil
	}
	if err != nil {
		return domain.Insight{}, false, fmt.Errorf("read snapshot %s: %w", key, err)
	}
	return insight, true, nil
}

func (c *BadgerSnapshotCache) Put(_ context.Context, key string, insight domain.Insight) error {
	raw, err := json.Marshal(insight)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), raw).WithTTL(c.ttl))
	})
	if err != nil {
		return fmt.Errorf("write snapshot %s: %w", key, err)
	}
	return nil
}
