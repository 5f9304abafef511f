package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebindOnlyTouchesPostgres(t *testing.T) {
	t.Parallel()
	query := "UPDATE t SET a = ? WHERE id = ? AND status = ?"
	assert.Equal(t, query, Rebind(SQLite, query))
	assert.Equal(t, "UPDATE t SET a = $1 WHERE id = $2 AND status = $3", Rebind(Postgres, query))
}

func TestOpenSQLiteDetectsUniqueViolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := Open(ctx, string(SQLite), filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.ApplySchema(ctx, []string{
		`CREATE TABLE items (id TEXT PRIMARY KEY, owner TEXT NOT NULL, state TEXT NOT NULL)`,
		`CREATE UNIQUE INDEX ux_items_one_open ON items(owner) WHERE state = 'open'`,
	}))
	_, err = db.ExecContext(ctx, db.Rebind(`INSERT INTO items (id, owner, state) VALUES (?, ?, ?)`), "a", "u1", "open")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, db.Rebind(`INSERT INTO items (id, owner, state) VALUES (?, ?, ?)`), "b", "u1", "closed")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, db.Rebind(`INSERT INTO items (id, owner, state) VALUES (?, ?, ?)`), "c", "u1", "open")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestIsUniqueViolationRecognisesPgCodes(t *testing.T) {
	t.Parallel()
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()
	_, err := Open(context.Background(), "oracle", "x")
	require.Error(t, err)
}
