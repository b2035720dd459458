package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/scholarspace/scholarspace/internal/auth/store"
	"github.com/scholarspace/scholarspace/internal/auth/store/drivers/sqlite/gen"
)

// txStore scopes both repositories to one *sql.Tx.
type txStore struct {
	tx *sql.Tx
	q  *gen.Queries
}

func (t *txStore) Commit() error { return t.tx.Commit() }

// Rollback after Commit is a no-op so callers can defer it unconditionally.
func (t *txStore) Rollback() error {
	if err := t.tx.Rollback(); !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, store.ErrNestedTx }
func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.ErrNestedTx
}

func (t *txStore) Users() store.Users             { return &usersRepo{q: t.q} }
func (t *txStore) ResetTokens() store.ResetTokens { return &resetTokensRepo{q: t.q} }
