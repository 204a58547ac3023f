package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/nodestore/internal/dbx"
)

var errNoSQL = errors.New("memory store has no SQL connection")

// conn is the handle passed around as a dbx.DBTX; memory repositories ignore it.
type conn struct{}

func (conn) ExecContext(context.Context, string, ...any) (sql.Result, error) { return nil, errNoSQL }
func (conn) QueryContext(context.Context, string, ...any) (*sql.Rows, error) { return nil, errNoSQL }
func (conn) QueryRowContext(context.Context, string, ...any) *sql.Row        { return nil }

// Transactor runs units of work one at a time and restores a snapshot of the
// arena when fn fails or panics. Transactions must not be nested.
type Transactor struct {
	store *Store
	mu    sync.Mutex
}

func NewTransactor(store *Store) *Transactor {
	return &Transactor{store: store}
}

func (t *Transactor) Conn() dbx.DBTX { return conn{} }

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			t.store.restore(snap)
			panic(p)
		}
		if err != nil {
			t.store.restore(snap)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, conn{})
}
