package dbx

import (
	"context"
	"fmt"
)

// AdvisoryLock takes a transaction-scoped PostgreSQL advisory lock derived
// from key. The lock is released on commit or rollback, so tx must be a
// transaction handle.
func AdvisoryLock(ctx context.Context, tx DBTX, key string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("advisory lock %q: %w", key, err)
	}
	return nil
}
