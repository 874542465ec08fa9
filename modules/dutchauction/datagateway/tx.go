package datagateway

import "context"

type Tx interface {
	// Commit commits the transaction. All changes made after Begin() will be persisted. Calling Commit() will close the current transaction.
	Commit(ctx context.Context) error
	// Rollback rolls back the transaction. All changes made after Begin() will be discarded.
	// Rollback() must be safe to call even after Commit(), so a defer Rollback() is always safe.
	Rollback(ctx context.Context) error
}
