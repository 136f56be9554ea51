// Package txn defines the unit-of-work boundary shared by the domain
// services. The active transaction travels in the context so repositories
// called inside fn join it.
package txn

import "context"

// Manager runs fn inside a transaction. If ctx already carries a
// transaction, fn joins it instead of opening a nested one. Returning an
// error from fn rolls back everything written inside it.
type Manager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
