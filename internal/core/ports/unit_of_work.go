package ports

import (
	"context"

	"bilbo/internal/core/domain/model/kernel"
)

// UnitOfWorkFactory hands out one UnitOfWork per command attempt.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is the transaction boundary of a single create or append.
// Either every write made through OrderRepository lands, or none does.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit fails with a ConcurrentModificationError when an optimistic
	// check could only be evaluated at commit time.
	Commit(ctx context.Context) error

	// Rollback is safe to defer after a successful Commit; it then returns an
	// error that callers ignore.
	Rollback(ctx context.Context) error

	// OrderRepository is bound to the transaction opened by Begin.
	OrderRepository() OrderRepository

	// TrackedOrders lists the orders written so far, in write order.
	TrackedOrders() []kernel.UUID
}
