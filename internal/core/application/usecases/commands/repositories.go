// Package commands holds the operations that change orders: creating one and
// appending a snapshot to it. Each handler validates its command, runs inside a
// single unit of work and reports the outcome to an Observer.
package commands

import (
	"context"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/ports"
)

type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// OrderUoW is what a handler needs from a unit of work. An append reads and
	// writes the target order and all of its counterparts through the same one,
	// so the optimistic checks of every touched row commit or fail together.
	//
	//	uow := factory.Create()
	//	if err := uow.Begin(ctx); err != nil {
	//	    return err
	//	}
	//	defer func() { _ = uow.Rollback(ctx) }()
	OrderUoW interface {
		TxManager
		OrderRepoFactory
		TrackedOrders() []kernel.UUID
	}

	// OrderUoWFactory is called once per attempt; a retried append never
	// reuses a unit of work.
	OrderUoWFactory interface {
		Create() OrderUoW
	}
)
