package queries

import (
	"errors"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/pkg/guard"
)

var ErrGetLatestSnapshotQueryIsNotConstructed = errors.New(
	"GetLatestSnapshotQuery must be created via NewGetLatestSnapshotQuery constructor",
)

// GetLatestSnapshotQuery reads the current version of an order.
//
// Example:
//
//	query, err := NewGetLatestSnapshotQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	snapshot, err := handler.Handle(ctx, query)
type GetLatestSnapshotQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetLatestSnapshotQuery(orderID kernel.UUID) (GetLatestSnapshotQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetLatestSnapshotQuery{}, err
	}
	return GetLatestSnapshotQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetLatestSnapshotQuery) Validate() error {
	return q.guard.Validate(ErrGetLatestSnapshotQueryIsNotConstructed)
}

func (q GetLatestSnapshotQuery) OrderID() kernel.UUID {
	return q.orderID
}
