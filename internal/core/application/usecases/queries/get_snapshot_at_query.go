package queries

import (
	"errors"
	"fmt"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/pkg/errs"
	"bilbo/internal/pkg/guard"
)

var ErrGetSnapshotAtQueryIsNotConstructed = errors.New(
	"GetSnapshotAtQuery must be created via NewGetSnapshotAtQuery constructor",
)

// GetSnapshotAtQuery reads one historical version of an order.
type GetSnapshotAtQuery struct {
	orderID kernel.UUID
	index   int

	guard guard.ConstructorGuard
}

func NewGetSnapshotAtQuery(orderID kernel.UUID, index int) (GetSnapshotAtQuery, error) {
	var indexErr error
	if index < 0 {
		indexErr = errs.NewValueIsInvalidErrorWithCause("snapshot index is invalid", fmt.Errorf("%d is negative", index))
	}
	if err := errors.Join(orderID.Validate(), indexErr); err != nil {
		return GetSnapshotAtQuery{}, err
	}
	return GetSnapshotAtQuery{orderID: orderID, index: index, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetSnapshotAtQuery) Validate() error {
	return q.guard.Validate(ErrGetSnapshotAtQueryIsNotConstructed)
}

func (q GetSnapshotAtQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetSnapshotAtQuery) Index() int {
	return q.index
}
