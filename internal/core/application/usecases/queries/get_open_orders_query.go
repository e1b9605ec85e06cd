package queries

import (
	"errors"

	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/pkg/guard"
)

var ErrGetOpenOrdersQueryIsNotConstructed = errors.New(
	"GetOpenOrdersQuery must be created via NewGetOpenOrdersQuery constructor",
)

// GetOpenOrdersQuery lists the orders of one kind that still accept snapshots.
type GetOpenOrdersQuery struct {
	kind order.Kind

	guard guard.ConstructorGuard
}

func NewGetOpenOrdersQuery(kind order.Kind) (GetOpenOrdersQuery, error) {
	if err := kind.Validate(); err != nil {
		return GetOpenOrdersQuery{}, err
	}
	return GetOpenOrdersQuery{kind: kind, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOpenOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetOpenOrdersQueryIsNotConstructed)
}

func (q GetOpenOrdersQuery) Kind() order.Kind {
	return q.kind
}
