package queries

import (
	"errors"

	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/pkg/guard"
)

var ErrAuditAllocationsQueryIsNotConstructed = errors.New(
	"AuditAllocationsQuery must be created via NewAuditAllocationsQuery constructor",
)

// AuditAllocationsQuery re-checks the conservation rules over every order.
type AuditAllocationsQuery struct {
	guard guard.ConstructorGuard
}

func NewAuditAllocationsQuery() AuditAllocationsQuery {
	return AuditAllocationsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q AuditAllocationsQuery) Validate() error {
	return q.guard.Validate(ErrAuditAllocationsQueryIsNotConstructed)
}

// AuditAllocationsQueryResponse reports how many orders were checked and the
// over-committed lines found among them.
type AuditAllocationsQueryResponse struct {
	OrdersChecked int
	Violations    []*order.AllocationViolationError
}
