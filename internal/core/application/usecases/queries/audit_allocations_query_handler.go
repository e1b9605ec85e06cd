package queries

import (
	"context"

	"bilbo/internal/core/domain/services"
	"bilbo/internal/core/ports"
)

// AuditAllocationsQueryHandler runs FulfillmentLedger.Audit over the latest
// snapshot of every order. It never writes.
type AuditAllocationsQueryHandler struct {
	directory ports.OrderDirectory
	ledger    services.FulfillmentLedger
}

func NewAuditAllocationsQueryHandler(directory ports.OrderDirectory) AuditAllocationsQueryHandler {
	return AuditAllocationsQueryHandler{directory: directory, ledger: services.NewFulfillmentLedger()}
}

func (h AuditAllocationsQueryHandler) Handle(ctx context.Context, query AuditAllocationsQuery) (AuditAllocationsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return AuditAllocationsQueryResponse{}, err
	}

	latest, err := h.directory.ListLatestSnapshots(ctx)
	if err != nil {
		return AuditAllocationsQueryResponse{}, err
	}

	return AuditAllocationsQueryResponse{
		OrdersChecked: len(latest),
		Violations:    h.ledger.Audit(latest),
	}, nil
}
