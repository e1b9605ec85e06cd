package queries

import (
	"context"

	"bilbo/internal/core/ports"
)

// GetOpenOrdersQueryHandler filters on the cached latest status of each
// identity, so no snapshot is read.
type GetOpenOrdersQueryHandler struct {
	directory ports.OrderDirectory
}

func NewGetOpenOrdersQueryHandler(directory ports.OrderDirectory) GetOpenOrdersQueryHandler {
	return GetOpenOrdersQueryHandler{directory: directory}
}

func (h GetOpenOrdersQueryHandler) Handle(ctx context.Context, query GetOpenOrdersQuery) ([]OrderSummaryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	identities, err := h.directory.ListOpenOrders(ctx, query.Kind())
	if err != nil {
		return nil, err
	}

	orders := make([]OrderSummaryResponse, 0, len(identities))
	for _, identity := range identities {
		orders = append(orders, NewOrderSummaryResponse(identity))
	}
	return orders, nil
}
