package queries

import (
	"context"

	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/core/ports"
)

// GetOrderHistoryQueryHandler returns one entry per snapshot in index order.
type GetOrderHistoryQueryHandler struct {
	reader ports.SnapshotReader
}

func NewGetOrderHistoryQueryHandler(reader ports.SnapshotReader) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{reader: reader}
}

func (h GetOrderHistoryQueryHandler) Handle(ctx context.Context, query GetOrderHistoryQuery) ([]order.HistoryEntry, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.reader.LoadHistory(ctx, query.OrderID())
}
