package queries

import (
	"context"

	"bilbo/internal/core/ports"
)

// GetLatestSnapshotQueryHandler returns the snapshot at the order's latest index.
// Calling it twice without an append in between returns the same snapshot.
type GetLatestSnapshotQueryHandler struct {
	reader ports.SnapshotReader
}

func NewGetLatestSnapshotQueryHandler(reader ports.SnapshotReader) GetLatestSnapshotQueryHandler {
	return GetLatestSnapshotQueryHandler{reader: reader}
}

func (h GetLatestSnapshotQueryHandler) Handle(ctx context.Context, query GetLatestSnapshotQuery) (SnapshotResponse, error) {
	if err := query.Validate(); err != nil {
		return SnapshotResponse{}, err
	}

	snapshot, err := h.reader.LoadLatestSnapshot(ctx, query.OrderID())
	if err != nil {
		return SnapshotResponse{}, err
	}

	return NewSnapshotResponse(snapshot), nil
}
