package queries

import (
	"context"

	"bilbo/internal/core/ports"
)

// GetSnapshotAtQueryHandler returns the snapshot at a given index, or
// errs.ObjectNotFoundError when the order or the index does not exist.
type GetSnapshotAtQueryHandler struct {
	reader ports.SnapshotReader
}

func NewGetSnapshotAtQueryHandler(reader ports.SnapshotReader) GetSnapshotAtQueryHandler {
	return GetSnapshotAtQueryHandler{reader: reader}
}

func (h GetSnapshotAtQueryHandler) Handle(ctx context.Context, query GetSnapshotAtQuery) (SnapshotResponse, error) {
	if err := query.Validate(); err != nil {
		return SnapshotResponse{}, err
	}

	snapshot, err := h.reader.LoadSnapshot(ctx, query.OrderID(), query.Index())
	if err != nil {
		return SnapshotResponse{}, err
	}

	return NewSnapshotResponse(snapshot), nil
}
