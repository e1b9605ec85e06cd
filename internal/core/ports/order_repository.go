// Package ports defines the contracts between the order domain and its
// infrastructure. Adapters under internal/adapters implement them.
package ports

import (
	"context"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
)

// SnapshotReader is the read side of order storage. Snapshots are immutable, so
// implementations are free to cache them by (order id, index).
type SnapshotReader interface {
	// LoadIdentity returns errs.ObjectNotFoundError when the order does not exist.
	LoadIdentity(ctx context.Context, id kernel.UUID) (*order.Identity, error)

	// LoadSnapshot returns the snapshot at index, or errs.ObjectNotFoundError.
	LoadSnapshot(ctx context.Context, id kernel.UUID, index int) (*order.Snapshot, error)

	// LoadLatestSnapshot returns the snapshot at the identity's latest index.
	LoadLatestSnapshot(ctx context.Context, id kernel.UUID) (*order.Snapshot, error)

	// LoadHistory lists every snapshot of the order in index order, without lines.
	LoadHistory(ctx context.Context, id kernel.UUID) ([]order.HistoryEntry, error)
}

// OrderDirectory lists orders by their cached latest status.
type OrderDirectory interface {
	// ListOpenOrders returns the identities of kind whose latest status is not
	// terminal, ordered by order number.
	ListOpenOrders(ctx context.Context, kind order.Kind) ([]*order.Identity, error)

	// ListLatestSnapshots returns the latest snapshot of every order.
	ListLatestSnapshots(ctx context.Context) ([]*order.Snapshot, error)
}

// OrderRepository is the persistence contract for order aggregates.
//
// Writes never update a snapshot in place. The only mutable rows are the
// identities, and every identity write is guarded by an optimistic check on its
// revision.
type OrderRepository interface {
	SnapshotReader
	OrderDirectory

	// NextOrderNumber reserves the next human readable number of kind, e.g. "PO-000007".
	NextOrderNumber(ctx context.Context, kind order.Kind) (string, error)

	// Create persists a new identity together with its snapshot 0.
	Create(ctx context.Context, identity *order.Identity, snapshot *order.Snapshot) error

	// IncomingAllocations sums, per line of counterpartID's latest snapshot, the
	// fulfillment links held by the latest snapshots of all orders except
	// excludeOrderID. Links held by CANCELLED orders are not counted.
	IncomingAllocations(ctx context.Context, counterpartID, excludeOrderID kernel.UUID) (map[int]int, error)

	// SaveSnapshotAndIdentity appends snapshot and moves identity to it.
	//
	// The identity row is only updated if its latest index still equals
	// expectedPriorIndex and its revision still equals identity.Revision().
	// Every counterpart has its revision bumped under the same kind of check,
	// so two appends that touch a common order cannot both commit. Rows are
	// written in ascending id order.
	//
	// Returns *order.ConcurrentModificationError when any check fails.
	SaveSnapshotAndIdentity(
		ctx context.Context,
		snapshot *order.Snapshot,
		identity *order.Identity,
		expectedPriorIndex int,
		counterparts []*order.Identity,
	) error
}
