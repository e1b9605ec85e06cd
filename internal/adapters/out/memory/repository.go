package memory

import (
	"context"
	"slices"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
)

// Repository implements ports.OrderRepository over a Store.
type Repository struct {
	store *Store
	uow   *UnitOfWork
}

func (r *Repository) NextOrderNumber(_ context.Context, kind order.Kind) (string, error) {
	if err := kind.Validate(); err != nil {
		return "", err
	}
	return r.store.nextNumber(kind), nil
}

func (r *Repository) Create(_ context.Context, identity *order.Identity, snapshot *order.Snapshot) error {
	if err := identity.Validate(); err != nil {
		return err
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}

	return r.uow.stage(identity.ID(), createChange{
		row: identityRow{
			id:             identity.ID(),
			kind:           identity.Kind(),
			orderNumber:    identity.OrderNumber(),
			counterpartyID: identity.CounterpartyID(),
			createdBy:      identity.CreatedBy(),
			latestStatus:   snapshot.Status(),
			latestIndex:    snapshot.Index(),
			createdAt:      identity.CreatedAt(),
		},
		snapshot: snapshot,
	})
}

func (r *Repository) LoadIdentity(_ context.Context, id kernel.UUID) (*order.Identity, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.store.identity(id)
}

func (r *Repository) LoadSnapshot(_ context.Context, id kernel.UUID, index int) (*order.Snapshot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.store.snapshot(id, index)
}

func (r *Repository) LoadLatestSnapshot(_ context.Context, id kernel.UUID) (*order.Snapshot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.store.latest(id)
}

func (r *Repository) LoadHistory(_ context.Context, id kernel.UUID) ([]order.HistoryEntry, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.store.history(id)
}

func (r *Repository) IncomingAllocations(_ context.Context, counterpartID, excludeOrderID kernel.UUID) (map[int]int, error) {
	return r.store.incoming(counterpartID, excludeOrderID), nil
}

func (r *Repository) ListOpenOrders(_ context.Context, kind order.Kind) ([]*order.Identity, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	return r.store.openOrders(kind)
}

func (r *Repository) ListLatestSnapshots(_ context.Context) ([]*order.Snapshot, error) {
	return r.store.latestSnapshots(), nil
}

func (r *Repository) SaveSnapshotAndIdentity(
	_ context.Context,
	snapshot *order.Snapshot,
	identity *order.Identity,
	expectedPriorIndex int,
	counterparts []*order.Identity,
) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	if err := identity.Validate(); err != nil {
		return err
	}

	changes := []change{appendChange{
		snapshot:      snapshot,
		expectedIndex: expectedPriorIndex,
		revision:      identity.Revision(),
	}}
	sorted := slices.Clone(counterparts)
	slices.SortFunc(sorted, func(a, b *order.Identity) int { return a.ID().Compare(b.ID()) })
	for _, c := range sorted {
		if c.ID() == identity.ID() {
			continue
		}
		changes = append(changes, touchChange{id: c.ID(), index: c.LatestIndex(), revision: c.Revision()})
	}

	// fail early like an UPDATE ... WHERE revision = ? would
	r.store.mu.RLock()
	for _, c := range changes {
		if err := c.check(r.store); err != nil {
			r.store.mu.RUnlock()
			return err
		}
	}
	r.store.mu.RUnlock()

	return r.uow.stage(identity.ID(), changes...)
}
