// Package memory keeps orders in process memory. It backs STORAGE=memory and the
// application tests, and enforces the same optimistic checks as the postgres
// adapter so concurrency behaviour can be exercised without a database.
package memory

import (
	"slices"
	"sync"
	"time"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/core/ports"
	"bilbo/internal/pkg/errs"
)

// identityRow mirrors one row of the order_identities table.
type identityRow struct {
	id             kernel.UUID
	kind           order.Kind
	orderNumber    string
	counterpartyID kernel.UUID
	createdBy      kernel.UUID
	latestStatus   order.Status
	latestIndex    int
	revision       int64
	createdAt      time.Time
}

func (r identityRow) toDomain() (*order.Identity, error) {
	return order.RestoreIdentity(
		r.id, r.kind, r.orderNumber, r.counterpartyID, r.createdBy,
		r.latestStatus, r.latestIndex, r.revision, r.createdAt,
	)
}

// Store is the shared state behind every unit of work created by a factory.
// Snapshots are immutable and shared by pointer; identities are copied in and out.
type Store struct {
	mu         sync.RWMutex
	identities map[kernel.UUID]identityRow
	numbers    map[order.Kind]map[string]struct{}
	snapshots  map[kernel.UUID][]*order.Snapshot
	sequences  map[order.Kind]int64
}

func NewStore() *Store {
	return &Store{
		identities: make(map[kernel.UUID]identityRow),
		numbers:    make(map[order.Kind]map[string]struct{}),
		snapshots:  make(map[kernel.UUID][]*order.Snapshot),
		sequences:  make(map[order.Kind]int64),
	}
}

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return newUnitOfWork(f.store)
}

func (s *Store) nextNumber(kind order.Kind) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[kind]++
	return kind.FormatOrderNumber(s.sequences[kind])
}

func (s *Store) identity(id kernel.UUID) (*order.Identity, error) {
	s.mu.RLock()
	row, ok := s.identities[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return row.toDomain()
}

func (s *Store) snapshot(id kernel.UUID, index int) (*order.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.snapshots[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	if index < 0 || index >= len(history) {
		return nil, errs.NewObjectNotFoundErrorWithCause(
			"snapshot", id.String(),
			errs.NewValueIsOutOfRangeError("snapshot index", index, 0, len(history)-1),
		)
	}
	return history[index], nil
}

func (s *Store) latest(id kernel.UUID) (*order.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.identities[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return s.snapshots[id][row.latestIndex], nil
}

func (s *Store) history(id kernel.UUID) ([]order.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history, ok := s.snapshots[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	entries := make([]order.HistoryEntry, 0, len(history))
	for _, snap := range history {
		entries = append(entries, snap.Summary())
	}
	return entries, nil
}

func (s *Store) incoming(counterpartID, excludeOrderID kernel.UUID) map[int]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals := make(map[int]int)
	for id, row := range s.identities {
		if id == excludeOrderID || id == counterpartID || row.latestStatus == order.Cancelled {
			continue
		}
		for line, qty := range s.snapshots[id][row.latestIndex].OutgoingTo(counterpartID) {
			totals[line] += qty
		}
	}
	return totals
}

func (s *Store) openOrders(kind order.Kind) ([]*order.Identity, error) {
	s.mu.RLock()
	rows := make([]identityRow, 0)
	for _, row := range s.identities {
		if row.kind == kind && !row.latestStatus.IsTerminal() {
			rows = append(rows, row)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(rows, func(a, b identityRow) int {
		if a.orderNumber < b.orderNumber {
			return -1
		}
		if a.orderNumber > b.orderNumber {
			return 1
		}
		return 0
	})

	identities := make([]*order.Identity, 0, len(rows))
	for _, row := range rows {
		identity, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	return identities, nil
}

func (s *Store) latestSnapshots() []*order.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := make([]*order.Snapshot, 0, len(s.identities))
	for id, row := range s.identities {
		latest = append(latest, s.snapshots[id][row.latestIndex])
	}
	slices.SortFunc(latest, func(a, b *order.Snapshot) int {
		return a.OrderID().Compare(b.OrderID())
	})
	return latest
}

// apply runs every staged change under one lock. Either all changes land or none.
func (s *Store) apply(changes []change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range changes {
		if err := c.check(s); err != nil {
			return err
		}
	}
	for _, c := range changes {
		c.apply(s)
	}
	return nil
}
