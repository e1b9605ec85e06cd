package memory

import (
	"context"
	"errors"
	"slices"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/core/ports"
	"bilbo/internal/pkg/errs"
)

// ErrNoTransaction is returned by Commit and Rollback outside of Begin.
var ErrNoTransaction = errors.New("no active transaction")

// change is one staged write. check runs for every change before any apply.
type change interface {
	check(s *Store) error
	apply(s *Store)
}

type createChange struct {
	row      identityRow
	snapshot *order.Snapshot
}

func (c createChange) check(s *Store) error {
	if _, ok := s.identities[c.row.id]; ok {
		return errs.NewValueIsInvalidError("order already exists")
	}
	if _, ok := s.numbers[c.row.kind][c.row.orderNumber]; ok {
		return errs.NewValueIsInvalidError("order number already exists")
	}
	return nil
}

func (c createChange) apply(s *Store) {
	s.identities[c.row.id] = c.row
	if s.numbers[c.row.kind] == nil {
		s.numbers[c.row.kind] = make(map[string]struct{})
	}
	s.numbers[c.row.kind][c.row.orderNumber] = struct{}{}
	s.snapshots[c.row.id] = []*order.Snapshot{c.snapshot}
}

type appendChange struct {
	snapshot      *order.Snapshot
	expectedIndex int
	revision      int64
}

func (c appendChange) check(s *Store) error {
	id := c.snapshot.OrderID()
	row, ok := s.identities[id]
	if !ok {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	if row.latestIndex != c.expectedIndex || row.revision != c.revision {
		return order.NewConcurrentModificationError(id, c.expectedIndex)
	}
	return nil
}

func (c appendChange) apply(s *Store) {
	id := c.snapshot.OrderID()
	row := s.identities[id]
	row.latestIndex = c.snapshot.Index()
	row.latestStatus = c.snapshot.Status()
	row.revision++
	s.identities[id] = row
	s.snapshots[id] = append(s.snapshots[id], c.snapshot)
}

type touchChange struct {
	id       kernel.UUID
	index    int
	revision int64
}

func (c touchChange) check(s *Store) error {
	row, ok := s.identities[c.id]
	if !ok {
		return errs.NewObjectNotFoundError("order", c.id.String())
	}
	if row.revision != c.revision {
		return order.NewConcurrentModificationError(c.id, c.index)
	}
	return nil
}

func (c touchChange) apply(s *Store) {
	row := s.identities[c.id]
	row.revision++
	s.identities[c.id] = row
}

// UnitOfWork stages writes between Begin and Commit. Outside of a transaction
// writes are applied immediately. Reads always see committed state.
type UnitOfWork struct {
	store   *Store
	active  bool
	pending []change
	tracked []kernel.UUID
}

func newUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

func (uow *UnitOfWork) Begin(_ context.Context) error {
	if uow.active {
		return nil
	}
	uow.active = true
	uow.pending = nil
	return nil
}

func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	pending := uow.pending
	uow.active = false
	uow.pending = nil
	return uow.store.apply(pending)
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	uow.active = false
	uow.pending = nil
	return nil
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &Repository{store: uow.store, uow: uow}
}

// TrackedOrders lists the orders written through this unit of work.
func (uow *UnitOfWork) TrackedOrders() []kernel.UUID {
	return slices.Clone(uow.tracked)
}

func (uow *UnitOfWork) stage(id kernel.UUID, changes ...change) error {
	uow.tracked = append(uow.tracked, id)
	if uow.active {
		uow.pending = append(uow.pending, changes...)
		return nil
	}
	return uow.store.apply(changes)
}
