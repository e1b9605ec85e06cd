package order

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/pkg/errs"
	"bilbo/internal/pkg/guard"
)

// ErrSnapshotIsNotConstructed is returned when a Snapshot was not created through
// NewSnapshot or RestoreSnapshot.
var ErrSnapshotIsNotConstructed = errors.New("snapshot must be created via NewSnapshot or RestoreSnapshot constructors")

// Snapshot is one immutable version of an order. Index 0 is written at creation;
// every later edit or status change appends index latest+1.
type Snapshot struct {
	orderID        kernel.UUID
	index          int
	status         Status
	additionalInfo string
	parts          []PartLine
	updatedBy      kernel.UUID
	createdAt      time.Time

	guard guard.ConstructorGuard
}

// NewSnapshot builds a snapshot stamped with the current time, truncated to the
// microsecond precision of the database.
func NewSnapshot(
	orderID kernel.UUID,
	index int,
	status Status,
	additionalInfo string,
	parts []PartLine,
	updatedBy kernel.UUID,
) (*Snapshot, error) {
	return RestoreSnapshot(orderID, index, status, additionalInfo, parts, updatedBy, time.Now().UTC().Truncate(time.Microsecond))
}

// RestoreSnapshot rebuilds a persisted snapshot. Used by repositories.
func RestoreSnapshot(
	orderID kernel.UUID,
	index int,
	status Status,
	additionalInfo string,
	parts []PartLine,
	updatedBy kernel.UUID,
	createdAt time.Time,
) (*Snapshot, error) {
	s := &Snapshot{
		additionalInfo: additionalInfo,
		createdAt:      createdAt,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setOrderID(orderID),
		s.setIndex(index),
		s.setStatus(status),
		s.setParts(parts),
		s.setUpdatedBy(updatedBy),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate ensures the snapshot was built by one of its constructors.
func (s *Snapshot) Validate() error {
	return s.guard.Validate(ErrSnapshotIsNotConstructed)
}

func (s *Snapshot) OrderID() kernel.UUID {
	return s.orderID
}

func (s *Snapshot) Index() int {
	return s.index
}

func (s *Snapshot) Status() Status {
	return s.status
}

func (s *Snapshot) AdditionalInfo() string {
	return s.additionalInfo
}

// Parts returns a copy of the snapshot's lines in order.
func (s *Snapshot) Parts() []PartLine {
	return slices.Clone(s.parts)
}

// PartCount is the number of lines in the snapshot.
func (s *Snapshot) PartCount() int {
	return len(s.parts)
}

// Part returns the line at position i.
func (s *Snapshot) Part(i int) (PartLine, error) {
	if i < 0 || i >= len(s.parts) {
		return PartLine{}, errs.NewValueIsOutOfRangeError("line index", i, 0, len(s.parts)-1)
	}
	return s.parts[i], nil
}

func (s *Snapshot) UpdatedBy() kernel.UUID {
	return s.updatedBy
}

func (s *Snapshot) CreatedAt() time.Time {
	return s.createdAt
}

// HasAllocations reports whether any line of the snapshot links to a counterpart.
func (s *Snapshot) HasAllocations() bool {
	for _, p := range s.parts {
		if len(p.allocations) > 0 {
			return true
		}
	}
	return false
}

// Counterparts lists the distinct counterpart orders referenced by the snapshot,
// in first-seen order.
func (s *Snapshot) Counterparts() []kernel.UUID {
	seen := make(map[kernel.UUID]struct{})
	var ids []kernel.UUID
	for _, p := range s.parts {
		for _, a := range p.allocations {
			if _, ok := seen[a.CounterpartOrderID()]; ok {
				continue
			}
			seen[a.CounterpartOrderID()] = struct{}{}
			ids = append(ids, a.CounterpartOrderID())
		}
	}
	return ids
}

// OutgoingTo sums this snapshot's allocations per counterpart line of the given order.
func (s *Snapshot) OutgoingTo(counterpartID kernel.UUID) map[int]int {
	totals := make(map[int]int)
	for _, p := range s.parts {
		for _, a := range p.allocations {
			if a.CounterpartOrderID() == counterpartID {
				totals[a.CounterpartLineIndex()] += a.Quantity()
			}
		}
	}
	return totals
}

// Summary condenses the snapshot into a history entry.
func (s *Snapshot) Summary() HistoryEntry {
	return HistoryEntry{
		Index:     s.index,
		Status:    s.status,
		UpdatedBy: s.updatedBy,
		CreatedAt: s.createdAt,
	}
}

func (s *Snapshot) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.orderID = id
	return nil
}

func (s *Snapshot) setIndex(index int) error {
	if index < 0 {
		return errs.NewValueIsInvalidErrorWithCause("snapshot index is invalid", fmt.Errorf("%d is negative", index))
	}
	s.index = index
	return nil
}

func (s *Snapshot) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	s.status = status
	return nil
}

func (s *Snapshot) setParts(parts []PartLine) error {
	for i, p := range parts {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	s.parts = slices.Clone(parts)
	return nil
}

func (s *Snapshot) setUpdatedBy(actor kernel.UUID) error {
	if err := actor.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("updatedBy", err)
	}
	s.updatedBy = actor
	return nil
}
