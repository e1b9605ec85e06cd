package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/pkg/errs"
	"bilbo/internal/pkg/guard"
)

// ErrIdentityIsNotConstructed is returned when using an Identity that was not
// created via NewIdentity or RestoreIdentity.
var ErrIdentityIsNotConstructed = errors.New("Identity must be created via NewIdentity or RestoreIdentity constructors")

// Identity is the aggregate root of an order. It holds what never changes after
// creation (id, kind, number, counterparty, creator) plus two cached facts about
// the snapshot history: the index and status of the latest snapshot.
//
// Business rules:
//   - Snapshot indices are gapless: the next snapshot is always latestIndex+1
//   - latestStatus always equals the status of the snapshot at latestIndex
//   - Nothing may be appended once latestStatus is terminal
//   - Status changes follow CanTransition for the order's kind; an append that
//     keeps the current status is an edit of lines or notes
//
// revision is an optimistic concurrency token owned by the persistence layer. It
// changes whenever the order is written or used as a counterpart of another
// order's append.
//
// Example usage:
//
//	identity, _ := order.NewIdentity(kernel.NewUUID(), order.Sales, "SO-000001", customerID, actorID)
//	next, err := identity.PrepareSnapshot(latest, actorID, order.Confirmed, nil, "accepted by phone")
//	if err != nil {
//	    // IllegalTransitionError or TerminalStateError
//	}
//	identity.RecordSnapshot(next)
type Identity struct {
	id             kernel.UUID
	kind           Kind
	orderNumber    string
	counterpartyID kernel.UUID
	createdBy      kernel.UUID
	latestStatus   Status
	latestIndex    int
	revision       int64
	createdAt      time.Time

	guard guard.ConstructorGuard
}

// NewIdentity creates the identity of a brand new order. latestIndex starts at 0
// and latestStatus at the kind's initial status, matching the first snapshot
// returned by InitialSnapshot.
func NewIdentity(
	id kernel.UUID,
	kind Kind,
	orderNumber string,
	counterpartyID kernel.UUID,
	createdBy kernel.UUID,
) (*Identity, error) {
	return RestoreIdentity(id, kind, orderNumber, counterpartyID, createdBy, InitialStatus(kind), 0, 0, time.Now().UTC().Truncate(time.Microsecond))
}

// RestoreIdentity reconstructs an Identity from persistent storage.
//
// Returns an error if any value is invalid or latestStatus does not belong to
// the workflow of kind.
func RestoreIdentity(
	id kernel.UUID,
	kind Kind,
	orderNumber string,
	counterpartyID kernel.UUID,
	createdBy kernel.UUID,
	latestStatus Status,
	latestIndex int,
	revision int64,
	createdAt time.Time,
) (*Identity, error) {
	identity := &Identity{
		revision:  revision,
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		identity.setID(id),
		identity.setKind(kind),
		identity.setOrderNumber(orderNumber),
		identity.setCounterpartyID(counterpartyID),
		identity.setCreatedBy(createdBy),
		identity.setLatestIndex(latestIndex),
	); err != nil {
		return nil, err
	}
	if err := latestStatus.ValidateFor(kind); err != nil {
		return nil, err
	}
	identity.latestStatus = latestStatus

	return identity, nil
}

// Validate ensures the identity was built by one of its constructors.
func (o *Identity) Validate() error {
	return o.guard.Validate(ErrIdentityIsNotConstructed)
}

func (o *Identity) ID() kernel.UUID {
	return o.id
}

func (o *Identity) Kind() Kind {
	return o.kind
}

func (o *Identity) OrderNumber() string {
	return o.orderNumber
}

func (o *Identity) CounterpartyID() kernel.UUID {
	return o.counterpartyID
}

func (o *Identity) CreatedBy() kernel.UUID {
	return o.createdBy
}

func (o *Identity) LatestStatus() Status {
	return o.latestStatus
}

func (o *Identity) LatestIndex() int {
	return o.latestIndex
}

func (o *Identity) Revision() int64 {
	return o.revision
}

func (o *Identity) CreatedAt() time.Time {
	return o.createdAt
}

// IsOpen reports whether snapshots may still be appended.
func (o *Identity) IsOpen() bool {
	return !o.latestStatus.IsTerminal()
}

// IsEqual compares identities by ID.
func (o *Identity) IsEqual(other *Identity) bool {
	if other == nil {
		return false
	}
	return o.id.IsEqual(other.id)
}

// InitialSnapshot builds snapshot 0 for a freshly created order. Initial lines
// cannot carry allocations: counterparts are linked by later appends.
func (o *Identity) InitialSnapshot(parts []PartLine, additionalInfo string) (*Snapshot, error) {
	for i, p := range parts {
		if len(p.allocations) > 0 {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"initial parts are invalid",
				fmt.Errorf("line %d carries allocations", i),
			)
		}
	}
	return NewSnapshot(o.id, 0, InitialStatus(o.kind), additionalInfo, parts, o.createdBy)
}

// PrepareSnapshot checks the workflow rules and builds the snapshot that would
// follow latest. The identity itself is left untouched until RecordSnapshot.
//
// When parts is nil the lines of latest are copied unchanged; an empty non-nil
// slice clears them.
//
// Errors:
//   - TerminalStateError if the order is FULFILLED or CANCELLED
//   - IllegalTransitionError if status differs from the current one and the
//     workflow does not allow the move, including statuses the kind never uses
//   - a validation error if latest is not this order's latest snapshot
func (o *Identity) PrepareSnapshot(
	latest *Snapshot,
	actor kernel.UUID,
	status Status,
	parts []PartLine,
	additionalInfo string,
) (*Snapshot, error) {
	if o.latestStatus.IsTerminal() {
		return nil, NewTerminalStateError(o.id, o.latestStatus)
	}
	if latest == nil || !latest.OrderID().IsEqual(o.id) || latest.Index() != o.latestIndex {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"latest snapshot is invalid",
			fmt.Errorf("expected snapshot %d of order %s", o.latestIndex, o.id),
		)
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}
	if status != o.latestStatus && !CanTransition(o.kind, o.latestStatus, status) {
		return nil, NewIllegalTransitionError(o.kind, o.latestStatus, status)
	}

	if parts == nil {
		parts = latest.parts
	}

	return NewSnapshot(o.id, o.latestIndex+1, status, additionalInfo, parts, actor)
}

// RecordSnapshot moves the cached latest index and status to s. s must be the
// snapshot returned by PrepareSnapshot.
func (o *Identity) RecordSnapshot(s *Snapshot) error {
	if s == nil || !s.OrderID().IsEqual(o.id) || s.Index() != o.latestIndex+1 {
		return errs.NewValueIsInvalidErrorWithCause(
			"snapshot is invalid",
			fmt.Errorf("expected snapshot %d of order %s", o.latestIndex+1, o.id),
		)
	}
	o.latestIndex = s.Index()
	o.latestStatus = s.Status()
	return nil
}

func (o *Identity) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Identity) setKind(kind Kind) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	o.kind = kind
	return nil
}

func (o *Identity) setOrderNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return errs.NewValueIsRequiredError("orderNumber")
	}
	o.orderNumber = number
	return nil
}

func (o *Identity) setCounterpartyID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("counterpartyId", err)
	}
	o.counterpartyID = id
	return nil
}

func (o *Identity) setCreatedBy(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("createdBy", err)
	}
	o.createdBy = id
	return nil
}

func (o *Identity) setLatestIndex(index int) error {
	if index < 0 {
		return errs.NewValueIsInvalidErrorWithCause("latest index is invalid", fmt.Errorf("%d is negative", index))
	}
	o.latestIndex = index
	return nil
}
