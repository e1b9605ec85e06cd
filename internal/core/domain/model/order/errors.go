package order

import (
	"errors"
	"fmt"

	"bilbo/internal/core/domain/model/kernel"
)

var (
	ErrIllegalTransition      = errors.New("illegal status transition")
	ErrTerminalState          = errors.New("order is in a terminal state")
	ErrAllocationViolation    = errors.New("allocation violation")
	ErrConcurrentModification = errors.New("concurrent modification")
)

// IllegalTransitionError reports a status change not permitted by the workflow of Kind.
type IllegalTransitionError struct {
	Kind Kind
	From Status
	To   Status
}

func NewIllegalTransitionError(kind Kind, from, to Status) *IllegalTransitionError {
	return &IllegalTransitionError{Kind: kind, From: from, To: to}
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: %s order cannot move from %s to %s", ErrIllegalTransition, e.Kind, e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// TerminalStateError reports an append attempted on a FULFILLED or CANCELLED order.
type TerminalStateError struct {
	OrderID kernel.UUID
	Status  Status
}

func NewTerminalStateError(orderID kernel.UUID, status Status) *TerminalStateError {
	return &TerminalStateError{OrderID: orderID, Status: status}
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("%s: order %s is %s", ErrTerminalState, e.OrderID, e.Status)
}

func (e *TerminalStateError) Unwrap() error {
	return ErrTerminalState
}

// AllocationSide tells which conservation rule a line broke.
type AllocationSide int

const (
	// Outgoing: the line's own links exceed its quantity.
	Outgoing AllocationSide = iota + 1
	// Incoming: links pointing at the line exceed its quantity.
	Incoming
)

func (s AllocationSide) String() string {
	switch s {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	default:
		return "unknown"
	}
}

// AllocationViolationError names the over-allocated line and by how much.
type AllocationViolationError struct {
	OrderID   kernel.UUID
	LineIndex int
	Side      AllocationSide
	Quantity  int
	Allocated int
}

func NewAllocationViolationError(orderID kernel.UUID, lineIndex int, side AllocationSide, quantity, allocated int) *AllocationViolationError {
	return &AllocationViolationError{
		OrderID:   orderID,
		LineIndex: lineIndex,
		Side:      side,
		Quantity:  quantity,
		Allocated: allocated,
	}
}

// Excess is how many units over the line's quantity were allocated.
func (e *AllocationViolationError) Excess() int {
	return e.Allocated - e.Quantity
}

func (e *AllocationViolationError) Error() string {
	return fmt.Sprintf("%s: order %s line %d has %d %s allocated against quantity %d (excess %d)",
		ErrAllocationViolation, e.OrderID, e.LineIndex, e.Allocated, e.Side, e.Quantity, e.Excess())
}

func (e *AllocationViolationError) Unwrap() error {
	return ErrAllocationViolation
}

// ConcurrentModificationError reports a lost optimistic check on one of the
// orders touched by an append. Callers may retry the whole operation.
type ConcurrentModificationError struct {
	OrderID       kernel.UUID
	ExpectedIndex int
}

func NewConcurrentModificationError(orderID kernel.UUID, expectedIndex int) *ConcurrentModificationError {
	return &ConcurrentModificationError{OrderID: orderID, ExpectedIndex: expectedIndex}
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s: order %s changed since index %d was read", ErrConcurrentModification, e.OrderID, e.ExpectedIndex)
}

func (e *ConcurrentModificationError) Unwrap() error {
	return ErrConcurrentModification
}
