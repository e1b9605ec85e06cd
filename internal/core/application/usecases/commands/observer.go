package commands

import (
	"errors"

	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/pkg/errs"
)

// Observer is told about the outcome of write commands. The metrics package
// implements it; NopObserver discards everything.
type Observer interface {
	OrderCreated(kind order.Kind)
	SnapshotAppended(kind order.Kind, status order.Status)
	AppendRejected(reason string)
	ConcurrentRetry()
}

// NopObserver implements Observer with no-ops.
type NopObserver struct{}

func (NopObserver) OrderCreated(order.Kind) {}
func (NopObserver) SnapshotAppended(order.Kind, order.Status) {}
func (NopObserver) AppendRejected(string) {}
func (NopObserver) ConcurrentRetry() {}

// Rejection reasons reported to Observer.AppendRejected.
const (
	ReasonIllegalTransition      = "illegal_transition"
	ReasonTerminalState          = "terminal_state"
	ReasonAllocationViolation    = "allocation_violation"
	ReasonConcurrentModification = "concurrent_modification"
	ReasonNotFound               = "not_found"
	ReasonInvalid                = "invalid"
	ReasonInternal               = "internal"
)

// RejectionReason classifies an append failure into a low-cardinality label.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, order.ErrIllegalTransition):
		return ReasonIllegalTransition
	case errors.Is(err, order.ErrTerminalState):
		return ReasonTerminalState
	case errors.Is(err, order.ErrAllocationViolation):
		return ReasonAllocationViolation
	case errors.Is(err, order.ErrConcurrentModification):
		return ReasonConcurrentModification
	case errors.Is(err, errs.ErrObjectNotFound):
		return ReasonNotFound
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return ReasonInvalid
	default:
		return ReasonInternal
	}
}
