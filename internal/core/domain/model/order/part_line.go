package order

import (
	"errors"
	"fmt"
	"slices"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/pkg/errs"
	"bilbo/internal/pkg/guard"
)

// ErrPartLineIsNotConstructed is returned when a PartLine was not created through NewPartLine.
var ErrPartLineIsNotConstructed = errors.New("PartLine must be created via NewPartLine constructor")

// PartLine is one ordered part inside a snapshot. Lines have no identity of
// their own: they are addressed by their position in the snapshot.
//
// Invariants:
//   - quantity is positive
//   - at most one allocation per counterpart line
//
// Whether the allocations fit inside quantity and inside the counterpart lines is
// a cross-order rule enforced by the fulfillment ledger, not by the line itself.
type PartLine struct {
	partID         kernel.UUID
	quantity       int
	additionalInfo string
	allocations    []FulfillmentLink

	guard guard.ConstructorGuard
}

// NewPartLine validates and builds a line. allocations may be nil.
//
// Example:
//
//	link, _ := order.NewFulfillmentLink(poID, 2, 0, 4)
//	line, err := order.NewPartLine(partID, 10, "urgent", []order.FulfillmentLink{link})
func NewPartLine(partID kernel.UUID, quantity int, additionalInfo string, allocations []FulfillmentLink) (PartLine, error) {
	line := PartLine{
		additionalInfo: additionalInfo,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		line.setPartID(partID),
		line.setQuantity(quantity),
		line.setAllocations(allocations),
	); err != nil {
		return PartLine{}, err
	}

	return line, nil
}

// Validate ensures the line was built by NewPartLine.
func (l PartLine) Validate() error {
	return l.guard.Validate(ErrPartLineIsNotConstructed)
}

func (l PartLine) PartID() kernel.UUID {
	return l.partID
}

func (l PartLine) Quantity() int {
	return l.quantity
}

func (l PartLine) AdditionalInfo() string {
	return l.additionalInfo
}

// Allocations returns a copy of the line's outgoing links.
func (l PartLine) Allocations() []FulfillmentLink {
	return slices.Clone(l.allocations)
}

// AllocatedQuantity sums the quantities of the outgoing links.
func (l PartLine) AllocatedQuantity() int {
	total := 0
	for _, a := range l.allocations {
		total += a.Quantity()
	}
	return total
}

// WithAllocations returns a copy of the line carrying a new allocation set.
func (l PartLine) WithAllocations(allocations []FulfillmentLink) (PartLine, error) {
	return NewPartLine(l.partID, l.quantity, l.additionalInfo, allocations)
}

func (l *PartLine) setPartID(partID kernel.UUID) error {
	if err := partID.Validate(); err != nil {
		return err
	}
	l.partID = partID
	return nil
}

func (l *PartLine) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity is invalid", fmt.Errorf("%d is not greater than 0", quantity))
	}
	l.quantity = quantity
	return nil
}

func (l *PartLine) setAllocations(allocations []FulfillmentLink) error {
	seen := make(map[LineRef]struct{}, len(allocations))
	for i, a := range allocations {
		if err := a.Validate(); err != nil {
			return err
		}
		if _, dup := seen[a.Target()]; dup {
			return errs.NewValueIsInvalidErrorWithCause(
				"allocations are invalid",
				fmt.Errorf("allocation %d duplicates a link to %s", i, a.Target()),
			)
		}
		seen[a.Target()] = struct{}{}
	}
	l.allocations = slices.Clone(allocations)
	return nil
}
