package order

import (
	"errors"
	"fmt"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/pkg/errs"
	"bilbo/internal/pkg/guard"
)

// ErrFulfillmentLinkIsNotConstructed is returned when a FulfillmentLink was not
// created through NewFulfillmentLink.
var ErrFulfillmentLinkIsNotConstructed = errors.New("FulfillmentLink must be created via NewFulfillmentLink constructor")

// LineRef addresses one line of an order's latest snapshot. It is comparable and
// is used as the key when summing allocations per line.
type LineRef struct {
	OrderID   kernel.UUID
	LineIndex int
}

func (r LineRef) String() string {
	return fmt.Sprintf("%s#%d", r.OrderID, r.LineIndex)
}

// FulfillmentLink commits part of a line's quantity to a line of a counterpart
// order (a purchase order line for a sales line and vice-versa).
type FulfillmentLink struct {
	counterpartOrderID       kernel.UUID
	counterpartSnapshotIndex int
	counterpartLineIndex     int
	quantity                 int

	guard guard.ConstructorGuard
}

// NewFulfillmentLink validates and builds a link. counterpartSnapshotIndex records
// which version of the counterpart the link was made against, normally its latest.
func NewFulfillmentLink(
	counterpartOrderID kernel.UUID,
	counterpartSnapshotIndex int,
	counterpartLineIndex int,
	quantity int,
) (FulfillmentLink, error) {
	link := FulfillmentLink{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		link.setCounterpartOrderID(counterpartOrderID),
		link.setCounterpartSnapshotIndex(counterpartSnapshotIndex),
		link.setCounterpartLineIndex(counterpartLineIndex),
		link.setQuantity(quantity),
	); err != nil {
		return FulfillmentLink{}, err
	}

	return link, nil
}

// Validate ensures the link was built by NewFulfillmentLink.
func (l FulfillmentLink) Validate() error {
	return l.guard.Validate(ErrFulfillmentLinkIsNotConstructed)
}

func (l FulfillmentLink) CounterpartOrderID() kernel.UUID {
	return l.counterpartOrderID
}

func (l FulfillmentLink) CounterpartSnapshotIndex() int {
	return l.counterpartSnapshotIndex
}

func (l FulfillmentLink) CounterpartLineIndex() int {
	return l.counterpartLineIndex
}

func (l FulfillmentLink) Quantity() int {
	return l.quantity
}

// Target is the counterpart line this link draws from.
func (l FulfillmentLink) Target() LineRef {
	return LineRef{OrderID: l.counterpartOrderID, LineIndex: l.counterpartLineIndex}
}

func (l *FulfillmentLink) setCounterpartOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	l.counterpartOrderID = id
	return nil
}

func (l *FulfillmentLink) setCounterpartSnapshotIndex(index int) error {
	if index < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"counterpart snapshot index is invalid",
			fmt.Errorf("%d is negative", index),
		)
	}
	l.counterpartSnapshotIndex = index
	return nil
}

func (l *FulfillmentLink) setCounterpartLineIndex(index int) error {
	if index < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"counterpart line index is invalid",
			fmt.Errorf("%d is negative", index),
		)
	}
	l.counterpartLineIndex = index
	return nil
}

func (l *FulfillmentLink) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("allocation quantity is invalid", fmt.Errorf("%d is not greater than 0", quantity))
	}
	l.quantity = quantity
	return nil
}
