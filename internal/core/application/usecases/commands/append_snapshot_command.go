package commands

import (
	"errors"
	"slices"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/pkg/errs"
	"bilbo/internal/pkg/guard"
)

var ErrAppendSnapshotCommandIsNotConstructed = errors.New(
	"AppendSnapshotCommand must be created via NewAppendSnapshotCommand constructor",
)

// AppendSnapshotCommand requests a new version of an order: a status change, an
// edit of its lines or notes, or both.
//
// A nil parts slice keeps the lines of the latest snapshot. A non-nil empty
// slice removes every line.
//
// Example:
//
//	// move a purchase order forward, keeping its lines
//	cmd, err := NewAppendSnapshotCommand(poID, actorID, order.Confirmed, nil, "supplier accepted")
type AppendSnapshotCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	actorID        kernel.UUID
	status         order.Status
	parts          []order.PartLine
	additionalInfo string

	guard guard.ConstructorGuard
}

func NewAppendSnapshotCommand(
	orderID kernel.UUID,
	actorID kernel.UUID,
	status order.Status,
	parts []order.PartLine,
	additionalInfo string,
) (AppendSnapshotCommand, error) {
	cmd := AppendSnapshotCommand{
		additionalInfo: additionalInfo,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActorID(actorID),
		cmd.setStatus(status),
		cmd.setParts(parts),
	); err != nil {
		return AppendSnapshotCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AppendSnapshotCommand) Validate() error {
	return c.guard.Validate(ErrAppendSnapshotCommandIsNotConstructed)
}

func (c AppendSnapshotCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AppendSnapshotCommand) ActorID() kernel.UUID {
	return c.actorID
}

func (c AppendSnapshotCommand) Status() order.Status {
	return c.status
}

// Parts returns the requested lines, or nil to keep the current ones.
func (c AppendSnapshotCommand) Parts() []order.PartLine {
	return slices.Clone(c.parts)
}

func (c AppendSnapshotCommand) AdditionalInfo() string {
	return c.additionalInfo
}

func (c *AppendSnapshotCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.orderID = id
	return nil
}

func (c *AppendSnapshotCommand) setActorID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("actorId", err)
	}
	c.actorID = id
	return nil
}

func (c *AppendSnapshotCommand) setStatus(status order.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	c.status = status
	return nil
}

func (c *AppendSnapshotCommand) setParts(parts []order.PartLine) error {
	for _, p := range parts {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	c.parts = slices.Clone(parts)
	return nil
}
