package commands

import (
	"errors"
	"slices"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/pkg/errs"
	"bilbo/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrInitialPartsHaveAllocations = errs.NewValueIsInvalidError("initial parts cannot carry allocations")
)

// CreateOrderCommand represents a request to open a new sales or purchase order.
//
// Example:
//
//	line, _ := order.NewPartLine(partID, 10, "", nil)
//	cmd, err := NewCreateOrderCommand(order.Sales, customerID, actorID, []order.PartLine{line}, "")
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory, NopObserver{})
//	identity, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	kind           order.Kind
	counterpartyID kernel.UUID
	createdBy      kernel.UUID
	parts          []order.PartLine
	additionalInfo string

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the request. Lines must not carry allocations:
// links are added by later appends once the counterpart exists.
func NewCreateOrderCommand(
	kind order.Kind,
	counterpartyID kernel.UUID,
	createdBy kernel.UUID,
	parts []order.PartLine,
	additionalInfo string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		additionalInfo: additionalInfo,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setKind(kind),
		cmd.setCounterpartyID(counterpartyID),
		cmd.setCreatedBy(createdBy),
		cmd.setParts(parts),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Kind() order.Kind {
	return c.kind
}

func (c CreateOrderCommand) CounterpartyID() kernel.UUID {
	return c.counterpartyID
}

func (c CreateOrderCommand) CreatedBy() kernel.UUID {
	return c.createdBy
}

func (c CreateOrderCommand) Parts() []order.PartLine {
	return slices.Clone(c.parts)
}

func (c CreateOrderCommand) AdditionalInfo() string {
	return c.additionalInfo
}

func (c *CreateOrderCommand) setKind(kind order.Kind) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	c.kind = kind
	return nil
}

func (c *CreateOrderCommand) setCounterpartyID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("counterpartyId", err)
	}
	c.counterpartyID = id
	return nil
}

func (c *CreateOrderCommand) setCreatedBy(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("actorId", err)
	}
	c.createdBy = id
	return nil
}

func (c *CreateOrderCommand) setParts(parts []order.PartLine) error {
	for _, p := range parts {
		if err := p.Validate(); err != nil {
			return err
		}
		if len(p.Allocations()) > 0 {
			return ErrInitialPartsHaveAllocations
		}
	}
	c.parts = slices.Clone(parts)
	return nil
}
