package commands

import (
	"context"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "bilbo/commands"

// CreateOrderCommandHandler opens a new order: it reserves an order number and
// writes the identity together with snapshot 0 in the kind's initial status.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, NopObserver{})
//	identity, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	fmt.Println(identity.OrderNumber()) // SO-000001
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	observer   Observer
	tracer     trace.Tracer
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
// A nil observer is replaced by NopObserver.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, observer Observer) CreateOrderCommandHandler {
	if observer == nil {
		observer = NopObserver{}
	}
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		observer:   observer,
		tracer:     otel.Tracer(tracerName),
	}
}

// Handle creates the order and returns its identity.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Identity, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, span := h.tracer.Start(ctx, "CreateOrder",
		trace.WithAttributes(attribute.String("order.kind", cmd.Kind().String())))
	defer span.End()

	identity, err := h.create(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.id", identity.ID().String()),
		attribute.String("order.number", identity.OrderNumber()),
	)
	h.observer.OrderCreated(identity.Kind())
	return identity, nil
}

func (h *CreateOrderCommandHandler) create(ctx context.Context, cmd CreateOrderCommand) (*order.Identity, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	number, err := orderRepo.NextOrderNumber(ctx, cmd.Kind())
	if err != nil {
		return nil, err
	}

	identity, err := order.NewIdentity(kernel.NewUUID(), cmd.Kind(), number, cmd.CounterpartyID(), cmd.CreatedBy())
	if err != nil {
		return nil, err
	}

	snapshot, err := identity.InitialSnapshot(cmd.Parts(), cmd.AdditionalInfo())
	if err != nil {
		return nil, err
	}

	if err = orderRepo.Create(ctx, identity, snapshot); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return identity, nil
}
