package commands

import (
	"context"
	"errors"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/core/domain/services"
	"bilbo/internal/core/ports"
	"bilbo/internal/pkg/errs"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultAppendMaxAttempts bounds the load/validate/write cycle when optimistic
// checks keep failing.
const DefaultAppendMaxAttempts = 3

// AppendSnapshotCommandHandler appends a snapshot to an order.
//
// Each attempt runs in one unit of work:
//  1. load the identity and its latest snapshot
//  2. check the workflow (TerminalStateError, IllegalTransitionError)
//  3. load every referenced counterpart and the links other orders hold
//  4. check conservation with the FulfillmentLedger (AllocationViolationError)
//  5. write the snapshot, move the identity and bump every counterpart revision
//
// Only ConcurrentModificationError is retried, and only maxAttempts times in total.
//
// Example:
//
//	handler := NewAppendSnapshotCommandHandler(uowFactory, 3, NopObserver{})
//	cmd, _ := NewAppendSnapshotCommand(soID, actorID, order.Confirmed, nil, "")
//	snapshot, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, order.ErrIllegalTransition):
//	    // bad move
//	case errors.Is(err, order.ErrAllocationViolation):
//	    // not enough stock on a counterpart line
//	}
type AppendSnapshotCommandHandler struct {
	uowFactory  OrderUoWFactory
	ledger      services.FulfillmentLedger
	maxAttempts int
	observer    Observer
	tracer      trace.Tracer
}

// NewAppendSnapshotCommandHandler creates the handler. maxAttempts below 1 falls
// back to DefaultAppendMaxAttempts and a nil observer to NopObserver.
func NewAppendSnapshotCommandHandler(uowFactory OrderUoWFactory, maxAttempts int, observer Observer) AppendSnapshotCommandHandler {
	if maxAttempts < 1 {
		maxAttempts = DefaultAppendMaxAttempts
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return AppendSnapshotCommandHandler{
		uowFactory:  uowFactory,
		ledger:      services.NewFulfillmentLedger(),
		maxAttempts: maxAttempts,
		observer:    observer,
		tracer:      otel.Tracer(tracerName),
	}
}

// Handle appends the snapshot and returns it as persisted.
func (h *AppendSnapshotCommandHandler) Handle(ctx context.Context, cmd AppendSnapshotCommand) (*order.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ctx, span := h.tracer.Start(ctx, "AppendSnapshot", trace.WithAttributes(
		attribute.String("order.id", cmd.OrderID().String()),
		attribute.String("order.status", cmd.Status().String()),
	))
	defer span.End()

	var err error
	for attempt := 1; attempt <= h.maxAttempts; attempt++ {
		var snapshot *order.Snapshot
		var kind order.Kind
		snapshot, kind, err = h.attempt(ctx, cmd)
		if err == nil {
			span.SetAttributes(
				attribute.Int("snapshot.index", snapshot.Index()),
				attribute.Int("attempts", attempt),
			)
			h.observer.SnapshotAppended(kind, snapshot.Status())
			return snapshot, nil
		}
		if !errors.Is(err, order.ErrConcurrentModification) {
			break
		}
		if attempt < h.maxAttempts {
			span.AddEvent("retry", trace.WithAttributes(attribute.Int("attempt", attempt)))
			h.observer.ConcurrentRetry()
		}
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	h.observer.AppendRejected(RejectionReason(err))
	return nil, err
}

func (h *AppendSnapshotCommandHandler) attempt(ctx context.Context, cmd AppendSnapshotCommand) (*order.Snapshot, order.Kind, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, order.UnknownKind, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	identity, err := orderRepo.LoadIdentity(ctx, cmd.OrderID())
	if err != nil {
		return nil, order.UnknownKind, err
	}
	latest, err := orderRepo.LoadLatestSnapshot(ctx, identity.ID())
	if err != nil {
		return nil, identity.Kind(), err
	}
	if latest.Index() != identity.LatestIndex() {
		// identity and snapshot were read across a concurrent append
		return nil, identity.Kind(), order.NewConcurrentModificationError(identity.ID(), identity.LatestIndex())
	}

	next, err := identity.PrepareSnapshot(latest, cmd.ActorID(), cmd.Status(), cmd.Parts(), cmd.AdditionalInfo())
	if err != nil {
		return nil, identity.Kind(), err
	}

	incoming, err := orderRepo.IncomingAllocations(ctx, identity.ID(), identity.ID())
	if err != nil {
		return nil, identity.Kind(), err
	}
	counterparts, touched, err := loadCounterparts(ctx, orderRepo, identity, next)
	if err != nil {
		return nil, identity.Kind(), err
	}

	if err = h.ledger.ValidateAllocations(identity, latest, next, incoming, counterparts); err != nil {
		return nil, identity.Kind(), err
	}

	expectedPriorIndex := identity.LatestIndex()
	if err = identity.RecordSnapshot(next); err != nil {
		return nil, identity.Kind(), err
	}
	if err = orderRepo.SaveSnapshotAndIdentity(ctx, next, identity, expectedPriorIndex, touched); err != nil {
		return nil, identity.Kind(), err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, identity.Kind(), err
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("orders.written", len(uow.TrackedOrders())))

	return next, identity.Kind(), nil
}

// loadCounterparts reads every order referenced by next. Orders that do not
// exist are left out; the ledger reports the dangling links.
func loadCounterparts(
	ctx context.Context,
	repo ports.OrderRepository,
	target *order.Identity,
	next *order.Snapshot,
) (map[kernel.UUID]services.CounterpartState, []*order.Identity, error) {
	states := make(map[kernel.UUID]services.CounterpartState)
	var touched []*order.Identity

	for _, id := range next.Counterparts() {
		if id.IsEqual(target.ID()) {
			continue
		}
		identity, err := repo.LoadIdentity(ctx, id)
		if errors.Is(err, errs.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		latest, err := repo.LoadLatestSnapshot(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if latest.Index() != identity.LatestIndex() {
			return nil, nil, order.NewConcurrentModificationError(id, identity.LatestIndex())
		}
		incoming, err := repo.IncomingAllocations(ctx, id, target.ID())
		if err != nil {
			return nil, nil, err
		}

		states[id] = services.CounterpartState{Identity: identity, Latest: latest, Incoming: incoming}
		touched = append(touched, identity)
	}

	return states, touched, nil
}
