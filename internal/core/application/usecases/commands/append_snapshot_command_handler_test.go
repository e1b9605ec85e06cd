package commands_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"

	"bilbo/internal/adapters/out/memory"
	"bilbo/internal/core/application/usecases/commands"
	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/core/domain/services"
	"bilbo/internal/core/ports"
	"bilbo/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type world struct {
	t        *testing.T
	store    *memory.Store
	factory  *memoryFactory
	observer *recordingObserver
	creator  commands.CreateOrderCommandHandler
	appender commands.AppendSnapshotCommandHandler
}

func newWorld(t *testing.T) *world {
	t.Helper()
	store := memory.NewStore()
	factory := newMemoryFactory(store)
	observer := &recordingObserver{}
	return &world{
		t:        t,
		store:    store,
		factory:  factory,
		observer: observer,
		creator:  commands.NewCreateOrderCommandHandler(factory, observer),
		appender: commands.NewAppendSnapshotCommandHandler(factory, commands.DefaultAppendMaxAttempts, observer),
	}
}

func (w *world) create(kind order.Kind, lines ...order.PartLine) *order.Identity {
	w.t.Helper()
	identity, err := w.creator.Handle(w.t.Context(), newCreateCommand(w.t, kind, lines...))
	require.NoError(w.t, err)
	return identity
}

func (w *world) append(id kernel.UUID, status order.Status, lines []order.PartLine) (*order.Snapshot, error) {
	w.t.Helper()
	cmd, err := commands.NewAppendSnapshotCommand(id, kernel.NewUUID(), status, lines, "")
	require.NoError(w.t, err)
	return w.appender.Handle(w.t.Context(), cmd)
}

func (w *world) mustAppend(id kernel.UUID, status order.Status, lines []order.PartLine) *order.Snapshot {
	w.t.Helper()
	s, err := w.append(id, status, lines)
	require.NoError(w.t, err)
	return s
}

func (w *world) repo() ports.OrderRepository {
	return memory.NewUnitOfWorkFactory(w.store).Create().OrderRepository()
}

func (w *world) latest(id kernel.UUID) *order.Snapshot {
	w.t.Helper()
	s, err := w.repo().LoadLatestSnapshot(w.t.Context(), id)
	require.NoError(w.t, err)
	return s
}

func linkTo(t *testing.T, counterpart kernel.UUID, snapshotIndex, lineIndex, quantity int) order.FulfillmentLink {
	t.Helper()
	l, err := order.NewFulfillmentLink(counterpart, snapshotIndex, lineIndex, quantity)
	require.NoError(t, err)
	return l
}

func TestAppendSnapshot_OverAllocationIsRejected(t *testing.T) {
	w := newWorld(t)
	p1 := kernel.NewUUID()
	so := w.create(order.Sales, newLine(t, p1, 10))
	po := w.create(order.Purchase, newLine(t, p1, 6))

	_, err := w.append(so.ID(), order.Quotation, []order.PartLine{newLine(t, p1, 10, linkTo(t, po.ID(), 0, 0, 10))})

	require.ErrorIs(t, err, order.ErrAllocationViolation)
	var violation *order.AllocationViolationError
	require.ErrorAs(t, err, &violation)
	assert.True(t, violation.OrderID.IsEqual(po.ID()))
	assert.Equal(t, 4, violation.Excess())

	// nothing was written
	assert.Equal(t, 0, w.latest(so.ID()).Index())
	assert.Equal(t, []string{commands.ReasonAllocationViolation}, w.observer.rejected)
}

func TestAppendSnapshot_SkippingAStatusIsRejected(t *testing.T) {
	w := newWorld(t)
	po := w.create(order.Purchase)

	_, err := w.append(po.ID(), order.Received, nil)

	var transitionErr *order.IllegalTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, order.Quotation, transitionErr.From)
	assert.Equal(t, order.Received, transitionErr.To)
	assert.Equal(t, 0, w.latest(po.ID()).Index())
}

func TestAppendSnapshot_FulfilledOrderIsClosed(t *testing.T) {
	w := newWorld(t)
	so := w.create(order.Sales, newLine(t, kernel.NewUUID(), 1))

	path := []order.Status{order.Confirmed, order.Preparing, order.InDelivery, order.Received, order.Fulfilled}
	for i, st := range path {
		s := w.mustAppend(so.ID(), st, nil)
		assert.Equal(t, i+1, s.Index())
		assert.Equal(t, st, s.Status())
	}

	for _, st := range []order.Status{order.Fulfilled, order.Cancelled, order.Received, order.Quotation} {
		_, err := w.append(so.ID(), st, nil)
		require.ErrorIs(t, err, order.ErrTerminalState, st.String())
	}

	history, err := w.repo().LoadHistory(t.Context(), so.ID())
	require.NoError(t, err)
	require.Len(t, history, 6)
	for i, entry := range history {
		assert.Equal(t, i, entry.Index)
	}
	assert.Equal(t, order.Fulfilled, history[5].Status)
}

func TestAppendSnapshot_ConcurrentAllocationsOnOneLine(t *testing.T) {
	w := newWorld(t)
	part := kernel.NewUUID()
	po := w.create(order.Purchase, newLine(t, part, 10))
	so1 := w.create(order.Sales, newLine(t, part, 6))
	so2 := w.create(order.Sales, newLine(t, part, 6))

	var arrived sync.WaitGroup
	arrived.Add(2)
	handler := func() commands.AppendSnapshotCommandHandler {
		once := &sync.Once{}
		factory := newMemoryFactory(w.store)
		factory.wrap = func(repo ports.OrderRepository) ports.OrderRepository {
			return barrierRepository{OrderRepository: repo, once: once, arrived: &arrived}
		}
		return commands.NewAppendSnapshotCommandHandler(factory, 3, w.observer)
	}

	results := make([]error, 2)
	g, ctx := errgroup.WithContext(t.Context())
	for i, so := range []*order.Identity{so1, so2} {
		h := handler()
		cmd, err := commands.NewAppendSnapshotCommand(so.ID(), kernel.NewUUID(), order.Quotation,
			[]order.PartLine{newLine(t, part, 6, linkTo(t, po.ID(), 0, 0, 6))}, "")
		require.NoError(t, err)
		g.Go(func() error {
			_, results[i] = h.Handle(ctx, cmd)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, order.ErrAllocationViolation)
		var violation *order.AllocationViolationError
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, 12, violation.Allocated)
		assert.Equal(t, 2, violation.Excess())
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, w.observer.retries)

	incoming, err := w.repo().IncomingAllocations(t.Context(), po.ID(), kernel.NewUUID())
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 6}, incoming)
}

// conflictRepository fails every save as if another writer always won the race.
type conflictRepository struct {
	ports.OrderRepository
	saves *atomic.Int32
}

func (r conflictRepository) SaveSnapshotAndIdentity(
	_ context.Context,
	_ *order.Snapshot,
	identity *order.Identity,
	expectedPriorIndex int,
	_ []*order.Identity,
) error {
	r.saves.Add(1)
	return order.NewConcurrentModificationError(identity.ID(), expectedPriorIndex)
}

func TestAppendSnapshot_RetriesAreBounded(t *testing.T) {
	w := newWorld(t)
	so := w.create(order.Sales)

	saves := &atomic.Int32{}
	factory := newMemoryFactory(w.store)
	factory.wrap = func(repo ports.OrderRepository) ports.OrderRepository {
		return conflictRepository{OrderRepository: repo, saves: saves}
	}
	observer := &recordingObserver{}
	h := commands.NewAppendSnapshotCommandHandler(factory, 3, observer)

	cmd, err := commands.NewAppendSnapshotCommand(so.ID(), kernel.NewUUID(), order.Confirmed, nil, "")
	require.NoError(t, err)
	_, err = h.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, order.ErrConcurrentModification)
	assert.Equal(t, int32(3), saves.Load())
	assert.Equal(t, 2, observer.retries)
	assert.Equal(t, []string{commands.ReasonConcurrentModification}, observer.rejected)
}

func TestAppendSnapshot_OtherErrorsAreNotRetried(t *testing.T) {
	w := newWorld(t)
	po := w.create(order.Purchase)

	creates := 0
	factory := newMemoryFactory(w.store)
	factory.wrap = func(repo ports.OrderRepository) ports.OrderRepository {
		creates++
		return repo
	}
	h := commands.NewAppendSnapshotCommandHandler(factory, 3, nil)

	for _, to := range []order.Status{order.Preparing, order.InDelivery, order.Received} {
		cmd, err := commands.NewAppendSnapshotCommand(po.ID(), kernel.NewUUID(), to, nil, "")
		require.NoError(t, err)
		_, err = h.Handle(t.Context(), cmd)

		require.ErrorIs(t, err, order.ErrIllegalTransition, to.String())
		assert.NotErrorIs(t, err, errs.ErrValueIsInvalid)
	}
	assert.Equal(t, 3, creates)

	latest, err := w.repo().LoadLatestSnapshot(t.Context(), po.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, latest.Index())
}

func TestAppendSnapshot_UnknownOrder(t *testing.T) {
	w := newWorld(t)
	_, err := w.append(kernel.NewUUID(), order.Confirmed, nil)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestAppendSnapshot_ReadBack(t *testing.T) {
	w := newWorld(t)
	part := kernel.NewUUID()
	po := w.create(order.Purchase, newLine(t, part, 8))
	so := w.create(order.Sales, newLine(t, part, 5))

	written := w.mustAppend(so.ID(), order.Confirmed,
		[]order.PartLine{newLine(t, part, 5, linkTo(t, po.ID(), 0, 0, 5))})

	read, err := w.repo().LoadSnapshot(t.Context(), so.ID(), written.Index())
	require.NoError(t, err)
	assert.Equal(t, written.Status(), read.Status())
	assert.Equal(t, written.Parts(), read.Parts())
	assert.Equal(t, written.UpdatedBy(), read.UpdatedBy())

	identity, err := w.repo().LoadIdentity(t.Context(), so.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, identity.LatestIndex())
	assert.Equal(t, order.Confirmed, identity.LatestStatus())
}

func TestAppendSnapshot_CounterpartCannotShrinkBelowCommitments(t *testing.T) {
	w := newWorld(t)
	part := kernel.NewUUID()
	po := w.create(order.Purchase, newLine(t, part, 10))
	so := w.create(order.Sales, newLine(t, part, 6))
	w.mustAppend(so.ID(), order.Quotation, []order.PartLine{newLine(t, part, 6, linkTo(t, po.ID(), 0, 0, 6))})

	_, err := w.append(po.ID(), order.Confirmed, []order.PartLine{newLine(t, part, 5)})
	require.ErrorIs(t, err, order.ErrAllocationViolation)

	_, err = w.append(po.ID(), order.Confirmed, []order.PartLine{})
	require.ErrorIs(t, err, order.ErrAllocationViolation)

	w.mustAppend(po.ID(), order.Confirmed, []order.PartLine{newLine(t, part, 6)})
}

func TestAppendSnapshot_CancelledOrderIsClosed(t *testing.T) {
	w := newWorld(t)
	part := kernel.NewUUID()
	po := w.create(order.Purchase, newLine(t, part, 4))
	w.mustAppend(po.ID(), order.Confirmed, nil)

	cancelled := w.mustAppend(po.ID(), order.Cancelled, nil)
	assert.Equal(t, 2, cancelled.Index())

	for _, st := range []order.Status{order.Cancelled, order.Confirmed, order.Received, order.Fulfilled} {
		_, err := w.append(po.ID(), st, nil)

		var terminalErr *order.TerminalStateError
		require.ErrorAs(t, err, &terminalErr, st.String())
		assert.Equal(t, order.Cancelled, terminalErr.Status)
	}
	_, err := w.append(po.ID(), order.Cancelled, []order.PartLine{newLine(t, part, 9)})
	require.ErrorIs(t, err, order.ErrTerminalState)

	assert.Equal(t, 2, w.latest(po.ID()).Index())
}

func TestAppendSnapshot_CancelledOrderReleasesItsLinks(t *testing.T) {
	w := newWorld(t)
	part := kernel.NewUUID()
	po := w.create(order.Purchase, newLine(t, part, 10))
	so1 := w.create(order.Sales, newLine(t, part, 6))
	so2 := w.create(order.Sales, newLine(t, part, 10))

	w.mustAppend(so1.ID(), order.Quotation, []order.PartLine{newLine(t, part, 6, linkTo(t, po.ID(), 0, 0, 6))})
	_, err := w.append(so2.ID(), order.Quotation, []order.PartLine{newLine(t, part, 10, linkTo(t, po.ID(), 0, 0, 10))})
	require.ErrorIs(t, err, order.ErrAllocationViolation)

	w.mustAppend(so1.ID(), order.Cancelled, nil)
	w.mustAppend(so2.ID(), order.Quotation, []order.PartLine{newLine(t, part, 10, linkTo(t, po.ID(), 0, 0, 10))})
}

// TestAppendSnapshot_InvariantsHoldOverRandomHistories drives random appends
// and checks after every step that no line is over-committed, indices are
// gapless and the cached status matches the latest snapshot.
func TestAppendSnapshot_InvariantsHoldOverRandomHistories(t *testing.T) {
	w := newWorld(t)
	rng := rand.New(rand.NewPCG(7, 42))
	parts := []kernel.UUID{kernel.NewUUID(), kernel.NewUUID()}
	ledger := services.NewFulfillmentLedger()

	randomLines := func() []order.PartLine {
		n := 1 + rng.IntN(2)
		lines := make([]order.PartLine, 0, n)
		for range n {
			lines = append(lines, newLine(t, parts[rng.IntN(len(parts))], 1+rng.IntN(10)))
		}
		return lines
	}

	var sales, purchases []*order.Identity
	for range 4 {
		sales = append(sales, w.create(order.Sales, randomLines()...))
		purchases = append(purchases, w.create(order.Purchase, randomLines()...))
	}

	cancelled := 0
	for step := range 200 {
		var target *order.Identity
		var counterparts []*order.Identity
		if rng.IntN(2) == 0 {
			target, counterparts = sales[rng.IntN(len(sales))], purchases
		} else {
			target, counterparts = purchases[rng.IntN(len(purchases))], sales
		}

		current := w.latest(target.ID())
		status := current.Status()
		switch roll := rng.IntN(20); {
		case roll == 0 && order.CanTransition(target.Kind(), status, order.Cancelled):
			status = order.Cancelled
		case roll < 5:
			if next, ok := order.NextStatus(target.Kind(), status); ok {
				status = next
			}
		}

		// a cancellation keeps the lines; its links stop counting
		var lines []order.PartLine
		for _, l := range current.Parts() {
			if status == order.Cancelled {
				break
			}
			var links []order.FulfillmentLink
			if rng.IntN(2) == 0 {
				cp := counterparts[rng.IntN(len(counterparts))]
				cpLatest := w.latest(cp.ID())
				if cpLatest.PartCount() > 0 {
					links = append(links, linkTo(t, cp.ID(), cpLatest.Index(), rng.IntN(cpLatest.PartCount()), 1+rng.IntN(6)))
				}
			}
			line, err := order.NewPartLine(l.PartID(), max(1, l.Quantity()+rng.IntN(5)-2), "", links)
			require.NoError(t, err)
			lines = append(lines, line)
		}

		_, err := w.append(target.ID(), status, lines)
		if err == nil && status == order.Cancelled {
			cancelled++
		}
		if err != nil {
			expected := errors.Is(err, order.ErrAllocationViolation) ||
				errors.Is(err, order.ErrTerminalState) ||
				errors.Is(err, errs.ErrValueIsInvalid)
			require.True(t, expected, "step %d: unexpected error %v", step, err)
		}

		latest, err := w.repo().ListLatestSnapshots(t.Context())
		require.NoError(t, err)
		require.Empty(t, ledger.Audit(latest), "step %d", step)

		for _, s := range latest {
			identity, err := w.repo().LoadIdentity(t.Context(), s.OrderID())
			require.NoError(t, err)
			require.Equal(t, identity.LatestIndex(), s.Index())
			require.Equal(t, identity.LatestStatus(), s.Status())

			history, err := w.repo().LoadHistory(t.Context(), s.OrderID())
			require.NoError(t, err)
			for i, entry := range history {
				require.Equal(t, i, entry.Index)
			}
		}
	}
	assert.Positive(t, cancelled, "no order was cancelled; pick another seed")
}
