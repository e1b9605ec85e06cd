package commands_test

import (
	"context"
	"sync"

	"bilbo/internal/adapters/out/memory"
	"bilbo/internal/core/application/usecases/commands"
	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) NextOrderNumber(ctx context.Context, kind order.Kind) (string, error) {
	args := m.Called(ctx, kind)
	return args.String(0), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, identity *order.Identity, snapshot *order.Snapshot) error {
	args := m.Called(ctx, identity, snapshot)
	return args.Error(0)
}

func (m *MockOrderRepository) LoadIdentity(ctx context.Context, id kernel.UUID) (*order.Identity, error) {
	args := m.Called(ctx, id)
	identity, _ := args.Get(0).(*order.Identity)
	return identity, args.Error(1)
}

func (m *MockOrderRepository) LoadSnapshot(ctx context.Context, id kernel.UUID, index int) (*order.Snapshot, error) {
	args := m.Called(ctx, id, index)
	snapshot, _ := args.Get(0).(*order.Snapshot)
	return snapshot, args.Error(1)
}

func (m *MockOrderRepository) LoadLatestSnapshot(ctx context.Context, id kernel.UUID) (*order.Snapshot, error) {
	args := m.Called(ctx, id)
	snapshot, _ := args.Get(0).(*order.Snapshot)
	return snapshot, args.Error(1)
}

func (m *MockOrderRepository) LoadHistory(ctx context.Context, id kernel.UUID) ([]order.HistoryEntry, error) {
	args := m.Called(ctx, id)
	entries, _ := args.Get(0).([]order.HistoryEntry)
	return entries, args.Error(1)
}

func (m *MockOrderRepository) IncomingAllocations(ctx context.Context, counterpartID, excludeOrderID kernel.UUID) (map[int]int, error) {
	args := m.Called(ctx, counterpartID, excludeOrderID)
	totals, _ := args.Get(0).(map[int]int)
	return totals, args.Error(1)
}

func (m *MockOrderRepository) ListOpenOrders(ctx context.Context, kind order.Kind) ([]*order.Identity, error) {
	args := m.Called(ctx, kind)
	identities, _ := args.Get(0).([]*order.Identity)
	return identities, args.Error(1)
}

func (m *MockOrderRepository) ListLatestSnapshots(ctx context.Context) ([]*order.Snapshot, error) {
	args := m.Called(ctx)
	snapshots, _ := args.Get(0).([]*order.Snapshot)
	return snapshots, args.Error(1)
}

func (m *MockOrderRepository) SaveSnapshotAndIdentity(
	ctx context.Context,
	snapshot *order.Snapshot,
	identity *order.Identity,
	expectedPriorIndex int,
	counterparts []*order.Identity,
) error {
	args := m.Called(ctx, snapshot, identity, expectedPriorIndex, counterparts)
	return args.Error(0)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) TrackedOrders() []kernel.UUID {
	return nil
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

// memoryFactory adapts the in-memory store to commands.OrderUoWFactory.
type memoryFactory struct {
	inner *memory.UnitOfWorkFactory
	wrap  func(ports.OrderRepository) ports.OrderRepository
}

func newMemoryFactory(store *memory.Store) *memoryFactory {
	return &memoryFactory{inner: memory.NewUnitOfWorkFactory(store)}
}

func (f *memoryFactory) Create() commands.OrderUoW {
	return wrappedUoW{UnitOfWork: f.inner.Create(), wrap: f.wrap}
}

type wrappedUoW struct {
	ports.UnitOfWork
	wrap func(ports.OrderRepository) ports.OrderRepository
}

func (u wrappedUoW) OrderRepository() ports.OrderRepository {
	repo := u.UnitOfWork.OrderRepository()
	if u.wrap != nil {
		return u.wrap(repo)
	}
	return repo
}

// barrierRepository holds the first save of its handler until every
// participant has validated, so all of them act on the same prior state.
type barrierRepository struct {
	ports.OrderRepository
	once    *sync.Once
	arrived *sync.WaitGroup
}

func (r barrierRepository) SaveSnapshotAndIdentity(
	ctx context.Context,
	snapshot *order.Snapshot,
	identity *order.Identity,
	expectedPriorIndex int,
	counterparts []*order.Identity,
) error {
	r.once.Do(func() {
		r.arrived.Done()
		r.arrived.Wait()
	})
	return r.OrderRepository.SaveSnapshotAndIdentity(ctx, snapshot, identity, expectedPriorIndex, counterparts)
}

type recordingObserver struct {
	mu       sync.Mutex
	created  int
	appended int
	retries  int
	rejected []string
}

func (o *recordingObserver) OrderCreated(order.Kind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created++
}

func (o *recordingObserver) SnapshotAppended(order.Kind, order.Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.appended++
}

func (o *recordingObserver) AppendRejected(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, reason)
}

func (o *recordingObserver) ConcurrentRetry() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retries++
}
