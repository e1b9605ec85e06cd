package rediscache_test

import (
	"context"
	"testing"
	"time"

	"bilbo/internal/adapters/out/memory"
	"bilbo/internal/adapters/out/rediscache"
	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/core/ports"
	"bilbo/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// countingReader records which snapshots were read from the wrapped repository.
type countingReader struct {
	mock.Mock
	ports.SnapshotReader
}

func (r *countingReader) LoadSnapshot(ctx context.Context, id kernel.UUID, index int) (*order.Snapshot, error) {
	r.Called(id, index)
	return r.SnapshotReader.LoadSnapshot(ctx, id, index)
}

type SnapshotCacheIntegrationTestSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
	repo      ports.OrderRepository
	reader    *countingReader
	lookups   *prometheus.CounterVec
	cache     *rediscache.SnapshotCache
}

func (suite *SnapshotCacheIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	suite.Require().NoError(err)
	suite.container = container

	addr, err := container.ConnectionString(ctx)
	suite.Require().NoError(err)
	opts, err := redis.ParseURL(addr)
	suite.Require().NoError(err)

	suite.client = redis.NewClient(opts)
	suite.Require().NoError(suite.client.Ping(ctx).Err())
}

func (suite *SnapshotCacheIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.client.FlushAll(suite.T().Context()).Err())

	suite.repo = memory.NewUnitOfWorkFactory(memory.NewStore()).Create().OrderRepository()
	suite.reader = &countingReader{SnapshotReader: suite.repo}
	suite.reader.On("LoadSnapshot", mock.Anything, mock.Anything)
	suite.lookups = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "lookups_total"}, []string{"result"})
	suite.cache = rediscache.NewSnapshotCache(suite.reader, suite.client,
		rediscache.WithTTL(time.Minute),
		rediscache.WithLookupCounter(suite.lookups),
	)
}

func (suite *SnapshotCacheIntegrationTestSuite) TearDownSuite() {
	if suite.client != nil {
		suite.Require().NoError(suite.client.Close())
	}
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *SnapshotCacheIntegrationTestSuite) TestLoadSnapshot_SecondReadIsServedFromRedis() {
	ctx := suite.T().Context()
	part := kernel.NewUUID()
	po := suite.seed(order.Purchase, suite.line(part, 10))
	so := suite.seed(order.Sales, suite.line(part, 4))
	link, err := order.NewFulfillmentLink(po.ID(), 0, 0, 3)
	suite.Require().NoError(err)
	line, err := order.NewPartLine(part, 4, "bolts", []order.FulfillmentLink{link})
	suite.Require().NoError(err)
	written := suite.append(so, order.Confirmed, []order.PartLine{line})

	first, err := suite.cache.LoadSnapshot(ctx, so.ID(), 1)
	suite.Require().NoError(err)
	second, err := suite.cache.LoadSnapshot(ctx, so.ID(), 1)
	suite.Require().NoError(err)

	suite.reader.AssertNumberOfCalls(suite.T(), "LoadSnapshot", 1)
	suite.InDelta(1, testutil.ToFloat64(suite.lookups.WithLabelValues("miss")), 0)
	suite.InDelta(1, testutil.ToFloat64(suite.lookups.WithLabelValues("hit")), 0)

	for _, s := range []*order.Snapshot{first, second} {
		suite.Equal(written.Index(), s.Index())
		suite.Equal(order.Confirmed, s.Status())
		suite.Equal(written.UpdatedBy(), s.UpdatedBy())
		suite.True(written.CreatedAt().Equal(s.CreatedAt()))
		suite.Equal(map[int]int{0: 3}, s.OutgoingTo(po.ID()))
		got, err := s.Part(0)
		suite.Require().NoError(err)
		suite.Equal("bolts", got.AdditionalInfo())
	}

	ttl, err := suite.client.TTL(ctx, "bilbo:snapshot:"+so.ID().String()+":1").Result()
	suite.Require().NoError(err)
	suite.Positive(ttl)
}

func (suite *SnapshotCacheIntegrationTestSuite) TestLoadLatestSnapshot_FollowsIdentity() {
	ctx := suite.T().Context()
	so := suite.seed(order.Sales)

	latest, err := suite.cache.LoadLatestSnapshot(ctx, so.ID())
	suite.Require().NoError(err)
	suite.Equal(0, latest.Index())

	suite.append(so, order.Confirmed, nil)

	latest, err = suite.cache.LoadLatestSnapshot(ctx, so.ID())
	suite.Require().NoError(err)
	suite.Equal(1, latest.Index())
	suite.Equal(order.Confirmed, latest.Status())
}

func (suite *SnapshotCacheIntegrationTestSuite) TestLoadSnapshot_MissingIsNotCached() {
	ctx := suite.T().Context()
	id := kernel.NewUUID()

	_, err := suite.cache.LoadSnapshot(ctx, id, 0)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	n, err := suite.client.Exists(ctx, "bilbo:snapshot:"+id.String()+":0").Result()
	suite.Require().NoError(err)
	suite.Zero(n)
}

func (suite *SnapshotCacheIntegrationTestSuite) seed(kind order.Kind, lines ...order.PartLine) *order.Identity {
	ctx := suite.T().Context()
	number, err := suite.repo.NextOrderNumber(ctx, kind)
	suite.Require().NoError(err)
	identity, err := order.NewIdentity(kernel.NewUUID(), kind, number, kernel.NewUUID(), kernel.NewUUID())
	suite.Require().NoError(err)
	s0, err := identity.InitialSnapshot(lines, "")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Create(ctx, identity, s0))
	return identity
}

func (suite *SnapshotCacheIntegrationTestSuite) append(identity *order.Identity, status order.Status, parts []order.PartLine) *order.Snapshot {
	ctx := suite.T().Context()
	latest, err := suite.repo.LoadLatestSnapshot(ctx, identity.ID())
	suite.Require().NoError(err)
	next, err := identity.PrepareSnapshot(latest, kernel.NewUUID(), status, parts, "")
	suite.Require().NoError(err)
	prior := identity.LatestIndex()
	suite.Require().NoError(identity.RecordSnapshot(next))
	suite.Require().NoError(suite.repo.SaveSnapshotAndIdentity(ctx, next, identity, prior, nil))
	return next
}

func (suite *SnapshotCacheIntegrationTestSuite) line(part kernel.UUID, quantity int) order.PartLine {
	l, err := order.NewPartLine(part, quantity, "", nil)
	suite.Require().NoError(err)
	return l
}

func TestSnapshotCacheIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(SnapshotCacheIntegrationTestSuite))
}

func TestSnapshotCache_UnreachableRedisFallsBack(t *testing.T) {
	ctx := t.Context()
	repo := memory.NewUnitOfWorkFactory(memory.NewStore()).Create().OrderRepository()
	number, err := repo.NextOrderNumber(ctx, order.Sales)
	require.NoError(t, err)
	identity, err := order.NewIdentity(kernel.NewUUID(), order.Sales, number, kernel.NewUUID(), kernel.NewUUID())
	require.NoError(t, err)
	s0, err := identity.InitialSnapshot(nil, "offline")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, identity, s0))

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "lookups_total"}, []string{"result"})
	cache := rediscache.NewSnapshotCache(repo, client, rediscache.WithLookupCounter(lookups))

	latest, err := cache.LoadLatestSnapshot(ctx, identity.ID())
	require.NoError(t, err)
	assert.Equal(t, "offline", latest.AdditionalInfo())
	assert.InDelta(t, 1, testutil.ToFloat64(lookups.WithLabelValues("error")), 0)
}
