package cmd

import (
	"log/slog"
	"net/http"

	httpadapter "bilbo/internal/adapters/in/http"
	"bilbo/internal/adapters/out/memory"
	"bilbo/internal/adapters/out/postgres"
	"bilbo/internal/adapters/out/rediscache"
	"bilbo/internal/core/application/usecases/commands"
	"bilbo/internal/core/application/usecases/queries"
	"bilbo/internal/core/ports"
	"bilbo/internal/jobs"
	"bilbo/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs    Config
	uowFactory ports.UnitOfWorkFactory
	reader     ports.SnapshotReader
	directory  ports.OrderDirectory
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewCompositionRoot wires the storage backend. A nil gormDB selects the
// in-memory store; a nil redisClient disables the snapshot cache.
func NewCompositionRoot(configs Config, gormDB *gorm.DB, redisClient redis.UniversalClient, logger *slog.Logger) CompositionRoot {
	var uowFactory ports.UnitOfWorkFactory
	if gormDB != nil {
		uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB)
	} else {
		uowFactory = memory.NewUnitOfWorkFactory(memory.NewStore())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// outside a transaction the repository reads straight from the pool
	repo := uowFactory.Create().OrderRepository()
	var reader ports.SnapshotReader = repo
	if redisClient != nil {
		reader = rediscache.NewSnapshotCache(repo, redisClient,
			rediscache.WithTTL(configs.SnapshotCacheTTL),
			rediscache.WithLogger(logger),
			rediscache.WithLookupCounter(m.CacheLookups),
		)
	}

	return CompositionRoot{
		configs:    configs,
		uowFactory: uowFactory,
		reader:     reader,
		directory:  repo,
		registry:   registry,
		metrics:    m,
		logger:     logger,
	}
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.metrics)
}

func (c *CompositionRoot) CreateAppendSnapshotCommandHandler() commands.AppendSnapshotCommandHandler {
	return commands.NewAppendSnapshotCommandHandler(c.orderUoWFactory(), c.configs.AppendMaxAttempts, c.metrics)
}

func (c *CompositionRoot) CreateGetLatestSnapshotQueryHandler() queries.GetLatestSnapshotQueryHandler {
	return queries.NewGetLatestSnapshotQueryHandler(c.reader)
}

func (c *CompositionRoot) CreateGetSnapshotAtQueryHandler() queries.GetSnapshotAtQueryHandler {
	return queries.NewGetSnapshotAtQueryHandler(c.reader)
}

func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() queries.GetOrderHistoryQueryHandler {
	return queries.NewGetOrderHistoryQueryHandler(c.reader)
}

func (c *CompositionRoot) CreateGetOpenOrdersQueryHandler() queries.GetOpenOrdersQueryHandler {
	return queries.NewGetOpenOrdersQueryHandler(c.directory)
}

func (c *CompositionRoot) CreateAuditAllocationsQueryHandler() queries.AuditAllocationsQueryHandler {
	return queries.NewAuditAllocationsQueryHandler(c.directory)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	audit := jobs.NewLedgerAuditJob(
		c.CreateAuditAllocationsQueryHandler(),
		c.metrics,
		c.configs.LedgerAuditSchedule,
		c.logger,
	)
	return jobs.NewJobManager(c.logger, audit)
}

func (c *CompositionRoot) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	server := httpadapter.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateAppendSnapshotCommandHandler(),
		c.CreateGetLatestSnapshotQueryHandler(),
		c.CreateGetSnapshotAtQueryHandler(),
		c.CreateGetOrderHistoryQueryHandler(),
		c.CreateGetOpenOrdersQueryHandler(),
		c.logger,
	)
	return httpadapter.NewRouter(server, c.MetricsHandler(), c.metrics, c.logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
