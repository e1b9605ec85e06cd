package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bilbo/cmd"
	"bilbo/internal/adapters/out/postgres/orderrepo"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: configs.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB := openDatabase(configs)
	var snapshotCache redis.UniversalClient
	if redisClient := openRedis(ctx, configs); redisClient != nil {
		defer redisClient.Close()
		snapshotCache = redisClient
	}

	app := cmd.NewCompositionRoot(configs, gormDB, snapshotCache, logger)

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	if err := startWebServer(ctx, app, configs.HTTPPort, logger); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	configs, err := cmd.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return configs
}

func openDatabase(configs cmd.Config) *gorm.DB {
	if configs.Storage == cmd.StorageMemory {
		return nil
	}

	db, err := gorm.Open(gorm_postgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(orderrepo.Models()...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	return db
}

func openRedis(ctx context.Context, configs cmd.Config) *redis.Client {
	if configs.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: configs.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	return client
}

func startWebServer(ctx context.Context, app cmd.CompositionRoot, port string, logger *slog.Logger) error {
	e, err := app.CreateRouter()
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "port", port)
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("HTTP server shutting down")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
