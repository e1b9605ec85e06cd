package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"bilbo/internal/adapters/out/rediscache"
	"bilbo/internal/core/application/usecases/commands"
	"bilbo/internal/jobs"
	"bilbo/internal/pkg/errs"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// Storage selects the order store: "postgres" or "memory".
	Storage string

	// RedisAddr enables the snapshot cache when set.
	RedisAddr        string
	SnapshotCacheTTL time.Duration

	AppendMaxAttempts   int
	LedgerAuditSchedule string
	LogLevel            slog.Level
}

// LoadConfig reads the configuration through getenv, usually os.Getenv, and
// applies defaults for everything optional.
func LoadConfig(getenv func(string) string) (Config, error) {
	config := Config{
		HTTPPort:            withDefault(getenv("HTTP_PORT"), "8080"),
		DBHost:              getenv("DB_HOST"),
		DBPort:              withDefault(getenv("DB_PORT"), "5432"),
		DBUser:              getenv("DB_USER"),
		DBPassword:          getenv("DB_PASSWORD"),
		DBName:              getenv("DB_NAME"),
		DBSslMode:           withDefault(getenv("DB_SSLMODE"), "disable"),
		Storage:             strings.ToLower(withDefault(getenv("STORAGE"), StoragePostgres)),
		RedisAddr:           getenv("REDIS_ADDR"),
		SnapshotCacheTTL:    rediscache.DefaultTTL,
		AppendMaxAttempts:   commands.DefaultAppendMaxAttempts,
		LedgerAuditSchedule: withDefault(getenv("LEDGER_AUDIT_SCHEDULE"), jobs.DefaultLedgerAuditSchedule),
		LogLevel:            slog.LevelInfo,
	}

	var parseErrs []error
	if raw := getenv("SNAPSHOT_CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			parseErrs = append(parseErrs, errs.NewValueIsInvalidErrorWithCause("SNAPSHOT_CACHE_TTL", err))
		}
		config.SnapshotCacheTTL = ttl
	}
	if raw := getenv("APPEND_MAX_ATTEMPTS"); raw != "" {
		attempts, err := strconv.Atoi(raw)
		if err != nil {
			parseErrs = append(parseErrs, errs.NewValueIsInvalidErrorWithCause("APPEND_MAX_ATTEMPTS", err))
		}
		config.AppendMaxAttempts = attempts
	}
	if raw := getenv("LOG_LEVEL"); raw != "" {
		if err := config.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			parseErrs = append(parseErrs, errs.NewValueIsInvalidErrorWithCause("LOG_LEVEL", err))
		}
	}
	if err := errors.Join(parseErrs...); err != nil {
		return Config{}, err
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the settings that have no usable default.
func (c Config) Validate() error {
	var problems []error

	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		for name, value := range map[string]string{"DB_HOST": c.DBHost, "DB_USER": c.DBUser, "DB_NAME": c.DBName} {
			if value == "" {
				problems = append(problems, errs.NewValueIsRequiredError(name))
			}
		}
	default:
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("STORAGE",
			fmt.Errorf("%q is neither %q nor %q", c.Storage, StoragePostgres, StorageMemory)))
	}

	if c.AppendMaxAttempts < 1 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("APPEND_MAX_ATTEMPTS", c.AppendMaxAttempts, 1, "unbounded"))
	}
	if c.SnapshotCacheTTL <= 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("SNAPSHOT_CACHE_TTL", c.SnapshotCacheTTL, "1ns", "unbounded"))
	}

	return errors.Join(problems...)
}

// DSN renders the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
