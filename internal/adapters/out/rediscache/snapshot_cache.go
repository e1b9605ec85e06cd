// Package rediscache serves immutable order snapshots from Redis.
//
// A snapshot never changes once written, so (order id, index) is a stable cache
// key and entries need no invalidation. Identities are mutable and always come
// from the wrapped reader; LoadLatestSnapshot resolves the latest index there
// first and then reads the snapshot through the cache.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	snapshotKeyPrefix = "bilbo:snapshot:"

	DefaultTTL = 24 * time.Hour
)

// SnapshotCache decorates a ports.SnapshotReader. Redis failures are logged and
// the wrapped reader is used instead, so the cache never turns into an outage.
type SnapshotCache struct {
	inner   ports.SnapshotReader
	client  redis.UniversalClient
	ttl     time.Duration
	logger  *slog.Logger
	lookups *prometheus.CounterVec
}

// Option configures a SnapshotCache.
type Option func(*SnapshotCache)

func WithTTL(ttl time.Duration) Option {
	return func(c *SnapshotCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *SnapshotCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLookupCounter counts lookups by a "result" label of hit, miss or error.
func WithLookupCounter(counter *prometheus.CounterVec) Option {
	return func(c *SnapshotCache) {
		c.lookups = counter
	}
}

func NewSnapshotCache(inner ports.SnapshotReader, client redis.UniversalClient, opts ...Option) *SnapshotCache {
	c := &SnapshotCache{
		inner:  inner,
		client: client,
		ttl:    DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = c.logger.With("component", "snapshot-cache")
	return c
}

func (c *SnapshotCache) LoadIdentity(ctx context.Context, id kernel.UUID) (*order.Identity, error) {
	return c.inner.LoadIdentity(ctx, id)
}

func (c *SnapshotCache) LoadHistory(ctx context.Context, id kernel.UUID) ([]order.HistoryEntry, error) {
	return c.inner.LoadHistory(ctx, id)
}

func (c *SnapshotCache) LoadLatestSnapshot(ctx context.Context, id kernel.UUID) (*order.Snapshot, error) {
	identity, err := c.inner.LoadIdentity(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.LoadSnapshot(ctx, id, identity.LatestIndex())
}

func (c *SnapshotCache) LoadSnapshot(ctx context.Context, id kernel.UUID, index int) (*order.Snapshot, error) {
	key := snapshotKey(id, index)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		snapshot, decodeErr := decodeSnapshot(raw)
		if decodeErr == nil {
			c.count("hit")
			return snapshot, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key, "error", decodeErr)
		c.count("error")
	case errors.Is(err, redis.Nil):
		c.count("miss")
	default:
		c.logger.WarnContext(ctx, "snapshot cache read failed", "key", key, "error", err)
		c.count("error")
	}

	snapshot, err := c.inner.LoadSnapshot(ctx, id, index)
	if err != nil {
		return nil, err
	}

	if raw, err := encodeSnapshot(snapshot); err != nil {
		c.logger.WarnContext(ctx, "snapshot cache encode failed", "key", key, "error", err)
	} else if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "snapshot cache write failed", "key", key, "error", err)
	}

	return snapshot, nil
}

func (c *SnapshotCache) count(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}

func snapshotKey(id kernel.UUID, index int) string {
	return fmt.Sprintf("%s%s:%d", snapshotKeyPrefix, id, index)
}

type linkRecord struct {
	CounterpartOrderID       string `json:"counterpart_order_id"`
	CounterpartSnapshotIndex int    `json:"counterpart_snapshot_index"`
	CounterpartLineIndex     int    `json:"counterpart_line_index"`
	Quantity                 int    `json:"quantity"`
}

type lineRecord struct {
	PartID         string       `json:"part_id"`
	Quantity       int          `json:"quantity"`
	AdditionalInfo string       `json:"additional_info,omitempty"`
	Allocations    []linkRecord `json:"allocations,omitempty"`
}

type snapshotRecord struct {
	OrderID        string       `json:"order_id"`
	Index          int          `json:"index"`
	Status         string       `json:"status"`
	AdditionalInfo string       `json:"additional_info,omitempty"`
	Parts          []lineRecord `json:"parts,omitempty"`
	UpdatedBy      string       `json:"updated_by"`
	CreatedAt      time.Time    `json:"created_at"`
}

func encodeSnapshot(s *order.Snapshot) ([]byte, error) {
	record := snapshotRecord{
		OrderID:        s.OrderID().String(),
		Index:          s.Index(),
		Status:         s.Status().String(),
		AdditionalInfo: s.AdditionalInfo(),
		UpdatedBy:      s.UpdatedBy().String(),
		CreatedAt:      s.CreatedAt(),
	}
	for _, line := range s.Parts() {
		lr := lineRecord{
			PartID:         line.PartID().String(),
			Quantity:       line.Quantity(),
			AdditionalInfo: line.AdditionalInfo(),
		}
		for _, link := range line.Allocations() {
			lr.Allocations = append(lr.Allocations, linkRecord{
				CounterpartOrderID:       link.CounterpartOrderID().String(),
				CounterpartSnapshotIndex: link.CounterpartSnapshotIndex(),
				CounterpartLineIndex:     link.CounterpartLineIndex(),
				Quantity:                 link.Quantity(),
			})
		}
		record.Parts = append(record.Parts, lr)
	}
	return json.Marshal(record)
}

func decodeSnapshot(raw []byte) (*order.Snapshot, error) {
	var record snapshotRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromString(record.OrderID)
	if err != nil {
		return nil, err
	}
	updatedBy, err := kernel.UUIDFromString(record.UpdatedBy)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(record.Status)
	if err != nil {
		return nil, err
	}

	var lines []order.PartLine
	for _, lr := range record.Parts {
		partID, err := kernel.UUIDFromString(lr.PartID)
		if err != nil {
			return nil, err
		}
		var links []order.FulfillmentLink
		for _, l := range lr.Allocations {
			counterpartID, err := kernel.UUIDFromString(l.CounterpartOrderID)
			if err != nil {
				return nil, err
			}
			link, err := order.NewFulfillmentLink(counterpartID, l.CounterpartSnapshotIndex, l.CounterpartLineIndex, l.Quantity)
			if err != nil {
				return nil, err
			}
			links = append(links, link)
		}
		line, err := order.NewPartLine(partID, lr.Quantity, lr.AdditionalInfo, links)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return order.RestoreSnapshot(orderID, record.Index, status, record.AdditionalInfo, lines, updatedBy, record.CreatedAt)
}
