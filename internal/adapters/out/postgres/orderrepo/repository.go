package orderrepo

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// uniqueViolation is the postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// NextOrderNumber increments the per-kind sequence in a single upsert, so two
// concurrent callers never receive the same number.
func (r *GormOrderRepository) NextOrderNumber(ctx context.Context, kind order.Kind) (string, error) {
	if err := kind.Validate(); err != nil {
		return "", err
	}

	var value int64
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO order_sequences (kind, last_value) VALUES (?, 1)
		 ON CONFLICT (kind) DO UPDATE SET last_value = order_sequences.last_value + 1
		 RETURNING last_value`,
		int(kind),
	).Scan(&value).Error
	if err != nil {
		return "", err
	}

	return kind.FormatOrderNumber(value), nil
}

// Create inserts the identity and its snapshot 0 with all lines and links.
func (r *GormOrderRepository) Create(ctx context.Context, identity *order.Identity, snapshot *order.Snapshot) error {
	if err := identity.Validate(); err != nil {
		return err
	}
	if err := snapshot.Validate(); err != nil {
		return err
	}

	identityDTO := identityFromDomain(identity)
	if err := r.db.WithContext(ctx).Create(&identityDTO).Error; err != nil {
		if isUniqueViolation(err) {
			return errs.NewValueIsInvalidErrorWithCause("order number already exists", err)
		}
		return err
	}

	snapshotDTO := snapshotFromDomain(snapshot)
	if err := r.db.WithContext(ctx).Create(&snapshotDTO).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(identity.ID(), identity)
	return nil
}

func (r *GormOrderRepository) LoadIdentity(ctx context.Context, id kernel.UUID) (*order.Identity, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto IdentityDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return identityToDomain(dto)
}

func (r *GormOrderRepository) LoadSnapshot(ctx context.Context, id kernel.UUID, index int) (*order.Snapshot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto SnapshotDTO
	err := r.withLines(ctx).
		First(&dto, "order_id = ? AND snapshot_index = ?", id.Bytes(), index).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("snapshot", fmt.Sprintf("%s@%d", id, index))
		}
		return nil, err
	}

	return snapshotToDomain(dto)
}

// LoadLatestSnapshot joins the identity so the snapshot returned is the one
// latest_index points at, never a row inserted by an uncommitted append.
func (r *GormOrderRepository) LoadLatestSnapshot(ctx context.Context, id kernel.UUID) (*order.Snapshot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto SnapshotDTO
	err := r.withLines(ctx).
		Joins("JOIN order_identities oi ON oi.id = order_snapshots.order_id AND oi.latest_index = order_snapshots.snapshot_index").
		First(&dto, "order_snapshots.order_id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return snapshotToDomain(dto)
}

func (r *GormOrderRepository) LoadHistory(ctx context.Context, id kernel.UUID) ([]order.HistoryEntry, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dtos []SnapshotDTO
	err := r.db.WithContext(ctx).
		Select("snapshot_index", "status", "updated_by", "created_at").
		Where("order_id = ?", id.Bytes()).
		Order("snapshot_index").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	if len(dtos) == 0 {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}

	entries := make([]order.HistoryEntry, 0, len(dtos))
	for _, dto := range dtos {
		updatedBy, err := kernel.UUIDFromBytes(dto.UpdatedBy[:])
		if err != nil {
			return nil, err
		}
		entries = append(entries, order.HistoryEntry{
			Index:     dto.SnapshotIndex,
			Status:    order.Status(dto.Status),
			UpdatedBy: updatedBy,
			CreatedAt: dto.CreatedAt.UTC(),
		})
	}

	return entries, nil
}

type incomingRow struct {
	LineIndex int
	Total     int
}

// IncomingAllocations sums the links held by the latest snapshot of every
// non-cancelled order other than excludeOrderID and counterpartID itself.
func (r *GormOrderRepository) IncomingAllocations(
	ctx context.Context,
	counterpartID, excludeOrderID kernel.UUID,
) (map[int]int, error) {
	var rows []incomingRow
	err := r.db.WithContext(ctx).Raw(
		`SELECT fl.counterpart_line_index AS line_index, SUM(fl.quantity) AS total
		 FROM fulfillment_links fl
		 JOIN part_lines pl ON pl.id = fl.part_line_id
		 JOIN order_snapshots s ON s.id = pl.snapshot_id
		 JOIN order_identities oi ON oi.id = s.order_id AND oi.latest_index = s.snapshot_index
		 WHERE fl.counterpart_order_id = ?
		   AND oi.id <> ?
		   AND oi.id <> ?
		   AND oi.latest_status <> ?
		 GROUP BY fl.counterpart_line_index`,
		counterpartID.Bytes(), excludeOrderID.Bytes(), counterpartID.Bytes(), int(order.Cancelled),
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[int]int, len(rows))
	for _, row := range rows {
		totals[row.LineIndex] = row.Total
	}
	return totals, nil
}

func (r *GormOrderRepository) ListOpenOrders(ctx context.Context, kind order.Kind) ([]*order.Identity, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	var dtos []IdentityDTO
	err := r.db.WithContext(ctx).
		Where("kind = ? AND latest_status NOT IN ?", int(kind), []int{int(order.Fulfilled), int(order.Cancelled)}).
		Order("order_number").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	identities := make([]*order.Identity, 0, len(dtos))
	for _, dto := range dtos {
		identity, err := identityToDomain(dto)
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	return identities, nil
}

func (r *GormOrderRepository) ListLatestSnapshots(ctx context.Context) ([]*order.Snapshot, error) {
	var dtos []SnapshotDTO
	err := r.withLines(ctx).
		Joins("JOIN order_identities oi ON oi.id = order_snapshots.order_id AND oi.latest_index = order_snapshots.snapshot_index").
		Order("order_snapshots.order_id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	snapshots := make([]*order.Snapshot, 0, len(dtos))
	for _, dto := range dtos {
		s, err := snapshotToDomain(dto)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

// SaveSnapshotAndIdentity updates the identity rows of the target and of every
// counterpart in ascending id order, each under its optimistic check, and then
// inserts the snapshot. Any row that no longer matches what the caller observed
// aborts the save with a ConcurrentModificationError; the caller's transaction
// rollback discards the rows already updated.
func (r *GormOrderRepository) SaveSnapshotAndIdentity(
	ctx context.Context,
	snapshot *order.Snapshot,
	identity *order.Identity,
	expectedPriorIndex int,
	counterparts []*order.Identity,
) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	if err := identity.Validate(); err != nil {
		return err
	}

	rows := make([]*order.Identity, 0, len(counterparts)+1)
	rows = append(rows, identity)
	for _, c := range counterparts {
		if !c.ID().IsEqual(identity.ID()) {
			rows = append(rows, c)
		}
	}
	slices.SortFunc(rows, func(a, b *order.Identity) int { return a.ID().Compare(b.ID()) })

	db := r.db.WithContext(ctx)
	for _, row := range rows {
		var result *gorm.DB
		if row.ID().IsEqual(identity.ID()) {
			result = db.Model(&IdentityDTO{}).
				Where("id = ? AND latest_index = ? AND revision = ?", row.ID().Bytes(), expectedPriorIndex, row.Revision()).
				Updates(map[string]any{
					"latest_index":  snapshot.Index(),
					"latest_status": int(snapshot.Status()),
					"revision":      gorm.Expr("revision + 1"),
				})
		} else {
			result = db.Model(&IdentityDTO{}).
				Where("id = ? AND revision = ?", row.ID().Bytes(), row.Revision()).
				Update("revision", gorm.Expr("revision + 1"))
		}
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return order.NewConcurrentModificationError(row.ID(), expectedIndexOf(row, identity, expectedPriorIndex))
		}
	}

	dto := snapshotFromDomain(snapshot)
	if err := db.Create(&dto).Error; err != nil {
		if isUniqueViolation(err) {
			return order.NewConcurrentModificationError(identity.ID(), expectedPriorIndex)
		}
		return err
	}

	r.tracker.TrackAggregate(identity.ID(), identity)
	return nil
}

func (r *GormOrderRepository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("PartLines", func(db *gorm.DB) *gorm.DB { return db.Order("line_index") }).
		Preload("PartLines.Links", func(db *gorm.DB) *gorm.DB { return db.Order("position") })
}

func expectedIndexOf(row, target *order.Identity, expectedPriorIndex int) int {
	if row.ID().IsEqual(target.ID()) {
		return expectedPriorIndex
	}
	return row.LatestIndex()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
