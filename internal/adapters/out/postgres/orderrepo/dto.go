// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// An order is stored as one mutable identity row plus immutable snapshot rows, each
// snapshot owning its part lines and their fulfillment links.
package orderrepo

import (
	"time"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// IdentityDTO is the only row of an order that is ever updated. latest_index,
// latest_status and revision move together under an optimistic check.
type IdentityDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind           int       `gorm:"type:smallint;not null;uniqueIndex:idx_order_kind_number,priority:1"`
	OrderNumber    string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_order_kind_number,priority:2"`
	CounterpartyID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedBy      uuid.UUID `gorm:"type:uuid;not null"`
	LatestStatus   int       `gorm:"type:smallint;not null;index"`
	LatestIndex    int       `gorm:"type:int;not null"`
	Revision       int64     `gorm:"type:bigint;not null;default:0"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName specifies the database table name for order identities.
func (IdentityDTO) TableName() string {
	return "order_identities"
}

// SnapshotDTO is one immutable version of an order.
type SnapshotDTO struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_snapshot_order_index,priority:1"`
	SnapshotIndex  int           `gorm:"type:int;not null;uniqueIndex:idx_snapshot_order_index,priority:2"`
	Status         int           `gorm:"type:smallint;not null"`
	AdditionalInfo string        `gorm:"type:text"`
	UpdatedBy      uuid.UUID     `gorm:"type:uuid;not null"`
	CreatedAt      time.Time     `gorm:"not null"`
	PartLines      []PartLineDTO `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order snapshots.
func (SnapshotDTO) TableName() string {
	return "order_snapshots"
}

// PartLineDTO is a line of a snapshot, addressed by LineIndex.
type PartLineDTO struct {
	ID             uuid.UUID            `gorm:"type:uuid;primaryKey"`
	SnapshotID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	LineIndex      int                  `gorm:"type:int;not null"`
	PartID         uuid.UUID            `gorm:"type:uuid;not null"`
	Quantity       int                  `gorm:"type:int;not null"`
	AdditionalInfo string               `gorm:"type:text"`
	Links          []FulfillmentLinkDTO `gorm:"foreignKey:PartLineID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for part lines.
func (PartLineDTO) TableName() string {
	return "part_lines"
}

// FulfillmentLinkDTO is an allocation from a part line to a counterpart line.
// CounterpartOrderID is indexed for the incoming allocation sums.
type FulfillmentLinkDTO struct {
	ID                       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PartLineID               uuid.UUID `gorm:"type:uuid;not null;index"`
	Position                 int       `gorm:"type:int;not null"`
	CounterpartOrderID       uuid.UUID `gorm:"type:uuid;not null;index"`
	CounterpartSnapshotIndex int       `gorm:"type:int;not null"`
	CounterpartLineIndex     int       `gorm:"type:int;not null"`
	Quantity                 int       `gorm:"type:int;not null"`
}

// TableName specifies the database table name for fulfillment links.
func (FulfillmentLinkDTO) TableName() string {
	return "fulfillment_links"
}

// SequenceDTO holds the last order number handed out per kind.
type SequenceDTO struct {
	Kind      int   `gorm:"type:smallint;primaryKey;autoIncrement:false"`
	LastValue int64 `gorm:"type:bigint;not null"`
}

// TableName specifies the database table name for order number sequences.
func (SequenceDTO) TableName() string {
	return "order_sequences"
}

// Models lists every table of the package, in dependency order, for AutoMigrate.
func Models() []any {
	return []any{&IdentityDTO{}, &SnapshotDTO{}, &PartLineDTO{}, &FulfillmentLinkDTO{}, &SequenceDTO{}}
}

func identityFromDomain(identity *order.Identity) IdentityDTO {
	return IdentityDTO{
		ID:             identity.ID().Bytes(),
		Kind:           int(identity.Kind()),
		OrderNumber:    identity.OrderNumber(),
		CounterpartyID: identity.CounterpartyID().Bytes(),
		CreatedBy:      identity.CreatedBy().Bytes(),
		LatestStatus:   int(identity.LatestStatus()),
		LatestIndex:    identity.LatestIndex(),
		Revision:       identity.Revision(),
		CreatedAt:      identity.CreatedAt(),
	}
}

func identityToDomain(dto IdentityDTO) (*order.Identity, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	counterpartyID, err := kernel.UUIDFromBytes(dto.CounterpartyID[:])
	if err != nil {
		return nil, err
	}
	createdBy, err := kernel.UUIDFromBytes(dto.CreatedBy[:])
	if err != nil {
		return nil, err
	}

	return order.RestoreIdentity(
		id,
		order.Kind(dto.Kind),
		dto.OrderNumber,
		counterpartyID,
		createdBy,
		order.Status(dto.LatestStatus),
		dto.LatestIndex,
		dto.Revision,
		dto.CreatedAt.UTC(),
	)
}

// snapshotFromDomain assigns fresh row ids; snapshots are only ever inserted.
func snapshotFromDomain(s *order.Snapshot) SnapshotDTO {
	snapshotID := uuid.New()
	lines := make([]PartLineDTO, 0, s.PartCount())
	for i, line := range s.Parts() {
		lineID := uuid.New()
		links := make([]FulfillmentLinkDTO, 0, len(line.Allocations()))
		for j, l := range line.Allocations() {
			links = append(links, FulfillmentLinkDTO{
				ID:                       uuid.New(),
				PartLineID:               lineID,
				Position:                 j,
				CounterpartOrderID:       l.CounterpartOrderID().Bytes(),
				CounterpartSnapshotIndex: l.CounterpartSnapshotIndex(),
				CounterpartLineIndex:     l.CounterpartLineIndex(),
				Quantity:                 l.Quantity(),
			})
		}
		lines = append(lines, PartLineDTO{
			ID:             lineID,
			SnapshotID:     snapshotID,
			LineIndex:      i,
			PartID:         line.PartID().Bytes(),
			Quantity:       line.Quantity(),
			AdditionalInfo: line.AdditionalInfo(),
			Links:          links,
		})
	}

	return SnapshotDTO{
		ID:             snapshotID,
		OrderID:        s.OrderID().Bytes(),
		SnapshotIndex:  s.Index(),
		Status:         int(s.Status()),
		AdditionalInfo: s.AdditionalInfo(),
		UpdatedBy:      s.UpdatedBy().Bytes(),
		CreatedAt:      s.CreatedAt(),
		PartLines:      lines,
	}
}

// snapshotToDomain expects PartLines and their Links preloaded in index and
// position order.
func snapshotToDomain(dto SnapshotDTO) (*order.Snapshot, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	updatedBy, err := kernel.UUIDFromBytes(dto.UpdatedBy[:])
	if err != nil {
		return nil, err
	}

	lines := make([]order.PartLine, 0, len(dto.PartLines))
	for _, lineDTO := range dto.PartLines {
		partID, err := kernel.UUIDFromBytes(lineDTO.PartID[:])
		if err != nil {
			return nil, err
		}
		links := make([]order.FulfillmentLink, 0, len(lineDTO.Links))
		for _, linkDTO := range lineDTO.Links {
			counterpartID, err := kernel.UUIDFromBytes(linkDTO.CounterpartOrderID[:])
			if err != nil {
				return nil, err
			}
			link, err := order.NewFulfillmentLink(
				counterpartID,
				linkDTO.CounterpartSnapshotIndex,
				linkDTO.CounterpartLineIndex,
				linkDTO.Quantity,
			)
			if err != nil {
				return nil, err
			}
			links = append(links, link)
		}
		if len(links) == 0 {
			links = nil
		}
		line, err := order.NewPartLine(partID, lineDTO.Quantity, lineDTO.AdditionalInfo, links)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = nil
	}

	return order.RestoreSnapshot(
		orderID,
		dto.SnapshotIndex,
		order.Status(dto.Status),
		dto.AdditionalInfo,
		lines,
		updatedBy,
		dto.CreatedAt.UTC(),
	)
}
