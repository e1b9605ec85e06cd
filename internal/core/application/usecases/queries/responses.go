// Package queries contains read-only operations over orders. Handlers read
// through ports.SnapshotReader and ports.OrderDirectory and never open a unit of work.
package queries

import (
	"time"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
)

// FulfillmentLinkResponse is the read model of a fulfillment link.
type FulfillmentLinkResponse struct {
	CounterpartOrderID       kernel.UUID
	CounterpartSnapshotIndex int
	CounterpartLineIndex     int
	Quantity                 int
}

// PartLineResponse is the read model of a part line.
type PartLineResponse struct {
	PartID         kernel.UUID
	Quantity       int
	AdditionalInfo string
	Allocations    []FulfillmentLinkResponse
}

// SnapshotResponse is the read model of one order snapshot.
type SnapshotResponse struct {
	OrderID        kernel.UUID
	Index          int
	Status         order.Status
	AdditionalInfo string
	Parts          []PartLineResponse
	UpdatedBy      kernel.UUID
	CreatedAt      time.Time
}

// NewSnapshotResponse flattens a snapshot into its read model.
func NewSnapshotResponse(s *order.Snapshot) SnapshotResponse {
	parts := make([]PartLineResponse, 0, s.PartCount())
	for _, line := range s.Parts() {
		links := make([]FulfillmentLinkResponse, 0, len(line.Allocations()))
		for _, l := range line.Allocations() {
			links = append(links, FulfillmentLinkResponse{
				CounterpartOrderID:       l.CounterpartOrderID(),
				CounterpartSnapshotIndex: l.CounterpartSnapshotIndex(),
				CounterpartLineIndex:     l.CounterpartLineIndex(),
				Quantity:                 l.Quantity(),
			})
		}
		parts = append(parts, PartLineResponse{
			PartID:         line.PartID(),
			Quantity:       line.Quantity(),
			AdditionalInfo: line.AdditionalInfo(),
			Allocations:    links,
		})
	}

	return SnapshotResponse{
		OrderID:        s.OrderID(),
		Index:          s.Index(),
		Status:         s.Status(),
		AdditionalInfo: s.AdditionalInfo(),
		Parts:          parts,
		UpdatedBy:      s.UpdatedBy(),
		CreatedAt:      s.CreatedAt(),
	}
}

// OrderSummaryResponse is the read model of an order identity.
type OrderSummaryResponse struct {
	ID             kernel.UUID
	Kind           order.Kind
	OrderNumber    string
	CounterpartyID kernel.UUID
	CreatedBy      kernel.UUID
	LatestStatus   order.Status
	LatestIndex    int
	CreatedAt      time.Time
}

// NewOrderSummaryResponse flattens an identity into its read model.
func NewOrderSummaryResponse(identity *order.Identity) OrderSummaryResponse {
	return OrderSummaryResponse{
		ID:             identity.ID(),
		Kind:           identity.Kind(),
		OrderNumber:    identity.OrderNumber(),
		CounterpartyID: identity.CounterpartyID(),
		CreatedBy:      identity.CreatedBy(),
		LatestStatus:   identity.LatestStatus(),
		LatestIndex:    identity.LatestIndex(),
		CreatedAt:      identity.CreatedAt(),
	}
}
