package http

import (
	"bilbo/internal/core/application/usecases/queries"
	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/generated/servers"
	"bilbo/internal/pkg/errs"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// toKernelUUID rejects the nil UUID, which binds without error.
func toKernelUUID(name string, id openapi_types.UUID) (kernel.UUID, error) {
	u, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return u, nil
}

// toPartLines keeps nil distinct from empty: a nil pointer means the field was absent.
func toPartLines(lines *[]servers.PartLine) ([]order.PartLine, error) {
	if lines == nil {
		return nil, nil
	}

	result := make([]order.PartLine, 0, len(*lines))
	for _, l := range *lines {
		partID, err := toKernelUUID("partId", l.PartId)
		if err != nil {
			return nil, err
		}
		var links []order.FulfillmentLink
		if l.Allocations != nil {
			for _, a := range *l.Allocations {
				counterpartID, err := toKernelUUID("counterpartOrderId", a.CounterpartOrderId)
				if err != nil {
					return nil, err
				}
				link, err := order.NewFulfillmentLink(counterpartID, a.CounterpartSnapshotIndex, a.CounterpartLineIndex, a.Quantity)
				if err != nil {
					return nil, err
				}
				links = append(links, link)
			}
		}
		line, err := order.NewPartLine(partID, l.Quantity, deref(l.AdditionalInfo), links)
		if err != nil {
			return nil, err
		}
		result = append(result, line)
	}
	return result, nil
}

func fromOrderSummary(o queries.OrderSummaryResponse) servers.Order {
	return servers.Order{
		Id:             o.ID.Bytes(),
		Kind:           servers.OrderKind(o.Kind.String()),
		OrderNumber:    o.OrderNumber,
		CounterpartyId: o.CounterpartyID.Bytes(),
		CreatedBy:      o.CreatedBy.Bytes(),
		LatestStatus:   servers.OrderStatus(o.LatestStatus.String()),
		LatestIndex:    o.LatestIndex,
		CreatedAt:      o.CreatedAt,
	}
}

func fromSnapshot(s queries.SnapshotResponse) servers.Snapshot {
	parts := make([]servers.PartLine, 0, len(s.Parts))
	for _, p := range s.Parts {
		line := servers.PartLine{
			PartId:   p.PartID.Bytes(),
			Quantity: p.Quantity,
		}
		if p.AdditionalInfo != "" {
			info := p.AdditionalInfo
			line.AdditionalInfo = &info
		}
		if len(p.Allocations) > 0 {
			links := make([]servers.FulfillmentLink, 0, len(p.Allocations))
			for _, a := range p.Allocations {
				links = append(links, servers.FulfillmentLink{
					CounterpartOrderId:       a.CounterpartOrderID.Bytes(),
					CounterpartSnapshotIndex: a.CounterpartSnapshotIndex,
					CounterpartLineIndex:     a.CounterpartLineIndex,
					Quantity:                 a.Quantity,
				})
			}
			line.Allocations = &links
		}
		parts = append(parts, line)
	}

	return servers.Snapshot{
		OrderId:        s.OrderID.Bytes(),
		Index:          s.Index,
		Status:         servers.OrderStatus(s.Status.String()),
		AdditionalInfo: s.AdditionalInfo,
		Parts:          parts,
		UpdatedBy:      s.UpdatedBy.Bytes(),
		CreatedAt:      s.CreatedAt,
	}
}

func fromHistory(entries []order.HistoryEntry) []servers.HistoryEntry {
	result := make([]servers.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, servers.HistoryEntry{
			Index:     e.Index,
			Status:    servers.OrderStatus(e.Status.String()),
			UpdatedBy: e.UpdatedBy.Bytes(),
			CreatedAt: e.CreatedAt,
		})
	}
	return result
}

func fromViolation(v *order.AllocationViolationError) servers.Violation {
	return servers.Violation{
		OrderId:   v.OrderID.Bytes(),
		LineIndex: v.LineIndex,
		Side:      v.Side.String(),
		Quantity:  v.Quantity,
		Allocated: v.Allocated,
		Excess:    v.Excess(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
