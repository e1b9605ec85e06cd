package order

import (
	"time"

	"bilbo/internal/core/domain/model/kernel"
)

// HistoryEntry is the audit view of one snapshot: who moved the order where, and when.
type HistoryEntry struct {
	Index     int
	Status    Status
	UpdatedBy kernel.UUID
	CreatedAt time.Time
}
