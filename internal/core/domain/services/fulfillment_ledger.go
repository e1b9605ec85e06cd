package services

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/pkg/errs"
)

// CounterpartState is the current view of one order referenced by a snapshot
// being validated.
type CounterpartState struct {
	Identity *order.Identity
	Latest   *order.Snapshot
	// Incoming sums, per line of Latest, the links held by open orders other
	// than the one being validated.
	Incoming map[int]int
}

// FulfillmentLedger checks that fulfillment links never promise more than a line holds.
//
// Rules:
//   - a line's outgoing links sum to at most its quantity
//   - a line's incoming links, from the latest snapshots of every order that is
//     not CANCELLED, sum to at most its quantity
//   - links join lines of the same part across orders of opposite kinds
//
// There is no stored running total. Incoming sums are always recomputed from the
// latest snapshots, so the ledger is stateless and safe for concurrent use.
//
// Example usage:
//
//	ledger := services.NewFulfillmentLedger()
//	err := ledger.ValidateAllocations(identity, latest, next, incoming, counterparts)
//	if errors.Is(err, order.ErrAllocationViolation) {
//	    // reject the append
//	}
type FulfillmentLedger struct{}

func NewFulfillmentLedger() FulfillmentLedger {
	return FulfillmentLedger{}
}

// ValidateAllocations checks next, the snapshot about to follow prior on target.
//
// incoming sums, per line of target, the links other open orders hold against it.
// counterparts must contain every order referenced by next.
//
// All problems found are joined into one error. Over-allocation is reported as
// *order.AllocationViolationError; malformed links as errs validation errors.
func (FulfillmentLedger) ValidateAllocations(
	target *order.Identity,
	prior *order.Snapshot,
	next *order.Snapshot,
	incoming map[int]int,
	counterparts map[kernel.UUID]CounterpartState,
) error {
	if target == nil || next == nil {
		return errs.NewValueIsRequiredError("target")
	}

	var problems []error
	for _, v := range outgoingViolations(next) {
		problems = append(problems, v)
	}
	problems = append(problems, checkReferencedLines(target.ID(), prior, next, incoming)...)

	// a cancelled order releases its links; nothing to check on the other side
	if next.Status() != order.Cancelled {
		problems = append(problems, checkLinks(target, next, counterparts)...)
	}

	return errors.Join(problems...)
}

// Audit re-checks every line of the given latest snapshots, one per order, and
// returns the violations found ordered by order id and line.
func (FulfillmentLedger) Audit(latest []*order.Snapshot) []*order.AllocationViolationError {
	byID := make(map[kernel.UUID]*order.Snapshot, len(latest))
	incoming := make(map[order.LineRef]int)
	for _, s := range latest {
		byID[s.OrderID()] = s
		if s.Status() == order.Cancelled {
			continue
		}
		for _, line := range s.Parts() {
			for _, link := range line.Allocations() {
				incoming[link.Target()] += link.Quantity()
			}
		}
	}

	var violations []*order.AllocationViolationError
	for _, s := range latest {
		violations = append(violations, outgoingViolations(s)...)
	}
	for ref, total := range incoming {
		quantity := 0
		if s, ok := byID[ref.OrderID]; ok {
			if line, err := s.Part(ref.LineIndex); err == nil {
				quantity = line.Quantity()
			}
		}
		if total > quantity {
			violations = append(violations, order.NewAllocationViolationError(
				ref.OrderID, ref.LineIndex, order.Incoming, quantity, total))
		}
	}

	slices.SortFunc(violations, func(a, b *order.AllocationViolationError) int {
		return cmp.Or(
			a.OrderID.Compare(b.OrderID),
			cmp.Compare(a.LineIndex, b.LineIndex),
			cmp.Compare(a.Side, b.Side),
		)
	})
	return violations
}

func outgoingViolations(s *order.Snapshot) []*order.AllocationViolationError {
	var violations []*order.AllocationViolationError
	for i, line := range s.Parts() {
		if line.AllocatedQuantity() > line.Quantity() {
			violations = append(violations, order.NewAllocationViolationError(
				s.OrderID(), i, order.Outgoing, line.Quantity(), line.AllocatedQuantity()))
		}
	}
	return violations
}

// checkReferencedLines keeps the target's own lines large enough for the links
// other orders hold against them.
func checkReferencedLines(targetID kernel.UUID, prior, next *order.Snapshot, incoming map[int]int) []error {
	var problems []error
	for _, i := range slices.Sorted(maps.Keys(incoming)) {
		held := incoming[i]
		if held <= 0 {
			continue
		}
		line, err := next.Part(i)
		if err != nil {
			problems = append(problems, order.NewAllocationViolationError(targetID, i, order.Incoming, 0, held))
			continue
		}
		if prior != nil {
			if before, err := prior.Part(i); err == nil && !before.PartID().IsEqual(line.PartID()) {
				problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
					"part line is invalid",
					fmt.Errorf("line %d is referenced by other orders and cannot change part", i),
				))
			}
		}
		if held > line.Quantity() {
			problems = append(problems, order.NewAllocationViolationError(targetID, i, order.Incoming, line.Quantity(), held))
		}
	}
	return problems
}

func checkLinks(target *order.Identity, next *order.Snapshot, counterparts map[kernel.UUID]CounterpartState) []error {
	var problems []error

	for i, line := range next.Parts() {
		for _, link := range line.Allocations() {
			if err := checkLinkShape(target, i, line, link, counterparts); err != nil {
				problems = append(problems, err)
			}
		}
	}
	if len(problems) > 0 {
		return problems
	}

	for _, id := range next.Counterparts() {
		state := counterparts[id]
		outgoing := next.OutgoingTo(id)
		for _, lineIndex := range slices.Sorted(maps.Keys(outgoing)) {
			line, _ := state.Latest.Part(lineIndex)
			total := state.Incoming[lineIndex] + outgoing[lineIndex]
			if total > line.Quantity() {
				problems = append(problems, order.NewAllocationViolationError(
					id, lineIndex, order.Incoming, line.Quantity(), total))
			}
		}
	}
	return problems
}

func checkLinkShape(
	target *order.Identity,
	lineIndex int,
	line order.PartLine,
	link order.FulfillmentLink,
	counterparts map[kernel.UUID]CounterpartState,
) error {
	id := link.CounterpartOrderID()
	if id.IsEqual(target.ID()) {
		return errs.NewValueIsInvalidErrorWithCause(
			"fulfillment link is invalid",
			fmt.Errorf("line %d links to its own order", lineIndex),
		)
	}

	state, ok := counterparts[id]
	if !ok || state.Identity == nil || state.Latest == nil {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	if state.Identity.Kind() != target.Kind().Counterpart() {
		return errs.NewValueIsInvalidErrorWithCause(
			"fulfillment link is invalid",
			fmt.Errorf("line %d links a %s order to %s order %s", lineIndex, target.Kind(), state.Identity.Kind(), id),
		)
	}
	if state.Identity.LatestStatus() == order.Cancelled {
		return errs.NewValueIsInvalidErrorWithCause(
			"fulfillment link is invalid",
			fmt.Errorf("line %d links to cancelled order %s", lineIndex, id),
		)
	}
	if link.CounterpartSnapshotIndex() > state.Latest.Index() {
		return errs.NewValueIsOutOfRangeError(
			"counterpart snapshot index", link.CounterpartSnapshotIndex(), 0, state.Latest.Index())
	}

	counterpartLine, err := state.Latest.Part(link.CounterpartLineIndex())
	if err != nil {
		return errs.NewObjectNotFoundErrorWithCause("counterpart line", link.Target().String(), err)
	}
	if !counterpartLine.PartID().IsEqual(line.PartID()) {
		return errs.NewValueIsInvalidErrorWithCause(
			"fulfillment link is invalid",
			fmt.Errorf("line %d part %s does not match %s part %s", lineIndex, line.PartID(), link.Target(), counterpartLine.PartID()),
		)
	}
	return nil
}
