package order_test

import (
	"testing"

	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLink(t *testing.T, counterpart kernel.UUID, snapshotIndex, lineIndex, quantity int) order.FulfillmentLink {
	t.Helper()
	link, err := order.NewFulfillmentLink(counterpart, snapshotIndex, lineIndex, quantity)
	require.NoError(t, err)
	return link
}

func newLine(t *testing.T, partID kernel.UUID, quantity int, links ...order.FulfillmentLink) order.PartLine {
	t.Helper()
	line, err := order.NewPartLine(partID, quantity, "", links)
	require.NoError(t, err)
	return line
}

func TestNewFulfillmentLink(t *testing.T) {
	poID := kernel.NewUUID()

	t.Run("valid", func(t *testing.T) {
		link, err := order.NewFulfillmentLink(poID, 2, 1, 4)
		require.NoError(t, err)
		require.NoError(t, link.Validate())
		assert.True(t, link.CounterpartOrderID().IsEqual(poID))
		assert.Equal(t, 2, link.CounterpartSnapshotIndex())
		assert.Equal(t, 1, link.CounterpartLineIndex())
		assert.Equal(t, 4, link.Quantity())
		assert.Equal(t, order.LineRef{OrderID: poID, LineIndex: 1}, link.Target())
	})

	t.Run("rejects non positive quantity", func(t *testing.T) {
		_, err := order.NewFulfillmentLink(poID, 0, 0, 0)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects negative indices", func(t *testing.T) {
		_, err := order.NewFulfillmentLink(poID, -1, -1, 3)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "counterpart snapshot index")
		assert.Contains(t, err.Error(), "counterpart line index")
	})

	t.Run("rejects nil order id", func(t *testing.T) {
		_, err := order.NewFulfillmentLink(kernel.UUID{}, 0, 0, 3)
		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var link order.FulfillmentLink
		require.ErrorIs(t, link.Validate(), order.ErrFulfillmentLinkIsNotConstructed)
	})
}

func TestNewPartLine(t *testing.T) {
	partID := kernel.NewUUID()
	poID := kernel.NewUUID()

	t.Run("sums allocations", func(t *testing.T) {
		line, err := order.NewPartLine(partID, 10, "urgent", []order.FulfillmentLink{
			newLink(t, poID, 0, 0, 4),
			newLink(t, poID, 0, 1, 3),
		})
		require.NoError(t, err)
		assert.Equal(t, 10, line.Quantity())
		assert.Equal(t, "urgent", line.AdditionalInfo())
		assert.Equal(t, 7, line.AllocatedQuantity())
		assert.Len(t, line.Allocations(), 2)
	})

	t.Run("allocations are copied", func(t *testing.T) {
		links := []order.FulfillmentLink{newLink(t, poID, 0, 0, 4)}
		line := newLine(t, partID, 10, links...)

		got := line.Allocations()
		got[0] = newLink(t, poID, 0, 5, 1)

		assert.Equal(t, 0, line.Allocations()[0].CounterpartLineIndex())
	})

	t.Run("rejects non positive quantity", func(t *testing.T) {
		_, err := order.NewPartLine(partID, 0, "", nil)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects two links to the same counterpart line", func(t *testing.T) {
		_, err := order.NewPartLine(partID, 10, "", []order.FulfillmentLink{
			newLink(t, poID, 0, 0, 2),
			newLink(t, poID, 1, 0, 2),
		})
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects unconstructed links", func(t *testing.T) {
		_, err := order.NewPartLine(partID, 10, "", []order.FulfillmentLink{{}})
		require.ErrorIs(t, err, order.ErrFulfillmentLinkIsNotConstructed)
	})

	t.Run("over allocation is left to the ledger", func(t *testing.T) {
		line, err := order.NewPartLine(partID, 2, "", []order.FulfillmentLink{newLink(t, poID, 0, 0, 5)})
		require.NoError(t, err)
		assert.Equal(t, 5, line.AllocatedQuantity())
	})

	t.Run("with allocations", func(t *testing.T) {
		line := newLine(t, partID, 10)
		linked, err := line.WithAllocations([]order.FulfillmentLink{newLink(t, poID, 0, 0, 6)})
		require.NoError(t, err)
		assert.Equal(t, 0, line.AllocatedQuantity())
		assert.Equal(t, 6, linked.AllocatedQuantity())
		assert.True(t, linked.PartID().IsEqual(partID))
	})
}
