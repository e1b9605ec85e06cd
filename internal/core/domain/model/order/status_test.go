package order_test

import (
	"testing"

	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "QUOTATION", order.Quotation.String())
	assert.Equal(t, "IN_DELIVERY", order.InDelivery.String())
	assert.Equal(t, "CANCELLED", order.Cancelled.String())
	assert.Equal(t, "UNKNOWN", order.Unknown.String())
	assert.Equal(t, "UNKNOWN", order.Status(42).String())
}

func TestStatus_Validate(t *testing.T) {
	for _, s := range allStatuses {
		require.NoError(t, s.Validate(), s.String())
	}

	err := order.Unknown.Validate()
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	err = order.Status(99).Validate()
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestStatus_ValidateFor(t *testing.T) {
	t.Run("purchase orders have no warehouse statuses", func(t *testing.T) {
		require.ErrorIs(t, order.Preparing.ValidateFor(order.Purchase), errs.ErrValueIsInvalid)
		require.ErrorIs(t, order.InDelivery.ValidateFor(order.Purchase), errs.ErrValueIsInvalid)
		require.NoError(t, order.Received.ValidateFor(order.Purchase))
	})

	t.Run("sales orders accept every status", func(t *testing.T) {
		for _, s := range allStatuses {
			require.NoError(t, s.ValidateFor(order.Sales), s.String())
		}
	})
}

func TestStatus_IsTerminal(t *testing.T) {
	for _, s := range allStatuses {
		want := s == order.Fulfilled || s == order.Cancelled
		assert.Equal(t, want, s.IsTerminal(), s.String())
	}
}

func TestParseStatus(t *testing.T) {
	s, err := order.ParseStatus("in_delivery")
	require.NoError(t, err)
	assert.Equal(t, order.InDelivery, s)

	s, err = order.ParseStatus("FULFILLED")
	require.NoError(t, err)
	assert.Equal(t, order.Fulfilled, s)

	_, err = order.ParseStatus("UNKNOWN")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = order.ParseStatus("shipped")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
