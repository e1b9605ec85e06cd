package commands_test

import (
	"testing"

	"bilbo/internal/core/application/usecases/commands"
	"bilbo/internal/core/domain/model/kernel"
	"bilbo/internal/core/domain/model/order"
	"bilbo/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppendSnapshotCommand(t *testing.T) {
	orderID := kernel.NewUUID()
	actor := kernel.NewUUID()

	t.Run("nil parts keep the current lines", func(t *testing.T) {
		cmd, err := commands.NewAppendSnapshotCommand(orderID, actor, order.Confirmed, nil, "ok")
		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.Equal(t, orderID, cmd.OrderID())
		assert.Equal(t, actor, cmd.ActorID())
		assert.Equal(t, order.Confirmed, cmd.Status())
		assert.Nil(t, cmd.Parts())
		assert.Equal(t, "ok", cmd.AdditionalInfo())
	})

	t.Run("empty parts clear the lines", func(t *testing.T) {
		cmd, err := commands.NewAppendSnapshotCommand(orderID, actor, order.Confirmed, []order.PartLine{}, "")
		require.NoError(t, err)
		assert.NotNil(t, cmd.Parts())
		assert.Empty(t, cmd.Parts())
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := commands.NewAppendSnapshotCommand(kernel.UUID{}, kernel.UUID{}, order.Unknown, []order.PartLine{{}}, "")
		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		require.ErrorIs(t, err, order.ErrPartLineIsNotConstructed)
	})

	t.Run("not constructed", func(t *testing.T) {
		var cmd commands.AppendSnapshotCommand
		require.ErrorIs(t, cmd.Validate(), commands.ErrAppendSnapshotCommandIsNotConstructed)
	})
}

func TestRejectionReason(t *testing.T) {
	id := kernel.NewUUID()
	assert.Equal(t, commands.ReasonIllegalTransition, commands.RejectionReason(order.NewIllegalTransitionError(order.Sales, order.Quotation, order.Received)))
	assert.Equal(t, commands.ReasonTerminalState, commands.RejectionReason(order.NewTerminalStateError(id, order.Fulfilled)))
	assert.Equal(t, commands.ReasonAllocationViolation, commands.RejectionReason(order.NewAllocationViolationError(id, 0, order.Incoming, 1, 2)))
	assert.Equal(t, commands.ReasonConcurrentModification, commands.RejectionReason(order.NewConcurrentModificationError(id, 1)))
	assert.Equal(t, commands.ReasonNotFound, commands.RejectionReason(errs.NewObjectNotFoundError("order", id)))
	assert.Equal(t, commands.ReasonInvalid, commands.RejectionReason(errs.NewValueIsRequiredError("actorId")))
	assert.Equal(t, commands.ReasonInternal, commands.RejectionReason(assert.AnError))
}
