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

func TestNewCreateOrderCommand_ValidInput(t *testing.T) {
	customer := kernel.NewUUID()
	actor := kernel.NewUUID()
	lines := []order.PartLine{newLine(t, kernel.NewUUID(), 10)}

	cmd, err := commands.NewCreateOrderCommand(order.Sales, customer, actor, lines, "rush")
	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, order.Sales, cmd.Kind())
	assert.Equal(t, customer, cmd.CounterpartyID())
	assert.Equal(t, actor, cmd.CreatedBy())
	assert.Equal(t, lines, cmd.Parts())
	assert.Equal(t, "rush", cmd.AdditionalInfo())
}

func TestNewCreateOrderCommand_InvalidInput(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(order.UnknownKind, kernel.UUID{}, kernel.UUID{}, nil, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewCreateOrderCommand_InitialAllocations(t *testing.T) {
	part := kernel.NewUUID()
	link, err := order.NewFulfillmentLink(kernel.NewUUID(), 0, 0, 1)
	require.NoError(t, err)

	_, err = commands.NewCreateOrderCommand(order.Sales, kernel.NewUUID(), kernel.NewUUID(),
		[]order.PartLine{newLine(t, part, 3, link)}, "")
	require.ErrorIs(t, err, commands.ErrInitialPartsHaveAllocations)
}

func TestNewCreateOrderCommand_NotConstructed(t *testing.T) {
	var cmd commands.CreateOrderCommand
	require.ErrorIs(t, cmd.Validate(), commands.ErrCreateOrderCommandIsNotConstructed)
}
