package commands_test

import (
	"testing"

	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func orderUoW(t *testing.T, repo *MockOrderRepository, commit bool) (*MockOrderUoWFactory, *MockUoW) {
	t.Helper()
	ctx := t.Context()
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("OrderRepository").Return(repo).Once()
	if commit {
		uow.On("Commit", ctx).Return(nil).Once()
	}
	uow.On("Rollback", ctx).Return(nil).Once()
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()
	return factory, uow
}

func TestNewApproveOrderCommand(t *testing.T) {
	cmd, err := commands.NewApproveOrderCommand(kernel.NewUUID(), "  ops.lead ")
	require.NoError(t, err)
	assert.Equal(t, "ops.lead", cmd.Approver())

	_, err = commands.NewApproveOrderCommand(kernel.NewUUID(), " ")
	require.ErrorIs(t, err, commands.ErrApproverIsRequired)
}

func TestApproveOrderCommandHandler_Handle(t *testing.T) {
	t.Run("approves and persists", func(t *testing.T) {
		// Given
		ctx := t.Context()
		o := pendingOrder(t, testSite(t, 30, 0), 10, order.TypeEmergency)
		require.True(t, o.RequiresApproval())
		cmd, err := commands.NewApproveOrderCommand(o.ID(), "ops.lead")
		require.NoError(t, err)

		repo := new(MockOrderRepository)
		repo.On("Get", ctx, o.ID()).Return(o, nil).Once()
		repo.On("Update", ctx, o).Return(nil).Once()
		factory, uow := orderUoW(t, repo, true)

		// When
		err = commands.NewApproveOrderCommandHandler(factory, clock).Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.False(t, o.RequiresApproval())
		require.NotNil(t, o.ApprovedBy())
		assert.Equal(t, "ops.lead", *o.ApprovedBy())
		repo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("rejects an order without approval requirement", func(t *testing.T) {
		ctx := t.Context()
		o := pendingOrder(t, testSite(t, 30, 0), 10, order.TypeContract)
		cmd, err := commands.NewApproveOrderCommand(o.ID(), "ops.lead")
		require.NoError(t, err)

		repo := new(MockOrderRepository)
		repo.On("Get", ctx, o.ID()).Return(o, nil).Once()
		factory, uow := orderUoW(t, repo, false)

		err = commands.NewApproveOrderCommandHandler(factory, clock).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrStateIsInvalid)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		uow.AssertExpectations(t)
	})
}

func TestConfirmOrderCommandHandler_Handle(t *testing.T) {
	t.Run("confirms a pending order", func(t *testing.T) {
		ctx := t.Context()
		o := pendingOrder(t, testSite(t, 30, 0), 10, order.TypeContract)
		cmd, err := commands.NewConfirmOrderCommand(o.ID())
		require.NoError(t, err)

		repo := new(MockOrderRepository)
		repo.On("Get", ctx, o.ID()).Return(o, nil).Once()
		repo.On("Update", ctx, o).Return(nil).Once()
		factory, uow := orderUoW(t, repo, true)

		err = commands.NewConfirmOrderCommandHandler(factory, clock).Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, order.Confirmed, o.Status())
		uow.AssertExpectations(t)
	})

	t.Run("blocks an order awaiting approval", func(t *testing.T) {
		// Given an emergency order that nobody approved
		ctx := t.Context()
		o := pendingOrder(t, testSite(t, 30, 0), 10, order.TypeEmergency)
		cmd, err := commands.NewConfirmOrderCommand(o.ID())
		require.NoError(t, err)

		repo := new(MockOrderRepository)
		repo.On("Get", ctx, o.ID()).Return(o, nil).Once()
		factory, _ := orderUoW(t, repo, false)

		// When
		err = commands.NewConfirmOrderCommandHandler(factory, clock).Handle(ctx, cmd)

		// Then
		require.ErrorIs(t, err, errs.ErrStateIsInvalid)
		assert.Equal(t, order.Pending, o.Status())
	})
}

func TestPlanOrderCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	o := confirmedOrder(t, testSite(t, 30, 0), 10)
	period, err := kernel.NewPeriod(now, now.AddDate(0, 0, 7))
	require.NoError(t, err)
	cmd, err := commands.NewPlanOrderCommand(o.ID(), period)
	require.NoError(t, err)

	repo := new(MockOrderRepository)
	repo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	repo.On("Update", ctx, o).Return(nil).Once()
	factory, uow := orderUoW(t, repo, true)

	err = commands.NewPlanOrderCommandHandler(factory, clock).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Planned, o.Status())
	require.NotNil(t, o.PlanningPeriod())
	assert.True(t, o.PlanningPeriod().IsEqual(period))
	uow.AssertExpectations(t)
}

func TestNewPlanOrderCommand_InvalidPeriod(t *testing.T) {
	_, err := commands.NewPlanOrderCommand(kernel.NewUUID(), kernel.Period{})
	require.ErrorIs(t, err, kernel.ErrPeriodIsNotConstructed)
}
