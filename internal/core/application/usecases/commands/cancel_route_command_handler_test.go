package commands_test

import (
	"testing"

	"replenishment/internal/core/application/usecases/commands"
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/core/domain/services"
	"replenishment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelRouteCommandHandler_Handle(t *testing.T) {
	t.Run("keeps applied deliveries and releases the rest", func(t *testing.T) {
		// Given a route with one delivered and one pending stop
		ctx := t.Context()
		s1, s2 := testSite(t, 30, 0), testSite(t, 30, 0)
		o1, o2 := confirmedOrder(t, s1, 10), confirmedOrder(t, s2, 8)
		r := routeFor(t, true,
			services.Candidate{Order: o1, Site: s1},
			services.Candidate{Order: o2, Site: s2},
		)
		_, _, err := r.FulfillStop(r.StopForOrder(o1.ID()).ID(), kernel.MustQuantity(10), route.DefaultFulfillmentRules(), now)
		require.NoError(t, err)
		require.NoError(t, o1.Deliver(now))
		cmd, err := commands.NewCancelRouteCommand(r.ID(), "truck breakdown")
		require.NoError(t, err)

		factory, uow, routes, orders, _ := routeUoW(t, true)
		routes.On("Get", ctx, r.ID()).Return(r, nil).Once()
		orders.On("GetMany", ctx, []kernel.UUID{o2.ID()}).Return([]*order.Order{o2}, nil).Once()
		orders.On("Update", ctx, o2).Return(nil).Once()
		routes.On("Update", ctx, r).Return(nil).Once()

		// When
		released, err := commands.NewCancelRouteCommandHandler(factory, clock).Handle(ctx, cmd)

		// Then
		require.NoError(t, err)
		assert.Equal(t, []kernel.UUID{o2.ID()}, released)
		assert.Equal(t, route.StatusCancelled, r.Status())
		assert.Equal(t, order.Confirmed, o2.Status())
		assert.Nil(t, o2.RouteID())
		assert.Equal(t, order.Delivered, o1.Status())
		assert.True(t, r.TotalDeliveredQuantity().Equal(kernel.MustQuantity(10)))
		orders.AssertExpectations(t)
		routes.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("completed route cannot be cancelled", func(t *testing.T) {
		ctx := t.Context()
		s := testSite(t, 30, 0)
		o := confirmedOrder(t, s, 10)
		r := routeFor(t, true, services.Candidate{Order: o, Site: s})
		_, _, err := r.FulfillStop(r.Stops()[0].ID(), kernel.MustQuantity(10), route.DefaultFulfillmentRules(), now)
		require.NoError(t, err)
		require.NoError(t, r.Complete(route.Actuals{}, now))
		cmd, err := commands.NewCancelRouteCommand(r.ID(), "")
		require.NoError(t, err)

		factory, _, routes, orders, _ := routeUoW(t, false)
		routes.On("Get", ctx, r.ID()).Return(r, nil).Once()

		_, err = commands.NewCancelRouteCommandHandler(factory, clock).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrStateIsInvalid)
		orders.AssertNotCalled(t, "GetMany", mock.Anything, mock.Anything)
	})
}

func TestDelayRouteCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	s := testSite(t, 30, 0)
	o := confirmedOrder(t, s, 10)
	r := routeFor(t, true, services.Candidate{Order: o, Site: s})
	cmd, err := commands.NewDelayRouteCommand(r.ID(), "snow on highway 10")
	require.NoError(t, err)

	factory, uow, routes, _, _ := routeUoW(t, true)
	routes.On("Get", ctx, r.ID()).Return(r, nil).Once()
	routes.On("Update", ctx, r).Return(nil).Once()

	err = commands.NewDelayRouteCommandHandler(factory, clock).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, route.StatusDelayed, r.Status())
	assert.Equal(t, "snow on highway 10", r.DelayReason())
	uow.AssertExpectations(t)

	_, err = commands.NewDelayRouteCommand(r.ID(), "")
	require.ErrorIs(t, err, commands.ErrReasonIsRequired)
}
