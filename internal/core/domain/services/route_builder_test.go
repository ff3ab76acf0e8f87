package services_test

import (
	"testing"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreedyFirstFit_Select(t *testing.T) {
	t.Run("admits in urgency order while capacity remains", func(t *testing.T) {
		// Given a 38t vehicle and 20t, 15t, 10t orders in urgency order
		first := confirmedCandidate(t, 20, now, withDeadline(t, now.Add(12*time.Hour)))
		second := confirmedCandidate(t, 15, now, withDeadline(t, now.Add(48*time.Hour)))
		third := confirmedCandidate(t, 10, now, withDeadline(t, now.Add(5*24*time.Hour)))

		// When
		selection, err := services.NewGreedyFirstFit().Select(
			[]services.Candidate{third, first, second}, kernel.MustQuantity(38), now)

		// Then
		require.NoError(t, err)
		require.Len(t, selection.Admitted, 2)
		assert.True(t, selection.Admitted[0].Order.IsEqual(first.Order))
		assert.True(t, selection.Admitted[1].Order.IsEqual(second.Order))
		require.Len(t, selection.Rejected, 1)
		assert.True(t, selection.Rejected[0].Order.IsEqual(third.Order))
		assert.True(t, selection.Total.Equal(kernel.MustQuantity(35)))
	})

	t.Run("first fit keeps scanning after a miss", func(t *testing.T) {
		big := confirmedCandidate(t, 30, now, withDeadline(t, now.Add(time.Hour)))
		tooBig := confirmedCandidate(t, 20, now, withDeadline(t, now.Add(48*time.Hour)))
		small := confirmedCandidate(t, 5, now)

		selection, err := services.NewGreedyFirstFit().Select(
			[]services.Candidate{small, tooBig, big}, kernel.MustQuantity(38), now)

		require.NoError(t, err)
		require.Len(t, selection.Admitted, 2)
		assert.True(t, selection.Admitted[0].Order.IsEqual(big.Order))
		assert.True(t, selection.Admitted[1].Order.IsEqual(small.Order))
	})

	t.Run("ties break on priority then age", func(t *testing.T) {
		older := confirmedCandidate(t, 5, now.Add(-2*time.Hour))
		newer := confirmedCandidate(t, 5, now.Add(-time.Hour))
		urgent := confirmedCandidate(t, 5, now, withPriority(order.PriorityHigh))

		selection, err := services.NewGreedyFirstFit().Select(
			[]services.Candidate{newer, older, urgent}, kernel.MustQuantity(40), now)

		require.NoError(t, err)
		require.Len(t, selection.Admitted, 3)
		assert.True(t, selection.Admitted[0].Order.IsEqual(urgent.Order))
		assert.True(t, selection.Admitted[1].Order.IsEqual(older.Order))
		assert.True(t, selection.Admitted[2].Order.IsEqual(newer.Order))
	})

	t.Run("skips orders not eligible for planning", func(t *testing.T) {
		assigned := confirmedCandidate(t, 5, now)
		require.NoError(t, assigned.Order.AssignToRoute(kernel.NewUUID(), now))
		cancelled := confirmedCandidate(t, 5, now)
		require.NoError(t, cancelled.Order.Cancel(now))
		ok := confirmedCandidate(t, 5, now)

		selection, err := services.NewGreedyFirstFit().Select(
			[]services.Candidate{assigned, cancelled, ok}, kernel.MustQuantity(40), now)

		require.NoError(t, err)
		require.Len(t, selection.Admitted, 1)
		assert.True(t, selection.Admitted[0].Order.IsEqual(ok.Order))
		assert.Len(t, selection.Rejected, 2)
	})

	t.Run("nothing fits", func(t *testing.T) {
		c := confirmedCandidate(t, 45, now)

		_, err := services.NewGreedyFirstFit().Select([]services.Candidate{c}, kernel.MustQuantity(38), now)

		require.ErrorIs(t, err, services.ErrInsufficientOrders)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := services.NewGreedyFirstFit().Select(nil, kernel.MustQuantity(38), now)

		require.ErrorIs(t, err, services.ErrInsufficientOrders)
	})
}
