package route_test

import (
	"testing"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFulfillmentRules(t *testing.T) {
	t.Run("bounds tolerance", func(t *testing.T) {
		_, err := route.NewFulfillmentRules(decimal.NewFromInt(-1), route.RepeatReject)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

		_, err = route.NewFulfillmentRules(decimal.NewFromInt(101), route.RepeatReject)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("requires a policy", func(t *testing.T) {
		_, err := route.NewFulfillmentRules(decimal.Zero, route.RepeatUnknown)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("max includes tolerance", func(t *testing.T) {
		rules, err := route.NewFulfillmentRules(decimal.NewFromInt(10), route.RepeatAccumulate)
		require.NoError(t, err)

		assert.True(t, rules.MaxFor(kernel.MustQuantity(8)).Equal(kernel.MustQuantity(8.8)))
		assert.Equal(t, route.RepeatAccumulate, rules.Repeat())
	})

	t.Run("parse policy", func(t *testing.T) {
		p, err := route.ParseRepeatPolicy("accumulate")
		require.NoError(t, err)
		assert.Equal(t, route.RepeatAccumulate, p)

		_, err = route.ParseRepeatPolicy("merge")
		require.Error(t, err)
	})
}

func TestAccuracy(t *testing.T) {
	assert.Nil(t, route.Accuracy(0, 0))
	assert.Equal(t, "80", route.Accuracy(100, 80).String())
	assert.Equal(t, "80", route.Accuracy(80, 100).String())
	assert.Equal(t, "0", route.Accuracy(0, 10).String())
}
