package order_test

import (
	"fmt"
	"testing"

	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Validate(t *testing.T) {
	for _, s := range []order.Status{order.Pending, order.Confirmed, order.Planned, order.InTransit, order.Delivered, order.Cancelled} {
		t.Run(s.String(), func(t *testing.T) {
			require.NoError(t, s.Validate())
		})
	}

	for _, s := range []order.Status{order.Unknown, order.Status(-1), order.Status(42)} {
		t.Run(fmt.Sprintf("rejects %d", int(s)), func(t *testing.T) {
			err := s.Validate()

			require.Error(t, err)
			assert.IsType(t, &errs.ValueIsInvalidError{}, err)
			assert.Contains(t, err.Error(), "status is invalid")
		})
	}
}

func TestStatus_ParseRoundTrip(t *testing.T) {
	for _, s := range []order.Status{order.Pending, order.Confirmed, order.Planned, order.InTransit, order.Delivered, order.Cancelled} {
		parsed, err := order.ParseStatus(s.String())

		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := order.ParseStatus("unknown")
	require.Error(t, err)
}

func TestStatus_Transitions(t *testing.T) {
	type transition func(order.Status) (order.Status, error)

	tests := []struct {
		name    string
		do      transition
		allowed map[order.Status]order.Status
	}{
		{
			name:    "confirm",
			do:      order.Status.Confirm,
			allowed: map[order.Status]order.Status{order.Pending: order.Confirmed},
		},
		{
			name:    "plan",
			do:      order.Status.Plan,
			allowed: map[order.Status]order.Status{order.Pending: order.Planned, order.Confirmed: order.Planned},
		},
		{
			name: "assign to route",
			do:   order.Status.AssignToRoute,
			allowed: map[order.Status]order.Status{
				order.Pending: order.Planned, order.Confirmed: order.Planned, order.Planned: order.Planned,
			},
		},
		{
			name:    "start transit",
			do:      order.Status.StartTransit,
			allowed: map[order.Status]order.Status{order.Planned: order.InTransit, order.InTransit: order.InTransit},
		},
		{
			name:    "deliver",
			do:      order.Status.Deliver,
			allowed: map[order.Status]order.Status{order.Planned: order.Delivered, order.InTransit: order.Delivered},
		},
		{
			name:    "release",
			do:      order.Status.Release,
			allowed: map[order.Status]order.Status{order.Planned: order.Confirmed, order.InTransit: order.Confirmed},
		},
		{
			name: "cancel",
			do:   order.Status.Cancel,
			allowed: map[order.Status]order.Status{
				order.Pending: order.Cancelled, order.Confirmed: order.Cancelled,
				order.Planned: order.Cancelled, order.InTransit: order.Cancelled,
			},
		},
	}

	all := []order.Status{order.Unknown, order.Pending, order.Confirmed, order.Planned, order.InTransit, order.Delivered, order.Cancelled}

	for _, tt := range tests {
		for _, from := range all {
			t.Run(fmt.Sprintf("%s from %s", tt.name, from), func(t *testing.T) {
				got, err := tt.do(from)

				want, ok := tt.allowed[from]
				if !ok {
					require.ErrorIs(t, err, errs.ErrStateIsInvalid)
					assert.Equal(t, order.Unknown, got)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestStatus_Predicates(t *testing.T) {
	assert.True(t, order.Delivered.IsTerminal())
	assert.True(t, order.Cancelled.IsTerminal())
	assert.False(t, order.InTransit.IsTerminal())
	assert.True(t, order.InTransit.IsOpen())
	assert.False(t, order.Cancelled.IsOpen())
}
