package commands

import (
	"errors"
	"strings"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/guard"
)

var ErrRecordForecastCommandIsNotConstructed = errors.New(
	"RecordForecastCommand must be created via NewRecordForecastCommand constructor",
)

// RecordForecastCommand stores the forecast quantity of a product class for a
// period. Recording the same class and period again replaces the quantity.
type RecordForecastCommand struct { //nolint:recvcheck //using for validation
	productClass string
	period       kernel.Period
	quantity     kernel.Quantity

	guard guard.ConstructorGuard
}

func NewRecordForecastCommand(productClass string, period kernel.Period, quantity kernel.Quantity) (RecordForecastCommand, error) {
	if err := period.Validate(); err != nil {
		return RecordForecastCommand{}, err
	}

	return RecordForecastCommand{
		productClass: strings.TrimSpace(productClass),
		period:       period,
		quantity:     quantity,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c RecordForecastCommand) Validate() error {
	return c.guard.Validate(ErrRecordForecastCommandIsNotConstructed)
}

func (c RecordForecastCommand) ProductClass() string      { return c.productClass }
func (c RecordForecastCommand) Period() kernel.Period     { return c.period }
func (c RecordForecastCommand) Quantity() kernel.Quantity { return c.quantity }
