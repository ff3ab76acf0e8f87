package commands

import (
	"errors"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"
)

var (
	ErrApplySensorReadingCommandIsNotConstructed = errors.New(
		"ApplySensorReadingCommand must be created via NewApplySensorReadingCommand constructor",
	)
	ErrReadingTimestampIsRequired = errs.NewValueIsRequiredError("timestamp")
)

// ApplySensorReadingCommand carries an absolute stock level reported by a
// site's sensor.
type ApplySensorReadingCommand struct { //nolint:recvcheck //using for validation
	siteID   kernel.UUID
	quantity kernel.Quantity
	at       time.Time

	guard guard.ConstructorGuard
}

func NewApplySensorReadingCommand(siteID kernel.UUID, quantity kernel.Quantity, at time.Time) (ApplySensorReadingCommand, error) {
	cmd := ApplySensorReadingCommand{
		quantity: quantity,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSiteID(siteID),
		cmd.setAt(at),
	); err != nil {
		return ApplySensorReadingCommand{}, err
	}

	return cmd, nil
}

func (c ApplySensorReadingCommand) Validate() error {
	return c.guard.Validate(ErrApplySensorReadingCommandIsNotConstructed)
}

func (c ApplySensorReadingCommand) SiteID() kernel.UUID       { return c.siteID }
func (c ApplySensorReadingCommand) Quantity() kernel.Quantity { return c.quantity }
func (c ApplySensorReadingCommand) At() time.Time             { return c.at }

func (c *ApplySensorReadingCommand) setSiteID(siteID kernel.UUID) error {
	if err := siteID.Validate(); err != nil {
		return err
	}
	c.siteID = siteID
	return nil
}

func (c *ApplySensorReadingCommand) setAt(at time.Time) error {
	if at.IsZero() {
		return ErrReadingTimestampIsRequired
	}
	c.at = at.UTC()
	return nil
}
