package commands

import (
	"errors"
	"strings"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/site"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/guard"
)

var (
	ErrRegisterSiteCommandIsNotConstructed = errors.New(
		"RegisterSiteCommand must be created via NewRegisterSiteCommand constructor",
	)
	ErrSiteNameIsRequired = errs.NewValueIsRequiredError("name")
)

// RegisterSiteCommand introduces a storage site and its initial ledger.
type RegisterSiteCommand struct { //nolint:recvcheck //using for validation
	siteID     kernel.UUID
	attributes site.Attributes

	guard guard.ConstructorGuard
}

func NewRegisterSiteCommand(siteID kernel.UUID, attributes site.Attributes) (RegisterSiteCommand, error) {
	cmd := RegisterSiteCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setSiteID(siteID),
		cmd.setAttributes(attributes),
	); err != nil {
		return RegisterSiteCommand{}, err
	}

	return cmd, nil
}

func (c RegisterSiteCommand) Validate() error {
	return c.guard.Validate(ErrRegisterSiteCommandIsNotConstructed)
}

func (c RegisterSiteCommand) SiteID() kernel.UUID         { return c.siteID }
func (c RegisterSiteCommand) Attributes() site.Attributes { return c.attributes }

func (c *RegisterSiteCommand) setSiteID(siteID kernel.UUID) error {
	if err := siteID.Validate(); err != nil {
		return err
	}
	c.siteID = siteID
	return nil
}

func (c *RegisterSiteCommand) setAttributes(attributes site.Attributes) error {
	if strings.TrimSpace(attributes.Name) == "" {
		return ErrSiteNameIsRequired
	}
	c.attributes = attributes
	return nil
}
