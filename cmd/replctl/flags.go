package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func parseID(name, value string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(strings.TrimSpace(value))
	if err != nil {
		return kernel.UUID{}, fmt.Errorf("%s: %w", name, err)
	}
	return id, nil
}

// parseTime accepts an RFC 3339 timestamp or a date. An empty value means now.
func parseTime(name, value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return now.UTC(), nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", value))
}

// parsePeriod reads a half-open [from, to) range of dates.
func parsePeriod(from, to string) (kernel.Period, error) {
	if from == "" || to == "" {
		return kernel.Period{}, errs.NewValueIsRequiredError("--from and --to")
	}
	start, err := parseTime("from", from, time.Time{})
	if err != nil {
		return kernel.Period{}, err
	}
	end, err := parseTime("to", to, time.Time{})
	if err != nil {
		return kernel.Period{}, err
	}
	return kernel.NewPeriod(start, end)
}

func parseQuantity(name, value string) (kernel.Quantity, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return kernel.Quantity{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return kernel.NewQuantity(d)
}

// parseReading reads a sensor quantity; values below zero read as empty.
func parseReading(value string) (kernel.Quantity, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return kernel.Quantity{}, errs.NewValueIsInvalidErrorWithCause("quantity", err)
	}
	return kernel.FlooredQuantity(d), nil
}

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
}

func formatDecimal(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.StringFixed(2)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}

var timeNow = func() time.Time { return time.Now().UTC() }
