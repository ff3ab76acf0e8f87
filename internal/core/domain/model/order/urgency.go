package order

import "time"

// Urgency levels returned by UrgencyScore. Higher means more urgent.
const (
	UrgencyLow        = 20
	UrgencyMedium     = 40
	UrgencyMediumHigh = 60
	UrgencyHigh       = 80
	UrgencyOverdue    = 100
)

const day = 24 * time.Hour

// UrgencyScore is a monotonic function of the time left before the end of the
// delivery window. Orders without a window score low. Used for ordering only.
func (o *Order) UrgencyScore(now time.Time) int {
	if o.deliveryWindow == nil {
		return UrgencyLow
	}

	left := o.deliveryWindow.End().Sub(now)
	switch {
	case left < 0:
		return UrgencyOverdue
	case left <= day:
		return UrgencyHigh
	case left <= 3*day:
		return UrgencyMediumHigh
	case left <= 7*day:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
