package services

import (
	"errors"
	"sort"
	"time"

	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/order"
	"replenishment/internal/core/domain/model/site"
)

// ErrInsufficientOrders is returned when no candidate order can be admitted to
// a route. A route without stops is invalid.
var ErrInsufficientOrders = errors.New("insufficient orders")

// Candidate is an order offered to route building together with the site it
// replenishes.
type Candidate struct {
	Order *order.Order
	Site  *site.Site
}

// Selection is the outcome of a RouteBuilder run.
type Selection struct {
	Admitted []Candidate
	Rejected []Candidate
	Total    kernel.Quantity
}

// RouteBuilder picks the orders that go on one vehicle. Implementations must
// be deterministic for identical inputs.
type RouteBuilder interface {
	Select(candidates []Candidate, vehicleCapacity kernel.Quantity, now time.Time) (Selection, error)
}

// GreedyFirstFit is the default RouteBuilder.
//
// Selection algorithm:
//   - skips candidates that are not eligible for planning
//   - sorts by urgency score, then priority (both descending), then creation
//     time and id (ascending)
//   - walks the sorted list once, admitting every order that still fits
//
// This is first-fit, not an optimal packing. Example with a 38t vehicle and
// orders of 20t, 15t and 10t in urgency order: 20t and 15t are admitted, 10t
// is rejected.
type GreedyFirstFit struct{}

func NewGreedyFirstFit() GreedyFirstFit {
	return GreedyFirstFit{}
}

// Select returns ErrInsufficientOrders when nothing could be admitted.
func (g GreedyFirstFit) Select(candidates []Candidate, vehicleCapacity kernel.Quantity, now time.Time) (Selection, error) {
	selection := Selection{Total: kernel.ZeroQuantity}

	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if err := errors.Join(c.Order.Validate(), c.Site.Validate()); err != nil {
			return Selection{}, err
		}
		if !IsPlanningCandidate(c.Order) || !c.Order.SiteID().IsEqual(c.Site.ID()) {
			selection.Rejected = append(selection.Rejected, c)
			continue
		}
		eligible = append(eligible, c)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return g.less(eligible[i].Order, eligible[j].Order, now)
	})

	for _, c := range eligible {
		next := selection.Total.Add(c.Order.RequestedQuantity())
		if next.GreaterThan(vehicleCapacity) {
			selection.Rejected = append(selection.Rejected, c)
			continue
		}
		selection.Admitted = append(selection.Admitted, c)
		selection.Total = next
	}

	if len(selection.Admitted) == 0 {
		return selection, ErrInsufficientOrders
	}
	return selection, nil
}

func (g GreedyFirstFit) less(a, b *order.Order, now time.Time) bool {
	if ua, ub := a.UrgencyScore(now), b.UrgencyScore(now); ua != ub {
		return ua > ub
	}
	if a.Priority() != b.Priority() {
		return a.Priority() > b.Priority()
	}
	if !a.CreatedAt().Equal(b.CreatedAt()) {
		return a.CreatedAt().Before(b.CreatedAt())
	}
	return a.ID().Less(b.ID())
}

// IsPlanningCandidate reports whether an order may be admitted to a new route.
func IsPlanningCandidate(o *order.Order) bool {
	status := o.Status()
	return (status == order.Confirmed || status == order.Planned) &&
		o.RouteID() == nil &&
		!o.RequiresApproval()
}
