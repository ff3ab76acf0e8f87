package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"replenishment/internal/core/domain/model/route"
	"replenishment/internal/core/ports"
	"replenishment/internal/pkg/errs"
	"replenishment/internal/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

var errEmptyOrdering = errors.New("provider returned no ordering")

// SequenceOutcome tells the caller whether the provider result was used.
type SequenceOutcome struct {
	Provider string
	Degraded bool
	// Cause is the ExternalProviderError that triggered the fallback.
	Cause error
}

// RouteSequencer orders the stops of a route. The geometry provider is called
// under a timeout; on any failure the fallback ordering is applied instead and
// the route is marked degraded. Provider failures are never returned.
type RouteSequencer struct {
	provider ports.RouteGeometryProvider
	fallback ports.RouteGeometryProvider
	timeout  time.Duration
	clock    ports.Clock
	logger   *slog.Logger
}

func NewRouteSequencer(
	provider ports.RouteGeometryProvider,
	fallback ports.RouteGeometryProvider,
	timeout time.Duration,
	clock ports.Clock,
	logger *slog.Logger,
) *RouteSequencer {
	return &RouteSequencer{
		provider: provider,
		fallback: fallback,
		timeout:  timeout,
		clock:    clock,
		logger:   logger.With("component", "route_sequencer"),
	}
}

// Sequence applies a new stop order to r. Only route state errors and fallback
// failures are returned.
func (s *RouteSequencer) Sequence(ctx context.Context, r *route.Route) (outcome SequenceOutcome, err error) {
	ctx, span := tracing.Start(ctx, "RouteSequencer.Sequence")
	defer func() {
		span.SetAttributes(attribute.Bool("degraded", outcome.Degraded), attribute.String("provider", outcome.Provider))
		tracing.End(span, &err)
	}()

	if err = r.Validate(); err != nil {
		return SequenceOutcome{}, err
	}
	if !r.Status().IsEditable() {
		return SequenceOutcome{}, errs.NewStateIsInvalidError("route", r.Status().String(), "sequence")
	}

	stops := r.Stops()
	waypoints := make([]ports.Waypoint, len(stops))
	identity := make([]int, len(stops))
	for i, st := range stops {
		waypoints[i] = ports.Waypoint{ID: st.OrderID(), Location: st.Location()}
		identity[i] = i
	}

	original := 0.0
	if current, estErr := EstimateSequence(r.Origin(), waypoints, identity, 1); estErr == nil {
		original = current.TotalDistanceKm
	}

	providerErr := errs.NewExternalProviderError("none", errors.New("no geometry provider configured"))
	if s.provider != nil {
		seq, callErr := s.callProvider(ctx, r, waypoints)
		if callErr == nil {
			opt := route.Optimization{
				Provider:            s.provider.Name(),
				OriginalDistanceKm:  original,
				OptimizedDistanceKm: seq.TotalDistanceKm,
				Success:             true,
				At:                  s.clock.Now(),
			}
			if err = r.ApplySequence(seq, opt, ""); err != nil {
				return SequenceOutcome{}, err
			}
			return SequenceOutcome{Provider: s.provider.Name()}, nil
		}
		providerErr = errs.NewExternalProviderError(s.provider.Name(), callErr)
	}

	s.logger.WarnContext(ctx, "geometry provider unavailable, using fallback ordering",
		"route", r.Number(), "fallback", s.fallback.Name(), "error", providerErr)

	seq, err := s.fallback.Sequence(ctx, r.Origin(), waypoints)
	if err != nil {
		return SequenceOutcome{}, err
	}
	opt := route.Optimization{
		Provider:            providerErr.Provider,
		OriginalDistanceKm:  original,
		OptimizedDistanceKm: seq.TotalDistanceKm,
		Success:             false,
		ErrorMessage:        providerErr.Error(),
		At:                  s.clock.Now(),
	}
	if err = r.ApplySequence(seq, opt, providerErr.Error()); err != nil {
		return SequenceOutcome{}, err
	}

	return SequenceOutcome{Provider: s.fallback.Name(), Degraded: true, Cause: providerErr}, nil
}

func (s *RouteSequencer) callProvider(ctx context.Context, r *route.Route, waypoints []ports.Waypoint) (route.Sequence, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	seq, err := s.provider.Sequence(callCtx, r.Origin(), waypoints)
	if err != nil {
		return route.Sequence{}, err
	}
	if len(seq.Order) == 0 {
		return route.Sequence{}, errEmptyOrdering
	}
	if err := route.ValidatePermutation(seq.Order, len(waypoints)); err != nil {
		return route.Sequence{}, err
	}
	return seq, nil
}
