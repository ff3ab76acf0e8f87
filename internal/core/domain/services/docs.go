// Package services provides domain services that orchestrate business operations
// across multiple aggregates of the replenishment core.
//
// The package includes:
//   - RouteBuilder / GreedyFirstFit: selection of orders for a vehicle
//   - RouteSequencer: stop ordering through a geometry provider with a
//     deterministic fallback
//   - LatitudeSequencer, NearestNeighbourSequencer: the fallback strategies
//   - KPICalculator: the pure metric computation behind KPI records
package services
