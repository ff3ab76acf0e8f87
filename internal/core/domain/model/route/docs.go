// Package route provides the Route aggregate used by route planning and
// delivery execution.
//
// The package includes:
//   - Route: the aggregate root owning an ordered list of stops, a vehicle and
//     the planned and actual distance and duration figures
//   - Stop: one order's fulfillment point within a route
//   - Optimization: the record of a single sequencing attempt
//   - FulfillmentRules: overage tolerance and the repeat-fulfillment policy
//
// Key business rules:
//   - the total planned quantity never exceeds the vehicle capacity
//   - stop sequence numbers always form a contiguous 1..N permutation
//   - an order appears at most once per route
//   - a cancelled route accepts no further fulfillments
//   - a route completes only when every stop is settled (completed, cancelled
//     or flagged with an issue)
package route
