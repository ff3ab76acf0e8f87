// Package order provides the Order aggregate: customer demand for a quantity of
// commodity at a storage site, and the lifecycle that turns it into a delivery.
//
// The lifecycle is:
//
//	pending ──> confirmed ──> planned ──> in_transit ──> delivered
//	   │            │            │             │
//	   └────────────┴────────────┴─────────────┴──> cancelled
//
// An approval side-channel (RequiresApproval / Approve) gates confirm, plan and
// route assignment. Delivered and cancelled are terminal; orders are never deleted.
//
// Orders are ranked for route admission by UrgencyScore (time to deadline),
// then Priority.
package order
