package order

import (
	"replenishment/internal/core/domain/model/kernel"
	"replenishment/internal/core/domain/model/site"
)

// ApprovalPolicy decides whether a new order needs explicit approval before it
// can be confirmed, planned or assigned to a route.
type ApprovalPolicy struct {
	largeOrderThreshold kernel.Quantity
}

// NewApprovalPolicy builds the policy. Orders strictly above largeOrderThreshold
// require approval.
func NewApprovalPolicy(largeOrderThreshold kernel.Quantity) ApprovalPolicy {
	return ApprovalPolicy{largeOrderThreshold: largeOrderThreshold}
}

func (p ApprovalPolicy) LargeOrderThreshold() kernel.Quantity {
	return p.largeOrderThreshold
}

// RequiresApproval is true for large orders, emergency orders and orders for
// high priority sites.
func (p ApprovalPolicy) RequiresApproval(quantity kernel.Quantity, orderType Type, sitePriority site.Priority) bool {
	return quantity.GreaterThan(p.largeOrderThreshold) ||
		orderType == TypeEmergency ||
		sitePriority == site.PriorityHigh
}
