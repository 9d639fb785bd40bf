// README: Delivery order aggregate and status definitions.
package order

import (
	"time"

	"dishpatch/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusPickedUp  Status = "picked_up"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type Order struct {
	ID             types.ID
	RestaurantID   types.ID
	CustomerID     types.ID
	CourierID      *types.ID
	Status         Status
	StatusVersion  int
	Pickup         types.Point
	Dropoff        types.Point
	WeightKg       float64
	Subtotal       float64
	CouponCode     *string
	DiscountAmount float64
	EstimatedCost  float64
	DistanceKm     float64
	CreatedAt      time.Time
	AssignedAt     *time.Time
	PickedUpAt     *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   *string
}

type Event struct {
	ID         int64
	OrderID    types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions represents the delivery flow as code. Cancellation
// is possible until the courier has the food.
var AllowedTransitions = map[Status][]Status{
	StatusPending:  {StatusAssigned, StatusCancelled},
	StatusAssigned: {StatusPickedUp, StatusCancelled},
	StatusPickedUp: {StatusDelivered},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
