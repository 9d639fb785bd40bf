// README: Delivery zone aggregate.
package zone

import (
	"fmt"
	"time"

	"dishpatch/internal/types"
)

type Zone struct {
	ID             types.ID      `json:"id"`
	RestaurantID   types.ID      `json:"restaurant_id"`
	Name           string        `json:"name"`
	Polygon        []types.Point `json:"polygon"`
	DeliveryFee    float64       `json:"delivery_fee"`
	MinOrderAmount float64       `json:"min_order_amount"`
	IsActive       bool          `json:"is_active"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (z *Zone) Validate() error {
	if z.RestaurantID == "" {
		return fmt.Errorf("%w: restaurant id is required", ErrBadRequest)
	}
	if z.Name == "" {
		return fmt.Errorf("%w: zone name is required", ErrBadRequest)
	}
	if len(z.Polygon) < 3 {
		return fmt.Errorf("%w: polygon needs at least 3 vertices", ErrBadRequest)
	}
	for _, p := range z.Polygon {
		if !p.Valid() {
			return fmt.Errorf("%w: polygon vertex out of coordinate range", ErrBadRequest)
		}
	}
	if z.DeliveryFee < 0 || z.MinOrderAmount < 0 {
		return fmt.Errorf("%w: fee and min order must be non-negative", ErrBadRequest)
	}
	return nil
}

// Membership is the zone-check result for a delivery address.
type Membership struct {
	InZone   bool    `json:"inZone"`
	Zone     *Zone   `json:"zone,omitempty"`
	Fee      float64 `json:"fee,omitempty"`
	MinOrder float64 `json:"minOrder,omitempty"`
}
