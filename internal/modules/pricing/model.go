// README: Quote and time-estimate models.
package pricing

import (
	"time"

	"dishpatch/internal/types"
)

// QuoteRequest carries everything a cost quote needs. Quotes depend only
// on geometry and weight; time-sensitive pricing lives in EstimateTime.
type QuoteRequest struct {
	Pickup   types.Point
	Dropoff  types.Point
	WeightKg float64 // 0 means no weight surcharge
}

// Quote is the ephemeral cost band returned to the caller. Min and Max
// bracket the estimate at 80% and 120%.
type Quote struct {
	DistanceKm    float64 `json:"distance_km"`
	EstimatedCost float64 `json:"estimated_cost"`
	CostMin       float64 `json:"estimated_cost_min"`
	CostMax       float64 `json:"estimated_cost_max"`
	Minutes       int     `json:"estimated_time_minutes"`
	Currency      string  `json:"currency"`
}

// EstimateConfig is the per-restaurant delivery-time tuning row. At most
// one row per restaurant exists (upsert semantics). All values in minutes.
type EstimateConfig struct {
	RestaurantID types.ID  `json:"restaurant_id"`
	BaseTime     int       `json:"base_time"`
	PerKmTime    int       `json:"per_km_time"`
	BusyTimeAdd  int       `json:"busy_time_add"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultEstimateConfig applies when a restaurant has no row of its own.
func DefaultEstimateConfig(restaurantID types.ID) EstimateConfig {
	return EstimateConfig{
		RestaurantID: restaurantID,
		BaseTime:     30,
		PerKmTime:    5,
		BusyTimeAdd:  10,
	}
}

// TimeEstimate is a point estimate plus a plausible range.
type TimeEstimate struct {
	Minutes  int `json:"estimatedMinutes"`
	RangeMin int `json:"rangeMin"`
	RangeMax int `json:"rangeMax"`
}
