// README: Courier candidates for dispatch.
package dispatch

import (
	"dishpatch/internal/types"
)

type Courier struct {
	ID         types.ID    `json:"id"`
	Position   types.Point `json:"position"`
	DistanceKm float64     `json:"distance_km"`
}

// pickNearest returns the closest courier; equal distances break
// deterministically on the smaller ID.
func pickNearest(couriers []Courier) Courier {
	best := couriers[0]
	for _, c := range couriers[1:] {
		if c.DistanceKm < best.DistanceKm {
			best = c
			continue
		}
		if c.DistanceKm == best.DistanceKm && c.ID < best.ID {
			best = c
		}
	}
	return best
}
