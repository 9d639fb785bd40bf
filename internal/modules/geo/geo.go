// Package geo contains pure geographic computation helpers.
package geo

import (
	"math"

	"dishpatch/internal/types"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func HaversineKm(a, b types.Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// PointInPolygon reports whether p lies inside the polygon given as an
// ordered vertex list (implicitly closed). Ray casting over the edges:
// cast a horizontal ray towards +inf in longitude and toggle on each
// crossing. Fewer than 3 vertices is degenerate and always false.
// Self-intersecting polygons give undefined results; points exactly on
// an edge or vertex are implementation-defined.
func PointInPolygon(p types.Point, poly []types.Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		vi, vj := poly[i], poly[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) &&
			p.Lng < (vj.Lng-vi.Lng)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lng {
			inside = !inside
		}
		j = i
	}
	return inside
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
