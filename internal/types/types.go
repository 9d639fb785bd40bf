// README: Shared identifier and coordinate value objects.
package types

// ID is an opaque entity identifier (UUID string in storage).
type ID string

// Point is a WGS 84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies in the representable
// latitude/longitude range. Checked once at the HTTP boundary;
// geometry helpers assume valid input.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
