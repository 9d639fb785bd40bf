// README: Money rounding shared across modules.
package types

import "math"

// Round2 rounds a currency amount to 2 decimal places. Quote math works
// in float64 and rounds at the edges, matching how fees are stored.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
