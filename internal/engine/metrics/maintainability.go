package metrics

import "math"

// miCeiling is the upper clamp of the raw maintainability index before it is
// scaled to the 0-100 presentation range.
const miCeiling = 171.0

// Maintainability computes the file-level maintainability index
//
//	171 - 5.2*ln(avgVolume) - 0.23*avgCyclomatic - 16.2*ln(avgLogicalLOC)
//
// clamped to [0, 171] and scaled to 0-100. Non-positive logarithm arguments
// contribute nothing rather than faulting, so an empty file lands exactly at
// the ceiling.
func Maintainability(avgVolume, avgCyclomatic, avgLogicalLOC float64) float64 {
	raw := miCeiling
	if avgVolume > 0 {
		raw -= 5.2 * math.Log(avgVolume)
	}
	raw -= 0.23 * avgCyclomatic
	if avgLogicalLOC > 0 {
		raw -= 16.2 * math.Log(avgLogicalLOC)
	}

	if raw < 0 {
		raw = 0
	}
	if raw > miCeiling {
		raw = miCeiling
	}
	return raw * 100 / miCeiling
}
