package css

import (
	"fortio.org/safecast"
)

// DefaultFontSize is font size in points em values are relative to.
const DefaultFontSize = 12.0

var twipsPerUnit = map[string]float64{
	"pt": 20,
	"pc": 240,
	"in": 1440,
	"cm": 1440 / 2.54,
	"mm": 1440 / 25.4,
	"px": 15, // 96 dpi
}

// Twips converts length value into twentieths of a point. Relative em and rem
// units are resolved against fontSize in points, zero selects
// DefaultFontSize. Unitless numbers other than zero, percentages and keywords
// are not lengths.
func (v Value) Twips(fontSize float64) (int, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}

	var factor float64
	switch v.Unit {
	case "":
		if v.Value != 0 {
			return 0, false
		}
		return 0, true
	case "em", "rem":
		factor = fontSize * 20
	default:
		f, ok := twipsPerUnit[v.Unit]
		if !ok {
			return 0, false
		}
		factor = f
	}
	tw, err := safecast.Round[int](v.Value * factor)
	if err != nil {
		return 0, false
	}
	return tw, true
}
