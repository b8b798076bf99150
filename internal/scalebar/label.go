package scalebar

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"scalebar-service/internal/units"
)

// LabelString formats v with at most two decimals and thousands separators.
// Magnitudes below 0.01 keep three significant digits instead.
func LabelString(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	if v != 0 && math.Abs(v) < 0.01 {
		small, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 3, 64), 64)
		return strconv.FormatFloat(small, 'f', -1, 64)
	}
	v = math.Round(v*100) / 100
	if v == 0 {
		return "0"
	}
	return humanize.Commaf(v)
}

// Label renders d as "1,500 m".
func Label(d units.Distance) string {
	return LabelString(d.Value) + " " + d.Unit.Abbreviation
}
