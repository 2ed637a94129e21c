package render

import (
	"math"
	"strconv"
)

// FormatPercent renders a [0,1] ratio as a percentage with one decimal place,
// e.g. 0.873 -> "87.3%". Exact ties round away from zero.
func FormatPercent(ratio float64) string {
	v := ratio * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64) + "%"
	}

	abs := math.Abs(v)
	// strconv rounds exact ties to even; .x5 ties are only exact at .25 and .75
	if frac := abs - math.Floor(abs); frac == 0.25 || frac == 0.75 {
		abs = (math.Floor(abs*10) + 1) / 10
		v = math.Copysign(abs, v)
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
