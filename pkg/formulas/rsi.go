package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// CalculateRSI returns the current Relative Strength Index over the given
// period, or nil when the series is too short to produce one.
func CalculateRSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)
	if len(rsi) == 0 {
		return nil
	}

	last := rsi[len(rsi)-1]
	if math.IsNaN(last) {
		return nil
	}
	return &last
}
