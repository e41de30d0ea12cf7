package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CalculateReturns converts prices to simple daily returns.
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

// AnnualizedVolatility is the standard deviation of daily returns scaled by
// sqrt(252 trading days).
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}
	return stat.StdDev(dailyReturns, nil) * math.Sqrt(252)
}

// CalculateVolatility computes annualized volatility straight from a price
// series. Returns nil when the series is too short.
func CalculateVolatility(prices []float64) *float64 {
	if len(prices) < 3 {
		return nil
	}
	v := AnnualizedVolatility(CalculateReturns(prices))
	return &v
}
