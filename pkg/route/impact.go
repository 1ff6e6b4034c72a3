package route

import (
	"math"
	"math/big"
)

const (
	DefaultImpactCoefficient = 0.1
	DefaultImpactCap         = 15.0
	DefaultImpactWarning     = 5.0
)

// EstimatePriceImpact is a display heuristic, not a reserve-based figure:
// min(amountIn/10^decimals * coefficient, capPercent).
func EstimatePriceImpact(amountIn *big.Int, decimals uint8, coefficient, capPercent float64) float64 {
	if amountIn == nil || amountIn.Sign() <= 0 || coefficient <= 0 || capPercent <= 0 {
		return 0
	}

	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	normalized, _ := new(big.Float).Quo(new(big.Float).SetInt(amountIn), scale).Float64()

	return math.Min(normalized*coefficient, capPercent)
}

// HighImpact reports whether impact should be flagged to the user
func HighImpact(impact, threshold float64) bool {
	return impact > threshold
}
