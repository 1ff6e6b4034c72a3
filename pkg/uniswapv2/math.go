package uniswapv2

import (
	"math/big"
)

// fee: 0.3% => multiplier 997/1000
var (
	feeMul = big.NewInt(997)
	feeDen = big.NewInt(1000)
)

// GetAmountOut applies the constant-product formula with the 0.3% fee.
// dst, t1 and t2 are caller-owned temporaries; the result is written to dst.
// An empty pool with a zero input yields 0.
func GetAmountOut(dst, t1, t2 *big.Int, amountIn, reserveIn, reserveOut *big.Int) *big.Int {
	// t1 = amountIn * 997
	t1.Mul(amountIn, feeMul)
	// t2 = reserveIn * 1000
	t2.Mul(reserveIn, feeDen)
	// t2 = t2 + t1  (denominator)
	t2.Add(t2, t1)
	if t2.Sign() <= 0 {
		return dst.SetInt64(0)
	}
	// dst = t1 * reserveOut (numerator)
	dst.Mul(t1, reserveOut)
	// dst = dst / t2  (avoid aliasing z==y)
	return dst.Div(dst, t2)
}

// Quote returns the amount of B equivalent to amountA at the pool ratio,
// as the router does when sizing the second side of a deposit.
func Quote(amountA, reserveA, reserveB *big.Int) *big.Int {
	if amountA.Sign() <= 0 || reserveA.Sign() <= 0 || reserveB.Sign() <= 0 {
		return new(big.Int)
	}
	out := new(big.Int).Mul(amountA, reserveB)
	return out.Div(out, reserveA)
}

// PriceImpact returns the percentage by which the execution price of a swap
// falls short of the pool's spot price, fee included.
func PriceImpact(amountIn, reserveIn, reserveOut *big.Int) float64 {
	if amountIn.Sign() <= 0 || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return 0
	}

	var out, t1, t2 big.Int
	GetAmountOut(&out, &t1, &t2, amountIn, reserveIn, reserveOut)

	// spot output = amountIn * reserveOut / reserveIn
	spot := new(big.Float).Quo(
		new(big.Float).Mul(new(big.Float).SetInt(amountIn), new(big.Float).SetInt(reserveOut)),
		new(big.Float).SetInt(reserveIn),
	)
	if spot.Sign() == 0 {
		return 0
	}

	ratio := new(big.Float).Quo(new(big.Float).SetInt(&out), spot)
	r, _ := ratio.Float64()
	impact := (1 - r) * 100
	if impact < 0 {
		return 0
	}
	return impact
}
