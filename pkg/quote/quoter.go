// Package quote turns routes into user-facing quotes and keeps them fresh as
// the input changes.
package quote

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"dexswap/pkg/route"
	"dexswap/pkg/token"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNoRoute means no path produced a positive output
	ErrNoRoute = errors.New("no route found")
)

// Finder is implemented by *route.Finder
type Finder interface {
	FindBestRoute(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*route.Route, error)
}

// Request is one (tokenIn, tokenOut, amountIn) triple with a human amount
type Request struct {
	TokenIn  token.Asset
	TokenOut token.Asset
	AmountIn string
}

// Blank reports whether the request has no amount to quote: an empty input
// or a zero such as "0", "0." or ".00"
func (r Request) Blank() bool {
	amount := strings.TrimSpace(r.AmountIn)
	if amount == "" {
		return true
	}
	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" && frac == "" {
		return false
	}
	return strings.Trim(whole, "0") == "" && strings.Trim(frac, "0") == ""
}

// Quote is the evaluation of one request. It is never merged with another.
type Quote struct {
	TokenIn     token.Asset
	TokenOut    token.Asset
	AmountIn    *big.Int
	AmountOut   *big.Int
	Rate        float64
	PriceImpact float64
	Route       *route.Route
}

// AmountOutString formats the output in human units
func (q *Quote) AmountOutString() string {
	return token.FormatUnits(q.AmountOut, q.TokenOut.Decimals())
}

func (q *Quote) AmountInString() string {
	return token.FormatUnits(q.AmountIn, q.TokenIn.Decimals())
}

// Quoter evaluates requests through a route finder
type Quoter struct {
	finder Finder
}

func NewQuoter(finder Finder) *Quoter {
	return &Quoter{finder: finder}
}

func (q *Quoter) Quote(ctx context.Context, req Request) (*Quote, error) {
	amountIn, err := token.ParseUnits(req.AmountIn, req.TokenIn.Decimals())
	if err != nil {
		return nil, err
	}
	if amountIn.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero", token.ErrInvalidAmount)
	}

	r, err := q.finder.FindBestRoute(ctx, req.TokenIn.Address(), req.TokenOut.Address(), amountIn)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNoRoute
	}

	in := token.ToFloat(amountIn, req.TokenIn.Decimals())
	out := token.ToFloat(r.AmountOut, req.TokenOut.Decimals())
	var rate float64
	if in > 0 {
		rate = out / in
	}

	return &Quote{
		TokenIn:     req.TokenIn,
		TokenOut:    req.TokenOut,
		AmountIn:    amountIn,
		AmountOut:   r.AmountOut,
		Rate:        rate,
		PriceImpact: r.PriceImpact,
		Route:       r,
	}, nil
}
