package alert

import (
	"context"
	"fmt"
	"math"

	"dexswap/pkg/quote"
	"dexswap/pkg/token"
)

// QuoteFunc is satisfied by (*quote.Quoter).Quote
type QuoteFunc func(ctx context.Context, req quote.Request) (*quote.Quote, error)

// Pricer prices alerts through the router
type Pricer struct {
	quote    QuoteFunc
	registry *token.Registry
}

func NewPricer(q QuoteFunc, registry *token.Registry) *Pricer {
	return &Pricer{quote: q, registry: registry}
}

// Price returns how many quoteToken one whole token buys
func (p *Pricer) Price(ctx context.Context, tokenQuery, quoteQuery string) (float64, error) {
	tok, err := p.registry.Lookup(tokenQuery)
	if err != nil {
		return 0, err
	}
	quoteTok, err := p.registry.Lookup(quoteQuery)
	if err != nil {
		return 0, err
	}

	q, err := p.quote(ctx, quote.Request{TokenIn: tok, TokenOut: quoteTok, AmountIn: "1"})
	if err != nil {
		return 0, fmt.Errorf("failed to get quote: %w", err)
	}
	if math.IsNaN(q.Rate) || q.Rate <= 0 {
		return 0, fmt.Errorf("invalid price for %s/%s", tok.Symbol(), quoteTok.Symbol())
	}
	return q.Rate, nil
}

// ShouldTrigger prices the alert and reports whether its condition holds
func (p *Pricer) ShouldTrigger(ctx context.Context, a *Alert) (bool, float64, error) {
	if a.Triggered {
		return false, 0, nil
	}
	price, err := p.Price(ctx, a.Token, a.QuoteToken)
	if err != nil {
		return false, 0, err
	}
	return Holds(a, price), price, nil
}
