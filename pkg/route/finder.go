// Package route discovers swap paths through the router and picks the one
// with the best output.
package route

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"dexswap/pkg/token"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// AmountsQuerier is the router's getAmountsOut view
type AmountsQuerier interface {
	GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error)
}

// Route is one evaluated path. Path holds 2 addresses for a direct swap and
// 3 for a hop through a base asset.
type Route struct {
	Path        []common.Address `json:"path"`
	AmountIn    *big.Int         `json:"amount_in"`
	AmountOut   *big.Int         `json:"amount_out"`
	PriceImpact float64          `json:"price_impact"`
	MultiHop    bool             `json:"multi_hop"`
}

// Finder enumerates the direct path and one-hop paths through base assets
type Finder struct {
	registry    *token.Registry
	router      AmountsQuerier
	pairs       PairChecker
	bases       []common.Address
	coefficient float64
	cap         float64
	log         logrus.FieldLogger
}

type Option func(*Finder)

// WithPairChecker excludes hops without a pool or with empty reserves before
// asking the router
func WithPairChecker(pc PairChecker) Option {
	return func(f *Finder) { f.pairs = pc }
}

func WithImpact(coefficient, capPercent float64) Option {
	return func(f *Finder) {
		f.coefficient = coefficient
		f.cap = capPercent
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(f *Finder) { f.log = log }
}

func NewFinder(registry *token.Registry, router AmountsQuerier, bases []common.Address, opts ...Option) *Finder {
	f := &Finder{
		registry:    registry,
		router:      router,
		bases:       bases,
		coefficient: DefaultImpactCoefficient,
		cap:         DefaultImpactCap,
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindBestRoute returns the candidate with the largest output, preferring
// the earliest enumerated on ties. A nil route with a nil error means no
// path produced output.
func (f *Finder) FindBestRoute(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*Route, error) {
	candidates, err := f.evaluate(ctx, tokenIn, tokenOut, amountIn)
	if err != nil || len(candidates) == 0 {
		return nil, err
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.AmountOut.Cmp(best.AmountOut) > 0 {
			best = c
		}
	}
	return &best, nil
}

// FindAllRoutes returns every candidate with positive output, best first
func (f *Finder) FindAllRoutes(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) ([]Route, error) {
	candidates, err := f.evaluate(ctx, tokenIn, tokenOut, amountIn)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AmountOut.Cmp(candidates[j].AmountOut) > 0
	})
	return candidates, nil
}

// Paths lists the candidate paths for a normalized pair in enumeration order
func (f *Finder) Paths(in, out common.Address) [][]common.Address {
	paths := [][]common.Address{{in, out}}
	seen := make(map[common.Address]bool, len(f.bases))
	for _, base := range f.bases {
		base = f.registry.Normalize(base)
		if base == in || base == out || seen[base] {
			continue
		}
		seen[base] = true
		paths = append(paths, []common.Address{in, base, out})
	}
	return paths
}

type result struct {
	route *Route
	err   error
}

func (f *Finder) evaluate(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) ([]Route, error) {
	in := f.registry.Normalize(tokenIn)
	out := f.registry.Normalize(tokenOut)
	if in == out {
		return nil, nil
	}

	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	paths := f.Paths(in, out)
	results := make([]result, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path []common.Address) {
			defer wg.Done()
			r, err := f.quotePath(ctx, path, amountIn)
			results[i] = result{route: r, err: err}
		}(i, path)
	}
	wg.Wait()

	impact := EstimatePriceImpact(amountIn, f.decimals(tokenIn), f.coefficient, f.cap)

	var (
		candidates []Route
		failures   int
		lastErr    error
	)
	for i, res := range results {
		logger := f.log.WithField("path", pathString(paths[i]))
		switch {
		case res.err != nil:
			failures++
			lastErr = res.err
			logger.WithError(res.err).Debug("path query failed")
		case res.route == nil:
			logger.Debug("path excluded")
		default:
			res.route.PriceImpact = impact
			candidates = append(candidates, *res.route)
		}
	}

	if failures == len(paths) {
		return nil, fmt.Errorf("%w: %v", ErrAllPathsFailed, lastErr)
	}
	return candidates, nil
}

// quotePath returns nil without error when the path is excluded
func (f *Finder) quotePath(ctx context.Context, path []common.Address, amountIn *big.Int) (*Route, error) {
	if f.pairs != nil {
		for i := 0; i < len(path)-1; i++ {
			ok, err := f.pairs.HasLiquidity(ctx, path[i], path[i+1])
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, nil
			}
		}
	}

	amounts, err := f.router.GetAmountsOut(ctx, amountIn, path)
	if err != nil {
		return nil, err
	}
	if len(amounts) != len(path) {
		return nil, fmt.Errorf("router returned %d amounts for %d hops", len(amounts), len(path))
	}

	amountOut := amounts[len(amounts)-1]
	if amountOut == nil || amountOut.Sign() <= 0 {
		return nil, nil
	}

	return &Route{
		Path:      path,
		AmountIn:  new(big.Int).Set(amountIn),
		AmountOut: amountOut,
		MultiHop:  len(path) > 2,
	}, nil
}

func (f *Finder) decimals(addr common.Address) uint8 {
	if a, ok := f.registry.ByAddress(addr); ok {
		return a.Decimals()
	}
	return 18
}

func pathString(path []common.Address) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += " -> "
		}
		s += p.Hex()
	}
	return s
}
