package route

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	"dexswap/internal/ethtest"
	"dexswap/pkg/contracts"
	"dexswap/pkg/token"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	weth = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	usdc = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	dai  = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	link = common.HexToAddress("0x00000000000000000000000000000000000000a1")
)

// fakeRouter answers getAmountsOut from a table keyed by path
type fakeRouter struct {
	mu    sync.Mutex
	outs  map[string]*big.Int
	errs  map[string]error
	calls []string
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{outs: map[string]*big.Int{}, errs: map[string]error{}}
}

func key(path ...common.Address) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = p.Hex()
	}
	return strings.Join(parts, ",")
}

func (r *fakeRouter) set(out int64, path ...common.Address) {
	r.outs[key(path...)] = big.NewInt(out)
}

func (r *fakeRouter) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	k := key(path...)
	r.mu.Lock()
	r.calls = append(r.calls, k)
	r.mu.Unlock()

	if err, ok := r.errs[k]; ok {
		return nil, err
	}
	out, ok := r.outs[k]
	if !ok {
		return nil, errors.New("execution reverted: INSUFFICIENT_LIQUIDITY")
	}
	amounts := make([]*big.Int, len(path))
	amounts[0] = amountIn
	for i := 1; i < len(path); i++ {
		amounts[i] = out
	}
	return amounts, nil
}

func testRegistry(t *testing.T) *token.Registry {
	t.Helper()
	reg, err := token.NewRegistry(token.NewNative("ETH", "Ether", 18), weth, []token.Asset{
		token.NewERC20(weth, "WETH", "Wrapped Ether", 18, "", true),
		token.NewERC20(usdc, "USDC", "USD Coin", 6, "", true),
		token.NewERC20(dai, "DAI", "Dai", 18, "", true),
		token.NewERC20(link, "LINK", "Chainlink", 18, "", false),
	})
	require.NoError(t, err)
	return reg
}

func TestFindBestRouteSameToken(t *testing.T) {
	router := newFakeRouter()
	f := NewFinder(testRegistry(t), router, []common.Address{weth})

	r, err := f.FindBestRoute(context.Background(), usdc, usdc, big.NewInt(1))
	require.NoError(t, err)
	assert.Nil(t, r)

	// native and wrapped native normalize to the same address
	r, err = f.FindBestRoute(context.Background(), token.NativeAddress, weth, big.NewInt(1))
	require.NoError(t, err)
	assert.Nil(t, r)

	// identical tokens mean no route even before the amount is checked
	r, err = f.FindBestRoute(context.Background(), token.NativeAddress, weth, big.NewInt(0))
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.Empty(t, router.calls)
}

func TestFindBestRoutePrefersBridgedWhenBetter(t *testing.T) {
	router := newFakeRouter()
	router.set(100, usdc, link)
	router.set(120, usdc, weth, link)

	f := NewFinder(testRegistry(t), router, []common.Address{weth})
	r, err := f.FindBestRoute(context.Background(), usdc, link, big.NewInt(1_000_000))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, []common.Address{usdc, weth, link}, r.Path)
	assert.Equal(t, int64(120), r.AmountOut.Int64())
	assert.True(t, r.MultiHop)
}

func TestFindBestRouteTiePrefersDirect(t *testing.T) {
	router := newFakeRouter()
	router.set(100, usdc, link)
	router.set(100, usdc, weth, link)
	router.set(100, usdc, dai, link)

	f := NewFinder(testRegistry(t), router, []common.Address{weth, dai})
	r, err := f.FindBestRoute(context.Background(), usdc, link, big.NewInt(5))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, []common.Address{usdc, link}, r.Path)
	assert.False(t, r.MultiHop)
}

func TestFindBestRouteTieBetweenBasesKeepsFirst(t *testing.T) {
	router := newFakeRouter()
	router.set(80, usdc, link)
	router.set(100, usdc, weth, link)
	router.set(100, usdc, dai, link)

	f := NewFinder(testRegistry(t), router, []common.Address{weth, dai})
	r, err := f.FindBestRoute(context.Background(), usdc, link, big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, []common.Address{usdc, weth, link}, r.Path)
}

func TestFindBestRouteNativeInput(t *testing.T) {
	router := newFakeRouter()
	router.set(3000, weth, usdc)

	f := NewFinder(testRegistry(t), router, []common.Address{weth})
	r, err := f.FindBestRoute(context.Background(), token.NativeAddress, usdc, big.NewInt(1e18))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, []common.Address{weth, usdc}, r.Path)
	// base equal to an endpoint is skipped
	assert.Equal(t, []string{key(weth, usdc)}, router.calls)
	// 1 whole token at 0.1% per token
	assert.InDelta(t, 0.1, r.PriceImpact, 1e-9)
}

func TestFindBestRouteZeroOutputExcluded(t *testing.T) {
	router := newFakeRouter()
	router.set(0, usdc, link)
	router.set(7, usdc, weth, link)

	f := NewFinder(testRegistry(t), router, []common.Address{weth})
	r, err := f.FindBestRoute(context.Background(), usdc, link, big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, int64(7), r.AmountOut.Int64())
}

func TestFindBestRouteNoCandidates(t *testing.T) {
	router := newFakeRouter()
	router.set(0, usdc, link)

	f := NewFinder(testRegistry(t), router, []common.Address{weth})
	r, err := f.FindBestRoute(context.Background(), usdc, link, big.NewInt(5))
	// the bridged path reverted but the direct one answered, so this is not
	// a total failure
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestFindBestRouteAllFailed(t *testing.T) {
	router := newFakeRouter()
	f := NewFinder(testRegistry(t), router, []common.Address{weth})

	_, err := f.FindBestRoute(context.Background(), usdc, link, big.NewInt(5))
	require.ErrorIs(t, err, ErrAllPathsFailed)
}

func TestFindBestRouteInvalidAmount(t *testing.T) {
	f := NewFinder(testRegistry(t), newFakeRouter(), nil)

	_, err := f.FindBestRoute(context.Background(), usdc, link, big.NewInt(0))
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.FindBestRoute(context.Background(), usdc, link, nil)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFindAllRoutesSorted(t *testing.T) {
	router := newFakeRouter()
	router.set(90, usdc, link)
	router.set(120, usdc, weth, link)
	router.set(90, usdc, dai, link)

	f := NewFinder(testRegistry(t), router, []common.Address{weth, dai})
	routes, err := f.FindAllRoutes(context.Background(), usdc, link, big.NewInt(5))
	require.NoError(t, err)
	require.Len(t, routes, 3)
	assert.Equal(t, int64(120), routes[0].AmountOut.Int64())
	// equal outputs keep enumeration order
	assert.Equal(t, []common.Address{usdc, link}, routes[1].Path)
	assert.Equal(t, []common.Address{usdc, dai, link}, routes[2].Path)
}

type staticPairs map[string]bool

func (p staticPairs) HasLiquidity(ctx context.Context, a, b common.Address) (bool, error) {
	return p[key(a, b)], nil
}

func TestPairCheckerExcludesMissingPools(t *testing.T) {
	router := newFakeRouter()
	router.set(100, usdc, link)
	router.set(500, usdc, weth, link)

	pairs := staticPairs{key(usdc, link): true, key(usdc, weth): true}
	f := NewFinder(testRegistry(t), router, []common.Address{weth}, WithPairChecker(pairs))

	r, err := f.FindBestRoute(context.Background(), usdc, link, big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, []common.Address{usdc, link}, r.Path)
	assert.Equal(t, []string{key(usdc, link)}, router.calls)
}

func TestFactoryChecker(t *testing.T) {
	factory := common.HexToAddress("0x0000000000000000000000000000000000000f01")
	full := common.HexToAddress("0x0000000000000000000000000000000000000b01")
	empty := common.HexToAddress("0x0000000000000000000000000000000000000b02")

	chain := ethtest.NewChain()
	chain.Deploy(factory, contracts.FactoryABI).On("getPair", func(args []interface{}) ([]interface{}, error) {
		switch key(args[0].(common.Address), args[1].(common.Address)) {
		case key(usdc, weth):
			return []interface{}{full}, nil
		case key(usdc, dai):
			return []interface{}{empty}, nil
		}
		return []interface{}{common.Address{}}, nil
	})
	chain.Deploy(full, contracts.PairABI).Returns("getReserves", big.NewInt(10), big.NewInt(20), uint32(0))
	chain.Deploy(empty, contracts.PairABI).Returns("getReserves", big.NewInt(0), big.NewInt(0), uint32(0))

	checker := NewFactoryChecker(factory, chain.Client(t))
	ctx := context.Background()

	ok, err := checker.HasLiquidity(ctx, usdc, weth)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checker.HasLiquidity(ctx, usdc, dai)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = checker.HasLiquidity(ctx, usdc, link)
	require.NoError(t, err)
	assert.False(t, ok)
}
