package swap

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"dexswap/internal/ethtest"
	"dexswap/pkg/contracts"
	"dexswap/pkg/quote"
	"dexswap/pkg/route"
	"dexswap/pkg/store"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

var (
	routerAddr = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	weth       = common.HexToAddress("0x00000000000000000000000000000000000000e1")
)

func TestMinAmountOut(t *testing.T) {
	assert.Equal(t, int64(995), MinAmountOut(big.NewInt(1000), 0.5).Int64())
	assert.Equal(t, int64(990), MinAmountOut(big.NewInt(1000), 1).Int64())
	assert.Equal(t, int64(500), MinAmountOut(big.NewInt(1000), 50).Int64())
	assert.Equal(t, int64(0), MinAmountOut(big.NewInt(0), 1).Int64())
}

func TestDeadline(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	assert.Equal(t, int64(1_700_001_200), Deadline(now, 20).Int64())
}

type harness struct {
	chain    *ethtest.Chain
	executor *Executor
	token    *ethtest.Contract
}

func newHarness(t *testing.T, allowance int64) *harness {
	t.Helper()
	chain := ethtest.NewChain()
	tok := chain.Deploy(usdc.Address(), contracts.ERC20ABI).Returns("allowance", big.NewInt(allowance))
	client := chain.Client(t)

	signer, err := contracts.NewSigner(client, testKey, chain.ChainID.Int64())
	require.NoError(t, err)

	e := NewExecutor(contracts.NewRouter(routerAddr, client), client, signer, nil)
	e.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return &harness{chain: chain, executor: e, token: tok}
}

func TestExecuteTokenToTokenApprovesFirst(t *testing.T) {
	h := newHarness(t, 0)
	q := &quote.Quote{TokenIn: usdc, TokenOut: dai, AmountIn: big.NewInt(5_000_000), AmountOut: big.NewInt(4_900_000)}
	q.Route = &route.Route{Path: []common.Address{usdc.Address(), weth, dai.Address()}, AmountIn: q.AmountIn, AmountOut: q.AmountOut, MultiHop: true}

	res, err := h.executor.Execute(context.Background(), q, store.Settings{SlippagePercent: 1, DeadlineMinutes: 20}, common.Address{})
	require.NoError(t, err)
	require.NotNil(t, res.ApproveTx)
	assert.Equal(t, "swapExactTokensForTokens", res.Method)
	assert.Equal(t, int64(4_851_000), res.MinAmountOut.Int64())
	assert.Equal(t, int64(1_700_001_200), res.Deadline.Int64())

	sent := h.chain.Sent()
	require.Len(t, sent, 2)

	method, args, err := ethtest.DecodeCall(contracts.ERC20ABI, sent[0].Data())
	require.NoError(t, err)
	assert.Equal(t, "approve", method)
	assert.Equal(t, routerAddr, args[0].(common.Address))
	assert.Equal(t, q.AmountIn, args[1].(*big.Int))

	method, args, err = ethtest.DecodeCall(contracts.RouterABI, sent[1].Data())
	require.NoError(t, err)
	assert.Equal(t, "swapExactTokensForTokens", method)
	assert.Equal(t, q.Route.Path, args[2].([]common.Address))
	assert.Equal(t, res.SwapTx, sent[1].Hash())
}

func TestExecuteSkipsApprovalWhenAllowed(t *testing.T) {
	h := newHarness(t, 10_000_000)
	q := &quote.Quote{TokenIn: usdc, TokenOut: eth, AmountIn: big.NewInt(5_000_000), AmountOut: big.NewInt(1e15)}
	q.Route = &route.Route{Path: []common.Address{usdc.Address(), weth}, AmountIn: q.AmountIn, AmountOut: q.AmountOut}

	res, err := h.executor.Execute(context.Background(), q, store.DefaultSettings(), common.Address{})
	require.NoError(t, err)
	assert.Nil(t, res.ApproveTx)
	assert.Equal(t, "swapExactTokensForETH", res.Method)
	assert.Len(t, h.chain.Sent(), 1)
}

func TestExecuteNativeInput(t *testing.T) {
	h := newHarness(t, 0)
	q := &quote.Quote{TokenIn: eth, TokenOut: usdc, AmountIn: big.NewInt(1e18), AmountOut: big.NewInt(2_000_000_000)}
	q.Route = &route.Route{Path: []common.Address{weth, usdc.Address()}, AmountIn: q.AmountIn, AmountOut: q.AmountOut}

	res, err := h.executor.Execute(context.Background(), q, store.DefaultSettings(), common.Address{})
	require.NoError(t, err)
	assert.Nil(t, res.ApproveTx)
	assert.Equal(t, "swapExactETHForTokens", res.Method)

	sent := h.chain.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, big.NewInt(1e18), sent[0].Value())
	assert.Zero(t, h.token.Calls("allowance"))
}

func TestExecuteKeepsApprovalWhenSwapFails(t *testing.T) {
	h := newHarness(t, 0)
	h.chain.Reject = map[common.Address]error{routerAddr: errors.New("insufficient funds for gas")}
	q := &quote.Quote{TokenIn: usdc, TokenOut: eth, AmountIn: big.NewInt(5_000_000), AmountOut: big.NewInt(1e15)}
	q.Route = &route.Route{Path: []common.Address{usdc.Address(), weth}, AmountIn: q.AmountIn, AmountOut: q.AmountOut}

	res, err := h.executor.Execute(context.Background(), q, store.DefaultSettings(), common.Address{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient funds")
	require.NotNil(t, res)
	require.NotNil(t, res.ApproveTx)
	assert.Len(t, h.chain.Sent(), 1)
}

func TestExecuteRejectsBadInput(t *testing.T) {
	h := newHarness(t, 0)

	_, err := h.executor.Execute(context.Background(), nil, store.DefaultSettings(), common.Address{})
	assert.ErrorIs(t, err, ErrNoQuote)

	q := &quote.Quote{TokenIn: eth, TokenOut: usdc, AmountIn: big.NewInt(1), AmountOut: big.NewInt(1)}
	q.Route = &route.Route{Path: []common.Address{weth, usdc.Address()}}
	_, err = h.executor.Execute(context.Background(), q, store.Settings{SlippagePercent: 0, DeadlineMinutes: 20}, common.Address{})
	assert.Error(t, err)

	noSigner := NewExecutor(h.executor.router, nil, nil, nil)
	_, err = noSigner.Execute(context.Background(), q, store.DefaultSettings(), common.Address{})
	assert.ErrorIs(t, err, ErrNoSigner)
}
