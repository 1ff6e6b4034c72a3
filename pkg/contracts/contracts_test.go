package contracts

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"dexswap/internal/ethtest"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	routerAddr  = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	factoryAddr = common.HexToAddress("0x0000000000000000000000000000000000000f01")
	pairAddr    = common.HexToAddress("0x0000000000000000000000000000000000000abc")
	tokenA      = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenB      = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func TestRouterGetAmountsOut(t *testing.T) {
	chain := ethtest.NewChain()
	chain.Deploy(routerAddr, RouterABI).On("getAmountsOut", func(args []interface{}) ([]interface{}, error) {
		in := args[0].(*big.Int)
		path := args[1].([]common.Address)
		amounts := []*big.Int{in}
		for range path[1:] {
			amounts = append(amounts, new(big.Int).Mul(in, big.NewInt(2)))
		}
		return []interface{}{amounts}, nil
	})

	router := NewRouter(routerAddr, chain.Client(t))
	amounts, err := router.GetAmountsOut(context.Background(), big.NewInt(50), []common.Address{tokenA, tokenB})
	require.NoError(t, err)
	require.Len(t, amounts, 2)
	assert.Equal(t, int64(50), amounts[0].Int64())
	assert.Equal(t, int64(100), amounts[1].Int64())
}

func TestRouterRevert(t *testing.T) {
	chain := ethtest.NewChain()
	chain.Deploy(routerAddr, RouterABI).On("getAmountsOut", func([]interface{}) ([]interface{}, error) {
		return nil, errors.New("execution reverted: UniswapV2Library: INSUFFICIENT_LIQUIDITY")
	})

	router := NewRouter(routerAddr, chain.Client(t))
	_, err := router.GetAmountsOut(context.Background(), big.NewInt(1), []common.Address{tokenA, tokenB})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INSUFFICIENT_LIQUIDITY")
}

func TestFactoryAndPair(t *testing.T) {
	chain := ethtest.NewChain()
	chain.Deploy(factoryAddr, FactoryABI).On("getPair", func(args []interface{}) ([]interface{}, error) {
		if args[0].(common.Address) == tokenA && args[1].(common.Address) == tokenB {
			return []interface{}{pairAddr}, nil
		}
		return []interface{}{common.Address{}}, nil
	})
	chain.Deploy(pairAddr, PairABI).
		Returns("getReserves", big.NewInt(1000), big.NewInt(2000), uint32(7)).
		Returns("token0", tokenA).
		Returns("token1", tokenB).
		Returns("totalSupply", big.NewInt(1414)).
		Returns("balanceOf", big.NewInt(100))

	client := chain.Client(t)
	ctx := context.Background()

	factory := NewFactory(factoryAddr, client)
	addr, err := factory.GetPair(ctx, tokenA, tokenB)
	require.NoError(t, err)
	assert.Equal(t, pairAddr, addr)

	none, err := factory.GetPair(ctx, tokenB, tokenA)
	require.NoError(t, err)
	assert.Equal(t, common.Address{}, none)

	pair := NewPair(addr, client)
	reserves, err := pair.GetReserves(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), reserves.Reserve0.Int64())
	assert.Equal(t, int64(2000), reserves.Reserve1.Int64())
	assert.Equal(t, uint32(7), reserves.BlockTimestampLast)

	t0, err := pair.Token0(ctx)
	require.NoError(t, err)
	assert.Equal(t, tokenA, t0)

	t1, err := pair.Token1(ctx)
	require.NoError(t, err)
	assert.Equal(t, tokenB, t1)

	supply, err := pair.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1414), supply.Int64())

	lp, err := pair.BalanceOf(ctx, tokenA)
	require.NoError(t, err)
	assert.Equal(t, int64(100), lp.Int64())
}

func TestERC20Reads(t *testing.T) {
	chain := ethtest.NewChain()
	chain.Deploy(tokenA, ERC20ABI).
		Returns("balanceOf", big.NewInt(42)).
		Returns("allowance", big.NewInt(0)).
		Returns("decimals", uint8(6)).
		Returns("symbol", "USDC").
		Returns("name", "USD Coin")

	erc20 := NewERC20(tokenA, chain.Client(t))
	ctx := context.Background()

	bal, err := erc20.BalanceOf(ctx, tokenB)
	require.NoError(t, err)
	assert.Equal(t, int64(42), bal.Int64())

	allowance, err := erc20.Allowance(ctx, tokenB, routerAddr)
	require.NoError(t, err)
	assert.Zero(t, allowance.Sign())

	dec, err := erc20.Decimals(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), dec)

	sym, err := erc20.Symbol(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USDC", sym)

	name, err := erc20.Name(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USD Coin", name)
}

func TestCallWithoutCode(t *testing.T) {
	chain := ethtest.NewChain()
	erc20 := NewERC20(tokenB, chain.Client(t))

	_, err := erc20.Decimals(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unpack output")
}

func TestSignerSendsSwap(t *testing.T) {
	chain := ethtest.NewChain()
	client := chain.Client(t)

	signer, err := NewSigner(client, "0x"+testKey, chain.ChainID.Int64())
	require.NoError(t, err)

	key, _ := crypto.HexToECDSA(testKey)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), signer.Address())

	router := NewRouter(routerAddr, client)
	value := big.NewInt(1e18)
	path := []common.Address{tokenA, tokenB}
	hash, err := router.SwapExactETHForTokens(context.Background(), signer, value, big.NewInt(99), path, signer.Address(), big.NewInt(1700000000))
	require.NoError(t, err)

	sent := chain.Sent()
	require.Len(t, sent, 1)
	tx := sent[0]
	assert.Equal(t, hash, tx.Hash())
	assert.Equal(t, routerAddr, *tx.To())
	assert.Equal(t, value, tx.Value())
	assert.Equal(t, chain.GasEstimate*120/100, tx.Gas())
	assert.Equal(t, chain.GasPrice, tx.GasPrice())
	assert.Equal(t, uint64(0), tx.Nonce())

	method, args, err := ethtest.DecodeCall(RouterABI, tx.Data())
	require.NoError(t, err)
	assert.Equal(t, "swapExactETHForTokens", method)
	assert.Equal(t, int64(99), args[0].(*big.Int).Int64())
	assert.Equal(t, path, args[1].([]common.Address))
}

func TestSignerFallbackGasAndNonce(t *testing.T) {
	chain := ethtest.NewChain()
	chain.EstimateErr = errors.New("execution reverted")
	client := chain.Client(t)

	signer, err := NewSigner(client, testKey, chain.ChainID.Int64())
	require.NoError(t, err)

	erc20 := NewERC20(tokenA, client)
	_, err = erc20.Approve(context.Background(), signer, routerAddr, big.NewInt(5))
	require.NoError(t, err)
	_, err = erc20.Approve(context.Background(), signer, routerAddr, big.NewInt(6))
	require.NoError(t, err)

	sent := chain.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, DefaultGasLimit, sent[0].Gas())
	assert.Equal(t, uint64(0), sent[0].Nonce())
	assert.Equal(t, uint64(1), sent[1].Nonce())
}

func TestNewSignerRejectsBadKey(t *testing.T) {
	_, err := NewSigner(nil, "", 1)
	require.Error(t, err)

	_, err = NewSigner(nil, "not-hex", 1)
	require.Error(t, err)
}

func TestTransactionInfo(t *testing.T) {
	chain := ethtest.NewChain()
	client := chain.Client(t)
	signer, err := NewSigner(client, testKey, chain.ChainID.Int64())
	require.NoError(t, err)

	hash, err := signer.Send(context.Background(), tokenB, big.NewInt(10), nil)
	require.NoError(t, err)

	info, err := TransactionInfo(context.Background(), client, hash)
	require.NoError(t, err)
	assert.Equal(t, TxPending, info.Status)
	assert.Equal(t, tokenB.Hex(), info.To)

	chain.Mine(hash, 12, false)
	info, err = TransactionInfo(context.Background(), client, hash)
	require.NoError(t, err)
	assert.Equal(t, TxFailed, info.Status)
	assert.Equal(t, uint64(12), info.BlockNumber)
}
