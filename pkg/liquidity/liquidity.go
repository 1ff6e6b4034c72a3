// Package liquidity reads pool state and adds or removes liquidity through
// the router.
package liquidity

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"dexswap/pkg/contracts"
	"dexswap/pkg/store"
	"dexswap/pkg/swap"
	"dexswap/pkg/token"
	"dexswap/pkg/uniswapv2"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoPair      = errors.New("pair does not exist")
	ErrNoSigner    = errors.New("no signer configured")
	ErrBothNative  = errors.New("a pool cannot pair the native currency with itself")
	ErrEmptyAmount = errors.New("amount must be positive")
)

// PoolInfo is a snapshot of one pair
type PoolInfo struct {
	Pair         common.Address `json:"pair"`
	Token0       common.Address `json:"token0"`
	Token1       common.Address `json:"token1"`
	Reserve0     *big.Int       `json:"reserve0"`
	Reserve1     *big.Int       `json:"reserve1"`
	TotalSupply  *big.Int       `json:"total_supply"`
	UserLP       *big.Int       `json:"user_lp"`
	SharePercent float64        `json:"share_percent"`
}

// ReservesFor returns the reserves ordered as (a, b)
func (p *PoolInfo) ReservesFor(a common.Address) (*big.Int, *big.Int) {
	if a == p.Token0 {
		return p.Reserve0, p.Reserve1
	}
	return p.Reserve1, p.Reserve0
}

// Manager works on pools of one factory/router deployment
type Manager struct {
	registry *token.Registry
	factory  *contracts.Factory
	router   *contracts.Router
	caller   ethereum.ContractCaller
	signer   *contracts.Signer
	now      func() time.Time
	log      logrus.FieldLogger
}

func NewManager(registry *token.Registry, factory *contracts.Factory, router *contracts.Router,
	caller ethereum.ContractCaller, signer *contracts.Signer, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		registry: registry,
		factory:  factory,
		router:   router,
		caller:   caller,
		signer:   signer,
		now:      time.Now,
		log:      log,
	}
}

// Pool reads the pair for a and b. owner may be the zero address, in which
// case UserLP is zero.
func (m *Manager) Pool(ctx context.Context, a, b, owner common.Address) (*PoolInfo, error) {
	a, b = m.registry.Normalize(a), m.registry.Normalize(b)

	pairAddr, err := m.factory.GetPair(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if pairAddr == (common.Address{}) {
		return nil, ErrNoPair
	}

	pair := contracts.NewPair(pairAddr, m.caller)
	reserves, err := pair.GetReserves(ctx)
	if err != nil {
		return nil, err
	}
	token0, err := pair.Token0(ctx)
	if err != nil {
		return nil, err
	}
	token1, err := pair.Token1(ctx)
	if err != nil {
		return nil, err
	}
	supply, err := pair.TotalSupply(ctx)
	if err != nil {
		return nil, err
	}

	info := &PoolInfo{
		Pair:        pairAddr,
		Token0:      token0,
		Token1:      token1,
		Reserve0:    reserves.Reserve0,
		Reserve1:    reserves.Reserve1,
		TotalSupply: supply,
		UserLP:      new(big.Int),
	}

	if owner != (common.Address{}) {
		lp, err := pair.BalanceOf(ctx, owner)
		if err != nil {
			// reads degrade; the pool itself is still useful
			m.log.WithError(err).WithField("pair", pairAddr.Hex()).Debug("failed to read LP balance")
		} else {
			info.UserLP = lp
		}
	}
	if supply.Sign() > 0 {
		share := new(big.Float).Quo(new(big.Float).SetInt(info.UserLP), new(big.Float).SetInt(supply))
		info.SharePercent, _ = new(big.Float).Mul(share, big.NewFloat(100)).Float64()
	}

	return info, nil
}

// OptimalAmount sizes the second side of a deposit at the pool ratio
func OptimalAmount(amountA, reserveA, reserveB *big.Int) *big.Int {
	return uniswapv2.Quote(amountA, reserveA, reserveB)
}

// minWithSlippage scales amount down by the slippage tolerance
func minWithSlippage(amount *big.Int, settings store.Settings) *big.Int {
	return swap.MinAmountOut(amount, settings.SlippagePercent)
}

// Add deposits amountA of a and amountB of b. When either side is native
// the router's ETH variant is used and the native amount is sent as value.
func (m *Manager) Add(ctx context.Context, a, b token.Asset, amountA, amountB *big.Int, settings store.Settings) (common.Hash, error) {
	if m.signer == nil {
		return common.Hash{}, ErrNoSigner
	}
	if a.IsNative() && b.IsNative() {
		return common.Hash{}, ErrBothNative
	}
	if amountA == nil || amountB == nil || amountA.Sign() <= 0 || amountB.Sign() <= 0 {
		return common.Hash{}, ErrEmptyAmount
	}
	if err := settings.Validate(); err != nil {
		return common.Hash{}, err
	}

	to := m.signer.Address()
	deadline := swap.Deadline(m.now(), settings.DeadlineMinutes)

	if b.IsNative() {
		a, b = b, a
		amountA, amountB = amountB, amountA
	}

	// approve the ERC-20 sides
	for _, side := range []struct {
		asset  token.Asset
		amount *big.Int
	}{{a, amountA}, {b, amountB}} {
		if side.asset.IsNative() {
			continue
		}
		erc20 := contracts.NewERC20(side.asset.Address(), m.caller)
		if _, err := erc20.EnsureAllowance(ctx, m.signer, m.router.Address(), side.amount); err != nil {
			return common.Hash{}, fmt.Errorf("%s: %w", side.asset.Symbol(), err)
		}
	}

	if a.IsNative() {
		return m.router.AddLiquidityETH(ctx, m.signer, amountA, b.Address(),
			amountB, minWithSlippage(amountB, settings), minWithSlippage(amountA, settings), to, deadline)
	}
	return m.router.AddLiquidity(ctx, m.signer, a.Address(), b.Address(),
		amountA, amountB, minWithSlippage(amountA, settings), minWithSlippage(amountB, settings), to, deadline)
}

// RemoveETH burns liquidity LP tokens of the token/native pool. The minimum
// amounts are the pro-rata share of the reserves scaled by slippage.
func (m *Manager) RemoveETH(ctx context.Context, tok token.Asset, liquidity *big.Int, settings store.Settings) (common.Hash, error) {
	if m.signer == nil {
		return common.Hash{}, ErrNoSigner
	}
	if tok.IsNative() {
		return common.Hash{}, ErrBothNative
	}
	if liquidity == nil || liquidity.Sign() <= 0 {
		return common.Hash{}, ErrEmptyAmount
	}
	if err := settings.Validate(); err != nil {
		return common.Hash{}, err
	}

	pool, err := m.Pool(ctx, tok.Address(), m.registry.Wrapped(), common.Address{})
	if err != nil {
		return common.Hash{}, err
	}

	tokenMin, ethMin := new(big.Int), new(big.Int)
	if pool.TotalSupply.Sign() > 0 {
		reserveToken, reserveETH := pool.ReservesFor(tok.Address())
		tokenMin = minWithSlippage(share(liquidity, reserveToken, pool.TotalSupply), settings)
		ethMin = minWithSlippage(share(liquidity, reserveETH, pool.TotalSupply), settings)
	}

	lp := contracts.NewPair(pool.Pair, m.caller).LPToken()
	if _, err := lp.EnsureAllowance(ctx, m.signer, m.router.Address(), liquidity); err != nil {
		return common.Hash{}, fmt.Errorf("LP token: %w", err)
	}

	return m.router.RemoveLiquidityETH(ctx, m.signer, tok.Address(), liquidity, tokenMin, ethMin,
		m.signer.Address(), swap.Deadline(m.now(), settings.DeadlineMinutes))
}

func share(liquidity, reserve, supply *big.Int) *big.Int {
	out := new(big.Int).Mul(liquidity, reserve)
	return out.Div(out, supply)
}
