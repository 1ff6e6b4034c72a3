package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Router is the Uniswap V2 Router02 periphery contract
type Router struct {
	contract
}

func NewRouter(address common.Address, caller ethereum.ContractCaller) *Router {
	return &Router{contract{address: address, abi: routerAbi, caller: caller}}
}

// GetAmountsOut returns the amount at every hop of path for amountIn.
// The last element is the final output.
func (r *Router) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	var amounts []*big.Int
	if err := r.call(ctx, &amounts, "getAmountsOut", amountIn, path); err != nil {
		return nil, err
	}
	return amounts, nil
}

func (r *Router) AddLiquidity(ctx context.Context, s *Signer, tokenA, tokenB common.Address,
	amountADesired, amountBDesired, amountAMin, amountBMin *big.Int, to common.Address, deadline *big.Int) (common.Hash, error) {
	return r.transact(ctx, s, nil, "addLiquidity",
		tokenA, tokenB, amountADesired, amountBDesired, amountAMin, amountBMin, to, deadline)
}

// AddLiquidityETH pairs token with value wei of the native currency
func (r *Router) AddLiquidityETH(ctx context.Context, s *Signer, value *big.Int, token common.Address,
	amountTokenDesired, amountTokenMin, amountETHMin *big.Int, to common.Address, deadline *big.Int) (common.Hash, error) {
	return r.transact(ctx, s, value, "addLiquidityETH",
		token, amountTokenDesired, amountTokenMin, amountETHMin, to, deadline)
}

func (r *Router) RemoveLiquidityETH(ctx context.Context, s *Signer, token common.Address,
	liquidity, amountTokenMin, amountETHMin *big.Int, to common.Address, deadline *big.Int) (common.Hash, error) {
	return r.transact(ctx, s, nil, "removeLiquidityETH",
		token, liquidity, amountTokenMin, amountETHMin, to, deadline)
}

func (r *Router) SwapExactETHForTokens(ctx context.Context, s *Signer, value, amountOutMin *big.Int,
	path []common.Address, to common.Address, deadline *big.Int) (common.Hash, error) {
	return r.transact(ctx, s, value, "swapExactETHForTokens", amountOutMin, path, to, deadline)
}

func (r *Router) SwapExactTokensForETH(ctx context.Context, s *Signer, amountIn, amountOutMin *big.Int,
	path []common.Address, to common.Address, deadline *big.Int) (common.Hash, error) {
	return r.transact(ctx, s, nil, "swapExactTokensForETH", amountIn, amountOutMin, path, to, deadline)
}

func (r *Router) SwapExactTokensForTokens(ctx context.Context, s *Signer, amountIn, amountOutMin *big.Int,
	path []common.Address, to common.Address, deadline *big.Int) (common.Hash, error) {
	return r.transact(ctx, s, nil, "swapExactTokensForTokens", amountIn, amountOutMin, path, to, deadline)
}
