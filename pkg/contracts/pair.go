package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Reserves mirrors the getReserves return tuple
type Reserves struct {
	Reserve0           *big.Int
	Reserve1           *big.Int
	BlockTimestampLast uint32
}

// Pair is a Uniswap V2 liquidity pool. Its LP token is itself an ERC-20.
type Pair struct {
	contract
}

func NewPair(address common.Address, caller ethereum.ContractCaller) *Pair {
	return &Pair{contract{address: address, abi: pairAbi, caller: caller}}
}

func (p *Pair) GetReserves(ctx context.Context) (*Reserves, error) {
	var r Reserves
	if err := p.call(ctx, &r, "getReserves"); err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Pair) Token0(ctx context.Context) (common.Address, error) {
	var addr common.Address
	err := p.call(ctx, &addr, "token0")
	return addr, err
}

func (p *Pair) Token1(ctx context.Context) (common.Address, error) {
	var addr common.Address
	err := p.call(ctx, &addr, "token1")
	return addr, err
}

// TotalSupply returns the outstanding LP supply
func (p *Pair) TotalSupply(ctx context.Context) (*big.Int, error) {
	var supply *big.Int
	if err := p.call(ctx, &supply, "totalSupply"); err != nil {
		return nil, err
	}
	return supply, nil
}

// BalanceOf returns owner's LP balance
func (p *Pair) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	var bal *big.Int
	if err := p.call(ctx, &bal, "balanceOf", owner); err != nil {
		return nil, err
	}
	return bal, nil
}

// LPToken returns the pair's LP token as an ERC-20 for allowance and approve
func (p *Pair) LPToken() *ERC20 {
	return NewERC20(p.address, p.caller)
}
