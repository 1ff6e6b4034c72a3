package route

import (
	"context"
	"math/big"

	"dexswap/pkg/contracts"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// PairChecker tells whether a pool with liquidity exists for a hop
type PairChecker interface {
	HasLiquidity(ctx context.Context, a, b common.Address) (bool, error)
}

// FactoryChecker resolves pairs through the factory and reads their reserves
type FactoryChecker struct {
	factory *contracts.Factory
	caller  ethereum.ContractCaller
}

func NewFactoryChecker(factory common.Address, caller ethereum.ContractCaller) *FactoryChecker {
	return &FactoryChecker{
		factory: contracts.NewFactory(factory, caller),
		caller:  caller,
	}
}

func (c *FactoryChecker) HasLiquidity(ctx context.Context, a, b common.Address) (bool, error) {
	pair, err := c.factory.GetPair(ctx, a, b)
	if err != nil {
		return false, err
	}
	if pair == (common.Address{}) {
		return false, nil
	}

	reserves, err := contracts.NewPair(pair, c.caller).GetReserves(ctx)
	if err != nil {
		return false, err
	}
	return positive(reserves.Reserve0) && positive(reserves.Reserve1), nil
}

func positive(v *big.Int) bool {
	return v != nil && v.Sign() > 0
}
