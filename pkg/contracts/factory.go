package contracts

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Factory is the Uniswap V2 pair factory
type Factory struct {
	contract
}

func NewFactory(address common.Address, caller ethereum.ContractCaller) *Factory {
	return &Factory{contract{address: address, abi: factoryAbi, caller: caller}}
}

// GetPair returns the pair for a and b, or the zero address if none exists
func (f *Factory) GetPair(ctx context.Context, a, b common.Address) (common.Address, error) {
	var pair common.Address
	if err := f.call(ctx, &pair, "getPair", a, b); err != nil {
		return common.Address{}, err
	}
	return pair, nil
}
