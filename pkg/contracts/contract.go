// Package contracts holds typed bindings for the Uniswap V2 router, factory
// and pair contracts and for ERC-20 tokens.
package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Backend is the subset of an Ethereum client the Signer needs.
// *ethclient.Client satisfies it.
type Backend interface {
	ethereum.ContractCaller
	ethereum.GasEstimator
	ethereum.GasPricer
	ethereum.TransactionSender
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

type contract struct {
	address common.Address
	abi     *Abi
	caller  ethereum.ContractCaller
}

// call packs the input, runs eth_call against the latest block and decodes
// the result into ret
func (c *contract) call(ctx context.Context, ret interface{}, method string, params ...interface{}) error {
	input, err := c.abi.PackInput(method, params...)
	if err != nil {
		return err
	}

	output, err := c.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: input,
	}, nil)
	if err != nil {
		return fmt.Errorf("call %s on %s: %w", method, c.address.Hex(), err)
	}

	return c.abi.UnpackOutput(method, ret, output)
}

func (c *contract) transact(ctx context.Context, s *Signer, value *big.Int, method string, params ...interface{}) (common.Hash, error) {
	input, err := c.abi.PackInput(method, params...)
	if err != nil {
		return common.Hash{}, err
	}
	hash, err := s.Send(ctx, c.address, value, input)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s: %w", method, err)
	}
	return hash, nil
}

// Address returns the contract address
func (c *contract) Address() common.Address {
	return c.address
}
