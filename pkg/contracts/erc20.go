package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ERC20 is a fungible token contract
type ERC20 struct {
	contract
}

func NewERC20(address common.Address, caller ethereum.ContractCaller) *ERC20 {
	return &ERC20{contract{address: address, abi: erc20Abi, caller: caller}}
}

func (t *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	var bal *big.Int
	if err := t.call(ctx, &bal, "balanceOf", owner); err != nil {
		return nil, err
	}
	return bal, nil
}

func (t *ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	var allowance *big.Int
	if err := t.call(ctx, &allowance, "allowance", owner, spender); err != nil {
		return nil, err
	}
	return allowance, nil
}

func (t *ERC20) Decimals(ctx context.Context) (uint8, error) {
	var d uint8
	err := t.call(ctx, &d, "decimals")
	return d, err
}

func (t *ERC20) Symbol(ctx context.Context) (string, error) {
	var s string
	err := t.call(ctx, &s, "symbol")
	return s, err
}

func (t *ERC20) Name(ctx context.Context) (string, error) {
	var s string
	err := t.call(ctx, &s, "name")
	return s, err
}

func (t *ERC20) Approve(ctx context.Context, s *Signer, spender common.Address, amount *big.Int) (common.Hash, error) {
	return t.transact(ctx, s, nil, "approve", spender, amount)
}

// EnsureAllowance approves spender for amount when the signer's allowance is
// lower. The returned hash is nil when no approval was needed.
func (t *ERC20) EnsureAllowance(ctx context.Context, s *Signer, spender common.Address, amount *big.Int) (*common.Hash, error) {
	allowance, err := t.Allowance(ctx, s.Address(), spender)
	if err != nil {
		return nil, fmt.Errorf("failed to read allowance: %w", err)
	}
	if allowance.Cmp(amount) >= 0 {
		return nil, nil
	}

	hash, err := t.Approve(ctx, s, spender, amount)
	if err != nil {
		return nil, fmt.Errorf("approve failed: %w", err)
	}
	return &hash, nil
}
