// Package portfolio reads account balances for a set of assets.
package portfolio

import (
	"context"
	"math/big"
	"sync"

	"dexswap/pkg/contracts"
	"dexswap/pkg/token"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Reader is the chain access balances need. *ethclient.Client satisfies it.
type Reader interface {
	ethereum.ContractCaller
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Balance is one asset's holding
type Balance struct {
	Asset  token.Asset
	Amount *big.Int
	// Err is the read failure, if any; Amount is zero in that case
	Err error
}

// Formatted renders the amount in whole-token units
func (b Balance) Formatted() string {
	return token.FormatUnits(b.Amount, b.Asset.Decimals())
}

// Tracker reads balances
type Tracker struct {
	reader Reader
	log    logrus.FieldLogger
}

func NewTracker(reader Reader, log logrus.FieldLogger) *Tracker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tracker{reader: reader, log: log}
}

// Balances reads every asset concurrently. A failed read yields a zero
// amount and is only logged; results keep the order of assets.
func (t *Tracker) Balances(ctx context.Context, owner common.Address, assets []token.Asset) []Balance {
	out := make([]Balance, len(assets))

	var wg sync.WaitGroup
	for i, a := range assets {
		wg.Add(1)
		go func(i int, a token.Asset) {
			defer wg.Done()
			amount, err := t.balance(ctx, owner, a)
			if err != nil {
				t.log.WithError(err).WithFields(logrus.Fields{
					"token": a.Symbol(),
					"owner": owner.Hex(),
				}).Debug("balance read failed")
				amount = new(big.Int)
			}
			out[i] = Balance{Asset: a, Amount: amount, Err: err}
		}(i, a)
	}
	wg.Wait()

	return out
}

func (t *Tracker) balance(ctx context.Context, owner common.Address, a token.Asset) (*big.Int, error) {
	if a.IsNative() {
		return t.reader.BalanceAt(ctx, owner, nil)
	}
	return contracts.NewERC20(a.Address(), t.reader).BalanceOf(ctx, owner)
}
