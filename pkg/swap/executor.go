package swap

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"time"

	"dexswap/pkg/contracts"
	"dexswap/pkg/quote"
	"dexswap/pkg/store"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

const bpsDenominator = 10000

// MinAmountOut applies the slippage tolerance:
// amountOut * (10000 - slippageBps) / 10000
func MinAmountOut(amountOut *big.Int, slippagePercent float64) *big.Int {
	if amountOut == nil || amountOut.Sign() <= 0 {
		return new(big.Int)
	}
	bps := int64(math.Round(slippagePercent * 100))
	if bps < 0 {
		bps = 0
	}
	if bps > bpsDenominator {
		bps = bpsDenominator
	}
	out := new(big.Int).Mul(amountOut, big.NewInt(bpsDenominator-bps))
	return out.Div(out, big.NewInt(bpsDenominator))
}

// Deadline returns the unix timestamp minutes after now
func Deadline(now time.Time, minutes int) *big.Int {
	return big.NewInt(now.Add(time.Duration(minutes) * time.Minute).Unix())
}

// Result describes the transactions one swap sent
type Result struct {
	ApproveTx    *common.Hash `json:"approve_tx,omitempty"`
	SwapTx       common.Hash  `json:"swap_tx"`
	Method       string       `json:"method"`
	MinAmountOut *big.Int     `json:"min_amount_out"`
	Deadline     *big.Int     `json:"deadline"`
}

// Executor submits swaps for quotes
type Executor struct {
	router *contracts.Router
	caller ethereum.ContractCaller
	signer *contracts.Signer
	now    func() time.Time
	log    logrus.FieldLogger
}

func NewExecutor(router *contracts.Router, caller ethereum.ContractCaller, signer *contracts.Signer, log logrus.FieldLogger) *Executor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Executor{router: router, caller: caller, signer: signer, now: time.Now, log: log}
}

// Execute approves the router if needed and sends the swap for q's route.
// When the swap itself fails the partial result is returned with the error
// so a sent approval is not lost.
func (e *Executor) Execute(ctx context.Context, q *quote.Quote, settings store.Settings, recipient common.Address) (*Result, error) {
	if q == nil || q.Route == nil {
		return nil, ErrNoQuote
	}
	if e.signer == nil {
		return nil, ErrNoSigner
	}
	if q.AmountIn == nil || q.AmountIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if recipient == (common.Address{}) {
		recipient = e.signer.Address()
	}

	res := &Result{
		MinAmountOut: MinAmountOut(q.AmountOut, settings.SlippagePercent),
		Deadline:     Deadline(e.now(), settings.DeadlineMinutes),
	}
	path := q.Route.Path

	logger := e.log.WithFields(logrus.Fields{
		"in":      q.TokenIn.Symbol(),
		"out":     q.TokenOut.Symbol(),
		"amount":  q.AmountIn.String(),
		"min_out": res.MinAmountOut.String(),
	})

	if !q.TokenIn.IsNative() {
		approveTx, err := e.ensureAllowance(ctx, q.TokenIn.Address(), q.AmountIn)
		if err != nil {
			return nil, err
		}
		res.ApproveTx = approveTx
	}

	var (
		hash common.Hash
		err  error
	)
	switch {
	case q.TokenIn.IsNative():
		res.Method = "swapExactETHForTokens"
		hash, err = e.router.SwapExactETHForTokens(ctx, e.signer, q.AmountIn, res.MinAmountOut, path, recipient, res.Deadline)
	case q.TokenOut.IsNative():
		res.Method = "swapExactTokensForETH"
		hash, err = e.router.SwapExactTokensForETH(ctx, e.signer, q.AmountIn, res.MinAmountOut, path, recipient, res.Deadline)
	default:
		res.Method = "swapExactTokensForTokens"
		hash, err = e.router.SwapExactTokensForTokens(ctx, e.signer, q.AmountIn, res.MinAmountOut, path, recipient, res.Deadline)
	}
	if err != nil {
		logger.WithError(err).Error("swap failed")
		return res, fmt.Errorf("swap failed: %w", err)
	}

	res.SwapTx = hash
	logger.WithField("tx", hash.Hex()).Info("swap submitted")
	return res, nil
}

// ensureAllowance approves the router for amount when the current allowance
// is lower. It returns the approval hash, or nil when none was needed.
func (e *Executor) ensureAllowance(ctx context.Context, tokenAddr common.Address, amount *big.Int) (*common.Hash, error) {
	return contracts.NewERC20(tokenAddr, e.caller).EnsureAllowance(ctx, e.signer, e.router.Address(), amount)
}
