package cmd

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/liquidity"
	"dexswap/pkg/route"
	"dexswap/pkg/token"
	"dexswap/pkg/uniswapv2"
)

var poolAmount string

var poolCmd = &cobra.Command{
	Use:   "pool <token-a> <token-b>",
	Short: "Show the reserves of a pair and your share of it",
	Long: `Show the pair contract, reserves and total supply of the pool for two
tokens. When a key is configured your LP balance and pool share are shown.
With --amount the exact price impact of selling that much token A into this
single pool is computed from the reserves.

Examples:
  dexswap pool ETH USDC
  dexswap pool USDC DAI --amount 1000`,
	Args: cobra.ExactArgs(2),
	Run:  runPool,
}

func init() {
	rootCmd.AddCommand(poolCmd)

	poolCmd.Flags().StringVar(&poolAmount, "amount", "", "Amount of token A to compute the price impact for")
}

type poolOutput struct {
	*liquidity.PoolInfo
	TokenA      string   `json:"token_a"`
	TokenB      string   `json:"token_b"`
	ReserveA    string   `json:"reserve_a"`
	ReserveB    string   `json:"reserve_b"`
	Amount      string   `json:"amount,omitempty"`
	AmountOut   string   `json:"amount_out,omitempty"`
	PriceImpact *float64 `json:"price_impact,omitempty"`
	HighImpact  bool     `json:"high_impact,omitempty"`
	Empty       bool     `json:"empty,omitempty"`
}

// liquidityManager builds a manager; the signer is optional for reads
func (a *app) liquidityManager() *liquidity.Manager {
	signer, err := a.wallet()
	if err != nil {
		a.log.WithError(err).Debug("no signer for liquidity manager")
	}
	return liquidity.NewManager(a.registry, a.factory(), a.router(), a.dial(), signer, a.log)
}

func runPool(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	tokenA, err := a.registry.Lookup(args[0])
	if err != nil {
		fail(err)
	}
	tokenB, err := a.registry.Lookup(args[1])
	if err != nil {
		fail(err)
	}

	var owner common.Address
	if s, err := a.wallet(); err == nil {
		owner = s.Address()
	}

	ctx, cancel := a.context()
	defer cancel()

	stop := startSpinner(cmd, "Reading pool...")
	info, err := a.liquidityManager().Pool(ctx, tokenA.Address(), tokenB.Address(), owner)
	stop()
	if err != nil {
		fail(err)
	}

	reserveA, reserveB := info.ReservesFor(a.registry.Normalize(tokenA.Address()))
	out := poolOutput{
		PoolInfo: info,
		TokenA:   tokenA.Symbol(),
		TokenB:   tokenB.Symbol(),
		ReserveA: token.FormatUnits(reserveA, tokenA.Decimals()),
		ReserveB: token.FormatUnits(reserveB, tokenB.Decimals()),
	}

	if poolAmount != "" {
		amountIn, err := token.ParseUnits(poolAmount, tokenA.Decimals())
		if err != nil {
			fail(err)
		}
		if amountIn.Sign() <= 0 {
			fail(liquidity.ErrEmptyAmount)
		}
		if reserveA.Sign() > 0 && reserveB.Sign() > 0 {
			var amountOut, t1, t2 big.Int
			uniswapv2.GetAmountOut(&amountOut, &t1, &t2, amountIn, reserveA, reserveB)
			impact := uniswapv2.PriceImpact(amountIn, reserveA, reserveB)
			out.Amount = poolAmount
			out.AmountOut = token.FormatUnits(&amountOut, tokenB.Decimals())
			out.PriceImpact = &impact
			out.HighImpact = route.HighImpact(impact, a.cfg.Quote.ImpactWarning)
		} else {
			out.Empty = true
		}
	}

	if isJSON(cmd) {
		printJSON(out)
		return
	}
	displayPool(out, owner)
}

func displayPool(p poolOutput, owner common.Address) {
	banner(fmt.Sprintf("POOL %s / %s", p.TokenA, p.TokenB), 70)

	fmt.Printf("\n  Pair:           %s\n", color.CyanString(p.Pair.Hex()))
	fmt.Printf("  Reserve %-6s  %s\n", p.TokenA+":", p.ReserveA)
	fmt.Printf("  Reserve %-6s  %s\n", p.TokenB+":", p.ReserveB)
	fmt.Printf("  LP Supply:      %s\n", token.FormatUnits(p.TotalSupply, 18))

	if owner != (common.Address{}) {
		fmt.Printf("\n  Your LP:        %s\n", token.FormatUnits(p.UserLP, 18))
		fmt.Printf("  Pool Share:     %.4f%%\n", p.SharePercent)
	}

	if p.Empty {
		color.Yellow("\n  Pool has no liquidity; no swap estimate.")
	}
	if p.PriceImpact != nil {
		fmt.Printf("\n  Selling %s %s returns ~%s %s\n", p.Amount, p.TokenA, p.AmountOut, p.TokenB)
		fmt.Printf("  Price Impact:   %s\n", impactString(*p.PriceImpact, p.HighImpact))
	}

	footer(70)
}
