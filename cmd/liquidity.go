package cmd

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/liquidity"
	"dexswap/pkg/store"
	"dexswap/pkg/token"
)

var liquidityYes bool

var liquidityCmd = &cobra.Command{
	Use:     "liquidity",
	Aliases: []string{"lp"},
	Short:   "Add or remove pool liquidity",
	Long: `Deposit two tokens into a pool or withdraw a position from a pool paired
with the native currency. Slippage and deadline come from your settings.

Examples:
  dexswap liquidity add 1 ETH USDC
  dexswap liquidity add 100 USDC DAI 100
  dexswap liquidity remove USDC all
  dexswap liquidity remove USDC 0.5`,
}

var liquidityAddCmd = &cobra.Command{
	Use:   "add <amount-a> <token-a> <token-b> [amount-b]",
	Short: "Add liquidity to a pool",
	Long: `Add liquidity to the pool of token A and token B. When amount B is omitted
it is sized from the current pool ratio.`,
	Args: cobra.RangeArgs(3, 4),
	Run:  runLiquidityAdd,
}

var liquidityRemoveCmd = &cobra.Command{
	Use:   "remove <token> <lp-amount|all>",
	Short: "Remove liquidity from a token/native pool",
	Args:  cobra.ExactArgs(2),
	Run:   runLiquidityRemove,
}

func init() {
	rootCmd.AddCommand(liquidityCmd)

	liquidityCmd.AddCommand(liquidityAddCmd)
	liquidityCmd.AddCommand(liquidityRemoveCmd)

	liquidityCmd.PersistentFlags().BoolVarP(&liquidityYes, "yes", "y", false, "Skip confirmation prompt")
}

func runLiquidityAdd(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	tokenA, err := a.registry.Lookup(args[1])
	if err != nil {
		fail(err)
	}
	tokenB, err := a.registry.Lookup(args[2])
	if err != nil {
		fail(err)
	}
	amountA, err := token.ParseUnits(args[0], tokenA.Decimals())
	if err != nil {
		fail(err)
	}

	signer, err := a.wallet()
	if err != nil {
		fail(err)
	}

	ctx, cancel := a.context()
	defer cancel()

	manager := a.liquidityManager()

	var amountB *big.Int
	if len(args) == 4 {
		amountB, err = token.ParseUnits(args[3], tokenB.Decimals())
		if err != nil {
			fail(err)
		}
	} else {
		info, err := manager.Pool(ctx, tokenA.Address(), tokenB.Address(), signer.Address())
		if err != nil {
			fail(fmt.Errorf("amount for %s is required when the pool cannot be read: %w", tokenB.Symbol(), err))
		}
		reserveA, reserveB := info.ReservesFor(a.registry.Normalize(tokenA.Address()))
		amountB = liquidity.OptimalAmount(amountA, reserveA, reserveB)
		if amountB.Sign() == 0 {
			fail(fmt.Errorf("pool is empty; pass the %s amount explicitly", tokenB.Symbol()))
		}
	}

	summary := fmt.Sprintf("Add %s %s and %s %s",
		token.FormatUnits(amountA, tokenA.Decimals()), tokenA.Symbol(),
		token.FormatUnits(amountB, tokenB.Decimals()), tokenB.Symbol())

	if !liquidityYes && !isJSON(cmd) {
		fmt.Printf("\n  %s\n", summary)
		if !confirm("Proceed?") {
			fmt.Println("\nCancelled.")
			os.Exit(0)
		}
	}

	stop := startSpinner(cmd, "Adding liquidity...")
	hash, err := manager.Add(ctx, tokenA, tokenB, amountA, amountB, a.settings(ctx))
	stop()
	if err != nil {
		a.recordTx(ctx, store.TxAddLiquidity, summary, nil, err)
		fail(err)
	}
	a.recordTx(ctx, store.TxAddLiquidity, summary, &hash, nil)

	if isJSON(cmd) {
		printJSON(map[string]string{"tx": hash.Hex(), "summary": summary})
		return
	}
	color.Green("\n✓ Liquidity added!")
	fmt.Printf("  Transaction:  %s\n\n", color.CyanString(hash.Hex()))
}

func runLiquidityRemove(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	tok, err := a.registry.Lookup(args[0])
	if err != nil {
		fail(err)
	}

	signer, err := a.wallet()
	if err != nil {
		fail(err)
	}

	ctx, cancel := a.context()
	defer cancel()

	manager := a.liquidityManager()

	var lpAmount *big.Int
	if strings.EqualFold(args[1], "all") {
		info, err := manager.Pool(ctx, tok.Address(), a.registry.Wrapped(), signer.Address())
		if err != nil {
			fail(err)
		}
		lpAmount = info.UserLP
	} else {
		lpAmount, err = token.ParseUnits(args[1], 18)
		if err != nil {
			fail(err)
		}
	}

	summary := fmt.Sprintf("Remove %s %s/%s LP", token.FormatUnits(lpAmount, 18), tok.Symbol(), a.registry.Native().Symbol())

	if !liquidityYes && !isJSON(cmd) {
		fmt.Printf("\n  %s\n", summary)
		if !confirm("Proceed?") {
			fmt.Println("\nCancelled.")
			os.Exit(0)
		}
	}

	stop := startSpinner(cmd, "Removing liquidity...")
	hash, err := manager.RemoveETH(ctx, tok, lpAmount, a.settings(ctx))
	stop()
	if err != nil {
		a.recordTx(ctx, store.TxRemoveLiquidity, summary, nil, err)
		fail(err)
	}
	a.recordTx(ctx, store.TxRemoveLiquidity, summary, &hash, nil)

	if isJSON(cmd) {
		printJSON(map[string]string{"tx": hash.Hex(), "summary": summary})
		return
	}
	color.Green("\n✓ Liquidity removed!")
	fmt.Printf("  Transaction:  %s\n\n", color.CyanString(hash.Hex()))
}
