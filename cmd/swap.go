package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/parser"
	"dexswap/pkg/quote"
	"dexswap/pkg/store"
	"dexswap/pkg/swap"
)

var (
	recipientAddr string
	noConfirm     bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <token-in> to <token-out>",
	Short: "Swap tokens through the best route",
	Long: `Quote a swap, ask for confirmation and submit it with the configured key.

ERC-20 inputs are approved for the router first when the current allowance is
too low. The minimum output and deadline come from your settings
(see 'dexswap settings').

Examples:
  dexswap swap 1.5 ETH to USDC
  dexswap swap 100 USDC to DAI --recipient 0x123...
  dexswap swap 0.1 WETH to LINK --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().StringVar(&recipientAddr, "recipient", "", "Recipient address (defaults to your own address)")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runSwap(cmd *cobra.Command, args []string) {
	swapReq, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		fail(err)
	}

	var recipient common.Address
	if recipientAddr != "" {
		if !common.IsHexAddress(recipientAddr) {
			fail(fmt.Errorf("invalid recipient address: %s", recipientAddr))
		}
		recipient = common.HexToAddress(recipientAddr)
	}

	jsonOutput := isJSON(cmd)

	a := setup(cmd)
	defer a.close()

	from, to, err := swapReq.Resolve(a.registry)
	if err != nil {
		fail(err)
	}

	signer, err := a.wallet()
	if err != nil {
		fail(err)
	}

	ctx, cancel := a.context()
	defer cancel()

	stop := startSpinner(cmd, "Fetching quote...")
	q, err := a.quoter().Quote(ctx, quote.Request{TokenIn: from, TokenOut: to, AmountIn: swapReq.Amount})
	stop()
	if err != nil {
		fail(err)
	}

	out := a.quoteOutput(ctx, q)
	if !jsonOutput {
		displayQuote(out)
	}

	if !noConfirm && !jsonOutput {
		prompt := "Proceed with swap?"
		if out.HighImpact {
			prompt = color.RedString("Price impact is high. Proceed anyway?")
		}
		if !confirm(prompt) {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
	}

	settings := a.settings(ctx)
	summary := fmt.Sprintf("Swap %s %s for %s %s", out.AmountIn, out.TokenIn, out.AmountOut, out.TokenOut)

	stop = startSpinner(cmd, "Sending transaction...")
	res, err := swap.NewExecutor(a.router(), a.dial(), signer, a.log).Execute(ctx, q, settings, recipient)
	stop()

	if res != nil && res.ApproveTx != nil {
		a.recordTx(ctx, store.TxApprove, "Approve "+out.TokenIn, res.ApproveTx, nil)
	}
	if err != nil {
		a.recordTx(ctx, store.TxSwap, summary, nil, err)
		fail(err)
	}
	a.recordTx(ctx, store.TxSwap, summary, &res.SwapTx, nil)

	if jsonOutput {
		printJSON(map[string]interface{}{
			"quote":  out,
			"result": res,
			"status": "submitted",
		})
		return
	}

	if res.ApproveTx != nil {
		fmt.Printf("  Approval Tx:  %s\n", color.HiBlackString(res.ApproveTx.Hex()))
	}
	color.Green("\n✓ Swap submitted!")
	fmt.Printf("  Transaction:  %s\n", color.CyanString(res.SwapTx.Hex()))
	fmt.Printf("  Method:       %s\n", res.Method)
	fmt.Printf("  Min Output:   %s %s\n", out.MinReceived, out.TokenOut)
	fmt.Printf("  From:         %s\n", signer.Address().Hex())

	fmt.Println("\nYou can monitor the transaction using:")
	color.Cyan("  dexswap status %s --watch\n", res.SwapTx.Hex())
}
