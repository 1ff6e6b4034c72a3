package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/poller"
	"dexswap/pkg/portfolio"
	"dexswap/pkg/token"
)

var (
	balanceWatch   bool
	balanceNonZero bool
)

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show token balances",
	Long: `Show the native and token balances of an address, or of your configured
key when no address is given. Tokens on your watchlist are included.

Balances that cannot be read are shown as zero.

Examples:
  dexswap balance
  dexswap balance 0x123... --non-zero
  dexswap balance --watch`,
	Args: cobra.MaximumNArgs(1),
	Run:  runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)

	balanceCmd.Flags().BoolVarP(&balanceWatch, "watch", "w", false, "Refresh on the balance polling interval")
	balanceCmd.Flags().BoolVar(&balanceNonZero, "non-zero", false, "Hide zero balances")
}

type balanceOutput struct {
	Symbol  string `json:"symbol"`
	Address string `json:"address"`
	Amount  string `json:"amount"`
	Raw     string `json:"raw"`
	Error   string `json:"error,omitempty"`
}

func runBalance(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	owner, err := a.owner(args)
	if err != nil {
		fail(err)
	}

	ctx, cancel := a.context()
	assets := a.trackedAssets(ctx)
	cancel()

	tracker := portfolio.NewTracker(a.dial(), a.log)

	if !balanceWatch {
		ctx, cancel := a.context()
		defer cancel()

		stop := startSpinner(cmd, "Reading balances...")
		balances := tracker.Balances(ctx, owner, assets)
		stop()
		printBalances(cmd, owner, balances)
		return
	}

	if isJSON(cmd) {
		fail(fmt.Errorf("watch mode not supported with JSON output"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := poller.New(a.log)
	defer scheduler.Stop()

	err = scheduler.Every("balances", a.cfg.Polling.Balances, func(ctx context.Context) {
		printBalances(cmd, owner, tracker.Balances(ctx, owner, assets))
	})
	if err != nil {
		fail(err)
	}

	fmt.Printf("Refreshing every %s. Press Ctrl+C to stop.\n", a.cfg.Polling.Balances)
	<-ctx.Done()
}

// trackedAssets is the registry plus watchlisted tokens it does not know.
// Unknown tokens are described from the chain; ones that cannot be read are
// skipped.
func (a *app) trackedAssets(ctx context.Context) []token.Asset {
	assets := a.registry.All()

	watchlist, err := a.state.Watchlist(ctx)
	if err != nil {
		a.log.WithError(err).Debug("failed to read watchlist")
		return assets
	}
	for _, addr := range watchlist {
		if _, ok := a.registry.ByAddress(addr); ok {
			continue
		}
		asset, err := a.describeToken(ctx, addr)
		if err != nil {
			a.log.WithError(err).WithField("token", addr.Hex()).Debug("skipping unreadable watchlist token")
			continue
		}
		assets = append(assets, asset)
	}
	return assets
}

func printBalances(cmd *cobra.Command, owner common.Address, balances []portfolio.Balance) {
	var shown []portfolio.Balance
	for _, b := range balances {
		if balanceNonZero && b.Amount.Sign() == 0 {
			continue
		}
		shown = append(shown, b)
	}

	if isJSON(cmd) {
		out := make([]balanceOutput, 0, len(shown))
		for _, b := range shown {
			o := balanceOutput{
				Symbol:  b.Asset.Symbol(),
				Address: b.Asset.Address().Hex(),
				Amount:  b.Formatted(),
				Raw:     b.Amount.String(),
			}
			if b.Err != nil {
				o.Error = b.Err.Error()
			}
			out = append(out, o)
		}
		printJSON(out)
		return
	}

	banner("BALANCES", 60)
	fmt.Printf("\n  Account: %s\n\n", color.CyanString(owner.Hex()))
	for _, b := range shown {
		amount := b.Formatted()
		if b.Err != nil {
			amount = color.HiBlackString(amount)
		}
		fmt.Printf("  %-10s  %s\n", color.YellowString(b.Asset.Symbol()), amount)
	}
	footer(60)
}
