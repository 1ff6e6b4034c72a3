package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/contracts"
	"dexswap/pkg/store"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash|record-id>",
	Short: "Check the status of a transaction",
	Long: `Check whether a submitted transaction is pending, confirmed or failed.
The argument is a transaction hash or the ID of an entry in 'dexswap history'.
The recorded status is updated once the transaction is mined.

Examples:
  dexswap status 0x1234...abcd
  dexswap status 0x1234...abcd --watch
  dexswap status 0x1234...abcd --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch until the transaction is mined")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	hash, err := a.resolveTxHash(args[0])
	if err != nil {
		fail(err)
	}

	if watchStatus {
		watchTxStatus(cmd, a, hash)
	} else {
		checkTxStatus(cmd, a, hash)
	}
}

// resolveTxHash accepts a hash or a recent-transaction ID
func (a *app) resolveTxHash(arg string) (common.Hash, error) {
	if strings.HasPrefix(arg, "0x") && len(arg) == 66 {
		return common.HexToHash(arg), nil
	}

	ctx, cancel := a.context()
	defer cancel()

	txs, err := a.state.RecentTransactions(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	for _, tx := range txs {
		if strings.HasPrefix(tx.ID, arg) {
			if tx.Hash == "" {
				return common.Hash{}, fmt.Errorf("transaction %s was never sent: %s", tx.ID, tx.Error)
			}
			return common.HexToHash(tx.Hash), nil
		}
	}
	return common.Hash{}, fmt.Errorf("not a transaction hash or known record: %s", arg)
}

func checkTxStatus(cmd *cobra.Command, a *app, hash common.Hash) {
	ctx, cancel := a.context()
	defer cancel()

	stop := startSpinner(cmd, "Checking transaction status...")
	info, err := contracts.TransactionInfo(ctx, a.dial(), hash)
	stop()
	if err != nil {
		fail(err)
	}
	a.syncRecord(ctx, info)

	if isJSON(cmd) {
		printJSON(info)
		return
	}
	displayStatus(info)
}

func watchTxStatus(cmd *cobra.Command, a *app, hash common.Hash) {
	if isJSON(cmd) {
		fail(fmt.Errorf("watch mode not supported with JSON output"))
	}

	fmt.Printf("\nWatching transaction %s\n", color.CyanString(hash.Hex()))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	for {
		if done := checkAndDisplayStatus(ctx, a, hash); done {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// checkAndDisplayStatus reports whether the transaction reached a final state
func checkAndDisplayStatus(ctx context.Context, a *app, hash common.Hash) bool {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	info, err := contracts.TransactionInfo(ctx, a.dial(), hash)
	if err != nil {
		color.Red("Error: %v", err)
		return false
	}
	a.syncRecord(ctx, info)
	displayStatus(info)
	return info.Status != contracts.TxPending
}

// syncRecord copies a final status into the recent-transactions list
func (a *app) syncRecord(ctx context.Context, info *contracts.TxInfo) {
	var status store.TxStatus
	var msg string
	switch info.Status {
	case contracts.TxConfirmed:
		status = store.TxConfirmed
	case contracts.TxFailed:
		status = store.TxFailed
		msg = "transaction reverted"
	default:
		return
	}
	if err := a.state.UpdateTransaction(ctx, info.Hash, status, msg); err != nil {
		a.log.WithError(err).Debug("no recent transaction to update")
	}
}

func displayStatus(info *contracts.TxInfo) {
	banner("TRANSACTION STATUS", 70)

	fmt.Printf("\n  Hash:         %s\n", color.CyanString(info.Hash))
	fmt.Printf("  Status:       %s\n", getColoredStatus(info.Status))
	fmt.Printf("  To:           %s\n", info.To)
	fmt.Printf("  Nonce:        %d\n", info.Nonce)
	fmt.Printf("  Value:        %s wei\n", info.Value)
	fmt.Printf("  Gas Limit:    %d\n", info.GasLimit)
	if info.BlockNumber > 0 {
		fmt.Printf("  Block:        %d\n", info.BlockNumber)
		fmt.Printf("  Gas Used:     %d\n", info.GasUsed)
	}

	footer(70)
}

func getColoredStatus(status contracts.TxStatus) string {
	s := strings.ToUpper(string(status))

	switch status {
	case contracts.TxConfirmed:
		return color.GreenString(s)
	case contracts.TxPending:
		return color.YellowString(s)
	case contracts.TxFailed:
		return color.RedString(s)
	default:
		return s
	}
}
