package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/store"
)

var (
	historyClear bool
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent transactions",
	Long: fmt.Sprintf(`List the transactions sent from this machine, most recent first.
Up to %d entries are kept. Use 'dexswap status <id>' to refresh one.

Examples:
  dexswap history
  dexswap history --limit 5
  dexswap history --clear`, store.MaxRecentTransactions),
	Run: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete the recorded history")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of entries to show")
}

func runHistory(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	ctx, cancel := a.context()
	defer cancel()

	if historyClear {
		if err := a.state.ClearTransactions(ctx); err != nil {
			fail(err)
		}
		printSuccess("✓ History cleared.")
		return
	}

	txs, err := a.state.RecentTransactions(ctx)
	if err != nil {
		fail(err)
	}
	if historyLimit > 0 && len(txs) > historyLimit {
		txs = txs[:historyLimit]
	}

	if isJSON(cmd) {
		printJSON(txs)
		return
	}

	if len(txs) == 0 {
		color.Yellow("\nNo transactions recorded yet.\n")
		return
	}

	banner("RECENT TRANSACTIONS", 120)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nID\tTIME\tTYPE\tSUMMARY\tSTATUS\tHASH")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, tx := range txs {
		hash := tx.Hash
		if hash == "" {
			hash = "-"
		} else if len(hash) > 18 {
			hash = hash[:10] + "..." + hash[len(hash)-6:]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(tx.ID), tx.Timestamp.Local().Format("2006-01-02 15:04"), tx.Type,
			tx.Summary, getTxStatusColor(tx.Status), hash)
	}
	w.Flush()

	footer(120)
}

func getTxStatusColor(status store.TxStatus) string {
	s := strings.ToUpper(string(status))
	switch status {
	case store.TxConfirmed:
		return color.GreenString(s)
	case store.TxPending:
		return color.YellowString(s)
	case store.TxFailed:
		return color.RedString(s)
	default:
		return s
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
