package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/explorer"
	"dexswap/pkg/token"
)

var (
	explorerPage   int
	explorerOffset int
	explorerToken  string
)

var explorerCmd = &cobra.Command{
	Use:   "explorer",
	Short: "Query the block explorer",
	Long: `Read token and account data from the configured block explorer API.

Examples:
  dexswap explorer token USDC
  dexswap explorer holders USDC --offset 20
  dexswap explorer transfers 0x123... --token USDC
  dexswap explorer txs 0x123...`,
}

var explorerHoldersCmd = &cobra.Command{
	Use:   "holders <token>",
	Short: "List the largest holders of a token",
	Args:  cobra.ExactArgs(1),
	Run:   runExplorerHolders,
}

var explorerTransfersCmd = &cobra.Command{
	Use:   "transfers [address]",
	Short: "List token transfers of an address",
	Args:  cobra.MaximumNArgs(1),
	Run:   runExplorerTransfers,
}

var explorerTokenCmd = &cobra.Command{
	Use:   "token <token>",
	Short: "Show explorer metadata for a token",
	Args:  cobra.ExactArgs(1),
	Run:   runExplorerToken,
}

var explorerTxsCmd = &cobra.Command{
	Use:   "txs [address]",
	Short: "List transactions of an address",
	Args:  cobra.MaximumNArgs(1),
	Run:   runExplorerTxs,
}

func init() {
	rootCmd.AddCommand(explorerCmd)

	explorerCmd.AddCommand(explorerHoldersCmd)
	explorerCmd.AddCommand(explorerTransfersCmd)
	explorerCmd.AddCommand(explorerTokenCmd)
	explorerCmd.AddCommand(explorerTxsCmd)

	explorerHoldersCmd.Flags().IntVar(&explorerPage, "page", 1, "Page number")
	explorerHoldersCmd.Flags().IntVar(&explorerOffset, "offset", 10, "Holders per page")
	explorerTransfersCmd.Flags().StringVar(&explorerToken, "token", "", "Only show transfers of this token")
}

func (a *app) explorer() *explorer.Client {
	return explorer.New(a.cfg.ExplorerURL, explorer.WithLogger(a.log))
}

func runExplorerHolders(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	addr, err := a.tokenAddress(args[0])
	if err != nil {
		fail(err)
	}

	ctx, cancel := a.context()
	defer cancel()

	stop := startSpinner(cmd, "Fetching holders...")
	holders, err := a.explorer().TokenHolders(ctx, addr, explorerPage, explorerOffset)
	stop()
	if err != nil {
		fail(err)
	}

	if isJSON(cmd) {
		printJSON(holders)
		return
	}
	if len(holders) == 0 {
		fmt.Println("\nNo holders found.")
		return
	}

	decimals := a.decimalsOf(addr)
	banner("TOKEN HOLDERS", 80)
	fmt.Println()
	for i, h := range holders {
		rank := (explorerPage-1)*explorerOffset + i + 1
		fmt.Printf("  %3d. %s  %s\n", rank, h.Address, token.FormatUnits(explorer.Amount(h.Value), decimals))
	}
	footer(80)
}

func runExplorerTransfers(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	owner, err := a.owner(args)
	if err != nil {
		fail(err)
	}

	var contract *common.Address
	if explorerToken != "" {
		addr, err := a.tokenAddress(explorerToken)
		if err != nil {
			fail(err)
		}
		contract = &addr
	}

	ctx, cancel := a.context()
	defer cancel()

	stop := startSpinner(cmd, "Fetching transfers...")
	transfers, err := a.explorer().TokenTransfers(ctx, owner, contract)
	stop()
	if err != nil {
		fail(err)
	}

	if isJSON(cmd) {
		printJSON(transfers)
		return
	}
	if len(transfers) == 0 {
		fmt.Println("\nNo token transfers found.")
		return
	}

	banner("TOKEN TRANSFERS", 120)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nTIME\tDIRECTION\tAMOUNT\tTOKEN\tCOUNTERPARTY\tHASH")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, t := range transfers {
		direction, counterparty := color.GreenString("IN"), t.From
		if strings.EqualFold(t.From, owner.Hex()) {
			direction, counterparty = color.RedString("OUT"), t.To
		}
		decimals, err := strconv.ParseUint(t.TokenDecimal, 10, 8)
		if err != nil {
			decimals = 18
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			explorer.Time(t.TimeStamp).Local().Format("2006-01-02 15:04"), direction,
			token.FormatUnits(explorer.Amount(t.Value), uint8(decimals)), t.TokenSymbol,
			counterparty, t.Hash)
	}
	w.Flush()
	footer(120)
}

func runExplorerToken(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	addr, err := a.tokenAddress(args[0])
	if err != nil {
		fail(err)
	}

	ctx, cancel := a.context()
	defer cancel()

	stop := startSpinner(cmd, "Fetching token...")
	info, err := a.explorer().Token(ctx, addr)
	stop()
	if errors.Is(err, explorer.ErrNotFound) {
		color.Yellow("\nToken %s not found on the explorer.\n", addr.Hex())
		return
	}
	if err != nil {
		fail(err)
	}

	if isJSON(cmd) {
		printJSON(info)
		return
	}

	decimals, err := strconv.ParseUint(info.Decimals, 10, 8)
	if err != nil {
		decimals = uint64(a.decimalsOf(addr))
	}

	banner("TOKEN", 70)
	fmt.Printf("\n  Name:          %s\n", info.Name)
	fmt.Printf("  Symbol:        %s\n", color.YellowString(info.Symbol))
	fmt.Printf("  Contract:      %s\n", color.CyanString(info.ContractAddress))
	fmt.Printf("  Type:          %s\n", info.Type)
	fmt.Printf("  Decimals:      %s\n", info.Decimals)
	fmt.Printf("  Total Supply:  %s\n", token.FormatUnits(explorer.Amount(info.TotalSupply), uint8(decimals)))
	footer(70)
}

func runExplorerTxs(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	owner, err := a.owner(args)
	if err != nil {
		fail(err)
	}

	ctx, cancel := a.context()
	defer cancel()

	stop := startSpinner(cmd, "Fetching transactions...")
	txs, err := a.explorer().Transactions(ctx, owner)
	stop()
	if err != nil {
		fail(err)
	}

	if isJSON(cmd) {
		printJSON(txs)
		return
	}
	if len(txs) == 0 {
		fmt.Println("\nNo transactions found.")
		return
	}

	native := a.registry.Native()
	banner("TRANSACTIONS", 120)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nTIME\tBLOCK\tTO\tVALUE\tSTATUS\tHASH")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, tx := range txs {
		status := color.GreenString("OK")
		if tx.Failed() {
			status = color.RedString("FAILED")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\t%s\n",
			explorer.Time(tx.TimeStamp).Local().Format("2006-01-02 15:04"), tx.BlockNumber, tx.To,
			token.FormatUnits(explorer.Amount(tx.Value), native.Decimals()), native.Symbol(),
			status, tx.Hash)
	}
	w.Flush()
	footer(120)
}

// decimalsOf uses the registry, falling back to 18 for unknown tokens
func (a *app) decimalsOf(addr common.Address) uint8 {
	if t, ok := a.registry.ByAddress(addr); ok {
		return t.Decimals()
	}
	return 18
}
