package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/contracts"
	"dexswap/pkg/token"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage watched tokens",
	Long: `Keep a list of token contracts to include in 'dexswap balance'. Tokens
do not need to be in the configured token list.

Examples:
  dexswap watchlist add 0x123...
  dexswap watchlist list
  dexswap watchlist remove 0x123...`,
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add <token>",
	Short: "Add a token by symbol or contract address",
	Args:  cobra.ExactArgs(1),
	Run:   runWatchlistAdd,
}

var watchlistRemoveCmd = &cobra.Command{
	Use:     "remove <token>",
	Aliases: []string{"rm"},
	Short:   "Remove a token",
	Args:    cobra.ExactArgs(1),
	Run:     runWatchlistRemove,
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched tokens",
	Run:   runWatchlistList,
}

func init() {
	rootCmd.AddCommand(watchlistCmd)

	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistRemoveCmd)
	watchlistCmd.AddCommand(watchlistListCmd)
}

// tokenAddress accepts a registry symbol or a raw contract address
func (a *app) tokenAddress(query string) (common.Address, error) {
	if common.IsHexAddress(query) {
		return common.HexToAddress(query), nil
	}
	t, err := a.registry.Lookup(query)
	if err != nil {
		return common.Address{}, err
	}
	if t.IsNative() {
		return common.Address{}, fmt.Errorf("%s is the native currency, not a token contract", t.Symbol())
	}
	return t.Address(), nil
}

// describeToken reads symbol, name and decimals of an unknown contract
func (a *app) describeToken(ctx context.Context, addr common.Address) (token.Asset, error) {
	erc20 := contracts.NewERC20(addr, a.dial())
	symbol, err := erc20.Symbol(ctx)
	if err != nil {
		return token.Asset{}, err
	}
	decimals, err := erc20.Decimals(ctx)
	if err != nil {
		return token.Asset{}, err
	}
	name, err := erc20.Name(ctx)
	if err != nil {
		name = symbol
	}
	return token.NewERC20(addr, symbol, name, decimals, "", false), nil
}

func runWatchlistAdd(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	addr, err := a.tokenAddress(args[0])
	if err != nil {
		fail(err)
	}

	ctx, cancel := a.context()
	defer cancel()

	label := addr.Hex()
	if t, ok := a.registry.ByAddress(addr); ok {
		label = t.Symbol()
	} else {
		t, err := a.describeToken(ctx, addr)
		if err != nil {
			fail(fmt.Errorf("%s does not look like an ERC-20 token: %w", addr.Hex(), err))
		}
		label = t.Symbol()
	}

	added, err := a.state.AddToWatchlist(ctx, addr)
	if err != nil {
		fail(err)
	}
	if !added {
		color.Yellow("\n%s is already on your watchlist.\n", label)
		return
	}
	printSuccess(fmt.Sprintf("✓ Added %s to your watchlist.", label))
}

func runWatchlistRemove(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	addr, err := a.tokenAddress(args[0])
	if err != nil {
		fail(err)
	}

	ctx, cancel := a.context()
	defer cancel()

	removed, err := a.state.RemoveFromWatchlist(ctx, addr)
	if err != nil {
		fail(err)
	}
	if !removed {
		color.Yellow("\n%s is not on your watchlist.\n", args[0])
		return
	}
	printSuccess(fmt.Sprintf("✓ Removed %s from your watchlist.", args[0]))
}

func runWatchlistList(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	ctx, cancel := a.context()
	defer cancel()

	list, err := a.state.Watchlist(ctx)
	if err != nil {
		fail(err)
	}

	if isJSON(cmd) {
		out := make([]string, 0, len(list))
		for _, addr := range list {
			out = append(out, addr.Hex())
		}
		printJSON(out)
		return
	}

	if len(list) == 0 {
		color.Yellow("\nYour watchlist is empty.\n")
		fmt.Println("\nAdd a token with:")
		color.Cyan("  dexswap watchlist add <symbol|address>\n")
		return
	}

	banner("WATCHLIST", 70)
	fmt.Println()
	for _, addr := range list {
		symbol := color.HiBlackString("?")
		if t, ok := a.registry.ByAddress(addr); ok {
			symbol = t.Symbol()
		}
		fmt.Printf("  %-10s  %s\n", color.YellowString(symbol), addr.Hex())
	}
	footer(70)
}
