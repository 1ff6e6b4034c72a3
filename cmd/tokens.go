package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/token"
)

var (
	filterSymbol   string
	filterVerified bool
)

var tokensCmd = &cobra.Command{
	Use:     "tokens",
	Aliases: []string{"list-tokens", "ls"},
	Short:   "List the tokens in the configured token list",
	Long: `List the tokens the exchange front-end knows about. The native currency
is always listed first.

Examples:
  dexswap tokens
  dexswap tokens --symbol usd
  dexswap tokens --verified`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
	tokensCmd.Flags().BoolVar(&filterVerified, "verified", false, "Only show verified tokens")
}

type tokenOutput struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
	Native   bool   `json:"native"`
	Verified bool   `json:"verified"`
}

func runListTokens(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	var filtered []token.Asset
	for _, t := range a.registry.All() {
		if filterSymbol != "" && !strings.Contains(strings.ToUpper(t.Symbol()), strings.ToUpper(filterSymbol)) {
			continue
		}
		if filterVerified && !t.Verified() {
			continue
		}
		filtered = append(filtered, t)
	}

	if isJSON(cmd) {
		out := make([]tokenOutput, 0, len(filtered))
		for _, t := range filtered {
			out = append(out, tokenOutput{
				Address:  t.Address().Hex(),
				Symbol:   t.Symbol(),
				Name:     t.Name(),
				Decimals: t.Decimals(),
				Native:   t.IsNative(),
				Verified: t.Verified(),
			})
		}
		printJSON(out)
		return
	}

	displayTokens(filtered)
}

func displayTokens(tokens []token.Asset) {
	if len(tokens) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	banner("SUPPORTED TOKENS", 90)
	fmt.Println()

	for _, t := range tokens {
		address := t.Address().Hex()
		if t.IsNative() {
			address = "native"
		}
		mark := ""
		if !t.Verified() {
			mark = color.MagentaString(" (unverified)")
		}

		fmt.Printf("  %-10s  %-24s  %2d decimals  %s%s\n",
			color.YellowString(t.Symbol()),
			t.Name(),
			t.Decimals(),
			color.HiBlackString(address),
			mark)
	}

	footer(90)
	fmt.Printf("Total: %d tokens\n\n", len(tokens))
}
