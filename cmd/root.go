package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "dexswap",
	Short: "A CLI for swapping and providing liquidity on a Uniswap V2 exchange",
	Long: `dexswap is a command-line front-end for a Uniswap V2 style exchange.
It finds the best route for a swap (directly or through a base asset), shows
the expected output and price impact, and submits the transaction with your
configured key.

Examples:
  dexswap quote 1.5 ETH to USDC
  dexswap swap 1.5 ETH to USDC
  dexswap balance
  dexswap pool ETH USDC
  dexswap tokens`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $HOME/.dexswap.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func isJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func isVerbose(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}

func printError(err error) {
	color.Red("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	color.Green("\n%s\n\n", message)
}

// fail prints err and exits
func fail(err error) {
	printError(err)
	os.Exit(1)
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail(err)
	}
	fmt.Println(string(data))
}

// startSpinner starts a spinner unless output is JSON. The returned func
// stops it.
func startSpinner(cmd *cobra.Command, suffix string) func() {
	if isJSON(cmd) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}

func banner(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	pad := (width - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	color.Green("%s%s", strings.Repeat(" ", pad), title)
	fmt.Println(strings.Repeat("=", width))
}

func footer(width int) {
	fmt.Println("\n" + strings.Repeat("=", width) + "\n")
}

func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", prompt)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
