package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/store"
)

var (
	setSlippage float64
	setDeadline int
	setTheme    string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change swap settings",
	Long: `Swap settings are persisted between runs:

  slippage  maximum accepted output shortfall in percent (default 0.5)
  deadline  minutes until a submitted transaction expires (default 20)
  theme     display theme, dark or light

Examples:
  dexswap settings show
  dexswap settings set --slippage 1 --deadline 30`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Run:   runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings",
	Run:   runSettingsSet,
}

func init() {
	rootCmd.AddCommand(settingsCmd)

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	settingsSetCmd.Flags().Float64Var(&setSlippage, "slippage", 0, "Slippage tolerance in percent")
	settingsSetCmd.Flags().IntVar(&setDeadline, "deadline", 0, "Transaction deadline in minutes")
	settingsSetCmd.Flags().StringVar(&setTheme, "theme", "", "Display theme (dark or light)")
}

type settingsOutput struct {
	store.Settings
	Theme store.Theme `json:"theme"`
}

func runSettingsShow(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	ctx, cancel := a.context()
	defer cancel()

	settings, err := a.state.Settings(ctx)
	if err != nil {
		fail(err)
	}
	theme, err := a.state.Theme(ctx)
	if err != nil {
		fail(err)
	}

	if isJSON(cmd) {
		printJSON(settingsOutput{Settings: settings, Theme: theme})
		return
	}

	banner("SETTINGS", 50)
	fmt.Printf("\n  Slippage:   %s\n", color.CyanString("%.2f%%", settings.SlippagePercent))
	fmt.Printf("  Deadline:   %s\n", color.CyanString("%d minutes", settings.DeadlineMinutes))
	fmt.Printf("  Theme:      %s\n", theme)
	footer(50)
}

func runSettingsSet(cmd *cobra.Command, args []string) {
	flags := cmd.Flags()
	if !flags.Changed("slippage") && !flags.Changed("deadline") && !flags.Changed("theme") {
		fail(fmt.Errorf("nothing to change; pass --slippage, --deadline or --theme"))
	}

	a := setup(cmd)
	defer a.close()

	ctx, cancel := a.context()
	defer cancel()

	settings, err := a.state.Settings(ctx)
	if err != nil {
		fail(err)
	}
	if flags.Changed("slippage") {
		settings.SlippagePercent = setSlippage
	}
	if flags.Changed("deadline") {
		settings.DeadlineMinutes = setDeadline
	}

	if flags.Changed("slippage") || flags.Changed("deadline") {
		if err := a.state.SaveSettings(ctx, settings); err != nil {
			fail(err)
		}
	}
	if flags.Changed("theme") {
		if err := a.state.SetTheme(ctx, store.Theme(setTheme)); err != nil {
			fail(err)
		}
	}

	if settings.SlippagePercent > 5 {
		color.Yellow("\nWarning: a slippage above 5%% makes your swap easy to front-run.")
	}
	printSuccess("✓ Settings saved.")
}
