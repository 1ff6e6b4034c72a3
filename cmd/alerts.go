package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/alert"
	"dexswap/pkg/poller"
)

var (
	alertQuoteToken string
	alertWhenPrice  string
	alertPending    bool
)

var alertsCmd = &cobra.Command{
	Use:     "alerts",
	Aliases: []string{"alert"},
	Short:   "Manage price alerts",
	Long: `Create price alerts that fire when a token's router price crosses a target.

Prices are quotes for one whole token through the best route, so they include
the pool fee. Alerts are persisted and checked by 'dexswap alerts watch'.`,
}

var alertsCreateCmd = &cobra.Command{
	Use:   "create <token>",
	Short: "Create a new price alert",
	Long: `Create a price alert for a token, priced in the quote token.

Examples:
  # Alert when ETH trades at or above 4000 USDC
  dexswap alerts create ETH --quote USDC --when-price "above 4000"

  # Alert when LINK drops to or below 0.004 ETH
  dexswap alerts create LINK --quote ETH --when-price "below 0.004"`,
	Args: cobra.ExactArgs(1),
	Run:  runAlertsCreate,
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all price alerts",
	Run:   runAlertsList,
}

var alertsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a price alert",
	Args:    cobra.ExactArgs(1),
	Run:     runAlertsDelete,
}

var alertsResetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "Re-arm a triggered alert",
	Args:  cobra.ExactArgs(1),
	Run:   runAlertsReset,
}

var alertsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Price every pending alert once",
	Run:   runAlertsCheck,
}

var alertsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check pending alerts until interrupted",
	Long: `Check pending alerts on the alert polling interval and print each alert
that fires. Alerts created in another terminal are picked up on the next
check.

Examples:
  dexswap alerts watch

  # Run in background (Linux/Mac)
  nohup dexswap alerts watch > ~/dexswap-alerts.log 2>&1 &`,
	Run: runAlertsWatch,
}

func init() {
	rootCmd.AddCommand(alertsCmd)

	alertsCmd.AddCommand(alertsCreateCmd)
	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsDeleteCmd)
	alertsCmd.AddCommand(alertsResetCmd)
	alertsCmd.AddCommand(alertsCheckCmd)
	alertsCmd.AddCommand(alertsWatchCmd)

	alertsCreateCmd.Flags().StringVar(&alertQuoteToken, "quote", "", "Token the price is expressed in (e.g., USDC)")
	alertsCreateCmd.Flags().StringVar(&alertWhenPrice, "when-price", "", "Price trigger condition (e.g., 'above 4000', 'below 3000')")
	alertsCreateCmd.MarkFlagRequired("quote")
	alertsCreateCmd.MarkFlagRequired("when-price")

	alertsListCmd.Flags().BoolVar(&alertPending, "pending", false, "Only show alerts that have not fired")
}

func parsePriceCondition(input string) (alert.Condition, float64, error) {
	parts := strings.Fields(input)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("price condition must be in format '<condition> <price>' (e.g., 'above 4000')")
	}

	conditionStr := strings.ToLower(parts[0])
	switch conditionStr {
	case ">":
		conditionStr = string(alert.PriceAbove)
	case "<":
		conditionStr = string(alert.PriceBelow)
	}
	condition, err := alert.ParseCondition(conditionStr)
	if err != nil {
		return "", 0, err
	}

	price, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid price %q", parts[1])
	}
	return condition, price, nil
}

func (a *app) alertWatcher(scheduler *poller.Scheduler, notify func(alert.Event)) *alert.Watcher {
	manager := alert.NewManager(a.state, a.registry)
	pricer := alert.NewPricer(a.quoter().Quote, a.registry)
	w := alert.NewWatcher(manager, pricer, scheduler, notify, a.log)
	w.SetInterval(a.cfg.Polling.Alerts)
	return w
}

func runAlertsCreate(cmd *cobra.Command, args []string) {
	condition, price, err := parsePriceCondition(alertWhenPrice)
	if err != nil {
		fail(fmt.Errorf("invalid price condition: %w", err))
	}

	a := setup(cmd)
	defer a.close()

	ctx, cancel := a.context()
	defer cancel()

	created, err := alert.NewManager(a.state, a.registry).Create(ctx, args[0], alertQuoteToken, condition, price)
	if err != nil {
		fail(err)
	}

	if isJSON(cmd) {
		printJSON(created)
		return
	}

	banner("PRICE ALERT CREATED", 60)
	fmt.Printf("\n  ID:        %s\n", color.CyanString(created.ID))
	fmt.Printf("  Trigger:   When 1 %s is %s %s %s\n",
		created.Token, created.Condition, strconv.FormatFloat(created.TargetPrice, 'f', -1, 64), created.QuoteToken)
	footer(60)
	fmt.Println("To start watching, run:")
	color.Cyan("  dexswap alerts watch\n")
}

func runAlertsList(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	ctx, cancel := a.context()
	defer cancel()

	manager := alert.NewManager(a.state, a.registry)
	var (
		alerts []alert.Alert
		err    error
	)
	if alertPending {
		alerts, err = manager.Pending(ctx)
	} else {
		alerts, err = manager.List(ctx)
	}
	if err != nil {
		fail(err)
	}

	if isJSON(cmd) {
		printJSON(alerts)
		return
	}

	if len(alerts) == 0 {
		color.Yellow("No price alerts found.\n")
		fmt.Println("\nCreate a new alert with:")
		color.Cyan("  dexswap alerts create <token> --quote <token> --when-price \"above 4000\"\n")
		return
	}

	banner("PRICE ALERTS", 100)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nID\tPAIR\tTRIGGER\tSTATUS\tCREATED")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, al := range alerts {
		trigger := fmt.Sprintf("%s %s", al.Condition, strconv.FormatFloat(al.TargetPrice, 'f', -1, 64))
		fmt.Fprintf(w, "%s\t%s/%s\t%s\t%s\t%s\n",
			shortID(al.ID), al.Token, al.QuoteToken, trigger, alertStatus(al), al.Created.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()

	footer(100)
}

func alertStatus(al alert.Alert) string {
	if !al.Triggered {
		return color.YellowString("pending")
	}
	s := "triggered"
	if al.TriggeredAt != nil {
		s += fmt.Sprintf(" at %g (%s)", al.LastPrice, al.TriggeredAt.Local().Format("01-02 15:04"))
	}
	return color.GreenString(s)
}

func runAlertsDelete(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	ctx, cancel := a.context()
	defer cancel()

	if err := alert.NewManager(a.state, a.registry).Delete(ctx, args[0]); err != nil {
		fail(err)
	}
	printSuccess(fmt.Sprintf("✓ Alert %s deleted.", args[0]))
}

func runAlertsReset(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	ctx, cancel := a.context()
	defer cancel()

	if err := alert.NewManager(a.state, a.registry).Reset(ctx, args[0]); err != nil {
		fail(err)
	}
	printSuccess(fmt.Sprintf("✓ Alert %s re-armed.", args[0]))
}

func runAlertsCheck(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	ctx, cancel := a.context()
	defer cancel()

	scheduler := poller.New(a.log)
	defer scheduler.Stop()

	stop := startSpinner(cmd, "Checking alerts...")
	fired, err := a.alertWatcher(scheduler, nil).Check(ctx)
	stop()
	if err != nil {
		fail(err)
	}

	if isJSON(cmd) {
		printJSON(fired)
		return
	}
	if len(fired) == 0 {
		fmt.Println("\nNo alerts fired.")
		return
	}
	for _, ev := range fired {
		printAlertEvent(ev)
	}
}

func printAlertEvent(ev alert.Event) {
	color.Green("\n🔔 %s/%s is %s %s: now %s",
		ev.Alert.Token, ev.Alert.QuoteToken, ev.Alert.Condition,
		strconv.FormatFloat(ev.Alert.TargetPrice, 'f', -1, 64),
		strconv.FormatFloat(ev.Price, 'f', -1, 64))
	fmt.Printf("   Alert: %s\n", ev.Alert.ID)
}

func runAlertsWatch(cmd *cobra.Command, args []string) {
	if isJSON(cmd) {
		fail(fmt.Errorf("watch mode not supported with JSON output"))
	}

	a := setup(cmd)
	defer a.close()

	scheduler := poller.New(a.log)
	defer scheduler.Stop()

	watcher := a.alertWatcher(scheduler, printAlertEvent)

	banner("DEXSWAP ALERT WATCHER", 70)
	color.Cyan("\n• Checking prices every %s", watcher.Interval())
	color.Magenta("• You can create or delete alerts in another terminal")
	color.Yellow("• Press Ctrl+C to stop\n")
	fmt.Println(strings.Repeat("=", 70) + "\n")

	if err := watcher.Start(); err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	color.Yellow("\nReceived shutdown signal. Stopping watcher...")
	watcher.Stop()
	color.Green("✓ Watcher stopped.\n")
}
