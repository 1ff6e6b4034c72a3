package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/parser"
	"dexswap/pkg/poller"
	"dexswap/pkg/quote"
	"dexswap/pkg/route"
	"dexswap/pkg/swap"
	"dexswap/pkg/token"
)

var (
	quoteAll   bool
	quoteWatch bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <token-in> to <token-out>",
	Short: "Show the best route and expected output for a swap",
	Long: `Find the best route for a swap and show the expected output, the exchange
rate and the estimated price impact. Nothing is sent.

With --watch the quote is refreshed on the price polling interval and you can
type a new amount, "flip" to reverse the pair, or "q" to quit.

Examples:
  dexswap quote 1.5 ETH to USDC
  dexswap quote 100 USDC to LINK --all
  dexswap quote 1 ETH to USDC --watch`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().BoolVar(&quoteAll, "all", false, "List every route with output, best first")
	quoteCmd.Flags().BoolVarP(&quoteWatch, "watch", "w", false, "Keep the quote fresh and accept new input")
}

type quoteOutput struct {
	TokenIn     string   `json:"token_in"`
	TokenOut    string   `json:"token_out"`
	AmountIn    string   `json:"amount_in"`
	AmountOut   string   `json:"amount_out"`
	MinReceived string   `json:"min_received"`
	Rate        float64  `json:"rate"`
	PriceImpact float64  `json:"price_impact"`
	HighImpact  bool     `json:"high_impact"`
	Route       []string `json:"route"`
}

func runQuote(cmd *cobra.Command, args []string) {
	req, err := parser.ParseArgs(args)
	if err != nil {
		fail(err)
	}

	a := setup(cmd)
	defer a.close()

	from, to, err := req.Resolve(a.registry)
	if err != nil {
		fail(err)
	}

	if quoteWatch {
		if isJSON(cmd) {
			fail(fmt.Errorf("watch mode not supported with JSON output"))
		}
		watchQuote(a, from, to, req.Amount)
		return
	}

	ctx, cancel := a.context()
	defer cancel()

	if quoteAll {
		listRoutes(ctx, cmd, a, from, to, req.Amount)
		return
	}

	stop := startSpinner(cmd, "Finding best route...")
	q, err := a.quoter().Quote(ctx, quote.Request{TokenIn: from, TokenOut: to, AmountIn: req.Amount})
	stop()
	if err != nil {
		fail(err)
	}

	out := a.quoteOutput(ctx, q)
	if isJSON(cmd) {
		printJSON(out)
		return
	}
	displayQuote(out)
}

func listRoutes(ctx context.Context, cmd *cobra.Command, a *app, from, to token.Asset, amount string) {
	amountIn, err := token.ParseUnits(amount, from.Decimals())
	if err != nil {
		fail(err)
	}

	stop := startSpinner(cmd, "Evaluating routes...")
	routes, err := a.finder().FindAllRoutes(ctx, from.Address(), to.Address(), amountIn)
	stop()
	if err != nil {
		fail(err)
	}
	if len(routes) == 0 {
		fail(quote.ErrNoRoute)
	}

	if isJSON(cmd) {
		out := make([]quoteOutput, 0, len(routes))
		for _, r := range routes {
			out = append(out, quoteOutput{
				TokenIn:     from.Symbol(),
				TokenOut:    to.Symbol(),
				AmountIn:    amount,
				AmountOut:   token.FormatUnits(r.AmountOut, to.Decimals()),
				PriceImpact: r.PriceImpact,
				Route:       pathSymbols(a.registry, r.Path),
			})
		}
		printJSON(out)
		return
	}

	banner("AVAILABLE ROUTES", 70)
	for i, r := range routes {
		label := "  "
		if i == 0 {
			label = color.GreenString("* ")
		}
		fmt.Printf("\n%s%-40s  %s %s\n", label,
			strings.Join(pathSymbols(a.registry, r.Path), " -> "),
			token.FormatUnits(r.AmountOut, to.Decimals()),
			color.YellowString(to.Symbol()))
	}
	footer(70)
}

func (a *app) quoteOutput(ctx context.Context, q *quote.Quote) quoteOutput {
	settings := a.settings(ctx)
	return quoteOutput{
		TokenIn:     q.TokenIn.Symbol(),
		TokenOut:    q.TokenOut.Symbol(),
		AmountIn:    q.AmountInString(),
		AmountOut:   q.AmountOutString(),
		MinReceived: token.FormatUnits(swap.MinAmountOut(q.AmountOut, settings.SlippagePercent), q.TokenOut.Decimals()),
		Rate:        q.Rate,
		PriceImpact: q.PriceImpact,
		HighImpact:  route.HighImpact(q.PriceImpact, a.cfg.Quote.ImpactWarning),
		Route:       pathSymbols(a.registry, q.Route.Path),
	}
}

func displayQuote(q quoteOutput) {
	banner("SWAP QUOTE", 60)

	fmt.Printf("\n  From:              %s %s\n", q.AmountIn, color.YellowString(q.TokenIn))
	fmt.Printf("  To:                ~%s %s\n", q.AmountOut, color.YellowString(q.TokenOut))
	fmt.Printf("  Minimum Received:  %s %s\n", q.MinReceived, q.TokenOut)
	fmt.Printf("  Rate:              1 %s = %s %s\n", q.TokenIn, formatRate(q.Rate), q.TokenOut)
	fmt.Printf("  Route:             %s\n", color.CyanString(strings.Join(q.Route, " -> ")))
	fmt.Printf("  Price Impact:      %s\n", impactString(q.PriceImpact, q.HighImpact))

	if q.HighImpact {
		color.Red("\n  Warning: this trade has a high price impact.")
	}

	footer(60)
}

func impactString(impact float64, high bool) string {
	s := fmt.Sprintf("%.2f%%", impact)
	if high {
		return color.RedString(s)
	}
	return color.GreenString(s)
}

func formatRate(rate float64) string {
	if rate >= 1 {
		return fmt.Sprintf("%.4f", rate)
	}
	return fmt.Sprintf("%.8g", rate)
}

// pathSymbols names each hop, falling back to the address for unknown tokens
func pathSymbols(reg *token.Registry, path []common.Address) []string {
	out := make([]string, len(path))
	for i, addr := range path {
		if t, ok := reg.ByAddress(addr); ok {
			out[i] = t.Symbol()
		} else {
			out[i] = addr.Hex()
		}
	}
	return out
}

// watchQuote runs the recompute loop against stdin until interrupted
func watchQuote(a *app, from, to token.Asset, amount string) {
	quoter := a.quoter()
	loop := quote.NewLoop(quoter.Quote, a.cfg.Quote.RecomputeDelay, a.log)
	defer loop.Close()
	results := loop.Subscribe()

	form := swap.NewState(from, to)
	last := quote.Request{}
	unsubscribe := form.Subscribe(func(v swap.Values) {
		req := v.Request()
		if req.AmountIn == last.AmountIn &&
			req.TokenIn.Address() == last.TokenIn.Address() &&
			req.TokenOut.Address() == last.TokenOut.Address() {
			return
		}
		last = req
		loop.Update(req)
	})
	defer unsubscribe()

	scheduler := poller.New(a.log)
	defer scheduler.Stop()

	form.SetAmountIn(amount)
	if err := scheduler.Every("prices", a.cfg.Polling.Prices, func(ctx context.Context) {
		loop.Refresh()
	}); err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	fmt.Printf("\nQuoting %s -> %s. Refreshing every %s.\n", from.Symbol(), to.Symbol(), a.cfg.Polling.Prices)
	fmt.Println("Type an amount, \"flip\" to reverse the pair, or \"q\" to quit.")

	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-results:
			if !ok {
				return
			}
			form.ApplyResult(r)
			printWatchResult(a, r)
		case line, ok := <-lines:
			if !ok {
				return
			}
			switch strings.ToLower(line) {
			case "":
			case "q", "quit", "exit":
				return
			case "f", "flip":
				form.Flip()
				v := form.Snapshot()
				fmt.Printf("Now quoting %s -> %s\n", v.TokenIn.Symbol(), v.TokenOut.Symbol())
			default:
				form.SetAmountIn(line)
			}
		}
	}
}

func printWatchResult(a *app, r quote.Result) {
	switch {
	case r.Err != nil:
		color.Red("  %s %s: %v", r.Request.AmountIn, r.Request.TokenIn.Symbol(), r.Err)
	case r.Quote == nil:
		fmt.Println("  (no amount)")
	default:
		q := r.Quote
		high := route.HighImpact(q.PriceImpact, a.cfg.Quote.ImpactWarning)
		fmt.Printf("  %s %s -> %s %s  [%s]  impact %s\n",
			q.AmountInString(), q.TokenIn.Symbol(),
			color.GreenString(q.AmountOutString()), q.TokenOut.Symbol(),
			strings.Join(pathSymbols(a.registry, q.Route.Path), " -> "),
			impactString(q.PriceImpact, high))
	}
}
