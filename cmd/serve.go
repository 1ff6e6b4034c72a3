package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dexswap/pkg/quote"
	"dexswap/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve quotes over HTTP",
	Long: `Start an HTTP server exposing the route finder.

Endpoints:
  GET /tokens
  GET /quote?in=ETH&out=USDC&amount=1.5
  GET /routes?in=ETH&out=USDC&amount=1.5

Examples:
  dexswap serve
  dexswap serve --addr :9000`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from server_addr)")
}

func runServe(cmd *cobra.Command, args []string) {
	a := setup(cmd)
	defer a.close()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.ServerAddr
	}

	finder := a.finder()
	srv := server.New(a.registry, quote.NewQuoter(finder), finder, a.cfg.Quote.ImpactWarning, a.log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(addr)
	}()

	color.Green("\nServing quotes on %s. Press Ctrl+C to stop.\n", addr)

	select {
	case <-ctx.Done():
		if err := srv.Shutdown(); err != nil {
			a.log.WithError(err).Warn("server shutdown failed")
		}
		fmt.Println("\nServer stopped.")
	case err := <-errCh:
		if err != nil {
			fail(fmt.Errorf("server error: %w", err))
		}
	}
}
