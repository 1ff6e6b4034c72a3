package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dexswap/config"
	"dexswap/pkg/contracts"
	"dexswap/pkg/logging"
	"dexswap/pkg/quote"
	"dexswap/pkg/route"
	"dexswap/pkg/store"
	"dexswap/pkg/token"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const requestTimeout = 30 * time.Second

var errNoKey = errors.New("no private key configured. Set DEXSWAP_PRIVATE_KEY or add private_key to .dexswap.yaml")

// app carries the wiring shared by commands. The RPC client and signer are
// created on first use so offline commands never dial.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	registry *token.Registry
	state    *store.State

	client *ethclient.Client
	signer *contracts.Signer
}

// setup loads config, logging, the token registry and persisted state.
// Any failure exits.
func setup(cmd *cobra.Command) *app {
	cfg, err := config.Load(configPath)
	if err != nil {
		fail(err)
	}

	level := cfg.LogLevel
	if isVerbose(cmd) {
		level = "debug"
	}
	log := logging.New(nil, level)

	registry, err := buildRegistry(cfg)
	if err != nil {
		fail(err)
	}

	backend, err := store.Open(cfg.Store)
	if err != nil {
		fail(fmt.Errorf("failed to open state store: %w", err))
	}

	log.WithFields(logrus.Fields{
		"chain_id": cfg.ChainID,
		"tokens":   len(registry.All()),
		"store":    cfg.Store.Backend,
	}).Debug("configuration loaded")

	return &app{cfg: cfg, log: log, registry: registry, state: store.NewState(backend)}
}

// buildRegistry turns the configured token list into a registry with the
// native entry first
func buildRegistry(cfg *config.Config) (*token.Registry, error) {
	native := token.NewNative(cfg.NativeSymbol, cfg.NativeName, 18)
	tokens := make([]token.Asset, 0, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		name := t.Name
		if name == "" {
			name = t.Symbol
		}
		decimals := t.Decimals
		if decimals == 0 {
			decimals = 18
		}
		tokens = append(tokens, token.NewERC20(common.HexToAddress(t.Address), t.Symbol, name, decimals, t.LogoURI, t.Verified))
	}
	return token.NewRegistry(native, common.HexToAddress(cfg.WrappedNative), tokens)
}

func (a *app) close() {
	if a.client != nil {
		a.client.Close()
	}
	if err := a.state.Close(); err != nil {
		a.log.WithError(err).Warn("failed to close state store")
	}
}

func (a *app) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// dial returns the RPC client, connecting on first use
func (a *app) dial() *ethclient.Client {
	if a.client != nil {
		return a.client
	}
	ctx, cancel := a.context()
	defer cancel()

	client, err := ethclient.DialContext(ctx, a.cfg.RPCURL)
	if err != nil {
		fail(fmt.Errorf("failed to connect to RPC: %w", err))
	}
	a.client = client
	return client
}

func (a *app) router() *contracts.Router {
	return contracts.NewRouter(common.HexToAddress(a.cfg.RouterAddress), a.dial())
}

func (a *app) factory() *contracts.Factory {
	return contracts.NewFactory(common.HexToAddress(a.cfg.FactoryAddress), a.dial())
}

func (a *app) finder() *route.Finder {
	bases := make([]common.Address, 0, len(a.cfg.BaseAssets))
	for _, b := range a.cfg.BaseAssets {
		bases = append(bases, common.HexToAddress(b))
	}

	opts := []route.Option{
		route.WithImpact(a.cfg.Quote.ImpactCoefficient, a.cfg.Quote.ImpactCap),
		route.WithLogger(a.log),
	}
	if a.cfg.Quote.CheckPairs {
		opts = append(opts, route.WithPairChecker(route.NewFactoryChecker(common.HexToAddress(a.cfg.FactoryAddress), a.dial())))
	}
	return route.NewFinder(a.registry, a.router(), bases, opts...)
}

func (a *app) quoter() *quote.Quoter {
	return quote.NewQuoter(a.finder())
}

// wallet returns the configured signer, or errNoKey
func (a *app) wallet() (*contracts.Signer, error) {
	if a.signer != nil {
		return a.signer, nil
	}
	if a.cfg.PrivateKey == "" {
		return nil, errNoKey
	}
	s, err := contracts.NewSigner(a.dial(), a.cfg.PrivateKey, a.cfg.ChainID)
	if err != nil {
		return nil, err
	}
	a.signer = s
	return s, nil
}

// settings reads swap settings, falling back to defaults on a read failure
func (a *app) settings(ctx context.Context) store.Settings {
	s, err := a.state.Settings(ctx)
	if err != nil {
		a.log.WithError(err).Debug("failed to read settings, using defaults")
		return store.DefaultSettings()
	}
	return s
}

// owner resolves an optional address argument, defaulting to the signer
func (a *app) owner(args []string) (common.Address, error) {
	if len(args) > 0 {
		if !common.IsHexAddress(args[0]) {
			return common.Address{}, fmt.Errorf("invalid address: %s", args[0])
		}
		return common.HexToAddress(args[0]), nil
	}
	s, err := a.wallet()
	if err != nil {
		return common.Address{}, err
	}
	return s.Address(), nil
}

// recordTx stores a submitted transaction in the recent list. Failures to
// persist are logged, never fatal.
func (a *app) recordTx(ctx context.Context, typ store.TxType, summary string, hash *common.Hash, txErr error) {
	tx := store.Transaction{Type: typ, Summary: summary, Status: store.TxPending}
	if hash != nil {
		tx.Hash = hash.Hex()
	}
	if txErr != nil {
		tx.Status = store.TxFailed
		tx.Error = txErr.Error()
	}
	if _, err := a.state.AddTransaction(ctx, tx); err != nil {
		a.log.WithError(err).Warn("failed to record transaction")
	}
}
