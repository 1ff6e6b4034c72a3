package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

const (
	// NativeAddress is the sentinel used for the chain's native currency.
	NativeAddress = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

	StoreBackendFile  = "file"
	StoreBackendRedis = "redis"
)

// Config holds the application configuration
type Config struct {
	RPCURL         string        `mapstructure:"rpc_url"`
	ChainID        int64         `mapstructure:"chain_id"`
	RouterAddress  string        `mapstructure:"router"`
	FactoryAddress string        `mapstructure:"factory"`
	WrappedNative  string        `mapstructure:"wrapped_native"`
	NativeSymbol   string        `mapstructure:"native_symbol"`
	NativeName     string        `mapstructure:"native_name"`
	BaseAssets     []string      `mapstructure:"base_assets"`
	ExplorerURL    string        `mapstructure:"explorer_url"`
	PrivateKey     string        `mapstructure:"private_key"`
	LogLevel       string        `mapstructure:"log_level"`
	ServerAddr     string        `mapstructure:"server_addr"`
	Tokens         []TokenConfig `mapstructure:"tokens"`
	Store          StoreConfig   `mapstructure:"store"`
	Quote          QuoteConfig   `mapstructure:"quote"`
	Polling        PollingConfig `mapstructure:"polling"`
}

// TokenConfig is one entry of the static token list
type TokenConfig struct {
	Address  string `mapstructure:"address"`
	Symbol   string `mapstructure:"symbol"`
	Name     string `mapstructure:"name"`
	Decimals uint8  `mapstructure:"decimals"`
	LogoURI  string `mapstructure:"logo_uri"`
	Verified bool   `mapstructure:"verified"`
}

// StoreConfig selects where client state is persisted
type StoreConfig struct {
	Backend   string `mapstructure:"backend"`
	Path      string `mapstructure:"path"`
	RedisURL  string `mapstructure:"redis_url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// QuoteConfig tunes quoting and the displayed impact estimate
type QuoteConfig struct {
	ImpactCoefficient float64       `mapstructure:"impact_coefficient"`
	ImpactCap         float64       `mapstructure:"impact_cap"`
	ImpactWarning     float64       `mapstructure:"impact_warning"`
	RecomputeDelay    time.Duration `mapstructure:"recompute_delay"`
	CheckPairs        bool          `mapstructure:"check_pairs"`
}

// PollingConfig holds the fixed refresh intervals
type PollingConfig struct {
	Balances time.Duration `mapstructure:"balances"`
	Prices   time.Duration `mapstructure:"prices"`
	Alerts   time.Duration `mapstructure:"alerts"`
}

var globalConfig *Config

// Load reads configuration from environment variables and config file.
// An empty path searches for .dexswap.yaml in $HOME and the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".dexswap")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix("DEXSWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when searching; an explicit path must exist.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Store.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.Store.Path = home + string(os.PathSeparator) + ".dexswap-state.json"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Keys without a real default are still registered so env vars reach Unmarshal.
	v.SetDefault("rpc_url", "")
	v.SetDefault("private_key", "")
	v.SetDefault("store.path", "")
	v.SetDefault("store.redis_url", "")

	// Uniswap V2 deployment on Sepolia.
	v.SetDefault("chain_id", 11155111)
	v.SetDefault("router", "0xeE567Fe1712Faf6149d80dA1E6934E354124CfE3")
	v.SetDefault("factory", "0xF62c03E08ada871A0bEb309762E260a7a6a880E6")
	v.SetDefault("wrapped_native", "0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14")
	v.SetDefault("native_symbol", "ETH")
	v.SetDefault("native_name", "Sepolia Ether")
	v.SetDefault("base_assets", []string{"0xfFf9976782d46CC05630D1f6eBAb18b2324d6B14"})
	v.SetDefault("explorer_url", "https://eth-sepolia.blockscout.com/api")
	v.SetDefault("log_level", "info")
	v.SetDefault("server_addr", ":8645")

	v.SetDefault("store.backend", StoreBackendFile)
	v.SetDefault("store.key_prefix", "")

	v.SetDefault("quote.impact_coefficient", 0.1)
	v.SetDefault("quote.impact_cap", 15.0)
	v.SetDefault("quote.impact_warning", 5.0)
	v.SetDefault("quote.recompute_delay", 500*time.Millisecond)
	v.SetDefault("quote.check_pairs", true)

	v.SetDefault("polling.balances", 15*time.Second)
	v.SetDefault("polling.prices", 30*time.Second)
	v.SetDefault("polling.alerts", 30*time.Second)
}

// Validate checks addresses and required fields
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("RPC URL not found. Please set DEXSWAP_RPC_URL environment variable or add rpc_url to .dexswap.yaml")
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("chain_id must be positive")
	}

	addrs := map[string]string{
		"router":         c.RouterAddress,
		"factory":        c.FactoryAddress,
		"wrapped_native": c.WrappedNative,
	}
	for field, addr := range addrs {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s address: %q", field, addr)
		}
	}
	for _, base := range c.BaseAssets {
		if !common.IsHexAddress(base) {
			return fmt.Errorf("invalid base asset address: %q", base)
		}
	}
	for _, t := range c.Tokens {
		if !common.IsHexAddress(t.Address) {
			return fmt.Errorf("invalid address for token %s: %q", t.Symbol, t.Address)
		}
		if t.Symbol == "" {
			return fmt.Errorf("token %s has no symbol", t.Address)
		}
	}

	switch c.Store.Backend {
	case StoreBackendFile:
	case StoreBackendRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Quote.ImpactCap < 0 || c.Quote.ImpactCoefficient < 0 {
		return fmt.Errorf("quote impact coefficient and cap must not be negative")
	}

	return nil
}

// Get returns the configuration loaded by the last successful Load
func Get() *Config {
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
