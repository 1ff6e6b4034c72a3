package store

import (
	"fmt"
	"time"
)

// Fixed storage names
const (
	KeyTheme        = "dexswap-theme"
	KeySettings     = "dexswap-settings"
	KeyTransactions = "dexswap-transactions"
	KeyAlerts       = "dexswap-alerts"
	KeyWatchlist    = "dexswap-watchlist"
)

const (
	DefaultSlippage = 0.5
	DefaultDeadline = 20

	MaxSlippage = 50.0
	MaxDeadline = 4320 // three days

	MaxRecentTransactions = 50
)

// Theme is the display theme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func (t Theme) Valid() bool {
	return t == ThemeDark || t == ThemeLight
}

// Settings are the user's swap settings
type Settings struct {
	SlippagePercent float64 `json:"slippage"`
	DeadlineMinutes int     `json:"deadline"`
}

func DefaultSettings() Settings {
	return Settings{SlippagePercent: DefaultSlippage, DeadlineMinutes: DefaultDeadline}
}

// Validate checks slippage is in (0, 50] and deadline in [1, 4320]
func (s Settings) Validate() error {
	if s.SlippagePercent <= 0 || s.SlippagePercent > MaxSlippage {
		return fmt.Errorf("slippage must be greater than 0 and at most %.0f%%", MaxSlippage)
	}
	if s.DeadlineMinutes < 1 || s.DeadlineMinutes > MaxDeadline {
		return fmt.Errorf("deadline must be between 1 and %d minutes", MaxDeadline)
	}
	return nil
}

// TxType labels a recent transaction
type TxType string

const (
	TxSwap            TxType = "swap"
	TxApprove         TxType = "approve"
	TxAddLiquidity    TxType = "add_liquidity"
	TxRemoveLiquidity TxType = "remove_liquidity"
)

// TxStatus is the lifecycle state of a recent transaction
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
)

// Transaction is one entry in the recent-transactions list
type Transaction struct {
	ID        string    `json:"id"`
	Hash      string    `json:"hash,omitempty"`
	Type      TxType    `json:"type"`
	Summary   string    `json:"summary"`
	Status    TxStatus  `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertCondition defines when an alert fires
type AlertCondition string

const (
	PriceAbove AlertCondition = "above" // Trigger when price goes above target
	PriceBelow AlertCondition = "below" // Trigger when price goes below target
)

// Alert is a persisted price alert
type Alert struct {
	ID          string         `json:"id"`
	Token       string         `json:"token"`
	QuoteToken  string         `json:"quote_token"`
	Condition   AlertCondition `json:"condition"`
	TargetPrice float64        `json:"target_price"`
	Triggered   bool           `json:"triggered"`
	Created     time.Time      `json:"created"`
	TriggeredAt *time.Time     `json:"triggered_at,omitempty"`
	LastPrice   float64        `json:"last_price,omitempty"`
}
