// Package alert manages price alerts and watches them against live quotes.
package alert

import (
	"errors"
	"fmt"
	"strings"

	"dexswap/pkg/store"
)

// Alert is the persisted alert record
type Alert = store.Alert

type Condition = store.AlertCondition

const (
	PriceAbove = store.PriceAbove
	PriceBelow = store.PriceBelow
)

var ErrNotFound = errors.New("alert not found")

// ParseCondition accepts "above" or "below", ignoring case
func ParseCondition(s string) (Condition, error) {
	switch Condition(strings.ToLower(strings.TrimSpace(s))) {
	case PriceAbove:
		return PriceAbove, nil
	case PriceBelow:
		return PriceBelow, nil
	default:
		return "", fmt.Errorf("price condition must be 'above' or 'below', got %q", s)
	}
}

// Validate checks an alert has valid parameters
func Validate(a *Alert) error {
	if a.Token == "" {
		return fmt.Errorf("token is required")
	}
	if a.QuoteToken == "" {
		return fmt.Errorf("quote token is required")
	}
	if strings.EqualFold(a.Token, a.QuoteToken) {
		return fmt.Errorf("token and quote token must differ")
	}
	if a.TargetPrice <= 0 {
		return fmt.Errorf("target price must be greater than 0")
	}
	if _, err := ParseCondition(string(a.Condition)); err != nil {
		return err
	}
	return nil
}

// Holds reports whether price satisfies the alert's condition
func Holds(a *Alert, price float64) bool {
	switch a.Condition {
	case PriceAbove:
		return price >= a.TargetPrice
	case PriceBelow:
		return price <= a.TargetPrice
	default:
		return false
	}
}
