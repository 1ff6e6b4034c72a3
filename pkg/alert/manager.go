package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dexswap/pkg/store"
	"dexswap/pkg/token"

	"github.com/google/uuid"
)

// Manager provides high-level operations for alerts
type Manager struct {
	state    *store.State
	registry *token.Registry
	now      func() time.Time
}

func NewManager(state *store.State, registry *token.Registry) *Manager {
	return &Manager{state: state, registry: registry, now: time.Now}
}

// Create validates and stores a new alert. Tokens are given by symbol or
// address and stored by symbol.
func (m *Manager) Create(ctx context.Context, tokenQuery, quoteQuery string, cond Condition, target float64) (*Alert, error) {
	tok, err := m.registry.Lookup(tokenQuery)
	if err != nil {
		return nil, err
	}
	quoteTok, err := m.registry.Lookup(quoteQuery)
	if err != nil {
		return nil, err
	}

	a := Alert{
		ID:          uuid.New().String(),
		Token:       tok.Symbol(),
		QuoteToken:  quoteTok.Symbol(),
		Condition:   cond,
		TargetPrice: target,
		Created:     m.now(),
	}
	if err := Validate(&a); err != nil {
		return nil, err
	}

	err = m.state.UpdateAlerts(ctx, func(alerts []Alert) ([]Alert, error) {
		return append(alerts, a), nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns every alert in creation order
func (m *Manager) List(ctx context.Context) ([]Alert, error) {
	return m.state.Alerts(ctx)
}

// Pending returns the alerts that have not fired yet
func (m *Manager) Pending(ctx context.Context) ([]Alert, error) {
	alerts, err := m.state.Alerts(ctx)
	if err != nil {
		return nil, err
	}
	out := alerts[:0]
	for _, a := range alerts {
		if !a.Triggered {
			out = append(out, a)
		}
	}
	return out, nil
}

// Get finds an alert by ID or unique ID prefix
func (m *Manager) Get(ctx context.Context, id string) (*Alert, error) {
	alerts, err := m.state.Alerts(ctx)
	if err != nil {
		return nil, err
	}
	i, err := find(alerts, id)
	if err != nil {
		return nil, err
	}
	return &alerts[i], nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.state.UpdateAlerts(ctx, func(alerts []Alert) ([]Alert, error) {
		i, err := find(alerts, id)
		if err != nil {
			return nil, err
		}
		return append(alerts[:i], alerts[i+1:]...), nil
	})
}

// Reset re-arms a triggered alert
func (m *Manager) Reset(ctx context.Context, id string) error {
	return m.state.UpdateAlerts(ctx, func(alerts []Alert) ([]Alert, error) {
		i, err := find(alerts, id)
		if err != nil {
			return nil, err
		}
		alerts[i].Triggered = false
		alerts[i].TriggeredAt = nil
		return alerts, nil
	})
}

// MarkTriggered records that the alert fired at price
func (m *Manager) MarkTriggered(ctx context.Context, id string, price float64) error {
	return m.state.UpdateAlerts(ctx, func(alerts []Alert) ([]Alert, error) {
		i, err := find(alerts, id)
		if err != nil {
			return nil, err
		}
		now := m.now()
		alerts[i].Triggered = true
		alerts[i].TriggeredAt = &now
		alerts[i].LastPrice = price
		return alerts, nil
	})
}

func find(alerts []Alert, id string) (int, error) {
	match := -1
	for i, a := range alerts {
		if a.ID == id {
			return i, nil
		}
		if id != "" && strings.HasPrefix(a.ID, id) {
			if match >= 0 {
				return -1, fmt.Errorf("alert id %q is ambiguous", id)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}
