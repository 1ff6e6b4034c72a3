package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// State is the typed view of client state over a Backend. Read-modify-write
// sequences are serialized within one State.
type State struct {
	backend Backend
	mu      sync.Mutex
	now     func() time.Time
}

func NewState(backend Backend) *State {
	return &State{backend: backend, now: time.Now}
}

// Backend returns the underlying store
func (s *State) Backend() Backend {
	return s.backend
}

func (s *State) Close() error {
	return s.backend.Close()
}

func (s *State) read(ctx context.Context, key string, v interface{}) (bool, error) {
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *State) write(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.backend.Set(ctx, key, data)
}

// Theme returns the stored theme, dark when unset
func (s *State) Theme(ctx context.Context) (Theme, error) {
	var t Theme
	ok, err := s.read(ctx, KeyTheme, &t)
	if err != nil {
		return "", err
	}
	if !ok || !t.Valid() {
		return ThemeDark, nil
	}
	return t, nil
}

func (s *State) SetTheme(ctx context.Context, t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("unknown theme %q", t)
	}
	return s.write(ctx, KeyTheme, t)
}

// Settings returns the stored swap settings, or the defaults
func (s *State) Settings(ctx context.Context) (Settings, error) {
	settings := DefaultSettings()
	ok, err := s.read(ctx, KeySettings, &settings)
	if err != nil {
		return DefaultSettings(), err
	}
	if !ok || settings.Validate() != nil {
		return DefaultSettings(), nil
	}
	return settings, nil
}

func (s *State) SaveSettings(ctx context.Context, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.write(ctx, KeySettings, settings)
}

// RecentTransactions returns the list, most recent first
func (s *State) RecentTransactions(ctx context.Context) ([]Transaction, error) {
	var txs []Transaction
	if _, err := s.read(ctx, KeyTransactions, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// AddTransaction prepends tx, assigning an ID and timestamp when missing
func (s *State) AddTransaction(ctx context.Context, tx Transaction) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = s.now()
	}
	if tx.Status == "" {
		tx.Status = TxPending
	}

	txs, err := s.RecentTransactions(ctx)
	if err != nil {
		return tx, err
	}
	txs = append([]Transaction{tx}, txs...)
	if len(txs) > MaxRecentTransactions {
		txs = txs[:MaxRecentTransactions]
	}
	return tx, s.write(ctx, KeyTransactions, txs)
}

// UpdateTransaction sets the status of the entry with the given ID or hash
func (s *State) UpdateTransaction(ctx context.Context, idOrHash string, status TxStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.RecentTransactions(ctx)
	if err != nil {
		return err
	}
	for i := range txs {
		if txs[i].ID == idOrHash || (txs[i].Hash != "" && strings.EqualFold(txs[i].Hash, idOrHash)) {
			txs[i].Status = status
			txs[i].Error = errMsg
			return s.write(ctx, KeyTransactions, txs)
		}
	}
	return fmt.Errorf("transaction %s not found", idOrHash)
}

func (s *State) ClearTransactions(ctx context.Context) error {
	return s.backend.Delete(ctx, KeyTransactions)
}

// Watchlist returns the watched token addresses in insertion order
func (s *State) Watchlist(ctx context.Context) ([]common.Address, error) {
	var list []common.Address
	if _, err := s.read(ctx, KeyWatchlist, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AddToWatchlist adds addr unless present; it reports whether it was added
func (s *State) AddToWatchlist(ctx context.Context, addr common.Address) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.Watchlist(ctx)
	if err != nil {
		return false, err
	}
	for _, a := range list {
		if a == addr {
			return false, nil
		}
	}
	return true, s.write(ctx, KeyWatchlist, append(list, addr))
}

// RemoveFromWatchlist removes addr; it reports whether it was present
func (s *State) RemoveFromWatchlist(ctx context.Context, addr common.Address) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.Watchlist(ctx)
	if err != nil {
		return false, err
	}
	out := list[:0]
	found := false
	for _, a := range list {
		if a == addr {
			found = true
			continue
		}
		out = append(out, a)
	}
	if !found {
		return false, nil
	}
	return true, s.write(ctx, KeyWatchlist, out)
}

func (s *State) Alerts(ctx context.Context) ([]Alert, error) {
	var alerts []Alert
	if _, err := s.read(ctx, KeyAlerts, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s *State) SaveAlerts(ctx context.Context, alerts []Alert) error {
	return s.write(ctx, KeyAlerts, alerts)
}

// UpdateAlerts runs fn over the stored alerts and saves the result, holding
// the state lock for the whole read-modify-write
func (s *State) UpdateAlerts(ctx context.Context, fn func([]Alert) ([]Alert, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts, err := s.Alerts(ctx)
	if err != nil {
		return err
	}
	alerts, err = fn(alerts)
	if err != nil {
		return err
	}
	return s.SaveAlerts(ctx, alerts)
}
