package alert

import (
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"dexswap/pkg/poller"
	"dexswap/pkg/quote"
	"dexswap/pkg/store"
	"dexswap/pkg/token"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	eth  = token.NewNative("ETH", "Ether", 18)
	usdc = token.NewERC20(common.HexToAddress("0x00000000000000000000000000000000000000c1"), "USDC", "USD Coin", 6, "", true)
	weth = common.HexToAddress("0x00000000000000000000000000000000000000e1")
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	b, err := store.NewFileBackend(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	reg, err := token.NewRegistry(eth, weth, []token.Asset{usdc})
	require.NoError(t, err)
	return NewManager(store.NewState(b), reg)
}

// fixedPrice quotes every request at rate; a nil rate fails
type fixedPrice struct {
	mu   sync.Mutex
	rate *float64
}

func (f *fixedPrice) set(r float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rate = &r
}

func (f *fixedPrice) quote(ctx context.Context, req quote.Request) (*quote.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rate == nil {
		return nil, quote.ErrNoRoute
	}
	return &quote.Quote{TokenIn: req.TokenIn, TokenOut: req.TokenOut, AmountIn: big.NewInt(1), AmountOut: big.NewInt(1), Rate: *f.rate}, nil
}

func TestParseCondition(t *testing.T) {
	c, err := ParseCondition("ABOVE")
	require.NoError(t, err)
	assert.Equal(t, PriceAbove, c)

	_, err = ParseCondition("at")
	assert.Error(t, err)
}

func TestHolds(t *testing.T) {
	above := &Alert{Condition: PriceAbove, TargetPrice: 100}
	below := &Alert{Condition: PriceBelow, TargetPrice: 100}

	assert.True(t, Holds(above, 100))
	assert.False(t, Holds(above, 99.9))
	assert.True(t, Holds(below, 100))
	assert.False(t, Holds(below, 100.1))
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	a, err := m.Create(ctx, "eth", "USDC", PriceAbove, 3000)
	require.NoError(t, err)
	assert.Equal(t, "ETH", a.Token)
	assert.NotEmpty(t, a.ID)

	_, err = m.Create(ctx, "ETH", "ETH", PriceAbove, 1)
	assert.Error(t, err)
	_, err = m.Create(ctx, "ETH", "USDC", PriceBelow, 0)
	assert.Error(t, err)
	_, err = m.Create(ctx, "DOGE", "USDC", PriceBelow, 1)
	assert.ErrorIs(t, err, token.ErrUnknownToken)

	got, err := m.Get(ctx, a.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	require.NoError(t, m.MarkTriggered(ctx, a.ID, 3100))
	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, m.Reset(ctx, a.ID))
	pending, err = m.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, m.Delete(ctx, a.ID))
	assert.ErrorIs(t, m.Delete(ctx, a.ID), ErrNotFound)
}

func TestWatcherCheck(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)
	prices := &fixedPrice{}

	above, err := m.Create(ctx, "ETH", "USDC", PriceAbove, 3000)
	require.NoError(t, err)
	_, err = m.Create(ctx, "ETH", "USDC", PriceBelow, 1000)
	require.NoError(t, err)

	var notified []Event
	w := NewWatcher(m, NewPricer(prices.quote, m.registry), poller.New(nil), func(e Event) {
		notified = append(notified, e)
	}, nil)

	// pricing failures are skipped
	fired, err := w.Check(ctx)
	require.NoError(t, err)
	assert.Empty(t, fired)

	prices.set(3200)
	fired, err = w.Check(ctx)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, above.ID, fired[0].Alert.ID)
	assert.Equal(t, 3200.0, fired[0].Price)
	assert.Len(t, notified, 1)

	// a fired alert does not fire again
	fired, err = w.Check(ctx)
	require.NoError(t, err)
	assert.Empty(t, fired)

	stored, err := m.Get(ctx, above.ID)
	require.NoError(t, err)
	assert.True(t, stored.Triggered)
	require.NotNil(t, stored.TriggeredAt)
	assert.Equal(t, 3200.0, stored.LastPrice)
}

func TestWatcherSchedules(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)
	prices := &fixedPrice{}
	prices.set(500)

	_, err := m.Create(ctx, "ETH", "USDC", PriceBelow, 1000)
	require.NoError(t, err)

	events := make(chan Event, 1)
	sched := poller.New(nil)
	defer sched.Stop()

	w := NewWatcher(m, NewPricer(prices.quote, m.registry), sched, func(e Event) { events <- e }, nil)
	w.SetInterval(time.Second)
	assert.Equal(t, MinCheckInterval, w.Interval())
	require.NoError(t, w.Start())

	select {
	case e := <-events:
		assert.Equal(t, 500.0, e.Price)
	case <-time.After(2 * time.Second):
		t.Fatal("alert did not fire")
	}
	w.Stop()
	assert.Empty(t, sched.Names())
}

func TestPricerErrors(t *testing.T) {
	m := newManager(t)
	p := NewPricer(func(context.Context, quote.Request) (*quote.Quote, error) {
		return nil, errors.New("rpc down")
	}, m.registry)

	_, err := p.Price(context.Background(), "ETH", "USDC")
	assert.Error(t, err)

	_, err = p.Price(context.Background(), "XYZ", "USDC")
	assert.ErrorIs(t, err, token.ErrUnknownToken)
}
