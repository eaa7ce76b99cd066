package trading

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/aristath/persona/internal/domain"
	"github.com/aristath/persona/internal/events"
	"github.com/aristath/persona/internal/modules/cash_flows"
	"github.com/aristath/persona/internal/modules/portfolio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priceMap map[string]float64

func (p priceMap) Price(symbol string) (float64, bool) {
	price, ok := p[symbol]
	return price, ok && price > 0
}

type mockRecorder struct {
	trades []Trade
	err    error
}

func (m *mockRecorder) Create(trade Trade) error {
	if m.err != nil {
		return m.err
	}
	m.trades = append(m.trades, trade)
	return nil
}

type executorFixture struct {
	executor *Executor
	store    *portfolio.Store
	cash     *cash_flows.Account
	recorder *mockRecorder
	events   []events.Event
}

func newExecutorFixture(t *testing.T, prices priceMap, opening float64) *executorFixture {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)

	f := &executorFixture{
		store:    portfolio.NewStore(log),
		cash:     cash_flows.NewAccount(opening, log),
		recorder: &mockRecorder{},
	}
	em := events.NewManager(log)
	em.Subscribe(func(e events.Event) { f.events = append(f.events, e) })

	f.executor = NewExecutor(f.store, prices, f.cash, f.recorder, em, log)
	return f
}

func TestExecutor_BuyNewSymbol(t *testing.T) {
	f := newExecutorFixture(t, priceMap{"StockA": 100}, 100000)

	trade, err := f.executor.Buy("StockA", 10, ReasonManual)
	require.NoError(t, err)
	require.NotNil(t, trade)

	h, ok := f.store.Get("StockA")
	require.True(t, ok)
	assert.Equal(t, 10.0, h.Quantity)
	assert.Equal(t, 100.0, h.PurchasePrice)
	assert.Equal(t, 100.0, h.CurrentPrice)

	assert.Equal(t, 99000.0, f.cash.Balance())
	assert.Equal(t, TradeSideBuy, trade.Side)
	assert.Equal(t, 1000.0, trade.Value)
	assert.NotEmpty(t, trade.ID)
}

func TestExecutor_BuyExistingKeepsPurchasePrice(t *testing.T) {
	prices := priceMap{"StockA": 100}
	f := newExecutorFixture(t, prices, 100000)

	_, err := f.executor.Buy("StockA", 10, ReasonManual)
	require.NoError(t, err)

	prices["StockA"] = 120
	_, err = f.executor.Buy("StockA", 5, ReasonManual)
	require.NoError(t, err)

	h, _ := f.store.Get("StockA")
	assert.Equal(t, 15.0, h.Quantity)
	assert.Equal(t, 100.0, h.PurchasePrice)
	assert.Equal(t, 120.0, h.CurrentPrice)
	assert.Equal(t, 100000.0-1000-600, f.cash.Balance())
}

func TestExecutor_FillsConserveNetWorth(t *testing.T) {
	netWorth := func(f *executorFixture) float64 {
		total := f.cash.Balance()
		for _, h := range f.store.Holdings() {
			total += h.Quantity * h.CurrentPrice
		}
		return total
	}

	f := newExecutorFixture(t, priceMap{"StockA": 100}, 2000)
	h := domain.NewHolding("StockA", 10, 150)
	h.CurrentPrice = 200
	f.store.Put(h)

	_, err := f.executor.Buy("StockA", 10, ReasonManual)
	require.NoError(t, err)

	held, _ := f.store.Get("StockA")
	assert.Equal(t, 100.0, held.CurrentPrice)
	assert.Equal(t, 150.0, held.PurchasePrice)
	before := netWorth(f)
	assert.InDelta(t, 1000.0+20*100, before, 1e-9)

	stale := held
	stale.CurrentPrice = 80
	f.store.Put(stale)
	_, err = f.executor.Sell("StockA", 5, ReasonManual)
	require.NoError(t, err)

	held, _ = f.store.Get("StockA")
	assert.Equal(t, 100.0, held.CurrentPrice)
	assert.InDelta(t, before, netWorth(f), 1e-9)
}

func TestExecutor_BuyErrors(t *testing.T) {
	tests := []struct {
		name     string
		symbol   string
		quantity float64
		opening  float64
		expected error
	}{
		{"zero quantity", "StockA", 0, 100000, domain.ErrInvalidQuantity},
		{"negative quantity", "StockA", -1, 100000, domain.ErrInvalidQuantity},
		{"no market price", "Unknown", 1, 100000, domain.ErrNoMarketPrice},
		{"insufficient cash", "StockA", 10, 999, domain.ErrInsufficientCash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExecutorFixture(t, priceMap{"StockA": 100}, tt.opening)

			trade, err := f.executor.Buy(tt.symbol, tt.quantity, ReasonManual)
			require.Error(t, err)
			assert.Nil(t, trade)
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)

			assert.Equal(t, 0, f.store.Len())
			assert.Equal(t, tt.opening, f.cash.Balance())
			assert.Empty(t, f.executor.History())
			require.Len(t, f.events, 1)
			assert.Equal(t, events.TradeRejected, f.events[0].Type)
		})
	}
}

func TestExecutor_SellRemovesHoldingThenFails(t *testing.T) {
	f := newExecutorFixture(t, priceMap{"StockA": 100}, 100000)
	f.store.Put(domain.NewHolding("StockA", 10, 100))

	_, err := f.executor.Sell("StockA", 10, ReasonManual)
	require.NoError(t, err)
	assert.False(t, f.store.Has("StockA"))
	assert.Equal(t, 101000.0, f.cash.Balance())

	_, err = f.executor.Sell("StockA", 1, ReasonManual)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownSymbol)
}

func TestExecutor_SellInsufficientHoldings(t *testing.T) {
	f := newExecutorFixture(t, priceMap{"StockA": 100}, 0)
	f.store.Put(domain.NewHolding("StockA", 5, 100))

	_, err := f.executor.Sell("StockA", 6, ReasonManual)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientHoldings)

	h, _ := f.store.Get("StockA")
	assert.Equal(t, 5.0, h.Quantity)
	assert.Equal(t, 0.0, f.cash.Balance())
}

func TestExecutor_SellClampsWithinEpsilon(t *testing.T) {
	f := newExecutorFixture(t, priceMap{"StockA": 100}, 0)
	f.store.Put(domain.NewHolding("StockA", 3, 100))

	trade, err := f.executor.Sell("StockA", 3+domain.QuantityEpsilon/2, ReasonRebalance)
	require.NoError(t, err)
	assert.Equal(t, 3.0, trade.Quantity)
	assert.False(t, f.store.Has("StockA"))
	assert.Equal(t, 300.0, f.cash.Balance())
}

func TestExecutor_SellFallsBackToHoldingPrice(t *testing.T) {
	f := newExecutorFixture(t, priceMap{}, 0)
	h := domain.NewHolding("StockZ", 2, 40)
	h.CurrentPrice = 50
	f.store.Put(h)

	trade, err := f.executor.Sell("StockZ", 2, ReasonManual)
	require.NoError(t, err)
	assert.Equal(t, 50.0, trade.Price)
	assert.Equal(t, 100.0, f.cash.Balance())
}

func TestExecutor_RoundTrip(t *testing.T) {
	f := newExecutorFixture(t, priceMap{"StockA": 100, "StockB": 150}, 100000)
	f.store.Put(domain.NewHolding("StockB", 4, 150))
	before := f.store.Holdings()

	_, err := f.executor.Buy("StockA", 7, ReasonManual)
	require.NoError(t, err)
	_, err = f.executor.Sell("StockA", 7, ReasonManual)
	require.NoError(t, err)

	assert.Equal(t, before, f.store.Holdings())
	assert.InDelta(t, 100000.0, f.cash.Balance(), 1e-9)
	assert.Len(t, f.executor.History(), 2)
}

func TestExecutor_RecorderFailureKeepsTrade(t *testing.T) {
	f := newExecutorFixture(t, priceMap{"StockA": 100}, 100000)
	f.recorder.err = errors.New("disk full")

	_, err := f.executor.Buy("StockA", 1, ReasonManual)
	require.NoError(t, err)
	assert.True(t, f.store.Has("StockA"))
	assert.Len(t, f.executor.History(), 1)
}

func TestExecutor_RecordsAndEmits(t *testing.T) {
	f := newExecutorFixture(t, priceMap{"StockA": 100}, 100000)

	trade, err := f.executor.Buy("StockA", 2, ReasonSignal)
	require.NoError(t, err)

	require.Len(t, f.recorder.trades, 1)
	assert.Equal(t, trade.ID, f.recorder.trades[0].ID)

	require.Len(t, f.events, 1)
	assert.Equal(t, events.TradeExecuted, f.events[0].Type)
	data, ok := f.events[0].Data.(*events.TradeExecutedData)
	require.True(t, ok)
	assert.Equal(t, "StockA", data.Symbol)
	assert.Equal(t, "signal", data.Reason)
}

func TestExecutor_HistoryIsCopy(t *testing.T) {
	f := newExecutorFixture(t, priceMap{"StockA": 100}, 100000)
	_, err := f.executor.Buy("StockA", 1, ReasonManual)
	require.NoError(t, err)

	history := f.executor.History()
	history[0].Symbol = "mutated"
	assert.Equal(t, "StockA", f.executor.History()[0].Symbol)
}

func TestExecutor_NoNegativeOrZeroHoldings(t *testing.T) {
	symbols := []string{"StockA", "StockB", "StockC"}
	f := newExecutorFixture(t, priceMap{"StockA": 10, "StockB": 20, "StockC": 3.3}, 1e9)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		symbol := symbols[rng.Intn(len(symbols))]
		quantity := float64(rng.Intn(20)) + rng.Float64()
		if rng.Intn(2) == 0 {
			_, _ = f.executor.Buy(symbol, quantity, ReasonManual)
		} else {
			_, _ = f.executor.Sell(symbol, quantity, ReasonManual)
		}

		for _, h := range f.store.List() {
			require.Greater(t, h.Quantity, domain.QuantityEpsilon, "step %d: %s", i, h.Symbol)
		}
		require.GreaterOrEqual(t, f.cash.Balance(), 0.0)
	}
}
