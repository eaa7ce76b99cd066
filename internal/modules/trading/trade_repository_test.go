package trading

import (
	"testing"
	"time"

	testhelpers "github.com/aristath/persona/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTradeRepository(t *testing.T) *TradeRepository {
	db := testhelpers.NewTestDB(t, "ledger")
	return NewTradeRepository(db.Conn(), zerolog.New(nil).Level(zerolog.Disabled))
}

func TestTradeRepository_CreateAndHistory(t *testing.T) {
	repo := newTestTradeRepository(t)
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	trades := []Trade{
		{ID: "t1", Symbol: "StockA", Side: TradeSideBuy, Quantity: 10, Price: 100, Value: 1000, Reason: ReasonSignal, ExecutedAt: base},
		{ID: "t2", Symbol: "StockB", Side: TradeSideBuy, Quantity: 5, Price: 150, Value: 750, Reason: ReasonManual, ExecutedAt: base.Add(time.Minute)},
		{ID: "t3", Symbol: "StockA", Side: TradeSideSell, Quantity: 4, Price: 110, Value: 440, Reason: ReasonRebalance, ExecutedAt: base.Add(2 * time.Minute)},
	}
	for _, trade := range trades {
		require.NoError(t, repo.Create(trade))
	}

	history, err := repo.GetHistory(0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "t1", history[0].ID, "history is oldest first")
	assert.Equal(t, "t3", history[2].ID)
	assert.Equal(t, TradeSideSell, history[2].Side)
	assert.Equal(t, ReasonRebalance, history[2].Reason)
	assert.True(t, base.Add(2*time.Minute).Equal(history[2].ExecutedAt))

	recent, err := repo.GetHistory(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "t2", recent[0].ID, "limit keeps the most recent trades")
	assert.Equal(t, "t3", recent[1].ID)

	bySymbol, err := repo.GetBySymbol("StockA")
	require.NoError(t, err)
	require.Len(t, bySymbol, 2)
	assert.Equal(t, "t1", bySymbol[0].ID)
}

func TestTradeRepository_DuplicateIDIgnored(t *testing.T) {
	repo := newTestTradeRepository(t)
	trade := Trade{ID: "dup", Symbol: "StockA", Side: TradeSideBuy, Quantity: 1, Price: 1, Value: 1, Reason: ReasonManual, ExecutedAt: time.Now()}

	require.NoError(t, repo.Create(trade))
	require.NoError(t, repo.Create(trade))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTradeRepository_RejectsInvalid(t *testing.T) {
	repo := newTestTradeRepository(t)

	err := repo.Create(Trade{ID: "bad", Symbol: "StockA", Side: TradeSideBuy, Quantity: 1, Price: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price must be positive")

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
