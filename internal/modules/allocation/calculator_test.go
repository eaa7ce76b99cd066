package allocation

import (
	"sort"
	"testing"

	"github.com/aristath/persona/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHoldings is a minimal HoldingsReader
type fakeHoldings map[string]domain.Holding

func (f fakeHoldings) Get(symbol string) (domain.Holding, bool) {
	h, ok := f[symbol]
	return h, ok
}

func (f fakeHoldings) List() []domain.Holding {
	list := make([]domain.Holding, 0, len(f))
	for symbol, h := range f {
		h.Symbol = symbol
		list = append(list, h)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Symbol < list[j].Symbol })
	return list
}

func TestCalculator_EmptyPortfolio(t *testing.T) {
	calc := NewCalculator(fakeHoldings{})

	assert.Equal(t, 0.0, calc.TotalValue())
	assert.Equal(t, 0.0, calc.CurrentAllocation("StockA"), "empty portfolio allocation is 0, not an error")
	assert.Equal(t, 0.0, calc.AmountToBuy("StockA", 0.5, 0))
	assert.Empty(t, calc.Allocations())
}

func TestCalculator_ZeroPricedPortfolio(t *testing.T) {
	calc := NewCalculator(fakeHoldings{"StockA": {Quantity: 10, CurrentPrice: 0}})

	assert.Equal(t, 0.0, calc.CurrentAllocation("StockA"), "zero total value is guarded")
	assert.Equal(t, 0.0, calc.AmountToSell("StockA", 0, 1), "no positive price means no sizing")
}

func TestCalculator_SoleHoldingIsFullyAllocated(t *testing.T) {
	calc := NewCalculator(fakeHoldings{
		"StockA": {Quantity: 10, PurchasePrice: 100, CurrentPrice: 100},
	})

	assert.Equal(t, 1.0, calc.CurrentAllocation("StockA"))
	assert.Equal(t, 0.0, calc.CurrentAllocation("StockB"), "absent symbol has no allocation")
}

func TestCalculator_AllocationsPartitionTotal(t *testing.T) {
	portfolios := []fakeHoldings{
		{
			"A": {Quantity: 10, CurrentPrice: 100},
			"B": {Quantity: 3, CurrentPrice: 33.3},
			"C": {Quantity: 0.25, CurrentPrice: 4012.7},
		},
		{
			"X": {Quantity: 1, CurrentPrice: 1},
			"Y": {Quantity: 1e6, CurrentPrice: 0.0001},
		},
		{
			"ONLY": {Quantity: 7, CurrentPrice: 13},
		},
	}

	for i, holdings := range portfolios {
		calc := NewCalculator(holdings)
		sum := 0.0
		for symbol := range holdings {
			sum += calc.CurrentAllocation(symbol)
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "portfolio %d allocations should sum to 1", i)
	}
}

func TestCalculator_AllocationReactsToPriceDrift(t *testing.T) {
	holdings := fakeHoldings{
		"A": {Quantity: 10, PurchasePrice: 50, CurrentPrice: 50},
		"B": {Quantity: 10, PurchasePrice: 50, CurrentPrice: 50},
	}
	calc := NewCalculator(holdings)
	assert.Equal(t, 0.5, calc.CurrentAllocation("A"))

	holdings["A"] = domain.Holding{Quantity: 10, PurchasePrice: 50, CurrentPrice: 150}
	assert.Equal(t, 0.75, calc.CurrentAllocation("A"), "allocation follows market value, not cost basis")
}

func TestCalculator_AmountToBuy(t *testing.T) {
	// Two holdings each worth 500, total 1000
	calc := NewCalculator(fakeHoldings{
		"StockA": {Quantity: 5, CurrentPrice: 100, DesiredAllocation: 0.7, ShouldRebalance: true},
		"StockB": {Quantity: 10, CurrentPrice: 50},
	})

	current := calc.CurrentAllocation("StockA")
	require.Equal(t, 0.5, current)

	amount := calc.AmountToBuy("StockA", 0.7, current)
	assert.InDelta(t, (0.7-0.5)*1000/100, amount, 1e-9)

	assert.Less(t, calc.AmountToBuy("StockA", 0.3, current), 0.0,
		"buy formula goes negative when over target")
}

func TestCalculator_AmountToSell(t *testing.T) {
	calc := NewCalculator(fakeHoldings{
		"StockA": {Quantity: 5, CurrentPrice: 100},
		"StockB": {Quantity: 10, CurrentPrice: 50},
	})

	amount := calc.AmountToSell("StockB", 0.2, 0.5)
	assert.InDelta(t, (0.5-0.2)*1000/50, amount, 1e-9)

	assert.InDelta(t, -calc.AmountToBuy("StockB", 0.2, 0.5), amount, 1e-9,
		"sell mirrors buy with the sign flipped")
}

func TestCalculator_Allocations(t *testing.T) {
	calc := NewCalculator(fakeHoldings{
		"B": {Quantity: 10, CurrentPrice: 25, DesiredAllocation: 0.5, ShouldRebalance: true},
		"A": {Quantity: 3, CurrentPrice: 250, DesiredAllocation: 0.5},
	})

	allocs := calc.Allocations()
	require.Len(t, allocs, 2)

	assert.Equal(t, "A", allocs[0].Symbol)
	assert.Equal(t, 750.0, allocs[0].CurrentValue)
	assert.Equal(t, 0.75, allocs[0].CurrentPct)
	assert.Equal(t, 0.25, allocs[0].Deviation)
	assert.False(t, allocs[0].Rebalance)

	assert.Equal(t, "B", allocs[1].Symbol)
	assert.Equal(t, 0.25, allocs[1].CurrentPct)
	assert.Equal(t, -0.25, allocs[1].Deviation)
	assert.True(t, allocs[1].Rebalance)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.3333, round(1.0/3.0, 4))
	assert.Equal(t, 2.68, round(2.675000001, 2))
	assert.Equal(t, 10.0, round(10, 0))
}
