package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeSideFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected TradeSide
		wantErr  bool
	}{
		{"BUY", TradeSideBuy, false},
		{"buy", TradeSideBuy, false},
		{" Sell ", TradeSideSell, false},
		{"", "", true},
		{"HOLD", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			side, err := TradeSideFromString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, side)
		})
	}
}

func TestTrade_Validate(t *testing.T) {
	valid := Trade{Symbol: "StockA", Side: TradeSideBuy, Quantity: 1, Price: 10}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Trade)
		errMsg string
	}{
		{"empty symbol", func(tr *Trade) { tr.Symbol = " " }, "symbol cannot be empty"},
		{"bad side", func(tr *Trade) { tr.Side = "HOLD" }, "invalid trade side"},
		{"zero quantity", func(tr *Trade) { tr.Quantity = 0 }, "quantity must be positive"},
		{"zero price", func(tr *Trade) { tr.Price = 0 }, "price must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trade := valid
			tt.mutate(&trade)
			err := trade.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
