package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCashManagerInterface tests that CashManager interface has all required methods
func TestCashManagerInterface(t *testing.T) {
	var _ CashManager = (*mockCashManager)(nil)
}

// TestPriceSourceInterface tests that PriceSource interface has all required methods
func TestPriceSourceInterface(t *testing.T) {
	var _ PriceSource = (mockPriceSource)(nil)
}

func TestMockCashManager(t *testing.T) {
	m := &mockCashManager{balance: 100}

	assert.NoError(t, m.Debit(40))
	assert.ErrorIs(t, m.Debit(100), ErrInsufficientCash)
	m.Credit(15)
	assert.Equal(t, 75.0, m.Balance())
}

// Mock implementations for testing

type mockCashManager struct {
	balance float64
}

func (m *mockCashManager) Balance() float64 {
	return m.balance
}

func (m *mockCashManager) Debit(amount float64) error {
	if amount > m.balance {
		return ErrInsufficientCash
	}
	m.balance -= amount
	return nil
}

func (m *mockCashManager) Credit(amount float64) {
	m.balance += amount
}

type mockPriceSource map[string]float64

func (m mockPriceSource) Price(symbol string) (float64, bool) {
	p, ok := m[symbol]
	return p, ok
}
