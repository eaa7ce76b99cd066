// Package cash_flows tracks the persona's cash reserves.
// Trades debit the account on buys and credit it on sells.
package cash_flows

import (
	"fmt"

	"github.com/aristath/persona/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultCashReserves is the starting balance of a new persona
const DefaultCashReserves = 100000.0

// Account is an in-memory cash balance.
// It is owned by a single agent and is not safe for concurrent use.
type Account struct {
	balance float64
	log     zerolog.Logger
}

// NewAccount creates an account holding the given opening balance.
//
// Parameters:
//   - opening: Opening cash balance
//   - log: Structured logger
func NewAccount(opening float64, log zerolog.Logger) *Account {
	return &Account{
		balance: opening,
		log:     log.With().Str("service", "cash").Logger(),
	}
}

// Balance returns the current cash balance
func (a *Account) Balance() float64 {
	return a.balance
}

// Debit removes amount from the balance.
// Returns domain.ErrInsufficientCash when amount exceeds the balance;
// the balance is unchanged in that case.
func (a *Account) Debit(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("cannot debit negative amount %.2f", amount)
	}
	if amount > a.balance {
		return fmt.Errorf("debit of %.2f exceeds balance %.2f: %w", amount, a.balance, domain.ErrInsufficientCash)
	}
	a.balance -= amount
	a.log.Debug().Float64("amount", amount).Float64("balance", a.balance).Msg("Cash debited")
	return nil
}

// Credit adds amount to the balance. Negative amounts are ignored.
func (a *Account) Credit(amount float64) {
	if amount <= 0 {
		return
	}
	a.balance += amount
	a.log.Debug().Float64("amount", amount).Float64("balance", a.balance).Msg("Cash credited")
}

var _ domain.CashManager = (*Account)(nil)
