package domain

// CashManager defines operations for managing the persona's cash reserves.
// Defined here so trading and cash_flows do not import each other.
type CashManager interface {
	// Balance returns the current cash balance
	Balance() float64

	// Debit removes amount from the balance.
	// Returns ErrInsufficientCash (wrapped) when the balance is too small.
	Debit(amount float64) error

	// Credit adds amount to the balance
	Credit(amount float64)
}

// PriceSource provides last known market prices by symbol
type PriceSource interface {
	// Price returns the last known price and whether one exists
	Price(symbol string) (float64, bool)
}
