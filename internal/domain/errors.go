package domain

import "errors"

// Trade rejection reasons. Executors wrap these with context, so callers
// should test with errors.Is.
var (
	// ErrInvalidQuantity is returned for zero, negative, NaN or infinite quantities
	ErrInvalidQuantity = errors.New("invalid trade quantity")

	// ErrUnknownSymbol is returned when selling a symbol that is not held
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrInsufficientHoldings is returned when selling more than is held
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrInsufficientCash is returned when a buy costs more than the cash reserves
	ErrInsufficientCash = errors.New("insufficient cash reserves")

	// ErrNoMarketPrice is returned when a new symbol has no usable market price
	ErrNoMarketPrice = errors.New("no market price")
)
