package trading

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// tradesColumns is the list of columns for the trades table
// Column order must match scanTrade()
const tradesColumns = `id, symbol, side, quantity, price, value, reason, executed_at`

// TradeRepository persists executed trades in ledger.db
type TradeRepository struct {
	ledgerDB *sql.DB // ledger.db - trades table
	log      zerolog.Logger
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(ledgerDB *sql.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "trade").Logger(),
	}
}

// Create inserts a trade. Re-inserting an existing trade ID is a no-op.
func (r *TradeRepository) Create(trade Trade) error {
	if err := trade.Validate(); err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}

	query := `
		INSERT OR IGNORE INTO trades
		(id, symbol, side, quantity, price, value, reason, executed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.ledgerDB.Exec(query,
		trade.ID,
		trade.Symbol,
		string(trade.Side),
		trade.Quantity,
		trade.Price,
		trade.Value,
		string(trade.Reason),
		trade.ExecutedAt.UnixNano(),
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}

	r.log.Debug().
		Str("trade_id", trade.ID).
		Str("symbol", trade.Symbol).
		Str("side", string(trade.Side)).
		Float64("quantity", trade.Quantity).
		Msg("Trade recorded")

	return nil
}

// GetHistory returns trades oldest first. A limit of 0 or less returns all
// trades; otherwise only the most recent limit trades are returned.
func (r *TradeRepository) GetHistory(limit int) ([]Trade, error) {
	query := "SELECT " + tradesColumns + " FROM trades ORDER BY executed_at DESC, rowid DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	trades, err := r.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade history: %w", err)
	}

	// Query returns newest first; history reads oldest first
	for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
		trades[i], trades[j] = trades[j], trades[i]
	}
	return trades, nil
}

// GetBySymbol returns trades for symbol, oldest first
func (r *TradeRepository) GetBySymbol(symbol string) ([]Trade, error) {
	trades, err := r.query("SELECT "+tradesColumns+" FROM trades WHERE symbol = ? ORDER BY executed_at ASC, rowid ASC", symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get trades for %s: %w", symbol, err)
	}
	return trades, nil
}

// Count returns the number of recorded trades
func (r *TradeRepository) Count() (int, error) {
	var count int
	if err := r.ledgerDB.QueryRow("SELECT COUNT(*) FROM trades").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

func (r *TradeRepository) query(query string, args ...interface{}) ([]Trade, error) {
	rows, err := r.ledgerDB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}

func scanTrade(rows *sql.Rows) (Trade, error) {
	var (
		trade      Trade
		side       string
		reason     string
		executedAt int64
	)
	if err := rows.Scan(
		&trade.ID,
		&trade.Symbol,
		&side,
		&trade.Quantity,
		&trade.Price,
		&trade.Value,
		&reason,
		&executedAt,
	); err != nil {
		return Trade{}, fmt.Errorf("failed to scan trade: %w", err)
	}
	trade.Side = TradeSide(side)
	trade.Reason = TradeReason(reason)
	trade.ExecutedAt = time.Unix(0, executedAt)
	return trade, nil
}

var _ TradeRecorder = (*TradeRepository)(nil)
