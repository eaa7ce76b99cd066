package events

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// TradeExecutedData contains data for TradeExecuted events
type TradeExecutedData struct {
	TradeID  string  `json:"trade_id"`
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Reason   string  `json:"reason,omitempty"`
}

// EventType returns the event type for TradeExecutedData
func (d *TradeExecutedData) EventType() EventType {
	return TradeExecuted
}

// TradeRejectedData contains data for TradeRejected events
type TradeRejectedData struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity float64 `json:"quantity"`
	Reason   string  `json:"reason,omitempty"`
	Error    string  `json:"error"`
}

// EventType returns the event type for TradeRejectedData
func (d *TradeRejectedData) EventType() EventType {
	return TradeRejected
}

// CycleCompletedData contains data for CycleCompleted events
type CycleCompletedData struct {
	Rebalanced int     `json:"rebalanced"`
	Signals    int     `json:"signals"`
	Failed     int     `json:"failed"`
	TotalValue float64 `json:"total_value"`
	Cash       float64 `json:"cash"`
}

// EventType returns the event type for CycleCompletedData
func (d *CycleCompletedData) EventType() EventType {
	return CycleCompleted
}

// KnowledgeRefreshedData contains data for KnowledgeRefreshed events
type KnowledgeRefreshedData struct {
	Merged int `json:"merged"`
	Total  int `json:"total"`
}

// EventType returns the event type for KnowledgeRefreshedData
func (d *KnowledgeRefreshedData) EventType() EventType {
	return KnowledgeRefreshed
}

// PortfolioLoadedData contains data for PortfolioLoaded events
type PortfolioLoadedData struct {
	Path     string `json:"path,omitempty"`
	Holdings int    `json:"holdings"`
	Fallback bool   `json:"fallback"` // True when loading failed and the portfolio started empty
}

// EventType returns the event type for PortfolioLoadedData
func (d *PortfolioLoadedData) EventType() EventType {
	return PortfolioLoaded
}
