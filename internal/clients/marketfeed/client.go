// Package marketfeed reads market observations from a websocket feed.
package marketfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aristath/persona/internal/domain"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

const (
	dialTimeout = 30 * time.Second
	readTimeout = 30 * time.Second

	// Snapshots are small; anything larger is treated as a protocol error
	readLimit = 1 << 20
)

// Message is the feed's wire format: {"observations": {symbol: Observation}}
type Message struct {
	Observations map[string]domain.Observation `json:"observations"`
}

// Client is a research collaborator backed by a websocket feed.
// Each Research call opens a connection, reads one snapshot and closes.
type Client struct {
	url        string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a feed client for url (ws:// or wss://)
func NewClient(url string, log zerolog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   dialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				// The websocket upgrade requires HTTP/1.1
				ForceAttemptHTTP2: false,
			},
		},
		log: log.With().Str("component", "market_feed").Logger(),
	}
}

// Research dials the feed and returns the first observation snapshot.
// Non-text frames are skipped.
func (c *Client) Research(ctx context.Context) (map[string]domain.Observation, error) {
	dialCtx, dialCancel := context.WithTimeout(ctx, dialTimeout)
	defer dialCancel()

	conn, _, err := websocket.Dial(dialCtx, c.url, &websocket.DialOptions{
		HTTPClient: c.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dial market feed: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	conn.SetReadLimit(readLimit)

	readCtx, readCancel := context.WithTimeout(ctx, readTimeout)
	defer readCancel()

	for {
		msgType, data, err := conn.Read(readCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to read market feed: %w", err)
		}
		if msgType != websocket.MessageText {
			c.log.Debug().Int("type", int(msgType)).Msg("Ignoring non-text message")
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to parse market feed message: %w", err)
		}
		if msg.Observations == nil {
			return nil, fmt.Errorf("market feed message has no observations")
		}

		c.log.Debug().Int("observations", len(msg.Observations)).Msg("Market feed snapshot received")
		return msg.Observations, nil
	}
}
