package marketfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/persona/internal/modules/market"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

// newFeedServer serves each connection the given frames in order
func newFeedServer(t *testing.T, frames ...func(ctx context.Context, conn *websocket.Conn) error) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		for _, frame := range frames {
			if err := frame(r.Context(), conn); err != nil {
				return
			}
		}
		// Wait for the client to close
		_, _, _ = conn.Read(r.Context())
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func text(payload string) func(ctx context.Context, conn *websocket.Conn) error {
	return func(ctx context.Context, conn *websocket.Conn) error {
		return conn.Write(ctx, websocket.MessageText, []byte(payload))
	}
}

func binary(payload []byte) func(ctx context.Context, conn *websocket.Conn) error {
	return func(ctx context.Context, conn *websocket.Conn) error {
		return conn.Write(ctx, websocket.MessageBinary, payload)
	}
}

func TestClient_Research(t *testing.T) {
	url := newFeedServer(t,
		binary([]byte{0x01}),
		text(`{"observations":{"StockC":{"current_price":42.5,"sentiment":0.7,"is_undervalued":true,"is_overvalued":false}}}`),
	)

	client := NewClient(url, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	observations, err := client.Research(ctx)
	require.NoError(t, err)
	require.Contains(t, observations, "StockC")
	assert.Equal(t, 42.5, observations["StockC"].CurrentPrice)
	assert.Equal(t, 0.7, observations["StockC"].Sentiment)
	assert.True(t, observations["StockC"].IsUndervalued)
}

func TestClient_ResearchMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		errMsg  string
	}{
		{"not json", `{oops`, "failed to parse"},
		{"missing observations", `{"prices":{}}`, "no observations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := newFeedServer(t, text(tt.payload))
			client := NewClient(url, zerolog.Nop())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, err := client.Research(ctx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestClient_ResearchDialFailure(t *testing.T) {
	client := NewClient("ws://127.0.0.1:1/feed", zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Research(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to dial market feed")
}

func TestClient_IsResearcher(t *testing.T) {
	var _ market.Researcher = NewClient("ws://localhost", zerolog.Nop())
}
