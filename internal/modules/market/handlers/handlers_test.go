package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/persona/internal/domain"
	"github.com/aristath/persona/internal/modules/market"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAgent struct {
	knowledge map[string]domain.Observation
	err       error
}

func (m *mockAgent) Knowledge() map[string]domain.Observation {
	return m.knowledge
}

func (m *mockAgent) ConductMarketResearch(ctx context.Context, researcher market.Researcher) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	update, err := researcher.Research(ctx)
	if err != nil {
		return 0, err
	}
	for symbol, o := range update {
		m.knowledge[symbol] = o
	}
	return len(update), nil
}

func setupRouter(agent *mockAgent) *chi.Mux {
	router := chi.NewRouter()
	NewHandler(agent, zerolog.Nop()).RegisterRoutes(router)
	return router
}

func TestHandleGetKnowledge(t *testing.T) {
	agent := &mockAgent{knowledge: map[string]domain.Observation{
		"StockA": {CurrentPrice: 100, Sentiment: 0.6, IsUndervalued: true},
	}}

	req := httptest.NewRequest(http.MethodGet, "/market/knowledge", nil)
	rec := httptest.NewRecorder()
	setupRouter(agent).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response struct {
		Data struct {
			Observations map[string]domain.Observation `json:"observations"`
			Count        int                           `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Data.Count)
	assert.True(t, response.Data.Observations["StockA"].IsUndervalued)
}

func TestHandleResearch(t *testing.T) {
	agent := &mockAgent{knowledge: map[string]domain.Observation{}}
	router := setupRouter(agent)

	body := `{"StockC":{"current_price":12,"sentiment":0.3,"is_undervalued":false,"is_overvalued":true}}`
	req := httptest.NewRequest(http.MethodPost, "/market/research", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"merged":1`)
	assert.True(t, agent.knowledge["StockC"].IsOvervalued)
}

func TestHandleResearchErrors(t *testing.T) {
	t.Run("bad body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/market/research", strings.NewReader("[1,2"))
		rec := httptest.NewRecorder()
		setupRouter(&mockAgent{knowledge: map[string]domain.Observation{}}).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("merge failure", func(t *testing.T) {
		agent := &mockAgent{knowledge: map[string]domain.Observation{}, err: errors.New("boom")}
		req := httptest.NewRequest(http.MethodPost, "/market/research", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		setupRouter(agent).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
