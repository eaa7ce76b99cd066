package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/persona/internal/modules/evaluation"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSummary evaluation.Summary

func (f fixedSummary) Summary() evaluation.Summary { return evaluation.Summary(f) }

func TestHandleGetSummary(t *testing.T) {
	ret := 0.05
	provider := fixedSummary{Holdings: 2, TotalValue: 1500, Cash: 500, AverageReturn: &ret}

	router := chi.NewRouter()
	NewHandler(provider, zerolog.Nop()).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodGet, "/evaluation/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Data     map[string]interface{} `json:"data"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2.0, response.Data["holdings"])
	assert.Equal(t, 0.05, response.Data["average_return"])
	assert.Nil(t, response.Data["average_risk"], "inapplicable metrics are null")
	assert.Contains(t, response.Metadata, "timestamp")
}
