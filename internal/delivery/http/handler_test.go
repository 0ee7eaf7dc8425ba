package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricescout/backend/config"
	"github.com/pricescout/backend/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAggregator struct {
	result  *domain.SearchResult
	err     error
	cleared bool
}

func (s *stubAggregator) Search(ctx context.Context, rawQuery, country string) (*domain.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubAggregator) Countries() []string { return []string{"US", "IN"} }
func (s *stubAggregator) CacheSize() int      { return 2 }
func (s *stubAggregator) ClearCache()         { s.cleared = true }

func testRouter(agg Aggregator) *gin.Engine {
	cfg := &config.Config{
		Server:    config.ServerConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{PerIP: 1000},
	}
	return SetupRouter(cfg, NewHandler(agg))
}

func performRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := testRouter(&stubAggregator{})

	w := performRequest(router, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(2), body["cache_entries"])
}

func TestSearch_Success(t *testing.T) {
	agg := &stubAggregator{
		result: &domain.SearchResult{
			Query:   "iphone 16 pro",
			Country: "US",
			Offers: []domain.Offer{
				{
					Marketplace: "ebay",
					Name:        "Apple iPhone 16 Pro",
					Price:       decimal.NewFromInt(999),
					Currency:    "USD",
					Link:        "https://ebay.com/itm/1",
				},
			},
			TotalCount: 1,
		},
	}
	router := testRouter(agg)

	w := performRequest(router, http.MethodPost, "/api/v1/search",
		`{"query": "iphone 16 pro", "country": "US"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var result domain.SearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.TotalCount)
	assert.Equal(t, "ebay", result.Offers[0].Marketplace)
}

func TestSearch_MissingFields(t *testing.T) {
	router := testRouter(&stubAggregator{})

	for _, body := range []string{
		`{}`,
		`{"query": "iphone"}`,
		`{"country": "US"}`,
		`not json`,
	} {
		w := performRequest(router, http.MethodPost, "/api/v1/search", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestSearch_InvalidQuery(t *testing.T) {
	router := testRouter(&stubAggregator{
		err: fmt.Errorf("%w: at least 2 characters required", domain.ErrInvalidQuery),
	})

	w := performRequest(router, http.MethodPost, "/api/v1/search",
		`{"query": "a", "country": "US"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch_UnsupportedCountry(t *testing.T) {
	router := testRouter(&stubAggregator{
		err: fmt.Errorf("%w: XX", domain.ErrUnsupportedCountry),
	})

	w := performRequest(router, http.MethodPost, "/api/v1/search",
		`{"query": "iphone 16", "country": "XX"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "supported_countries")
}

func TestSearch_InternalError(t *testing.T) {
	router := testRouter(&stubAggregator{err: fmt.Errorf("boom")})

	w := performRequest(router, http.MethodPost, "/api/v1/search",
		`{"query": "iphone 16", "country": "US"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCountries(t *testing.T) {
	router := testRouter(&stubAggregator{})

	w := performRequest(router, http.MethodGet, "/api/v1/countries", "")

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["count"])
}

func TestClearCache(t *testing.T) {
	agg := &stubAggregator{}
	router := testRouter(agg)

	w := performRequest(router, http.MethodPost, "/api/v1/cache/clear", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, agg.cleared)
}
