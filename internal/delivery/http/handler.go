package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricescout/backend/internal/domain"
)

// Aggregator is the slice of the search service the HTTP layer needs
type Aggregator interface {
	Search(ctx context.Context, rawQuery, country string) (*domain.SearchResult, error)
	Countries() []string
	CacheSize() int
	ClearCache()
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	aggregator Aggregator
}

// NewHandler creates a new HTTP handler
func NewHandler(aggregator Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"service":       "pricescout-backend",
		"version":       "1.0.0",
		"countries":     h.aggregator.Countries(),
		"cache_entries": h.aggregator.CacheSize(),
	})
}

// searchRequest is the body of POST /api/v1/search
type searchRequest struct {
	Query   string `json:"query" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// Search runs a price aggregation for one query in one country
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query and country are required",
		})
		return
	}

	result, err := h.aggregator.Search(c.Request.Context(), req.Query, req.Country)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidQuery):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrUnsupportedCountry):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":               err.Error(),
				"supported_countries": h.aggregator.Countries(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Countries lists the supported country codes
func (h *Handler) Countries(c *gin.Context) {
	countries := h.aggregator.Countries()
	c.JSON(http.StatusOK, gin.H{
		"countries": countries,
		"count":     len(countries),
	})
}

// ClearCache drops all cached search results
func (h *Handler) ClearCache(c *gin.Context) {
	h.aggregator.ClearCache()
	c.JSON(http.StatusOK, gin.H{"status": "cache cleared"})
}
