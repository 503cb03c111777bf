package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wishlink/backend/internal/domain"
	"github.com/wishlink/backend/internal/infrastructure/parselog"
)

// CatalogBuilder is the slice of the catalog usecase the handlers need
type CatalogBuilder interface {
	BuildCatalog(ctx context.Context, urls []string) (*domain.Catalog, error)
}

// Matcher is the slice of the matching usecase the handlers need
type Matcher interface {
	FindMatch(ctx context.Context, referenceTitle, referencePrice string) (*domain.MatchResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog CatalogBuilder
	matcher Matcher
	plog    *parselog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(catalog CatalogBuilder, matcher Matcher, plog *parselog.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		matcher: matcher,
		plog:    plog,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "wishlink-backend",
		"version": "1.0.0",
	})
}

// parseRequest is the body of POST /api/v1/parse
type parseRequest struct {
	URLs []string `json:"urls"`
}

// ParseWishlist runs the discovery pipeline over the submitted URLs and
// returns the extracted catalog
func (h *Handler) ParseWishlist(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	urls := make([]string, 0, len(req.URLs))
	for _, u := range req.URLs {
		if strings.TrimSpace(u) != "" {
			urls = append(urls, strings.TrimSpace(u))
		}
	}
	if len(urls) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no URLs provided"})
		return
	}

	catalog, err := h.catalog.BuildCatalog(c.Request.Context(), urls)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoProductsFound):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no products could be extracted"})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request parameters"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "parse failed"})
		}
		return
	}

	c.JSON(http.StatusOK, catalog)
}

// searchRequest is the body of POST /api/v1/search-noon
type searchRequest struct {
	Query          string `json:"query"`
	ReferencePrice string `json:"reference_price"`
}

// SearchNoon looks for the queried product on the secondary retailer.
// "No match" is a successful response with success=false, never an error:
// callers render it as "not found on noon", not as a failure.
func (h *Handler) SearchNoon(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	result, err := h.matcher.FindMatch(c.Request.Context(), req.Query, req.ReferencePrice)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLowConfidence),
			errors.Is(err, domain.ErrNoCandidates),
			errors.Is(err, domain.ErrFetchFailed):
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"message": "product not found on noon.com or match score too low",
			})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"product":    result,
		"matchScore": result.Score,
	})
}

// DebugLogs returns recent parse pipeline events
func (h *Handler) DebugLogs(c *gin.Context) {
	n := 0
	if raw := c.Query("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			n = parsed
		}
	}

	var entries []parselog.Entry
	if n > 0 {
		entries = h.plog.LastN(n)
	} else {
		entries = h.plog.Entries()
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(entries),
		"logs":  entries,
	})
}

// ClearDebugLogs drops the buffered parse log
func (h *Handler) ClearDebugLogs(c *gin.Context) {
	h.plog.Clear()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
