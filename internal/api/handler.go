// Package api serves the search over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"omnisearch/internal/catalog"
	"omnisearch/internal/orchestrator"
)

// Error messages returned to clients. Internal details are logged, never
// sent.
const (
	MsgMissingQuery = "Please provide a search query as a 'q' parameter."
	MsgSearchFailed = "An error occurred while processing your request."
)

// Searcher runs one aggregated search.
type Searcher interface {
	Search(ctx context.Context, query string) (catalog.Results, error)
}

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler holds HTTP request handlers.
type Handler struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewHandler creates a new handler instance.
func NewHandler(searcher Searcher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{searcher: searcher, logger: logger}
}

// Search handles GET /search?q=.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: MsgMissingQuery})
		return
	}

	results, err := h.searcher.Search(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, orchestrator.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: MsgMissingQuery})
			return
		}
		h.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: MsgSearchFailed})
		return
	}

	c.JSON(http.StatusOK, results.Entries())
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
