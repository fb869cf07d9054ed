package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aroyle/depthroute/src/models"
	"github.com/aroyle/depthroute/src/orchestrator"
	"github.com/aroyle/depthroute/src/viz"
)

// APIHandler exposes the orchestrator and memory store over HTTP.
type APIHandler struct {
	orch           *orchestrator.Orchestrator
	memory         models.MemoryBrowser
	requestTimeout time.Duration
}

func NewAPIHandler(orch *orchestrator.Orchestrator, memory models.MemoryBrowser, requestTimeout time.Duration) *APIHandler {
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}
	return &APIHandler{
		orch:           orch,
		memory:         memory,
		requestTimeout: requestTimeout,
	}
}

func (h *APIHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.requestTimeout)
}

// HandleInitContext loads the reusable instruction tiers.
func (h *APIHandler) HandleInitContext(c *gin.Context) {
	var req models.ContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.orch.InitializeContext(ctx, req.Blocks); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, orchestrator.ErrNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "initialized",
		"blocks": len(req.Blocks),
	})
}

// HandleClearContext drops the cached context; session accounting survives.
func (h *APIHandler) HandleClearContext(c *gin.Context) {
	h.orch.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// HandleChat routes one user message and returns the finished exchange.
func (h *APIHandler) HandleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.SessionID == "" {
		req.SessionID = "sess_" + uuid.NewString()
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	record, err := h.orch.RouteAndRespond(ctx, req.Message, req.SessionID, req.UserID)
	if err != nil {
		var genErr *orchestrator.GenerationError
		switch {
		case errors.Is(err, orchestrator.ErrNotInitialized):
			c.JSON(http.StatusConflict, gin.H{
				"error": "context not initialized, call /context first",
			})
		case errors.As(err, &genErr):
			c.JSON(http.StatusBadGateway, gin.H{
				"error": genErr.Error(),
				"model": genErr.Model,
				"hint":  "check the upstream credential and quota",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, record)
}

// HandleScore rates a message without generating a response.
func (h *APIHandler) HandleScore(c *gin.Context) {
	var req models.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	c.JSON(http.StatusOK, h.orch.ScoreComplexity(ctx, req.Message))
}

// HandleStats returns a snapshot of the running usage totals.
func (h *APIHandler) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.orch.Statistics())
}

// HandleMemory lists recent exchange records.
func (h *APIHandler) HandleMemory(c *gin.Context) {
	if h.memory == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "memory store not configured"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	records, err := h.memory.Recent(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}

// HandleMemorySearch finds the stored exchange most similar to the query.
func (h *APIHandler) HandleMemorySearch(c *gin.Context) {
	if h.memory == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "memory store not configured"})
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q parameter"})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	match, err := h.memory.SearchSimilar(ctx, query, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if match == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no similar record found"})
		return
	}

	c.JSON(http.StatusOK, match)
}

// HandleViz serves deterministic sample data for the chart and 3D views.
func (h *APIHandler) HandleViz(c *gin.Context) {
	prompt := c.Query("prompt")
	if prompt == "" {
		prompt = "sample"
	}

	switch c.Param("kind") {
	case "chart":
		c.JSON(http.StatusOK, viz.Chart(prompt))
	case "scatter":
		c.JSON(http.StatusOK, viz.Scatter(prompt))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown visualization kind"})
	}
}

func (h *APIHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}
