// Package server exposes the chat pipeline over HTTP.
package server

// #region imports
import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/guestflow/ragcore/internal/auditlog"
	"github.com/guestflow/ragcore/internal/dispatch"
	"github.com/guestflow/ragcore/internal/pipeline"
)

// #endregion

// #region ports

// Answerer is the pipeline behavior the handlers depend on.
type Answerer interface {
	Answer(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// StatsSource serves aggregated gate outcomes.
type StatsSource interface {
	Stats(ctx context.Context, tenantID string, since time.Time) (auditlog.Stats, error)
}

// #endregion ports

// #region router

// RouterConfig wires the handlers.
type RouterConfig struct {
	Log      zerolog.Logger
	Pipeline Answerer
	Stats    StatsSource
}

// NewRouter builds the gin engine with all routes attached.
func NewRouter(cfg RouterConfig) *gin.Engine {
	h := &handler{log: cfg.Log, pipeline: cfg.Pipeline, stats: cfg.Stats}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthcheck", h.health)
	router.POST("/chat", h.chat)
	router.GET("/tenants/:id/gate-stats", h.gateStats)

	return router
}

// #endregion router

// #region wire

type chatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type chatRequest struct {
	TenantID string        `json:"tenant_id" binding:"required"`
	Message  string        `json:"message" binding:"required"`
	History  []chatMessage `json:"history"`
	Voice    bool          `json:"voice"`
}

type chatResponse struct {
	Answer     string  `json:"answer"`
	Passed     bool    `json:"context_ok"`
	Reason     string  `json:"gate_reason"`
	Provider   string  `json:"provider"`
	Model      string  `json:"model"`
	TopKUsed   int     `json:"top_k_used"`
	Widened    bool    `json:"widened"`
	Escalated  bool    `json:"escalated"`
	UsedTokens int     `json:"used_tokens"`
	Overlap    float64 `json:"overlap,omitempty"`
}

// #endregion wire

// #region handlers

type handler struct {
	log      zerolog.Logger
	pipeline Answerer
	stats    StatsSource
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	history := make([]dispatch.Message, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, dispatch.Message{Role: m.Role, Content: m.Content})
	}

	res, err := h.pipeline.Answer(c.Request.Context(), pipeline.Request{
		TenantID: req.TenantID,
		Message:  req.Message,
		History:  history,
		Voice:    req.Voice,
	})
	if err != nil {
		h.log.Error().Err(err).Str("tenant", req.TenantID).Msg("chat turn failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		Answer:     res.Answer,
		Passed:     res.Outcome.Passed,
		Reason:     res.Outcome.Reason.String(),
		Provider:   res.Provider,
		Model:      res.Model,
		TopKUsed:   res.Outcome.TopKUsed,
		Widened:    res.Widened,
		Escalated:  res.Escalated,
		UsedTokens: res.Usage.TotalTokens,
		Overlap:    res.Outcome.Overlap,
	})
}

func (h *handler) gateStats(c *gin.Context) {
	tenantID := c.Param("id")

	hours := 24
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be a positive integer"})
			return
		}
		hours = parsed
	}

	stats, err := h.stats.Stats(c.Request.Context(), tenantID, time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		h.log.Error().Err(err).Str("tenant", tenantID).Msg("gate stats query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenant_id": tenantID,
		"hours":     hours,
		"total":     stats.Total,
		"passed":    stats.Passed,
		"pass_rate": stats.PassRate(),
		"reasons":   stats.ReasonCounts,
	})
}

// #endregion handlers
