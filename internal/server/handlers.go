package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/futurizm/futurizm/internal/common"
	"github.com/futurizm/futurizm/internal/model"
)

type generateRequest struct {
	Model    string   `json:"modelKey" binding:"required"`
	Category string   `json:"category"`
	Topics   []string `json:"topics"`
}

type likeRequest struct {
	PredictionID string `json:"predictionId" binding:"required"`
	Action       string `json:"action" binding:"required"`
}

// handleGenerateOne runs a single-model generation on demand.
func (s *Server) handleGenerateOne(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	key := model.ModelKey(req.Model)
	items, category, err := s.generator.GenerateForModel(c.Request.Context(), key, req.Category, req.Topics)
	if err != nil {
		if errors.Is(err, common.ErrInvalidModelKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid modelKey"})
			return
		}
		slog.Error("generation request failed", "model", req.Model, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate prediction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"model":       key,
		"category":    category,
		"predictions": items,
	})
}

// handleRunCycle is the scheduler trigger: a full generate/verify/retry
// cycle. Per-model failures are reported inside the 200 body, never as an
// HTTP error, so the scheduler does not re-fire a half-complete cycle.
func (s *Server) handleRunCycle(c *gin.Context) {
	if s.cfg.EnforceCronSecret && c.Query("secret") != s.cfg.CronSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := s.orchestrator.RunCycle(c.Request.Context())
	if err != nil {
		slog.Error("cycle run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cycle failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// handleStatus reports which models have stored predictions for a date.
func (s *Server) handleStatus(c *gin.Context) {
	status, err := s.orchestrator.Status(c.Request.Context(), c.Query("date"))
	if err != nil {
		slog.Error("status query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check predictions"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// handleVerify runs the standalone verification/retry pass.
func (s *Server) handleVerify(c *gin.Context) {
	result, err := s.orchestrator.VerifyAndRetry(c.Request.Context(), c.Query("date"))
	if err != nil {
		slog.Error("verification failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleGetPredictions returns stored predictions for a date. No records
// is a normal empty response, not an error.
func (s *Server) handleGetPredictions(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing date parameter"})
		return
	}

	records, err := s.store.GetPredictionsByDate(c.Request.Context(), date)
	if err != nil {
		slog.Error("prediction query failed", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch predictions"})
		return
	}
	if records == nil {
		records = []model.Prediction{}
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "predictions": records})
}

// handleLike adjusts a prediction's like counter.
func (s *Server) handleLike(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var err error
	switch req.Action {
	case "like":
		err = s.store.IncrementLikes(c.Request.Context(), req.PredictionID)
	case "unlike":
		err = s.store.DecrementLikes(c.Request.Context(), req.PredictionID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	}

	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Prediction not found"})
			return
		}
		slog.Error("like update failed", "predictionId", req.PredictionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update likes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// handleDates lists every date that has stored predictions, newest first.
func (s *Server) handleDates(c *gin.Context) {
	dates, err := s.store.ListDates(c.Request.Context())
	if err != nil {
		slog.Error("date listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list dates"})
		return
	}
	if dates == nil {
		dates = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

// handleMetrics reports per-model aggregate statistics.
func (s *Server) handleMetrics(c *gin.Context) {
	metrics, err := s.store.ModelMetrics(c.Request.Context())
	if err != nil {
		slog.Error("metrics query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"models": metrics})
}
