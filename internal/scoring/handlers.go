package scoring

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/fraudguard/internal/profile"
	"github.com/mbd888/fraudguard/internal/validation"
)

// ProfileCounter reports how many user profiles are stored, for the model
// info endpoint.
type ProfileCounter interface {
	Count(ctx context.Context) (int, error)
}

// Handler provides HTTP endpoints for risk scoring.
type Handler struct {
	service  *Service
	profiles ProfileCounter
}

// NewHandler creates a new scoring handler.
func NewHandler(service *Service, profiles ProfileCounter) *Handler {
	return &Handler{service: service, profiles: profiles}
}

// RegisterRoutes sets up scoring routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/risk/score", h.ScoreTransaction)
	r.GET("/risk/assessments", h.ListAssessments)
	r.GET("/risk/assessments/:id", h.GetAssessment)
	r.GET("/risk/stats", h.GetStats)
	r.GET("/model", h.GetModelInfo)
}

// ScoreRequest is the request body for POST /api/v1/risk/score.
type ScoreRequest struct {
	UserID      string  `json:"userId" binding:"required"`
	Amount      float64 `json:"amount"` // absent amounts default to 0
	Merchant    string  `json:"merchant"`
	Category    string  `json:"category"`
	Device      string  `json:"device"`
	Location    string  `json:"location"`
	Timestamp   string  `json:"timestamp"`
	TypingSpeed float64 `json:"typingSpeed"`
}

// ScoreTransaction handles POST /api/v1/risk/score
func (h *Handler) ScoreTransaction(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "userId is required",
		})
		return
	}

	if errs := validation.Validate(
		validation.ValidUserID("userId", req.UserID),
		validation.NonNegativeAmount("amount", req.Amount),
		validation.ValidTypingSpeed("typingSpeed", req.TypingSpeed),
		validation.MaxLength("merchant", req.Merchant, 200),
		validation.MaxLength("device", req.Device, 100),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	tx := &profile.Transaction{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Merchant:    validation.SanitizeString(req.Merchant, 200),
		Category:    validation.SanitizeString(req.Category, 100),
		Device:      validation.SanitizeString(req.Device, 100),
		Location:    validation.SanitizeString(req.Location, 200),
		Timestamp:   req.Timestamp,
		TypingSpeed: req.TypingSpeed,
	}

	assessment, err := h.service.Evaluate(c.Request.Context(), tx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to score transaction",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessment": assessment})
}

// ListAssessments handles GET /api/v1/risk/assessments
func (h *Handler) ListAssessments(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	items, next, hasMore, err := h.service.store.ListRecent(c.Request.Context(), limit, c.Query("cursor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_cursor",
			"message": "Invalid pagination cursor",
		})
		return
	}

	resp := gin.H{
		"assessments": items,
		"count":       len(items),
		"has_more":    hasMore,
	}
	if next != "" {
		resp["next_cursor"] = next
	}
	c.JSON(http.StatusOK, resp)
}

// GetAssessment handles GET /api/v1/risk/assessments/:id
func (h *Handler) GetAssessment(c *gin.Context) {
	a, err := h.service.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrAssessmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No assessment with this ID",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to get assessment",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessment": a})
}

// GetStats handles GET /api/v1/risk/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to compute stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetModelInfo handles GET /api/v1/model
// Reports the active variant, rule weights, and profile coverage.
func (h *Handler) GetModelInfo(c *gin.Context) {
	rules := h.service.scorer.Rules()

	profileCount := 0
	if h.profiles != nil {
		if n, err := h.profiles.Count(c.Request.Context()); err == nil {
			profileCount = n
		}
	}

	resp := gin.H{
		"variant":      rules.Name,
		"version":      ModelVersion,
		"ruleWeights":  rules.RuleWeights(),
		"profileCount": profileCount,
		"thresholds": gin.H{
			"approveBelow": rules.ApproveBelow,
			"blockAt":      rules.BlockAt,
		},
	}
	if rules.Confidence > 0 {
		resp["confidence"] = rules.Confidence
	}
	c.JSON(http.StatusOK, resp)
}
