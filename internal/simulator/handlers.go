package simulator

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/fraudguard/internal/profile"
	"github.com/mbd888/fraudguard/internal/scoring"
	"github.com/mbd888/fraudguard/internal/validation"
)

// ProfileResolver looks up the baseline used to generate transactions.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID string) (*profile.UserProfile, bool)
}

// Handler provides HTTP endpoints for synthetic traffic generation.
type Handler struct {
	sim      *Simulator
	profiles ProfileResolver
	txs      profile.TransactionStore
	scoring  *scoring.Service
}

// NewHandler creates a new simulator handler.
func NewHandler(sim *Simulator, profiles ProfileResolver, txs profile.TransactionStore, scoringSvc *scoring.Service) *Handler {
	return &Handler{sim: sim, profiles: profiles, txs: txs, scoring: scoringSvc}
}

// RegisterRoutes sets up simulator routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/simulator/transaction", h.GenerateTransaction)
	r.POST("/simulator/history", h.GenerateHistory)
}

// GenerateTransactionRequest is the body for POST /api/v1/simulator/transaction.
type GenerateTransactionRequest struct {
	UserID string `json:"userId" binding:"required"`
	// Type is "legit", a fraud archetype name, or "fraud" for a random archetype.
	Type string `json:"type"`
	// Score requests an inline risk assessment of the generated transaction.
	Score bool `json:"score"`
	// Seed makes generation reproducible. Zero keeps the shared generator.
	Seed int64 `json:"seed"`
}

// GenerateTransaction handles POST /api/v1/simulator/transaction
func (h *Handler) GenerateTransaction(c *gin.Context) {
	var req GenerateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "userId is required",
		})
		return
	}
	if !validation.IsValidUserID(req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_user_id",
			"message": "userId must be 1-64 characters: letters, digits, underscore, dot, or hyphen",
		})
		return
	}

	sim := h.sim
	if req.Seed != 0 {
		sim = New(req.Seed)
	}

	p, _ := h.profiles.Resolve(c.Request.Context(), req.UserID)

	var tx *profile.Transaction
	switch req.Type {
	case "", "legit":
		tx = sim.Legit(p)
	case "fraud":
		tx, _ = sim.Fraud(p, "")
	default:
		var err error
		tx, err = sim.Fraud(p, req.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "unknown_archetype",
				"message": err.Error(),
			})
			return
		}
	}

	if err := h.txs.Record(c.Request.Context(), tx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to store transaction",
		})
		return
	}

	resp := gin.H{"transaction": tx}
	if req.Score && h.scoring != nil {
		if assessment, err := h.scoring.Evaluate(c.Request.Context(), tx); err == nil {
			resp["assessment"] = assessment
		}
	}
	c.JSON(http.StatusCreated, resp)
}

// GenerateHistoryRequest is the body for POST /api/v1/simulator/history.
type GenerateHistoryRequest struct {
	UserID string `json:"userId" binding:"required"`
	Count  int    `json:"count"`
	// FraudRatio distinguishes an explicit 0 (all-legitimate batch) from an
	// absent field, which falls back to the default ratio.
	FraudRatio *float64 `json:"fraudRatio"`
	Seed       int64    `json:"seed"`
}

// GenerateHistory handles POST /api/v1/simulator/history
// Generates and stores a mixed batch of transactions for a user.
func (h *Handler) GenerateHistory(c *gin.Context) {
	var req GenerateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "userId is required",
		})
		return
	}
	if !validation.IsValidUserID(req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_user_id",
			"message": "userId must be 1-64 characters: letters, digits, underscore, dot, or hyphen",
		})
		return
	}

	count := req.Count
	if count <= 0 {
		count = 20
	}
	if count > 1000 {
		count = 1000
	}
	ratio := 0.2
	if req.FraudRatio != nil {
		ratio = *req.FraudRatio
	}

	sim := h.sim
	if req.Seed != 0 {
		sim = New(req.Seed)
	}

	p, known := h.profiles.Resolve(c.Request.Context(), req.UserID)
	txs := sim.History(p, count, ratio)

	if err := h.txs.RecordBatch(c.Request.Context(), txs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to store history",
		})
		return
	}

	fraudCount := 0
	for _, tx := range txs {
		if tx.IsFraud {
			fraudCount++
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"userId":       req.UserID,
		"generated":    len(txs),
		"fraudCount":   fraudCount,
		"profileKnown": known,
		"transactions": txs,
	})
}
