package profile

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/fraudguard/internal/validation"
)

// Handler provides HTTP endpoints for profile and history operations.
type Handler struct {
	store      Store
	txs        TransactionStore
	aggregator *Aggregator
}

// NewHandler creates a new profile handler.
func NewHandler(store Store, txs TransactionStore, aggregator *Aggregator) *Handler {
	return &Handler{store: store, txs: txs, aggregator: aggregator}
}

// RegisterRoutes sets up profile routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profiles", h.ListProfiles)
	r.GET("/profiles/:userId", h.GetProfile)
	r.PUT("/profiles/:userId", h.PutProfile)
	r.POST("/profiles/aggregate", h.AggregateProfiles)
	r.GET("/transactions", h.ListTransactions)
	r.GET("/transactions/:userId", h.ListUserTransactions)
}

// ListProfiles handles GET /api/v1/profiles
func (h *Handler) ListProfiles(c *gin.Context) {
	limit := parseLimit(c, 50)

	profiles, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list profiles",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// GetProfile handles GET /api/v1/profiles/:userId
func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.Param("userId")

	p, err := h.store.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No profile found for this user",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to get profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// PutProfile handles PUT /api/v1/profiles/:userId
func (h *Handler) PutProfile(c *gin.Context) {
	userID := c.Param("userId")

	var req UserProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	req.UserID = userID
	if errs := validation.Validate(
		validation.ValidHour("hoursStart", req.HoursStart),
		validation.ValidHour("hoursEnd", req.HoursEnd),
		validation.NonNegativeAmount("avgAmount", req.AvgAmount),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	if err := h.store.Put(c.Request.Context(), &req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to save profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": &req})
}

// AggregateProfiles handles POST /api/v1/profiles/aggregate
// Rebuilds all profiles from stored transaction history.
func (h *Handler) AggregateProfiles(c *gin.Context) {
	n, err := h.aggregator.Rebuild(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to aggregate profiles",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "profiles rebuilt from history",
		"profilesBuilt": n,
	})
}

// ListTransactions handles GET /api/v1/transactions
func (h *Handler) ListTransactions(c *gin.Context) {
	limit := parseLimit(c, 50)

	txs, err := h.txs.ListAll(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list transactions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": txs,
		"count":        len(txs),
	})
}

// ListUserTransactions handles GET /api/v1/transactions/:userId
func (h *Handler) ListUserTransactions(c *gin.Context) {
	userID := c.Param("userId")
	limit := parseLimit(c, 50)

	txs, err := h.txs.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list transactions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":       userID,
		"transactions": txs,
		"count":        len(txs),
	})
}

func parseLimit(c *gin.Context, def int) int {
	limit := def
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}
	return limit
}
