// Package fraudguard is the public Go client for the FraudGuard API.
package fraudguard

import (
	"fmt"
	"time"
)

// Transaction is a purchase event submitted for scoring.
type Transaction struct {
	UserID      string  `json:"userId"`
	Amount      float64 `json:"amount"`
	Merchant    string  `json:"merchant,omitempty"`
	Category    string  `json:"category,omitempty"`
	Device      string  `json:"device,omitempty"`
	Location    string  `json:"location,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"` // RFC 3339
	TypingSpeed float64 `json:"typingSpeed,omitempty"`
}

// Factor is a single rule's contribution to an assessment.
type Factor struct {
	Rule   string  `json:"rule"`
	Detail string  `json:"detail"`
	Delta  float64 `json:"delta"`
}

// Assessment is the scoring verdict for a transaction.
type Assessment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Score      float64   `json:"score"`
	Status     string    `json:"status"` // APPROVED, REVIEW_NEEDED, or BLOCKED
	Color      string    `json:"color"`  // green, orange, or red
	Factors    []Factor  `json:"factors"`
	Variant    string    `json:"variant"`
	Confidence float64   `json:"confidence,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile is a user's behavioral baseline.
type Profile struct {
	UserID            string    `json:"userId"`
	HoursStart        int       `json:"hoursStart"`
	HoursEnd          int       `json:"hoursEnd"`
	CommonHours       []int     `json:"commonHours,omitempty"`
	AvgAmount         float64   `json:"avgAmount"`
	KnownDevices      []string  `json:"knownDevices,omitempty"`
	FavoriteMerchants []string  `json:"favoriteMerchants,omitempty"`
	Locations         []string  `json:"locations,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Stats summarizes recorded assessments.
type Stats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	AvgScore   float64        `json:"avgScore"`
	LastScored time.Time      `json:"lastScored,omitempty"`
}

// HistoryResult reports what a history generation run produced.
type HistoryResult struct {
	UserID       string `json:"userId"`
	Generated    int    `json:"generated"`
	FraudCount   int    `json:"fraudCount"`
	ProfileKnown bool   `json:"profileKnown"`
}

// APIError is an error response from the FraudGuard API.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fraudguard: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}
