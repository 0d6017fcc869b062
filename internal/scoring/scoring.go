// Package scoring implements heuristic transaction risk scoring.
//
// Every transaction is evaluated by a fixed sequence of weighted rules:
// unknown user, time-of-day anomaly, amount anomaly, device anomaly, and
// typing speed. Rule deltas are summed and clamped to [0, 100], then banded
// into a status. Two rule profiles exist: "simple" scores against a user's
// normal-hours range, "aggregated" scores against hour sets learned from
// transaction history and adds bounded jitter to mid-range scores.
package scoring

import (
	"context"
	"fmt"
	"time"
)

// Status is the verdict band for a scored transaction.
type Status string

const (
	StatusApproved Status = "APPROVED"
	StatusReview   Status = "REVIEW_NEEDED"
	StatusBlocked  Status = "BLOCKED"
)

// ModelVersion identifies the rule set version reported by the model endpoint.
const ModelVersion = "1.0.0"

// Rule names, in evaluation order.
const (
	RuleUnknownUser = "unknown_user"
	RuleTimeAnomaly = "time_anomaly"
	RuleAmountHigh  = "amount_anomaly"
	RuleNewDevice   = "device_anomaly"
	RuleTypingSpeed = "typing_speed"
)

// RuleProfile parameterizes the scorer. Both variants share the same rule
// pipeline; only the weights, thresholds, and banding differ.
type RuleProfile struct {
	Name string

	UnknownUserDelta float64

	TimeCap   float64 // max delta from the time rule
	TimeSlope float64 // delta per hour of distance from normal hours
	// UseCommonHours switches the time rule from the normal-hours range to
	// the profile's learned common-hours set.
	UseCommonHours bool

	AmountCap       float64 // max delta from the amount rule
	AmountThreshold float64 // fires when amount > avg * threshold
	AmountSlope     float64 // delta = (amount/avg) * slope, capped

	DeviceDelta float64

	FastTypingWPM float64 // fires above this
	SlowTypingWPM float64 // fires below this (absent speeds default to 0 and fire)
	TypingDelta   float64

	// Banding: score < ApproveBelow is APPROVED, score < BlockAt is
	// REVIEW_NEEDED, anything else is BLOCKED.
	ApproveBelow float64
	BlockAt      float64

	// JitterRange adds +/- this much to scores strictly between 30 and 70
	// before banding. Zero disables jitter.
	JitterRange float64

	// Confidence is the fixed confidence reported with each assessment.
	// Zero omits the field.
	Confidence float64
}

// SimpleProfile returns the rule profile for the simple variant.
func SimpleProfile() RuleProfile {
	return RuleProfile{
		Name:             "simple",
		UnknownUserDelta: 40,
		TimeCap:          30,
		TimeSlope:        3,
		AmountCap:        40,
		AmountThreshold:  2.0,
		AmountSlope:      10,
		DeviceDelta:      20,
		FastTypingWPM:    150,
		SlowTypingWPM:    20,
		TypingDelta:      10,
		ApproveBelow:     30,
		BlockAt:          70,
	}
}

// AggregatedProfile returns the rule profile for the aggregated variant.
func AggregatedProfile() RuleProfile {
	return RuleProfile{
		Name:             "aggregated",
		UnknownUserDelta: 40,
		TimeCap:          30,
		TimeSlope:        3,
		UseCommonHours:   true,
		AmountCap:        40,
		AmountThreshold:  2.5,
		AmountSlope:      15,
		DeviceDelta:      20,
		FastTypingWPM:    150,
		SlowTypingWPM:    30,
		TypingDelta:      15,
		ApproveBelow:     25,
		BlockAt:          65,
		JitterRange:      10,
		Confidence:       0.92,
	}
}

// ProfileByName resolves a variant name to its rule profile.
func ProfileByName(name string) (RuleProfile, error) {
	switch name {
	case "simple":
		return SimpleProfile(), nil
	case "aggregated":
		return AggregatedProfile(), nil
	default:
		return RuleProfile{}, fmt.Errorf("unknown scoring variant %q", name)
	}
}

// Band maps a final score to its status.
func (rp RuleProfile) Band(score float64) Status {
	switch {
	case score < rp.ApproveBelow:
		return StatusApproved
	case score < rp.BlockAt:
		return StatusReview
	default:
		return StatusBlocked
	}
}

// Color maps a status to its traffic-light color, reported alongside the
// status on every assessment.
func (s Status) Color() string {
	switch s {
	case StatusApproved:
		return "green"
	case StatusReview:
		return "orange"
	default:
		return "red"
	}
}

// RuleWeights returns the maximum contribution of each rule, used as the
// feature-importance view on the model endpoint.
func (rp RuleProfile) RuleWeights() map[string]float64 {
	return map[string]float64{
		RuleUnknownUser: rp.UnknownUserDelta,
		RuleTimeAnomaly: rp.TimeCap,
		RuleAmountHigh:  rp.AmountCap,
		RuleNewDevice:   rp.DeviceDelta,
		RuleTypingSpeed: rp.TypingDelta,
	}
}

// Factor is a single rule's contribution to an assessment.
type Factor struct {
	Rule   string  `json:"rule"`
	Detail string  `json:"detail"`
	Delta  float64 `json:"delta"`
}

// Assessment is the result of scoring a single transaction.
type Assessment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Score      float64   `json:"score"`
	Status     Status    `json:"status"`
	Color      string    `json:"color"`
	Factors    []Factor  `json:"factors"`
	Variant    string    `json:"variant"`
	Confidence float64   `json:"confidence,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store persists assessments for the audit trail.
type Store interface {
	Record(ctx context.Context, a *Assessment) error
	Get(ctx context.Context, id string) (*Assessment, error)
	ListRecent(ctx context.Context, limit int, cursor string) ([]*Assessment, string, bool, error)
	Stats(ctx context.Context) (*Stats, error)
}

// Stats summarizes recorded assessments.
type Stats struct {
	Total      int            `json:"total"`
	ByStatus   map[Status]int `json:"byStatus"`
	AvgScore   float64        `json:"avgScore"`
	LastScored time.Time      `json:"lastScored,omitempty"`
}

// ErrAssessmentNotFound is returned when no assessment exists for an ID.
var ErrAssessmentNotFound = fmt.Errorf("assessment not found")
