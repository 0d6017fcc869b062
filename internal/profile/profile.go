// Package profile manages user spending profiles and transaction history.
//
// A profile captures a user's baseline behavior: when they shop, how much
// they spend, and which devices they use. The scoring engine compares
// incoming transactions against these baselines. Profiles come from two
// sources: manual upserts and aggregation over stored transaction history.
package profile

import (
	"context"
	"errors"
	"time"
)

// Default baseline applied when a user has no stored profile.
// Unknown users are scored against this so the remaining rules still run.
const (
	DefaultHoursStart = 9
	DefaultHoursEnd   = 17
	DefaultAvgAmount  = 100
)

var (
	// ErrProfileNotFound is returned when no profile exists for a user.
	ErrProfileNotFound = errors.New("profile not found")
)

// UserProfile is a user's behavioral baseline.
type UserProfile struct {
	UserID            string    `json:"userId"`
	HoursStart        int       `json:"hoursStart"` // inclusive start of normal shopping hours
	HoursEnd          int       `json:"hoursEnd"`   // inclusive end of normal shopping hours
	CommonHours       []int     `json:"commonHours,omitempty"`
	AvgAmount         float64   `json:"avgAmount"`
	KnownDevices      []string  `json:"knownDevices,omitempty"`
	FavoriteMerchants []string  `json:"favoriteMerchants,omitempty"`
	Locations         []string  `json:"locations,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// HasDevices reports whether the profile carries any device knowledge.
func (p *UserProfile) HasDevices() bool {
	return len(p.KnownDevices) > 0
}

// CommonHourSet returns the profile's common hours as a set. When the
// profile has no aggregated common hours, the normal-hours range is used.
func (p *UserProfile) CommonHourSet() map[int]bool {
	set := make(map[int]bool)
	if len(p.CommonHours) > 0 {
		for _, h := range p.CommonHours {
			set[h] = true
		}
		return set
	}
	for h := p.HoursStart; h <= p.HoursEnd; h++ {
		set[h] = true
	}
	return set
}

// Clone returns a deep copy of the profile.
func (p *UserProfile) Clone() *UserProfile {
	cp := *p
	cp.CommonHours = append([]int(nil), p.CommonHours...)
	cp.KnownDevices = append([]string(nil), p.KnownDevices...)
	cp.FavoriteMerchants = append([]string(nil), p.FavoriteMerchants...)
	cp.Locations = append([]string(nil), p.Locations...)
	return &cp
}

// DefaultProfile returns the baseline used for users with no stored profile.
func DefaultProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:     userID,
		HoursStart: DefaultHoursStart,
		HoursEnd:   DefaultHoursEnd,
		AvgAmount:  DefaultAvgAmount,
	}
}

// Transaction is a single purchase event, incoming or historical.
//
// Timestamp stays a string on purpose: callers send arbitrary values and a
// malformed timestamp must not fail the whole transaction, only the
// time-of-day analysis.
type Transaction struct {
	ID          string    `json:"id,omitempty"`
	UserID      string    `json:"userId"`
	Amount      float64   `json:"amount"`
	Merchant    string    `json:"merchant,omitempty"`
	Category    string    `json:"category,omitempty"`
	Device      string    `json:"device,omitempty"`
	Location    string    `json:"location,omitempty"`
	Timestamp   string    `json:"timestamp,omitempty"` // RFC 3339
	TypingSpeed float64   `json:"typingSpeed,omitempty"`
	IsFraud     bool      `json:"isFraud,omitempty"`
	FraudType   string    `json:"fraudType,omitempty"`
	Sequence    int       `json:"sequence,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Hour returns the transaction's hour of day.
// A missing timestamp means "now". A present but unparseable timestamp
// returns ok=false and the caller skips time-of-day analysis.
func (t *Transaction) Hour() (hour int, ok bool) {
	if t.Timestamp == "" {
		return time.Now().Hour(), true
	}
	ts, err := time.Parse(time.RFC3339, t.Timestamp)
	if err != nil {
		return 0, false
	}
	return ts.Hour(), true
}

// Store persists user profiles.
type Store interface {
	Put(ctx context.Context, p *UserProfile) error
	Get(ctx context.Context, userID string) (*UserProfile, error)
	List(ctx context.Context, limit int) ([]*UserProfile, error)
	Count(ctx context.Context) (int, error)
}

// TransactionStore persists transaction history.
type TransactionStore interface {
	Record(ctx context.Context, tx *Transaction) error
	RecordBatch(ctx context.Context, txs []*Transaction) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*Transaction, error)
	ListAll(ctx context.Context, limit int) ([]*Transaction, error)
}

// Resolver looks up profiles and falls back to the default baseline.
type Resolver struct {
	store Store
}

// NewResolver creates a profile resolver backed by the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the user's profile and whether the user is known.
// Unknown users get the default baseline so downstream rules still apply.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*UserProfile, bool) {
	p, err := r.store.Get(ctx, userID)
	if err != nil {
		return DefaultProfile(userID), false
	}
	return p, true
}

// SeedProfiles returns the built-in demo users. Each has distinct shopping
// hours, spend levels, and devices so scored scenarios are easy to reason
// about in demos and tests.
func SeedProfiles() []*UserProfile {
	return []*UserProfile{
		{
			UserID:            "sarah123",
			HoursStart:        9,
			HoursEnd:          21,
			AvgAmount:         85,
			KnownDevices:      []string{"iPhone"},
			FavoriteMerchants: []string{"Amazon", "Starbucks", "Whole Foods", "Target"},
			Locations:         []string{"Seattle, WA"},
		},
		{
			UserID:            "john_doe",
			HoursStart:        18,
			HoursEnd:          23,
			AvgAmount:         120,
			KnownDevices:      []string{"Windows_PC"},
			FavoriteMerchants: []string{"Steam", "Newegg", "Best Buy", "DoorDash"},
			Locations:         []string{"Austin, TX"},
		},
		{
			UserID:            "emma_w",
			HoursStart:        10,
			HoursEnd:          16,
			AvgAmount:         65,
			KnownDevices:      []string{"MacBook"},
			FavoriteMerchants: []string{"Etsy", "Sephora", "Trader Joes", "Zara"},
			Locations:         []string{"Portland, OR"},
		},
	}
}
