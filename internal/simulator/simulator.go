// Package simulator generates synthetic transaction traffic for demos and
// for seeding the aggregation pipeline. Legitimate transactions stay inside
// a user's behavioral baseline; fraud transactions follow named archetypes
// that deliberately violate it.
package simulator

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/mbd888/fraudguard/internal/idgen"
	"github.com/mbd888/fraudguard/internal/metrics"
	"github.com/mbd888/fraudguard/internal/profile"
)

// SuspiciousDevices are device strings used by fraud transactions.
var SuspiciousDevices = []string{"Unknown_Device", "Emulator", "Virtual_Machine", "Tor_Browser"}

// Archetype describes a fraud pattern.
type Archetype struct {
	Name       string
	Multiplier float64 // amount = user average * multiplier
	Category   string
	Merchants  []string
	Location   string
	// NightOnly restricts the transaction hour to 0-5.
	NightOnly bool
}

// Archetypes are the built-in fraud patterns, from classic card-fraud
// playbooks: gift card draining, high-value electronics shipped abroad,
// and off-hours shopping sprees.
var Archetypes = []Archetype{
	{
		Name:       "gift_card_spree",
		Multiplier: 3.0,
		Category:   "gift_cards",
		Merchants:  []string{"GiftCardZone", "CardDepot", "eGift Express"},
	},
	{
		Name:       "electronics_overseas",
		Multiplier: 5.0,
		Category:   "electronics",
		Merchants:  []string{"TechWorld Intl", "GadgetHub Overseas"},
		Location:   "Overseas",
	},
	{
		Name:       "midnight_shopping",
		Multiplier: 2.5,
		Category:   "online_retail",
		Merchants:  []string{"NightMart", "24-7 Deals"},
		NightOnly:  true,
	},
}

// ArchetypeByName resolves a fraud archetype.
func ArchetypeByName(name string) (Archetype, error) {
	for _, a := range Archetypes {
		if a.Name == name {
			return a, nil
		}
	}
	return Archetype{}, fmt.Errorf("unknown fraud archetype %q", name)
}

// Simulator generates synthetic transactions from a seedable RNG.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a simulator. A zero seed uses the current time.
func New(seed int64) *Simulator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// Legit generates a transaction inside the user's behavioral baseline:
// amount near the average, hour in the normal range, a known device, and
// human typing speed. 80% of the time the merchant is a favorite.
func (s *Simulator) Legit(p *profile.UserProfile) *profile.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	amount := p.AvgAmount * s.uniform(0.7, 1.3)
	hour := s.hourInRange(p.HoursStart, p.HoursEnd)

	device := ""
	if len(p.KnownDevices) > 0 {
		device = p.KnownDevices[s.rng.Intn(len(p.KnownDevices))]
	}

	merchant := "Local Shop"
	if len(p.FavoriteMerchants) > 0 && s.rng.Float64() < 0.8 {
		merchant = p.FavoriteMerchants[s.rng.Intn(len(p.FavoriteMerchants))]
	}

	location := ""
	if len(p.Locations) > 0 {
		location = p.Locations[s.rng.Intn(len(p.Locations))]
	}

	metrics.SimulatedTransactionsTotal.WithLabelValues("legit").Inc()

	return &profile.Transaction{
		ID:          idgen.Transaction(),
		UserID:      p.UserID,
		Amount:      round2(amount),
		Merchant:    merchant,
		Device:      device,
		Location:    location,
		Timestamp:   s.timestampAt(hour),
		TypingSpeed: round2(s.uniform(40, 120)),
	}
}

// Fraud generates a transaction matching the named archetype, or a random
// archetype when name is empty.
func (s *Simulator) Fraud(p *profile.UserProfile, name string) (*profile.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var arch Archetype
	if name == "" {
		arch = Archetypes[s.rng.Intn(len(Archetypes))]
	} else {
		var err error
		arch, err = ArchetypeByName(name)
		if err != nil {
			return nil, err
		}
	}

	avg := p.AvgAmount
	if avg <= 0 {
		avg = profile.DefaultAvgAmount
	}
	amount := avg * arch.Multiplier * s.uniform(0.9, 1.4)

	hour := s.hourOutsideRange(p.HoursStart, p.HoursEnd)
	if arch.NightOnly {
		hour = s.rng.Intn(6)
	}

	// Bot-fast or hesitantly slow typing, never human-normal.
	typing := s.uniform(180, 250)
	if s.rng.Float64() < 0.5 {
		typing = s.uniform(10, 30)
	}

	metrics.SimulatedTransactionsTotal.WithLabelValues(arch.Name).Inc()

	return &profile.Transaction{
		ID:          idgen.Transaction(),
		UserID:      p.UserID,
		Amount:      round2(amount),
		Merchant:    arch.Merchants[s.rng.Intn(len(arch.Merchants))],
		Category:    arch.Category,
		Device:      SuspiciousDevices[s.rng.Intn(len(SuspiciousDevices))],
		Location:    arch.Location,
		Timestamp:   s.timestampAt(hour),
		TypingSpeed: round2(typing),
		IsFraud:     true,
		FraudType:   arch.Name,
	}, nil
}

// History generates a mixed batch for a user. fraudRatio in [0, 1] controls
// the share of fraud transactions. The batch is sorted newest first and
// sequence-numbered from 1.
func (s *Simulator) History(p *profile.UserProfile, count int, fraudRatio float64) []*profile.Transaction {
	if count <= 0 {
		return nil
	}
	if fraudRatio < 0 {
		fraudRatio = 0
	}
	if fraudRatio > 1 {
		fraudRatio = 1
	}

	fraudCount := int(float64(count) * fraudRatio)
	txs := make([]*profile.Transaction, 0, count)

	for i := 0; i < count-fraudCount; i++ {
		txs = append(txs, s.Legit(p))
	}
	for i := 0; i < fraudCount; i++ {
		tx, _ := s.Fraud(p, "")
		txs = append(txs, tx)
	}

	// Spread transactions over the past `count` days so history looks organic.
	s.mu.Lock()
	now := time.Now().UTC()
	for _, tx := range txs {
		daysAgo := s.rng.Intn(count)
		ts, err := time.Parse(time.RFC3339, tx.Timestamp)
		if err == nil {
			tx.Timestamp = ts.AddDate(0, 0, -daysAgo).Format(time.RFC3339)
		} else {
			tx.Timestamp = now.AddDate(0, 0, -daysAgo).Format(time.RFC3339)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp > txs[j].Timestamp
	})
	for i, tx := range txs {
		tx.Sequence = i + 1
	}
	return txs
}

// uniform returns a random float in [lo, hi). Caller holds the lock.
func (s *Simulator) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// hourInRange picks an hour in [start, end]. Caller holds the lock.
func (s *Simulator) hourInRange(start, end int) int {
	if end < start {
		return start
	}
	return start + s.rng.Intn(end-start+1)
}

// hourOutsideRange picks an hour not in [start, end], so fraud timestamps
// always violate the user's normal hours. Falls back to a uniform draw when
// the range covers the whole day. Caller holds the lock.
func (s *Simulator) hourOutsideRange(start, end int) int {
	var outside []int
	for h := 0; h < 24; h++ {
		if h < start || h > end {
			outside = append(outside, h)
		}
	}
	if len(outside) == 0 {
		return s.rng.Intn(24)
	}
	return outside[s.rng.Intn(len(outside))]
}

// timestampAt returns today's date at the given hour, RFC 3339.
// Caller holds the lock.
func (s *Simulator) timestampAt(hour int) string {
	now := time.Now().UTC()
	ts := time.Date(now.Year(), now.Month(), now.Day(), hour, s.rng.Intn(60), s.rng.Intn(60), 0, time.UTC)
	return ts.Format(time.RFC3339)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
