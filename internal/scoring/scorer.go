package scoring

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/mbd888/fraudguard/internal/idgen"
	"github.com/mbd888/fraudguard/internal/profile"
)

// Scorer evaluates transactions against user profiles using a fixed rule
// pipeline. Deterministic given the same inputs and jitter seed.
type Scorer struct {
	rules RuleProfile

	mu     sync.Mutex
	jitter *rand.Rand // nil when the profile has no jitter
	now    func() time.Time
}

// Option configures the scorer.
type Option func(*Scorer)

// WithJitterSeed seeds the jitter source for reproducible runs.
func WithJitterSeed(seed int64) Option {
	return func(s *Scorer) {
		s.jitter = rand.New(rand.NewSource(seed))
	}
}

// WithClock overrides the time source (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		s.now = now
	}
}

// NewScorer creates a scorer for the given rule profile.
func NewScorer(rules RuleProfile, opts ...Option) *Scorer {
	s := &Scorer{
		rules: rules,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if rules.JitterRange > 0 && s.jitter == nil {
		s.jitter = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Rules returns the scorer's rule profile.
func (s *Scorer) Rules() RuleProfile {
	return s.rules
}

// Score evaluates a transaction against a profile. known reports whether
// the profile came from the store or is the default baseline.
func (s *Scorer) Score(tx *profile.Transaction, up *profile.UserProfile, known bool) *Assessment {
	var score float64
	var factors []Factor

	apply := func(f Factor, fired bool) {
		if fired {
			score += f.Delta
			factors = append(factors, f)
		}
	}

	apply(s.unknownUserRule(known))
	apply(s.timeRule(tx, up))
	apply(s.amountRule(tx, up))
	apply(s.deviceRule(tx, up))
	apply(s.typingRule(tx))

	score = clamp(score)
	score = round2(s.applyJitter(score))
	status := s.rules.Band(score)

	return &Assessment{
		ID:         idgen.Assessment(),
		UserID:     tx.UserID,
		Score:      score,
		Status:     status,
		Color:      status.Color(),
		Factors:    factors,
		Variant:    s.rules.Name,
		Confidence: s.rules.Confidence,
		CreatedAt:  s.now().UTC(),
	}
}

// unknownUserRule fires when the user has no stored profile. The remaining
// rules still run against the default baseline.
func (s *Scorer) unknownUserRule(known bool) (Factor, bool) {
	if known {
		return Factor{}, false
	}
	return Factor{
		Rule:   RuleUnknownUser,
		Detail: "Unknown user profile, scored against default baseline",
		Delta:  s.rules.UnknownUserDelta,
	}, true
}

// timeRule fires when the transaction hour falls outside the user's normal
// hours. Distance is measured to the violated boundary (simple) or to the
// nearest learned common hour (aggregated). A present but unparseable
// timestamp skips the rule entirely.
func (s *Scorer) timeRule(tx *profile.Transaction, up *profile.UserProfile) (Factor, bool) {
	hour, ok := tx.Hour()
	if !ok {
		return Factor{}, false
	}

	var dist int
	if s.rules.UseCommonHours {
		set := up.CommonHourSet()
		if set[hour] {
			return Factor{}, false
		}
		dist = nearestHourDistance(hour, set)
	} else {
		switch {
		case hour < up.HoursStart:
			dist = up.HoursStart - hour
		case hour > up.HoursEnd:
			dist = hour - up.HoursEnd
		default:
			return Factor{}, false
		}
	}

	delta := math.Min(s.rules.TimeCap, float64(dist)*s.rules.TimeSlope)
	return Factor{
		Rule:   RuleTimeAnomaly,
		Detail: fmt.Sprintf("transaction at hour %d, %d hours outside normal activity", hour, dist),
		Delta:  delta,
	}, true
}

// amountRule fires when the amount exceeds the user's average by the
// profile threshold. Skipped when the average is unusable.
func (s *Scorer) amountRule(tx *profile.Transaction, up *profile.UserProfile) (Factor, bool) {
	if up.AvgAmount <= 0 {
		return Factor{}, false
	}
	ratio := tx.Amount / up.AvgAmount
	if ratio <= s.rules.AmountThreshold {
		return Factor{}, false
	}

	delta := math.Min(s.rules.AmountCap, ratio*s.rules.AmountSlope)
	return Factor{
		Rule:   RuleAmountHigh,
		Detail: fmt.Sprintf("amount %.2f is %.1fx the user average %.2f", tx.Amount, ratio, up.AvgAmount),
		Delta:  delta,
	}, true
}

// deviceRule fires when the transaction device is not among the user's
// known devices. Skipped when the profile has no device knowledge, so a
// user known only by ID scores purely on behavior.
func (s *Scorer) deviceRule(tx *profile.Transaction, up *profile.UserProfile) (Factor, bool) {
	if !up.HasDevices() {
		return Factor{}, false
	}
	for _, d := range up.KnownDevices {
		if d == tx.Device {
			return Factor{}, false
		}
	}
	return Factor{
		Rule:   RuleNewDevice,
		Detail: fmt.Sprintf("device %q not previously seen for user", tx.Device),
		Delta:  s.rules.DeviceDelta,
	}, true
}

// typingRule fires on implausibly fast (bot) or slow (unfamiliar device,
// coercion) typing. An absent speed defaults to zero and reads as slow.
func (s *Scorer) typingRule(tx *profile.Transaction) (Factor, bool) {
	wpm := tx.TypingSpeed
	switch {
	case wpm > s.rules.FastTypingWPM:
		return Factor{
			Rule:   RuleTypingSpeed,
			Detail: fmt.Sprintf("typing speed %.0f wpm above %.0f, automation suspected", wpm, s.rules.FastTypingWPM),
			Delta:  s.rules.TypingDelta,
		}, true
	case wpm < s.rules.SlowTypingWPM:
		return Factor{
			Rule:   RuleTypingSpeed,
			Detail: fmt.Sprintf("typing speed %.0f wpm below %.0f, unfamiliar user suspected", wpm, s.rules.SlowTypingWPM),
			Delta:  s.rules.TypingDelta,
		}, true
	}
	return Factor{}, false
}

// applyJitter perturbs mid-range scores by up to +/- JitterRange.
// Only scores strictly between 30 and 70 are touched; confident verdicts
// at either end stay stable.
func (s *Scorer) applyJitter(score float64) float64 {
	if s.rules.JitterRange <= 0 || s.jitter == nil {
		return score
	}
	if score <= 30 || score >= 70 {
		return score
	}

	s.mu.Lock()
	offset := (s.jitter.Float64()*2 - 1) * s.rules.JitterRange
	s.mu.Unlock()

	return clamp(score + offset)
}

// nearestHourDistance returns the smallest absolute distance from hour to
// any hour in the set. The set is never empty for a usable profile.
func nearestHourDistance(hour int, set map[int]bool) int {
	best := 24
	for h := range set {
		d := hour - h
		if d < 0 {
			d = -d
		}
		if d < best {
			best = d
		}
	}
	return best
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
