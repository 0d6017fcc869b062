package simulator

import (
	"testing"
	"time"

	"github.com/mbd888/fraudguard/internal/profile"
)

func demoProfile() *profile.UserProfile {
	return &profile.UserProfile{
		UserID:            "sarah123",
		HoursStart:        9,
		HoursEnd:          21,
		AvgAmount:         85,
		KnownDevices:      []string{"iPhone"},
		FavoriteMerchants: []string{"Amazon", "Starbucks"},
		Locations:         []string{"Seattle, WA"},
	}
}

func TestLegit_StaysInBaseline(t *testing.T) {
	sim := New(1)
	p := demoProfile()

	for i := 0; i < 50; i++ {
		tx := sim.Legit(p)

		if tx.UserID != "sarah123" {
			t.Fatalf("userId = %s", tx.UserID)
		}
		if tx.Amount < p.AvgAmount*0.7 || tx.Amount > p.AvgAmount*1.3 {
			t.Errorf("amount %v outside 0.7x-1.3x of average %v", tx.Amount, p.AvgAmount)
		}
		if tx.Device != "iPhone" {
			t.Errorf("device = %s, want a known device", tx.Device)
		}
		if tx.TypingSpeed < 40 || tx.TypingSpeed > 120 {
			t.Errorf("typing speed %v outside human range", tx.TypingSpeed)
		}
		if tx.IsFraud {
			t.Error("legit transaction marked as fraud")
		}

		ts, err := time.Parse(time.RFC3339, tx.Timestamp)
		if err != nil {
			t.Fatalf("bad timestamp %q: %v", tx.Timestamp, err)
		}
		if h := ts.Hour(); h < 9 || h > 21 {
			t.Errorf("hour %d outside normal hours 9-21", h)
		}
	}
}

func TestLegit_NoDeviceKnowledge(t *testing.T) {
	sim := New(1)
	tx := sim.Legit(&profile.UserProfile{
		UserID:     "plain",
		HoursStart: 9,
		HoursEnd:   17,
		AvgAmount:  50,
	})
	if tx.Device != "" {
		t.Errorf("device = %q, want empty for profile without devices", tx.Device)
	}
	if tx.Merchant == "" {
		t.Error("merchant should fall back to a default")
	}
}

func TestFraud_MatchesArchetype(t *testing.T) {
	sim := New(2)
	p := demoProfile()

	tx, err := sim.Fraud(p, "electronics_overseas")
	if err != nil {
		t.Fatalf("Fraud: %v", err)
	}

	if !tx.IsFraud || tx.FraudType != "electronics_overseas" {
		t.Errorf("fraud flags wrong: isFraud=%v type=%s", tx.IsFraud, tx.FraudType)
	}
	if tx.Location != "Overseas" {
		t.Errorf("location = %s, want Overseas", tx.Location)
	}
	if tx.Category != "electronics" {
		t.Errorf("category = %s", tx.Category)
	}
	// 5x multiplier with 0.9-1.4 spread
	if tx.Amount < p.AvgAmount*5*0.9 || tx.Amount > p.AvgAmount*5*1.4 {
		t.Errorf("amount %v outside archetype range", tx.Amount)
	}

	suspicious := false
	for _, d := range SuspiciousDevices {
		if tx.Device == d {
			suspicious = true
		}
	}
	if !suspicious {
		t.Errorf("device %q not in suspicious set", tx.Device)
	}
}

func TestFraud_MidnightShoppingHours(t *testing.T) {
	sim := New(3)
	p := demoProfile()

	for i := 0; i < 30; i++ {
		tx, err := sim.Fraud(p, "midnight_shopping")
		if err != nil {
			t.Fatalf("Fraud: %v", err)
		}
		ts, err := time.Parse(time.RFC3339, tx.Timestamp)
		if err != nil {
			t.Fatalf("bad timestamp: %v", err)
		}
		if h := ts.Hour(); h > 5 {
			t.Errorf("midnight archetype at hour %d, want 0-5", h)
		}
	}
}

func TestFraud_HoursOutsideBaseline(t *testing.T) {
	sim := New(6)
	p := demoProfile() // normal hours 9-21

	for i := 0; i < 50; i++ {
		tx, err := sim.Fraud(p, "gift_card_spree")
		if err != nil {
			t.Fatalf("Fraud: %v", err)
		}
		ts, err := time.Parse(time.RFC3339, tx.Timestamp)
		if err != nil {
			t.Fatalf("bad timestamp: %v", err)
		}
		if h := ts.Hour(); h >= 9 && h <= 21 {
			t.Errorf("fraud transaction at hour %d, inside normal hours 9-21", h)
		}
	}
}

func TestFraud_UnknownArchetype(t *testing.T) {
	sim := New(1)
	if _, err := sim.Fraud(demoProfile(), "phantom_pattern"); err == nil {
		t.Error("expected error for unknown archetype")
	}
}

func TestFraud_TypingNeverHumanNormal(t *testing.T) {
	sim := New(4)
	for i := 0; i < 50; i++ {
		tx, err := sim.Fraud(demoProfile(), "")
		if err != nil {
			t.Fatalf("Fraud: %v", err)
		}
		if tx.TypingSpeed > 30 && tx.TypingSpeed < 180 {
			t.Errorf("fraud typing speed %v in human range", tx.TypingSpeed)
		}
	}
}

func TestArchetypeByName(t *testing.T) {
	for _, a := range Archetypes {
		got, err := ArchetypeByName(a.Name)
		if err != nil {
			t.Errorf("ArchetypeByName(%s): %v", a.Name, err)
		}
		if got.Multiplier != a.Multiplier {
			t.Errorf("multiplier mismatch for %s", a.Name)
		}
	}
	if _, err := ArchetypeByName("nope"); err == nil {
		t.Error("expected error for unknown name")
	}
}

func TestHistory_CountsAndOrdering(t *testing.T) {
	sim := New(42)
	txs := sim.History(demoProfile(), 30, 0.2)

	if len(txs) != 30 {
		t.Fatalf("generated %d transactions, want 30", len(txs))
	}

	fraudCount := 0
	for _, tx := range txs {
		if tx.IsFraud {
			fraudCount++
		}
	}
	if fraudCount != 6 { // int(30 * 0.2)
		t.Errorf("fraud count = %d, want 6", fraudCount)
	}

	// Newest first, sequence numbered from 1
	for i := 1; i < len(txs); i++ {
		if txs[i-1].Timestamp < txs[i].Timestamp {
			t.Errorf("not sorted newest first at index %d", i)
		}
	}
	for i, tx := range txs {
		if tx.Sequence != i+1 {
			t.Errorf("sequence[%d] = %d", i, tx.Sequence)
		}
	}
}

func TestHistory_RatioClamped(t *testing.T) {
	sim := New(5)

	all := sim.History(demoProfile(), 10, 1.5)
	for _, tx := range all {
		if !tx.IsFraud {
			t.Error("ratio > 1 should produce all-fraud history")
			break
		}
	}

	none := sim.History(demoProfile(), 10, -0.5)
	for _, tx := range none {
		if tx.IsFraud {
			t.Error("negative ratio should produce no fraud")
			break
		}
	}

	if got := sim.History(demoProfile(), 0, 0.2); got != nil {
		t.Errorf("count 0 should return nil, got %d items", len(got))
	}
}

func TestSeededDeterminism(t *testing.T) {
	a := New(99).History(demoProfile(), 10, 0.3)
	b := New(99).History(demoProfile(), 10, 0.3)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Amount != b[i].Amount || a[i].Merchant != b[i].Merchant || a[i].IsFraud != b[i].IsFraud {
			t.Errorf("transaction %d differs between identically seeded runs", i)
		}
	}
}
