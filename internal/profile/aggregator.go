package profile

import (
	"context"
	"sort"
	"time"

	"github.com/mbd888/fraudguard/internal/metrics"
)

// maxCommonHours is how many top hours the aggregator keeps per user.
const maxCommonHours = 4

// Aggregator rebuilds user profiles from stored transaction history.
type Aggregator struct {
	txs      TransactionStore
	profiles Store
}

// NewAggregator creates an aggregator over the given stores.
func NewAggregator(txs TransactionStore, profiles Store) *Aggregator {
	return &Aggregator{txs: txs, profiles: profiles}
}

// hourCount tracks how often an hour appears and where it first appeared,
// so ties resolve in favor of the hour seen earliest in the history.
type hourCount struct {
	hour  int
	count int
	first int
}

// Aggregate computes per-user profiles from a transaction batch.
// Users with no transactions produce no profile. Transactions with
// unparseable timestamps still contribute amount and device data, they
// only drop out of the hour histogram.
func Aggregate(txs []*Transaction) []*UserProfile {
	type userAgg struct {
		userID  string
		total   float64
		count   int
		devices []string
		seen    map[string]bool
		hours   map[int]*hourCount
		hourIdx int
	}

	byUser := make(map[string]*userAgg)
	var order []string

	for _, tx := range txs {
		if tx.UserID == "" {
			continue
		}
		agg, ok := byUser[tx.UserID]
		if !ok {
			agg = &userAgg{
				userID: tx.UserID,
				seen:   make(map[string]bool),
				hours:  make(map[int]*hourCount),
			}
			byUser[tx.UserID] = agg
			order = append(order, tx.UserID)
		}

		agg.total += tx.Amount
		agg.count++

		if tx.Device != "" && !agg.seen[tx.Device] {
			agg.seen[tx.Device] = true
			agg.devices = append(agg.devices, tx.Device)
		}

		if h, ok := txHour(tx); ok {
			hc, exists := agg.hours[h]
			if !exists {
				hc = &hourCount{hour: h, first: agg.hourIdx}
				agg.hours[h] = hc
			}
			hc.count++
			agg.hourIdx++
		}
	}

	profiles := make([]*UserProfile, 0, len(order))
	for _, userID := range order {
		agg := byUser[userID]
		if agg.count == 0 {
			continue
		}

		p := &UserProfile{
			UserID:       userID,
			HoursStart:   DefaultHoursStart,
			HoursEnd:     DefaultHoursEnd,
			AvgAmount:    agg.total / float64(agg.count),
			KnownDevices: agg.devices,
			CommonHours:  topHours(agg.hours),
			UpdatedAt:    time.Now().UTC(),
		}
		profiles = append(profiles, p)
	}

	return profiles
}

// txHour is like Transaction.Hour but treats a missing timestamp as
// unusable: history aggregation has no "now" to fall back on.
func txHour(tx *Transaction) (int, bool) {
	if tx.Timestamp == "" {
		return 0, false
	}
	return tx.Hour()
}

// topHours returns the most frequent hours, highest count first.
// Ties keep the hour that appeared first in the history (stable sort).
func topHours(hours map[int]*hourCount) []int {
	counts := make([]*hourCount, 0, len(hours))
	for _, hc := range hours {
		counts = append(counts, hc)
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].first < counts[j].first
	})

	n := len(counts)
	if n > maxCommonHours {
		n = maxCommonHours
	}
	result := make([]int, 0, n)
	for _, hc := range counts[:n] {
		result = append(result, hc.hour)
	}
	return result
}

// Rebuild aggregates all stored history and upserts the resulting profiles.
// Returns the number of profiles written.
func (a *Aggregator) Rebuild(ctx context.Context) (int, error) {
	txs, err := a.txs.ListAll(ctx, 0)
	if err != nil {
		return 0, err
	}

	profiles := Aggregate(txs)
	for _, p := range profiles {
		if err := a.profiles.Put(ctx, p); err != nil {
			return 0, err
		}
	}
	metrics.ProfileRebuildsTotal.Inc()
	return len(profiles), nil
}
