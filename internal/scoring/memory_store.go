package scoring

import (
	"context"
	"sync"
	"time"

	"github.com/mbd888/fraudguard/internal/pagination"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu          sync.RWMutex
	assessments []*Assessment
	byID        map[string]*Assessment
}

// NewMemoryStore creates an in-memory assessment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]*Assessment),
	}
}

func (s *MemoryStore) Record(ctx context.Context, a *Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *a
	cp.Factors = append([]Factor(nil), a.Factors...)
	s.assessments = append(s.assessments, &cp)
	s.byID[cp.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, ErrAssessmentNotFound
	}
	cp := *a
	cp.Factors = append([]Factor(nil), a.Factors...)
	return &cp, nil
}

func (s *MemoryStore) ListRecent(ctx context.Context, limit int, cursor string) ([]*Assessment, string, bool, error) {
	cur, err := pagination.Decode(cursor)
	if err != nil {
		return nil, "", false, err
	}

	s.mu.RLock()
	// Newest first, starting after the cursor position.
	var page []*Assessment
	for i := len(s.assessments) - 1; i >= 0; i-- {
		a := s.assessments[i]
		if cur != nil && cur.Skip(a.CreatedAt, a.ID) {
			continue
		}
		cp := *a
		cp.Factors = append([]Factor(nil), a.Factors...)
		page = append(page, &cp)
		if len(page) > limit {
			break
		}
	}
	s.mu.RUnlock()

	items, next, hasMore := pagination.ComputePage(page, limit, func(a *Assessment) (time.Time, string) {
		return a.CreatedAt, a.ID
	})
	return items, next, hasMore, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{
		Total:    len(s.assessments),
		ByStatus: make(map[Status]int),
	}

	var sum float64
	for _, a := range s.assessments {
		stats.ByStatus[a.Status]++
		sum += a.Score
		if a.CreatedAt.After(stats.LastScored) {
			stats.LastScored = a.CreatedAt
		}
	}
	if stats.Total > 0 {
		stats.AvgScore = sum / float64(stats.Total)
	}
	return stats, nil
}
