package profile

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*UserProfile
}

// NewMemoryStore creates an in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*UserProfile),
	}
}

func (s *MemoryStore) Put(ctx context.Context, p *UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := p.Clone()
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC()
	}
	s.profiles[p.UserID] = cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (*UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]*UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		result = append(result, p.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UserID < result[j].UserID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles), nil
}

// MemoryTransactionStore is an in-memory implementation of TransactionStore.
type MemoryTransactionStore struct {
	mu  sync.RWMutex
	txs []*Transaction
}

// NewMemoryTransactionStore creates an in-memory transaction store.
func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{}
}

func (s *MemoryTransactionStore) Record(ctx context.Context, tx *Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *tx
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.txs = append(s.txs, &cp)
	return nil
}

func (s *MemoryTransactionStore) RecordBatch(ctx context.Context, txs []*Transaction) error {
	for _, tx := range txs {
		if err := s.Record(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryTransactionStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Most recent first
	var result []*Transaction
	for i := len(s.txs) - 1; i >= 0; i-- {
		if s.txs[i].UserID != userID {
			continue
		}
		cp := *s.txs[i]
		result = append(result, &cp)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *MemoryTransactionStore) ListAll(ctx context.Context, limit int) ([]*Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.txs)
	if limit > 0 && n > limit {
		n = limit
	}
	result := make([]*Transaction, 0, n)
	for i := len(s.txs) - 1; i >= 0 && len(result) < n; i-- {
		cp := *s.txs[i]
		result = append(result, &cp)
	}
	return result, nil
}
