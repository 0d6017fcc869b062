package scoring

import (
	"context"
	"fmt"

	"github.com/mbd888/fraudguard/internal/logging"
	"github.com/mbd888/fraudguard/internal/profile"
	"github.com/mbd888/fraudguard/internal/traces"
)

// ProfileResolver looks up a user's behavioral baseline.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID string) (*profile.UserProfile, bool)
}

// EventEmitter publishes assessments to interested listeners.
type EventEmitter interface {
	EmitAssessment(a *Assessment)
	EmitAlert(a *Assessment)
}

// Service ties the scorer to profile resolution, persistence, and events.
type Service struct {
	scorer   *Scorer
	profiles ProfileResolver
	store    Store
	events   EventEmitter
}

// NewService creates a scoring service.
func NewService(scorer *Scorer, profiles ProfileResolver, store Store) *Service {
	return &Service{
		scorer:   scorer,
		profiles: profiles,
		store:    store,
	}
}

// WithEvents attaches a real-time event emitter.
func (s *Service) WithEvents(events EventEmitter) *Service {
	s.events = events
	return s
}

// Scorer returns the underlying scorer.
func (s *Service) Scorer() *Scorer {
	return s.scorer
}

// Evaluate resolves the user's profile, scores the transaction, persists
// the assessment, and emits events. BLOCKED verdicts additionally raise an
// alert event.
func (s *Service) Evaluate(ctx context.Context, tx *profile.Transaction) (*Assessment, error) {
	ctx, span := traces.StartSpan(ctx, "scoring.Evaluate",
		traces.UserID(tx.UserID),
		traces.Amount(tx.Amount),
	)
	defer span.End()

	up, known := s.profiles.Resolve(ctx, tx.UserID)
	assessment := s.scorer.Score(tx, up, known)

	if err := s.store.Record(ctx, assessment); err != nil {
		return nil, fmt.Errorf("record assessment: %w", err)
	}

	observeAssessment(assessment)

	logging.L(ctx).Info("transaction scored",
		"user_id", assessment.UserID,
		"score", assessment.Score,
		"status", assessment.Status,
		"variant", assessment.Variant,
		"factors", len(assessment.Factors),
	)

	if s.events != nil {
		s.events.EmitAssessment(assessment)
		if assessment.Status == StatusBlocked {
			s.events.EmitAlert(assessment)
		}
	}

	return assessment, nil
}
