// Package memory holds the ephemeral backend used when no durable
// datastore is configured. Every store guards its map with a mutex held
// across each read-modify-write so single-use and one-shot transitions
// hold under concurrent requests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/example/omnilaze/internal/errs"
	"github.com/example/omnilaze/internal/models"
)

// Verifications is an in-process repository.VerificationStore.
type Verifications struct {
	mu      sync.Mutex
	byPhone map[string]models.VerificationCode
}

func NewVerifications() *Verifications {
	return &Verifications{byPhone: make(map[string]models.VerificationCode)}
}

func (s *Verifications) Save(_ context.Context, rec *models.VerificationCode) error {
	rec.EnsureID()
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byPhone[rec.Phone] = *rec
	return nil
}

func (s *Verifications) Consume(_ context.Context, phone, candidate string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byPhone[phone]
	if !ok || rec.Used {
		return errs.ErrNotFound
	}
	if rec.Expired(now) {
		return errs.ErrExpired
	}
	if rec.Code != candidate {
		return errs.ErrMismatch
	}

	rec.Used = true
	rec.UsedAt = &now
	rec.UpdatedAt = now
	s.byPhone[phone] = rec
	return nil
}

func (s *Verifications) Find(_ context.Context, phone string) (*models.VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byPhone[phone]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &rec, nil
}
