package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/omnilaze/internal/errs"
	"github.com/example/omnilaze/internal/metrics"
	"github.com/example/omnilaze/internal/models"
	"github.com/example/omnilaze/internal/repository"
	"github.com/example/omnilaze/internal/utils"
)

// CodeSender delivers a verification code to a phone.
type CodeSender interface {
	Send(ctx context.Context, phone, code string) error
}

// VerificationService issues and checks one-time phone codes.
type VerificationService struct {
	store    repository.VerificationStore
	sender   CodeSender
	clock    Clock
	generate CodeGenerator
	devMode  bool
	log      *zap.Logger
}

type VerificationOption func(*VerificationService)

// WithClock overrides the time source.
func WithClock(c Clock) VerificationOption {
	return func(s *VerificationService) { s.clock = c }
}

// WithCodeGenerator overrides how codes are produced.
func WithCodeGenerator(g CodeGenerator) VerificationOption {
	return func(s *VerificationService) { s.generate = g }
}

// WithDevMode skips delivery and hands the code back to the caller.
func WithDevMode(enabled bool) VerificationOption {
	return func(s *VerificationService) { s.devMode = enabled }
}

func NewVerificationService(store repository.VerificationStore, sender CodeSender, log *zap.Logger, opts ...VerificationOption) *VerificationService {
	s := &VerificationService{
		store:    store,
		sender:   sender,
		clock:    SystemClock,
		generate: RandomCode,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendResult carries the code back only in development mode.
type SendResult struct {
	DevCode string
}

// Send stores a fresh code for phone, replacing any earlier one, and asks
// the sender to deliver it. The stored code stays valid when delivery
// fails.
func (s *VerificationService) Send(ctx context.Context, phone string) (SendResult, error) {
	if !utils.ValidPhone(phone) {
		return SendResult{}, errs.Validation("phone number must be 11 digits")
	}

	code, err := s.generate()
	if err != nil {
		return SendResult{}, fmt.Errorf("generate verification code: %w", err)
	}

	now := s.clock.Now()
	rec := &models.VerificationCode{
		BaseModel: models.BaseModel{CreatedAt: now, UpdatedAt: now},
		Phone:     phone,
		Code:      code,
		ExpiresAt: now.Add(models.CodeTTL),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return SendResult{}, errs.Store("save verification code", err)
	}

	if s.devMode {
		metrics.CodesSent.WithLabelValues("development").Inc()
		s.log.Info("verification code issued (development)",
			zap.String("phone", maskPhone(phone)), zap.String("code", code))
		return SendResult{DevCode: code}, nil
	}

	if s.sender == nil {
		metrics.CodesSent.WithLabelValues("delivery_failed").Inc()
		return SendResult{}, fmt.Errorf("%w: no sender configured", errs.ErrDelivery)
	}
	if err := s.sender.Send(ctx, phone, code); err != nil {
		metrics.CodesSent.WithLabelValues("delivery_failed").Inc()
		if !errors.Is(err, errs.ErrDelivery) {
			err = fmt.Errorf("%w: %w", errs.ErrDelivery, err)
		}
		return SendResult{}, err
	}

	metrics.CodesSent.WithLabelValues("sent").Inc()
	s.log.Info("verification code sent", zap.String("phone", maskPhone(phone)))
	return SendResult{}, nil
}

// Verify consumes the phone's code when candidate matches. It fails with
// errs.ErrNotFound, errs.ErrExpired or errs.ErrMismatch.
func (s *VerificationService) Verify(ctx context.Context, phone, candidate string) error {
	if !utils.ValidPhone(phone) {
		return errs.Validation("phone number must be 11 digits")
	}
	if !utils.ValidCode(candidate) {
		return errs.Validation("verification code must be 6 digits")
	}

	err := errs.Store("consume verification code", s.store.Consume(ctx, phone, candidate, s.clock.Now()))
	metrics.CodeVerifications.WithLabelValues(metrics.Outcome(err)).Inc()
	return err
}
