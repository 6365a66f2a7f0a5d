// Package repository declares the storage contracts the services depend on.
// Implementations live in memory (ephemeral), gormstore (postgres) and
// redisstore (verification codes only). Errors from the errs package are
// returned for domain outcomes; anything else is a backend failure.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/omnilaze/internal/models"
)

// VerificationStore keeps one verification record per phone.
type VerificationStore interface {
	// Save upserts the record keyed by phone, replacing any previous one.
	Save(ctx context.Context, rec *models.VerificationCode) error
	// Consume atomically marks the phone's record used when candidate
	// matches and the record is unused and unexpired at now. It returns
	// errs.ErrNotFound, errs.ErrExpired or errs.ErrMismatch otherwise and
	// leaves the record untouched.
	Consume(ctx context.Context, phone, candidate string, now time.Time) error
}

// AccountStore is the user directory together with the invite gate, so
// that consuming an invite and creating its user happen as one unit.
type AccountStore interface {
	FindUserByPhone(ctx context.Context, phone string) (*models.User, error)
	// Provision consumes inviteCode for user.Phone and stores user. It
	// returns errs.ErrInvalidInvite for unknown or used codes and
	// errs.ErrAccountExists when the phone already has a user; in both
	// cases nothing is changed. A phone maps to at most one user, so the
	// existing-account check is not optional.
	Provision(ctx context.Context, user *models.User, inviteCode string, at time.Time) error
	// SeedInvites registers codes that are not known yet. Existing codes
	// keep their state.
	SeedInvites(ctx context.Context, codes []string) error
	// FindInvite returns the invite or errs.ErrNotFound.
	FindInvite(ctx context.Context, code string) (*models.InviteCode, error)
}

// SubmitMode selects how MarkSubmitted treats an already submitted order.
type SubmitMode int

const (
	// SubmitOverwrite re-applies the submitted status and timestamp.
	SubmitOverwrite SubmitMode = iota
	// SubmitOnce only transitions draft orders and reports
	// errs.ErrAlreadySubmitted otherwise.
	SubmitOnce
)

// OrderStore persists orders. The store owns order numbering.
type OrderStore interface {
	// Create stores order and fills in its OrderNumber.
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time, mode SubmitMode) (*models.Order, error)
	SaveFeedback(ctx context.Context, id uuid.UUID, rating int, feedback string, at time.Time) error
	// ListByUser returns non-deleted orders of userID, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	// SoftDelete flags the order deleted when it belongs to userID.
	SoftDelete(ctx context.Context, id, userID uuid.UUID, at time.Time) error
}

// Stores bundles the backends chosen at startup.
type Stores struct {
	Verifications VerificationStore
	Accounts      AccountStore
	Orders        OrderStore
}
