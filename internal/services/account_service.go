package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/omnilaze/internal/errs"
	"github.com/example/omnilaze/internal/metrics"
	"github.com/example/omnilaze/internal/models"
	"github.com/example/omnilaze/internal/repository"
	"github.com/example/omnilaze/internal/utils"
)

// CodeVerifier checks a phone's one-time code.
type CodeVerifier interface {
	Verify(ctx context.Context, phone, code string) error
}

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID uuid.UUID, phone string) (string, error)
}

// AccountService runs the two-phase signup: prove phone ownership, then
// redeem an invite to get an identity.
type AccountService struct {
	verifier CodeVerifier
	store    repository.AccountStore
	tokens   TokenIssuer
	clock    Clock
	log      *zap.Logger
}

func NewAccountService(verifier CodeVerifier, store repository.AccountStore, tokens TokenIssuer, clock Clock, log *zap.Logger) *AccountService {
	if clock == nil {
		clock = SystemClock
	}
	return &AccountService{verifier: verifier, store: store, tokens: tokens, clock: clock, log: log}
}

// LoginResult is either an existing user (UserID set) or a verified phone
// that still needs an invite (IsNewUser).
type LoginResult struct {
	UserID    *uuid.UUID
	Phone     string
	IsNewUser bool
	Token     string
}

// Login verifies code for phone and looks the phone up in the directory.
func (s *AccountService) Login(ctx context.Context, phone, code string) (LoginResult, error) {
	if err := s.verifier.Verify(ctx, phone, code); err != nil {
		return LoginResult{}, err
	}

	user, err := s.store.FindUserByPhone(ctx, phone)
	if errors.Is(err, errs.ErrNotFound) {
		return LoginResult{Phone: phone, IsNewUser: true}, nil
	}
	if err != nil {
		return LoginResult{}, errs.Store("find user", err)
	}

	token, err := s.issue(user)
	if err != nil {
		return LoginResult{}, err
	}

	id := user.ID
	return LoginResult{UserID: &id, Phone: phone, Token: token}, nil
}

// RedeemResult describes the user created by RedeemInvite.
type RedeemResult struct {
	User  *models.User
	Token string
}

// RedeemInvite consumes invite for phone and creates its user. Unknown or
// used invites fail with errs.ErrInvalidInvite; a phone that already has a
// user fails with errs.ErrAccountExists and keeps the invite unused.
func (s *AccountService) RedeemInvite(ctx context.Context, phone, invite string) (RedeemResult, error) {
	invite = strings.TrimSpace(invite)
	if !utils.ValidPhone(phone) {
		return RedeemResult{}, errs.Validation("phone number must be 11 digits")
	}
	if invite == "" {
		return RedeemResult{}, errs.Validation("invite code is required")
	}

	user := &models.User{Phone: phone}
	err := errs.Store("provision user", s.store.Provision(ctx, user, invite, s.clock.Now()))
	metrics.InviteRedemptions.WithLabelValues(metrics.Outcome(err)).Inc()
	if errors.Is(err, errs.ErrInvalidInvite) {
		return RedeemResult{}, s.inviteRejection(ctx, invite, phone)
	}
	if err != nil {
		return RedeemResult{}, err
	}

	s.log.Info("user provisioned",
		zap.String("user_id", user.ID.String()),
		zap.String("phone", maskPhone(phone)))

	token, err := s.issue(user)
	if err != nil {
		return RedeemResult{}, err
	}
	return RedeemResult{User: user, Token: token}, nil
}

// inviteRejection explains why invite could not be redeemed.
func (s *AccountService) inviteRejection(ctx context.Context, invite, phone string) error {
	found, err := s.store.FindInvite(ctx, invite)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return fmt.Errorf("%w: unknown invite code", errs.ErrInvalidInvite)
	case err != nil:
		s.log.Warn("look up rejected invite", zap.Error(err))
		return errs.ErrInvalidInvite
	case found.Used:
		s.log.Info("invite code reused",
			zap.String("phone", maskPhone(phone)),
			zap.Bool("same_phone", found.UsedBy != nil && *found.UsedBy == phone))
		return fmt.Errorf("%w: invite code already used", errs.ErrInvalidInvite)
	default:
		return errs.ErrInvalidInvite
	}
}

func (s *AccountService) issue(user *models.User) (string, error) {
	if s.tokens == nil {
		return "", nil
	}
	token, err := s.tokens.Issue(user.ID, user.Phone)
	if err != nil {
		s.log.Error("sign session token", zap.Error(err))
		return "", err
	}
	return token, nil
}
