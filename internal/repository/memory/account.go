package memory

import (
	"context"
	"sync"
	"time"

	"github.com/example/omnilaze/internal/errs"
	"github.com/example/omnilaze/internal/models"
)

// Accounts is an in-process user directory and invite allow-list.
type Accounts struct {
	mu      sync.Mutex
	users   map[string]models.User
	invites map[string]models.InviteCode
}

func NewAccounts() *Accounts {
	return &Accounts{
		users:   make(map[string]models.User),
		invites: make(map[string]models.InviteCode),
	}
}

func (s *Accounts) FindUserByPhone(_ context.Context, phone string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[phone]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (s *Accounts) Provision(_ context.Context, user *models.User, inviteCode string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	invite, ok := s.invites[inviteCode]
	if !ok || invite.Used {
		return errs.ErrInvalidInvite
	}
	if _, exists := s.users[user.Phone]; exists {
		return errs.ErrAccountExists
	}

	phone := user.Phone
	invite.Used = true
	invite.UsedBy = &phone
	invite.UsedAt = &at
	s.invites[inviteCode] = invite

	user.EnsureID()
	user.InviteCode = inviteCode
	user.CreatedAt = at
	user.UpdatedAt = at
	s.users[phone] = *user
	return nil
}

func (s *Accounts) SeedInvites(_ context.Context, codes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, code := range codes {
		if _, ok := s.invites[code]; ok {
			continue
		}
		s.invites[code] = models.InviteCode{Code: code, CreatedAt: now}
	}
	return nil
}

func (s *Accounts) FindInvite(_ context.Context, code string) (*models.InviteCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invite, ok := s.invites[code]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &invite, nil
}
