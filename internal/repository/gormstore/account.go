package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/omnilaze/internal/errs"
	"github.com/example/omnilaze/internal/models"
)

type Accounts struct {
	db *gorm.DB
}

func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

func (s *Accounts) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Accounts) Provision(ctx context.Context, user *models.User, inviteCode string, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.InviteCode{}).
			Where("code = ? AND used = ?", inviteCode, false).
			Updates(map[string]any{
				"used":    true,
				"used_by": user.Phone,
				"used_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.ErrInvalidInvite
		}

		var existing int64
		if err := tx.Model(&models.User{}).Where("phone = ?", user.Phone).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errs.ErrAccountExists
		}

		user.InviteCode = inviteCode
		user.CreatedAt = at
		user.UpdatedAt = at
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.ErrAccountExists
			}
			return err
		}
		return nil
	})
}

func (s *Accounts) SeedInvites(ctx context.Context, codes []string) error {
	if len(codes) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.InviteCode, 0, len(codes))
	for _, code := range codes {
		rows = append(rows, models.InviteCode{Code: code, CreatedAt: now})
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (s *Accounts) FindInvite(ctx context.Context, code string) (*models.InviteCode, error) {
	var invite models.InviteCode
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}
