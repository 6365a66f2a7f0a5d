// Package gormstore is the durable postgres backend. State transitions are
// single conditional UPDATE statements checked through RowsAffected.
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

type Verifications struct {
	db *gorm.DB
}

func NewVerifications(db *gorm.DB) *Verifications {
	return &Verifications{db: db}
}

func (s *Verifications) Save(ctx context.Context, rec *models.VerificationCode) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "used", "used_at", "created_at", "updated_at"}),
		}).
		Create(rec).Error
}

func (s *Verifications) Consume(ctx context.Context, phone, candidate string, now time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.VerificationCode{}).
		Where("phone = ? AND code = ? AND used = ? AND expires_at >= ?", phone, candidate, false, now).
		Updates(map[string]any{
			"used":       true,
			"used_at":    now,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// The update did not apply; read the row only to report why.
	rec, err := s.Find(ctx, phone)
	if err != nil {
		return err
	}
	switch {
	case rec.Used:
		return errs.ErrNotFound
	case rec.Expired(now):
		return errs.ErrExpired
	default:
		return errs.ErrMismatch
	}
}

func (s *Verifications) Find(ctx context.Context, phone string) (*models.VerificationCode, error) {
	var rec models.VerificationCode
	err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
