package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/omnilaze/internal/errs"
	"github.com/example/omnilaze/internal/models"
	"github.com/example/omnilaze/internal/repository"
)

// Orders stores orders in postgres. The order_number column is filled by
// the assign_order_number trigger and read back through RETURNING.
type Orders struct {
	db *gorm.DB
}

func NewOrders(db *gorm.DB) *Orders {
	return &Orders{db: db}
}

func (s *Orders) Create(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(order).Error
}

func (s *Orders) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Orders) MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time, mode repository.SubmitMode) (*models.Order, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id)
	if mode == repository.SubmitOnce {
		q = q.Where("status = ?", string(models.OrderStatusDraft))
	}

	res := q.Updates(map[string]any{
		"status":       string(models.OrderStatusSubmitted),
		"submitted_at": at,
		"updated_at":   at,
	})
	if res.Error != nil {
		return nil, res.Error
	}

	order, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, errs.ErrAlreadySubmitted
	}
	return order, nil
}

func (s *Orders) SaveFeedback(ctx context.Context, id uuid.UUID, rating int, feedback string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"user_rating":           rating,
			"user_feedback":         feedback,
			"feedback_submitted_at": at,
			"updated_at":            at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Orders) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *Orders) SoftDelete(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		Updates(map[string]any{
			"is_deleted": true,
			"updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}
