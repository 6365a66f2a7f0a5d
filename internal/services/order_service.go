package services

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/example/omnilaze/internal/errs"
	"github.com/example/omnilaze/internal/metrics"
	"github.com/example/omnilaze/internal/models"
	"github.com/example/omnilaze/internal/repository"
)

// OrderForm is the questionnaire a user fills in for an order.
type OrderForm struct {
	Address     string
	Budget      float64
	Allergies   []string
	Preferences []string
}

// OrderNotifier is told about orders that were just submitted.
type OrderNotifier interface {
	NotifyOrderSubmitted(ctx context.Context, order *models.Order) error
}

// OrderService drives orders through draft -> submitted and attaches
// feedback, which is independent of status.
type OrderService struct {
	store    repository.OrderStore
	clock    Clock
	mode     repository.SubmitMode
	notifier OrderNotifier
	log      *zap.Logger
}

// NewOrderService builds the service. With strictSubmit an order can be
// submitted only once; otherwise re-submission refreshes submitted_at.
func NewOrderService(store repository.OrderStore, clock Clock, strictSubmit bool, log *zap.Logger) *OrderService {
	if clock == nil {
		clock = SystemClock
	}
	mode := repository.SubmitOverwrite
	if strictSubmit {
		mode = repository.SubmitOnce
	}
	return &OrderService{store: store, clock: clock, mode: mode, log: log}
}

// SetNotifier registers n to hear about submitted orders. Notification
// failures are logged and never fail the submission.
func (s *OrderService) SetNotifier(n OrderNotifier) {
	s.notifier = n
}

// Create validates form and stores a draft order for userID.
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, phone string, form OrderForm) (*models.Order, error) {
	if userID == uuid.Nil || strings.TrimSpace(phone) == "" {
		return nil, errs.Validation("user information is required")
	}
	address := strings.TrimSpace(form.Address)
	if address == "" {
		return nil, errs.Validation("delivery address is required")
	}
	if math.IsNaN(form.Budget) || math.IsInf(form.Budget, 0) || form.Budget <= 0 {
		return nil, errs.Validation("budget amount must be greater than zero")
	}

	now := s.clock.Now()
	order := &models.Order{
		BaseModel:           models.BaseModel{CreatedAt: now, UpdatedAt: now},
		UserID:              userID,
		Phone:               phone,
		Status:              models.OrderStatusDraft,
		OrderDate:           datatypes.Date(models.OrderDay(now)),
		DeliveryAddress:     address,
		DietaryRestrictions: uniqueNonEmpty(form.Allergies),
		FoodPreferences:     uniqueNonEmpty(form.Preferences),
		BudgetAmount:        form.Budget,
		BudgetCurrency:      models.BudgetCurrency,
	}
	err := errs.Store("create order", s.store.Create(ctx, order))
	metrics.OrderTransitions.WithLabelValues("create", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID.String()))
	return order, nil
}

// Get loads a single order, deleted or not.
func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, errs.Store("find order", err)
	}
	return order, nil
}

// Submit moves the order to submitted.
func (s *OrderService) Submit(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.store.MarkSubmitted(ctx, orderID, s.clock.Now(), s.mode)
	err = errs.Store("submit order", err)
	metrics.OrderTransitions.WithLabelValues("submit", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.log.Info("order submitted", zap.String("order_id", orderID.String()))

	if s.notifier != nil {
		if err := s.notifier.NotifyOrderSubmitted(ctx, order); err != nil {
			s.log.Warn("order notification failed",
				zap.String("order_id", orderID.String()), zap.Error(err))
		}
	}
	return order, nil
}

var errRating = errs.Validation("rating must be between 1 and 5")

// ValidRating reports whether rating is within 1-5.
func ValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// RecordFeedback attaches a 1-5 rating and free text to the order.
func (s *OrderService) RecordFeedback(ctx context.Context, orderID uuid.UUID, rating int, feedback string) error {
	if !ValidRating(rating) {
		return errRating
	}
	err := errs.Store("save feedback", s.store.SaveFeedback(ctx, orderID, rating, feedback, s.clock.Now()))
	metrics.OrderTransitions.WithLabelValues("feedback", metrics.Outcome(err)).Inc()
	return err
}

// List returns the user's non-deleted orders, newest first.
func (s *OrderService) List(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, errs.Validation("user id is required")
	}
	orders, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Store("list orders", err)
	}
	return orders, nil
}

// Delete soft-deletes an order owned by userID.
func (s *OrderService) Delete(ctx context.Context, orderID, userID uuid.UUID) error {
	err := errs.Store("delete order", s.store.SoftDelete(ctx, orderID, userID, s.clock.Now()))
	metrics.OrderTransitions.WithLabelValues("delete", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	s.log.Info("order deleted", zap.String("order_id", orderID.String()))
	return nil
}

func uniqueNonEmpty(values []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
