package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/omnilaze/internal/errs"
	"github.com/example/omnilaze/internal/models"
	"github.com/example/omnilaze/internal/repository"
)

// Orders is an in-process repository.OrderStore. Order numbers come from a
// per-day counter that only ever grows, so soft deletes never cause a
// number to be handed out twice.
type Orders struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]models.Order
	inserted []uuid.UUID
	daySeq   map[string]int
}

func NewOrders() *Orders {
	return &Orders{
		byID:   make(map[uuid.UUID]models.Order),
		daySeq: make(map[string]int),
	}
}

func (s *Orders) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order.EnsureID()
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	day := time.Time(order.OrderDate)
	key := day.Format("20060102")
	s.daySeq[key]++
	order.OrderNumber = models.FormatOrderNumber(day, s.daySeq[key])

	s.byID[order.ID] = cloneOrder(*order)
	s.inserted = append(s.inserted, order.ID)
	return nil
}

func (s *Orders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	out := cloneOrder(o)
	return &out, nil
}

func (s *Orders) MarkSubmitted(_ context.Context, id uuid.UUID, at time.Time, mode repository.SubmitMode) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if mode == repository.SubmitOnce && o.Status != models.OrderStatusDraft {
		return nil, errs.ErrAlreadySubmitted
	}

	o.Status = models.OrderStatusSubmitted
	o.SubmittedAt = &at
	o.UpdatedAt = at
	s.byID[id] = o

	out := cloneOrder(o)
	return &out, nil
}

func (s *Orders) SaveFeedback(_ context.Context, id uuid.UUID, rating int, feedback string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.byID[id]
	if !ok {
		return errs.ErrNotFound
	}

	o.UserRating = &rating
	o.UserFeedback = &feedback
	o.FeedbackSubmittedAt = &at
	o.UpdatedAt = at
	s.byID[id] = o
	return nil
}

func (s *Orders) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Order, 0)
	for i := len(s.inserted) - 1; i >= 0; i-- {
		o := s.byID[s.inserted[i]]
		if o.UserID != userID || o.IsDeleted {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	// Newest insert first already; the stable sort only matters for
	// callers that set CreatedAt explicitly.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Orders) SoftDelete(_ context.Context, id, userID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.byID[id]
	if !ok || o.IsDeleted || o.UserID != userID {
		return errs.ErrNotFound
	}

	o.IsDeleted = true
	o.UpdatedAt = at
	s.byID[id] = o
	return nil
}

func cloneOrder(o models.Order) models.Order {
	o.DietaryRestrictions = slices.Clone(o.DietaryRestrictions)
	o.FoodPreferences = slices.Clone(o.FoodPreferences)
	return o
}
