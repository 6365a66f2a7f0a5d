package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/example/omnilaze/internal/errs"
	"github.com/example/omnilaze/internal/models"
	"github.com/example/omnilaze/internal/repository"
)

var (
	_ repository.VerificationStore = (*Verifications)(nil)
	_ repository.AccountStore      = (*Accounts)(nil)
	_ repository.OrderStore        = (*Orders)(nil)
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func saveCode(t *testing.T, s *Verifications, phone, code string) {
	t.Helper()
	require.NoError(t, s.Save(context.Background(), &models.VerificationCode{
		Phone:     phone,
		Code:      code,
		ExpiresAt: t0.Add(models.CodeTTL),
		BaseModel: models.BaseModel{CreatedAt: t0},
	}))
}

func TestVerifications_ConsumeOutcomes(t *testing.T) {
	ctx := context.Background()
	s := NewVerifications()

	assert.ErrorIs(t, s.Consume(ctx, "13800138000", "123456", t0), errs.ErrNotFound)

	saveCode(t, s, "13800138000", "123456")
	assert.ErrorIs(t, s.Consume(ctx, "13800138000", "000000", t0), errs.ErrMismatch)
	assert.ErrorIs(t, s.Consume(ctx, "13800138000", "123456", t0.Add(11*time.Minute)), errs.ErrExpired)

	require.NoError(t, s.Consume(ctx, "13800138000", "123456", t0.Add(time.Minute)))
	assert.ErrorIs(t, s.Consume(ctx, "13800138000", "123456", t0.Add(time.Minute)), errs.ErrNotFound)

	rec, err := s.Find(ctx, "13800138000")
	require.NoError(t, err)
	assert.True(t, rec.Used)
	require.NotNil(t, rec.UsedAt)
}

func TestVerifications_SaveOverwritesPreviousCode(t *testing.T) {
	ctx := context.Background()
	s := NewVerifications()

	saveCode(t, s, "13800138000", "111111")
	saveCode(t, s, "13800138000", "222222")

	assert.ErrorIs(t, s.Consume(ctx, "13800138000", "111111", t0), errs.ErrMismatch)
	assert.NoError(t, s.Consume(ctx, "13800138000", "222222", t0))
}

func TestVerifications_ConcurrentConsumeSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	s := NewVerifications()
	saveCode(t, s, "13800138000", "654321")

	var ok int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Consume(ctx, "13800138000", "654321", t0) == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok)
}

func TestAccounts_ProvisionConsumesInviteOnce(t *testing.T) {
	ctx := context.Background()
	s := NewAccounts()
	require.NoError(t, s.SeedInvites(ctx, []string{"WELCOME"}))

	first := &models.User{Phone: "13800138000"}
	require.NoError(t, s.Provision(ctx, first, "WELCOME", t0))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, "WELCOME", first.InviteCode)

	err := s.Provision(ctx, &models.User{Phone: "13900139000"}, "WELCOME", t0)
	assert.ErrorIs(t, err, errs.ErrInvalidInvite)

	invite, err := s.FindInvite(ctx, "WELCOME")
	require.NoError(t, err)
	assert.True(t, invite.Used)
	require.NotNil(t, invite.UsedBy)
	assert.Equal(t, "13800138000", *invite.UsedBy)

	found, err := s.FindUserByPhone(ctx, "13800138000")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestAccounts_ProvisionExistingPhoneKeepsInvite(t *testing.T) {
	ctx := context.Background()
	s := NewAccounts()
	require.NoError(t, s.SeedInvites(ctx, []string{"A", "B"}))
	require.NoError(t, s.Provision(ctx, &models.User{Phone: "13800138000"}, "A", t0))

	err := s.Provision(ctx, &models.User{Phone: "13800138000"}, "B", t0)
	assert.ErrorIs(t, err, errs.ErrAccountExists)

	invite, err := s.FindInvite(ctx, "B")
	require.NoError(t, err)
	assert.False(t, invite.Used)
}

func TestAccounts_SeedKeepsUsedState(t *testing.T) {
	ctx := context.Background()
	s := NewAccounts()
	require.NoError(t, s.SeedInvites(ctx, []string{"A"}))
	require.NoError(t, s.Provision(ctx, &models.User{Phone: "13800138000"}, "A", t0))
	require.NoError(t, s.SeedInvites(ctx, []string{"A"}))

	invite, err := s.FindInvite(ctx, "A")
	require.NoError(t, err)
	assert.True(t, invite.Used)
}

func newOrder(userID uuid.UUID, created time.Time) *models.Order {
	return &models.Order{
		BaseModel:       models.BaseModel{CreatedAt: created},
		UserID:          userID,
		Phone:           "13800138000",
		Status:          models.OrderStatusDraft,
		OrderDate:       datatypes.Date(models.OrderDay(created)),
		DeliveryAddress: "X",
		BudgetAmount:    50,
		BudgetCurrency:  models.BudgetCurrency,
	}
}

func TestOrders_NumberingPerDay(t *testing.T) {
	ctx := context.Background()
	s := NewOrders()
	user := uuid.New()

	a, b := newOrder(user, t0), newOrder(user, t0.Add(time.Hour))
	next := newOrder(user, t0.Add(24*time.Hour))
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.Create(ctx, b))
	require.NoError(t, s.Create(ctx, next))

	assert.Equal(t, "ORD20250601001", a.OrderNumber)
	assert.Equal(t, "ORD20250601002", b.OrderNumber)
	assert.Equal(t, "ORD20250602001", next.OrderNumber)
}

func TestOrders_NumberNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	s := NewOrders()
	user := uuid.New()

	a := newOrder(user, t0)
	require.NoError(t, s.Create(ctx, a))
	require.NoError(t, s.SoftDelete(ctx, a.ID, user, t0))

	b := newOrder(user, t0)
	require.NoError(t, s.Create(ctx, b))
	assert.Equal(t, "ORD20250601002", b.OrderNumber)
}

func TestOrders_ListNewestFirstWithoutDeleted(t *testing.T) {
	ctx := context.Background()
	s := NewOrders()
	user, other := uuid.New(), uuid.New()

	oldest := newOrder(user, t0)
	middle := newOrder(user, t0.Add(time.Minute))
	newest := newOrder(user, t0.Add(2*time.Minute))
	foreign := newOrder(other, t0)
	for _, o := range []*models.Order{oldest, middle, newest, foreign} {
		require.NoError(t, s.Create(ctx, o))
	}
	require.NoError(t, s.SoftDelete(ctx, middle.ID, user, t0))

	list, err := s.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newest.ID, list[0].ID)
	assert.Equal(t, oldest.ID, list[1].ID)
}

func TestOrders_SoftDeleteRequiresOwner(t *testing.T) {
	ctx := context.Background()
	s := NewOrders()
	o := newOrder(uuid.New(), t0)
	require.NoError(t, s.Create(ctx, o))

	assert.ErrorIs(t, s.SoftDelete(ctx, o.ID, uuid.New(), t0), errs.ErrNotFound)
	assert.ErrorIs(t, s.SoftDelete(ctx, uuid.New(), o.UserID, t0), errs.ErrNotFound)
}

func TestOrders_MarkSubmittedModes(t *testing.T) {
	ctx := context.Background()
	s := NewOrders()
	o := newOrder(uuid.New(), t0)
	require.NoError(t, s.Create(ctx, o))

	first, err := s.MarkSubmitted(ctx, o.ID, t0.Add(time.Minute), repository.SubmitOnce)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusSubmitted, first.Status)

	_, err = s.MarkSubmitted(ctx, o.ID, t0.Add(2*time.Minute), repository.SubmitOnce)
	assert.ErrorIs(t, err, errs.ErrAlreadySubmitted)

	again, err := s.MarkSubmitted(ctx, o.ID, t0.Add(3*time.Minute), repository.SubmitOverwrite)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(3*time.Minute), *again.SubmittedAt)

	_, err = s.MarkSubmitted(ctx, uuid.New(), t0, repository.SubmitOverwrite)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestOrders_ReturnedCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewOrders()
	o := newOrder(uuid.New(), t0)
	o.DietaryRestrictions = datatypes.JSONSlice[string]{"peanut"}
	require.NoError(t, s.Create(ctx, o))

	got, err := s.FindByID(ctx, o.ID)
	require.NoError(t, err)
	got.DietaryRestrictions[0] = "changed"

	again, err := s.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "peanut", again.DietaryRestrictions[0])
}
