package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/omnilaze/internal/models"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "50.00 CNY", FormatPrice(50, "CNY"))
	assert.Equal(t, "1,234,567.50 CNY", FormatPrice(1234567.5, ""))
	assert.Equal(t, "-1,000.00 CNY", FormatPrice(-1000, "CNY"))
}

func TestTelegramService_NotifyOrderSubmitted(t *testing.T) {
	var got telegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegramService("TOKEN", "42", time.Second, nop)
	tg.baseURL = srv.URL

	order := &models.Order{
		OrderNumber:     "ORD20250601001",
		Phone:           phone,
		DeliveryAddress: "<Room 5>",
		BudgetAmount:    50,
		BudgetCurrency:  models.BudgetCurrency,
	}
	require.NoError(t, tg.NotifyOrderSubmitted(context.Background(), order))

	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "HTML", got.ParseMode)
	assert.Contains(t, got.Text, "ORD20250601001")
	assert.Contains(t, got.Text, "138****8000")
	assert.Contains(t, got.Text, "&lt;Room 5&gt;")
	assert.Contains(t, got.Text, "50.00 CNY")
}

func TestTelegramService_DisabledIsNoop(t *testing.T) {
	tg := NewTelegramService("", "", time.Second, nop)
	assert.False(t, tg.Enabled())
	assert.NoError(t, tg.NotifyOrderSubmitted(context.Background(), &models.Order{}))
}

type recordingNotifier struct {
	orders []string
	fail   error
}

func (n *recordingNotifier) NotifyOrderSubmitted(_ context.Context, order *models.Order) error {
	n.orders = append(n.orders, order.OrderNumber)
	return n.fail
}

func TestOrderSubmit_NotifiesAndIgnoresNotifierFailure(t *testing.T) {
	ctx := context.Background()
	svc, _ := newOrderService(false)
	notifier := &recordingNotifier{fail: errors.New("telegram down")}
	svc.SetNotifier(notifier)

	order, err := svc.Create(ctx, uuid.New(), phone, validForm())
	require.NoError(t, err)

	_, err = svc.Submit(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{order.OrderNumber}, notifier.orders)

	_, err = svc.Submit(ctx, uuid.New())
	require.Error(t, err)
	assert.Len(t, notifier.orders, 1)
}
