package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/omnilaze/internal/errs"
)

func TestSMSService_PostsCode(t *testing.T) {
	var got smsMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sms := NewSMSService(srv.URL, time.Second, nop)
	require.NoError(t, sms.Send(context.Background(), phone, "482913"))

	assert.Equal(t, smsMessage{Name: smsTemplateName, Code: "482913", Targets: phone}, got)
}

func TestSMSService_OnlyStatus200Succeeds(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusBadRequest, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		err := NewSMSService(srv.URL, time.Second, nop).Send(context.Background(), phone, "482913")
		assert.ErrorIs(t, err, errs.ErrDelivery, "status %d", status)
		srv.Close()
	}
}

func TestSMSService_TimeoutIsDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	err := NewSMSService(srv.URL, 20*time.Millisecond, nop).Send(context.Background(), phone, "482913")
	assert.ErrorIs(t, err, errs.ErrDelivery)
}

func TestSMSService_UnconfiguredEndpoint(t *testing.T) {
	err := NewSMSService("", time.Second, nop).Send(context.Background(), phone, "482913")
	assert.ErrorIs(t, err, errs.ErrDelivery)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "138****8000", maskPhone(phone))
	assert.Equal(t, "123", maskPhone("123"))
}
