package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/omnilaze/internal/errs"
)

// smsTemplateName is the template the SMS gateway renders for login codes.
const smsTemplateName = "验证码"

// SMSService posts verification codes to the configured SMS gateway.
type SMSService struct {
	endpoint string
	client   *http.Client
	log      *zap.Logger
}

// NewSMSService creates an SMSService with a bounded request timeout.
func NewSMSService(endpoint string, timeout time.Duration, log *zap.Logger) *SMSService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMSService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

type smsMessage struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Targets string `json:"targets"`
}

// Send delivers code to phone. Only HTTP 200 counts as delivered.
func (s *SMSService) Send(ctx context.Context, phone, code string) error {
	if s.endpoint == "" {
		return fmt.Errorf("%w: sms endpoint not configured", errs.ErrDelivery)
	}

	body, err := json.Marshal(smsMessage{Name: smsTemplateName, Code: code, Targets: phone})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", errs.ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("sms request failed", zap.String("phone", maskPhone(phone)), zap.Error(err))
		return fmt.Errorf("%w: %w", errs.ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("sms gateway rejected message",
			zap.String("phone", maskPhone(phone)),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: gateway returned status %d", errs.ErrDelivery, resp.StatusCode)
	}

	return nil
}

// maskPhone keeps the first three and last four digits for logs.
func maskPhone(phone string) string {
	if len(phone) < 7 {
		return phone
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}
