package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/omnilaze/internal/models"
)

const telegramAPI = "https://api.telegram.org"

// TelegramService posts order notifications to an admin chat.
type TelegramService struct {
	baseURL     string
	botToken    string
	adminChatID string
	client      *http.Client
	log         *zap.Logger
}

// NewTelegramService creates a new TelegramService. Without a bot token or
// chat ID every notification is a no-op.
func NewTelegramService(botToken, adminChatID string, timeout time.Duration, log *zap.Logger) *TelegramService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramService{
		baseURL:     telegramAPI,
		botToken:    botToken,
		adminChatID: adminChatID,
		client:      &http.Client{Timeout: timeout},
		log:         log,
	}
}

// Enabled reports whether both bot token and admin chat are configured.
func (s *TelegramService) Enabled() bool {
	return s.botToken != "" && s.adminChatID != ""
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends an HTML message to chatID.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		return nil
	}

	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// NotifyOrderSubmitted tells the admin chat that an order is ready to be
// fulfilled.
func (s *TelegramService) NotifyOrderSubmitted(ctx context.Context, order *models.Order) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.SendMessage(ctx, s.adminChatID, formatOrderMessage(order)); err != nil {
		return err
	}
	s.log.Debug("order notification sent", zap.String("order_number", order.OrderNumber))
	return nil
}

func formatOrderMessage(order *models.Order) string {
	var b strings.Builder
	b.WriteString("<b>🛒 New order submitted</b>\n")
	fmt.Fprintf(&b, "<b>📋 Order:</b> %s\n", html.EscapeString(order.OrderNumber))
	fmt.Fprintf(&b, "<b>📞 Phone:</b> %s\n", maskPhone(order.Phone))
	fmt.Fprintf(&b, "<b>📍 Address:</b> %s\n", html.EscapeString(order.DeliveryAddress))
	fmt.Fprintf(&b, "<b>💰 Budget:</b> %s\n", FormatPrice(order.BudgetAmount, order.BudgetCurrency))
	if len(order.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "<b>⚠️ Allergies:</b> %s\n", html.EscapeString(strings.Join(order.DietaryRestrictions, ", ")))
	}
	if len(order.FoodPreferences) > 0 {
		fmt.Fprintf(&b, "<b>🍜 Preferences:</b> %s\n", html.EscapeString(strings.Join(order.FoodPreferences, ", ")))
	}
	b.WriteString("━━━━━━━━━━━━━━━━━━")
	return b.String()
}

// FormatPrice renders amount with two decimals, thousand separators and
// the currency code.
func FormatPrice(amount float64, currency string) string {
	if currency == "" {
		currency = models.BudgetCurrency
	}
	str := fmt.Sprintf("%.2f", amount)
	intPart, frac, _ := strings.Cut(str, ".")

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var result strings.Builder
	if neg {
		result.WriteByte('-')
	}
	length := len(intPart)
	for i, digit := range intPart {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + "." + frac + " " + currency
}
