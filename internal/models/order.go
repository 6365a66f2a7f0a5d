package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSubmitted OrderStatus = "submitted"
)

// BudgetCurrency is the only currency orders are priced in.
const BudgetCurrency = "CNY"

type Order struct {
	BaseModel
	OrderNumber         string                      `gorm:"uniqueIndex;size:32" json:"order_number"`
	UserID              uuid.UUID                   `gorm:"type:uuid;index;not null" json:"user_id"`
	Phone               string                      `gorm:"size:11;not null" json:"phone_number"`
	Status              OrderStatus                 `gorm:"size:16;index;not null" json:"status"`
	OrderDate           datatypes.Date              `gorm:"index" json:"order_date"`
	DeliveryAddress     string                      `gorm:"type:text;not null" json:"delivery_address"`
	DietaryRestrictions datatypes.JSONSlice[string] `json:"dietary_restrictions"`
	FoodPreferences     datatypes.JSONSlice[string] `json:"food_preferences"`
	BudgetAmount        float64                     `gorm:"not null" json:"budget_amount"`
	BudgetCurrency      string                      `gorm:"size:3;not null" json:"budget_currency"`
	UserRating          *int                        `json:"user_rating"`
	UserFeedback        *string                     `gorm:"type:text" json:"user_feedback"`
	SubmittedAt         *time.Time                  `json:"submitted_at"`
	FeedbackSubmittedAt *time.Time                  `json:"feedback_submitted_at"`
	IsDeleted           bool                        `gorm:"index;not null;default:false" json:"is_deleted"`
}

// FormatOrderNumber renders the human readable number for the seq-th order
// of day, e.g. ORD20250101003.
func FormatOrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("ORD%s%03d", day.Format("20060102"), seq)
}

// OrderDay truncates t to its UTC calendar date.
func OrderDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
