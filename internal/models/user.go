package models

import (
	"time"
)

// CodeTTL is how long a verification code stays valid after it is issued.
const CodeTTL = 10 * time.Minute

// User is a phone-identified account provisioned through an invite code.
type User struct {
	BaseModel
	Phone      string `gorm:"uniqueIndex;size:11;not null" json:"phone_number"`
	InviteCode string `gorm:"size:64" json:"invite_code"`
}

// VerificationCode is the single active one-time code for a phone. A new
// send overwrites the previous row for the same phone.
type VerificationCode struct {
	BaseModel
	Phone     string     `gorm:"uniqueIndex;size:11;not null" json:"phone_number"`
	Code      string     `gorm:"size:6;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	Used      bool       `gorm:"not null;default:false" json:"used"`
	UsedAt    *time.Time `json:"used_at"`
}

// Expired reports whether the code is past its window at now.
func (v *VerificationCode) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// InviteCode is a pre-provisioned token that authorizes one account.
type InviteCode struct {
	Code      string     `gorm:"primaryKey;size:64" json:"code"`
	Used      bool       `gorm:"not null;default:false" json:"used"`
	UsedBy    *string    `gorm:"size:11" json:"used_by"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}
