package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type sessionClaims struct {
	UserID string `json:"user_id"`
	Phone  string `json:"phone_number"`
	jwt.RegisteredClaims
}

// TokenManager signs and checks HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for the user identified by userID and phone.
func (m *TokenManager) Issue(userID uuid.UUID, phone string) (string, error) {
	now := m.now()
	claims := &sessionClaims{
		UserID: userID.String(),
		Phone:  phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates tokenString and returns the embedded user ID.
func (m *TokenManager) Parse(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, errors.Join(jwt.ErrTokenInvalidClaims, err)
	}
	return id, nil
}
