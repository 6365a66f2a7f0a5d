package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	id := uuid.New()

	token, err := m.Issue(id, "13800138000")
	require.NoError(t, err)

	got, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenManager_RejectsOtherSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).Issue(uuid.New(), "13800138000")
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.Issue(uuid.New(), "13800138000")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
