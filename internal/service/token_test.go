package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gb112302/agriconnect/internal/domain/entity"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Issue("user-1", entity.RoleFarmer)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := tm.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, entity.RoleFarmer, claims.Role)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	token, err := NewTokenManager("their-secret", time.Hour).Issue("user-1", entity.RoleBuyer)
	assert.NoError(t, err)

	_, err = NewTokenManager("our-secret", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, err := tm.Issue("user-1", entity.RoleBuyer)
	assert.NoError(t, err)

	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	_, err := tm.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
