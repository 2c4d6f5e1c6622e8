package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectbureau/bureau-backend/dao/model"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", time.Hour)

	user := &model.User{
		Base:  model.Base{ID: 42},
		Email: "gip@test.com",
		Name:  "Мария ГИП",
		Role:  model.RoleGip,
	}
	token, err := tm.CreateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	msg, err := tm.CheckToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), msg.UserID)
	assert.Equal(t, "gip@test.com", msg.Email)
	assert.Equal(t, model.RoleGip, msg.Role)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	tm := NewTokenManager("secret-a", time.Hour)
	other := NewTokenManager("secret-b", time.Hour)

	token, err := tm.CreateToken(&model.User{Base: model.Base{ID: 1}, Role: model.RoleAdmin})
	require.NoError(t, err)

	_, err = other.CheckToken(token)
	assert.Error(t, err)
}

func TestTokenExpiryRejected(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", -time.Minute)

	token, err := tm.CreateToken(&model.User{Base: model.Base{ID: 1}})
	require.NoError(t, err)

	_, err = tm.CheckToken(token)
	assert.Error(t, err)
}

func TestTokenGarbageRejected(t *testing.T) {
	tm := NewTokenManager("unit-test-secret", time.Hour)
	_, err := tm.CheckToken("not-a-jwt")
	assert.Error(t, err)
}
