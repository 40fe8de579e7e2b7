package utils_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintgate/event-platform/internal/utils"
)

func TestNewAccessTokenCarriesIdentityClaims(t *testing.T) {
	const secret = "test-secret"
	wallet := "0x" + strings.Repeat("ab", 20)

	at, err := utils.NewAccessToken(secret, 7, wallet, 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, 5*time.Second)

	tok, err := jwt.Parse(at.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(7), claims["sub"])
	assert.Equal(t, wallet, claims["addr"])
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("right", 1, "0x"+strings.Repeat("ab", 20), 15)
	require.NoError(t, err)

	_, err = jwt.Parse(at.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	})
	assert.Error(t, err)
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := utils.NewRefreshToken(30)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96)
	assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), rt.Exp, 5*time.Second)

	h1 := utils.HashRefreshRaw(rt.Raw)
	h2 := utils.HashRefreshRaw(rt.Raw)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, rt.Raw, h1)
	assert.Len(t, h1, 64)

	other, err := utils.NewRefreshToken(30)
	require.NoError(t, err)
	assert.NotEqual(t, utils.HashRefreshRaw(other.Raw), h1)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := utils.HashPassword("hunter2-but-longer", 4)
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(hash, "hunter2-but-longer"))
	assert.False(t, utils.VerifyPassword(hash, "wrong password"))
}
