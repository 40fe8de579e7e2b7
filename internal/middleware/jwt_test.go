package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintgate/event-platform/internal/middleware"
	"github.com/mintgate/event-platform/internal/utils"
)

const secret = "test-secret"

func runJWT(t *testing.T, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := middleware.JWTAuth(secret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthInjectsIdentity(t *testing.T) {
	wallet := "0x" + strings.Repeat("AB", 20)
	at, err := utils.NewAccessToken(secret, 7, wallet, 15)
	require.NoError(t, err)

	rec, c := runJWT(t, "Bearer "+at.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, uint64(7), c.Get("user_id"))
	assert.Equal(t, strings.ToLower(wallet), c.Get("addr"))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 7, "0x"+strings.Repeat("ab", 20), 15)
	require.NoError(t, err)
	rec, _ := runJWT(t, "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	at, err := utils.NewAccessToken(secret, 7, "0x"+strings.Repeat("ab", 20), -5)
	require.NoError(t, err)
	rec, _ := runJWT(t, "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsTokenWithoutWallet(t *testing.T) {
	at, err := utils.NewAccessToken(secret, 7, "not-an-address", 15)
	require.NoError(t, err)
	rec, _ := runJWT(t, "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
