package middleware

// identity.go provides the caller-identity helper shared by the rate
// limiter.  Authenticated requests are keyed by wallet address so one
// buyer cannot exhaust another's bucket; anonymous requests fall back to
// the client IP.

import (
	"github.com/labstack/echo/v4"
)

// callerIdentity returns the wallet address set by JWTAuth, or the
// client IP for unauthenticated requests.
func callerIdentity(c echo.Context) string {
	if v, ok := c.Get("addr").(string); ok && v != "" {
		return v
	}
	return c.RealIP()
}
