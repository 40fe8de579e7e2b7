package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mintgate/event-platform/internal/ledger"
)

// callerAddress extracts the wallet address placed in the context by the
// JWT middleware.  Mutating ledger endpoints attribute every call to
// this identity.
func callerAddress(c echo.Context) (string, error) {
	if v, ok := c.Get("addr").(string); ok && v != "" {
		return v, nil
	}
	return "", errors.New("missing wallet address in context")
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// ledgerError translates ledger sentinel errors into HTTP responses.
// Unknown errors become 500 without leaking internals.
func ledgerError(c echo.Context, err error) error {
	var status int
	switch {
	case errors.Is(err, ledger.ErrEventNotFound),
		errors.Is(err, ledger.ErrTicketNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, ledger.ErrInsufficientPayment),
		errors.Is(err, ledger.ErrIndexOutOfRange):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrUnauthorized),
		errors.Is(err, ledger.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrSoldOut),
		errors.Is(err, ledger.ErrCapacityExceeded),
		errors.Is(err, ledger.ErrInvalidTransfer):
		status = http.StatusConflict
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
