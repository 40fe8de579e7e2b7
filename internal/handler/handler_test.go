package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintgate/event-platform/internal/handler"
	"github.com/mintgate/event-platform/internal/ledger"
)

const tenthEther = "100000000000000000"

var (
	organizer = "0x" + strings.Repeat("a1", 20)
	buyer     = "0x" + strings.Repeat("b2", 20)
	other     = "0x" + strings.Repeat("c3", 20)
)

type fixture struct {
	e       *echo.Echo
	ledger  *ledger.Ledger
	events  *handler.EventHandler
	tickets *handler.TicketHandler
	wl      *handler.WhitelistHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	l := ledger.New(ledger.NewMemoryStore(), nil, ledger.OverpaymentRetain)
	return &fixture{
		e:       echo.New(),
		ledger:  l,
		events:  handler.NewEventHandler(l),
		tickets: &handler.TicketHandler{Ledger: l}, // Publish off in tests
		wl:      handler.NewWhitelistHandler(l),
	}
}

// request builds an echo context carrying an optional JSON body and the
// caller identity the JWT middleware would have injected.
func (f *fixture) request(method, target, body, caller string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if caller != "" {
		c.Set("addr", caller)
	}
	return c, rec
}

func (f *fixture) createEvent(t *testing.T, body string) uint64 {
	t.Helper()
	c, rec := f.request(http.MethodPost, "/v1/events", body, organizer)
	require.NoError(t, f.events.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		ID uint64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)
	c, rec := f.request(http.MethodPost, "/v1/events",
		`{"name":"Launch Party","date":1767225600,"price_wei":"`+tenthEther+`","ticket_supply":100}`,
		organizer)
	require.NoError(t, f.events.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Launch Party", body["name"])
	assert.Equal(t, tenthEther, body["price_wei"], "price serialized as a decimal string")
	assert.Equal(t, organizer, body["organizer"])
}

func TestCreateEventRejectsBadPrice(t *testing.T) {
	f := newFixture(t)
	c, rec := f.request(http.MethodPost, "/v1/events",
		`{"name":"Show","price_wei":"0.1 ether","ticket_supply":10}`, organizer)
	require.NoError(t, f.events.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEventRequiresCaller(t *testing.T) {
	f := newFixture(t)
	c, rec := f.request(http.MethodPost, "/v1/events", `{"name":"Show","ticket_supply":10}`, "")
	require.NoError(t, f.events.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetEventNotFound(t *testing.T) {
	f := newFixture(t)
	c, rec := f.request(http.MethodGet, "/v1/events/42", "", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	require.NoError(t, f.events.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPurchaseFlow(t *testing.T) {
	f := newFixture(t)
	id := f.createEvent(t, `{"name":"Show","price_wei":"`+tenthEther+`","ticket_supply":2}`)

	c, rec := f.request(http.MethodPost, "/v1/events/1/purchase",
		`{"payment_wei":"`+tenthEther+`"}`, buyer)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, f.tickets.Purchase(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, float64(1), body["quantity"])
	require.Len(t, body["token_ids"], 1)

	sold, err := f.ledger.GetEvent(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), sold.TicketsSold)
}

func TestPurchaseInsufficientPayment(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, `{"name":"Show","price_wei":"`+tenthEther+`","ticket_supply":2}`)

	c, rec := f.request(http.MethodPost, "/v1/events/1/purchase",
		`{"payment_wei":"50000000000000000"}`, buyer)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, f.tickets.Purchase(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseSoldOut(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, `{"name":"Show","price_wei":"0","ticket_supply":1}`)

	c, _ := f.request(http.MethodPost, "/v1/events/1/purchase", `{"payment_wei":"0"}`, buyer)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, f.tickets.Purchase(c))

	c, rec := f.request(http.MethodPost, "/v1/events/1/purchase", `{"payment_wei":"0"}`, other)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, f.tickets.Purchase(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPurchaseGatedDenied(t *testing.T) {
	// A nil gate denies every gated purchase.
	f := newFixture(t)
	f.createEvent(t, `{"name":"Show","price_wei":"0","ticket_supply":5,"is_token_gated":true,"gate_token":"`+other+`"}`)

	c, rec := f.request(http.MethodPost, "/v1/events/1/purchase", `{"payment_wei":"0"}`, buyer)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, f.tickets.Purchase(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTransferFlow(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, `{"name":"Show","price_wei":"0","ticket_supply":5}`)
	tokenIDs, err := f.ledger.Purchase(context.Background(), 1, buyer, 0, 1)
	require.NoError(t, err)

	c, rec := f.request(http.MethodPost, "/v1/tickets/1/transfer", `{"to":"`+other+`"}`, buyer)
	c.SetParamNames("tokenId")
	c.SetParamValues("1")
	require.NoError(t, f.tickets.Transfer(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	owner, err := f.ledger.OwnerOf(context.Background(), tokenIDs[0])
	require.NoError(t, err)
	assert.Equal(t, other, owner)
}

func TestTransferWrongOwner(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, `{"name":"Show","price_wei":"0","ticket_supply":5}`)
	_, err := f.ledger.Purchase(context.Background(), 1, buyer, 0, 1)
	require.NoError(t, err)

	c, rec := f.request(http.MethodPost, "/v1/tickets/1/transfer", `{"to":"`+organizer+`"}`, other)
	c.SetParamNames("tokenId")
	c.SetParamValues("1")
	require.NoError(t, f.tickets.Transfer(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBalanceAndEnumeration(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, `{"name":"Show","price_wei":"0","ticket_supply":5}`)
	_, err := f.ledger.Purchase(context.Background(), 1, buyer, 0, 2)
	require.NoError(t, err)

	c, rec := f.request(http.MethodGet, "/v1/accounts/"+buyer+"/balance", "", "")
	c.SetParamNames("address")
	c.SetParamValues(buyer)
	require.NoError(t, f.tickets.Balance(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["balance"])

	c, rec = f.request(http.MethodGet, "/v1/accounts/"+buyer+"/tickets", "", "")
	c.SetParamNames("address")
	c.SetParamValues(buyer)
	require.NoError(t, f.tickets.Owned(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["tickets"], 2)

	// Enumeration index past the end maps to 400.
	c, rec = f.request(http.MethodGet, "/v1/accounts/"+buyer+"/tickets?index=2", "", "")
	c.SetParamNames("address")
	c.SetParamValues(buyer)
	require.NoError(t, f.tickets.Owned(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWhitelistEndpoints(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, `{"name":"Show","price_wei":"0","ticket_supply":5,"is_token_gated":true,"gate_token":"`+other+`"}`)

	// Non-organizer edits are forbidden.
	c, rec := f.request(http.MethodPost, "/v1/events/1/whitelist", `{"addresses":["`+buyer+`"]}`, buyer)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, f.wl.Add(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = f.request(http.MethodPost, "/v1/events/1/whitelist", `{"addresses":["`+buyer+`"]}`, organizer)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, f.wl.Add(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	c, rec = f.request(http.MethodGet, "/v1/events/1/whitelist/"+buyer, "", "")
	c.SetParamNames("id", "address")
	c.SetParamValues("1", buyer)
	require.NoError(t, f.wl.Check(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["whitelisted"])

	c, rec = f.request(http.MethodDelete, "/v1/events/1/whitelist", `{"addresses":["`+buyer+`"]}`, organizer)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, f.wl.Remove(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = f.request(http.MethodGet, "/v1/events/1/whitelist/"+buyer, "", "")
	c.SetParamNames("id", "address")
	c.SetParamValues("1", buyer)
	require.NoError(t, f.wl.Check(c))
	assert.Equal(t, false, decode(t, rec)["whitelisted"])
}

func TestEventCountAndList(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, `{"name":"One","price_wei":"0","ticket_supply":5}`)
	f.createEvent(t, `{"name":"Two","price_wei":"0","ticket_supply":5}`)

	c, rec := f.request(http.MethodGet, "/v1/events/count", "", "")
	require.NoError(t, f.events.Count(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["count"])

	c, rec = f.request(http.MethodGet, "/v1/events", "", "")
	require.NoError(t, f.events.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["events"], 2)

	c, rec = f.request(http.MethodGet, "/v1/accounts/"+organizer+"/events", "", "")
	c.SetParamNames("address")
	c.SetParamValues(organizer)
	require.NoError(t, f.events.ByOrganizer(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["events"], 2)
}
