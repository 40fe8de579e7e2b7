package oracle_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintgate/event-platform/internal/oracle"
)

func TestBalanceQueriesTheOracle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/balance", r.URL.Path)
		assert.Equal(t, "0xgate", r.URL.Query().Get("contract"))
		assert.Equal(t, "0xbuyer", r.URL.Query().Get("address"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance": 5}`))
	}))
	defer srv.Close()

	c := oracle.NewClient(srv.URL, time.Second)
	bal, err := c.Balance(context.Background(), "0xgate", "0xbuyer")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), bal)
}

func TestBalanceNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := oracle.NewClient(srv.URL, time.Second)
	_, err := c.Balance(context.Background(), "0xgate", "0xbuyer")
	assert.Error(t, err)
}

func TestBalanceMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := oracle.NewClient(srv.URL, time.Second)
	_, err := c.Balance(context.Background(), "0xgate", "0xbuyer")
	assert.Error(t, err)
}

func TestBalanceRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	c := oracle.NewClient(srv.URL, time.Second)
	_, err := c.Balance(ctx, "0xgate", "0xbuyer")
	assert.Error(t, err)
}
