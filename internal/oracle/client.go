// Package oracle provides the HTTP client for the external balance
// oracle used by gate checks.  The oracle answers how many units of a
// gate token an address holds.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client queries a balance oracle over HTTP.  The expected endpoint is
// GET {base}/v1/balance?contract=<gateToken>&address=<address> returning
// {"balance": <uint>}.
type Client struct {
	base string
	http *http.Client
}

// NewClient constructs a Client for the given base URL.  timeout bounds
// each request so a slow oracle cannot stall a purchase indefinitely.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

type balanceResponse struct {
	Balance uint64 `json:"balance"`
}

// Balance implements gate.BalanceOracle.
func (c *Client) Balance(ctx context.Context, gateToken, address string) (uint64, error) {
	q := url.Values{}
	q.Set("contract", gateToken)
	q.Set("address", address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/balance?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}
	var body balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode oracle response: %w", err)
	}
	return body.Balance, nil
}
