package okx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spooky-finn/go-okx-orderbook/domain"
)

const (
	DefaultRestEndpoint = "https://www.okx.com"

	booksPath      = "/api/v5/market/books"
	requestTimeout = 30 * time.Second
	userAgent      = "go-okx-orderbook/1.0"
)

// SyncAPI fetches order book snapshots from the OKX REST API.
type SyncAPI struct {
	endpoint string
	depth    int
	client   *http.Client
}

// NewSyncAPI returns a client for endpoint. depth is passed as sz, 0 leaves
// it to the exchange.
func NewSyncAPI(endpoint string, depth int) (*SyncAPI, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse rest endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse rest endpoint: %q is not an absolute url", endpoint)
	}

	return &SyncAPI{
		endpoint: strings.TrimRight(endpoint, "/"),
		depth:    depth,
		client:   &http.Client{Timeout: requestTimeout},
	}, nil
}

// OrderBookSnapshot returns the raw snapshot envelope for symbol.
func (api *SyncAPI) OrderBookSnapshot(ctx context.Context, symbol string) ([]byte, error) {
	query := url.Values{}
	query.Set("instId", symbol)
	if api.depth > 0 {
		query.Set("sz", strconv.Itoa(api.depth))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.endpoint+booksPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := api.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get order book snapshot: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("failed to get order book snapshot: status %d, body: %s", res.StatusCode, body)
	}

	return body, nil
}

// Snapshot fetches and decodes the snapshot for symbol.
func (api *SyncAPI) Snapshot(ctx context.Context, symbol string) (*domain.OrderBook, error) {
	body, err := api.OrderBookSnapshot(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return domain.NewOrderBookFromSnapshot(body)
}
