package okx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spooky-finn/go-okx-orderbook/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncAPI_Snapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v5/market/books", r.URL.Path)
		assert.Equal(t, "BTC-USDT", r.URL.Query().Get("instId"))
		assert.Equal(t, "5", r.URL.Query().Get("sz"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[{"asks":[["50000","1","0","7"]],"bids":[["49999","1","0","6"]],"ts":"1719335318504"}]}`))
	}))
	defer srv.Close()

	api, err := NewSyncAPI(srv.URL+"/", 5)
	require.NoError(t, err)

	ob, err := api.Snapshot(context.Background(), "BTC-USDT")
	require.NoError(t, err)

	assert.Equal(t, []domain.PriceLevel{{Price: 50000, Size: 1}}, ob.Asks)
	assert.Equal(t, []domain.PriceLevel{{Price: 49999, Size: 1}}, ob.Bids)
	assert.Equal(t, uint64(1719335318504), ob.Timestamp)
}

func TestSyncAPI_NoDepth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("sz"), "sz should be omitted when depth is 0")
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[]}`))
	}))
	defer srv.Close()

	api, err := NewSyncAPI(srv.URL, 0)
	require.NoError(t, err)

	raw, err := api.OrderBookSnapshot(context.Background(), "BTC-USDT")
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"0","msg":"","data":[]}`, string(raw))

	_, err = api.Snapshot(context.Background(), "BTC-USDT")
	assert.ErrorIs(t, err, domain.ErrEmptyData)
}

func TestSyncAPI_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"50011","msg":"Too Many Requests"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	api, err := NewSyncAPI(srv.URL, 0)
	require.NoError(t, err)

	_, err = api.OrderBookSnapshot(context.Background(), "BTC-USDT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestNewSyncAPI_InvalidEndpoint(t *testing.T) {
	_, err := NewSyncAPI("not a url", 0)
	assert.Error(t, err)

	_, err = NewSyncAPI("://bad", 0)
	assert.Error(t, err)
}
