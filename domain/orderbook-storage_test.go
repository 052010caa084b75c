package domain_test

import (
	"sync"
	"testing"

	"github.com/spooky-finn/go-okx-orderbook/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBookStorage(t *testing.T) {
	storage := domain.NewOrderBookStorage()

	_, err := storage.Get("BTC-USDT")
	assert.ErrorIs(t, err, domain.ErrOrderBookNotFound)

	ob := &domain.OrderBook{Timestamp: 1}
	storage.Add("BTC-USDT", ob)

	got, err := storage.Get("BTC-USDT")
	require.NoError(t, err)
	assert.Same(t, ob, got)
	assert.Equal(t, 1, storage.OrderBookCount())
}

func TestOrderBookStorage_ConcurrentAccess(t *testing.T) {
	storage := domain.NewOrderBookStorage()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(ts uint64) {
			defer wg.Done()
			storage.Add("BTC-USDT", &domain.OrderBook{Timestamp: ts})
		}(uint64(i))
		go func() {
			defer wg.Done()
			_, _ = storage.Get("BTC-USDT")
		}()
	}
	wg.Wait()

	_, err := storage.Get("BTC-USDT")
	assert.NoError(t, err)
}
