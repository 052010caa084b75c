package domain

import "sync"

// OrderBookStorage holds the latest published book per symbol. Published
// books are never mutated afterwards, so readers may use them freely.
type OrderBookStorage struct {
	mu      sync.RWMutex
	storage map[string]*OrderBook
}

func NewOrderBookStorage() *OrderBookStorage {
	return &OrderBookStorage{
		storage: make(map[string]*OrderBook),
	}
}

func (o *OrderBookStorage) Add(symbol string, orderBook *OrderBook) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.storage[symbol] = orderBook
}

func (o *OrderBookStorage) Get(symbol string) (*OrderBook, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	ob, ok := o.storage[symbol]
	if !ok {
		return nil, ErrOrderBookNotFound
	}

	return ob, nil
}

func (o *OrderBookStorage) OrderBookCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return len(o.storage)
}
