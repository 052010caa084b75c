package usecase

import (
	"context"
	"errors"

	"github.com/spooky-finn/go-okx-orderbook/domain"
	"github.com/spooky-finn/go-okx-orderbook/infrastructure/logger"
)

type OrderBookSnapshotUseCase struct {
	storage  *domain.OrderBookStorage
	provider domain.SnapshotProvider
	logger   logger.Logger
}

func NewOrderBookSnapshotUseCase(
	storage *domain.OrderBookStorage,
	provider domain.SnapshotProvider,
) *OrderBookSnapshotUseCase {
	return &OrderBookSnapshotUseCase{
		storage:  storage,
		provider: provider,
		logger:   logger.For("orderbook-snapshot-usecase"),
	}
}

// GetOrderBookSnapshot returns the orderbook snapshot from the runtime storage or, while the
// local book is not ready yet, from the provider api.
func (o *OrderBookSnapshotUseCase) GetOrderBookSnapshot(
	ctx context.Context, symbol *domain.MarketSymbol, limit int, canonical bool,
) (*domain.OrderBookSnapshot, error) {
	orderbook, err := o.storage.Get(symbol.InstID())
	if err == nil {
		if canonical {
			return orderbook.TakeCanonicalSnapshot(limit), nil
		}
		return orderbook.TakeSnapshot(limit), nil
	}
	if !errors.Is(err, domain.ErrOrderBookNotFound) {
		return nil, err
	}

	o.logger.Debug().Str("symbol", symbol.InstID()).Msg("local orderbook is not ready, provider snapshot returned")

	raw, err := o.provider.OrderBookSnapshot(ctx, symbol.InstID())
	if err != nil {
		return nil, err
	}
	orderbook, err = domain.NewOrderBookFromSnapshot(raw)
	if err != nil {
		return nil, err
	}

	snapshot := orderbook.TakeSnapshot(limit)
	if canonical {
		snapshot = orderbook.TakeCanonicalSnapshot(limit)
	}
	snapshot.Source = domain.OrderBookSource_Provider
	return snapshot, nil
}
