package okx

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/deque"
	"github.com/spooky-finn/go-okx-orderbook/domain"
	"github.com/spooky-finn/go-okx-orderbook/infrastructure/logger"
	promclient "github.com/spooky-finn/go-okx-orderbook/infrastructure/prometheus"
)

const defaultMaxResyncs = 10

// OrderbookMaintainer keeps the local book of one symbol in sync: it runs
// the stream, fetches the snapshot once the stream delivers, and applies
// every queued frame in arrival order.
//
// It is the only writer of the book. Each successful change produces a new
// book (copy on success) which is published to the storage, so readers
// never see a book being mutated.
type OrderbookMaintainer struct {
	symbol    string
	syncAPI   domain.SnapshotProvider
	streamAPI domain.StreamProvider
	storage   *domain.OrderBookStorage
	metrics   *promclient.Metrics
	logger    logger.Logger

	// Capacity of the delivery channel between the stream and the queue.
	QueueCapacity int
	// Consecutive rejected updates that are each answered with a fresh
	// snapshot. The next one ends Run. A successfully applied update resets
	// the count.
	MaxResyncs int
	// If set, every published book is offered here. Sends never block.
	OnUpdate chan *domain.OrderBook

	depthUpdateQueue deque.Deque[string]
	mu               sync.Mutex
	notify           chan struct{}

	book     *domain.OrderBook
	resyncs  int
	failures int
}

func NewOrderBookMaintainer(
	symbol string,
	syncAPI domain.SnapshotProvider,
	streamAPI domain.StreamProvider,
	storage *domain.OrderBookStorage,
	metrics *promclient.Metrics,
) *OrderbookMaintainer {
	return &OrderbookMaintainer{
		symbol:    symbol,
		syncAPI:   syncAPI,
		streamAPI: streamAPI,
		storage:   storage,
		metrics:   metrics,
		logger:    logger.For("okx-maintainer").With().Str("symbol", symbol).Logger(),

		QueueCapacity: domain.DefaultSubscriptionCapacity,
		MaxResyncs:    defaultMaxResyncs,

		notify: make(chan struct{}, 1),
	}
}

// Run blocks until the stream ends, ctx is done or the book cannot be kept
// in sync. A stream closed by the server yields nil.
func (m *OrderbookMaintainer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub := domain.NewSubscription[string](m.symbol, m.QueueCapacity)
	defer sub.Unsubscribe()

	streamErr := make(chan error, 1)
	go func() {
		streamErr <- m.streamAPI.Subscribe(ctx, m.symbol, sub)
	}()

	stopPump := m.runStreamSubscriber(ctx, sub)
	defer stopPump()

	var (
		streamDone bool
		streamRes  error
	)
	wait := func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.notify:
		case streamRes = <-streamErr:
			streamDone = true
			stopPump()
			m.drain(sub)
		}
		return nil
	}

	// the snapshot is taken once the stream delivers, so no delta is missed
	if err := wait(); err != nil {
		return err
	}
	if streamDone && m.pending() == 0 {
		return streamRes
	}
	if err := m.createOrderBook(ctx); err != nil {
		return err
	}

	for {
		if err := m.processQueue(ctx); err != nil {
			return err
		}
		if streamDone {
			if streamRes == nil {
				m.logger.Info().Msg("stream closed")
			}
			return streamRes
		}
		if err := wait(); err != nil {
			return err
		}
	}
}

// Resyncs reports how many times in total the book was re-fetched. Only
// valid once Run has returned.
func (m *OrderbookMaintainer) Resyncs() int {
	return m.resyncs
}

// runStreamSubscriber moves frames from the subscription into the unbounded
// queue so the stream never waits on book processing. The returned func
// stops the pump and waits for it; it is safe to call more than once.
func (m *OrderbookMaintainer) runStreamSubscriber(ctx context.Context, sub *domain.Subscription[string]) func() {
	pumpCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-pumpCtx.Done():
				return
			case msg := <-sub.Stream:
				m.enqueue(msg)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

// drain queues frames still buffered in the subscription. The pump must be
// stopped.
func (m *OrderbookMaintainer) drain(sub *domain.Subscription[string]) {
	for {
		select {
		case msg := <-sub.Stream:
			m.enqueue(msg)
		default:
			return
		}
	}
}

func (m *OrderbookMaintainer) enqueue(msg string) {
	m.mu.Lock()
	m.depthUpdateQueue.PushBack(msg)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *OrderbookMaintainer) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.depthUpdateQueue.Len()
}

func (m *OrderbookMaintainer) processQueue(ctx context.Context) error {
	for {
		m.mu.Lock()
		if m.depthUpdateQueue.Len() == 0 {
			m.mu.Unlock()
			return nil
		}
		msg := m.depthUpdateQueue.PopFront()
		m.mu.Unlock()

		if err := m.handleMessage(ctx, msg); err != nil {
			return err
		}
	}
}

func (m *OrderbookMaintainer) handleMessage(ctx context.Context, msg string) error {
	message, err := ParseMessage([]byte(msg))
	if err != nil {
		return m.rejectUpdate(ctx, err)
	}

	switch message.Kind {
	case MessageAck:
		return nil
	case MessageError:
		return fmt.Errorf("%w: code=%s msg=%s", domain.ErrSubscriptionRejected, message.Code, message.Msg)
	case MessageBooks, MessageDelta:
		for _, item := range message.Items {
			if message.Action == "snapshot" {
				book, err := domain.NewOrderBookFromSnapshotData(item)
				if err != nil {
					return m.rejectUpdate(ctx, err)
				}
				m.failures = 0
				m.publish(book)
				continue
			}

			next, err := m.book.WithUpdate(item)
			if err != nil {
				return m.rejectUpdate(ctx, err)
			}
			m.failures = 0
			m.metrics.UpdateApplied()
			m.publish(next)
		}
		return nil
	default:
		m.logger.Debug().Str("frame", msg).Msg("ignoring frame")
		return nil
	}
}

// rejectUpdate drops the local book and fetches a fresh snapshot.
func (m *OrderbookMaintainer) rejectUpdate(ctx context.Context, cause error) error {
	m.metrics.UpdateFailed()
	m.failures++
	if m.failures > m.MaxResyncs {
		return fmt.Errorf("%w: %d in a row, last error: %w", domain.ErrTooManyResyncs, m.failures-1, cause)
	}

	m.resyncs++
	m.logger.Warn().Err(cause).Int("resync", m.resyncs).Int("in_a_row", m.failures).Msg("update rejected, re-fetching snapshot")
	m.metrics.Resynced()
	return m.createOrderBook(ctx)
}

func (m *OrderbookMaintainer) createOrderBook(ctx context.Context) error {
	raw, err := m.syncAPI.OrderBookSnapshot(ctx, m.symbol)
	if err != nil {
		return err
	}

	book, err := domain.NewOrderBookFromSnapshot(raw)
	if err != nil {
		return err
	}

	m.logger.Info().
		Uint64("ts", book.Timestamp).
		Int("asks", len(book.Asks)).
		Int("bids", len(book.Bids)).
		Msg("snapshot loaded")
	m.publish(book)
	return nil
}

func (m *OrderbookMaintainer) publish(book *domain.OrderBook) {
	m.book = book
	m.storage.Add(m.symbol, book)
	m.metrics.SetBookLevels(m.symbol, len(book.Asks), len(book.Bids))

	if m.OnUpdate != nil {
		select {
		case m.OnUpdate <- book:
		default:
		}
	}
}
