package rpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/spooky-finn/go-okx-orderbook/domain"
	"github.com/spooky-finn/go-okx-orderbook/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type stubProvider struct {
	body string
	err  error
}

func (s *stubProvider) OrderBookSnapshot(ctx context.Context, symbol string) ([]byte, error) {
	return []byte(s.body), s.err
}

func startServer(t *testing.T, storage *domain.OrderBookStorage, provider domain.SnapshotProvider, symbols ...string) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	NewServer(
		usecase.NewOrderBookSnapshotUseCase(storage, provider),
		&ValidationServiceConfig{AvailableSymbols: symbols},
	).Register(s)

	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestGetOrderBookSnapshot_LocalBook(t *testing.T) {
	storage := domain.NewOrderBookStorage()
	storage.Add("BTC-USDT", &domain.OrderBook{
		Asks:      []domain.PriceLevel{{Price: 41006.8, Size: 0.6}, {Price: 41007, Size: 0.2}, {Price: 41007, Size: 0}},
		Bids:      []domain.PriceLevel{{Price: 41006.3, Size: 0.3}},
		Timestamp: 1719335318504,
	})
	client := NewClient(startServer(t, storage, &stubProvider{}, "BTC-USDT"))

	t.Run("Raw", func(t *testing.T) {
		snapshot, err := client.GetOrderBookSnapshot(context.Background(), "btc-usdt", 0, false)
		require.NoError(t, err)

		assert.Equal(t, domain.OrderBookSource_LocalOrderBook, snapshot.Source)
		assert.Equal(t, uint64(1719335318504), snapshot.Timestamp)
		assert.Len(t, snapshot.Asks, 3)
		assert.Equal(t, []domain.PriceLevel{{Price: 41006.3, Size: 0.3}}, snapshot.Bids)
	})

	t.Run("CanonicalLimited", func(t *testing.T) {
		snapshot, err := client.GetOrderBookSnapshot(context.Background(), "BTC-USDT", 1, true)
		require.NoError(t, err)

		assert.Equal(t, []domain.PriceLevel{{Price: 41006.8, Size: 0.6}}, snapshot.Asks)
	})
}

func TestGetOrderBookSnapshot_ProviderFallback(t *testing.T) {
	provider := &stubProvider{body: `{"code":"0","msg":"","data":[{"asks":[["100","1","0","1"]],"bids":[["99","2","0","1"]],"ts":"5"}]}`}
	client := NewClient(startServer(t, domain.NewOrderBookStorage(), provider, "BTC-USDT"))

	snapshot, err := client.GetOrderBookSnapshot(context.Background(), "BTC-USDT", 0, false)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderBookSource_Provider, snapshot.Source)
	assert.Equal(t, uint64(5), snapshot.Timestamp)
	assert.Equal(t, []domain.PriceLevel{{Price: 100, Size: 1}}, snapshot.Asks)
	assert.Equal(t, []domain.PriceLevel{{Price: 99, Size: 2}}, snapshot.Bids)
}

func TestGetOrderBookSnapshot_Errors(t *testing.T) {
	client := NewClient(startServer(t, domain.NewOrderBookStorage(), &stubProvider{err: errors.New("exchange down")}, "BTC-USDT"))

	tests := []struct {
		name     string
		instID   string
		maxDepth int
		code     codes.Code
	}{
		{"MalformedSymbol", "BTCUSDT", 0, codes.InvalidArgument},
		{"UnsupportedSymbol", "ETH-USDT", 0, codes.InvalidArgument},
		{"NegativeDepth", "BTC-USDT", -1, codes.InvalidArgument},
		{"ProviderDown", "BTC-USDT", 0, codes.Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.GetOrderBookSnapshot(context.Background(), tt.instID, tt.maxDepth, false)
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestGetOrderBookSnapshot_InvalidMaxDepth(t *testing.T) {
	conn := startServer(t, domain.NewOrderBookStorage(), &stubProvider{}, "BTC-USDT")

	tests := []struct {
		name     string
		maxDepth interface{}
	}{
		{"Fractional", 1.5},
		{"Huge", 1e20},
		{"Negative", -3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := structpb.NewStruct(map[string]interface{}{
				"instId":   "BTC-USDT",
				"maxDepth": tt.maxDepth,
			})
			require.NoError(t, err)

			err = conn.Invoke(context.Background(), "/okxbook.OrderBookService/GetOrderBookSnapshot", in, new(structpb.Struct))
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestSnapshotFromStruct_BadLevel(t *testing.T) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"source": "Provider",
		"ts":     "1",
		"asks":   []interface{}{[]interface{}{1.0}},
		"bids":   []interface{}{},
	})
	require.NoError(t, err)

	_, err = snapshotFromStruct(s)
	assert.ErrorIs(t, err, domain.ErrDeserialization)
}
