package okx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spooky-finn/go-okx-orderbook/domain"
	"github.com/spooky-finn/go-okx-orderbook/infrastructure/logger"
	promclient "github.com/spooky-finn/go-okx-orderbook/infrastructure/prometheus"
)

const (
	DefaultWebsocketEndpoint = "wss://ws.okx.com:8443/ws/v5/public"

	handshakeTimeout = 5 * time.Second
)

// StreamClient opens one websocket per Subscribe call and forwards every
// text frame it receives. It does not look inside the payloads.
type StreamClient struct {
	endpoint string
	dialer   *websocket.Dialer
	metrics  *promclient.Metrics
	logger   logger.Logger
}

func NewStreamClient(endpoint string, metrics *promclient.Metrics) *StreamClient {
	return &StreamClient{
		endpoint: endpoint,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		metrics: metrics,
		logger:  logger.For("okx-stream"),
	}
}

// Subscribe connects, sends the books subscription for symbol and forwards
// text frames to out in arrival order.
//
// It returns nil when the server closes the connection with a close frame,
// an ErrConnection error when the socket cannot be opened or breaks, an
// ErrChannelSend error when out is gone, and ctx.Err() on cancellation.
// Binary frames are dropped; ping and pong are answered by the transport.
func (c *StreamClient) Subscribe(ctx context.Context, symbol string, out domain.MessageSink) error {
	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", domain.ErrConnection, c.endpoint, err)
	}
	defer conn.Close()
	c.logger.Info().Str("endpoint", c.endpoint).Msg("websocket handshake has been successfully completed")

	// unblocks ReadMessage on cancellation
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.WriteJSON(NewSubscribeRequest(symbol)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: send subscribe request for %s: %w", domain.ErrConnection, symbol, err)
	}
	c.logger.Debug().Str("symbol", symbol).Msg("subscribe request sent")

	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code != websocket.CloseAbnormalClosure {
				c.logger.Info().
					Int("code", closeErr.Code).
					Str("reason", closeErr.Text).
					Msg("websocket connection closed")
				return nil
			}

			return fmt.Errorf("%w: read: %w", domain.ErrConnection, err)
		}

		if kind != websocket.TextMessage {
			continue
		}

		msg := string(payload)
		if IsSubscribeAck(msg) {
			c.logger.Info().Str("symbol", symbol).Msg("subscription confirmed")
		}

		if err := out.Send(ctx, msg); err != nil {
			return err
		}
		c.metrics.FrameForwarded()
	}
}
