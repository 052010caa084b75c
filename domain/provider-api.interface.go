package domain

import "context"

// SnapshotProvider fetches the raw REST snapshot envelope for a symbol.
type SnapshotProvider interface {
	OrderBookSnapshot(ctx context.Context, symbol string) ([]byte, error)
}

// StreamProvider subscribes to a symbol's book channel and forwards every
// text frame to out until the connection closes.
type StreamProvider interface {
	Subscribe(ctx context.Context, symbol string, out MessageSink) error
}
