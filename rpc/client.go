package rpc

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spooky-finn/go-okx-orderbook/domain"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls okxbook.OrderBookService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetOrderBookSnapshot(
	ctx context.Context, instID string, maxDepth int, canonical bool, opts ...grpc.CallOption,
) (*domain.OrderBookSnapshot, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"instId":    instID,
		"maxDepth":  maxDepth,
		"canonical": canonical,
	})
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetOrderBookSnapshot", in, out, opts...); err != nil {
		return nil, err
	}

	return snapshotFromStruct(out)
}

func snapshotFromStruct(s *structpb.Struct) (*domain.OrderBookSnapshot, error) {
	fields := s.GetFields()

	ts, err := strconv.ParseUint(fields["ts"].GetStringValue(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidTimestamp, err)
	}
	asks, err := levelsFromList(fields["asks"].GetListValue())
	if err != nil {
		return nil, err
	}
	bids, err := levelsFromList(fields["bids"].GetListValue())
	if err != nil {
		return nil, err
	}

	return &domain.OrderBookSnapshot{
		Source:    domain.OrderBookSource(fields["source"].GetStringValue()),
		Timestamp: ts,
		Asks:      asks,
		Bids:      bids,
	}, nil
}

func levelsFromList(list *structpb.ListValue) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		pair := v.GetListValue().GetValues()
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: level %d has %d elements", domain.ErrDeserialization, i, len(pair))
		}
		levels = append(levels, domain.PriceLevel{
			Price: pair[0].GetNumberValue(),
			Size:  pair[1].GetNumberValue(),
		})
	}
	return levels, nil
}
