package rpc

import (
	"context"
	"math"
	"strconv"

	"github.com/spooky-finn/go-okx-orderbook/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const maxDepthLimit = math.MaxInt32

func (s *server) GetOrderBookSnapshot(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()

	instID := fields["instId"].GetStringValue()
	marketSymbol, err := domain.NewMarketSymbolFromString(instID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid market symbol %q. Correct market symbol should use - as a separator", instID)
	}
	if !s.validationService.IsSupportedSymbol(marketSymbol) {
		return nil, status.Errorf(codes.InvalidArgument, "symbol %s is not supported", marketSymbol)
	}

	maxDepth := fields["maxDepth"].GetNumberValue()
	if maxDepth < 0 || maxDepth > maxDepthLimit || maxDepth != math.Trunc(maxDepth) {
		return nil, status.Errorf(codes.InvalidArgument, "maxDepth must be a whole number in [0, %d], got %v", maxDepthLimit, maxDepth)
	}

	snapshot, err := s.orderbookSnapshotUseCase.GetOrderBookSnapshot(
		ctx, marketSymbol, int(maxDepth), fields["canonical"].GetBoolValue(),
	)
	if err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"instId": marketSymbol.InstID(),
		"source": string(snapshot.Source),
		// uint64 milliseconds do not fit a float64 exactly
		"ts":   strconv.FormatUint(snapshot.Timestamp, 10),
		"asks": levelsToList(snapshot.Asks),
		"bids": levelsToList(snapshot.Bids),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func levelsToList(levels []domain.PriceLevel) []interface{} {
	out := make([]interface{}, 0, len(levels))
	for _, level := range levels {
		out = append(out, []interface{}{level.Price, level.Size})
	}
	return out
}
