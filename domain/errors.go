package domain

import "errors"

var (
	// The websocket could not be established or was lost mid-read.
	ErrConnection = errors.New("connection error")
	// The consumer side of a subscription is gone.
	ErrChannelSend = errors.New("channel send error")
	// Malformed JSON or a missing required field.
	ErrDeserialization = errors.New("deserialization error")

	ErrEmptyData        = errors.New("empty response data")
	ErrInvalidPriceData = errors.New("invalid price data: NaN or infinite values")
	ErrInvalidTimestamp = errors.New("invalid timestamp format")

	// The exchange answered the subscribe request with an error event.
	ErrSubscriptionRejected = errors.New("subscription rejected")
	// The maintainer had to drop and re-fetch the book too many times.
	ErrTooManyResyncs = errors.New("too many resyncs")

	ErrOrderBookNotFound = errors.New("order book not found")
	ErrInvalidSymbol     = errors.New("invalid symbol")
)
