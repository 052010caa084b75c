package domain

import (
	"context"
	"fmt"
	"sync"
)

const DefaultSubscriptionCapacity = 100

// MessageSink receives raw frames from a stream.
type MessageSink interface {
	Send(ctx context.Context, msg string) error
}

// Subscription is the delivery channel between a stream producer and its
// consumer. The consumer reads Stream and calls Unsubscribe when it stops
// reading; any later Send fails with ErrChannelSend.
type Subscription[T any] struct {
	Stream chan T
	Topic  string

	done chan struct{}
	once sync.Once
}

func NewSubscription[T any](topic string, capacity int) *Subscription[T] {
	if capacity < 0 {
		capacity = 0
	}

	return &Subscription[T]{
		Stream: make(chan T, capacity),
		Topic:  topic,
		done:   make(chan struct{}),
	}
}

func (s *Subscription[T]) Send(ctx context.Context, v T) error {
	select {
	case <-s.done:
		return fmt.Errorf("%w: %s unsubscribed", ErrChannelSend, s.Topic)
	default:
	}

	select {
	case s.Stream <- v:
		return nil
	case <-s.done:
		return fmt.Errorf("%w: %s unsubscribed", ErrChannelSend, s.Topic)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Subscription[T]) Unsubscribe() {
	s.once.Do(func() { close(s.done) })
}
