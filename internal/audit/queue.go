package audit

import (
	"context"
	"errors"
)

// ErrQueueFull is returned when the audit queue cannot accept another event.
var ErrQueueFull = errors.New("audit queue full")

// ChannelSink hands events to a background Worker. Append never blocks: if
// the queue is full the event is dropped with an error, which the publisher
// side logs. Losing an audit event is preferable to stalling a provisioning
// request on a slow broker.
type ChannelSink struct {
	ch chan Event
}

func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, size)}
}

func (s *ChannelSink) Append(_ context.Context, event Event) error {
	select {
	case s.ch <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Events is the worker side of the queue.
func (s *ChannelSink) Events() <-chan Event {
	return s.ch
}
