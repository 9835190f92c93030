// Package actor provides the one-shot reply primitive shared by every
// actor's message protocol: a request message carries a Reply, the
// handler completes it exactly once, and the caller waits on it the
// same way a oneshot channel is awaited.
package actor

import (
	"context"

	"mossd/internal/errors"
)

// Result is the value carried back over a Reply.
type Result[T any] struct {
	Value T
	Err   error
}

// Reply is a single-slot reply channel embedded in a request message.
// It is buffered so that a handler never blocks sending its answer and
// never panics, even when the waiting caller has given up. A reply that
// cannot be delivered is dropped without logging.
type Reply[T any] chan Result[T]

// NewReply creates a reply channel for a fresh request.
func NewReply[T any]() Reply[T] {
	return make(Reply[T], 1)
}

// Send completes the reply exactly once. It never blocks.
func (r Reply[T]) Send(value T, err error) {
	select {
	case r <- Result[T]{Value: value, Err: err}:
	default:
	}
}

// Wait blocks for the reply or for ctx to be done, whichever comes first.
func (r Reply[T]) Wait(ctx context.Context) (T, error) {
	var zero T

	select {
	case res := <-r:
		return res.Value, res.Err
	case <-ctx.Done():
		return zero, errors.Wrap(errors.ErrChannelRX, ctx.Err())
	}
}

// Send delivers msg to mailbox, honoring ctx cancellation. It models the
// "senders wait" back-pressure rule for a bounded, capacity>=16 mailbox.
func Send[M any](ctx context.Context, mailbox chan<- M, msg M) error {
	select {
	case mailbox <- msg:
		return nil
	case <-ctx.Done():
		return errors.Wrap(errors.ErrChannelTX, ctx.Err())
	}
}

// MailboxCapacity is the minimum bounded-queue capacity required of
// every actor mailbox by the actor contract.
const MailboxCapacity = 16
