// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wq

import "context"

// Producer is the offer-side interface of a queue.
//
// Offer and OfferAll are potential suspension points for the calling
// goroutine under the backpressure strategy; TryOffer never suspends.
// All three report admission through their results and never return an
// error: a full buffer and a completed queue are data, not faults.
type Producer[T any] interface {
	// Offer admits one item. It reports true once the item has been
	// admitted and false if the queue completed, or ctx was cancelled,
	// before admission. Under the backpressure strategy a full buffer
	// parks the caller; under dropping a rejected item reports false;
	// under sliding an offer always reports true.
	Offer(ctx context.Context, elem T) bool

	// OfferAll admits a sequence as one coordinated call and returns the
	// sub-sequence that could not be admitted (nil on full success).
	// Relative order between the admitted prefix and the returned
	// remainder is preserved. Under backpressure the pending items may be
	// admitted across several wake cycles as space frees.
	OfferAll(ctx context.Context, elems []T) []T

	// TryOffer is Offer without the suspension point: a full buffer under
	// the backpressure strategy is a plain reject.
	TryOffer(elem T) bool
}

// Consumer is the take-side interface of a queue.
//
// The suspending operations resolve with ErrDone once the queue is closed
// and drained, or with the cause given to Fail exactly once before that.
type Consumer[T any] interface {
	// Take removes and returns the front item, suspending while the queue
	// is open and empty.
	Take(ctx context.Context) (T, error)

	// TakeN returns exactly n items in order, suspending until they are
	// available. n may exceed the capacity; items are accumulated
	// incrementally as producers are admitted.
	TakeN(ctx context.Context, n int) ([]T, error)

	// TakeAll atomically drains the items currently buffered, regardless
	// of completion state, without waiting for more. On an open, empty
	// queue it suspends and resolves with whatever becomes available.
	TakeAll(ctx context.Context) ([]T, error)

	// Poll removes and returns the front item if one is immediately
	// available. It never suspends: an open, empty queue yields
	// ErrWouldBlock and a closed, drained queue yields ErrDone.
	Poll() (T, error)
}

var (
	_ Producer[int] = (*Queue[int])(nil)
	_ Consumer[int] = (*Queue[int])(nil)
	_ Source[int]   = (*Queue[int])(nil)
)

// Source is the narrow consumer surface needed to pull a terminating
// sequence out of a queue, e.g. to back a stream: take until IsDone
// classifies the error as completion, propagate it otherwise, and Await
// the terminal result.
type Source[T any] interface {
	Take(ctx context.Context) (T, error)
	TakeAll(ctx context.Context) ([]T, error)
	Await(ctx context.Context) error
}
