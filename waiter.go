// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wq

// Parked producers and consumers are explicit continuation records kept in
// FIFO deques. A record is resolved at most once: result fields are written
// under the queue mutex, then the signal channel is closed after the mutex
// is released so a resumed goroutine never re-enters the lock synchronously.
//
// Cancellation marks the record under the mutex; the deque unlinks marked
// records lazily when they reach the front. The mark is O(1) and never
// reorders the waiters behind it.

// takeMode selects what a parked consumer is waiting for.
type takeMode int8

const (
	takeOne   takeMode = iota // exactly one item
	takeSome                  // whatever is immediately available
	takeCount                 // exactly want items, accumulated incrementally
)

// taker is a parked consumer continuation.
type taker[T any] struct {
	mode takeMode
	want int
	acc  []T // partial result of a takeCount request

	items     []T
	err       error
	resolved  bool
	cancelled bool
	signal    chan struct{}
}

func newTaker[T any](mode takeMode, want int) *taker[T] {
	return &taker[T]{mode: mode, want: want, signal: make(chan struct{})}
}

// offerer is a parked producer continuation holding the sub-sequence still
// to be admitted. The admitted prefix of its original sequence is already in
// the buffer and is never rolled back, even on cancellation.
type offerer[T any] struct {
	pending []T

	remainder []T // unadmitted items at resolution time
	admitted  bool
	resolved  bool
	cancelled bool
	signal    chan struct{}
}

func newOfferer[T any](pending []T) *offerer[T] {
	return &offerer[T]{pending: pending, signal: make(chan struct{})}
}

// awaiter is a continuation parked on Await, resolved once the queue is
// closed and drained.
type awaiter struct {
	err       error
	resolved  bool
	cancelled bool
	signal    chan struct{}
}

// closeAll fires collected wake signals. Must be called after the queue
// mutex has been released.
func closeAll(wake []chan struct{}) {
	for _, ch := range wake {
		close(ch)
	}
}
