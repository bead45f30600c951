// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wq

import (
	"context"
	"math"
	"slices"
	"sync"

	"code.hybscloud.com/atomix"
)

// Queue is a concurrent FIFO queue with suspension, admission strategies
// and a completion protocol. The zero value is not usable; construct one
// with [NewBounded], [NewUnbounded], [NewDropping], [NewSliding] or the
// [Builder].
//
// Every mutation of the buffer, the waiter deques and the completion state
// happens inside one critical section per queue, so each public operation
// is a single atomic state transition. Parked goroutines are woken after
// the mutex has been released.
//
// Items are delivered in the order they were admitted. Parked producers are
// admitted in the order they parked and parked consumers are served in the
// order they parked; cancellation of a waiter never reorders the others.
type Queue[T any] struct {
	mu       sync.Mutex
	buf      ring[T]
	takers   ring[*taker[T]]
	offerers ring[*offerer[T]]
	awaiters []*awaiter
	st       completion
	failSent bool

	capacity int // < 0: unbounded
	strategy strategy

	// Mirrors for the non-suspending observers. Written under mu, read
	// without it: IsDone, Size, IsEmpty, IsFull and the closed fast path
	// of the offer family stay lock-free.
	phase  atomix.Int32
	length atomix.Int64
}

func newQueue[T any](capacity int, s strategy) *Queue[T] {
	return &Queue[T]{
		buf:      newRing[T](),
		takers:   newRing[*taker[T]](),
		offerers: newRing[*offerer[T]](),
		capacity: capacity,
		strategy: s,
	}
}

// Cap returns the configured capacity, or -1 for an unbounded queue.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

// Size returns the number of buffered items. Never suspends.
func (q *Queue[T]) Size() int {
	return int(q.length.Load())
}

// IsEmpty reports whether no items are buffered. Never suspends.
func (q *Queue[T]) IsEmpty() bool {
	return q.Size() == 0
}

// IsFull reports whether a bounded buffer is at capacity. Always false for
// an unbounded queue. Never suspends.
func (q *Queue[T]) IsFull() bool {
	return q.capacity >= 0 && q.Size() >= q.capacity
}

// IsDone reports whether the queue has reached its terminal state: closed
// for any reason and fully drained. Never suspends.
func (q *Queue[T]) IsDone() bool {
	return lifecycle(q.phase.Load()) == stateClosed
}

// =============================================================================
// Offer path
// =============================================================================

// Offer admits one item, reporting true once it has been admitted.
//
// Once the queue is closing or closed, Offer reports false without touching
// the buffer. Under the backpressure strategy a full buffer parks the
// calling goroutine until a consumer frees space; cancelling ctx while
// parked reports false. Under dropping a rejected item reports false
// immediately; under sliding the oldest buffered item is evicted and Offer
// reports true.
func (q *Queue[T]) Offer(ctx context.Context, elem T) bool {
	return q.offer(ctx, elem, true)
}

// TryOffer is Offer without the suspension point: under the backpressure
// strategy a full buffer is a plain reject. Never suspends.
func (q *Queue[T]) TryOffer(elem T) bool {
	return q.offer(context.Background(), elem, false)
}

func (q *Queue[T]) offer(ctx context.Context, elem T, park bool) bool {
	if lifecycle(q.phase.Load()) != stateOpen {
		return false
	}
	var wake []chan struct{}
	q.mu.Lock()
	if !q.st.open() {
		q.mu.Unlock()
		return false
	}
	if q.spaceLocked() > 0 {
		q.buf.push(elem)
		q.rebalanceLocked(&wake)
		q.mu.Unlock()
		closeAll(wake)
		return true
	}
	// Capacity 0: hand the item straight through to a parked consumer.
	if q.peekTakerLocked() != nil {
		q.buf.push(elem)
		q.rebalanceLocked(&wake)
		q.mu.Unlock()
		closeAll(wake)
		return true
	}
	switch q.strategy {
	case strategyDropping:
		q.mu.Unlock()
		return false
	case strategySliding:
		q.buf.push(elem)
		q.evictLocked()
		q.rebalanceLocked(&wake)
		q.mu.Unlock()
		closeAll(wake)
		return true
	}
	if !park {
		q.mu.Unlock()
		return false
	}
	o := newOfferer[T]([]T{elem})
	q.offerers.push(o)
	q.mu.Unlock()

	select {
	case <-o.signal:
		return o.admitted
	case <-ctx.Done():
		q.mu.Lock()
		if o.resolved {
			q.mu.Unlock()
			return o.admitted
		}
		o.cancelled = true
		o.pending = nil
		// A cancelled offerer may have been the last live one holding a
		// closing queue open; re-settle before leaving.
		var wake []chan struct{}
		q.rebalanceLocked(&wake)
		q.mu.Unlock()
		closeAll(wake)
		return false
	}
}

// OfferAll admits a sequence as one coordinated call and returns the
// sub-sequence that could not be admitted, in order (nil on full success).
//
// Under the backpressure strategy the items not admitted immediately are
// carried by a parked continuation and published into the buffer in
// increments as consumers free space; the call resolves once the whole
// sequence has been admitted or the queue completed. If ctx is cancelled
// while parked, the prefix already admitted stays in the buffer and the
// unadmitted remainder is returned.
//
// Under dropping the remainder is returned immediately; under sliding
// everything is admitted and the oldest items are evicted, so the result
// is always nil.
func (q *Queue[T]) OfferAll(ctx context.Context, elems []T) []T {
	if len(elems) == 0 {
		return nil
	}
	if lifecycle(q.phase.Load()) != stateOpen {
		return elems
	}
	var wake []chan struct{}
	q.mu.Lock()
	if !q.st.open() {
		q.mu.Unlock()
		return elems
	}
	remaining := elems
	for len(remaining) > 0 {
		if n := q.spaceLocked(); n > 0 {
			k := min(n, len(remaining))
			for _, v := range remaining[:k] {
				q.buf.push(v)
			}
			remaining = remaining[k:]
			q.rebalanceLocked(&wake)
			continue
		}
		if q.peekTakerLocked() != nil {
			// Capacity 0 hand-off, one item per parked consumer.
			q.buf.push(remaining[0])
			remaining = remaining[1:]
			q.rebalanceLocked(&wake)
			continue
		}
		break
	}
	if len(remaining) == 0 {
		q.mu.Unlock()
		closeAll(wake)
		return nil
	}
	switch q.strategy {
	case strategyDropping:
		q.mu.Unlock()
		closeAll(wake)
		return remaining
	case strategySliding:
		for _, v := range remaining {
			q.buf.push(v)
			q.evictLocked()
		}
		q.rebalanceLocked(&wake)
		q.mu.Unlock()
		closeAll(wake)
		return nil
	}
	o := newOfferer[T](slices.Clone(remaining))
	q.offerers.push(o)
	q.mu.Unlock()
	closeAll(wake)

	select {
	case <-o.signal:
		return o.remainder
	case <-ctx.Done():
		q.mu.Lock()
		if o.resolved {
			rem := o.remainder
			q.mu.Unlock()
			return rem
		}
		o.cancelled = true
		rem := o.pending
		o.pending = nil
		var wake []chan struct{}
		q.rebalanceLocked(&wake)
		q.mu.Unlock()
		closeAll(wake)
		return rem
	}
}

// =============================================================================
// Take path
// =============================================================================

// Take removes and returns the front item. While the queue is open and
// empty the calling goroutine parks until an item arrives or the queue
// completes. Once the queue is closed and drained Take returns ErrDone,
// except that the cause given to Fail is delivered to exactly one consumer
// first. Cancelling ctx while parked returns ctx.Err().
func (q *Queue[T]) Take(ctx context.Context) (T, error) {
	items, err := q.dequeue(ctx, takeOne, 1)
	if err != nil {
		var zero T
		return zero, err
	}
	return items[0], nil
}

// TakeN waits until n items have been delivered to this call and returns
// exactly those n, in order. n may exceed the capacity: items are
// accumulated incrementally as producers are admitted. If the queue
// completes before n items arrive, the call resolves with the completion
// signal. n <= 0 returns an empty result immediately.
func (q *Queue[T]) TakeN(ctx context.Context, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	return q.dequeue(ctx, takeCount, n)
}

// TakeAll atomically drains every item currently buffered and returns them,
// regardless of completion state, without waiting for new items. On an
// open, empty queue it parks and resolves with whatever becomes available;
// on a closed, drained queue it resolves with the completion signal.
func (q *Queue[T]) TakeAll(ctx context.Context) ([]T, error) {
	return q.dequeue(ctx, takeSome, 0)
}

func (q *Queue[T]) dequeue(ctx context.Context, mode takeMode, want int) ([]T, error) {
	var wake []chan struct{}
	t := newTaker[T](mode, want)
	q.mu.Lock()
	q.takers.push(t)
	q.rebalanceLocked(&wake)
	if t.resolved {
		q.mu.Unlock()
		closeAll(wake)
		return t.items, t.err
	}
	q.mu.Unlock()
	closeAll(wake)

	select {
	case <-t.signal:
		return t.items, t.err
	case <-ctx.Done():
		q.mu.Lock()
		if t.resolved {
			q.mu.Unlock()
			return t.items, t.err
		}
		t.cancelled = true
		var wake []chan struct{}
		q.rebalanceLocked(&wake)
		q.mu.Unlock()
		closeAll(wake)
		return nil, ctx.Err()
	}
}

// Poll removes and returns the front item if one is immediately available.
// Never suspends: an open, empty queue yields ErrWouldBlock and a closed,
// drained queue yields ErrDone. Poll does not consume the once-only Fail
// cause; that is reserved for the suspending take family.
func (q *Queue[T]) Poll() (T, error) {
	var zero T
	var wake []chan struct{}
	q.mu.Lock()
	if q.buf.len() == 0 {
		// Capacity 0: pull one item through from a parked producer.
		if o := q.peekOffererLocked(); o != nil {
			q.buf.push(o.pending[0])
			o.pending = o.pending[1:]
			if len(o.pending) == 0 {
				q.offerers.pop()
				o.resolved, o.admitted = true, true
				wake = append(wake, o.signal)
			}
		}
	}
	if q.buf.len() == 0 {
		done := !q.st.open()
		q.mu.Unlock()
		if done {
			return zero, ErrDone
		}
		return zero, ErrWouldBlock
	}
	v := q.buf.pop()
	q.rebalanceLocked(&wake)
	q.mu.Unlock()
	closeAll(wake)
	return v, nil
}

// =============================================================================
// Completion protocol
// =============================================================================

// End requests a graceful close. Items already buffered and sequences
// already parked by producers are still delivered; once both have drained
// the queue is closed and the take family resolves with ErrDone. Offers
// after End report false. Idempotent: the first of End, Fail, Shutdown and
// Complete wins.
func (q *Queue[T]) End() {
	q.close(completion{life: stateClosing, why: reasonEnd})
}

// Fail requests a close with a terminal error. Items already buffered are
// still delivered in order; parked producers resolve immediately with their
// unadmitted remainder. Once the buffer is exhausted, cause is delivered to
// exactly one take-family call and every one after that gets ErrDone.
// Await resolves with cause. Idempotent.
func (q *Queue[T]) Fail(cause error) {
	q.close(completion{life: stateClosing, why: reasonFail, cause: cause})
}

// Complete dispatches on err: nil behaves like End, non-nil like Fail.
func (q *Queue[T]) Complete(err error) {
	if err == nil {
		q.End()
	} else {
		q.Fail(err)
	}
}

// Shutdown is the immediate hard stop: the buffer is discarded and every
// parked producer, consumer and awaiter resolves promptly. No item offered
// before or after Shutdown is ever delivered afterwards; the take family
// yields ErrDone regardless of what was buffered. Idempotent.
func (q *Queue[T]) Shutdown() {
	q.close(completion{life: stateClosed, why: reasonShutdown})
}

func (q *Queue[T]) close(next completion) {
	var wake []chan struct{}
	q.mu.Lock()
	if !q.st.open() {
		// Monotonic: later completion requests are no-ops.
		q.mu.Unlock()
		return
	}
	q.st = next
	q.phase.Store(int32(next.life))
	if next.why != reasonEnd {
		// fail and shutdown refuse pending admissions immediately; only a
		// graceful end keeps feeding parked sequences to consumers.
		for {
			o := q.peekOffererLocked()
			if o == nil {
				break
			}
			q.offerers.pop()
			o.resolved = true
			o.remainder = o.pending
			o.pending = nil
			wake = append(wake, o.signal)
		}
	}
	if next.why == reasonShutdown {
		q.buf.reset()
	}
	q.rebalanceLocked(&wake)
	q.mu.Unlock()
	closeAll(wake)
}

// Await parks until the queue is closed and fully drained. It resolves nil
// after End or Shutdown and with the cause after Fail. Cancelling ctx
// returns ctx.Err() without affecting the queue.
func (q *Queue[T]) Await(ctx context.Context) error {
	q.mu.Lock()
	if q.st.life == stateClosed {
		var err error
		if q.st.why == reasonFail {
			err = q.st.cause
		}
		q.mu.Unlock()
		return err
	}
	a := &awaiter{signal: make(chan struct{})}
	q.awaiters = append(q.awaiters, a)
	q.mu.Unlock()

	select {
	case <-a.signal:
		return a.err
	case <-ctx.Done():
		q.mu.Lock()
		if a.resolved {
			q.mu.Unlock()
			return a.err
		}
		a.cancelled = true
		var wake []chan struct{}
		q.rebalanceLocked(&wake)
		q.mu.Unlock()
		closeAll(wake)
		return ctx.Err()
	}
}

// =============================================================================
// Internal state machine
// =============================================================================

func (q *Queue[T]) spaceLocked() int {
	if q.capacity < 0 {
		return math.MaxInt
	}
	return q.capacity - q.buf.len()
}

// evictLocked drops from the front until the buffer fits the capacity
// again. The buffer exceeds capacity only transiently, inside the critical
// section of a sliding admission.
func (q *Queue[T]) evictLocked() {
	for q.buf.len() > q.capacity {
		q.buf.pop()
	}
}

// peekTakerLocked returns the front live parked consumer, unlinking
// cancelled records on the way.
func (q *Queue[T]) peekTakerLocked() *taker[T] {
	for q.takers.len() > 0 {
		t := q.takers.peek()
		if t.cancelled {
			q.takers.pop()
			continue
		}
		return t
	}
	return nil
}

// peekOffererLocked returns the front live parked producer, unlinking
// cancelled records on the way.
func (q *Queue[T]) peekOffererLocked() *offerer[T] {
	for q.offerers.len() > 0 {
		o := q.offerers.peek()
		if o.cancelled {
			q.offerers.pop()
			continue
		}
		return o
	}
	return nil
}

func (q *Queue[T]) liveOfferersLocked() int {
	n := 0
	for i := 0; i < q.offerers.len(); i++ {
		if !q.offerers.get(i).cancelled {
			n++
		}
	}
	return n
}

// completionErrLocked is the signal a take-family observer receives once
// nothing will ever be delivered to it: the Fail cause exactly once, in
// arrival order, then ErrDone forever.
func (q *Queue[T]) completionErrLocked() error {
	if q.st.why == reasonFail && !q.failSent {
		q.failSent = true
		return q.st.cause
	}
	return ErrDone
}

// rebalanceLocked drives the queue to a fixpoint after any mutation: parked
// producers publish into freed space, parked consumers are served in
// arrival order, and a closing queue settles into closed once drained.
// Waiters to wake are collected into wake; the caller fires them after
// releasing the mutex.
func (q *Queue[T]) rebalanceLocked(wake *[]chan struct{}) {
	for {
		progress := false

		// Admit pending sequences from parked producers while space allows.
		for {
			o := q.peekOffererLocked()
			if o == nil {
				break
			}
			n := q.spaceLocked()
			if n <= 0 {
				break
			}
			k := min(n, len(o.pending))
			for _, v := range o.pending[:k] {
				q.buf.push(v)
			}
			o.pending = o.pending[k:]
			progress = true
			if len(o.pending) > 0 {
				break
			}
			q.offerers.pop()
			o.resolved, o.admitted = true, true
			*wake = append(*wake, o.signal)
		}

		// Serve parked consumers in arrival order.
		for {
			t := q.peekTakerLocked()
			if t == nil {
				break
			}
			if q.buf.len() == 0 {
				// A parked producer can feed a parked consumer even when
				// the buffer itself has no room (capacity 0 hand-off).
				o := q.peekOffererLocked()
				if o == nil {
					break
				}
				q.buf.push(o.pending[0])
				o.pending = o.pending[1:]
				if len(o.pending) == 0 {
					q.offerers.pop()
					o.resolved, o.admitted = true, true
					*wake = append(*wake, o.signal)
				}
			}
			switch t.mode {
			case takeOne:
				t.items = []T{q.buf.pop()}
			case takeSome:
				t.items = q.buf.drain()
			case takeCount:
				for len(t.acc) < t.want && q.buf.len() > 0 {
					t.acc = append(t.acc, q.buf.pop())
				}
				if len(t.acc) == t.want {
					t.items = t.acc
				}
			}
			progress = true
			if t.items == nil {
				// Partial takeCount keeps its place at the front.
				break
			}
			q.takers.pop()
			t.resolved = true
			*wake = append(*wake, t.signal)
		}

		if !progress {
			break
		}
	}

	q.settleLocked(wake)
	q.length.Store(int64(q.buf.len()))
}

func (q *Queue[T]) settleLocked(wake *[]chan struct{}) {
	if q.st.open() {
		return
	}
	drained := q.buf.len() == 0 && q.liveOfferersLocked() == 0
	if q.st.life == stateClosing && drained {
		q.st.life = stateClosed
		q.phase.Store(int32(stateClosed))
	}
	if drained {
		// Nothing will ever be delivered to a still-parked consumer.
		for {
			t := q.peekTakerLocked()
			if t == nil {
				break
			}
			q.takers.pop()
			t.err = q.completionErrLocked()
			t.resolved = true
			*wake = append(*wake, t.signal)
		}
	}
	if q.st.life == stateClosed {
		for _, a := range q.awaiters {
			if a.resolved || a.cancelled {
				continue
			}
			a.resolved = true
			if q.st.why == reasonFail {
				a.err = q.st.cause
			}
			*wake = append(*wake, a.signal)
		}
		q.awaiters = q.awaiters[:0]
	}
}
