// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wq provides suspending bounded and unbounded FIFO queues with
// backpressure, admission strategies and a completion protocol.
//
// Where a lock-free queue reports a full or empty buffer and leaves the
// retry loop to the caller, wq parks the calling goroutine instead: a
// producer offering into a full bounded queue suspends until a consumer
// frees space, and a consumer taking from an empty queue suspends until an
// item arrives or the queue completes. Parking and waking preserve FIFO
// order on both sides, so items are delivered in admission order and no
// parked producer is ever overtaken or starved.
//
// # Quick Start
//
// Direct constructors:
//
//	q := wq.NewBounded[Event](1024)  // backpressure when full
//	q := wq.NewUnbounded[Event]()    // never blocks, never drops
//	q := wq.NewDropping[Event](64)   // reject overflow, keep earliest
//	q := wq.NewSliding[Event](64)    // evict oldest, keep newest
//
// Builder API:
//
//	q := wq.Build[Event](wq.New(1024))            // → backpressure
//	q := wq.Build[Event](wq.New(64).Dropping())   // → dropping
//	q := wq.Build[Event](wq.New(64).Sliding())    // → sliding
//	q := wq.Build[Event](wq.Unbounded())          // → unbounded
//
// # Basic Usage
//
// Producers report admission as data, consumers receive completion as a
// distinguished error:
//
//	// Producer: suspends while the buffer is full
//	if !q.Offer(ctx, ev) {
//	    // queue completed (or ctx cancelled) before admission
//	}
//
//	// Consumer: suspends while the queue is open and empty
//	for {
//	    ev, err := q.Take(ctx)
//	    if wq.IsDone(err) {
//	        break // queue ended and drained
//	    }
//	    if err != nil {
//	        return err // Fail cause or ctx cancellation
//	    }
//	    handle(ev)
//	}
//
// # Admission Strategies
//
// A bounded queue applies one of three strategies when the buffer is full
// at offer time:
//
//	backpressure (default)  park the producer until space frees
//	Dropping()              discard the items beyond capacity, keep earliest
//	Sliding()               evict the oldest buffered items, admit everything
//
// Dropping and Sliding never park. An unbounded queue admits everything
// immediately and has no strategy. Capacity 0 with backpressure is a
// synchronous hand-off: an offer only succeeds once a matching take is
// parked, and sliding at capacity 0 accepts then immediately evicts.
//
// # Batched Operations
//
// OfferAll admits a sequence as one coordinated call and returns the
// unadmitted remainder; under backpressure the pending tail is published
// into the buffer in increments as consumers free space, without losing the
// relative order of the sequence:
//
//	rest := q.OfferAll(ctx, batch) // nil once everything was admitted
//
// TakeAll drains the current buffer atomically without waiting for more,
// and TakeN accumulates exactly n items even when n exceeds the capacity:
//
//	page, err := q.TakeN(ctx, 100)
//	rest, err := q.TakeAll(ctx)
//
// Poll and TryOffer are the non-suspending counterparts of Take and Offer.
//
// # Completion Protocol
//
// A queue leaves the open state exactly once, through one of:
//
//	End()        graceful: buffered items and parked producer sequences
//	             still drain, then takes resolve ErrDone
//	Fail(cause)  buffered items still drain, then cause is delivered to
//	             exactly one consumer, ErrDone to every one after
//	Shutdown()   hard stop: the buffer is discarded and every parked
//	             goroutine resolves promptly
//	Complete(e)  dispatches to End when e is nil, Fail otherwise
//
// All four are idempotent and never suspend; once closing, offers report
// false and never mutate the buffer again. Await parks until the queue is
// closed and drained:
//
//	q.End()
//	if err := q.Await(ctx); err != nil {
//	    // the Fail cause; nil after End or Shutdown
//	}
//
// # Cancellation
//
// Every suspending operation takes a context. Cancelling it releases the
// parked slot without corrupting the FIFO order of the remaining waiters.
// A cancelled OfferAll keeps its already-admitted prefix in the buffer and
// returns the unadmitted remainder; a cancelled take has no effect on the
// buffer. Timeouts are plain context deadlines raced against the
// suspension.
//
// # Error Handling
//
// All failure is data: the take family returns [ErrDone] or the Fail cause,
// Poll returns [ErrWouldBlock] while the queue is open and empty, and the
// offer family reports rejection through its results. Classification
// helpers delegate to [code.hybscloud.com/iox]:
//
//	wq.IsDone(err)        // completion signal, not a domain failure
//	wq.IsWouldBlock(err)  // retry later
//	wq.IsSemantic(err)    // any control flow signal
//
// # Concurrency
//
// A queue is safe for any number of concurrent producers and consumers with
// no external locking. Every operation is one atomic state transition under
// a single per-queue critical section; parked goroutines are woken after
// the critical section has been released. Size, Cap, IsEmpty, IsFull and
// IsDone never suspend and never take the lock.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for the lock-free state and length mirrors,
// and github.com/eapache/queue for the ring-backed buffer and waiter
// deques.
package wq
