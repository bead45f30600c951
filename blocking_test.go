// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wq_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"code.hybscloud.com/spin"
	"code.hybscloud.com/wq"
)

// waitSize spins until the buffered count reaches want.
func waitSize[T any](t *testing.T, q *wq.Queue[T], want int) {
	t.Helper()
	sw := spin.Wait{}
	deadline := time.Now().Add(5 * time.Second)
	for q.Size() != want {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for size %d, have %d", want, q.Size())
		}
		sw.Once()
	}
}

// settle gives a freshly forked goroutine time to reach its suspension
// point. Parking is not observable from outside, so ordering-sensitive
// scenarios pace themselves the same way the pack's blocking tests do.
func settle() {
	time.Sleep(100 * time.Millisecond)
}

// =============================================================================
// Producer suspension (backpressure)
// =============================================================================

// TestOfferAllBackpressure is the bounded hand-over scenario: a producer
// parks with the tail of its sequence and publishes it as space frees.
func TestOfferAllBackpressure(t *testing.T) {
	ctx := context.Background()
	q := wq.NewBounded[int](2)

	rest := make(chan []int, 1)
	go func() {
		rest <- q.OfferAll(ctx, []int{1, 2, 3, 4})
	}()
	waitSize(t, q, 2)

	got, err := q.TakeAll(ctx)
	if err != nil {
		t.Fatalf("first TakeAll: %v", err)
	}
	if !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("first TakeAll: got %v, want [1 2]", got)
	}

	// Draining freed space, so the parked tail is already published.
	got, err = q.TakeAll(ctx)
	if err != nil {
		t.Fatalf("second TakeAll: %v", err)
	}
	if !slices.Equal(got, []int{3, 4}) {
		t.Fatalf("second TakeAll: got %v, want [3 4]", got)
	}

	if r := <-rest; r != nil {
		t.Fatalf("OfferAll remainder: got %v, want nil", r)
	}
}

func TestOfferSuspendsUntilSpace(t *testing.T) {
	ctx := context.Background()
	q := wq.NewBounded[int](1)
	q.Offer(ctx, 1)

	admitted := make(chan bool, 1)
	go func() {
		admitted <- q.Offer(ctx, 2)
	}()
	settle()

	if v, err := q.Take(ctx); err != nil || v != 1 {
		t.Fatalf("Take: got (%d, %v), want (1, nil)", v, err)
	}
	if ok := <-admitted; !ok {
		t.Fatalf("parked Offer: got false, want true")
	}
	if v, err := q.Take(ctx); err != nil || v != 2 {
		t.Fatalf("Take: got (%d, %v), want (2, nil)", v, err)
	}
}

// =============================================================================
// Consumer suspension
// =============================================================================

func TestTakeSuspendsUntilOffer(t *testing.T) {
	ctx := context.Background()
	q := wq.NewBounded[int](4)

	got := make(chan int, 1)
	go func() {
		v, err := q.Take(ctx)
		if err != nil {
			t.Errorf("Take: %v", err)
		}
		got <- v
	}()
	settle()

	if !q.Offer(ctx, 42) {
		t.Fatalf("Offer: rejected")
	}
	select {
	case v := <-got:
		if v != 42 {
			t.Fatalf("Take: got %d, want 42", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for parked Take")
	}
}

// TestTakeNAccumulates verifies takeN across a forked offerAll on an
// unbounded queue.
func TestTakeNAccumulates(t *testing.T) {
	ctx := context.Background()
	q := wq.NewUnbounded[int]()

	go q.OfferAll(ctx, []int{1, 2, 3, 4})

	got, err := q.TakeN(ctx, 2)
	if err != nil {
		t.Fatalf("TakeN: %v", err)
	}
	if !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("first TakeN: got %v, want [1 2]", got)
	}
	got, err = q.TakeN(ctx, 2)
	if err != nil {
		t.Fatalf("TakeN: %v", err)
	}
	if !slices.Equal(got, []int{3, 4}) {
		t.Fatalf("second TakeN: got %v, want [3 4]", got)
	}
}

// TestTakeNBeyondCapacity accumulates more items than the buffer can hold,
// pulling a parked producer's tail through the buffer in increments.
func TestTakeNBeyondCapacity(t *testing.T) {
	ctx := context.Background()
	q := wq.NewBounded[int](2)

	go q.OfferAll(ctx, []int{1, 2, 3, 4, 5, 6})

	got, err := q.TakeN(ctx, 6)
	if err != nil {
		t.Fatalf("TakeN: %v", err)
	}
	if !slices.Equal(got, []int{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("TakeN: got %v, want [1 2 3 4 5 6]", got)
	}
}

// =============================================================================
// Synchronous hand-off (capacity 0)
// =============================================================================

func TestCapacityZeroHandOff(t *testing.T) {
	ctx := context.Background()
	q := wq.NewBounded[int](0)

	// Without a parked consumer nothing can be admitted.
	if q.TryOffer(1) {
		t.Fatalf("TryOffer without parked taker: got true, want false")
	}

	got := make(chan int, 1)
	go func() {
		v, err := q.Take(ctx)
		if err != nil {
			t.Errorf("Take: %v", err)
		}
		got <- v
	}()
	settle()

	if !q.Offer(ctx, 7) {
		t.Fatalf("Offer with parked taker: rejected")
	}
	select {
	case v := <-got:
		if v != 7 {
			t.Fatalf("hand-off: got %d, want 7", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for hand-off")
	}
	if got := q.Size(); got != 0 {
		t.Fatalf("Size after hand-off: got %d, want 0", got)
	}
}

// =============================================================================
// Cancellation
// =============================================================================

// TestOfferAllCancelKeepsPrefix: interrupting a parked offerAll keeps the
// admitted prefix and permanently discards the remainder.
func TestOfferAllCancelKeepsPrefix(t *testing.T) {
	bg := context.Background()
	ctx, cancel := context.WithCancel(bg)
	q := wq.NewBounded[int](2)

	rest := make(chan []int, 1)
	go func() {
		rest <- q.OfferAll(ctx, []int{1, 2, 3, 4})
	}()
	waitSize(t, q, 2)
	cancel()

	if r := <-rest; !slices.Equal(r, []int{3, 4}) {
		t.Fatalf("cancelled OfferAll remainder: got %v, want [3 4]", r)
	}

	got, _ := q.TakeAll(bg)
	if !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("TakeAll: got %v, want [1 2]", got)
	}

	// The discarded tail never reappears.
	if !q.Offer(bg, 5) {
		t.Fatalf("Offer after cancel: rejected")
	}
	got, _ = q.TakeAll(bg)
	if !slices.Equal(got, []int{5}) {
		t.Fatalf("TakeAll: got %v, want [5]", got)
	}
}

// TestOffererCancelSettlesEndedQueue: cancelling the last parked offerer
// on an ended, empty queue completes the close on the spot, so parked
// awaiters resolve instead of waiting for an unrelated queue operation.
func TestOffererCancelSettlesEndedQueue(t *testing.T) {
	bg := context.Background()
	octx, ocancel := context.WithCancel(bg)
	q := wq.NewBounded[int](0)

	offered := make(chan bool, 1)
	go func() {
		offered <- q.Offer(octx, 1)
	}()
	settle()

	// A graceful close keeps the parked offerer alive: the queue stays
	// closing, not closed.
	q.End()
	if q.IsDone() {
		t.Fatalf("IsDone with a live parked offerer: got true, want false")
	}

	done := make(chan error, 1)
	go func() {
		done <- q.Await(bg)
	}()
	settle()

	ocancel()
	if ok := <-offered; ok {
		t.Fatalf("cancelled Offer: got true, want false")
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Await: got %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for Await after last offerer cancelled")
	}
	if !q.IsDone() {
		t.Fatalf("IsDone after settle: got false, want true")
	}
}

func TestTakeCancel(t *testing.T) {
	bg := context.Background()
	ctx, cancel := context.WithCancel(bg)
	q := wq.NewBounded[int](2)

	errc := make(chan error, 1)
	go func() {
		_, err := q.Take(ctx)
		errc <- err
	}()
	settle()
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled Take: got %v, want context.Canceled", err)
	}

	// The cancelled request left no trace: a later offer/take pair works.
	if !q.Offer(bg, 1) {
		t.Fatalf("Offer: rejected")
	}
	if v, err := q.Take(bg); err != nil || v != 1 {
		t.Fatalf("Take: got (%d, %v), want (1, nil)", v, err)
	}
}

// TestTakeCancelPreservesWaiterOrder: removing a parked consumer does not
// reorder the consumers behind it.
func TestTakeCancelPreservesWaiterOrder(t *testing.T) {
	bg := context.Background()
	ctx1, cancel1 := context.WithCancel(bg)
	q := wq.NewBounded[int](4)

	err1 := make(chan error, 1)
	go func() {
		_, err := q.Take(ctx1)
		err1 <- err
	}()
	settle()

	got2 := make(chan int, 1)
	go func() {
		v, err := q.Take(bg)
		if err != nil {
			t.Errorf("second Take: %v", err)
		}
		got2 <- v
	}()
	settle()

	cancel1()
	if err := <-err1; !errors.Is(err, context.Canceled) {
		t.Fatalf("first Take: got %v, want context.Canceled", err)
	}

	q.Offer(bg, 11)
	select {
	case v := <-got2:
		if v != 11 {
			t.Fatalf("second Take: got %d, want 11", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for second taker")
	}
}

// =============================================================================
// Graceful end with parked producers
// =============================================================================

// TestEndDrainsParkedOfferers: two forked batches and a single offer are
// all delivered in park order after End, then the queue settles.
func TestEndDrainsParkedOfferers(t *testing.T) {
	ctx := context.Background()
	q := wq.NewBounded[int](2)

	rest1 := make(chan []int, 1)
	go func() {
		rest1 <- q.OfferAll(ctx, []int{1, 2, 3, 4})
	}()
	waitSize(t, q, 2)

	rest2 := make(chan []int, 1)
	go func() {
		rest2 <- q.OfferAll(ctx, []int{5, 6, 7, 8})
	}()
	settle()

	ok9 := make(chan bool, 1)
	go func() {
		ok9 <- q.Offer(ctx, 9)
	}()
	settle()

	q.End()

	var drained []int
	for {
		v, err := q.Take(ctx)
		if wq.IsDone(err) {
			break
		}
		if err != nil {
			t.Fatalf("Take: %v", err)
		}
		drained = append(drained, v)
	}
	if !slices.Equal(drained, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}) {
		t.Fatalf("drained: got %v, want [1..9]", drained)
	}

	if r := <-rest1; r != nil {
		t.Fatalf("first OfferAll remainder: got %v, want nil", r)
	}
	if r := <-rest2; r != nil {
		t.Fatalf("second OfferAll remainder: got %v, want nil", r)
	}
	if !<-ok9 {
		t.Fatalf("parked Offer(9): got false, want true")
	}

	if err := q.Await(ctx); err != nil {
		t.Fatalf("Await: %v", err)
	}
	if q.Offer(ctx, 10) {
		t.Fatalf("Offer after end: got true, want false")
	}
}
