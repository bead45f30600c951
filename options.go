// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wq

// Options configures queue creation.
type Options struct {
	// capacity < 0 means unbounded. Capacity 0 is a valid bounded queue:
	// a synchronous hand-off where an offer only succeeds once a matching
	// take is parked.
	capacity int
	strategy strategy
}

// Builder creates queues with fluent configuration.
//
// The default admission strategy for a bounded capacity is backpressure:
// producers suspend while the buffer is full. Dropping and Sliding select
// the non-suspending alternatives.
//
// Example:
//
//	q := wq.Build[Event](wq.New(1024))            // bounded, backpressure
//	q := wq.Build[Event](wq.New(1024).Dropping()) // reject overflow
//	q := wq.Build[Event](wq.New(16).Sliding())    // keep only the newest
//	q := wq.Build[Event](wq.Unbounded())
type Builder struct {
	opts Options
}

// New creates a queue builder with the given bounded capacity.
// Capacity is exact (no rounding) and may be zero for synchronous hand-off.
// Panics if capacity < 0; use [Unbounded] for an unbounded queue.
func New(capacity int) *Builder {
	if capacity < 0 {
		panic("wq: capacity must be >= 0")
	}
	return &Builder{opts: Options{capacity: capacity, strategy: strategySuspend}}
}

// Unbounded creates a builder for an unbounded queue. Offers never park and
// never drop; the admission strategy methods do not apply.
func Unbounded() *Builder {
	return &Builder{opts: Options{capacity: -1, strategy: strategySuspend}}
}

// Dropping selects the dropping strategy: items beyond capacity at offer
// time are discarded and reported back to the producer; the earliest items
// are kept. Panics on an unbounded builder.
func (b *Builder) Dropping() *Builder {
	if b.opts.capacity < 0 {
		panic("wq: dropping requires a bounded capacity")
	}
	b.opts.strategy = strategyDropping
	return b
}

// Sliding selects the sliding strategy: incoming items are always admitted
// and the oldest buffered items are evicted to make room. Panics on an
// unbounded builder.
func (b *Builder) Sliding() *Builder {
	if b.opts.capacity < 0 {
		panic("wq: sliding requires a bounded capacity")
	}
	b.opts.strategy = strategySliding
	return b
}

// Build creates a queue from the builder configuration.
func Build[T any](b *Builder) *Queue[T] {
	return newQueue[T](b.opts.capacity, b.opts.strategy)
}

// NewBounded creates a bounded queue with the backpressure strategy:
// producers suspend while the buffer is full. Capacity 0 gives a
// synchronous hand-off queue. Panics if capacity < 0.
func NewBounded[T any](capacity int) *Queue[T] {
	return Build[T](New(capacity))
}

// NewUnbounded creates an unbounded queue. Offers always succeed
// immediately.
func NewUnbounded[T any]() *Queue[T] {
	return Build[T](Unbounded())
}

// NewDropping creates a bounded queue with the dropping strategy.
// Panics if capacity < 0.
func NewDropping[T any](capacity int) *Queue[T] {
	return Build[T](New(capacity).Dropping())
}

// NewSliding creates a bounded queue with the sliding strategy.
// Panics if capacity < 0.
func NewSliding[T any](capacity int) *Queue[T] {
	return Build[T](New(capacity).Sliding())
}
