// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wq

import "github.com/eapache/queue"

// ring is a typed view over eapache's ring-backed FIFO. It holds the item
// buffer and both waiter deques. All access happens under the queue mutex,
// so the adapter carries no synchronization of its own.
type ring[T any] struct {
	q *queue.Queue
}

func newRing[T any]() ring[T] {
	return ring[T]{q: queue.New()}
}

func (r ring[T]) len() int {
	return r.q.Length()
}

func (r ring[T]) push(v T) {
	r.q.Add(v)
}

// peek returns the front element without removing it.
// Panics on an empty ring, like the underlying queue.
func (r ring[T]) peek() T {
	return r.q.Peek().(T)
}

// pop removes and returns the front element.
func (r ring[T]) pop() T {
	return r.q.Remove().(T)
}

// get returns the i-th element from the front, 0-based.
func (r ring[T]) get(i int) T {
	return r.q.Get(i).(T)
}

// drain removes every element, front to back.
func (r ring[T]) drain() []T {
	if r.q.Length() == 0 {
		return nil
	}
	out := make([]T, 0, r.q.Length())
	for r.q.Length() > 0 {
		out = append(out, r.q.Remove().(T))
	}
	return out
}

// reset discards every element.
func (r ring[T]) reset() {
	for r.q.Length() > 0 {
		r.q.Remove()
	}
}
