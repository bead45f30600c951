// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wq

// strategy decides what happens when a bounded buffer is full at offer time.
// It is irrelevant for unbounded queues, which admit everything immediately.
type strategy int8

const (
	// strategySuspend parks the producer until a consumer frees space or the
	// queue completes. Parked producers are admitted in arrival order, so a
	// slow consumer applies backpressure without dropping or reordering.
	strategySuspend strategy = iota

	// strategyDropping rejects the items that do not fit and keeps the
	// earliest. The offer call reports the rejected remainder immediately
	// and never parks.
	strategyDropping

	// strategySliding always admits the incoming items and evicts from the
	// front of the buffer (oldest first) until the result fits. Never parks.
	strategySliding
)

func (s strategy) String() string {
	switch s {
	case strategySuspend:
		return "suspend"
	case strategyDropping:
		return "dropping"
	case strategySliding:
		return "sliding"
	default:
		return "unknown"
	}
}
