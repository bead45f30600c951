// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wq

// lifecycle is the coarse phase of a queue. Transitions are monotonic:
// open → closing → closed, never backwards.
type lifecycle int32

const (
	stateOpen lifecycle = iota
	stateClosing
	stateClosed
)

// reason records why a queue left the open state.
type reason int8

const (
	reasonNone reason = iota
	reasonEnd
	reasonFail
	reasonShutdown
)

// completion is the full state of the lifecycle machine: phase, reason and,
// for reasonFail only, the cause. Keeping the three together as one value
// makes the illegal combinations (an open queue with a reason, a failed
// queue without a cause) unconstructible by the facade.
type completion struct {
	life  lifecycle
	why   reason
	cause error
}

func (c completion) open() bool {
	return c.life == stateOpen
}

func (c completion) String() string {
	switch {
	case c.life == stateOpen:
		return "open"
	case c.life == stateClosing && c.why == reasonEnd:
		return "closing(end)"
	case c.life == stateClosing && c.why == reasonFail:
		return "closing(fail)"
	case c.why == reasonEnd:
		return "closed(end)"
	case c.why == reasonFail:
		return "closed(fail)"
	default:
		return "closed(shutdown)"
	}
}
