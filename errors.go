// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates a non-suspending operation cannot proceed
// immediately.
//
// For Poll: the queue is empty but still open.
// For TryOffer: the full buffer is reported through the boolean result
// instead, so producers never see this value.
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry later or switch to the suspending operation (Take) instead.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrDone indicates the queue is closed and fully drained: no item will
// ever be delivered again.
//
// ErrDone is returned by the take family once a queue that ended normally
// or was shut down has no buffered items left. A queue closed through
// [Queue.Fail] delivers its cause to exactly one consumer first and ErrDone
// to every consumer after that.
//
// Like ErrWouldBlock, ErrDone is structural: it classifies the state of the
// queue, not a fault in the caller's domain. Use [IsDone] to tell the two
// apart when an error propagates through consumer code.
var ErrDone = errors.New("wq: queue is done")

// IsDone reports whether err is the queue completion signal.
//
// It returns false for nil, for ErrWouldBlock, and for any domain error
// supplied to [Queue.Fail], so a consumer loop can distinguish "the stream
// finished" from "the stream broke":
//
//	for {
//	    v, err := q.Take(ctx)
//	    if wq.IsDone(err) {
//	        return nil // clean end of stream
//	    }
//	    if err != nil {
//	        return err // domain failure or cancellation
//	    }
//	    process(v)
//	}
func IsDone(err error) bool {
	return errors.Is(err, ErrDone)
}

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// True for ErrDone and for anything [iox.IsSemantic] accepts.
func IsSemantic(err error) bool {
	return errors.Is(err, ErrDone) || iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrDone, or anything [iox.IsNonFailure] accepts.
func IsNonFailure(err error) bool {
	return err == nil || errors.Is(err, ErrDone) || iox.IsNonFailure(err)
}
