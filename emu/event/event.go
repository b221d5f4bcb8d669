/*
 * AGC - Tick-delta event scheduler.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package event is a delta-time event list, ticks advanced one at a time by
// the core harness. It backs the alarm monitor's timeout windows (night
// watchman, rupt lock), which are specified relative to ticks rather than
// wall-clock time (spec section 5).
package event

// Callback fires when an event's delta reaches zero. iarg is an opaque tag
// the caller chose when scheduling, so one callback function can serve many
// distinct timers (e.g. one per alarm condition).
type Callback func(iarg int)

type entry struct {
	owner int // identifies the subsystem that scheduled this, for Cancel
	time  int
	cb    Callback
	iarg  int
	prev  *entry
	next  *entry
}

// List is a singly-threaded delta list: each entry's time is relative to the
// entry before it, so advancing by t only needs to touch the head.
type List struct {
	head *entry
	tail *entry
}

// Add schedules cb to fire after delta ticks (fires immediately, inline, if
// delta <= 0). owner is an arbitrary tag used by Cancel to find this entry
// again without scanning by callback identity.
func (l *List) Add(owner int, delta int, cb Callback, iarg int) {
	if delta <= 0 {
		cb(iarg)
		return
	}

	e := &entry{owner: owner, time: delta, cb: cb, iarg: iarg}

	cur := l.head
	if cur == nil {
		l.head = e
		l.tail = e
		return
	}

	for cur != nil {
		if e.time <= cur.time {
			cur.time -= e.time
			e.prev = cur.prev
			e.next = cur
			cur.prev = e
			if e.prev != nil {
				e.prev.next = e
			} else {
				l.head = e
			}
			return
		}
		e.time -= cur.time
		cur = cur.next
	}

	e.prev = l.tail
	l.tail.next = e
	l.tail = e
}

// Cancel removes the first pending event matching owner and iarg, if any.
func (l *List) Cancel(owner int, iarg int) {
	for cur := l.head; cur != nil; cur = cur.next {
		if cur.owner != owner || cur.iarg != iarg {
			continue
		}
		if cur.next != nil {
			cur.next.time += cur.time
			cur.next.prev = cur.prev
		} else {
			l.tail = cur.prev
		}
		if cur.prev != nil {
			cur.prev.next = cur.next
		} else {
			l.head = cur.next
		}
		return
	}
}

// Pending reports whether any event is scheduled.
func (l *List) Pending() bool {
	return l.head != nil
}

// Advance moves simulated time forward by t ticks, firing every event whose
// countdown reaches zero or below, in order.
func (l *List) Advance(t int) {
	if l.head == nil {
		return
	}
	l.head.time -= t
	for l.head != nil && l.head.time <= 0 {
		e := l.head
		l.head = e.next
		if l.head != nil {
			l.head.prev = nil
			l.head.time += e.time // carry any overshoot into the next delta
		} else {
			l.tail = nil
		}
		e.cb(e.iarg)
	}
}
