/*
 * MIT License
 *
 * Copyright (c) 2022-2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package hierarchy

import (
	"go.uber.org/atomic"

	"github.com/tochemey/goakt-extra/mailbox"
)

// route is the routing table entry of one receiving mailbox.
//
// The receiving mailbox owns one reference; every delivery past the table lookup
// holds another one. Once the mailbox is closed and the last delivery is done,
// teardown runs exactly once.
type route struct {
	mailbox  mailbox.Mailbox
	refs     atomic.Int32
	teardown func()
}

func newRoute(mb mailbox.Mailbox, teardown func()) *route {
	r := &route{mailbox: mb, teardown: teardown}
	r.refs.Store(1)
	return r
}

func (r *route) acquire() {
	r.refs.Inc()
}

func (r *route) release() {
	switch refs := r.refs.Dec(); {
	case refs == 0:
		r.teardown()
	case refs < 0:
		panic("hierarchy: route released more times than acquired")
	}
}
