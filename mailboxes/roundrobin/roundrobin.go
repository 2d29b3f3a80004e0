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

// Package roundrobin provides a load-balancing mailbox: every message goes to
// exactly one subscriber of its type, chosen in turn.
package roundrobin

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
)

type sink struct {
	subscriber mailbox.Subscriber
	limit      *mailbox.Limit
}

// sinks holds the subscribers of one type in subscription order
// together with the rotating cursor.
type sinks struct {
	members []sink
	cursor  atomic.Uint64
}

func (s *sinks) indexOf(sub mailbox.Subscriber) int {
	return slices.IndexFunc(s.members, func(member sink) bool {
		return member.subscriber.ID() == sub.ID()
	})
}

// next returns the current sink and moves the cursor forward
func (s *sinks) next() sink {
	position := s.cursor.Inc() - 1
	return s.members[position%uint64(len(s.members))]
}

// Mailbox is the round-robin mailbox. Since a message reaches a single subscriber
// the mailbox is single-consumer and carries mutable messages.
// Delivery filters are not supported.
type Mailbox struct {
	id     mailbox.ID
	name   string
	logger log.Logger
	metric *metric.MailboxMetric

	mu    sync.RWMutex
	types map[mailbox.Type]*sinks
}

// enforce compilation error
var (
	_ mailbox.Mailbox   = (*Mailbox)(nil)
	_ mailbox.Inspector = (*Mailbox)(nil)
)

// New creates a round-robin Mailbox
func New(env mailbox.Environment) *Mailbox {
	id := env.NextID()
	return &Mailbox{
		id:     id,
		name:   fmt.Sprintf("<mbox:type=RRMPSC:id=%d>", id),
		logger: env.Logger(),
		metric: metric.Instrument(env.Meter(), "roundrobin", env.Logger()),
		types:  make(map[mailbox.Type]*sinks),
	}
}

// ID returns the mailbox identity
func (x *Mailbox) ID() mailbox.ID {
	return x.id
}

// Name returns the mailbox name
func (x *Mailbox) Name() string {
	return x.name
}

// Kind returns mailbox.SingleConsumer
func (x *Mailbox) Kind() mailbox.Kind {
	return mailbox.SingleConsumer
}

// Subscribe appends sub to the rotation of type t.
// Subscribing an already present subscriber keeps its position and updates its limit.
func (x *Mailbox) Subscribe(t mailbox.Type, sub mailbox.Subscriber, limit *mailbox.Limit) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	group, ok := x.types[t]
	if !ok {
		group = &sinks{}
		x.types[t] = group
	}

	if index := group.indexOf(sub); index >= 0 {
		group.members[index].limit = limit
		return nil
	}
	group.members = append(group.members, sink{subscriber: sub, limit: limit})
	return nil
}

// Unsubscribe removes sub from the rotation of type t
func (x *Mailbox) Unsubscribe(t mailbox.Type, sub mailbox.Subscriber) {
	x.mu.Lock()
	defer x.mu.Unlock()

	group, ok := x.types[t]
	if !ok {
		return
	}

	if index := group.indexOf(sub); index >= 0 {
		group.members = slices.Delete(group.members, index, index+1)
	}

	if len(group.members) == 0 {
		delete(x.types, t)
	}
}

// Deliver pushes msg to the next subscriber of type t
func (x *Mailbox) Deliver(t mailbox.Type, msg *mailbox.Message, redirectDepth int) error {
	x.mu.RLock()
	group, ok := x.types[t]
	if !ok {
		x.mu.RUnlock()
		x.logger.Debugf("mailbox=(%s) has no receiver for message of type=(%s)", x.name, t)
		return nil
	}
	target := group.next()
	x.mu.RUnlock()

	target.subscriber.Push(mailbox.Delivery{
		MailboxID:     x.id,
		Type:          t,
		Message:       msg,
		Limit:         target.limit,
		RedirectDepth: redirectDepth,
	})
	x.metric.Delivered(1)
	return nil
}

// SetDeliveryFilter always fails with ErrOperationNotSupported
func (x *Mailbox) SetDeliveryFilter(mailbox.Type, mailbox.Filter, mailbox.Subscriber) error {
	return errors.NewErrOperationNotSupported("SetDeliveryFilter", x.name)
}

// DropDeliveryFilter does nothing since filters cannot be installed
func (x *Mailbox) DropDeliveryFilter(mailbox.Type, mailbox.Subscriber) {}

// Registration returns the subscription of sub for type t
func (x *Mailbox) Registration(t mailbox.Type, sub mailbox.Subscriber) (mailbox.Registration, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	group, ok := x.types[t]
	if !ok {
		return mailbox.Registration{}, false
	}
	index := group.indexOf(sub)
	if index < 0 {
		return mailbox.Registration{}, false
	}
	return mailbox.Registration{Subscribed: true, Limit: group.members[index].limit}, true
}
