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

// Package unique provides a mailbox accepting at most one subscriber per message type.
package unique

import (
	"fmt"
	"sync"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
)

type subscription struct {
	subscriber mailbox.Subscriber
	limit      *mailbox.Limit
}

// Mailbox is the unique-subscriber mailbox. A second subscriber for a type already
// taken fails with ErrSubscriptionAlreadyExists; the check happens at subscription time.
// Being single-consumer, the mailbox carries mutable messages.
// Delivery filters are not supported.
type Mailbox struct {
	id     mailbox.ID
	name   string
	logger log.Logger
	metric *metric.MailboxMetric

	mu            sync.RWMutex
	subscriptions map[mailbox.Type]subscription
}

// enforce compilation error
var (
	_ mailbox.Mailbox   = (*Mailbox)(nil)
	_ mailbox.Inspector = (*Mailbox)(nil)
)

// New creates a unique-subscriber Mailbox
func New(env mailbox.Environment) *Mailbox {
	id := env.NextID()
	return &Mailbox{
		id:            id,
		name:          fmt.Sprintf("<mbox:type=UNIQUESUBSCRIBERS:id=%d>", id),
		logger:        env.Logger(),
		metric:        metric.Instrument(env.Meter(), "unique", env.Logger()),
		subscriptions: make(map[mailbox.Type]subscription),
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

// Subscribe registers sub as the subscriber of type t.
// Re-subscribing the same subscriber only updates its limit.
func (x *Mailbox) Subscribe(t mailbox.Type, sub mailbox.Subscriber, limit *mailbox.Limit) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if current, ok := x.subscriptions[t]; ok && current.subscriber.ID() != sub.ID() {
		return errors.NewErrSubscriptionAlreadyExists(t)
	}

	x.subscriptions[t] = subscription{subscriber: sub, limit: limit}
	return nil
}

// Unsubscribe removes the subscription of type t when it belongs to sub
func (x *Mailbox) Unsubscribe(t mailbox.Type, sub mailbox.Subscriber) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if current, ok := x.subscriptions[t]; ok && current.subscriber.ID() == sub.ID() {
		delete(x.subscriptions, t)
	}
}

// Deliver pushes msg to the subscriber of type t, if any
func (x *Mailbox) Deliver(t mailbox.Type, msg *mailbox.Message, redirectDepth int) error {
	x.mu.RLock()
	current, ok := x.subscriptions[t]
	x.mu.RUnlock()

	if !ok {
		x.logger.Debugf("mailbox=(%s) has no receiver for message of type=(%s)", x.name, t)
		return nil
	}

	current.subscriber.Push(mailbox.Delivery{
		MailboxID:     x.id,
		Type:          t,
		Message:       msg,
		Limit:         current.limit,
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
	current, ok := x.subscriptions[t]
	if !ok || current.subscriber.ID() != sub.ID() {
		return mailbox.Registration{}, false
	}
	return mailbox.Registration{Subscribed: true, Limit: current.limit}, true
}

// HasSubscriber reports whether type t has a subscriber
func (x *Mailbox) HasSubscriber(t mailbox.Type) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.subscriptions[t]
	return ok
}
