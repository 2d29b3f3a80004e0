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

// Package retained provides a latching publish/subscribe mailbox: the last message
// of every type is kept and handed to subscribers arriving later.
package retained

import (
	"fmt"
	"sync"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/internal/subscribers"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
)

type item struct {
	subscribers *subscribers.Set
	retained    *mailbox.Message
}

// Mailbox is the retained mailbox.
//
// Delivering a message makes it the retained value of its type and broadcasts it to
// the current subscribers. A new subscription immediately receives the retained value.
// Both happen under the same lock, so a subscriber sees either the retained value or
// the delivery, never neither. Mutable messages are rejected.
//
// Subscribers are pushed to while the lock is held: a subscriber limit must not
// redirect back into the same retained mailbox.
type Mailbox struct {
	id     mailbox.ID
	name   string
	logger log.Logger
	metric *metric.MailboxMetric

	mu    sync.Mutex
	items map[mailbox.Type]*item
}

// enforce compilation error
var (
	_ mailbox.Mailbox   = (*Mailbox)(nil)
	_ mailbox.Inspector = (*Mailbox)(nil)
)

// New creates a retained Mailbox
func New(env mailbox.Environment) *Mailbox {
	id := env.NextID()
	return &Mailbox{
		id:     id,
		name:   fmt.Sprintf("<mbox:type=RETAINED_MPMC:id=%d>", id),
		logger: env.Logger(),
		metric: metric.Instrument(env.Meter(), "retained", env.Logger()),
		items:  make(map[mailbox.Type]*item),
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

// Kind returns mailbox.MultiConsumer
func (x *Mailbox) Kind() mailbox.Kind {
	return mailbox.MultiConsumer
}

// Subscribe registers sub for type t and replays the retained value of t to it
func (x *Mailbox) Subscribe(t mailbox.Type, sub mailbox.Subscriber, limit *mailbox.Limit) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	entry := x.item(t)
	entry.subscribers.Subscribe(sub, limit)
	x.replay(t, entry, sub)
	return nil
}

// Unsubscribe removes the subscription of sub for type t
func (x *Mailbox) Unsubscribe(t mailbox.Type, sub mailbox.Subscriber) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if entry, ok := x.items[t]; ok {
		entry.subscribers.Unsubscribe(sub)
		x.compact(t, entry)
	}
}

// Deliver retains msg as the value of type t and broadcasts it
func (x *Mailbox) Deliver(t mailbox.Type, msg *mailbox.Message, redirectDepth int) error {
	if t.Mutable {
		return errors.NewErrMutableNotAllowedOnMultiConsumerMailbox(x.name)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	entry := x.item(t)
	previous := entry.retained
	entry.retained = msg.Retain()
	if previous != nil {
		previous.Release()
	}

	delivered := subscribers.Push(entry.subscribers.Snapshot(), x.id, t, msg, redirectDepth)
	x.metric.Delivered(int64(delivered))
	return nil
}

// SetDeliveryFilter installs the filter of sub for type t. When sub is already
// subscribed the retained value is replayed through the new filter.
func (x *Mailbox) SetDeliveryFilter(t mailbox.Type, filter mailbox.Filter, sub mailbox.Subscriber) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	entry := x.item(t)
	entry.subscribers.SetFilter(sub, filter)
	x.replay(t, entry, sub)
	return nil
}

// DropDeliveryFilter removes the filter of sub for type t
func (x *Mailbox) DropDeliveryFilter(t mailbox.Type, sub mailbox.Subscriber) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if entry, ok := x.items[t]; ok {
		entry.subscribers.DropFilter(sub)
		x.compact(t, entry)
	}
}

// Registration returns the subscription and filter of sub for type t
func (x *Mailbox) Registration(t mailbox.Type, sub mailbox.Subscriber) (mailbox.Registration, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if entry, ok := x.items[t]; ok {
		return entry.subscribers.Registration(sub)
	}
	return mailbox.Registration{}, false
}

// Retained returns the payload of the retained value of type t
func (x *Mailbox) Retained(t mailbox.Type) (any, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	entry, ok := x.items[t]
	if !ok || entry.retained == nil {
		return nil, false
	}
	return entry.retained.Payload(), true
}

// Close releases every retained value. Subscriptions are kept.
func (x *Mailbox) Close() {
	x.mu.Lock()
	defer x.mu.Unlock()

	for t, entry := range x.items {
		if entry.retained != nil {
			entry.retained.Release()
			entry.retained = nil
		}
		x.compact(t, entry)
	}
}

func (x *Mailbox) replay(t mailbox.Type, entry *item, sub mailbox.Subscriber) {
	if entry.retained == nil {
		return
	}

	found, ok := entry.subscribers.Find(sub)
	if !ok || !found.Subscribed() {
		return
	}

	delivered := subscribers.Push([]subscribers.Entry{found}, x.id, t, entry.retained, 0)
	x.metric.Delivered(int64(delivered))
}

func (x *Mailbox) item(t mailbox.Type) *item {
	entry, ok := x.items[t]
	if !ok {
		entry = &item{subscribers: subscribers.NewSet()}
		x.items[t] = entry
	}
	return entry
}

func (x *Mailbox) compact(t mailbox.Type, entry *item) {
	if entry.retained == nil && entry.subscribers.Empty() {
		delete(x.items, t)
	}
}
