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

package plain

import (
	"fmt"
	"sync"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/internal/subscribers"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
)

// Mailbox is the plain publish/subscribe mailbox.
//
// A multi-consumer Mailbox hands every message to all subscribers of its type and
// refuses mutable messages. A direct Mailbox belongs to a single owner, the only
// subscriber it accepts, and may therefore carry mutable messages.
type Mailbox struct {
	id     mailbox.ID
	name   string
	kind   mailbox.Kind
	owner  mailbox.Subscriber
	logger log.Logger
	metric *metric.MailboxMetric

	mu    sync.RWMutex
	table *subscribers.Table
}

// enforce compilation error
var (
	_ mailbox.Mailbox   = (*Mailbox)(nil)
	_ mailbox.Inspector = (*Mailbox)(nil)
)

// New creates a multi-consumer Mailbox
func New(id mailbox.ID, opts ...Option) *Mailbox {
	return newMailbox(id, mailbox.MultiConsumer, nil, opts...)
}

// NewDirect creates a single-consumer Mailbox owned by owner
func NewDirect(id mailbox.ID, owner mailbox.Subscriber, opts ...Option) *Mailbox {
	return newMailbox(id, mailbox.SingleConsumer, owner, opts...)
}

func newMailbox(id mailbox.ID, kind mailbox.Kind, owner mailbox.Subscriber, opts ...Option) *Mailbox {
	mb := &Mailbox{
		id:     id,
		kind:   kind,
		owner:  owner,
		logger: log.DiscardLogger,
		table:  subscribers.NewTable(),
	}

	for _, opt := range opts {
		opt.Apply(mb)
	}

	if mb.name == "" {
		mb.name = fmt.Sprintf("<mbox:type=%s:id=%d>", mb.policy(), id)
	}
	return mb
}

// ID returns the mailbox identity
func (x *Mailbox) ID() mailbox.ID {
	return x.id
}

// Name returns the mailbox name
func (x *Mailbox) Name() string {
	return x.name
}

// Kind returns the mailbox kind
func (x *Mailbox) Kind() mailbox.Kind {
	return x.kind
}

// Subscribe registers sub for type t
func (x *Mailbox) Subscribe(t mailbox.Type, sub mailbox.Subscriber, limit *mailbox.Limit) error {
	if err := x.checkOwner(sub); err != nil {
		return err
	}

	x.mu.Lock()
	x.table.GetOrCreate(t).Subscribe(sub, limit)
	x.mu.Unlock()
	return nil
}

// Unsubscribe removes the subscription of sub for type t
func (x *Mailbox) Unsubscribe(t mailbox.Type, sub mailbox.Subscriber) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if set := x.table.Get(t); set != nil {
		set.Unsubscribe(sub)
		x.table.Compact(t)
	}
}

// Deliver pushes msg to every subscriber of t whose filter accepts it
func (x *Mailbox) Deliver(t mailbox.Type, msg *mailbox.Message, redirectDepth int) error {
	if x.kind == mailbox.MultiConsumer && t.Mutable {
		return errors.NewErrMutableNotAllowedOnMultiConsumerMailbox(x.name)
	}

	x.mu.RLock()
	var snapshot []subscribers.Entry
	if set := x.table.Get(t); set != nil {
		snapshot = set.Snapshot()
	}
	x.mu.RUnlock()

	delivered := subscribers.Push(snapshot, x.id, t, msg, redirectDepth)
	x.metric.Delivered(int64(delivered))
	if delivered == 0 && x.logger.Enabled(log.DebugLevel) {
		x.logger.Debugf("mailbox=(%s) has no receiver for message of type=(%s)", x.name, t)
	}
	return nil
}

// SetDeliveryFilter installs the filter of sub for type t
func (x *Mailbox) SetDeliveryFilter(t mailbox.Type, filter mailbox.Filter, sub mailbox.Subscriber) error {
	if err := x.checkOwner(sub); err != nil {
		return err
	}

	x.mu.Lock()
	x.table.GetOrCreate(t).SetFilter(sub, filter)
	x.mu.Unlock()
	return nil
}

// DropDeliveryFilter removes the filter of sub for type t
func (x *Mailbox) DropDeliveryFilter(t mailbox.Type, sub mailbox.Subscriber) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if set := x.table.Get(t); set != nil {
		set.DropFilter(sub)
		x.table.Compact(t)
	}
}

// Registration returns the subscription and filter of sub for type t
func (x *Mailbox) Registration(t mailbox.Type, sub mailbox.Subscriber) (mailbox.Registration, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if set := x.table.Get(t); set != nil {
		return set.Registration(sub)
	}
	return mailbox.Registration{}, false
}

// SubscribersCount returns the number of subscribers of type t
func (x *Mailbox) SubscribersCount(t mailbox.Type) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if set := x.table.Get(t); set != nil {
		return set.Count()
	}
	return 0
}

func (x *Mailbox) checkOwner(sub mailbox.Subscriber) error {
	if x.owner == nil || x.owner.ID() == sub.ID() {
		return nil
	}
	return fmt.Errorf("(mailbox=%s, subscriber=%s) %w", x.name, sub.ID(), errors.ErrIllegalSubscriber)
}

func (x *Mailbox) policy() string {
	if x.kind == mailbox.SingleConsumer {
		return "direct"
	}
	return "mpmc"
}
