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

// Package notification provides a mailbox telling a third party when its first
// subscriber arrives and when its last subscriber leaves.
package notification

import (
	"fmt"
	"sync"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/internal/subscribers"
	"github.com/tochemey/goakt-extra/internal/validation"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
)

// FirstSubscriber is the signal sent when the subscriber count goes from zero to one
type FirstSubscriber struct{}

// LastSubscriber is the signal sent when the subscriber count goes from one to zero
type LastSubscriber struct{}

// Mailbox is a publish/subscribe mailbox built for messages carrying T.
//
// Besides delivering like a plain mailbox, it sends a *FirstSubscriber signal to the
// notification mailbox when the first subscription is made and a *LastSubscriber signal
// when the last one is dropped. Signals are sent while the mailbox lock is held so that
// they arrive in transition order.
//
// A single-consumer Mailbox accepts one subscriber at a time. Only a single-consumer
// Mailbox created with NewMutable carries mutable messages.
type Mailbox[T any] struct {
	id       mailbox.ID
	name     string
	kind     mailbox.Kind
	typ      mailbox.Type
	notifyTo mailbox.Mailbox
	logger   log.Logger
	metric   *metric.MailboxMetric

	mu          sync.Mutex
	subscribers *subscribers.Set
}

// enforce compilation error
var (
	_ mailbox.Mailbox   = (*Mailbox[any])(nil)
	_ mailbox.Inspector = (*Mailbox[any])(nil)
)

// New creates a notification Mailbox of the given kind for immutable messages carrying T
func New[T any](env mailbox.Environment, notifyTo mailbox.Mailbox, kind mailbox.Kind) (*Mailbox[T], error) {
	return newMailbox[T](env, notifyTo, kind, mailbox.TypeOf[T]())
}

// NewMutable creates a notification Mailbox for mutable messages carrying T.
// kind must be mailbox.SingleConsumer.
func NewMutable[T any](env mailbox.Environment, notifyTo mailbox.Mailbox, kind mailbox.Kind) (*Mailbox[T], error) {
	return newMailbox[T](env, notifyTo, kind, mailbox.MutableTypeOf[T]())
}

func newMailbox[T any](env mailbox.Environment, notifyTo mailbox.Mailbox, kind mailbox.Kind, typ mailbox.Type) (*Mailbox[T], error) {
	if err := validation.New(validation.FailFast()).
		AddValidator(validation.NewNotNilValidator("notification mailbox", notifyTo)).
		Validate(); err != nil {
		return nil, errors.NewErrInvalidArgument(err)
	}

	if typ.Mutable && kind == mailbox.MultiConsumer {
		return nil, errors.NewErrMutableNotAllowedOnMultiConsumerMailbox(fmt.Sprintf("notification(type=%s)", typ))
	}

	id := env.NextID()
	label := "MPMC"
	if kind == mailbox.SingleConsumer {
		label = "MPSC"
	}

	return &Mailbox[T]{
		id:          id,
		name:        fmt.Sprintf("<mbox:type=FIRST_LAST_SUBSCR_NOTIFY(%s):id=%d>", label, id),
		kind:        kind,
		typ:         typ,
		notifyTo:    notifyTo,
		logger:      env.Logger(),
		metric:      metric.Instrument(env.Meter(), "notification", env.Logger()),
		subscribers: subscribers.NewSet(),
	}, nil
}

// ID returns the mailbox identity
func (x *Mailbox[T]) ID() mailbox.ID {
	return x.id
}

// Name returns the mailbox name
func (x *Mailbox[T]) Name() string {
	return x.name
}

// Kind returns the kind chosen at creation
func (x *Mailbox[T]) Kind() mailbox.Kind {
	return x.kind
}

// Subscribe registers sub and notifies the first subscription
func (x *Mailbox[T]) Subscribe(t mailbox.Type, sub mailbox.Subscriber, limit *mailbox.Limit) error {
	if err := x.checkType(t); err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.kind == mailbox.SingleConsumer && x.subscribers.Count() > 0 {
		if found, ok := x.subscribers.Find(sub); !ok || !found.Subscribed() {
			return errors.NewErrSubscriptionAlreadyExists(t)
		}
	}

	if x.subscribers.Subscribe(sub, limit) && x.subscribers.Count() == 1 {
		x.notify(mailbox.NewSignal[FirstSubscriber]())
	}
	return nil
}

// Unsubscribe removes sub and notifies when it was the last subscriber
func (x *Mailbox[T]) Unsubscribe(t mailbox.Type, sub mailbox.Subscriber) {
	if x.checkType(t) != nil {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.subscribers.Unsubscribe(sub) && x.subscribers.Count() == 0 {
		x.notify(mailbox.NewSignal[LastSubscriber]())
	}
}

// Deliver pushes msg to every subscriber whose filter accepts it
func (x *Mailbox[T]) Deliver(t mailbox.Type, msg *mailbox.Message, redirectDepth int) error {
	if err := x.checkType(t); err != nil {
		return err
	}

	x.mu.Lock()
	snapshot := x.subscribers.Snapshot()
	x.mu.Unlock()

	delivered := subscribers.Push(snapshot, x.id, t, msg, redirectDepth)
	x.metric.Delivered(int64(delivered))
	return nil
}

// SetDeliveryFilter installs the filter of sub
func (x *Mailbox[T]) SetDeliveryFilter(t mailbox.Type, filter mailbox.Filter, sub mailbox.Subscriber) error {
	if err := x.checkType(t); err != nil {
		return err
	}

	x.mu.Lock()
	x.subscribers.SetFilter(sub, filter)
	x.mu.Unlock()
	return nil
}

// DropDeliveryFilter removes the filter of sub
func (x *Mailbox[T]) DropDeliveryFilter(t mailbox.Type, sub mailbox.Subscriber) {
	if x.checkType(t) != nil {
		return
	}

	x.mu.Lock()
	x.subscribers.DropFilter(sub)
	x.mu.Unlock()
}

// Registration returns the subscription and filter of sub
func (x *Mailbox[T]) Registration(t mailbox.Type, sub mailbox.Subscriber) (mailbox.Registration, bool) {
	if x.checkType(t) != nil {
		return mailbox.Registration{}, false
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	return x.subscribers.Registration(sub)
}

// notify sends the signal; a failure cannot be reported to the subscriber and is logged
func (x *Mailbox[T]) notify(signal *mailbox.Message) {
	if err := mailbox.Deliver(x.notifyTo, signal); err != nil {
		x.logger.Errorf("mailbox=(%s) failed to send %s to mailbox=(%s): %v", x.name, signal.Type(), x.notifyTo.Name(), err)
	}
}

func (x *Mailbox[T]) checkType(t mailbox.Type) error {
	if t != x.typ {
		return errors.NewErrDifferentMessageType(x.typ, t)
	}
	return nil
}
