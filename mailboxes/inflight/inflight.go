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

// Package inflight provides a mailbox throttling how many messages of one type
// may be in flight at the same time.
package inflight

import (
	"go.uber.org/atomic"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/internal/validation"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
)

// Mailbox is the inflight-limit mailbox. It is built for a single message type and
// delegates everything to an underlying mailbox.
//
// Every delivered message is wrapped into an envelope counted as in flight until its
// last reference is released, that is until every receiver is done with it. Deliveries
// which would push the counter beyond the limit are dropped.
// The mailbox shares the identity, name and kind of the underlying mailbox.
type Mailbox struct {
	target mailbox.Mailbox
	typ    mailbox.Type
	limit  int64
	logger log.Logger
	metric *metric.MailboxMetric

	inflight *atomic.Int64
}

// enforce compilation error
var (
	_ mailbox.Mailbox   = (*Mailbox)(nil)
	_ mailbox.Inspector = (*Mailbox)(nil)
)

// New creates an inflight-limit Mailbox for immutable messages carrying T
func New[T any](env mailbox.Environment, target mailbox.Mailbox, limit int) (*Mailbox, error) {
	return newMailbox(env, target, mailbox.TypeOf[T](), limit)
}

// NewMutable creates an inflight-limit Mailbox for mutable messages carrying T
func NewMutable[T any](env mailbox.Environment, target mailbox.Mailbox, limit int) (*Mailbox, error) {
	return newMailbox(env, target, mailbox.MutableTypeOf[T](), limit)
}

func newMailbox(env mailbox.Environment, target mailbox.Mailbox, typ mailbox.Type, limit int) (*Mailbox, error) {
	if err := validation.New(validation.FailFast()).
		AddValidator(validation.NewNotNilValidator("target", target)).
		AddValidator(validation.NewPositiveValidator("limit", limit)).
		Validate(); err != nil {
		return nil, errors.NewErrInvalidArgument(err)
	}

	return &Mailbox{
		target:   target,
		typ:      typ,
		limit:    int64(limit),
		logger:   env.Logger(),
		metric:   metric.Instrument(env.Meter(), "inflight", env.Logger()),
		inflight: atomic.NewInt64(0),
	}, nil
}

// ID returns the identity of the underlying mailbox
func (x *Mailbox) ID() mailbox.ID {
	return x.target.ID()
}

// Name returns the name of the underlying mailbox
func (x *Mailbox) Name() string {
	return x.target.Name()
}

// Kind returns the kind of the underlying mailbox
func (x *Mailbox) Kind() mailbox.Kind {
	return x.target.Kind()
}

// Subscribe subscribes sub to the underlying mailbox
func (x *Mailbox) Subscribe(t mailbox.Type, sub mailbox.Subscriber, limit *mailbox.Limit) error {
	if err := x.checkType(t); err != nil {
		return err
	}
	return x.target.Subscribe(t, sub, limit)
}

// Registration reports the registration held by the underlying mailbox, when it can tell
func (x *Mailbox) Registration(t mailbox.Type, sub mailbox.Subscriber) (mailbox.Registration, bool) {
	inspector, ok := x.target.(mailbox.Inspector)
	if !ok || x.checkType(t) != nil {
		return mailbox.Registration{}, false
	}
	return inspector.Registration(t, sub)
}

// Unsubscribe unsubscribes sub from the underlying mailbox. Other types are ignored.
func (x *Mailbox) Unsubscribe(t mailbox.Type, sub mailbox.Subscriber) {
	if x.checkType(t) != nil {
		return
	}
	x.target.Unsubscribe(t, sub)
}

// Deliver forwards msg to the underlying mailbox unless the limit is reached
func (x *Mailbox) Deliver(t mailbox.Type, msg *mailbox.Message, redirectDepth int) error {
	if err := x.checkType(t); err != nil {
		return err
	}

	if x.inflight.Inc() > x.limit {
		x.inflight.Dec()
		x.metric.Dropped()
		x.logger.Debugf("mailbox=(%s) inflight limit=(%d) reached, message of type=(%s) dropped", x.Name(), x.limit, t)
		return nil
	}
	x.metric.InflightChanged(1)

	envelope := mailbox.Envelop(msg, func() {
		x.inflight.Dec()
		x.metric.InflightChanged(-1)
	})
	defer envelope.Release()

	return x.target.Deliver(t, envelope, redirectDepth)
}

// SetDeliveryFilter installs the filter on the underlying mailbox
func (x *Mailbox) SetDeliveryFilter(t mailbox.Type, filter mailbox.Filter, sub mailbox.Subscriber) error {
	if err := x.checkType(t); err != nil {
		return err
	}
	return x.target.SetDeliveryFilter(t, filter, sub)
}

// DropDeliveryFilter removes the filter from the underlying mailbox. Other types are ignored.
func (x *Mailbox) DropDeliveryFilter(t mailbox.Type, sub mailbox.Subscriber) {
	if x.checkType(t) != nil {
		return
	}
	x.target.DropDeliveryFilter(t, sub)
}

// Inflight returns the number of messages currently in flight
func (x *Mailbox) Inflight() int64 {
	return x.inflight.Load()
}

func (x *Mailbox) checkType(t mailbox.Type) error {
	if t != x.typ {
		return errors.NewErrDifferentMessageType(x.typ, t)
	}
	return nil
}
