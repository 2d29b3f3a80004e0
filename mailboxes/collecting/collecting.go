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

// Package collecting provides a barrier mailbox: it gathers a fixed number of
// messages of one type and forwards them as a single Collected message.
package collecting

import (
	"fmt"
	"sync"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/internal/validation"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
)

// Mailbox is the collecting mailbox for messages carrying T.
//
// Once count messages have been delivered, a *Collected[T] carrying them in arrival
// order is delivered to the target and collection starts over. The aggregate is
// mutable when the collected messages are. Nobody subscribes to a collecting mailbox
// directly: Subscribe and delivery filters fail with ErrOperationNotSupported.
type Mailbox[T any] struct {
	id            mailbox.ID
	name          string
	target        mailbox.Mailbox
	typ           mailbox.Type
	collectedType mailbox.Type
	count         int
	logger        log.Logger
	metric        *metric.MailboxMetric

	mu      sync.Mutex
	pending []T
}

// enforce compilation error
var _ mailbox.Mailbox = (*Mailbox[any])(nil)

// New creates a collecting Mailbox gathering count immutable messages carrying T
func New[T any](env mailbox.Environment, target mailbox.Mailbox, count int) (*Mailbox[T], error) {
	return newMailbox[T](env, target, count, false)
}

// NewMutable creates a collecting Mailbox gathering count mutable messages carrying T.
// The target must be a single-consumer mailbox.
func NewMutable[T any](env mailbox.Environment, target mailbox.Mailbox, count int) (*Mailbox[T], error) {
	return newMailbox[T](env, target, count, true)
}

func newMailbox[T any](env mailbox.Environment, target mailbox.Mailbox, count int, mutable bool) (*Mailbox[T], error) {
	if err := validation.New(validation.FailFast()).
		AddValidator(validation.NewNotNilValidator("target", target)).
		AddValidator(validation.NewPositiveValidator("count", count)).
		Validate(); err != nil {
		return nil, errors.NewErrInvalidArgument(err)
	}

	if mutable && target.Kind() == mailbox.MultiConsumer {
		return nil, errors.NewErrMutableNotAllowedOnMultiConsumerMailbox(target.Name())
	}

	typ := mailbox.TypeOf[T]()
	collectedType := mailbox.TypeOf[*Collected[T]]()
	if mutable {
		typ = typ.AsMutable()
		collectedType = collectedType.AsMutable()
	}

	id := env.NextID()
	return &Mailbox[T]{
		id:            id,
		name:          fmt.Sprintf("<mbox:type=COLLECTINGMBOX:id=%d>", id),
		target:        target,
		typ:           typ,
		collectedType: collectedType,
		count:         count,
		logger:        env.Logger(),
		metric:        metric.Instrument(env.Meter(), "collecting", env.Logger()),
		pending:       make([]T, 0, count),
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

// Kind returns the kind of the target
func (x *Mailbox[T]) Kind() mailbox.Kind {
	return x.target.Kind()
}

// Subscribe fails with ErrDifferentMessageType for foreign types and
// ErrOperationNotSupported otherwise
func (x *Mailbox[T]) Subscribe(t mailbox.Type, _ mailbox.Subscriber, _ *mailbox.Limit) error {
	if err := x.checkType(t); err != nil {
		return err
	}
	return errors.NewErrOperationNotSupported("Subscribe", x.name)
}

// Unsubscribe does nothing
func (x *Mailbox[T]) Unsubscribe(mailbox.Type, mailbox.Subscriber) {}

// Deliver stores msg and forwards the aggregate once complete
func (x *Mailbox[T]) Deliver(t mailbox.Type, msg *mailbox.Message, redirectDepth int) error {
	if err := x.checkType(t); err != nil {
		return err
	}

	item, _ := mailbox.PayloadAs[T](msg)

	x.mu.Lock()
	x.pending = append(x.pending, item)
	if len(x.pending) < x.count {
		x.mu.Unlock()
		return nil
	}
	collected := &Collected[T]{items: x.pending}
	x.pending = make([]T, 0, x.count)
	x.mu.Unlock()

	aggregate := mailbox.NewMessage(collected)
	if x.collectedType.Mutable {
		aggregate = mailbox.NewMutableMessage(collected)
	}
	defer aggregate.Release()

	x.metric.Delivered(1)
	x.logger.Debugf("mailbox=(%s) collected %d messages of type=(%s)", x.name, x.count, x.typ)
	return x.target.Deliver(x.collectedType, aggregate, redirectDepth)
}

// SetDeliveryFilter fails with ErrDifferentMessageType for foreign types and
// ErrOperationNotSupported otherwise
func (x *Mailbox[T]) SetDeliveryFilter(t mailbox.Type, _ mailbox.Filter, _ mailbox.Subscriber) error {
	if err := x.checkType(t); err != nil {
		return err
	}
	return errors.NewErrOperationNotSupported("SetDeliveryFilter", x.name)
}

// DropDeliveryFilter does nothing
func (x *Mailbox[T]) DropDeliveryFilter(mailbox.Type, mailbox.Subscriber) {}

// Pending returns the number of messages collected so far for the next aggregate
func (x *Mailbox[T]) Pending() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.pending)
}

// CollectedType returns the type of the aggregate delivered to the target
func (x *Mailbox[T]) CollectedType() mailbox.Type {
	return x.collectedType
}

func (x *Mailbox[T]) checkType(t mailbox.Type) error {
	if t != x.typ {
		return errors.NewErrDifferentMessageType(x.typ, t)
	}
	return nil
}
