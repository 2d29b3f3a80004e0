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

// Package broadcast provides a mailbox fanning every message out to a fixed set
// of destination mailboxes.
package broadcast

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/internal/validation"
	"github.com/tochemey/goakt-extra/mailbox"
)

// Mailbox is the broadcast mailbox. It has no subscribers of its own; every message
// is delivered to each destination in order. Mutable messages are rejected.
type Mailbox struct {
	id           mailbox.ID
	name         string
	destinations []mailbox.Mailbox
	metric       *metric.MailboxMetric
}

// enforce compilation error
var _ mailbox.Mailbox = (*Mailbox)(nil)

// New creates a broadcast Mailbox delivering to destinations
func New(env mailbox.Environment, destinations ...mailbox.Mailbox) (*Mailbox, error) {
	chain := validation.New(validation.AllErrors())
	for index, destination := range destinations {
		chain.AddValidator(validation.NewNotNilValidator(fmt.Sprintf("destinations[%d]", index), destination))
	}
	if err := chain.Validate(); err != nil {
		return nil, errors.NewErrInvalidArgument(err)
	}

	id := env.NextID()
	return &Mailbox{
		id:           id,
		name:         fmt.Sprintf("<mbox:type=BROADCAST:id=%d>", id),
		destinations: append([]mailbox.Mailbox(nil), destinations...),
		metric:       metric.Instrument(env.Meter(), "broadcast", env.Logger()),
	}, nil
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

// Subscribe always fails with ErrOperationNotSupported
func (x *Mailbox) Subscribe(mailbox.Type, mailbox.Subscriber, *mailbox.Limit) error {
	return errors.NewErrOperationNotSupported("Subscribe", x.name)
}

// Unsubscribe does nothing
func (x *Mailbox) Unsubscribe(mailbox.Type, mailbox.Subscriber) {}

// Deliver hands msg to every destination. A failing destination does not prevent
// the others from receiving the message; all failures are returned combined.
func (x *Mailbox) Deliver(t mailbox.Type, msg *mailbox.Message, redirectDepth int) error {
	if t.Mutable {
		return errors.NewErrMutableNotAllowedOnMultiConsumerMailbox(x.name)
	}

	var err error
	for _, destination := range x.destinations {
		if deliverErr := destination.Deliver(t, msg, redirectDepth); deliverErr != nil {
			err = multierr.Append(err, fmt.Errorf("mailbox=(%s): %w", destination.Name(), deliverErr))
			continue
		}
		x.metric.Delivered(1)
	}
	return err
}

// SetDeliveryFilter always fails with ErrOperationNotSupported
func (x *Mailbox) SetDeliveryFilter(mailbox.Type, mailbox.Filter, mailbox.Subscriber) error {
	return errors.NewErrOperationNotSupported("SetDeliveryFilter", x.name)
}

// DropDeliveryFilter does nothing
func (x *Mailbox) DropDeliveryFilter(mailbox.Type, mailbox.Subscriber) {}
