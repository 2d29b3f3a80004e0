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

// Package composite provides a mailbox routing each message type to its own
// destination mailbox.
package composite

import (
	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
)

// Mailbox is the composite mailbox. Every operation is forwarded to the destination
// registered for its type; unknown types follow the Reaction chosen at build time.
// The routing table is fixed once built.
type Mailbox struct {
	id       mailbox.ID
	name     string
	kind     mailbox.Kind
	reaction Reaction
	sinks    map[mailbox.Type]mailbox.Mailbox
	logger   log.Logger
	metric   *metric.MailboxMetric
}

// enforce compilation error
var _ mailbox.Mailbox = (*Mailbox)(nil)

// ID returns the mailbox identity
func (x *Mailbox) ID() mailbox.ID {
	return x.id
}

// Name returns the mailbox name
func (x *Mailbox) Name() string {
	return x.name
}

// Kind returns the kind chosen at build time
func (x *Mailbox) Kind() mailbox.Kind {
	return x.kind
}

// Subscribe subscribes sub to the destination of type t
func (x *Mailbox) Subscribe(t mailbox.Type, sub mailbox.Subscriber, limit *mailbox.Limit) error {
	destination, err := x.route(t)
	if destination == nil {
		return err
	}
	return destination.Subscribe(t, sub, limit)
}

// Unsubscribe unsubscribes sub from the destination of type t
func (x *Mailbox) Unsubscribe(t mailbox.Type, sub mailbox.Subscriber) {
	if destination, _ := x.route(t); destination != nil {
		destination.Unsubscribe(t, sub)
	}
}

// Deliver forwards msg to the destination of type t
func (x *Mailbox) Deliver(t mailbox.Type, msg *mailbox.Message, redirectDepth int) error {
	if t.Mutable && x.kind == mailbox.MultiConsumer {
		return errors.NewErrMutableNotAllowedOnMultiConsumerMailbox(x.name)
	}

	destination, err := x.route(t)
	if destination == nil {
		if err == nil {
			x.metric.Dropped()
			x.logger.Debugf("mailbox=(%s) has no destination for message of type=(%s), message dropped", x.name, t)
		}
		return err
	}

	if err := destination.Deliver(t, msg, redirectDepth); err != nil {
		return err
	}
	x.metric.Delivered(1)
	return nil
}

// SetDeliveryFilter installs the filter on the destination of type t
func (x *Mailbox) SetDeliveryFilter(t mailbox.Type, filter mailbox.Filter, sub mailbox.Subscriber) error {
	destination, err := x.route(t)
	if destination == nil {
		return err
	}
	return destination.SetDeliveryFilter(t, filter, sub)
}

// DropDeliveryFilter removes the filter from the destination of type t
func (x *Mailbox) DropDeliveryFilter(t mailbox.Type, sub mailbox.Subscriber) {
	if destination, _ := x.route(t); destination != nil {
		destination.DropDeliveryFilter(t, sub)
	}
}

// route returns the destination of t. A nil destination with a nil error means
// the operation is dropped.
func (x *Mailbox) route(t mailbox.Type) (mailbox.Mailbox, error) {
	if destination, ok := x.sinks[t]; ok {
		return destination, nil
	}

	switch x.reaction.kind {
	case redirectIfNotFound:
		return x.reaction.destination, nil
	case failIfNotFound:
		return nil, errors.NewErrNoSinkForMessageType(t)
	default:
		return nil, nil
	}
}
