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
	"reflect"

	"go.uber.org/multierr"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/mailbox"
)

// sendingMailbox publishes messages to the consumers of a demuxer
type sendingMailbox[R Member[R]] struct {
	id      mailbox.ID
	demuxer *Demuxer[R]
}

func (x *sendingMailbox[R]) ID() mailbox.ID {
	return x.id
}

func (x *sendingMailbox[R]) Name() string {
	return x.demuxer.name
}

func (x *sendingMailbox[R]) Kind() mailbox.Kind {
	if x.demuxer.model == SingleConsumer {
		return mailbox.SingleConsumer
	}
	return mailbox.MultiConsumer
}

// Subscribe fails with ErrOperationNotSupported: consumers subscribe through
// their receiving mailboxes
func (x *sendingMailbox[R]) Subscribe(mailbox.Type, mailbox.Subscriber, *mailbox.Limit) error {
	return errors.NewErrOperationNotSupported("Subscribe", x.demuxer.name)
}

func (x *sendingMailbox[R]) Unsubscribe(mailbox.Type, mailbox.Subscriber) {}

// Deliver routes msg to every consumer registered at some level of the ancestor
// chain of its payload, through the nearest registered level.
// A mutable message is delivered only when exactly one consumer is interested.
func (x *sendingMailbox[R]) Deliver(t mailbox.Type, msg *mailbox.Message, redirectDepth int) error {
	demuxer := x.demuxer
	if msg.IsSignal() {
		return errors.ErrSignalCannotBeDelivered
	}

	if t.Mutable && demuxer.model == MultiConsumer {
		return errors.ErrMutableNotAllowedOnBroadcastController
	}

	payload := msg.Payload()
	payloadType := mailbox.Type{Of: reflect.TypeOf(payload)}
	if _, ok := payload.(Member[R]); !ok {
		return errors.NewErrMessageIsNotDerivedFromRoot(payloadType, demuxer.root.typ)
	}

	concrete, ok := upcasters.Get(payloadType.Of)
	if !ok || concrete.root != demuxer.root {
		return errors.NewErrNodeNotRegistered(payloadType)
	}

	candidates := demuxer.controller.lookup(chainOf(concrete, payload), t.Mutable)
	if len(candidates) == 0 {
		demuxer.logger.Debugf("demuxer=(%s) has no consumer for message of type=(%s)", demuxer.name, t)
		return nil
	}

	if t.Mutable && len(candidates) > 1 {
		for _, found := range candidates {
			found.route.release()
		}
		return errors.NewErrMoreThanOneSubscriberForMutableMessage(t, len(candidates))
	}

	var err error
	delivered := 0
	for _, found := range candidates {
		view := msg.Upcast(mailbox.Type{Of: found.level.upcaster.typ, Mutable: t.Mutable}, found.level.payload)
		if deliverErr := found.route.mailbox.Deliver(view.Type(), view, redirectDepth); deliverErr != nil {
			err = multierr.Append(err, deliverErr)
		} else {
			delivered++
		}
		view.Release()
		found.route.release()
	}

	demuxer.metric.Delivered(int64(delivered))
	return err
}

// SetDeliveryFilter fails with ErrOperationNotSupported: filters are set on
// receiving mailboxes
func (x *sendingMailbox[R]) SetDeliveryFilter(mailbox.Type, mailbox.Filter, mailbox.Subscriber) error {
	return errors.NewErrOperationNotSupported("SetDeliveryFilter", x.demuxer.name)
}

func (x *sendingMailbox[R]) DropDeliveryFilter(mailbox.Type, mailbox.Subscriber) {}
