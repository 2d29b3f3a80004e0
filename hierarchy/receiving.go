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
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/mailbox"
)

// receivingMailbox is the per-type mailbox a consumer hands to its subscribers.
//
// Subscriptions are kept by an underlying mailbox: a plain multi-consumer one for a
// multi-consumer demuxer, a unique-subscriber one otherwise. The mailbox is reachable
// from the routing table only while it has subscribers.
type receivingMailbox struct {
	typ        mailbox.Type
	consumerID uint64
	controller *controller
	underlying mailbox.Mailbox
	route      *route

	mu          sync.Mutex
	subscribers mapset.Set[mailbox.Subscriber]
	closed      bool
}

// enforce compilation error
var _ mailbox.Mailbox = (*receivingMailbox)(nil)

func newReceivingMailbox(typ mailbox.Type, consumerID uint64, ctrl *controller, underlying mailbox.Mailbox) *receivingMailbox {
	rm := &receivingMailbox{
		typ:         typ,
		consumerID:  consumerID,
		controller:  ctrl,
		underlying:  underlying,
		subscribers: mapset.NewThreadUnsafeSet[mailbox.Subscriber](),
	}
	rm.route = newRoute(underlying, rm.teardown)
	return rm
}

func (x *receivingMailbox) ID() mailbox.ID {
	return x.underlying.ID()
}

func (x *receivingMailbox) Name() string {
	return x.underlying.Name()
}

func (x *receivingMailbox) Kind() mailbox.Kind {
	return x.underlying.Kind()
}

func (x *receivingMailbox) Subscribe(t mailbox.Type, sub mailbox.Subscriber, limit *mailbox.Limit) error {
	if err := x.checkType(t); err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return errors.ErrConsumerClosed
	}

	if err := x.underlying.Subscribe(t, sub, limit); err != nil {
		return err
	}

	if x.subscribers.Add(sub) && x.subscribers.Cardinality() == 1 {
		x.controller.attach(x.consumerID, x.typ, x.route)
	}
	return nil
}

func (x *receivingMailbox) Unsubscribe(t mailbox.Type, sub mailbox.Subscriber) {
	if t != x.typ {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	x.underlying.Unsubscribe(t, sub)
	if !x.subscribers.Contains(sub) {
		return
	}

	x.subscribers.Remove(sub)
	if x.subscribers.Cardinality() == 0 && !x.closed {
		x.controller.detach(x.consumerID, x.typ)
	}
}

// Deliver hands msg straight to the subscribers of this mailbox, bypassing the demuxer
func (x *receivingMailbox) Deliver(t mailbox.Type, msg *mailbox.Message, redirectDepth int) error {
	if err := x.checkType(t); err != nil {
		return err
	}
	return x.underlying.Deliver(t, msg, redirectDepth)
}

func (x *receivingMailbox) SetDeliveryFilter(t mailbox.Type, filter mailbox.Filter, sub mailbox.Subscriber) error {
	if err := x.checkType(t); err != nil {
		return err
	}
	return x.underlying.SetDeliveryFilter(t, filter, sub)
}

func (x *receivingMailbox) DropDeliveryFilter(t mailbox.Type, sub mailbox.Subscriber) {
	if t == x.typ {
		x.underlying.DropDeliveryFilter(t, sub)
	}
}

// close forbids new subscriptions. Existing ones are dropped by teardown.
func (x *receivingMailbox) close() {
	x.mu.Lock()
	x.closed = true
	x.mu.Unlock()
}

// teardown drops every subscription once no delivery uses the mailbox anymore
func (x *receivingMailbox) teardown() {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, sub := range x.subscribers.ToSlice() {
		x.underlying.Unsubscribe(x.typ, sub)
	}
	x.subscribers.Clear()
}

func (x *receivingMailbox) checkType(t mailbox.Type) error {
	if t != x.typ {
		return errors.NewErrDifferentMessageType(x.typ, t)
	}
	return nil
}
