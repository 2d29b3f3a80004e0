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
	"sync"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/mailbox"
)

// Consumer is one logical subscriber of a Demuxer. It hands out one receiving
// mailbox per message type; a message published through the demuxer reaches a
// consumer at most once, through the mailbox of the nearest registered ancestor
// of its concrete type.
type Consumer[R Member[R]] struct {
	id      uint64
	demuxer *Demuxer[R]

	mu        sync.Mutex
	mailboxes map[mailbox.Type]*receivingMailbox
	closed    bool
}

// ID returns the consumer identity, unique within its demuxer
func (c *Consumer[R]) ID() uint64 {
	return c.id
}

// Close removes every receiving mailbox of the consumer from the routing table and
// drops their subscriptions. Deliveries already past the routing table complete
// first. Close is idempotent.
func (c *Consumer[R]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	mailboxes := make([]*receivingMailbox, 0, len(c.mailboxes))
	for _, mb := range c.mailboxes {
		mailboxes = append(mailboxes, mb)
	}
	c.mu.Unlock()

	for _, mb := range mailboxes {
		mb.close()
	}

	c.demuxer.controller.removeConsumer(c.id)

	for _, mb := range mailboxes {
		mb.route.release()
	}
	c.demuxer.logger.Debugf("demuxer=(%s) consumer=(%d) closed", c.demuxer.name, c.id)
}

// ReceivingMailbox returns the mailbox through which the consumer receives immutable
// messages observed as *T. Subscribers subscribe to it with mailbox.TypeOf[*T]().
// Asking twice for the same type returns the same mailbox.
//
// T must belong to the hierarchy of R; otherwise the call does not compile.
func ReceivingMailbox[T Member[R], R Member[R]](c *Consumer[R]) (mailbox.Mailbox, error) {
	return c.receivingMailbox(mailbox.Type{Of: reflect.TypeFor[*T]()})
}

// MutableReceivingMailbox returns the mailbox through which the consumer receives
// mutable messages observed as *T. Subscribers subscribe to it with
// mailbox.MutableTypeOf[*T](). It fails with ErrMutableNotAllowedOnBroadcastController
// on a multi-consumer demuxer.
func MutableReceivingMailbox[T Member[R], R Member[R]](c *Consumer[R]) (mailbox.Mailbox, error) {
	if c.demuxer.model == MultiConsumer {
		return nil, errors.ErrMutableNotAllowedOnBroadcastController
	}
	return c.receivingMailbox(mailbox.Type{Of: reflect.TypeFor[*T](), Mutable: true})
}

func (c *Consumer[R]) receivingMailbox(t mailbox.Type) (mailbox.Mailbox, error) {
	level, ok := upcasters.Get(t.Of)
	if !ok || level.root != c.demuxer.root {
		return nil, errors.NewErrNodeNotRegistered(t.Of)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.ErrConsumerClosed
	}

	if mb, ok := c.mailboxes[t]; ok {
		return mb, nil
	}

	mb := newReceivingMailbox(t, c.id, c.demuxer.controller, c.demuxer.newUnderlying())
	c.mailboxes[t] = mb
	return mb, nil
}
