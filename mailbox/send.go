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

package mailbox

import (
	"github.com/tochemey/goakt-extra/errors"
)

// Send builds an immutable message from payload and delivers it through mb.
func Send(mb Mailbox, payload any) error {
	return Deliver(mb, NewMessage(payload))
}

// SendMutable builds a mutable message from payload and delivers it through mb.
// It fails with ErrMutableNotAllowedOnMultiConsumerMailbox when mb is a multi-consumer mailbox.
func SendMutable(mb Mailbox, payload any) error {
	return Deliver(mb, NewMutableMessage(payload))
}

// SendSignal delivers a signal of type *T through mb.
func SendSignal[T any](mb Mailbox) error {
	return Deliver(mb, NewSignal[T]())
}

// Deliver hands msg to mb and releases the caller's reference once done.
// A mutable message is rejected upfront when mb may broadcast it.
func Deliver(mb Mailbox, msg *Message) error {
	defer msg.Release()
	if msg.IsMutable() && mb.Kind() == MultiConsumer {
		return errors.NewErrMutableNotAllowedOnMultiConsumerMailbox(mb.Name())
	}
	return mb.Deliver(msg.Type(), msg, 0)
}

// Accepts reports whether filter lets msg through. A nil filter accepts everything.
func Accepts(filter Filter, msg *Message) bool {
	return filter == nil || filter(msg)
}
