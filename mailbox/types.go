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
	"fmt"
	"reflect"
)

// MaxRedirectDepth bounds how many times a single message may be redirected
// from one mailbox to another because of an overflowing subscriber limit.
const MaxRedirectDepth = 32

// ID identifies a mailbox inside an Environment.
type ID uint64

// Type identifies a message type together with its mutability.
//
// Of is the dynamic type of the payload. Payloads are conventionally pointers,
// so messages carrying a *Ping are identified by TypeOf[*Ping]().
// Two Types differing only by Mutable are distinct subscription keys.
type Type struct {
	Of      reflect.Type
	Mutable bool
}

// TypeOf returns the immutable Type of T
func TypeOf[T any]() Type {
	return Type{Of: reflect.TypeFor[T]()}
}

// MutableTypeOf returns the mutable Type of T
func MutableTypeOf[T any]() Type {
	return Type{Of: reflect.TypeFor[T](), Mutable: true}
}

// AsMutable returns the mutable variant of the Type
func (t Type) AsMutable() Type {
	return Type{Of: t.Of, Mutable: true}
}

// AsImmutable returns the immutable variant of the Type
func (t Type) AsImmutable() Type {
	return Type{Of: t.Of}
}

// IsZero reports whether the Type has not been set
func (t Type) IsZero() bool {
	return t.Of == nil
}

// String returns a human readable form such as "mutable(*pkg.Ping)"
func (t Type) String() string {
	name := "<nil>"
	if t.Of != nil {
		name = t.Of.String()
	}
	if t.Mutable {
		return fmt.Sprintf("mutable(%s)", name)
	}
	return name
}

// Kind tells how many subscribers a mailbox may deliver a single message to.
// The host runtime uses it to reject mutable messages on broadcasting mailboxes.
type Kind int

const (
	// MultiConsumer mailboxes may hand the same message to several subscribers.
	MultiConsumer Kind = iota
	// SingleConsumer mailboxes hand each message to at most one subscriber.
	SingleConsumer
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case MultiConsumer:
		return "multi-consumer"
	case SingleConsumer:
		return "single-consumer"
	default:
		return "unknown"
	}
}

// Filter is a delivery predicate evaluated before a message is pushed to a subscriber.
// Returning false skips that subscriber.
type Filter func(msg *Message) bool

// Limit caps how many messages of one type a subscriber may hold.
// On overflow the message is redirected to Redirect when set, dropped otherwise.
type Limit struct {
	Max      int
	Redirect Mailbox
}

// Delivery is what a mailbox hands to a Subscriber.
type Delivery struct {
	// MailboxID is the mailbox the message went through
	MailboxID ID
	// Type is the type the subscriber registered for
	Type Type
	// Message is the delivered message. The subscriber must Retain it to keep it beyond Push.
	Message *Message
	// Limit is the limit set at subscription time, nil when unlimited
	Limit *Limit
	// RedirectDepth counts redirections already performed for this message
	RedirectDepth int
}
