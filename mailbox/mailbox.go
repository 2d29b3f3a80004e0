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
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/goakt-extra/log"
)

// Mailbox is the contract every routing policy implements. Any routing mailbox
// can be used wherever a plain mailbox is expected.
//
// Concurrency
//   - All methods are safe for concurrent use and run synchronously on the calling
//     goroutine. Blocking is limited to short internal locks.
//
// Errors
//   - Subscribe and Deliver fail with ErrDifferentMessageType when the mailbox has been
//     built for a single message type and another one is used.
//   - SetDeliveryFilter and direct subscriptions fail with ErrOperationNotSupported on
//     policies that cannot honor them.
//   - Unsubscribe and DropDeliveryFilter never fail; unknown subscribers are ignored.
//
// Redirection
//   - Deliver receives the number of redirections the message already went through.
//     Implementations re-delivering internally pass it along unchanged.
type Mailbox interface {
	// ID returns the identity of the mailbox
	ID() ID
	// Name returns a human readable name, unique within the environment
	Name() string
	// Kind reports whether the mailbox may deliver a message to several subscribers
	Kind() Kind
	// Subscribe registers sub for messages of type t. Subscribing twice is idempotent;
	// the latest limit wins.
	Subscribe(t Type, sub Subscriber, limit *Limit) error
	// Unsubscribe removes the subscription of sub for type t
	Unsubscribe(t Type, sub Subscriber)
	// Deliver routes msg according to the mailbox policy
	Deliver(t Type, msg *Message, redirectDepth int) error
	// SetDeliveryFilter installs a predicate evaluated before pushing type t to sub
	SetDeliveryFilter(t Type, filter Filter, sub Subscriber) error
	// DropDeliveryFilter removes the predicate installed for sub and type t
	DropDeliveryFilter(t Type, sub Subscriber)
}

// Registration is what a mailbox holds for one subscriber and one message type.
// It may carry a filter without a subscription.
type Registration struct {
	Subscribed bool
	Limit      *Limit
	Filter     Filter
}

// Inspector is implemented by mailboxes able to report an existing registration.
// Batch uses it to restore what was there before a failed commit.
type Inspector interface {
	// Registration returns the registration of sub for type t, false when there is none
	Registration(t Type, sub Subscriber) (Registration, bool)
}

// Subscriber is anything able to receive a pushed message, typically an actor inbox.
type Subscriber interface {
	// ID returns the subscriber identity, used as a map key
	ID() string
	// Priority orders subscribers: higher priorities are served first, ties are
	// broken by ID so that iteration is deterministic
	Priority() int
	// Push hands a delivery to the subscriber. It must not block.
	Push(delivery Delivery)
}

// Environment provides the services routing mailboxes need from the host runtime.
type Environment interface {
	// NextID returns a fresh mailbox identity
	NextID() ID
	// CreateMailbox creates an anonymous plain multi-consumer mailbox
	CreateMailbox() Mailbox
	// CreateDirectMailbox creates a plain single-consumer mailbox owned by owner
	CreateDirectMailbox(owner Subscriber) Mailbox
	// NamedMailbox returns the plain multi-consumer mailbox registered under name,
	// creating it on first use
	NamedMailbox(name string) Mailbox
	// Logger returns the environment logger
	Logger() log.Logger
	// Meter returns the meter used for mailbox instrumentation
	Meter() metric.Meter
}

// Less orders two subscribers: higher priority first, then ID.
func Less(a, b Subscriber) bool {
	if a.Priority() != b.Priority() {
		return a.Priority() > b.Priority()
	}
	return a.ID() < b.ID()
}
