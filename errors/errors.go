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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrDifferentMessageType is returned when a mailbox built for a single message type
	// is used with another message type.
	ErrDifferentMessageType = errors.New("different message type")

	// ErrOperationNotSupported is returned when a routing policy structurally cannot
	// support the requested operation (direct subscription or delivery filters).
	ErrOperationNotSupported = errors.New("operation is not supported by the mailbox")

	// ErrMessageIsNotDerivedFromRoot is returned by the demuxer when the payload does not
	// belong to the hierarchy the demuxer has been built for.
	ErrMessageIsNotDerivedFromRoot = errors.New("message is not derived from the hierarchy root")

	// ErrSignalCannotBeDelivered is returned by the demuxer when a signal is sent to it.
	// A signal carries no payload, hence there is nothing to upcast.
	ErrSignalCannotBeDelivered = errors.New("signal cannot be delivered via a hierarchical demuxer")

	// ErrNodeNotRegistered is returned when a payload embeds the hierarchy root but its
	// concrete type has never been declared as a node of the hierarchy.
	ErrNodeNotRegistered = errors.New("message type is not registered in the hierarchy")

	// ErrConsumerClosed is returned when a receiving mailbox is requested from, or subscribed
	// through, a demuxer consumer that has been closed.
	ErrConsumerClosed = errors.New("demuxer consumer is closed")

	// ErrMutableNotAllowedOnBroadcastController is returned when a mutable message is
	// delivered, or a mutable receiving mailbox is requested, on a multi-consumer demuxer.
	ErrMutableNotAllowedOnBroadcastController = errors.New("mutable message is not allowed on a multi-consumer demuxer")

	// ErrMutableNotAllowedOnMultiConsumerMailbox is returned when a mutable message is
	// delivered to a mailbox that may have several subscribers.
	ErrMutableNotAllowedOnMultiConsumerMailbox = errors.New("mutable message cannot be delivered via a multi-consumer mailbox")

	// ErrMoreThanOneSubscriberForMutableMessage is returned by a single-consumer demuxer
	// when two or more consumers are eligible for the same mutable message.
	ErrMoreThanOneSubscriberForMutableMessage = errors.New("more than one subscriber for a mutable message")

	// ErrSubscriptionAlreadyExists is returned by a unique-subscriber mailbox when a second
	// subscriber tries to subscribe to the same message type.
	ErrSubscriptionAlreadyExists = errors.New("subscription already exists")

	// ErrIllegalSubscriber is returned when a direct mailbox is subscribed by someone else
	// than its owner.
	ErrIllegalSubscriber = errors.New("subscriber is not the owner of the mailbox")

	// ErrNoSinkForMessageType is returned by a composite mailbox configured to fail when no
	// destination has been registered for the message type.
	ErrNoSinkForMessageType = errors.New("no sink for message type")

	// ErrInvalidArgument is returned when a mailbox builder receives an invalid argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRedirectionTooDeep is reported when a message has been redirected too many times.
	ErrRedirectionTooDeep = errors.New("message redirection is too deep")
)

// NewErrDifferentMessageType formats an ErrDifferentMessageType with the expected and actual types.
func NewErrDifferentMessageType(expected, actual fmt.Stringer) error {
	return fmt.Errorf("(expected=%s, actual=%s) %w", expected, actual, ErrDifferentMessageType)
}

// NewErrOperationNotSupported formats an ErrOperationNotSupported with the operation and mailbox names.
func NewErrOperationNotSupported(operation, mailbox string) error {
	return fmt.Errorf("(operation=%s, mailbox=%s) %w", operation, mailbox, ErrOperationNotSupported)
}

// NewErrMessageIsNotDerivedFromRoot formats an ErrMessageIsNotDerivedFromRoot with the payload and root types.
func NewErrMessageIsNotDerivedFromRoot(payload, root fmt.Stringer) error {
	return fmt.Errorf("(payload=%s, root=%s) %w", payload, root, ErrMessageIsNotDerivedFromRoot)
}

// NewErrNodeNotRegistered formats an ErrNodeNotRegistered with the unknown type.
func NewErrNodeNotRegistered(typ fmt.Stringer) error {
	return fmt.Errorf("(type=%s) %w", typ, ErrNodeNotRegistered)
}

// NewErrMutableNotAllowedOnMultiConsumerMailbox formats an ErrMutableNotAllowedOnMultiConsumerMailbox
// with the mailbox name.
func NewErrMutableNotAllowedOnMultiConsumerMailbox(mailbox string) error {
	return fmt.Errorf("(mailbox=%s) %w", mailbox, ErrMutableNotAllowedOnMultiConsumerMailbox)
}

// NewErrMoreThanOneSubscriberForMutableMessage formats an ErrMoreThanOneSubscriberForMutableMessage
// with the message type and the number of eligible consumers.
func NewErrMoreThanOneSubscriberForMutableMessage(typ fmt.Stringer, candidates int) error {
	return fmt.Errorf("(type=%s, candidates=%d) %w", typ, candidates, ErrMoreThanOneSubscriberForMutableMessage)
}

// NewErrSubscriptionAlreadyExists formats an ErrSubscriptionAlreadyExists with the message type.
func NewErrSubscriptionAlreadyExists(typ fmt.Stringer) error {
	return fmt.Errorf("(type=%s) %w", typ, ErrSubscriptionAlreadyExists)
}

// NewErrNoSinkForMessageType formats an ErrNoSinkForMessageType with the message type.
func NewErrNoSinkForMessageType(typ fmt.Stringer) error {
	return fmt.Errorf("(type=%s) %w", typ, ErrNoSinkForMessageType)
}

// NewErrInvalidArgument wraps a validation error into an ErrInvalidArgument.
func NewErrInvalidArgument(err error) error {
	return errors.Join(ErrInvalidArgument, err)
}
