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

// Package hierarchy routes messages of a type hierarchy to the consumers interested
// in any level of it.
//
// A hierarchy is made of a root type embedding Root and node types embedding their
// parent, each node being declared with RegisterNode:
//
//	type Event struct {
//		hierarchy.Root[Event]
//	}
//
//	type Started struct {
//		Event
//	}
//
//	func init() {
//		hierarchy.MustRegisterNode(func(s *Started) *Event { return &s.Event })
//	}
//
// Messages carry pointers to hierarchy types. A *Started published through the
// sending mailbox of a Demuxer[Event] reaches a consumer subscribed to Event as an
// *Event, and a consumer subscribed to both Started and Event only as a *Started.
package hierarchy

import (
	"fmt"

	"go.uber.org/atomic"

	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
	"github.com/tochemey/goakt-extra/mailboxes/unique"
)

// ConsumerModel tells whether a message may reach several consumers
type ConsumerModel int

const (
	// MultiConsumer demuxers broadcast immutable messages to every interested consumer
	// and reject mutable ones.
	MultiConsumer ConsumerModel = iota
	// SingleConsumer demuxers allow one subscriber per consumer and type, and carry
	// mutable messages as long as a single consumer is interested.
	SingleConsumer
)

// String returns the model name
func (m ConsumerModel) String() string {
	switch m {
	case MultiConsumer:
		return "multi-consumer"
	case SingleConsumer:
		return "single-consumer"
	default:
		return "unknown"
	}
}

// Demuxer dispatches messages of the hierarchy rooted at R to its consumers.
// Messages are published through SendingMailbox; consumers receive them through
// their receiving mailboxes.
type Demuxer[R Member[R]] struct {
	env        mailbox.Environment
	model      ConsumerModel
	name       string
	root       *upcaster
	controller *controller
	logger     log.Logger
	metric     *metric.MailboxMetric
	sending    *sendingMailbox[R]
	lastID     atomic.Uint64
}

// NewDemuxer creates a Demuxer for the hierarchy rooted at R
func NewDemuxer[R Member[R]](env mailbox.Environment, model ConsumerModel) *Demuxer[R] {
	root := rootOf[R]()
	demuxer := &Demuxer[R]{
		env:        env,
		model:      model,
		root:       root,
		controller: newController(),
		logger:     env.Logger(),
		metric:     metric.Instrument(env.Meter(), "demuxer", env.Logger()),
	}

	id := env.NextID()
	demuxer.name = fmt.Sprintf("<mbox:type=DEMUX(%s):root=%s:id=%d>", model, root.typ, id)
	demuxer.sending = &sendingMailbox[R]{id: id, demuxer: demuxer}
	return demuxer
}

// Model returns the consumer model
func (d *Demuxer[R]) Model() ConsumerModel {
	return d.model
}

// SendingMailbox returns the mailbox messages are published through
func (d *Demuxer[R]) SendingMailbox() mailbox.Mailbox {
	return d.sending
}

// AllocateConsumer creates a new Consumer
func (d *Demuxer[R]) AllocateConsumer() *Consumer[R] {
	return &Consumer[R]{
		id:        d.lastID.Inc(),
		demuxer:   d,
		mailboxes: make(map[mailbox.Type]*receivingMailbox),
	}
}

// newUnderlying creates the mailbox keeping the subscriptions of a receiving mailbox
func (d *Demuxer[R]) newUnderlying() mailbox.Mailbox {
	if d.model == SingleConsumer {
		return unique.New(d.env)
	}
	return d.env.CreateMailbox()
}
