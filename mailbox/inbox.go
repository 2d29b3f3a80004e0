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
	"sync"

	gods "github.com/Workiva/go-datastructures/queue"
	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/queue"
	"github.com/tochemey/goakt-extra/internal/xsync"
	"github.com/tochemey/goakt-extra/log"
)

// Inbox is a queue-backed Subscriber. It is the piece of the host runtime an actor
// reads its deliveries from: any goroutine may Push, a single consumer goroutine
// calls Dequeue.
//
// Limits are enforced per subscribed type: once Limit.Max deliveries of a type are
// queued, further ones are redirected to Limit.Redirect or dropped.
// Unbounded inboxes use a lock-free MPSC queue; bounded ones a ring buffer and
// drop deliveries when full rather than block the producer.
type Inbox struct {
	id       string
	priority int
	logger   log.Logger

	unbounded *queue.Mpsc[Delivery]
	bounded   *gods.RingBuffer

	counters *xsync.Map[Type, *atomic.Int64]

	// gate is held shared while enqueuing and exclusively while disposing,
	// so nothing lands in the queue after Dispose drained it
	gate     sync.RWMutex
	disposed atomic.Bool
}

// enforce compilation error
var _ Subscriber = (*Inbox)(nil)

// InboxOption configures an Inbox
type InboxOption func(*Inbox)

// WithCapacity bounds the inbox. Deliveries arriving while the inbox is full are dropped.
func WithCapacity(capacity int) InboxOption {
	return func(inbox *Inbox) {
		if capacity > 0 {
			inbox.bounded = gods.NewRingBuffer(uint64(capacity))
		}
	}
}

// WithPriority sets the subscriber priority
func WithPriority(priority int) InboxOption {
	return func(inbox *Inbox) {
		inbox.priority = priority
	}
}

// WithInboxID sets the subscriber identity instead of a random one
func WithInboxID(id string) InboxOption {
	return func(inbox *Inbox) {
		inbox.id = id
	}
}

// WithInboxLogger sets the logger used to report dropped deliveries
func WithInboxLogger(logger log.Logger) InboxOption {
	return func(inbox *Inbox) {
		inbox.logger = logger
	}
}

// NewInbox creates an Inbox
func NewInbox(opts ...InboxOption) *Inbox {
	inbox := &Inbox{
		id:       uuid.NewString(),
		logger:   log.DiscardLogger,
		counters: xsync.NewMap[Type, *atomic.Int64](),
	}

	for _, opt := range opts {
		opt(inbox)
	}

	if inbox.bounded == nil {
		inbox.unbounded = queue.NewMpsc[Delivery]()
	}
	return inbox
}

// ID returns the inbox identity
func (x *Inbox) ID() string {
	return x.id
}

// Priority returns the inbox priority
func (x *Inbox) Priority() int {
	return x.priority
}

// Push enqueues the delivery, retaining its message.
func (x *Inbox) Push(delivery Delivery) {
	if x.disposed.Load() {
		return
	}

	counter := x.counter(delivery.Type)
	if delivery.Limit != nil && counter.Inc() > int64(delivery.Limit.Max) {
		counter.Dec()
		x.overflow(delivery)
		return
	}

	delivery.Message.Retain()
	if !x.admit(delivery) {
		if delivery.Limit != nil {
			counter.Dec()
		}
		delivery.Message.Release()
		x.logger.Debugf("inbox=(%s) is full or disposed, message of type=(%s) dropped", x.id, delivery.Type)
	}
}

// Dequeue returns the oldest delivery. The caller owns one reference on the
// returned message and must Release it once processed.
// It returns false when the inbox is empty.
func (x *Inbox) Dequeue() (Delivery, bool) {
	delivery, ok := x.dequeue()
	if !ok {
		return Delivery{}, false
	}

	if delivery.Limit != nil {
		x.counter(delivery.Type).Dec()
	}
	return delivery, true
}

// Len returns the number of queued deliveries
func (x *Inbox) Len() int64 {
	if x.bounded != nil {
		return int64(x.bounded.Len())
	}
	return x.unbounded.Len()
}

// Dispose stops the inbox and releases every queued message.
// Must be called from the consumer goroutine.
func (x *Inbox) Dispose() {
	x.gate.Lock()
	swapped := x.disposed.CompareAndSwap(false, true)
	x.gate.Unlock()
	if !swapped {
		return
	}

	for {
		delivery, ok := x.dequeue()
		if !ok {
			break
		}
		delivery.Message.Release()
	}

	if x.bounded != nil {
		x.bounded.Dispose()
	}
}

func (x *Inbox) overflow(delivery Delivery) {
	target := delivery.Limit.Redirect
	if target == nil {
		x.logger.Debugf("inbox=(%s) limit=(%d) reached, message of type=(%s) dropped", x.id, delivery.Limit.Max, delivery.Type)
		return
	}

	depth := delivery.RedirectDepth + 1
	if depth > MaxRedirectDepth {
		x.logger.Warnf("inbox=(%s) message of type=(%s) dropped after %d redirections: %v", x.id, delivery.Type, MaxRedirectDepth, errors.ErrRedirectionTooDeep)
		return
	}

	if err := target.Deliver(delivery.Type, delivery.Message, depth); err != nil {
		x.logger.Errorf("inbox=(%s) failed to redirect message of type=(%s) to mailbox=(%s): %v", x.id, delivery.Type, target.Name(), err)
	}
}

func (x *Inbox) admit(delivery Delivery) bool {
	x.gate.RLock()
	defer x.gate.RUnlock()
	return !x.disposed.Load() && x.enqueue(delivery)
}

func (x *Inbox) enqueue(delivery Delivery) bool {
	if x.bounded == nil {
		x.unbounded.Push(delivery)
		return true
	}

	ok, err := x.bounded.Offer(delivery)
	return ok && err == nil
}

func (x *Inbox) dequeue() (Delivery, bool) {
	if x.bounded == nil {
		return x.unbounded.Pop()
	}

	if x.bounded.Len() == 0 {
		return Delivery{}, false
	}

	item, err := x.bounded.Get()
	if err != nil {
		return Delivery{}, false
	}
	delivery, ok := item.(Delivery)
	return delivery, ok
}

func (x *Inbox) counter(t Type) *atomic.Int64 {
	counter, _ := x.counters.GetOrSet(t, func() *atomic.Int64 { return atomic.NewInt64(0) })
	return counter
}
