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
	"errors"
	"fmt"
	"sync"
)

type ping struct {
	seq int
}

type pong struct{}

type call struct {
	op            string
	typ           Type
	subscriber    string
	redirectDepth int
}

// recordingMailbox records the calls it receives and fails Subscribe for the
// subscribers listed in failFor.
type recordingMailbox struct {
	name    string
	kind    Kind
	failFor map[string]bool

	mu    sync.Mutex
	calls []call
}

var errSubscribeRefused = errors.New("subscribe refused")

// inspectingMailbox is a recordingMailbox reporting the registrations found in existing
type inspectingMailbox struct {
	*recordingMailbox
	existing map[string]Registration
}

func (m *inspectingMailbox) Registration(_ Type, sub Subscriber) (Registration, bool) {
	registration, ok := m.existing[sub.ID()]
	return registration, ok
}

func newRecordingMailbox(name string, kind Kind) *recordingMailbox {
	return &recordingMailbox{name: name, kind: kind, failFor: make(map[string]bool)}
}

func (m *recordingMailbox) ID() ID       { return 1 }
func (m *recordingMailbox) Name() string { return m.name }
func (m *recordingMailbox) Kind() Kind   { return m.kind }

func (m *recordingMailbox) Subscribe(t Type, sub Subscriber, _ *Limit) error {
	if m.failFor[sub.ID()] {
		return fmt.Errorf("subscriber=%s: %w", sub.ID(), errSubscribeRefused)
	}
	m.record(call{op: "subscribe", typ: t, subscriber: sub.ID()})
	return nil
}

func (m *recordingMailbox) Unsubscribe(t Type, sub Subscriber) {
	m.record(call{op: "unsubscribe", typ: t, subscriber: sub.ID()})
}

func (m *recordingMailbox) Deliver(t Type, _ *Message, redirectDepth int) error {
	m.record(call{op: "deliver", typ: t, redirectDepth: redirectDepth})
	return nil
}

func (m *recordingMailbox) SetDeliveryFilter(t Type, _ Filter, sub Subscriber) error {
	m.record(call{op: "set-filter", typ: t, subscriber: sub.ID()})
	return nil
}

func (m *recordingMailbox) DropDeliveryFilter(t Type, sub Subscriber) {
	m.record(call{op: "drop-filter", typ: t, subscriber: sub.ID()})
}

func (m *recordingMailbox) record(c call) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

func (m *recordingMailbox) ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		ops = append(ops, fmt.Sprintf("%s:%s", c.op, c.subscriber))
	}
	return ops
}

func (m *recordingMailbox) last() call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

// tracked returns a message whose release is counted
func tracked(payload any, released *int) *Message {
	inner := NewMessage(payload)
	defer inner.Release()
	return Envelop(inner, func() { *released++ })
}
