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
	"reflect"

	"go.uber.org/atomic"
)

// Message is a reference-counted message instance.
//
// A Message starts with one reference owned by its creator. Every holder that keeps
// the message beyond the call that handed it over must Retain it and later Release it.
// When the last reference is released the release hook, if any, runs exactly once.
// Envelopes and upcast views hold a reference on the message they wrap, so the wrapped
// message outlives all of them.
type Message struct {
	typ       Type
	payload   any
	signal    bool
	refs      atomic.Int32
	onRelease func()
	inner     *Message
}

// NewMessage creates an immutable message carrying payload.
// The message Type is derived from the dynamic type of payload.
func NewMessage(payload any) *Message {
	return newMessage(Type{Of: reflect.TypeOf(payload)}, payload)
}

// NewMutableMessage creates a mutable message carrying payload.
// A mutable message is exclusively owned by its single receiver.
func NewMutableMessage(payload any) *Message {
	return newMessage(Type{Of: reflect.TypeOf(payload), Mutable: true}, payload)
}

// NewSignal creates a payload-less message of type *T.
func NewSignal[T any]() *Message {
	msg := newMessage(TypeOf[*T](), nil)
	msg.signal = true
	return msg
}

// Envelop wraps inner into a tracking envelope that carries the same type and payload.
// onRelease runs once when the envelope's last reference is released; the envelope
// then releases its hold on inner.
func Envelop(inner *Message, onRelease func()) *Message {
	inner.Retain()
	msg := newMessage(inner.typ, inner.payload)
	msg.signal = inner.signal
	msg.inner = inner
	msg.onRelease = onRelease
	return msg
}

// Upcast returns a view of the message observed as typ with the given payload.
// The view keeps the wrapped message alive until the view itself is released.
func (m *Message) Upcast(typ Type, payload any) *Message {
	m.Retain()
	msg := newMessage(typ, payload)
	msg.signal = m.signal
	msg.inner = m
	return msg
}

// Type returns the message type
func (m *Message) Type() Type {
	return m.typ
}

// Payload returns the message payload. It is nil for signals.
func (m *Message) Payload() any {
	return m.payload
}

// IsSignal reports whether the message carries no payload
func (m *Message) IsSignal() bool {
	return m.signal
}

// IsMutable reports whether the message is exclusively owned
func (m *Message) IsMutable() bool {
	return m.typ.Mutable
}

// Retain adds a reference to the message and returns it
func (m *Message) Retain() *Message {
	m.refs.Inc()
	return m
}

// Release drops a reference. Releasing more references than were taken
// is a programming error and panics.
func (m *Message) Release() {
	refs := m.refs.Dec()
	switch {
	case refs > 0:
		return
	case refs < 0:
		panic("mailbox: message released more times than retained")
	}

	if m.onRelease != nil {
		m.onRelease()
	}

	if m.inner != nil {
		m.inner.Release()
	}
}

func newMessage(typ Type, payload any) *Message {
	msg := &Message{
		typ:     typ,
		payload: payload,
	}
	msg.refs.Store(1)
	return msg
}

// PayloadAs returns the payload of msg as T
func PayloadAs[T any](msg *Message) (T, bool) {
	value, ok := msg.payload.(T)
	return value, ok
}
