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

package plain

import (
	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a mailbox.
	Apply(mb *Mailbox)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Mailbox)

func (f OptionFunc) Apply(mb *Mailbox) {
	f(mb)
}

// WithName sets the mailbox name
func WithName(name string) Option {
	return OptionFunc(func(mb *Mailbox) {
		mb.name = name
	})
}

// WithLogger sets the mailbox logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(mb *Mailbox) {
		mb.logger = logger
	})
}

// WithMetric sets the instrumentation of the mailbox
func WithMetric(mailboxMetric *metric.MailboxMetric) Option {
	return OptionFunc(func(mb *Mailbox) {
		mb.metric = mailboxMetric
	})
}
