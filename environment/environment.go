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

package environment

import (
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"

	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/internal/xsync"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
	"github.com/tochemey/goakt-extra/mailboxes/plain"
)

// Environment is the default mailbox.Environment.
// It hands out mailbox identities and creates the plain mailboxes routing
// policies delegate to.
type Environment struct {
	logger        log.Logger
	meterProvider otelmetric.MeterProvider
	meter         otelmetric.Meter

	lastID atomic.Uint64
	named  *xsync.ShardedMap[*plain.Mailbox]
	mpmc   *metric.MailboxMetric
	direct *metric.MailboxMetric
}

// enforce compilation error
var _ mailbox.Environment = (*Environment)(nil)

// New creates an Environment
func New(opts ...Option) *Environment {
	env := &Environment{
		logger: log.DefaultLogger,
		named:  xsync.NewShardedMap[*plain.Mailbox](),
	}

	for _, opt := range opts {
		opt.Apply(env)
	}

	env.meter = metric.NewProvider(env.meterProvider).Meter()
	env.mpmc = metric.Instrument(env.meter, "mpmc", env.logger)
	env.direct = metric.Instrument(env.meter, "direct", env.logger)
	return env
}

// NextID returns a fresh mailbox identity
func (x *Environment) NextID() mailbox.ID {
	return mailbox.ID(x.lastID.Inc())
}

// CreateMailbox creates an anonymous multi-consumer mailbox
func (x *Environment) CreateMailbox() mailbox.Mailbox {
	return plain.New(x.NextID(), plain.WithLogger(x.logger), plain.WithMetric(x.mpmc))
}

// CreateDirectMailbox creates a single-consumer mailbox owned by owner
func (x *Environment) CreateDirectMailbox(owner mailbox.Subscriber) mailbox.Mailbox {
	return plain.NewDirect(x.NextID(), owner, plain.WithLogger(x.logger), plain.WithMetric(x.direct))
}

// NamedMailbox returns the multi-consumer mailbox registered under name
func (x *Environment) NamedMailbox(name string) mailbox.Mailbox {
	mb, _ := x.named.LoadOrStore(name, func() *plain.Mailbox {
		return plain.New(x.NextID(),
			plain.WithName(name),
			plain.WithLogger(x.logger),
			plain.WithMetric(x.mpmc))
	})
	return mb
}

// Logger returns the environment logger
func (x *Environment) Logger() log.Logger {
	return x.logger
}

// Meter returns the meter used to instrument mailboxes
func (x *Environment) Meter() otelmetric.Meter {
	return x.meter
}
