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
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/goakt-extra/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of an environment.
	Apply(env *Environment)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Environment)

func (f OptionFunc) Apply(env *Environment) {
	f(env)
}

// WithLogger sets the logger handed to every mailbox of the environment
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(env *Environment) {
		env.logger = logger
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider used to instrument mailboxes.
// When not set the global meter provider is used.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(env *Environment) {
		env.meterProvider = provider
	})
}
