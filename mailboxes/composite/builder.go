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

package composite

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/metric"
	"github.com/tochemey/goakt-extra/mailbox"
)

// Builder stages the destinations of a composite mailbox.
// Errors are accumulated and reported by Build, so calls can be chained.
type Builder struct {
	kind     mailbox.Kind
	reaction Reaction
	sinks    map[mailbox.Type]mailbox.Mailbox
	err      error
}

// NewBuilder creates a Builder for a composite mailbox of the given kind
func NewBuilder(kind mailbox.Kind, reaction Reaction) *Builder {
	builder := &Builder{
		kind:     kind,
		reaction: reaction,
		sinks:    make(map[mailbox.Type]mailbox.Mailbox),
	}

	if reaction.kind == redirectIfNotFound && reaction.destination == nil {
		builder.err = errors.NewErrInvalidArgument(fmt.Errorf("the [default destination] is required"))
	}
	return builder
}

// NewMultiConsumerBuilder creates a Builder for a multi-consumer composite mailbox
func NewMultiConsumerBuilder(reaction Reaction) *Builder {
	return NewBuilder(mailbox.MultiConsumer, reaction)
}

// NewSingleConsumerBuilder creates a Builder for a single-consumer composite mailbox
func NewSingleConsumerBuilder(reaction Reaction) *Builder {
	return NewBuilder(mailbox.SingleConsumer, reaction)
}

// Add routes messages of type t to destination.
//
// A mutable type cannot be routed by a multi-consumer composite, and its destination
// must itself be single-consumer. Each type may have one destination only.
func (b *Builder) Add(t mailbox.Type, destination mailbox.Mailbox) *Builder {
	switch {
	case destination == nil:
		b.err = multierr.Append(b.err, errors.NewErrInvalidArgument(fmt.Errorf("the [destination] of type=(%s) is required", t)))
	case t.Mutable && b.kind == mailbox.MultiConsumer:
		b.err = multierr.Append(b.err, errors.NewErrMutableNotAllowedOnMultiConsumerMailbox(fmt.Sprintf("composite(type=%s)", t)))
	case t.Mutable && destination.Kind() == mailbox.MultiConsumer:
		b.err = multierr.Append(b.err, errors.NewErrMutableNotAllowedOnMultiConsumerMailbox(destination.Name()))
	default:
		if _, exists := b.sinks[t]; exists {
			b.err = multierr.Append(b.err, errors.NewErrInvalidArgument(fmt.Errorf("type=(%s) already has a destination", t)))
			break
		}
		b.sinks[t] = destination
	}
	return b
}

// Build creates the composite mailbox, or returns every error met while staging
func (b *Builder) Build(env mailbox.Environment) (*Mailbox, error) {
	if b.err != nil {
		return nil, b.err
	}

	sinks := make(map[mailbox.Type]mailbox.Mailbox, len(b.sinks))
	for t, destination := range b.sinks {
		sinks[t] = destination
	}

	id := env.NextID()
	return &Mailbox{
		id:       id,
		name:     fmt.Sprintf("<mbox:type=COMPOSITE(%s):id=%d>", kindLabel(b.kind), id),
		kind:     b.kind,
		reaction: b.reaction,
		sinks:    sinks,
		logger:   env.Logger(),
		metric:   metric.Instrument(env.Meter(), "composite", env.Logger()),
	}, nil
}

func kindLabel(kind mailbox.Kind) string {
	if kind == mailbox.SingleConsumer {
		return "MPSC"
	}
	return "MPMC"
}
