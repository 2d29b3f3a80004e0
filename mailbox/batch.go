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

	gerrors "github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/internal/validation"
	"github.com/tochemey/goakt-extra/log"
)

var errRegistrationRolledBack = errors.New("registration rolled back")

type registration struct {
	mailbox    Mailbox
	typ        Type
	subscriber Subscriber
	limit      *Limit
	filter     Filter
	previous   Registration
}

func (r *registration) apply() error {
	if inspector, ok := r.mailbox.(Inspector); ok {
		r.previous, _ = inspector.Registration(r.typ, r.subscriber)
	}

	if r.filter != nil {
		if err := r.mailbox.SetDeliveryFilter(r.typ, r.filter, r.subscriber); err != nil {
			return err
		}
	}

	if err := r.mailbox.Subscribe(r.typ, r.subscriber, r.limit); err != nil {
		r.restoreFilter()
		return err
	}
	return nil
}

// revert puts back the registration found before apply
func (r registration) revert() {
	switch {
	case !r.previous.Subscribed:
		r.mailbox.Unsubscribe(r.typ, r.subscriber)
	case r.previous.Limit != r.limit:
		if err := r.mailbox.Subscribe(r.typ, r.subscriber, r.previous.Limit); err != nil {
			panic(fmt.Errorf("restoring subscription of %s on mailbox=(%s): %w", r.subscriber.ID(), r.mailbox.Name(), err))
		}
	}
	r.restoreFilter()
}

func (r registration) restoreFilter() {
	if r.filter == nil {
		return
	}

	if r.previous.Filter == nil {
		r.mailbox.DropDeliveryFilter(r.typ, r.subscriber)
		return
	}

	if err := r.mailbox.SetDeliveryFilter(r.typ, r.previous.Filter, r.subscriber); err != nil {
		panic(fmt.Errorf("restoring filter of %s on mailbox=(%s): %w", r.subscriber.ID(), r.mailbox.Name(), err))
	}
}

// Batch registers several subscriptions as a single unit.
//
// Registrations are staged with Add and validated before anything is touched.
// Commit then applies them in order; when one fails, every registration already
// applied by that Commit is undone in reverse order and the triggering error is returned.
// On mailboxes implementing Inspector, undoing restores the subscription and filter
// found before the Commit instead of removing them.
type Batch struct {
	logger  log.Logger
	staged  []registration
	applied []registration
}

// NewBatch creates an empty Batch
func NewBatch(logger log.Logger) *Batch {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Batch{logger: logger}
}

// Add stages a subscription of sub to messages of type t on mb
func (b *Batch) Add(mb Mailbox, t Type, sub Subscriber, limit *Limit) *Batch {
	b.staged = append(b.staged, registration{mailbox: mb, typ: t, subscriber: sub, limit: limit})
	return b
}

// AddFiltered stages a subscription guarded by a delivery filter
func (b *Batch) AddFiltered(mb Mailbox, t Type, sub Subscriber, limit *Limit, filter Filter) *Batch {
	b.staged = append(b.staged, registration{mailbox: mb, typ: t, subscriber: sub, limit: limit, filter: filter})
	return b
}

// Len returns the number of staged registrations
func (b *Batch) Len() int {
	return len(b.staged)
}

// Commit applies every staged registration or none of them.
func (b *Batch) Commit() error {
	if err := b.validate(); err != nil {
		return err
	}

	applied := make([]registration, 0, len(b.staged))
	for index := range b.staged {
		reg := &b.staged[index]
		if err := reg.apply(); err != nil {
			rollback(applied)
			b.logger.Debugf("%v: %d registration(s) undone after failure on mailbox=(%s) type=(%s): %v",
				errRegistrationRolledBack, len(applied), reg.mailbox.Name(), reg.typ, err)
			return err
		}
		applied = append(applied, *reg)
	}

	b.applied = append(b.applied, applied...)
	b.staged = nil
	return nil
}

// Revert undoes every registration committed through this Batch
func (b *Batch) Revert() {
	rollback(b.applied)
	b.applied = nil
}

func (b *Batch) validate() error {
	chain := validation.New(validation.AllErrors())
	for index, reg := range b.staged {
		chain.
			AddValidator(validation.NewNotNilValidator(fmt.Sprintf("registration[%d].mailbox", index), reg.mailbox)).
			AddValidator(validation.NewNotNilValidator(fmt.Sprintf("registration[%d].subscriber", index), reg.subscriber)).
			AddAssertion(!reg.typ.IsZero(), fmt.Sprintf("registration[%d].type is required", index))
	}
	if err := chain.Validate(); err != nil {
		return gerrors.NewErrInvalidArgument(err)
	}
	return nil
}

func rollback(applied []registration) {
	for i := len(applied) - 1; i >= 0; i-- {
		applied[i].revert()
	}
}
