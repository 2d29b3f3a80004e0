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

package metric

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/goakt-extra/log"
)

const policyKey = "mailbox.policy"

// MailboxMetric defines the routing mailbox instrumentation
type MailboxMetric struct {
	// Specifies the total number of messages handed to subscribers or downstream mailboxes
	deliveredCount metric.Int64Counter
	// Specifies the total number of messages dropped or refused by the policy
	droppedCount metric.Int64Counter
	// Specifies the number of messages currently in flight
	inflight metric.Int64UpDownCounter
	// Specifies the attributes recorded with every measurement
	attributes metric.MeasurementOption
}

// NewMailboxMetric creates an instance of MailboxMetric for the given routing policy
func NewMailboxMetric(meter metric.Meter, policy string) (*MailboxMetric, error) {
	mailboxMetric := &MailboxMetric{
		attributes: metric.WithAttributes(attribute.String(policyKey, policy)),
	}

	var err error
	if mailboxMetric.deliveredCount, err = meter.Int64Counter(
		"mailbox_delivered_count",
		metric.WithDescription("Total number of messages delivered by the mailbox"),
	); err != nil {
		return nil, fmt.Errorf("failed to create deliveredCount instrument, %w", err)
	}

	if mailboxMetric.droppedCount, err = meter.Int64Counter(
		"mailbox_dropped_count",
		metric.WithDescription("Total number of messages dropped or refused by the mailbox"),
	); err != nil {
		return nil, fmt.Errorf("failed to create droppedCount instrument, %w", err)
	}

	if mailboxMetric.inflight, err = meter.Int64UpDownCounter(
		"mailbox_inflight",
		metric.WithDescription("Number of messages currently in flight"),
	); err != nil {
		return nil, fmt.Errorf("failed to create inflight instrument, %w", err)
	}

	return mailboxMetric, nil
}

// Delivered records n deliveries
func (x *MailboxMetric) Delivered(n int64) {
	if x == nil || n == 0 {
		return
	}
	x.deliveredCount.Add(context.Background(), n, x.attributes)
}

// Dropped records a dropped message
func (x *MailboxMetric) Dropped() {
	if x == nil {
		return
	}
	x.droppedCount.Add(context.Background(), 1, x.attributes)
}

// InflightChanged records a change of the inflight counter
func (x *MailboxMetric) InflightChanged(delta int64) {
	if x == nil {
		return
	}
	x.inflight.Add(context.Background(), delta, x.attributes)
}

// Instrument creates the MailboxMetric of a routing policy. A meter refusing to create
// the instruments is logged and yields a nil MailboxMetric, which records nothing.
func Instrument(meter metric.Meter, policy string, logger log.Logger) *MailboxMetric {
	if meter == nil {
		return nil
	}

	mailboxMetric, err := NewMailboxMetric(meter, policy)
	if err != nil {
		logger.Warnf("failed to instrument mailbox policy=(%s): %v", policy, err)
		return nil
	}
	return mailboxMetric
}
