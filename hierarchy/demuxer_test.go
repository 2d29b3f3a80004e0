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

package hierarchy

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/goakt-extra/environment"
	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
	"github.com/tochemey/goakt-extra/mailboxes/plain"
)

func newEnv() *environment.Environment {
	return environment.New(environment.WithLogger(log.DiscardLogger))
}

func TestDemuxer(t *testing.T) {
	t.Run("With name and kind following the model", func(t *testing.T) {
		multi := NewDemuxer[event](newEnv(), MultiConsumer)
		assert.Equal(t, MultiConsumer, multi.Model())
		assert.Equal(t, mailbox.MultiConsumer, multi.SendingMailbox().Kind())
		assert.Contains(t, multi.SendingMailbox().Name(), "DEMUX(multi-consumer)")
		assert.Contains(t, multi.SendingMailbox().Name(), "event")

		single := NewDemuxer[event](newEnv(), SingleConsumer)
		assert.Equal(t, mailbox.SingleConsumer, single.SendingMailbox().Kind())
		assert.Equal(t, "single-consumer", single.Model().String())
		assert.NotEqual(t, single.AllocateConsumer().ID(), single.AllocateConsumer().ID())
	})
	t.Run("With delivery through the nearest registered ancestor", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		sending := demuxer.SendingMailbox()

		onlyEvent := mailbox.NewInbox()
		subscribe[event](t, demuxer.AllocateConsumer(), onlyEvent)

		onlyStarted := mailbox.NewInbox()
		subscribe[started](t, demuxer.AllocateConsumer(), onlyStarted)

		both := mailbox.NewInbox()
		consumer := demuxer.AllocateConsumer()
		subscribe[started](t, consumer, both)
		subscribe[event](t, consumer, both)

		require.NoError(t, mailbox.Send(sending, &restarted{attempts: 2}))

		deliveries := received(t, onlyEvent)
		require.Len(t, deliveries, 1)
		assert.Equal(t, mailbox.TypeOf[*event](), deliveries[0].Type)

		deliveries = received(t, onlyStarted)
		require.Len(t, deliveries, 1)
		assert.Equal(t, mailbox.TypeOf[*started](), deliveries[0].Type)

		deliveries = received(t, both)
		require.Len(t, deliveries, 1)
		assert.Equal(t, mailbox.TypeOf[*started](), deliveries[0].Type)

		require.NoError(t, mailbox.Send(sending, &stopped{}))
		assert.Len(t, received(t, onlyEvent), 1)
		assert.Empty(t, received(t, onlyStarted))

		deliveries = received(t, both)
		require.Len(t, deliveries, 1)
		assert.Equal(t, mailbox.TypeOf[*event](), deliveries[0].Type)
	})
	t.Run("With the upcast payload pointing into the published message", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		inbox := mailbox.NewInbox()
		subscribe[event](t, demuxer.AllocateConsumer(), inbox)

		payload := &restarted{attempts: 1}
		payload.source = "node-1"
		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), payload))

		delivery, ok := inbox.Dequeue()
		require.True(t, ok)
		defer delivery.Message.Release()

		observed, ok := mailbox.PayloadAs[*event](delivery.Message)
		require.True(t, ok)
		assert.Same(t, &payload.started.event, observed)
		assert.Equal(t, "node-1", observed.source)
	})
	t.Run("With the published message alive while a view is held", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		inbox := mailbox.NewInbox()
		subscribe[started](t, demuxer.AllocateConsumer(), inbox)

		released := 0
		msg := mailbox.Envelop(mailbox.NewMessage(&restarted{}), func() { released++ })
		require.NoError(t, mailbox.Deliver(demuxer.SendingMailbox(), msg))
		assert.Zero(t, released)

		deliveries := received(t, inbox)
		require.Len(t, deliveries, 1)
		assert.Equal(t, 1, released)
	})
	t.Run("With no consumer", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		assert.NoError(t, mailbox.Send(demuxer.SendingMailbox(), &started{}))
	})
	t.Run("With payloads outside the hierarchy", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		sending := demuxer.SendingMailbox()

		assert.ErrorIs(t, mailbox.Send(sending, &unrelated{}), errors.ErrMessageIsNotDerivedFromRoot)
		assert.ErrorIs(t, mailbox.Send(sending, &execute{}), errors.ErrMessageIsNotDerivedFromRoot)
		assert.ErrorIs(t, mailbox.Send(sending, &orphan{}), errors.ErrNodeNotRegistered)
		assert.ErrorIs(t, mailbox.SendSignal[event](sending), errors.ErrSignalCannotBeDelivered)
	})
	t.Run("With receiving mailbox of an unregistered node", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		_, err := ReceivingMailbox[orphan](demuxer.AllocateConsumer())
		assert.ErrorIs(t, err, errors.ErrNodeNotRegistered)
	})
	t.Run("With the same receiving mailbox for the same type", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		consumer := demuxer.AllocateConsumer()

		first, err := ReceivingMailbox[started](consumer)
		require.NoError(t, err)
		second, err := ReceivingMailbox[started](consumer)
		require.NoError(t, err)
		assert.Same(t, first, second)

		other, err := ReceivingMailbox[started](demuxer.AllocateConsumer())
		require.NoError(t, err)
		assert.NotSame(t, first, other)
	})
	t.Run("With subscription and filter checks on the sending mailbox", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		sending := demuxer.SendingMailbox()
		inbox := mailbox.NewInbox()

		assert.ErrorIs(t, sending.Subscribe(mailbox.TypeOf[*event](), inbox, nil), errors.ErrOperationNotSupported)
		assert.ErrorIs(t, sending.SetDeliveryFilter(mailbox.TypeOf[*event](), nil, inbox), errors.ErrOperationNotSupported)
		assert.NotPanics(t, func() {
			sending.Unsubscribe(mailbox.TypeOf[*event](), inbox)
			sending.DropDeliveryFilter(mailbox.TypeOf[*event](), inbox)
		})
	})
}

func TestMutableMessages(t *testing.T) {
	t.Run("With a multi-consumer demuxer", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)

		_, err := MutableReceivingMailbox[started](demuxer.AllocateConsumer())
		assert.ErrorIs(t, err, errors.ErrMutableNotAllowedOnBroadcastController)

		msg := mailbox.NewMutableMessage(&started{})
		defer msg.Release()
		err = demuxer.SendingMailbox().Deliver(msg.Type(), msg, 0)
		assert.ErrorIs(t, err, errors.ErrMutableNotAllowedOnBroadcastController)

		err = mailbox.SendMutable(demuxer.SendingMailbox(), &started{})
		assert.ErrorIs(t, err, errors.ErrMutableNotAllowedOnMultiConsumerMailbox)
	})
	t.Run("With a single interested consumer", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), SingleConsumer)
		inbox := mailbox.NewInbox()

		mb, err := MutableReceivingMailbox[started](demuxer.AllocateConsumer())
		require.NoError(t, err)
		assert.Equal(t, mailbox.SingleConsumer, mb.Kind())
		require.NoError(t, mb.Subscribe(mailbox.MutableTypeOf[*started](), inbox, nil))

		immutable := mailbox.NewInbox()
		subscribe[event](t, demuxer.AllocateConsumer(), immutable)

		require.NoError(t, mailbox.SendMutable(demuxer.SendingMailbox(), &restarted{attempts: 3}))

		deliveries := received(t, inbox)
		require.Len(t, deliveries, 1)
		assert.Equal(t, mailbox.MutableTypeOf[*started](), deliveries[0].Type)
		assert.True(t, deliveries[0].Message.IsMutable())
		assert.Empty(t, received(t, immutable))
	})
	t.Run("With no interested consumer", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), SingleConsumer)
		require.NoError(t, mailbox.SendMutable(demuxer.SendingMailbox(), &started{}))

		elsewhere := mailbox.NewInbox()
		mb, err := MutableReceivingMailbox[stopped](demuxer.AllocateConsumer())
		require.NoError(t, err)
		require.NoError(t, mb.Subscribe(mailbox.MutableTypeOf[*stopped](), elsewhere, nil))

		immutable := mailbox.NewInbox()
		subscribe[started](t, demuxer.AllocateConsumer(), immutable)

		require.NoError(t, mailbox.SendMutable(demuxer.SendingMailbox(), &restarted{}))
		assert.Empty(t, received(t, elsewhere))
		assert.Empty(t, received(t, immutable))
	})
	t.Run("With several interested consumers", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), SingleConsumer)

		first := mailbox.NewInbox()
		mb, err := MutableReceivingMailbox[started](demuxer.AllocateConsumer())
		require.NoError(t, err)
		require.NoError(t, mb.Subscribe(mailbox.MutableTypeOf[*started](), first, nil))

		second := mailbox.NewInbox()
		mb, err = MutableReceivingMailbox[event](demuxer.AllocateConsumer())
		require.NoError(t, err)
		require.NoError(t, mb.Subscribe(mailbox.MutableTypeOf[*event](), second, nil))

		err = mailbox.SendMutable(demuxer.SendingMailbox(), &restarted{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrMoreThanOneSubscriberForMutableMessage)
		assert.Empty(t, received(t, first))
		assert.Empty(t, received(t, second))

		require.NoError(t, mailbox.SendMutable(demuxer.SendingMailbox(), &stopped{}))
		assert.Len(t, received(t, second), 1)
	})
	t.Run("With immutable messages broadcast on a single-consumer demuxer", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), SingleConsumer)
		first := mailbox.NewInbox()
		second := mailbox.NewInbox()
		subscribe[started](t, demuxer.AllocateConsumer(), first)
		subscribe[event](t, demuxer.AllocateConsumer(), second)

		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), &started{}))
		assert.Len(t, received(t, first), 1)
		assert.Len(t, received(t, second), 1)
	})
	t.Run("With one subscriber per consumer and type", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), SingleConsumer)
		mb := subscribe[started](t, demuxer.AllocateConsumer(), mailbox.NewInbox())

		err := mb.Subscribe(mailbox.TypeOf[*started](), mailbox.NewInbox(), nil)
		assert.ErrorIs(t, err, errors.ErrSubscriptionAlreadyExists)

		err = mb.SetDeliveryFilter(mailbox.TypeOf[*started](), nil, mailbox.NewInbox())
		assert.ErrorIs(t, err, errors.ErrOperationNotSupported)
	})
}

func TestReceivingMailbox(t *testing.T) {
	t.Run("With routing dropped once the last subscriber leaves", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		consumer := demuxer.AllocateConsumer()
		first := mailbox.NewInbox()
		second := mailbox.NewInbox()

		mb := subscribe[started](t, consumer, first)
		require.NoError(t, mb.Subscribe(mailbox.TypeOf[*started](), second, nil))
		assert.Equal(t, 1, demuxer.controller.consumersCount())

		mb.Unsubscribe(mailbox.TypeOf[*started](), first)
		assert.Equal(t, 1, demuxer.controller.consumersCount())
		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), &started{}))
		assert.Empty(t, received(t, first))
		assert.Len(t, received(t, second), 1)

		mb.Unsubscribe(mailbox.TypeOf[*started](), second)
		assert.Zero(t, demuxer.controller.consumersCount())

		require.NoError(t, mb.Subscribe(mailbox.TypeOf[*started](), first, nil))
		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), &started{}))
		assert.Len(t, received(t, first), 1)
	})
	t.Run("With delivery filter", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		inbox := mailbox.NewInbox()
		mb := subscribe[event](t, demuxer.AllocateConsumer(), inbox)

		require.NoError(t, mb.SetDeliveryFilter(mailbox.TypeOf[*event](), func(msg *mailbox.Message) bool {
			payload, _ := mailbox.PayloadAs[*event](msg)
			return payload.source == "kept"
		}, inbox))

		dropped := &started{}
		dropped.source = "dropped"
		kept := &stopped{}
		kept.source = "kept"
		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), dropped))
		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), kept))
		assert.Len(t, received(t, inbox), 1)

		mb.DropDeliveryFilter(mailbox.TypeOf[*event](), inbox)
		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), dropped))
		assert.Len(t, received(t, inbox), 1)
	})
	t.Run("With a different message type", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		mb, err := ReceivingMailbox[started](demuxer.AllocateConsumer())
		require.NoError(t, err)
		inbox := mailbox.NewInbox()

		assert.ErrorIs(t, mb.Subscribe(mailbox.TypeOf[*event](), inbox, nil), errors.ErrDifferentMessageType)
		assert.ErrorIs(t, mb.SetDeliveryFilter(mailbox.TypeOf[*event](), nil, inbox), errors.ErrDifferentMessageType)
		assert.ErrorIs(t, mailbox.Send(mb, &event{}), errors.ErrDifferentMessageType)
		assert.NotPanics(t, func() {
			mb.Unsubscribe(mailbox.TypeOf[*event](), inbox)
			mb.DropDeliveryFilter(mailbox.TypeOf[*event](), inbox)
		})
	})
	t.Run("With direct delivery bypassing the demuxer", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		inbox := mailbox.NewInbox()
		mb := subscribe[started](t, demuxer.AllocateConsumer(), inbox)

		require.NoError(t, mailbox.Send(mb, &started{}))
		assert.Len(t, received(t, inbox), 1)
	})
	t.Run("With overflow redirected", func(t *testing.T) {
		env := newEnv()
		demuxer := NewDemuxer[event](env, MultiConsumer)
		mb, err := ReceivingMailbox[started](demuxer.AllocateConsumer())
		require.NoError(t, err)

		overflow := env.CreateMailbox()
		spare := mailbox.NewInbox()
		require.NoError(t, overflow.Subscribe(mailbox.TypeOf[*started](), spare, nil))

		inbox := mailbox.NewInbox()
		require.NoError(t, mb.Subscribe(mailbox.TypeOf[*started](), inbox, &mailbox.Limit{Max: 1, Redirect: overflow}))

		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), &restarted{}))
		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), &restarted{}))

		assert.Len(t, received(t, inbox), 1)
		deliveries := received(t, spare)
		require.Len(t, deliveries, 1)
		assert.Equal(t, 1, deliveries[0].RedirectDepth)
	})
}

func TestConsumerClose(t *testing.T) {
	t.Run("With routes and subscriptions dropped", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		consumer := demuxer.AllocateConsumer()
		inbox := mailbox.NewInbox()
		mb := subscribe[started](t, consumer, inbox)
		subscribe[event](t, consumer, inbox)

		consumer.Close()
		consumer.Close()
		assert.Zero(t, demuxer.controller.consumersCount())

		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), &restarted{}))
		assert.Empty(t, received(t, inbox))

		underlying := mb.(*receivingMailbox).underlying.(*plain.Mailbox)
		assert.Zero(t, underlying.SubscribersCount(mailbox.TypeOf[*started]()))

		assert.ErrorIs(t, mb.Subscribe(mailbox.TypeOf[*started](), inbox, nil), errors.ErrConsumerClosed)
		_, err := ReceivingMailbox[stopped](consumer)
		assert.ErrorIs(t, err, errors.ErrConsumerClosed)
	})
	t.Run("With close during a delivery", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		consumer := demuxer.AllocateConsumer()
		mb, err := ReceivingMailbox[started](consumer)
		require.NoError(t, err)

		subscriber := &closingSubscriber{Inbox: mailbox.NewInbox()}
		subscriber.close = consumer.Close
		require.NoError(t, mb.Subscribe(mailbox.TypeOf[*started](), subscriber, nil))

		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), &started{}))
		assert.Len(t, received(t, subscriber.Inbox), 1)

		underlying := mb.(*receivingMailbox).underlying.(*plain.Mailbox)
		assert.Zero(t, underlying.SubscribersCount(mailbox.TypeOf[*started]()))

		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), &started{}))
		assert.Empty(t, received(t, subscriber.Inbox))
	})
	t.Run("With other consumers unaffected", func(t *testing.T) {
		demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
		leaving := demuxer.AllocateConsumer()
		staying := demuxer.AllocateConsumer()
		leavingInbox := mailbox.NewInbox()
		stayingInbox := mailbox.NewInbox()
		subscribe[event](t, leaving, leavingInbox)
		subscribe[event](t, staying, stayingInbox)

		leaving.Close()
		require.NoError(t, mailbox.Send(demuxer.SendingMailbox(), &stopped{}))
		assert.Empty(t, received(t, leavingInbox))
		assert.Len(t, received(t, stayingInbox), 1)
	})
}

func TestConcurrentDeliveries(t *testing.T) {
	const (
		producers = 8
		messages  = 200
		churners  = 4
	)

	demuxer := NewDemuxer[event](newEnv(), MultiConsumer)
	sending := demuxer.SendingMailbox()

	stable := mailbox.NewInbox()
	subscribe[event](t, demuxer.AllocateConsumer(), stable)

	var (
		mu      sync.Mutex
		churned []*mailbox.Inbox
		group   errgroup.Group
	)

	for producer := 0; producer < producers; producer++ {
		group.Go(func() error {
			for seq := 0; seq < messages; seq++ {
				if err := mailbox.Send(sending, &restarted{attempts: seq}); err != nil {
					return fmt.Errorf("producer=%d seq=%d: %w", producer, seq, err)
				}
			}
			return nil
		})
	}

	for churner := 0; churner < churners; churner++ {
		group.Go(func() error {
			for round := 0; round < messages/10; round++ {
				consumer := demuxer.AllocateConsumer()
				inbox := mailbox.NewInbox()
				mb, err := ReceivingMailbox[started](consumer)
				if err != nil {
					return err
				}
				if err := mb.Subscribe(mailbox.TypeOf[*started](), inbox, nil); err != nil {
					return err
				}
				mb.Unsubscribe(mailbox.TypeOf[*started](), inbox)
				if err := mb.Subscribe(mailbox.TypeOf[*started](), inbox, nil); err != nil {
					return err
				}
				consumer.Close()

				mu.Lock()
				churned = append(churned, inbox)
				mu.Unlock()
			}
			return nil
		})
	}

	require.NoError(t, group.Wait())
	assert.Len(t, received(t, stable), producers*messages)
	assert.Equal(t, 1, demuxer.controller.consumersCount())

	for _, inbox := range churned {
		for _, delivery := range received(t, inbox) {
			assert.Equal(t, mailbox.TypeOf[*started](), delivery.Type)
		}
	}
}
