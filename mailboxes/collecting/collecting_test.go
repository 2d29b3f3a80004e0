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

package collecting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/goakt-extra/environment"
	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
)

type reading struct {
	value int
}

type tick struct{}

func TestCollecting(t *testing.T) {
	env := environment.New(environment.WithLogger(log.DiscardLogger))

	t.Run("With aggregate delivered once count is reached", func(t *testing.T) {
		target := env.CreateMailbox()
		mb, err := New[*reading](env, target, 3)
		require.NoError(t, err)
		assert.Contains(t, mb.Name(), "COLLECTINGMBOX")
		assert.Equal(t, target.Kind(), mb.Kind())
		assert.Equal(t, mailbox.TypeOf[*Collected[*reading]](), mb.CollectedType())

		inbox := mailbox.NewInbox()
		require.NoError(t, target.Subscribe(mb.CollectedType(), inbox, nil))

		for value := 1; value <= 5; value++ {
			require.NoError(t, mailbox.Send(mb, &reading{value: value}))
		}
		assert.EqualValues(t, 1, inbox.Len())
		assert.Equal(t, 2, mb.Pending())

		delivery, ok := inbox.Dequeue()
		require.True(t, ok)
		collected, ok := mailbox.PayloadAs[*Collected[*reading]](delivery.Message)
		require.True(t, ok)
		require.Equal(t, 3, collected.Size())
		assert.Equal(t, 2, collected.At(1).value)

		var values []int
		collected.ForEach(func(index int, item *reading) {
			assert.Equal(t, index+1, item.value)
			values = append(values, item.value)
		})
		assert.Equal(t, []int{1, 2, 3}, values)
		assert.Len(t, collected.Items(), 3)
		delivery.Message.Release()

		require.NoError(t, mailbox.Send(mb, &reading{value: 6}))
		assert.EqualValues(t, 1, inbox.Len())
		assert.Zero(t, mb.Pending())
	})
	t.Run("With incomplete collection", func(t *testing.T) {
		target := env.CreateMailbox()
		mb, err := New[*reading](env, target, 3)
		require.NoError(t, err)

		inbox := mailbox.NewInbox()
		require.NoError(t, target.Subscribe(mb.CollectedType(), inbox, nil))

		require.NoError(t, mailbox.Send(mb, &reading{value: 1}))
		require.NoError(t, mailbox.Send(mb, &reading{value: 2}))
		assert.Zero(t, inbox.Len())
	})
	t.Run("With signals", func(t *testing.T) {
		target := env.CreateMailbox()
		mb, err := New[*tick](env, target, 2)
		require.NoError(t, err)

		inbox := mailbox.NewInbox()
		require.NoError(t, target.Subscribe(mb.CollectedType(), inbox, nil))

		require.NoError(t, mailbox.SendSignal[tick](mb))
		require.NoError(t, mailbox.SendSignal[tick](mb))

		delivery, ok := inbox.Dequeue()
		require.True(t, ok)
		collected, _ := mailbox.PayloadAs[*Collected[*tick]](delivery.Message)
		assert.Equal(t, 2, collected.Size())
		delivery.Message.Release()
	})
	t.Run("With redirect depth propagated", func(t *testing.T) {
		target := env.CreateMailbox()
		mb, err := New[*reading](env, target, 1)
		require.NoError(t, err)

		inbox := mailbox.NewInbox()
		require.NoError(t, target.Subscribe(mb.CollectedType(), inbox, nil))

		msg := mailbox.NewMessage(&reading{value: 1})
		defer msg.Release()
		require.NoError(t, mb.Deliver(msg.Type(), msg, 5))

		delivery, ok := inbox.Dequeue()
		require.True(t, ok)
		assert.Equal(t, 5, delivery.RedirectDepth)
		delivery.Message.Release()
	})
	t.Run("With mutable messages", func(t *testing.T) {
		owner := mailbox.NewInbox()
		target := env.CreateDirectMailbox(owner)
		mb, err := NewMutable[*reading](env, target, 2)
		require.NoError(t, err)
		assert.Equal(t, mailbox.MutableTypeOf[*Collected[*reading]](), mb.CollectedType())
		require.NoError(t, target.Subscribe(mb.CollectedType(), owner, nil))

		require.NoError(t, mailbox.SendMutable(mb, &reading{value: 1}))
		require.NoError(t, mailbox.SendMutable(mb, &reading{value: 2}))

		delivery, ok := owner.Dequeue()
		require.True(t, ok)
		assert.True(t, delivery.Message.IsMutable())
		delivery.Message.Release()

		assert.ErrorIs(t, mailbox.Send(mb, &reading{}), errors.ErrDifferentMessageType)

		_, err = NewMutable[*reading](env, env.CreateMailbox(), 2)
		assert.ErrorIs(t, err, errors.ErrMutableNotAllowedOnMultiConsumerMailbox)
	})
	t.Run("With direct subscription not supported", func(t *testing.T) {
		mb, err := New[*reading](env, env.CreateMailbox(), 2)
		require.NoError(t, err)
		inbox := mailbox.NewInbox()

		assert.ErrorIs(t, mb.Subscribe(mailbox.TypeOf[*reading](), inbox, nil), errors.ErrOperationNotSupported)
		assert.ErrorIs(t, mb.Subscribe(mailbox.TypeOf[*tick](), inbox, nil), errors.ErrDifferentMessageType)
		assert.ErrorIs(t, mb.SetDeliveryFilter(mailbox.TypeOf[*reading](), nil, inbox), errors.ErrOperationNotSupported)
		assert.ErrorIs(t, mailbox.Send(mb, &tick{}), errors.ErrDifferentMessageType)
		assert.NotPanics(t, func() {
			mb.Unsubscribe(mailbox.TypeOf[*reading](), inbox)
			mb.DropDeliveryFilter(mailbox.TypeOf[*reading](), inbox)
		})
	})
	t.Run("With invalid arguments", func(t *testing.T) {
		_, err := New[*reading](env, nil, 2)
		assert.ErrorIs(t, err, errors.ErrInvalidArgument)

		_, err = New[*reading](env, env.CreateMailbox(), 0)
		assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	})
}
