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

package inflight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/goakt-extra/environment"
	"github.com/tochemey/goakt-extra/errors"
	"github.com/tochemey/goakt-extra/log"
	"github.com/tochemey/goakt-extra/mailbox"
)

type request struct {
	seq int
}

type other struct{}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestInflight(t *testing.T) {
	env := environment.New(environment.WithLogger(log.DiscardLogger))
	typ := mailbox.TypeOf[*request]()

	t.Run("With deliveries beyond the limit dropped", func(t *testing.T) {
		target := env.CreateMailbox()
		mb, err := New[*request](env, target, 2)
		require.NoError(t, err)
		assert.Equal(t, target.ID(), mb.ID())
		assert.Equal(t, target.Name(), mb.Name())
		assert.Equal(t, target.Kind(), mb.Kind())

		inbox := mailbox.NewInbox()
		require.NoError(t, mb.Subscribe(typ, inbox, nil))

		for seq := 1; seq <= 3; seq++ {
			require.NoError(t, mailbox.Send(mb, &request{seq: seq}))
		}
		assert.EqualValues(t, 2, inbox.Len())
		assert.EqualValues(t, 2, mb.Inflight())

		delivery, ok := inbox.Dequeue()
		require.True(t, ok)
		payload, _ := mailbox.PayloadAs[*request](delivery.Message)
		assert.Equal(t, 1, payload.seq)
		delivery.Message.Release()
		assert.EqualValues(t, 1, mb.Inflight())

		require.NoError(t, mailbox.Send(mb, &request{seq: 4}))
		assert.EqualValues(t, 2, inbox.Len())

		var seqs []int
		for {
			delivery, ok := inbox.Dequeue()
			if !ok {
				break
			}
			payload, _ := mailbox.PayloadAs[*request](delivery.Message)
			seqs = append(seqs, payload.seq)
			delivery.Message.Release()
		}
		assert.Equal(t, []int{2, 4}, seqs)
		assert.Zero(t, mb.Inflight())
	})

	t.Run("With concurrent senders", func(t *testing.T) {
		const limit = 3
		mb, err := New[*request](env, env.CreateMailbox(), limit)
		require.NoError(t, err)
		inbox := mailbox.NewInbox()
		require.NoError(t, mb.Subscribe(typ, inbox, nil))

		var group errgroup.Group
		for sender := 0; sender < 10; sender++ {
			group.Go(func() error {
				return mailbox.Send(mb, &request{seq: sender})
			})
		}
		require.NoError(t, group.Wait())
		assert.EqualValues(t, limit, inbox.Len())
		assert.EqualValues(t, limit, mb.Inflight())

		delivery, ok := inbox.Dequeue()
		require.True(t, ok)
		delivery.Message.Release()
		require.NoError(t, mailbox.Send(mb, &request{seq: 10}))
		assert.EqualValues(t, limit, inbox.Len())
	})

	t.Run("With message held by several subscribers", func(t *testing.T) {
		mb, err := New[*request](env, env.CreateMailbox(), 1)
		require.NoError(t, err)

		first := mailbox.NewInbox()
		second := mailbox.NewInbox()
		require.NoError(t, mb.Subscribe(typ, first, nil))
		require.NoError(t, mb.Subscribe(typ, second, nil))

		require.NoError(t, mailbox.Send(mb, &request{seq: 1}))
		assert.EqualValues(t, 1, mb.Inflight())

		delivery, ok := first.Dequeue()
		require.True(t, ok)
		delivery.Message.Release()
		assert.EqualValues(t, 1, mb.Inflight())

		delivery, ok = second.Dequeue()
		require.True(t, ok)
		delivery.Message.Release()
		assert.Zero(t, mb.Inflight())
	})
	t.Run("With no receiver", func(t *testing.T) {
		mb, err := New[*request](env, env.CreateMailbox(), 1)
		require.NoError(t, err)

		require.NoError(t, mailbox.Send(mb, &request{seq: 1}))
		require.NoError(t, mailbox.Send(mb, &request{seq: 2}))
		assert.Zero(t, mb.Inflight())
	})
	t.Run("With mutable messages", func(t *testing.T) {
		owner := mailbox.NewInbox()
		mb, err := NewMutable[*request](env, env.CreateDirectMailbox(owner), 1)
		require.NoError(t, err)

		require.NoError(t, mb.Subscribe(mailbox.MutableTypeOf[*request](), owner, nil))
		require.NoError(t, mailbox.SendMutable(mb, &request{seq: 1}))
		require.NoError(t, mailbox.SendMutable(mb, &request{seq: 2}))
		assert.EqualValues(t, 1, owner.Len())

		err = mailbox.Send(mb, &request{seq: 3})
		assert.ErrorIs(t, err, errors.ErrDifferentMessageType)
	})
	t.Run("With a different message type", func(t *testing.T) {
		mb, err := New[*request](env, env.CreateMailbox(), 1)
		require.NoError(t, err)
		inbox := mailbox.NewInbox()

		assert.ErrorIs(t, mb.Subscribe(mailbox.TypeOf[*other](), inbox, nil), errors.ErrDifferentMessageType)
		assert.ErrorIs(t, mailbox.Send(mb, &other{}), errors.ErrDifferentMessageType)
		assert.ErrorIs(t, mb.SetDeliveryFilter(mailbox.TypeOf[*other](), nil, inbox), errors.ErrDifferentMessageType)
		assert.NotPanics(t, func() {
			mb.Unsubscribe(mailbox.TypeOf[*other](), inbox)
			mb.DropDeliveryFilter(mailbox.TypeOf[*other](), inbox)
		})
	})
	t.Run("With delivery filter", func(t *testing.T) {
		mb, err := New[*request](env, env.CreateMailbox(), 5)
		require.NoError(t, err)
		inbox := mailbox.NewInbox()
		require.NoError(t, mb.Subscribe(typ, inbox, nil))
		require.NoError(t, mb.SetDeliveryFilter(typ, func(*mailbox.Message) bool { return false }, inbox))

		require.NoError(t, mailbox.Send(mb, &request{}))
		assert.Zero(t, inbox.Len())
		assert.Zero(t, mb.Inflight())

		mb.DropDeliveryFilter(typ, inbox)
		mb.Unsubscribe(typ, inbox)
	})
	t.Run("With invalid arguments", func(t *testing.T) {
		_, err := New[*request](env, nil, 1)
		assert.ErrorIs(t, err, errors.ErrInvalidArgument)

		_, err = New[*request](env, env.CreateMailbox(), 0)
		assert.ErrorIs(t, err, errors.ErrInvalidArgument)
	})
}
