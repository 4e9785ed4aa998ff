/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-issuer-go/pkg/connection"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
)

func TestMockConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("inject and poll by thread", func(t *testing.T) {
		c := New("conn")
		require.True(t, c.IsEstablished())

		c.Inject(service.DIDCommMsgMap{"@id": "a", "~thread": map[string]interface{}{"thid": "th-1"}})
		c.Inject(service.DIDCommMsgMap{"@id": "b", "~thread": map[string]interface{}{"thid": "th-2"}})

		msgs, err := c.Poll(ctx, "th-1")
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		require.Equal(t, "a", msgs[0].ID())

		msgs, err = c.Poll(ctx, "th-1")
		require.NoError(t, err)
		require.Empty(t, msgs)
	})

	t.Run("send with reply", func(t *testing.T) {
		c := New("conn")
		c.Reply = func(msg service.DIDCommMsgMap) service.DIDCommMsgMap {
			reply := service.DIDCommMsgMap{"@id": "reply"}
			reply.SetThread(msg.ID(), "")

			return reply
		}

		require.NoError(t, c.Send(ctx, service.DIDCommMsgMap{"@id": "offer"}))
		require.Len(t, c.Sent(), 1)

		msgs, err := c.Poll(ctx, "offer")
		require.NoError(t, err)
		require.Len(t, msgs, 1)
	})

	t.Run("errors", func(t *testing.T) {
		c := New("conn")
		c.SendErr = errors.New("send")
		c.PollErr = errors.New("poll")

		require.EqualError(t, c.Send(ctx, service.DIDCommMsgMap{}), "send")
		_, err := c.Poll(ctx, "th")
		require.EqualError(t, err, "poll")

		c.SetEstablished(false)
		require.False(t, c.IsEstablished())
	})

	t.Run("resolver", func(t *testing.T) {
		c := New("conn")
		r := Resolver{"conn": c}

		got, err := r.Resolve("conn")
		require.NoError(t, err)
		require.Equal(t, "conn", got.ID())

		_, err = r.Resolve("other")
		require.ErrorIs(t, err, connection.ErrNotFound)
	})
}
