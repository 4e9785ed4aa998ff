/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
)

func startServer(t *testing.T) (string, <-chan *Connection) {
	t.Helper()

	accepted := make(chan *Connection, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrade(w, r, "holder")
		if err != nil {
			return
		}

		accepted <- conn
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http"), accepted
}

func TestConnection(t *testing.T) {
	t.Run("accept", func(t *testing.T) {
		require.True(t, Accept("ws://localhost"))
		require.True(t, Accept("wss://localhost"))
		require.False(t, Accept("http://localhost"))
	})

	t.Run("missing url", func(t *testing.T) {
		_, err := Dial(context.Background(), "conn", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "url is mandatory")
	})

	t.Run("not a websocket server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		_, err := Dial(context.Background(), "conn", "ws"+strings.TrimPrefix(srv.URL, "http"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "websocket client")
	})

	t.Run("messages are queued per thread", func(t *testing.T) {
		url, accepted := startServer(t)
		ctx := context.Background()

		client, err := Dial(ctx, "issuer", url)
		require.NoError(t, err)
		require.Equal(t, "issuer", client.ID())
		require.True(t, client.IsEstablished())

		var server *Connection
		select {
		case server = <-accepted:
		case <-time.After(5 * time.Second):
			require.Fail(t, "server did not accept the connection")
		}

		require.NoError(t, client.Send(ctx, service.DIDCommMsgMap{"@id": "offer-1", "@type": "offer"}))

		reply := service.DIDCommMsgMap{"@id": "request-1", "@type": "request"}
		reply.SetThread("offer-1", "")

		require.Eventually(t, func() bool {
			msgs, pollErr := server.Poll(ctx, "offer-1")
			require.NoError(t, pollErr)

			return len(msgs) == 1 && msgs[0].Type() == "offer"
		}, 5*time.Second, 10*time.Millisecond)

		require.NoError(t, server.Send(ctx, reply))

		require.Eventually(t, func() bool {
			msgs, pollErr := client.Poll(ctx, "offer-1")
			require.NoError(t, pollErr)

			return len(msgs) == 1 && msgs[0].ID() == "request-1"
		}, 5*time.Second, 10*time.Millisecond)

		require.NoError(t, client.Close())
		require.False(t, client.IsEstablished())
		require.Error(t, client.Send(ctx, service.DIDCommMsgMap{"@id": "late"}))

		require.Eventually(t, func() bool {
			return !server.IsEstablished()
		}, 5*time.Second, 10*time.Millisecond)
	})
}

func TestConnection_QueueLimits(t *testing.T) {
	c := &Connection{id: "holder", inbound: map[string][]service.DIDCommMsgMap{}}
	WithQueueLimits(2, 2)(c)

	msg := func(id string) service.DIDCommMsgMap {
		return service.DIDCommMsgMap{"@id": id, "@type": "request"}
	}

	require.True(t, c.enqueue("thread-1", msg("1")))
	require.True(t, c.enqueue("thread-1", msg("2")))
	require.False(t, c.enqueue("thread-1", msg("3")), "thread queue is full")

	require.True(t, c.enqueue("thread-2", msg("4")))
	require.False(t, c.enqueue("thread-3", msg("5")), "too many threads")

	msgs, err := c.Poll(context.Background(), "thread-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "1", msgs[0].ID())

	require.True(t, c.enqueue("thread-3", msg("6")), "polling frees the thread slot")
	require.True(t, c.enqueue("thread-3", msg("7")))
	require.False(t, c.enqueue("thread-1", msg("8")))
}
