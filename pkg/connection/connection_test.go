/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-issuer-go/pkg/common/handle"
	"github.com/hyperledger/aries-issuer-go/pkg/connection"
	mockconn "github.com/hyperledger/aries-issuer-go/pkg/mock/connection"
)

func TestRegistry(t *testing.T) {
	t.Run("add get resolve", func(t *testing.T) {
		r := connection.NewRegistry()
		conn := mockconn.New("conn-1")

		h := r.Add(conn)
		require.NotZero(t, h)
		require.Equal(t, []handle.Handle{h}, r.Handles())

		got, err := r.Get(h)
		require.NoError(t, err)
		require.Equal(t, "conn-1", got.ID())

		resolved, err := r.Resolve("conn-1")
		require.NoError(t, err)
		require.Same(t, conn, resolved)

		_, err = r.Resolve("conn-2")
		require.ErrorIs(t, err, connection.ErrNotFound)
	})

	t.Run("remove closes the connection", func(t *testing.T) {
		r := connection.NewRegistry()
		conn := mockconn.New("conn-1")

		h := r.Add(conn)
		require.NoError(t, r.Remove(h))
		require.False(t, conn.IsEstablished())

		_, err := r.Get(h)
		require.ErrorIs(t, err, handle.ErrNotFound)
		require.ErrorIs(t, r.Remove(h), handle.ErrNotFound)
	})
}
