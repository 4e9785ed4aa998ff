/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package exchangetest checks exchange.Store implementations against the common contract.
package exchangetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-issuer-go/pkg/store/exchange"
)

// RunStoreContract runs the behaviour every exchange.Store must have. The store must be empty.
func RunStoreContract(t *testing.T, s exchange.Store) {
	t.Helper()

	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		ids, err := s.List(ctx)
		require.NoError(t, err)
		require.Empty(t, ids)

		_, err = s.Load(ctx, "missing")
		require.True(t, errors.Is(err, exchange.ErrNotFound), "%v", err)
	})

	t.Run("save and load", func(t *testing.T) {
		rec := &exchange.Record{SourceID: "b", State: "initialized", Exchange: `{"version":"1.0"}`}
		require.NoError(t, s.Save(ctx, rec))
		require.False(t, rec.UpdatedAt.IsZero())

		loaded, err := s.Load(ctx, "b")
		require.NoError(t, err)
		require.Equal(t, rec.SourceID, loaded.SourceID)
		require.Equal(t, rec.State, loaded.State)
		require.Equal(t, rec.Exchange, loaded.Exchange)
		require.True(t, rec.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, &exchange.Record{SourceID: "b", State: "offer-sent", Exchange: "{}"}))

		loaded, err := s.Load(ctx, "b")
		require.NoError(t, err)
		require.Equal(t, "offer-sent", loaded.State)
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, &exchange.Record{SourceID: "a", Exchange: "{}"}))

		ids, err := s.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, ids)
	})

	t.Run("invalid", func(t *testing.T) {
		require.Error(t, s.Save(ctx, nil))
		require.Error(t, s.Save(ctx, &exchange.Record{Exchange: "{}"}))
		require.Error(t, s.Save(ctx, &exchange.Record{SourceID: "c"}))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "a"))
		require.NoError(t, s.Delete(ctx, "a"))

		_, err := s.Load(ctx, "a")
		require.True(t, errors.Is(err, exchange.ErrNotFound), "%v", err)

		ids, err := s.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"b"}, ids)
	})
}
