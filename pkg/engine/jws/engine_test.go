/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import (
	"context"
	"crypto/sha256"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const credDefID = "V4SGRU86Z58d6TV7PBUe6f:3:CL:24:tag1"

func TestNew(t *testing.T) {
	t.Run("deterministic from seed", func(t *testing.T) {
		seed := []byte("00000000000000000000000000000My1")

		e1, err := New(WithSeed(seed))
		require.NoError(t, err)

		e2, err := New(WithSeed(seed))
		require.NoError(t, err)

		require.Equal(t, e1.IssuerDID(), e2.IssuerDID())
		require.Equal(t, e1.VerKey(), e2.VerKey())
		require.Equal(t, e1.KeyID(), e2.KeyID())
		require.True(t, strings.HasPrefix(e1.KeyID(), "did:key:z6Mk"))
	})

	t.Run("random key", func(t *testing.T) {
		e1, err := New()
		require.NoError(t, err)

		e2, err := New()
		require.NoError(t, err)

		require.NotEqual(t, e1.VerKey(), e2.VerKey())
	})

	t.Run("invalid seed", func(t *testing.T) {
		_, err := New(WithSeed([]byte("short")))
		require.Error(t, err)
		require.Contains(t, err.Error(), "seed must be 32 bytes")
	})
}

func TestEngine(t *testing.T) {
	ctx := context.Background()
	attrs := map[string]string{"name": "alice", "age": "25"}

	t.Run("offer then credential", func(t *testing.T) {
		e, err := New()
		require.NoError(t, err)

		offer, err := e.CreateOffer(ctx, credDefID, attrs)
		require.NoError(t, err)
		require.Equal(t, credDefID, offer["cred_def_id"])
		require.Equal(t, []string{"age", "name"}, offer["attr_names"])
		require.NotEmpty(t, offer["nonce"])

		request := map[string]interface{}{"cred_def_id": credDefID, "prover_did": "did:sov:holder"}

		cred, err := e.CreateCredential(ctx, offer, request, attrs)
		require.NoError(t, err)
		require.Equal(t, e.KeyID(), cred["kid"])

		claims, err := e.Verify(cred)
		require.NoError(t, err)
		require.Equal(t, e.IssuerDID(), claims.Issuer)
		require.Equal(t, "did:sov:holder", claims.Subject)
		require.Equal(t, credDefID, claims.CredDefID)
		require.Equal(t, offer["nonce"], claims.OfferNonce)
		require.Equal(t, AttributeValue{Raw: "25", Encoded: "25"}, claims.Values["age"])

		again, err := e.CreateCredential(ctx, offer, request, attrs)
		require.NoError(t, err)
		require.Equal(t, cred["signature"], again["signature"])
	})

	t.Run("offer answered by another engine with the same key", func(t *testing.T) {
		seed := []byte("00000000000000000000000000000My1")

		e1, err := New(WithSeed(seed))
		require.NoError(t, err)

		offer, err := e1.CreateOffer(ctx, credDefID, attrs)
		require.NoError(t, err)

		e2, err := New(WithSeed(seed))
		require.NoError(t, err)

		cred, err := e2.CreateCredential(ctx, offer, map[string]interface{}{"prover_did": "did:sov:holder"}, attrs)
		require.NoError(t, err)

		claims, err := e1.Verify(cred)
		require.NoError(t, err)
		require.Equal(t, offer["nonce"], claims.OfferNonce)

		other, err := New()
		require.NoError(t, err)

		_, err = other.CreateCredential(ctx, offer, map[string]interface{}{}, attrs)
		require.ErrorIs(t, err, ErrUnknownOffer)
	})

	t.Run("forged offer", func(t *testing.T) {
		e, err := New()
		require.NoError(t, err)

		offer, err := e.CreateOffer(ctx, credDefID, attrs)
		require.NoError(t, err)

		forged := map[string]interface{}{}
		for k, v := range offer {
			forged[k] = v
		}

		forged["nonce"] = "1"
		_, err = e.CreateCredential(ctx, forged, map[string]interface{}{}, attrs)
		require.ErrorIs(t, err, ErrUnknownOffer)

		forged["nonce"] = offer["nonce"]
		forged["cred_def_id"] = "other"
		_, err = e.CreateCredential(ctx, forged, map[string]interface{}{}, attrs)
		require.ErrorIs(t, err, ErrUnknownOffer)

		delete(forged, "offer_proof")
		_, err = e.CreateCredential(ctx, forged, map[string]interface{}{}, attrs)
		require.ErrorIs(t, err, ErrUnknownOffer)

		forged["offer_proof"] = "not a jwt"
		_, err = e.CreateCredential(ctx, forged, map[string]interface{}{}, attrs)
		require.ErrorIs(t, err, ErrUnknownOffer)
	})

	t.Run("offer expires", func(t *testing.T) {
		e, err := New(WithOfferTTL(time.Millisecond))
		require.NoError(t, err)

		offer, err := e.CreateOffer(ctx, credDefID, attrs)
		require.NoError(t, err)

		e.now = func() time.Time { return time.Now().Add(2 * time.Second) }

		_, err = e.CreateCredential(ctx, offer, map[string]interface{}{}, attrs)
		require.ErrorIs(t, err, ErrUnknownOffer)
	})

	t.Run("cred def mismatch", func(t *testing.T) {
		e, err := New()
		require.NoError(t, err)

		offer, err := e.CreateOffer(ctx, credDefID, attrs)
		require.NoError(t, err)

		_, err = e.CreateCredential(ctx, offer, map[string]interface{}{"cred_def_id": "other"}, attrs)
		require.Error(t, err)
		require.Contains(t, err.Error(), "offer is for")
	})

	t.Run("missing cred def", func(t *testing.T) {
		e, err := New()
		require.NoError(t, err)

		_, err = e.CreateOffer(ctx, "", attrs)
		require.Error(t, err)
	})

	t.Run("tampered credential", func(t *testing.T) {
		e, err := New()
		require.NoError(t, err)

		other, err := New()
		require.NoError(t, err)

		offer, err := e.CreateOffer(ctx, credDefID, attrs)
		require.NoError(t, err)

		cred, err := e.CreateCredential(ctx, offer, map[string]interface{}{}, attrs)
		require.NoError(t, err)

		_, err = other.Verify(cred)
		require.Error(t, err)

		_, err = e.Verify(map[string]interface{}{})
		require.Error(t, err)

		_, err = e.Verify(map[string]interface{}{"signature": "not a jwt"})
		require.Error(t, err)
	})
}

func TestEncodeValues(t *testing.T) {
	digest := sha256.Sum256([]byte("alice"))

	values := EncodeValues(map[string]string{"name": "alice", "age": "25", "big": "99999999999"})
	require.Equal(t, "25", values["age"].Encoded)
	require.Equal(t, new(big.Int).SetBytes(digest[:]).String(), values["name"].Encoded)
	require.NotEqual(t, "99999999999", values["big"].Encoded)
	require.Equal(t, "alice", values["name"].Raw)
}
