/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("message comes from the code", func(t *testing.T) {
		err := New(InvalidIssuerCredentialHandle, "IssuerCredential:serialize", nil)
		require.Equal(t, InvalidIssuerCredentialHandle, err.Code())
		require.Equal(t, "IssuerCredential:serialize", err.Op())
		require.Equal(t, "Invalid Issuer Credential Handle", err.Message())
		require.EqualError(t, err, "IssuerCredential:serialize: Invalid Issuer Credential Handle")
	})

	t.Run("cause is kept", func(t *testing.T) {
		cause := errors.New("boom")
		err := New(InvalidJSON, "IssuerCredential:deserialize", cause)
		require.ErrorIs(t, err, cause)
		require.Contains(t, err.Error(), "boom")
		require.Equal(t, "Invalid JSON string", err.Message())
	})

	t.Run("unknown code", func(t *testing.T) {
		require.Equal(t, "Unrecognized error code 42", Code(42).Message())
	})
}

func TestWrap(t *testing.T) {
	require.Nil(t, Wrap(UnknownError, "op", nil))

	inner := New(NotReady, "inner", nil)
	wrapped := Wrap(UnknownError, "outer", fmt.Errorf("engine: %w", inner))
	require.Equal(t, NotReady, wrapped.Code())
	require.Equal(t, "outer", wrapped.Op())

	foreign := Wrap(UnknownError, "outer", errors.New("foreign"))
	require.Equal(t, UnknownError, foreign.Code())
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, Success, CodeOf(nil))
	require.Equal(t, UnknownError, CodeOf(errors.New("plain")))
	require.Equal(t, InvalidOption, CodeOf(fmt.Errorf("wrapped: %w", New(InvalidOption, "op", nil))))
	require.True(t, Is(New(InvalidOption, "op", nil), InvalidOption))
	require.False(t, Is(nil, InvalidOption))
	require.Equal(t, "op", OpOf(New(InvalidOption, "op", nil)))
	require.Empty(t, OpOf(errors.New("plain")))
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("ctx: %w", New(InvalidConnectionHandle, "IssuerCredential:sendOffer", nil))

	require.True(t, errors.Is(err, &Error{code: InvalidConnectionHandle}))
	require.True(t, errors.Is(err, &Error{code: InvalidConnectionHandle, op: "IssuerCredential:sendOffer"}))
	require.False(t, errors.Is(err, &Error{code: InvalidConnectionHandle, op: "other"}))
	require.False(t, errors.Is(err, &Error{code: NotReady}))
}
