/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-issuer-go/pkg/common/async"
	"github.com/hyperledger/aries-issuer-go/pkg/common/errcode"
	"github.com/hyperledger/aries-issuer-go/pkg/common/handle"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/protocol/decorator"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/protocol/issuecredential"
	"github.com/hyperledger/aries-issuer-go/pkg/engine/jws"
	ariesctx "github.com/hyperledger/aries-issuer-go/pkg/framework/context"
	mockconn "github.com/hyperledger/aries-issuer-go/pkg/mock/connection"
)

const timeout = 5 * time.Second

func testParams() *CreateParams {
	return &CreateParams{
		SourceID:       "1",
		CredDefID:      "cred_def_id",
		Attributes:     `{"key":"value","key2":"value2","key3":"value3"}`,
		CredentialName: "Credential Name",
		Price:          "1",
	}
}

func newClient(t *testing.T) (*Client, *issuecredential.Service, *jws.Engine) {
	t.Helper()

	engine, err := jws.New()
	require.NoError(t, err)

	svc, err := issuecredential.New(issuecredential.WithEngine(engine))
	require.NoError(t, err)

	ctx, err := ariesctx.New(ariesctx.WithProtocolServices(svc))
	require.NoError(t, err)

	c, err := New(ctx)
	require.NoError(t, err)

	return c, svc, engine
}

func await[T any](t *testing.T, r *async.Result[T]) (T, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	v, err := r.Wait(ctx)
	require.False(t, errors.Is(err, context.DeadlineExceeded), "operation did not complete")

	return v, err
}

func create(t *testing.T, c *Client, params *CreateParams) *IssuerCredential {
	t.Helper()

	ic, err := await(t, c.Create(params))
	require.NoError(t, err)

	return ic
}

// holder answers offers with credential requests.
func holder() *mockconn.MockConnection {
	conn := mockconn.New("holder")

	conn.Reply = func(msg service.DIDCommMsgMap) service.DIDCommMsgMap {
		if msg.Type() != issuecredential.OfferCredentialMsgType {
			return nil
		}

		attach := decorator.Attachment{
			ID:   "libindy-cred-req-0",
			Data: decorator.AttachmentData{JSON: map[string]interface{}{"prover_did": "did:sov:holder"}},
		}

		req, err := service.NewDIDCommMsgMap(&issuecredential.RequestCredential{
			Type:           issuecredential.RequestCredentialMsgType,
			ID:             uuid.New().String(),
			RequestsAttach: []decorator.Attachment{attach},
			Thread:         &decorator.Thread{ID: msg.ID()},
		})
		if err != nil {
			return nil
		}

		return req
	}

	return conn
}

func requireCode(t *testing.T, err error, code errcode.Code) {
	t.Helper()

	require.Error(t, err)
	require.Equal(t, code, errcode.CodeOf(err), err.Error())
}

type provider struct {
	svc interface{}
	err error
}

func (p *provider) Service(string) (interface{}, error) {
	return p.svc, p.err
}

func TestNew(t *testing.T) {
	t.Run("service error", func(t *testing.T) {
		_, err := New(&provider{err: errors.New("service error")})
		require.EqualError(t, err, "service error")
	})

	t.Run("cast error", func(t *testing.T) {
		_, err := New(&provider{svc: struct{}{}})
		require.EqualError(t, err, "cast service to issuecredential service failed")
	})

	t.Run("not registered", func(t *testing.T) {
		ctx, err := ariesctx.New()
		require.NoError(t, err)

		_, err = New(ctx)
		require.True(t, errors.Is(err, ariesctx.ErrSvcNotFound))
	})
}

func TestClient_Create(t *testing.T) {
	c, _, _ := newClient(t)

	t.Run("success", func(t *testing.T) {
		ic := create(t, c, testParams())
		require.NotZero(t, ic.Handle())
		require.Equal(t, "1", ic.SourceID())
	})

	t.Run("missing field", func(t *testing.T) {
		for _, unset := range []func(p *CreateParams){
			func(p *CreateParams) { p.SourceID = "" },
			func(p *CreateParams) { p.CredDefID = "" },
			func(p *CreateParams) { p.Attributes = nil },
			func(p *CreateParams) { p.CredentialName = "" },
			func(p *CreateParams) { p.Price = nil },
		} {
			p := testParams()
			unset(p)

			r := c.Create(p)

			select {
			case <-r.Done():
			default:
				require.Fail(t, "validation must complete before any async work")
			}

			_, err := await(t, r)
			requireCode(t, err, errcode.InvalidOption)
		}
	})

	t.Run("invalid attributes", func(t *testing.T) {
		p := testParams()
		p.Attributes = "invalid"

		_, err := await(t, c.Create(p))
		requireCode(t, err, errcode.InvalidJSON)
		require.Equal(t, "Invalid JSON string", errcode.CodeOf(err).Message())
	})
}

func TestIssuerCredential_Serialize(t *testing.T) {
	c, _, _ := newClient(t)
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		ic := create(t, c, testParams())

		text, err := await(t, ic.Serialize(ctx))
		require.NoError(t, err)
		require.Contains(t, text, `"source_id":"1"`)

		restored, err := await(t, c.Deserialize(ctx, text))
		require.NoError(t, err)
		require.Equal(t, "1", restored.SourceID())
		require.NotEqual(t, ic.Handle(), restored.Handle())

		text2, err := await(t, restored.Serialize(ctx))
		require.NoError(t, err)
		require.Equal(t, text, text2)
	})

	t.Run("invalid text", func(t *testing.T) {
		_, err := await(t, c.Deserialize(ctx, `{"source_id":"Invalid"}`))
		requireCode(t, err, errcode.InvalidJSON)
	})

	t.Run("after release", func(t *testing.T) {
		ic := create(t, c, testParams())

		_, err := await(t, ic.Release(ctx))
		require.NoError(t, err)

		_, err = await(t, ic.Serialize(ctx))
		requireCode(t, err, errcode.InvalidIssuerCredentialHandle)
		require.Contains(t, err.Error(), "Invalid Issuer Credential Handle")
	})
}

func TestIssuerCredential_Release(t *testing.T) {
	c, _, _ := newClient(t)
	ctx := context.Background()

	t.Run("uninitialized reference", func(t *testing.T) {
		_, err := await(t, c.Release(ctx, 0))
		requireCode(t, err, errcode.UnknownError)
	})

	t.Run("twice", func(t *testing.T) {
		ic := create(t, c, testParams())

		_, err := await(t, ic.Release(ctx))
		require.NoError(t, err)

		_, err = await(t, ic.Release(ctx))
		requireCode(t, err, errcode.InvalidIssuerCredentialHandle)

		_, err = await(t, c.Release(ctx, ic.Handle()))
		requireCode(t, err, errcode.InvalidIssuerCredentialHandle)
	})
}

func TestIssuerCredential_Uninitialized(t *testing.T) {
	ctx := context.Background()
	ic := &IssuerCredential{}
	conn := mockconn.New("holder")

	_, err := await(t, ic.Serialize(ctx))
	requireCode(t, err, errcode.InvalidIssuerCredentialHandle)
	require.Equal(t, issuecredential.OpSerialize, errcode.OpOf(err))
	require.Contains(t, err.Error(), "Invalid Issuer Credential Handle")

	_, err = await(t, ic.SendOffer(ctx, conn))
	requireCode(t, err, errcode.InvalidIssuerCredentialHandle)
	require.Equal(t, issuecredential.OpSendOffer, errcode.OpOf(err))

	_, err = await(t, ic.SendCredential(ctx, conn))
	requireCode(t, err, errcode.InvalidIssuerCredentialHandle)
	require.Equal(t, issuecredential.OpSendCredential, errcode.OpOf(err))

	_, err = await(t, ic.Release(ctx))
	requireCode(t, err, errcode.UnknownError)

	state, err := await(t, ic.UpdateState(ctx))
	require.NoError(t, err)
	require.Equal(t, issuecredential.None, state)

	state, err = await(t, ic.GetState(ctx))
	require.NoError(t, err)
	require.Equal(t, issuecredential.None, state)

	require.Empty(t, conn.Sent())
}

func TestIssuerCredential_UpdateState(t *testing.T) {
	c, _, _ := newClient(t)
	ctx := context.Background()

	t.Run("uninitialized reference", func(t *testing.T) {
		state, err := await(t, c.UpdateState(ctx, 0))
		require.NoError(t, err)
		require.Equal(t, issuecredential.None, state)
	})

	t.Run("created", func(t *testing.T) {
		ic := create(t, c, testParams())

		state, err := await(t, ic.UpdateState(ctx))
		require.NoError(t, err)
		require.Equal(t, issuecredential.Initialized, state)

		state, err = await(t, c.UpdateState(ctx, ic.Handle()))
		require.NoError(t, err)
		require.Equal(t, issuecredential.Initialized, state)
	})
}

func TestIssuerCredential_Flow(t *testing.T) {
	ctx := context.Background()

	t.Run("send offer", func(t *testing.T) {
		c, _, _ := newClient(t)
		ic := create(t, c, testParams())

		_, err := await(t, ic.SendOffer(ctx, mockconn.New("holder")))
		require.NoError(t, err)

		state, err := await(t, ic.GetState(ctx))
		require.NoError(t, err)
		require.Equal(t, issuecredential.OfferSent, state)
	})

	t.Run("send credential without request", func(t *testing.T) {
		c, _, _ := newClient(t)
		ic := create(t, c, testParams())
		conn := mockconn.New("holder")

		_, err := await(t, ic.SendOffer(ctx, conn))
		require.NoError(t, err)

		_, err = await(t, ic.SendCredential(ctx, conn))
		requireCode(t, err, errcode.NotReady)
	})

	t.Run("accepted", func(t *testing.T) {
		c, _, engine := newClient(t)
		ic := create(t, c, testParams())
		conn := holder()

		_, err := await(t, ic.SendOffer(ctx, conn))
		require.NoError(t, err)

		state, err := await(t, ic.UpdateState(ctx))
		require.NoError(t, err)
		require.Equal(t, issuecredential.RequestReceived, state)

		_, err = await(t, ic.SendCredential(ctx, conn))
		require.NoError(t, err)

		state, err = await(t, ic.GetState(ctx))
		require.NoError(t, err)
		require.Equal(t, issuecredential.Accepted, state)

		issued := &issuecredential.IssueCredential{}
		require.NoError(t, conn.Sent()[1].Decode(issued))

		cred, err := issued.CredentialsAttach[0].Data.JSONObject()
		require.NoError(t, err)

		claims, err := engine.Verify(cred)
		require.NoError(t, err)
		require.Equal(t, "did:sov:holder", claims.Subject)
		require.Equal(t, "value", claims.Values["key"].Raw)
	})

	t.Run("events", func(t *testing.T) {
		c, _, _ := newClient(t)

		events := make(chan service.StateMsg, 5)
		require.NoError(t, c.RegisterMsgEvent(events))

		create(t, c, testParams())

		select {
		case msg := <-events:
			require.Equal(t, "initialized", msg.StateID)
		case <-time.After(timeout):
			require.Fail(t, "no event")
		}
	})
}

func createAndDrop(t *testing.T, c *Client) handle.Handle {
	t.Helper()

	return create(t, c, testParams()).Handle()
}

func TestIssuerCredential_Reclaim(t *testing.T) {
	c, svc, _ := newClient(t)

	h := createAndDrop(t, c)

	require.Eventually(t, func() bool {
		runtime.GC()

		_, err := svc.Serialize(h)

		return errcode.Is(err, errcode.InvalidIssuerCredentialHandle)
	}, timeout, 10*time.Millisecond)

	require.Zero(t, svc.Len())

	t.Run("explicit release clears the finalizer", func(t *testing.T) {
		ic := create(t, c, testParams())

		_, err := await(t, ic.Release(context.Background()))
		require.NoError(t, err)
		require.Zero(t, svc.Len())

		runtime.GC()

		_, err = await(t, c.Release(context.Background(), ic.Handle()))
		requireCode(t, err, errcode.InvalidIssuerCredentialHandle)
	})
}
