/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import (
	"context"
	"errors"
	"runtime"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-issuer-go/pkg/common/async"
	"github.com/hyperledger/aries-issuer-go/pkg/common/errcode"
	"github.com/hyperledger/aries-issuer-go/pkg/common/handle"
	"github.com/hyperledger/aries-issuer-go/pkg/connection"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/protocol/issuecredential"
)

var logger = log.New("aries-issuer/client/issuecredential")

type (
	// CreateParams are the fields of a new credential exchange.
	CreateParams = issuecredential.CreateParams
	// State is the lifecycle state of a credential exchange.
	State = issuecredential.State
)

// Provider contains dependencies for the issuecredential protocol and is typically created by using context.New().
type Provider interface {
	Service(id string) (interface{}, error)
}

// ProtocolService defines the issuecredential service.
type ProtocolService interface {
	service.Event
	Create(params *issuecredential.CreateParams) (handle.Handle, error)
	SendOffer(ctx context.Context, h handle.Handle, conn connection.Connection) error
	UpdateState(ctx context.Context, h handle.Handle) (issuecredential.State, error)
	SendCredential(ctx context.Context, h handle.Handle, conn connection.Connection) error
	GetState(h handle.Handle) (issuecredential.State, error)
	Serialize(h handle.Handle) (string, error)
	Deserialize(text string) (handle.Handle, error)
	Release(h handle.Handle) error
	Get(h handle.Handle) (*issuecredential.Record, error)
}

// Client enable access to issuecredential API.
type Client struct {
	service.Event
	service ProtocolService
}

// New return new instance of the issuecredential client.
func New(ctx Provider) (*Client, error) {
	raw, err := ctx.Service(issuecredential.Name)
	if err != nil {
		return nil, err
	}

	svc, ok := raw.(ProtocolService)
	if !ok {
		return nil, errors.New("cast service to issuecredential service failed")
	}

	return &Client{
		Event:   svc,
		service: svc,
	}, nil
}

// Create starts a new exchange. Invalid params are reported through the result without starting any work.
func (c *Client) Create(params *CreateParams) *async.Result[*IssuerCredential] {
	h, err := c.service.Create(params)
	if err != nil {
		return async.Resolved[*IssuerCredential](nil, err)
	}

	return async.Resolved(c.track(h, params.SourceID), nil)
}

// Deserialize restores an exchange from its serialized text.
func (c *Client) Deserialize(ctx context.Context, text string) *async.Result[*IssuerCredential] {
	return async.Go(ctx, func(context.Context) (*IssuerCredential, error) {
		h, err := c.service.Deserialize(text)
		if err != nil {
			return nil, err
		}

		rec, err := c.service.Get(h)
		if err != nil {
			if errRelease := c.service.Release(h); errRelease != nil {
				logger.Debugf("release exchange %d: %v", h, errRelease)
			}

			return nil, err
		}

		return c.track(h, rec.SourceID), nil
	})
}

// UpdateState polls the exchange behind a raw handle. The zero handle reports None.
func (c *Client) UpdateState(ctx context.Context, h handle.Handle) *async.Result[State] {
	return async.Go(ctx, func(ctx context.Context) (State, error) {
		return c.service.UpdateState(ctx, h)
	})
}

// Release releases a raw handle. The zero handle is an UnknownError.
func (c *Client) Release(ctx context.Context, h handle.Handle) *async.Result[struct{}] {
	return async.Go(ctx, func(context.Context) (struct{}, error) {
		return struct{}{}, c.service.Release(h)
	})
}

// track wraps h in an IssuerCredential released when it becomes unreachable.
func (c *Client) track(h handle.Handle, sourceID string) *IssuerCredential {
	ic := &IssuerCredential{
		service:  c.service,
		handle:   h,
		sourceID: sourceID,
	}

	runtime.SetFinalizer(ic, finalize)

	return ic
}

func finalize(ic *IssuerCredential) {
	if err := ic.service.Release(ic.handle); err != nil {
		logger.Debugf("reclaim exchange %d: %v", ic.handle, err)

		return
	}

	logger.Debugf("exchange %d reclaimed", ic.handle)
}

// IssuerCredential is the issuer side of one credential exchange. Its handle is released by Release
// or, failing that, once the object is garbage collected.
//
// The zero value is an uninitialized reference: its states are None, Release fails with UnknownError
// and the other operations with InvalidIssuerCredentialHandle.
type IssuerCredential struct {
	service  ProtocolService
	handle   handle.Handle
	sourceID string
}

// Handle returns the exchange handle.
func (ic *IssuerCredential) Handle() handle.Handle {
	return ic.handle
}

// SourceID returns the caller supplied exchange ID.
func (ic *IssuerCredential) SourceID() string {
	return ic.sourceID
}

func (ic *IssuerCredential) uninitialized() bool {
	return ic.service == nil
}

func errUninitialized(code errcode.Code, op string) error {
	return errcode.Newf(code, op, "uninitialized reference")
}

// SendOffer sends the credential offer over conn.
func (ic *IssuerCredential) SendOffer(ctx context.Context, conn connection.Connection) *async.Result[struct{}] {
	if ic.uninitialized() {
		return async.Resolved(struct{}{},
			errUninitialized(errcode.InvalidIssuerCredentialHandle, issuecredential.OpSendOffer))
	}

	return async.Go(ctx, func(ctx context.Context) (struct{}, error) {
		defer runtime.KeepAlive(ic)

		return struct{}{}, ic.service.SendOffer(ctx, ic.handle, conn)
	})
}

// UpdateState polls the exchange connection and returns the resulting state.
func (ic *IssuerCredential) UpdateState(ctx context.Context) *async.Result[State] {
	if ic.uninitialized() {
		return async.Resolved(issuecredential.None, nil)
	}

	return async.Go(ctx, func(ctx context.Context) (State, error) {
		defer runtime.KeepAlive(ic)

		return ic.service.UpdateState(ctx, ic.handle)
	})
}

// SendCredential issues the credential over conn.
func (ic *IssuerCredential) SendCredential(ctx context.Context, conn connection.Connection) *async.Result[struct{}] {
	if ic.uninitialized() {
		return async.Resolved(struct{}{},
			errUninitialized(errcode.InvalidIssuerCredentialHandle, issuecredential.OpSendCredential))
	}

	return async.Go(ctx, func(ctx context.Context) (struct{}, error) {
		defer runtime.KeepAlive(ic)

		return struct{}{}, ic.service.SendCredential(ctx, ic.handle, conn)
	})
}

// GetState returns the current state without polling.
func (ic *IssuerCredential) GetState(ctx context.Context) *async.Result[State] {
	if ic.uninitialized() {
		return async.Resolved(issuecredential.None, nil)
	}

	return async.Go(ctx, func(context.Context) (State, error) {
		defer runtime.KeepAlive(ic)

		return ic.service.GetState(ic.handle)
	})
}

// Serialize returns the canonical text of the exchange.
func (ic *IssuerCredential) Serialize(ctx context.Context) *async.Result[string] {
	if ic.uninitialized() {
		return async.Resolved("", errUninitialized(errcode.InvalidIssuerCredentialHandle, issuecredential.OpSerialize))
	}

	return async.Go(ctx, func(context.Context) (string, error) {
		defer runtime.KeepAlive(ic)

		return ic.service.Serialize(ic.handle)
	})
}

// Release releases the exchange handle. Releasing twice reports InvalidIssuerCredentialHandle.
func (ic *IssuerCredential) Release(ctx context.Context) *async.Result[struct{}] {
	if ic.uninitialized() {
		return async.Resolved(struct{}{}, errUninitialized(errcode.UnknownError, issuecredential.OpRelease))
	}

	runtime.SetFinalizer(ic, nil)

	return async.Go(ctx, func(context.Context) (struct{}, error) {
		defer runtime.KeepAlive(ic)

		return struct{}{}, ic.service.Release(ic.handle)
	})
}
