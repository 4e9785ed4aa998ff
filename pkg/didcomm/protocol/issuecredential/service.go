/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-issuer-go/pkg/common/errcode"
	"github.com/hyperledger/aries-issuer-go/pkg/common/handle"
	"github.com/hyperledger/aries-issuer-go/pkg/connection"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/model"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/protocol/decorator"
)

const (
	// Name defines the protocol name.
	Name = "issue-credential"
	// Spec defines the protocol spec.
	Spec = "https://didcomm.org/issue-credential/1.0/"
	// LegacySpec is the spec prefix used by older agents.
	LegacySpec = "did:sov:BzCbsNYhMrjHiqZDTUASHg;spec/issue-credential/1.0/"
	// OfferCredentialMsgType defines the protocol offer-credential message type.
	OfferCredentialMsgType = Spec + "offer-credential"
	// RequestCredentialMsgType defines the protocol request-credential message type.
	RequestCredentialMsgType = Spec + "request-credential"
	// IssueCredentialMsgType defines the protocol issue-credential message type.
	IssueCredentialMsgType = Spec + "issue-credential"
	// AckMsgType defines the protocol ack message type.
	AckMsgType = Spec + "ack"
	// ProblemReportMsgType defines the protocol problem-report message type.
	ProblemReportMsgType = Spec + "problem-report"
	// CredentialPreviewMsgType defines the protocol credential-preview inner object type.
	CredentialPreviewMsgType = Spec + "credential-preview"
)

const (
	offerAttachID      = "libindy-cred-offer-0"
	credentialAttachID = "libindy-cred-0"
	jsonMimeType       = "application/json"
	registryDomain     = "issuer-credential"
)

// Operation names reported in errors.
const (
	OpCreate         = "IssuerCredential:create"
	OpSendOffer      = "IssuerCredential:sendOffer"
	OpUpdateState    = "IssuerCredential:updateState"
	OpSendCredential = "IssuerCredential:sendCredential"
	OpGetState       = "IssuerCredential:getState"
	OpSerialize      = "IssuerCredential:serialize"
	OpDeserialize    = "IssuerCredential:deserialize"
	OpRelease        = "IssuerCredential:release"
	OpGet            = "IssuerCredential:get"
)

var logger = log.New("aries-issuer/issuecredential/service")

// CredentialEngine builds the cryptographic payloads of the exchange.
type CredentialEngine interface {
	// CreateOffer returns the offer attachment for a credential definition.
	CreateOffer(ctx context.Context, credDefID string, attrs map[string]string) (map[string]interface{}, error)
	// CreateCredential returns the signed credential answering request for offer.
	CreateCredential(ctx context.Context, offer, request map[string]interface{},
		attrs map[string]string) (map[string]interface{}, error)
}

// Option configures the Service.
type Option func(s *Service)

// WithEngine sets the credential engine.
func WithEngine(engine CredentialEngine) Option {
	return func(s *Service) {
		s.engine = engine
	}
}

// WithResolver sets the resolver used to rebind deserialized exchanges to their connection.
func WithResolver(resolver connection.Resolver) Option {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// exchange is a registry entry. Fields are guarded by mu; released is set once the handle is removed.
type exchange struct {
	mu       sync.Mutex
	released bool
	record   *Record
	conn     connection.Connection
}

// Service is the issuer side of the issue-credential protocol.
type Service struct {
	service.Message
	exchanges *handle.Registry[*exchange]
	engine    CredentialEngine
	resolver  connection.Resolver
}

// New returns the issuecredential service.
func New(opts ...Option) (*Service, error) {
	svc := &Service{
		exchanges: handle.NewRegistry[*exchange](registryDomain),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.engine == nil {
		return nil, errors.New("credential engine is mandatory")
	}

	return svc, nil
}

// Name returns service name.
func (s *Service) Name() string {
	return Name
}

// Len returns the number of live exchanges.
func (s *Service) Len() int {
	return s.exchanges.Len()
}

// Handles returns the live exchange handles.
func (s *Service) Handles() []handle.Handle {
	return s.exchanges.Handles()
}

// Create validates params and registers a new exchange in state Initialized.
func (s *Service) Create(params *CreateParams) (handle.Handle, error) {
	if params == nil {
		return 0, errcode.Newf(errcode.InvalidOption, OpCreate, "missing parameters")
	}

	attrs, price, err := params.validate(OpCreate)
	if err != nil {
		return 0, err
	}

	rec := &Record{
		SourceID:       params.SourceID,
		CredDefID:      params.CredDefID,
		CredentialName: params.CredentialName,
		Attributes:     attrs,
		Price:          price,
		State:          Initialized,
		PleaseAck:      params.PleaseAck,
	}

	h := s.exchanges.Add(&exchange{record: rec})

	logger.Debugf("exchange %d created for source [%s]", h, rec.SourceID)
	s.sendMsgEvents(h, rec, Initialized, None, nil, service.PostState)

	return h, nil
}

// acquire returns the locked exchange behind h. The caller must unlock it.
func (s *Service) acquire(op string, h handle.Handle) (*exchange, error) {
	ex, err := s.exchanges.Get(h)
	if err != nil {
		return nil, errcode.New(errcode.InvalidIssuerCredentialHandle, op, err)
	}

	ex.mu.Lock()

	if ex.released {
		ex.mu.Unlock()

		return nil, errcode.Newf(errcode.InvalidIssuerCredentialHandle, op, "%s %d: %w",
			registryDomain, h, handle.ErrNotFound)
	}

	return ex, nil
}

func validConnection(op string, conn connection.Connection) error {
	if conn == nil {
		return errcode.Newf(errcode.InvalidConnectionHandle, op, "connection is not set")
	}

	if !conn.IsEstablished() {
		return errcode.Newf(errcode.InvalidConnectionHandle, op, "connection %s is not established", conn.ID())
	}

	return nil
}

// SendOffer sends the credential offer over conn. The exchange must be Initialized.
func (s *Service) SendOffer(ctx context.Context, h handle.Handle, conn connection.Connection) error {
	ex, err := s.acquire(OpSendOffer, h)
	if err != nil {
		return err
	}
	defer ex.mu.Unlock()

	if err := validConnection(OpSendOffer, conn); err != nil {
		return err
	}

	rec := ex.record
	if rec.State != Initialized {
		return errcode.Newf(errcode.NotReady, OpSendOffer, "exchange is %s", rec.State)
	}

	offer, err := s.engine.CreateOffer(ctx, rec.CredDefID, rec.Attributes)
	if err != nil {
		return errcode.Wrap(errcode.UnknownError, OpSendOffer, fmt.Errorf("create offer: %w", err))
	}

	attach, err := jsonAttachment(offerAttachID, offer)
	if err != nil {
		return errcode.Wrap(errcode.UnknownError, OpSendOffer, err)
	}

	msgID := uuid.New().String()

	msg, err := service.NewDIDCommMsgMap(&OfferCredential{
		Type:              OfferCredentialMsgType,
		ID:                msgID,
		Comment:           rec.CredentialName,
		CredentialPreview: preview(rec.Attributes),
		OffersAttach:      []decorator.Attachment{attach},
		Price:             rec.Price,
	})
	if err != nil {
		return errcode.Wrap(errcode.UnknownError, OpSendOffer, err)
	}

	if err := conn.Send(ctx, msg); err != nil {
		return errcode.Wrap(errcode.UnknownError, OpSendOffer, fmt.Errorf("send offer: %w", err))
	}

	rec.Offer = offer
	rec.ThreadID = msgID
	rec.ConnectionID = conn.ID()
	ex.conn = conn

	return s.transition(h, ex, OfferSent, msg, OpSendOffer)
}

// UpdateState polls the exchange connection and applies the received messages.
// The zero handle reports None without error.
func (s *Service) UpdateState(ctx context.Context, h handle.Handle) (State, error) {
	if h == 0 {
		return None, nil
	}

	ex, err := s.acquire(OpUpdateState, h)
	if err != nil {
		return None, err
	}
	defer ex.mu.Unlock()

	rec := ex.record
	if rec.State == Initialized || rec.State.Terminal() {
		return rec.State, nil
	}

	conn, err := s.connectionOf(ex)
	if err != nil {
		return rec.State, errcode.New(errcode.InvalidConnectionHandle, OpUpdateState, err)
	}

	if err := s.poll(ctx, h, ex, conn); err != nil {
		return rec.State, err
	}

	return rec.State, nil
}

func (s *Service) poll(ctx context.Context, h handle.Handle, ex *exchange, conn connection.Connection) error {
	msgs, err := conn.Poll(ctx, ex.record.ThreadID)
	if err != nil {
		return errcode.Wrap(errcode.UnknownError, OpUpdateState, fmt.Errorf("poll: %w", err))
	}

	for _, msg := range msgs {
		if err := s.consume(h, ex, msg); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) connectionOf(ex *exchange) (connection.Connection, error) {
	if ex.conn != nil {
		return ex.conn, nil
	}

	if s.resolver == nil {
		return nil, fmt.Errorf("no resolver for connection %s", ex.record.ConnectionID)
	}

	conn, err := s.resolver.Resolve(ex.record.ConnectionID)
	if err != nil {
		return nil, err
	}

	ex.conn = conn

	return conn, nil
}

// consume applies one inbound message. Messages not expected in the current state are ignored.
func (s *Service) consume(h handle.Handle, ex *exchange, msg service.DIDCommMsgMap) error {
	rec := ex.record

	switch messageName(msg.Type()) {
	case "request-credential":
		if rec.State != OfferSent {
			break
		}

		request, err := decodeRequest(msg)
		if err != nil {
			logger.Warnf("exchange %d: ignoring request %s: %v", h, msg.ID(), err)

			return nil
		}

		rec.Request = request

		return s.transition(h, ex, RequestReceived, msg, OpUpdateState)
	case "ack":
		if rec.State != CredentialSent {
			break
		}

		return s.transition(h, ex, Accepted, msg, OpUpdateState)
	case "problem-report":
		if rec.State.Terminal() {
			break
		}

		report := &model.ProblemReport{}
		if err := msg.Decode(report); err != nil {
			logger.Warnf("exchange %d: malformed problem report %s: %v", h, msg.ID(), err)
		}

		rec.ProblemReport = report.Description.String()

		return s.transition(h, ex, Unfulfilled, msg, OpUpdateState)
	}

	logger.Debugf("exchange %d: ignoring message %s of type %s in state %s", h, msg.ID(), msg.Type(), rec.State)

	return nil
}

func decodeRequest(msg service.DIDCommMsgMap) (map[string]interface{}, error) {
	req := &RequestCredential{}
	if err := msg.Decode(req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}

	if len(req.RequestsAttach) == 0 {
		return nil, errors.New("request has no attachment")
	}

	return req.RequestsAttach[0].Data.JSONObject()
}

// SendCredential issues the credential over conn. The exchange must be RequestReceived.
// A failed send leaves the exchange in RequestReceived and can be retried: the engine hands out the
// same credential for the same offer. When an acknowledgement was asked for, a queued one is applied
// right away. Failing to poll for it does not fail the call since the credential is already delivered;
// the exchange stays in CredentialSent and the next UpdateState polls again.
func (s *Service) SendCredential(ctx context.Context, h handle.Handle, conn connection.Connection) error {
	ex, err := s.acquire(OpSendCredential, h)
	if err != nil {
		return err
	}
	defer ex.mu.Unlock()

	rec := ex.record
	if rec.State != RequestReceived {
		return errcode.Newf(errcode.NotReady, OpSendCredential, "exchange is %s", rec.State)
	}

	if err := validConnection(OpSendCredential, conn); err != nil {
		return err
	}

	cred, err := s.engine.CreateCredential(ctx, rec.Offer, rec.Request, rec.Attributes)
	if err != nil {
		return errcode.Wrap(errcode.UnknownError, OpSendCredential, fmt.Errorf("create credential: %w", err))
	}

	attach, err := jsonAttachment(credentialAttachID, cred)
	if err != nil {
		return errcode.Wrap(errcode.UnknownError, OpSendCredential, err)
	}

	issue := &IssueCredential{
		Type:              IssueCredentialMsgType,
		ID:                uuid.New().String(),
		Comment:           rec.CredentialName,
		CredentialsAttach: []decorator.Attachment{attach},
		Thread:            &decorator.Thread{ID: rec.ThreadID},
	}

	if rec.PleaseAck {
		issue.PleaseAck = &decorator.PleaseAck{On: []string{"RECEIPT"}}
	}

	msg, err := service.NewDIDCommMsgMap(issue)
	if err != nil {
		return errcode.Wrap(errcode.UnknownError, OpSendCredential, err)
	}

	if err := conn.Send(ctx, msg); err != nil {
		return errcode.Wrap(errcode.UnknownError, OpSendCredential, fmt.Errorf("send credential: %w", err))
	}

	ex.conn = conn

	if !rec.PleaseAck {
		return s.transition(h, ex, Accepted, msg, OpSendCredential)
	}

	if err := s.transition(h, ex, CredentialSent, msg, OpSendCredential); err != nil {
		return err
	}

	if err := s.poll(ctx, h, ex, conn); err != nil {
		logger.Warnf("exchange %d: credential sent, acknowledgement not polled: %v", h, err)
	}

	return nil
}

// GetState returns the exchange state. The zero handle reports None without error.
func (s *Service) GetState(h handle.Handle) (State, error) {
	if h == 0 {
		return None, nil
	}

	ex, err := s.acquire(OpGetState, h)
	if err != nil {
		return None, err
	}
	defer ex.mu.Unlock()

	return ex.record.State, nil
}

// Get returns a copy of the exchange record.
func (s *Service) Get(h handle.Handle) (*Record, error) {
	ex, err := s.acquire(OpGet, h)
	if err != nil {
		return nil, err
	}
	defer ex.mu.Unlock()

	return ex.record.clone(), nil
}

// Serialize returns the canonical text of the exchange.
func (s *Service) Serialize(h handle.Handle) (string, error) {
	ex, err := s.acquire(OpSerialize, h)
	if err != nil {
		return "", err
	}
	defer ex.mu.Unlock()

	text, err := encodeRecord(ex.record)
	if err != nil {
		return "", errcode.Wrap(errcode.UnknownError, OpSerialize, err)
	}

	return text, nil
}

// Deserialize registers the exchange described by text under a new handle.
// The connection is resolved again when it is needed.
func (s *Service) Deserialize(text string) (handle.Handle, error) {
	rec, err := decodeRecord(text)
	if err != nil {
		return 0, errcode.New(errcode.InvalidJSON, OpDeserialize, err)
	}

	h := s.exchanges.Add(&exchange{record: rec})

	logger.Debugf("exchange %d restored for source [%s] in state %s", h, rec.SourceID, rec.State)

	return h, nil
}

// Release removes the exchange. The zero handle is an UnknownError, an unknown handle an
// InvalidIssuerCredentialHandle.
func (s *Service) Release(h handle.Handle) error {
	if h == 0 {
		return errcode.Newf(errcode.UnknownError, OpRelease, "uninitialized reference")
	}

	ex, err := s.exchanges.Remove(h)
	if err != nil {
		return errcode.New(errcode.InvalidIssuerCredentialHandle, OpRelease, err)
	}

	ex.mu.Lock()
	ex.released = true
	ex.conn = nil
	ex.mu.Unlock()

	logger.Debugf("exchange %d released", h)

	return nil
}

// transition moves the exchange to next and publishes the state events. Caller holds ex.mu.
func (s *Service) transition(h handle.Handle, ex *exchange, next State, msg service.DIDCommMsgMap, op string) error {
	rec := ex.record

	current, err := stateFromValue(rec.State)
	if err != nil {
		return errcode.Wrap(errcode.UnknownError, op, err)
	}

	target, err := stateFromValue(next)
	if err != nil {
		return errcode.Wrap(errcode.UnknownError, op, err)
	}

	if !current.CanTransitionTo(target) {
		return errcode.Newf(errcode.NotReady, op, "invalid state transition: %s -> %s", current.Name(), target.Name())
	}

	previous := rec.State

	s.sendMsgEvents(h, rec, next, previous, msg, service.PreState)

	rec.State = next

	logger.Debugf("exchange %d: %s -> %s", h, current.Name(), target.Name())
	s.sendMsgEvents(h, rec, next, previous, msg, service.PostState)

	return nil
}

// sendMsgEvents triggers the message events.
func (s *Service) sendMsgEvents(h handle.Handle, rec *Record, entered, previous State, msg service.DIDCommMsgMap,
	stateType service.StateMsgType) {
	s.Publish(service.StateMsg{
		ProtocolName: Name,
		Type:         stateType,
		StateID:      entered.String(),
		Msg:          msg,
		Properties:   newEventProps(h, rec, previous),
	})
}

// messageName returns the message name of a protocol message type, or an empty string for other protocols.
func messageName(t string) string {
	for _, prefix := range []string{Spec, LegacySpec} {
		if strings.HasPrefix(t, prefix) {
			return strings.TrimPrefix(t, prefix)
		}
	}

	return ""
}

func jsonAttachment(id string, payload map[string]interface{}) (decorator.Attachment, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return decorator.Attachment{}, fmt.Errorf("marshal attachment %s: %w", id, err)
	}

	return decorator.Attachment{
		ID:       id,
		MimeType: jsonMimeType,
		Data:     decorator.AttachmentData{Base64: base64.StdEncoding.EncodeToString(raw)},
	}, nil
}
