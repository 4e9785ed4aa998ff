/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/hyperledger/aries-framework-go/component/storageutil/mem"

	"github.com/hyperledger/aries-issuer-go/pkg/client/issuecredential"
	"github.com/hyperledger/aries-issuer-go/pkg/common/async"
	"github.com/hyperledger/aries-issuer-go/pkg/common/errcode"
	"github.com/hyperledger/aries-issuer-go/pkg/common/handle"
	"github.com/hyperledger/aries-issuer-go/pkg/connection"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/command"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/webnotifier"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
	protocol "github.com/hyperledger/aries-issuer-go/pkg/didcomm/protocol/issuecredential"
	"github.com/hyperledger/aries-issuer-go/pkg/internal/logutil"
	"github.com/hyperledger/aries-issuer-go/pkg/store/exchange"
)

var logger = log.New("aries-issuer/controller/issuecredential")

// Error codes of the command layer. Failures raised by the exchange itself are reported with their own
// code (see errcode), so clients can tell a missing field from an unknown handle.
const (
	// InvalidRequestErrorCode is typically a code for validation errors
	// for invalid issue credential controller requests.
	InvalidRequestErrorCode = command.Code(iota + command.IssueCredential)
	// StoreErrorCode is for failures of the exchange store.
	StoreErrorCode
	// RecordNotFoundErrorCode is for commands addressed to a source ID which is not stored.
	RecordNotFoundErrorCode
	// TimeoutErrorCode is for commands which did not complete in time.
	TimeoutErrorCode
)

// constants for issue credential commands.
const (
	// command name.
	CommandName = "issuecredential"

	Create         = "Create"
	SendOffer      = "SendOffer"
	UpdateState    = "UpdateState"
	SendCredential = "SendCredential"
	GetState       = "GetState"
	Serialize      = "Serialize"
	Deserialize    = "Deserialize"
	Release        = "Release"
	Load           = "Load"
	List           = "List"
	Delete         = "Delete"
)

const (
	// error messages.
	errEmptyData     = "empty data"
	errEmptySourceID = "empty source ID"
	errZeroHandle    = "handle is mandatory"
	// log constants.
	successString = "success"

	_states = "_states"

	defaultTimeout = 30 * time.Second
	// events are dropped when the buffer is full.
	stateBufferSize = 100
)

// Options contains configuration options.
type Options struct {
	timeout time.Duration
}

// Option modifies Options.
type Option func(*Options)

// WithTimeout bounds the time a command waits for an exchange operation.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.timeout = d
	}
}

// Provider contains dependencies for the issuecredential protocol and is typically created by using context.New().
type Provider interface {
	Service(id string) (interface{}, error)
	ConnectionRegistry() *connection.Registry
	ExchangeStore() exchange.Store
}

// Command is controller command for issue credential.
type Command struct {
	client      *issuecredential.Client
	connections *connection.Registry
	store       exchange.Store
	timeout     time.Duration

	mu   sync.Mutex
	open map[handle.Handle]*issuecredential.IssuerCredential
}

// New returns new issue credential controller command instance.
// State changes of every exchange are forwarded to the notifier. Exchanges are kept in memory
// when the context has no exchange store.
func New(ctx Provider, notifier command.Notifier, options ...Option) (*Command, error) {
	opts := &Options{timeout: defaultTimeout}

	for i := range options {
		options[i](opts)
	}

	client, err := issuecredential.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot create a client: %w", err)
	}

	// creates state channel
	states := make(chan service.StateMsg, stateBufferSize)
	// registers state channel to listen for events
	if err = client.RegisterMsgEvent(states); err != nil {
		return nil, fmt.Errorf("register msg event: %w", err)
	}

	store := ctx.ExchangeStore()
	if store == nil {
		logger.Infof("no exchange store configured, records are kept in memory")

		if store, err = exchange.New(mem.NewProvider()); err != nil {
			return nil, fmt.Errorf("create in-memory exchange store: %w", err)
		}
	}

	webnotifier.NewObserver(notifier).RegisterStateMsg(protocol.Name+_states, states)

	return &Command{
		client:      client,
		connections: ctx.ConnectionRegistry(),
		store:       store,
		timeout:     opts.timeout,
		open:        map[handle.Handle]*issuecredential.IssuerCredential{},
	}, nil
}

// GetHandlers returns list of all commands supported by this controller command.
func (c *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, Create, c.Create),
		cmdutil.NewCommandHandler(CommandName, SendOffer, c.SendOffer),
		cmdutil.NewCommandHandler(CommandName, UpdateState, c.UpdateState),
		cmdutil.NewCommandHandler(CommandName, SendCredential, c.SendCredential),
		cmdutil.NewCommandHandler(CommandName, GetState, c.GetState),
		cmdutil.NewCommandHandler(CommandName, Serialize, c.Serialize),
		cmdutil.NewCommandHandler(CommandName, Deserialize, c.Deserialize),
		cmdutil.NewCommandHandler(CommandName, Release, c.Release),
		cmdutil.NewCommandHandler(CommandName, Load, c.Load),
		cmdutil.NewCommandHandler(CommandName, List, c.List),
		cmdutil.NewCommandHandler(CommandName, Delete, c.Delete),
	}
}

// Create starts a new credential exchange and stores it.
func (c *Command) Create(rw io.Writer, req io.Reader) command.Error {
	var args CreateArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, Create, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	ic, cmdErr := wait(c, Create, c.client.Create(&args.CreateParams))
	if cmdErr != nil {
		return cmdErr
	}

	c.hold(ic)

	return c.respondExchange(rw, Create, ic)
}

// SendOffer sends the credential offer over an open connection.
func (c *Command) SendOffer(rw io.Writer, req io.Reader) command.Error {
	return c.withConnection(rw, req, SendOffer,
		func(ctx context.Context, ic *issuecredential.IssuerCredential, conn connection.Connection) error {
			_, err := ic.SendOffer(ctx, conn).Wait(ctx)
			return err
		})
}

// SendCredential issues the credential for the received request.
func (c *Command) SendCredential(rw io.Writer, req io.Reader) command.Error {
	return c.withConnection(rw, req, SendCredential,
		func(ctx context.Context, ic *issuecredential.IssuerCredential, conn connection.Connection) error {
			_, err := ic.SendCredential(ctx, conn).Wait(ctx)
			return err
		})
}

// UpdateState polls the holder for the exchange's next message.
func (c *Command) UpdateState(rw io.Writer, req io.Reader) command.Error {
	var args HandleArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, UpdateState, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	state, cmdErr := wait(c, UpdateState, c.client.UpdateState(context.Background(), args.Handle))
	if cmdErr != nil {
		return cmdErr
	}

	if ic, ok := c.get(args.Handle); ok {
		if cmdErr = c.persist(UpdateState, ic); cmdErr != nil {
			return cmdErr
		}
	}

	command.WriteNillableResponse(rw, &StateResponse{State: state, StateName: state.String()}, logger)

	logutil.LogDebug(logger, CommandName, UpdateState, successString)

	return nil
}

// GetState returns the current state of an exchange.
func (c *Command) GetState(rw io.Writer, req io.Reader) command.Error {
	ic, cmdErr := c.decodeHandle(req, GetState)
	if cmdErr != nil {
		return cmdErr
	}

	state, cmdErr := wait(c, GetState, ic.GetState(context.Background()))
	if cmdErr != nil {
		return cmdErr
	}

	command.WriteNillableResponse(rw, &StateResponse{State: state, StateName: state.String()}, logger)

	logutil.LogDebug(logger, CommandName, GetState, successString)

	return nil
}

// Serialize returns the serialized text of an exchange.
func (c *Command) Serialize(rw io.Writer, req io.Reader) command.Error {
	ic, cmdErr := c.decodeHandle(req, Serialize)
	if cmdErr != nil {
		return cmdErr
	}

	text, cmdErr := wait(c, Serialize, ic.Serialize(context.Background()))
	if cmdErr != nil {
		return cmdErr
	}

	command.WriteNillableResponse(rw, &SerializeResponse{Data: text}, logger)

	logutil.LogDebug(logger, CommandName, Serialize, successString)

	return nil
}

// Deserialize restores an exchange from serialized text under a new handle and stores it.
func (c *Command) Deserialize(rw io.Writer, req io.Reader) command.Error {
	var args DeserializeArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, Deserialize, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if args.Data == "" {
		logutil.LogDebug(logger, CommandName, Deserialize, errEmptyData)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyData))
	}

	return c.restore(rw, Deserialize, args.Data)
}

// Release releases the handle of an exchange. The stored record is kept.
func (c *Command) Release(rw io.Writer, req io.Reader) command.Error {
	var args HandleArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, Release, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	var r *async.Result[struct{}]

	if ic, ok := c.drop(args.Handle); ok {
		r = ic.Release(context.Background())
	} else {
		r = c.client.Release(context.Background(), args.Handle)
	}

	if _, cmdErr := wait(c, Release, r); cmdErr != nil {
		return cmdErr
	}

	command.WriteNillableResponse(rw, &EmptyResponse{}, logger)

	logutil.LogDebug(logger, CommandName, Release, successString,
		logutil.HandleKeyValue("handle", args.Handle))

	return nil
}

// Load restores a stored exchange under a new handle.
func (c *Command) Load(rw io.Writer, req io.Reader) command.Error {
	args, cmdErr := decodeSourceID(req, Load)
	if cmdErr != nil {
		return cmdErr
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	rec, err := c.store.Load(ctx, args.SourceID)
	if err != nil {
		return storeError(Load, err)
	}

	return c.restore(rw, Load, rec.Exchange)
}

// List returns the source IDs of the stored exchanges.
func (c *Command) List(rw io.Writer, _ io.Reader) command.Error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	ids, err := c.store.List(ctx)
	if err != nil {
		return storeError(List, err)
	}

	command.WriteNillableResponse(rw, &ListResponse{SourceIDs: ids}, logger)

	logutil.LogDebug(logger, CommandName, List, successString)

	return nil
}

// Delete removes a stored exchange. Open handles are not affected.
func (c *Command) Delete(rw io.Writer, req io.Reader) command.Error {
	args, cmdErr := decodeSourceID(req, Delete)
	if cmdErr != nil {
		return cmdErr
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.store.Delete(ctx, args.SourceID); err != nil {
		return storeError(Delete, err)
	}

	command.WriteNillableResponse(rw, &EmptyResponse{}, logger)

	logutil.LogDebug(logger, CommandName, Delete, successString,
		logutil.CreateKeyValueString("sourceID", args.SourceID))

	return nil
}

func (c *Command) withConnection(rw io.Writer, req io.Reader, action string,
	send func(context.Context, *issuecredential.IssuerCredential, connection.Connection) error) command.Error {
	var args ConnectionArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, action, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	ic, cmdErr := c.lookup(action, args.Handle)
	if cmdErr != nil {
		return cmdErr
	}

	conn, err := c.connections.Get(args.ConnectionHandle)
	if err != nil {
		return exchangeError(action, errcode.Wrap(errcode.InvalidConnectionHandle, action, err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err = send(ctx, ic, conn); err != nil {
		return exchangeError(action, err)
	}

	if cmdErr = c.persist(action, ic); cmdErr != nil {
		return cmdErr
	}

	command.WriteNillableResponse(rw, &EmptyResponse{}, logger)

	logutil.LogDebug(logger, CommandName, action, successString,
		logutil.HandleKeyValue("handle", args.Handle))

	return nil
}

func (c *Command) restore(rw io.Writer, action, text string) command.Error {
	ic, cmdErr := wait(c, action, c.client.Deserialize(context.Background(), text))
	if cmdErr != nil {
		return cmdErr
	}

	c.hold(ic)

	return c.respondExchange(rw, action, ic)
}

// respondExchange stores ic and writes its summary.
func (c *Command) respondExchange(rw io.Writer, action string, ic *issuecredential.IssuerCredential) command.Error {
	if cmdErr := c.persist(action, ic); cmdErr != nil {
		return cmdErr
	}

	state, cmdErr := wait(c, action, ic.GetState(context.Background()))
	if cmdErr != nil {
		return cmdErr
	}

	command.WriteNillableResponse(rw, &ExchangeResponse{
		Handle:    ic.Handle(),
		SourceID:  ic.SourceID(),
		State:     state,
		StateName: state.String(),
	}, logger)

	logutil.LogDebug(logger, CommandName, action, successString,
		logutil.HandleKeyValue("handle", ic.Handle()))

	return nil
}

// persist saves the current serialized exchange under its source ID.
func (c *Command) persist(action string, ic *issuecredential.IssuerCredential) command.Error {
	text, cmdErr := wait(c, action, ic.Serialize(context.Background()))
	if cmdErr != nil {
		return cmdErr
	}

	state, cmdErr := wait(c, action, ic.GetState(context.Background()))
	if cmdErr != nil {
		return cmdErr
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	err := c.store.Save(ctx, &exchange.Record{
		SourceID:  ic.SourceID(),
		State:     state.String(),
		Exchange:  text,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return storeError(action, err)
	}

	return nil
}

func (c *Command) decodeHandle(req io.Reader, action string) (*issuecredential.IssuerCredential, command.Error) {
	var args HandleArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, action, err.Error())
		return nil, command.NewValidationError(InvalidRequestErrorCode, err)
	}

	return c.lookup(action, args.Handle)
}

func (c *Command) lookup(action string, h handle.Handle) (*issuecredential.IssuerCredential, command.Error) {
	if h == 0 {
		logutil.LogDebug(logger, CommandName, action, errZeroHandle)
		return nil, command.NewValidationError(InvalidRequestErrorCode, errors.New(errZeroHandle))
	}

	ic, ok := c.get(h)
	if !ok {
		return nil, exchangeError(action, errcode.New(errcode.InvalidIssuerCredentialHandle, action, nil))
	}

	return ic, nil
}

func (c *Command) hold(ic *issuecredential.IssuerCredential) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.open[ic.Handle()] = ic
}

func (c *Command) get(h handle.Handle) (*issuecredential.IssuerCredential, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ic, ok := c.open[h]

	return ic, ok
}

func (c *Command) drop(h handle.Handle) (*issuecredential.IssuerCredential, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ic, ok := c.open[h]
	delete(c.open, h)

	return ic, ok
}

func decodeSourceID(req io.Reader, action string) (*SourceIDArgs, command.Error) {
	var args SourceIDArgs

	if err := json.NewDecoder(req).Decode(&args); err != nil {
		logutil.LogInfo(logger, CommandName, action, err.Error())
		return nil, command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if args.SourceID == "" {
		logutil.LogDebug(logger, CommandName, action, errEmptySourceID)
		return nil, command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptySourceID))
	}

	return &args, nil
}

// wait blocks on r for at most the command timeout.
func wait[T any](c *Command, action string, r *async.Result[T]) (T, command.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	v, err := r.Wait(ctx)
	if err != nil {
		return v, exchangeError(action, err)
	}

	return v, nil
}

// exchangeError reports err with its exchange error code.
func exchangeError(action string, err error) command.Error {
	logutil.LogError(logger, CommandName, action, err)

	if errors.Is(err, context.DeadlineExceeded) {
		return command.NewExecuteError(TimeoutErrorCode, err)
	}

	code := errcode.CodeOf(err)

	switch code {
	case errcode.InvalidOption, errcode.InvalidJSON, errcode.NotReady:
		return command.NewValidationError(command.Code(code), err)
	case errcode.InvalidIssuerCredentialHandle, errcode.InvalidConnectionHandle:
		return command.NewNotFoundError(command.Code(code), err)
	default:
		return command.NewExecuteError(command.Code(code), err)
	}
}

func storeError(action string, err error) command.Error {
	logutil.LogError(logger, CommandName, action, err)

	if errors.Is(err, exchange.ErrNotFound) {
		return command.NewNotFoundError(RecordNotFoundErrorCode, err)
	}

	return command.NewExecuteError(StoreErrorCode, err)
}
