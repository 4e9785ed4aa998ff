/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-issuer-go/pkg/common/handle"
	"github.com/hyperledger/aries-issuer-go/pkg/connection"
	"github.com/hyperledger/aries-issuer-go/pkg/connection/ws"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/command"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-issuer-go/pkg/internal/logutil"
)

var logger = log.New("aries-issuer/controller/connection")

// constants for connection management endpoints.
const (
	CommandName = "connection"

	OpenCommandMethod  = "Open"
	CloseCommandMethod = "Close"
	ListCommandMethod  = "List"

	errEmptyURL       = "empty url"
	errUnsupportedURL = "unsupported url scheme"
	errZeroHandle     = "connection handle is mandatory"

	// log constants.
	connectionIDString = "connectionID"
	successString      = "success"

	dialTimeout = 10 * time.Second
)

const (
	// InvalidRequestErrorCode is typically a code for validation errors
	// for invalid connection controller requests.
	InvalidRequestErrorCode = command.Code(iota + command.Connection)

	// OpenConnectionErrorCode is for failures in open connection command.
	OpenConnectionErrorCode
	// CloseConnectionErrorCode is for failures in close connection command.
	CloseConnectionErrorCode
	// ConnectionNotFoundErrorCode is for commands addressed to an unknown connection handle.
	ConnectionNotFoundErrorCode
)

// Dialer opens a connection to url.
type Dialer func(ctx context.Context, id, url string) (connection.Connection, error)

// Provider contains dependencies for the connection commands.
type Provider interface {
	ConnectionRegistry() *connection.Registry
}

// Option configures the connection Command.
type Option func(*Command)

// WithDialer replaces the websocket dialer.
func WithDialer(d Dialer) Option {
	return func(c *Command) {
		c.dial = d
	}
}

// Command provides controller API for connection commands.
type Command struct {
	registry *connection.Registry
	dial     Dialer
}

// New creates connection Command.
func New(prov Provider, opts ...Option) (*Command, error) {
	registry := prov.ConnectionRegistry()
	if registry == nil {
		return nil, errors.New("connection registry is mandatory")
	}

	c := &Command{
		registry: registry,
		dial: func(ctx context.Context, id, url string) (connection.Connection, error) {
			if !ws.Accept(url) {
				return nil, fmt.Errorf("%s: %s", errUnsupportedURL, url)
			}

			return ws.Dial(ctx, id, url)
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GetHandlers returns list of all commands supported by this controller command.
func (c *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, OpenCommandMethod, c.Open),
		cmdutil.NewCommandHandler(CommandName, CloseCommandMethod, c.Close),
		cmdutil.NewCommandHandler(CommandName, ListCommandMethod, c.List),
	}
}

// Register adds an already established connection, e.g. one accepted by the REST server.
func (c *Command) Register(conn connection.Connection) handle.Handle {
	h := c.registry.Add(conn)

	logutil.LogInfo(logger, CommandName, "Register", successString,
		logutil.CreateKeyValueString(connectionIDString, conn.ID()))

	return h
}

// Open dials a holder and registers the connection.
func (c *Command) Open(rw io.Writer, req io.Reader) command.Error {
	var request OpenRequest

	if err := json.NewDecoder(req).Decode(&request); err != nil {
		logutil.LogInfo(logger, CommandName, OpenCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if request.URL == "" {
		logutil.LogDebug(logger, CommandName, OpenCommandMethod, errEmptyURL)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyURL))
	}

	if request.ID == "" {
		request.ID = uuid.New().String()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, err := c.dial(ctx, request.ID, request.URL)
	if err != nil {
		logutil.LogError(logger, CommandName, OpenCommandMethod, err,
			logutil.CreateKeyValueString(connectionIDString, request.ID))

		return command.NewExecuteError(OpenConnectionErrorCode, err)
	}

	h := c.registry.Add(conn)

	command.WriteNillableResponse(rw, &HandleMessage{ConnectionHandle: h, ID: conn.ID()}, logger)

	logutil.LogDebug(logger, CommandName, OpenCommandMethod, successString,
		logutil.CreateKeyValueString(connectionIDString, conn.ID()))

	return nil
}

// Close closes and unregisters a connection.
func (c *Command) Close(rw io.Writer, req io.Reader) command.Error {
	var request HandleMessage

	if err := json.NewDecoder(req).Decode(&request); err != nil {
		logutil.LogInfo(logger, CommandName, CloseCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	if request.ConnectionHandle == 0 {
		logutil.LogDebug(logger, CommandName, CloseCommandMethod, errZeroHandle)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errZeroHandle))
	}

	if err := c.registry.Remove(request.ConnectionHandle); err != nil {
		if errors.Is(err, handle.ErrNotFound) {
			logutil.LogWarn(logger, CommandName, CloseCommandMethod, err.Error(),
				logutil.HandleKeyValue("handle", request.ConnectionHandle))

			return command.NewNotFoundError(ConnectionNotFoundErrorCode, err)
		}

		logutil.LogError(logger, CommandName, CloseCommandMethod, err)

		return command.NewExecuteError(CloseConnectionErrorCode, err)
	}

	command.WriteNillableResponse(rw, nil, logger)

	logutil.LogDebug(logger, CommandName, CloseCommandMethod, successString)

	return nil
}

// List returns the open connections.
func (c *Command) List(rw io.Writer, _ io.Reader) command.Error {
	records := []Record{}

	for _, h := range c.registry.Handles() {
		conn, err := c.registry.Get(h)
		if err != nil {
			continue
		}

		records = append(records, Record{ConnectionHandle: h, ID: conn.ID(), Established: conn.IsEstablished()})
	}

	command.WriteNillableResponse(rw, &ListResponse{Connections: records}, logger)

	logutil.LogDebug(logger, CommandName, ListCommandMethod, successString)

	return nil
}
