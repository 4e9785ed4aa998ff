/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-issuer-go/pkg/connection/ws"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/command/connection"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/rest"
)

var logger = log.New("aries-issuer/rest/connection")

// constants for connection management endpoints.
const (
	OperationID = "/connections"
	ClosePath   = OperationID + "/{handle:[0-9]+}"
	AcceptPath  = OperationID + "/accept/{id}"
)

// Operation is the REST controller for connection management.
type Operation struct {
	command  *connection.Command
	handlers []rest.Handler
}

// New returns new connection management rest client protocol instance.
func New(p connection.Provider, opts ...connection.Option) (*Operation, error) {
	cmd, err := connection.New(p, opts...)
	if err != nil {
		return nil, err
	}

	op := &Operation{
		command: cmd,
	}

	op.registerHandler()

	return op, nil
}

// GetRESTHandlers get all controller API handlers available for this service.
func (c *Operation) GetRESTHandlers() []rest.Handler {
	return c.handlers
}

// registerHandler register handlers to be exposed from this service as REST API endpoints.
func (c *Operation) registerHandler() {
	c.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(OperationID, http.MethodPost, c.Open),
		cmdutil.NewHTTPHandler(OperationID, http.MethodGet, c.List),
		cmdutil.NewHTTPHandler(ClosePath, http.MethodDelete, c.Close),
		cmdutil.NewHTTPHandler(AcceptPath, http.MethodGet, c.Accept),
	}
}

// Open swagger:route POST /connections connections openConnection
//
// Dials a holder over websocket and registers the connection.
//
// Responses:
//    default: genericError
//        200: connectionHandleResponse
func (c *Operation) Open(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.Open, rw, req.Body)
}

// List swagger:route GET /connections connections listConnections
//
// Lists the open connections.
//
// Responses:
//    default: genericError
//        200: listConnectionsResponse
func (c *Operation) List(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.List, rw, req.Body)
}

// Close swagger:route DELETE /connections/{handle} connections closeConnection
//
// Closes a connection.
//
// Responses:
//    default: genericError
func (c *Operation) Close(rw http.ResponseWriter, req *http.Request) {
	h, err := strconv.ParseUint(mux.Vars(req)["handle"], 10, 32)
	if err != nil {
		rest.SendHTTPStatusError(rw, http.StatusBadRequest, connection.InvalidRequestErrorCode,
			fmt.Errorf("invalid connection handle: %w", err))

		return
	}

	request := fmt.Sprintf(`{"connection_handle":%d}`, h)

	rest.Execute(c.command.Close, rw, bytes.NewBufferString(request))
}

// Accept swagger:route GET /connections/accept/{id} connections acceptConnection
//
// Upgrades the request to a websocket and registers it as a connection with the given ID.
//
// Responses:
//    default: genericError
func (c *Operation) Accept(rw http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	conn, err := ws.Upgrade(rw, req, id)
	if err != nil {
		// the handshake already wrote the response
		logger.Warnf("accept connection %s: %v", id, err)

		return
	}

	c.command.Register(conn)
}
