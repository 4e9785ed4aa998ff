/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/hyperledger/aries-issuer-go/pkg/common/handle"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/command"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/command/issuecredential"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/rest"
)

// constants for the issue credential operations.
const (
	OperationID        = "/issuecredential"
	exchangePath       = OperationID + "/{handle:[0-9]+}"
	recordsPath        = OperationID + "/records"
	CreatePath         = OperationID + "/create"
	SendOfferPath      = exchangePath + "/send-offer"
	UpdateStatePath    = exchangePath + "/update-state"
	SendCredentialPath = exchangePath + "/send-credential"
	GetStatePath       = exchangePath + "/state"
	SerializePath      = exchangePath + "/serialize"
	DeserializePath    = OperationID + "/deserialize"
	ReleasePath        = exchangePath
	ListPath           = recordsPath
	LoadPath           = recordsPath + "/{source_id}/load"
	DeletePath         = recordsPath + "/{source_id}"
)

// Operation is controller REST service controller for issue credential.
type Operation struct {
	command  *issuecredential.Command
	handlers []rest.Handler
}

// New returns new issue credential rest client protocol instance.
func New(ctx issuecredential.Provider, notifier command.Notifier, options ...issuecredential.Option) (*Operation, error) {
	cmd, err := issuecredential.New(ctx, notifier, options...)
	if err != nil {
		return nil, fmt.Errorf("issue credential command : %w", err)
	}

	o := &Operation{command: cmd}
	o.registerHandler()

	return o, nil
}

// GetRESTHandlers get all controller API handler available for this protocol service.
func (c *Operation) GetRESTHandlers() []rest.Handler {
	return c.handlers
}

// registerHandler register handlers to be exposed from this protocol service as REST API endpoints.
func (c *Operation) registerHandler() {
	c.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(CreatePath, http.MethodPost, c.Create),
		cmdutil.NewHTTPHandler(SendOfferPath, http.MethodPost, c.SendOffer),
		cmdutil.NewHTTPHandler(UpdateStatePath, http.MethodPost, c.UpdateState),
		cmdutil.NewHTTPHandler(SendCredentialPath, http.MethodPost, c.SendCredential),
		cmdutil.NewHTTPHandler(GetStatePath, http.MethodGet, c.GetState),
		cmdutil.NewHTTPHandler(SerializePath, http.MethodGet, c.Serialize),
		cmdutil.NewHTTPHandler(DeserializePath, http.MethodPost, c.Deserialize),
		cmdutil.NewHTTPHandler(ReleasePath, http.MethodDelete, c.Release),
		cmdutil.NewHTTPHandler(ListPath, http.MethodGet, c.List),
		cmdutil.NewHTTPHandler(LoadPath, http.MethodPost, c.Load),
		cmdutil.NewHTTPHandler(DeletePath, http.MethodDelete, c.Delete),
	}
}

// Create swagger:route POST /issuecredential/create issue-credential issueCredentialCreate
//
// Creates a credential exchange.
//
// Responses:
//    default: genericError
//        200: issueCredentialExchangeResponse
func (c *Operation) Create(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.Create, rw, req.Body)
}

// SendOffer swagger:route POST /issuecredential/{handle}/send-offer issue-credential issueCredentialSendOffer
//
// Sends the credential offer to the holder.
//
// Responses:
//    default: genericError
func (c *Operation) SendOffer(rw http.ResponseWriter, req *http.Request) {
	c.executeWithConnection(c.command.SendOffer, rw, req)
}

// UpdateState swagger:route POST /issuecredential/{handle}/update-state issue-credential issueCredentialUpdateState
//
// Polls the holder for the next message of the exchange.
//
// Responses:
//    default: genericError
//        200: issueCredentialStateResponse
func (c *Operation) UpdateState(rw http.ResponseWriter, req *http.Request) {
	c.executeWithHandle(c.command.UpdateState, rw, req)
}

// SendCredential swagger:route POST /issuecredential/{handle}/send-credential issue-credential issueCredentialSendCredential
//
// Issues the credential requested by the holder.
//
// Responses:
//    default: genericError
func (c *Operation) SendCredential(rw http.ResponseWriter, req *http.Request) {
	c.executeWithConnection(c.command.SendCredential, rw, req)
}

// GetState swagger:route GET /issuecredential/{handle}/state issue-credential issueCredentialGetState
//
// Returns the state of the exchange.
//
// Responses:
//    default: genericError
//        200: issueCredentialStateResponse
func (c *Operation) GetState(rw http.ResponseWriter, req *http.Request) {
	c.executeWithHandle(c.command.GetState, rw, req)
}

// Serialize swagger:route GET /issuecredential/{handle}/serialize issue-credential issueCredentialSerialize
//
// Returns the serialized exchange.
//
// Responses:
//    default: genericError
//        200: issueCredentialSerializeResponse
func (c *Operation) Serialize(rw http.ResponseWriter, req *http.Request) {
	c.executeWithHandle(c.command.Serialize, rw, req)
}

// Deserialize swagger:route POST /issuecredential/deserialize issue-credential issueCredentialDeserialize
//
// Restores an exchange from its serialized text.
//
// Responses:
//    default: genericError
//        200: issueCredentialExchangeResponse
func (c *Operation) Deserialize(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.Deserialize, rw, req.Body)
}

// Release swagger:route DELETE /issuecredential/{handle} issue-credential issueCredentialRelease
//
// Releases the exchange handle.
//
// Responses:
//    default: genericError
func (c *Operation) Release(rw http.ResponseWriter, req *http.Request) {
	c.executeWithHandle(c.command.Release, rw, req)
}

// List swagger:route GET /issuecredential/records issue-credential issueCredentialList
//
// Lists the source IDs of the stored exchanges.
//
// Responses:
//    default: genericError
//        200: issueCredentialListResponse
func (c *Operation) List(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(c.command.List, rw, req.Body)
}

// Load swagger:route POST /issuecredential/records/{source_id}/load issue-credential issueCredentialLoad
//
// Restores a stored exchange.
//
// Responses:
//    default: genericError
//        200: issueCredentialExchangeResponse
func (c *Operation) Load(rw http.ResponseWriter, req *http.Request) {
	c.executeWithSourceID(c.command.Load, rw, req)
}

// Delete swagger:route DELETE /issuecredential/records/{source_id} issue-credential issueCredentialDelete
//
// Removes a stored exchange.
//
// Responses:
//    default: genericError
func (c *Operation) Delete(rw http.ResponseWriter, req *http.Request) {
	c.executeWithSourceID(c.command.Delete, rw, req)
}

func (c *Operation) executeWithHandle(exec command.Exec, rw http.ResponseWriter, req *http.Request) {
	h, ok := getHandle(rw, req)
	if !ok {
		return
	}

	execute(exec, rw, &issuecredential.HandleArgs{Handle: h})
}

func (c *Operation) executeWithConnection(exec command.Exec, rw http.ResponseWriter, req *http.Request) {
	h, ok := getHandle(rw, req)
	if !ok {
		return
	}

	var args issuecredential.ConnectionArgs

	if err := json.NewDecoder(req.Body).Decode(&args); err != nil {
		rest.SendHTTPStatusError(rw, http.StatusBadRequest, issuecredential.InvalidRequestErrorCode, err)
		return
	}

	args.Handle = h

	execute(exec, rw, &args)
}

func (c *Operation) executeWithSourceID(exec command.Exec, rw http.ResponseWriter, req *http.Request) {
	execute(exec, rw, &issuecredential.SourceIDArgs{SourceID: mux.Vars(req)["source_id"]})
}

func execute(exec command.Exec, rw http.ResponseWriter, args interface{}) {
	body, err := json.Marshal(args)
	if err != nil {
		rest.SendHTTPStatusError(rw, http.StatusInternalServerError, issuecredential.InvalidRequestErrorCode, err)
		return
	}

	rest.Execute(exec, rw, bytes.NewReader(body))
}

func getHandle(rw http.ResponseWriter, req *http.Request) (handle.Handle, bool) {
	h, err := strconv.ParseUint(mux.Vars(req)["handle"], 10, 32)
	if err != nil {
		rest.SendHTTPStatusError(rw, http.StatusBadRequest, issuecredential.InvalidRequestErrorCode,
			fmt.Errorf("invalid handle: %w", err))

		return 0, false
	}

	return handle.Handle(h), true
}
