/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-issuer-go/pkg/common/errcode"
	command "github.com/hyperledger/aries-issuer-go/pkg/controller/command/issuecredential"
	mockwebhook "github.com/hyperledger/aries-issuer-go/pkg/controller/internal/mocks/webhook"
	protocol "github.com/hyperledger/aries-issuer-go/pkg/didcomm/protocol/issuecredential"
	"github.com/hyperledger/aries-issuer-go/pkg/engine/jws"
	ariesctx "github.com/hyperledger/aries-issuer-go/pkg/framework/context"
	mockconn "github.com/hyperledger/aries-issuer-go/pkg/mock/connection"
)

const createRequest = `{"source_id":"1","cred_def_id":"cred_def_id",` +
	`"attributes":{"name":"Alice"},"credential_name":"Credential Name","price":"0"}`

func newServer(t *testing.T) (*httptest.Server, *ariesctx.Provider) {
	t.Helper()

	engine, err := jws.New()
	require.NoError(t, err)

	svc, err := protocol.New(protocol.WithEngine(engine))
	require.NoError(t, err)

	ctx, err := ariesctx.New(ariesctx.WithProtocolServices(svc))
	require.NoError(t, err)

	op, err := New(ctx, mockwebhook.NewMockWebhookNotifier())
	require.NoError(t, err)

	router := mux.NewRouter()
	for _, h := range op.GetRESTHandlers() {
		router.HandleFunc(h.Path(), h.Handle()).Methods(h.Method())
	}

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, ctx
}

func do(t *testing.T, method, url, body string, resp interface{}) int {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, url, bytes.NewBufferString(body))
	require.NoError(t, err)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() { require.NoError(t, res.Body.Close()) }()

	if resp != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(resp))
	}

	return res.StatusCode
}

type errorBody struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

func TestNew(t *testing.T) {
	ctx, err := ariesctx.New()
	require.NoError(t, err)

	_, err = New(ctx, mockwebhook.NewMockWebhookNotifier())
	require.Error(t, err)
	require.Contains(t, err.Error(), "issue credential command")
}

func TestOperation_Flow(t *testing.T) {
	srv, ctx := newServer(t)

	ex := &command.ExchangeResponse{}
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+CreatePath, createRequest, ex))
	require.Equal(t, "initialized", ex.StateName)

	exchangeURL := fmt.Sprintf("%s%s/%d", srv.URL, OperationID, ex.Handle)

	connHandle := ctx.ConnectionRegistry().Add(mockconn.New("holder"))

	status := do(t, http.MethodPost, exchangeURL+"/send-offer",
		fmt.Sprintf(`{"connection_handle":%d}`, connHandle), nil)
	require.Equal(t, http.StatusOK, status)

	state := &command.StateResponse{}
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, exchangeURL+"/update-state", "", state))
	require.Equal(t, protocol.OfferSent, state.State)

	require.Equal(t, http.StatusOK, do(t, http.MethodGet, exchangeURL+"/state", "", state))
	require.Equal(t, "offer-sent", state.StateName)

	e := &errorBody{}
	status = do(t, http.MethodPost, exchangeURL+"/send-credential", fmt.Sprintf(`{"connection_handle":%d}`, connHandle), e)
	require.Equal(t, http.StatusBadRequest, status)
	require.EqualValues(t, errcode.NotReady, e.Code)

	ser := &command.SerializeResponse{}
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, exchangeURL+"/serialize", "", ser))

	body, err := json.Marshal(&command.DeserializeArgs{Data: ser.Data})
	require.NoError(t, err)

	restored := &command.ExchangeResponse{}
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+DeserializePath, string(body), restored))
	require.Equal(t, protocol.OfferSent, restored.State)

	require.Equal(t, http.StatusOK, do(t, http.MethodDelete, exchangeURL, "", nil))

	status = do(t, http.MethodGet, exchangeURL+"/state", "", e)
	require.Equal(t, http.StatusNotFound, status)
	require.EqualValues(t, errcode.InvalidIssuerCredentialHandle, e.Code)
	require.Contains(t, e.Message, "Invalid Issuer Credential Handle")
}

func TestOperation_Records(t *testing.T) {
	srv, _ := newServer(t)

	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+CreatePath, createRequest, nil))

	list := &command.ListResponse{}
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+ListPath, "", list))
	require.Equal(t, []string{"1"}, list.SourceIDs)

	loaded := &command.ExchangeResponse{}
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+recordsPath+"/1/load", "", loaded))
	require.Equal(t, "1", loaded.SourceID)

	require.Equal(t, http.StatusOK, do(t, http.MethodDelete, srv.URL+recordsPath+"/1", "", nil))

	e := &errorBody{}
	require.Equal(t, http.StatusNotFound, do(t, http.MethodPost, srv.URL+recordsPath+"/1/load", "", e))
	require.EqualValues(t, command.RecordNotFoundErrorCode, e.Code)
}

func TestOperation_InvalidRequests(t *testing.T) {
	srv, _ := newServer(t)

	e := &errorBody{}

	status := do(t, http.MethodPost, srv.URL+CreatePath, strings.Replace(createRequest, `"source_id":"1",`, "", 1), e)
	require.Equal(t, http.StatusBadRequest, status)
	require.EqualValues(t, errcode.InvalidOption, e.Code)

	status = do(t, http.MethodPost, srv.URL+OperationID+"/1/send-offer", "{", e)
	require.Equal(t, http.StatusBadRequest, status)
	require.EqualValues(t, command.InvalidRequestErrorCode, e.Code)

	status = do(t, http.MethodGet, srv.URL+OperationID+"/99999999999/state", "", e)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, e.Message, "invalid handle")

	status = do(t, http.MethodPost, srv.URL+DeserializePath, `{"data":"{}"}`, e)
	require.Equal(t, http.StatusBadRequest, status)
	require.EqualValues(t, errcode.InvalidJSON, e.Code)
}
