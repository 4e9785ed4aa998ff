/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"github.com/hyperledger/aries-issuer-go/pkg/controller/command/connection"
)

// openConnectionRequest model
//
// This is used for operation to open a connection to a holder.
//
// swagger:parameters openConnection
type openConnectionRequest struct { // nolint: unused,deadcode
	// in: body
	Params connection.OpenRequest
}

// connectionHandleResponse model
//
// response of open connection action.
//
// swagger:response connectionHandleResponse
type connectionHandleResponse struct { // nolint: unused,deadcode
	// in: body
	connection.HandleMessage
}

// closeConnectionRequest model
//
// This is used for operation to close a connection.
//
// swagger:parameters closeConnection
type closeConnectionRequest struct { // nolint: unused,deadcode
	// The connection handle
	//
	// in: path
	// required: true
	Handle string `json:"handle"`
}

// acceptConnectionRequest model
//
// This is used by holders opening a websocket to the agent.
//
// swagger:parameters acceptConnection
type acceptConnectionRequest struct { // nolint: unused,deadcode
	// The connection ID
	//
	// in: path
	// required: true
	ID string `json:"id"`
}

// listConnectionsResponse model
//
// swagger:response listConnectionsResponse
type listConnectionsResponse struct { // nolint: unused,deadcode
	// in: body
	connection.ListResponse
}
