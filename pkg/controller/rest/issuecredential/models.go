/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import (
	command "github.com/hyperledger/aries-issuer-go/pkg/controller/command/issuecredential"
)

// issueCredentialCreateRequest model
//
// This is used for operation to create a credential exchange
//
// swagger:parameters issueCredentialCreate
type issueCredentialCreateRequest struct { // nolint: unused,deadcode
	// in: body
	// required: true
	Params command.CreateArgs
}

// issueCredentialExchangeResponse model
//
// Represents an exchange held by the agent
//
// swagger:response issueCredentialExchangeResponse
type issueCredentialExchangeResponse struct { // nolint: unused,deadcode
	// in: body
	command.ExchangeResponse
}

// issueCredentialHandleRequest model
//
// This is used by the operations addressed to an exchange handle
//
// swagger:parameters issueCredentialUpdateState issueCredentialGetState issueCredentialSerialize issueCredentialRelease
type issueCredentialHandleRequest struct { // nolint: unused,deadcode
	// Exchange handle
	//
	// in: path
	// required: true
	Handle string `json:"handle"`
}

// issueCredentialSendRequest model
//
// This is used for operations sending a message to the holder
//
// swagger:parameters issueCredentialSendOffer issueCredentialSendCredential
type issueCredentialSendRequest struct { // nolint: unused,deadcode
	// Exchange handle
	//
	// in: path
	// required: true
	Handle string `json:"handle"`

	// in: body
	// required: true
	Body struct {
		ConnectionHandle uint32 `json:"connection_handle"`
	}
}

// issueCredentialStateResponse model
//
// Represents the state of an exchange
//
// swagger:response issueCredentialStateResponse
type issueCredentialStateResponse struct { // nolint: unused,deadcode
	// in: body
	command.StateResponse
}

// issueCredentialSerializeResponse model
//
// swagger:response issueCredentialSerializeResponse
type issueCredentialSerializeResponse struct { // nolint: unused,deadcode
	// in: body
	command.SerializeResponse
}

// issueCredentialDeserializeRequest model
//
// swagger:parameters issueCredentialDeserialize
type issueCredentialDeserializeRequest struct { // nolint: unused,deadcode
	// in: body
	// required: true
	Params command.DeserializeArgs
}

// issueCredentialSourceIDRequest model
//
// swagger:parameters issueCredentialLoad issueCredentialDelete
type issueCredentialSourceIDRequest struct { // nolint: unused,deadcode
	// Source ID of the stored exchange
	//
	// in: path
	// required: true
	SourceID string `json:"source_id"`
}

// issueCredentialListResponse model
//
// swagger:response issueCredentialListResponse
type issueCredentialListResponse struct { // nolint: unused,deadcode
	// in: body
	command.ListResponse
}
