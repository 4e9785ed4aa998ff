/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import (
	"github.com/hyperledger/aries-issuer-go/pkg/common/handle"
	client "github.com/hyperledger/aries-issuer-go/pkg/client/issuecredential"
)

// CreateArgs model
//
// This is used for creating a credential exchange.
type CreateArgs struct {
	client.CreateParams
}

// HandleArgs model
//
// This is used by the commands addressed to an existing exchange.
type HandleArgs struct {
	// Handle of the exchange.
	Handle handle.Handle `json:"handle"`
}

// ConnectionArgs model
//
// This is used by the commands which send a message to the holder.
type ConnectionArgs struct {
	// Handle of the exchange.
	Handle handle.Handle `json:"handle"`
	// ConnectionHandle is the handle of an open connection.
	ConnectionHandle handle.Handle `json:"connection_handle"`
}

// DeserializeArgs model
//
// This is used for restoring an exchange from its serialized text.
type DeserializeArgs struct {
	Data string `json:"data"`
}

// SourceIDArgs model
//
// This is used by the commands addressed to a stored exchange.
type SourceIDArgs struct {
	SourceID string `json:"source_id"`
}

// ExchangeResponse model
//
// Represents an exchange held by the agent.
type ExchangeResponse struct {
	Handle   handle.Handle `json:"handle"`
	SourceID string        `json:"source_id"`
	State    client.State  `json:"state"`
	// StateName is the name of State.
	StateName string `json:"state_name"`
}

// StateResponse model
//
// Represents the state of an exchange.
type StateResponse struct {
	State     client.State `json:"state"`
	StateName string       `json:"state_name"`
}

// SerializeResponse model
//
// Represents a serialized exchange.
type SerializeResponse struct {
	Data string `json:"data"`
}

// ListResponse model
//
// Represents the source IDs of the stored exchanges.
type ListResponse struct {
	SourceIDs []string `json:"source_ids"`
}

// EmptyResponse model
//
// Returned by commands without a result.
type EmptyResponse struct{}
