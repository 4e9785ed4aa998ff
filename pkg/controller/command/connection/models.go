/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import "github.com/hyperledger/aries-issuer-go/pkg/common/handle"

// OpenRequest request to open a connection to a holder.
type OpenRequest struct {
	// ID of the connection. A random ID is used when empty.
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}

// HandleMessage is either a request or response message, holding a connection handle.
// Used for:
// - response from opening a connection.
// - request to close a connection.
type HandleMessage struct {
	ConnectionHandle handle.Handle `json:"connection_handle"`
	ID               string        `json:"id,omitempty"`
}

// Record describes an open connection.
type Record struct {
	ConnectionHandle handle.Handle `json:"connection_handle"`
	ID               string        `json:"id"`
	Established      bool          `json:"established"`
}

// ListResponse response with the open connections.
type ListResponse struct {
	Connections []Record `json:"connections"`
}
