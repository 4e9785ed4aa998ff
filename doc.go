/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package issuer implements the issuer side of the Aries issue-credential protocol as a Go module.
//
// Packages for end developer usage
//
// pkg/client/issuecredential: Issuer credential objects with asynchronous, handle based operations.
//
// pkg/controller: REST and command handlers that drive credential exchanges over open connections.
//
// cmd/issuer-agent-rest: The issuer agent daemon serving the controller API.
//
// Basic workflow
//
//      1) Create a credential engine and the issuecredential protocol service.
//      2) Create a context with the service, a connection registry and an optional exchange store.
//      3) Create a client instance using its New func, passing the context.
//      4) Create an exchange, send the offer, poll for the request and send the credential.
//      5) Serialize or release the exchange when done.
package issuer
