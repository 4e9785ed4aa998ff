/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package model

import "github.com/hyperledger/aries-issuer-go/pkg/didcomm/protocol/decorator"

// ProblemReport problem report definition
type ProblemReport struct {
	Type        string            `json:"@type"`
	ID          string            `json:"@id"`
	Description Code              `json:"description"`
	Thread      *decorator.Thread `json:"~thread,omitempty"`
}

// Code represents a problem report code.
type Code struct {
	Code string `json:"code"`
	// Explanation is the human readable text of the problem.
	Explanation string `json:"en,omitempty"`
}

// String returns the code followed by its explanation, if any.
func (c Code) String() string {
	if c.Explanation == "" {
		return c.Code
	}

	return c.Code + ": " + c.Explanation
}
