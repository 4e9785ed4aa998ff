/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import "github.com/hyperledger/aries-issuer-go/pkg/didcomm/protocol/decorator"

// OfferCredential is a message sent by the Issuer to the potential Holder,
// describing the credential they intend to offer and the price they expect to be paid.
type OfferCredential struct {
	Type string `json:"@type,omitempty"`
	ID   string `json:"@id,omitempty"`
	// Comment carries the credential name.
	Comment string `json:"comment,omitempty"`
	// CredentialPreview is the credential data that Issuer is willing to issue.
	CredentialPreview PreviewCredential `json:"credential_preview,omitempty"`
	// OffersAttach holds the offer built by the credential engine.
	OffersAttach []decorator.Attachment `json:"offers~attach,omitempty"`
	// Price is the decimal price of the credential, omitted when free.
	Price string `json:"price,omitempty"`
}

// RequestCredential is a message sent by the potential Holder to the Issuer,
// to request the issuance of a credential.
type RequestCredential struct {
	Type    string `json:"@type,omitempty"`
	ID      string `json:"@id,omitempty"`
	Comment string `json:"comment,omitempty"`
	// RequestsAttach holds the request built by the holder's credential engine.
	RequestsAttach []decorator.Attachment `json:"requests~attach,omitempty"`
	Thread         *decorator.Thread      `json:"~thread,omitempty"`
}

// IssueCredential contains as attached payload the credentials being issued.
type IssueCredential struct { //nolint: golint
	Type    string `json:"@type,omitempty"`
	ID      string `json:"@id,omitempty"`
	Comment string `json:"comment,omitempty"`
	// CredentialsAttach is a slice of attachments containing the issued credentials.
	CredentialsAttach []decorator.Attachment `json:"credentials~attach,omitempty"`
	Thread            *decorator.Thread      `json:"~thread,omitempty"`
	PleaseAck         *decorator.PleaseAck   `json:"~please_ack,omitempty"`
}

// PreviewCredential is used to construct a preview of the data for the credential that is to be issued.
type PreviewCredential struct {
	Type       string      `json:"@type,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Attribute describes an attribute for a Preview Credential.
type Attribute struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mime-type,omitempty"`
	Value    string `json:"value,omitempty"`
}
