/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package decorator

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Thread thread data
type Thread struct {
	ID  string `json:"thid,omitempty"`
	PID string `json:"pthid,omitempty"`
}

// Timing keeps expiration time
type Timing struct {
	ExpiresTime *time.Time `json:"expires_time,omitempty"`
}

// PleaseAck asks the recipient to acknowledge the message.
type PleaseAck struct {
	On []string `json:"on,omitempty"`
}

// Attachment is intended to provide the possibility to include files, links or even JSON payload to the message.
type Attachment struct {
	// ID is a JSON-LD construct that uniquely identifies attached content within the scope of a given message.
	ID string `json:"@id,omitempty"`
	// Description is an optional human-readable description of the content.
	Description string `json:"description,omitempty"`
	// MimeType describes the MIME type of the attached content. Optional but recommended.
	MimeType string `json:"mime-type,omitempty"`
	// Data is a JSON object that gives access to the actual content of the attachment.
	Data AttachmentData `json:"data,omitempty"`
}

// AttachmentData contains attachment payload.
type AttachmentData struct {
	// Sha256 is a hash of the content. Optional.
	Sha256 string `json:"sha256,omitempty"`
	// Base64 encoded data, when representing arbitrary content inline.
	Base64 string `json:"base64,omitempty"`
	// JSON is a directly embedded JSON data.
	JSON interface{} `json:"json,omitempty"`
}

// Fetch this attachment's contents.
func (d *AttachmentData) Fetch() ([]byte, error) {
	if d.JSON != nil {
		bits, err := json.Marshal(d.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal json contents : %w", err)
		}

		return bits, nil
	}

	if d.Base64 != "" {
		bits, err := base64.StdEncoding.DecodeString(d.Base64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 contents : %w", err)
		}

		return bits, nil
	}

	return nil, errors.New("no contents in this attachment")
}

// JSONObject returns the attachment contents as a JSON object.
func (d *AttachmentData) JSONObject() (map[string]interface{}, error) {
	bits, err := d.Fetch()
	if err != nil {
		return nil, err
	}

	obj := map[string]interface{}{}

	if err := json.Unmarshal(bits, &obj); err != nil {
		return nil, fmt.Errorf("attachment is not a JSON object : %w", err)
	}

	return obj, nil
}
