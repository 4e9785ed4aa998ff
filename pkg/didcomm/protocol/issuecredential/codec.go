/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SerializationVersion is the version of the serialized exchange format.
const SerializationVersion = "1.0"

// Record is the serializable data of an exchange.
type Record struct {
	SourceID       string                 `json:"source_id"`
	CredDefID      string                 `json:"cred_def_id"`
	CredentialName string                 `json:"credential_name"`
	Attributes     map[string]string      `json:"credential_attributes"`
	Price          string                 `json:"price"`
	State          State                  `json:"state"`
	ThreadID       string                 `json:"thread_id,omitempty"`
	ConnectionID   string                 `json:"connection_id,omitempty"`
	PleaseAck      bool                   `json:"please_ack"`
	Offer          map[string]interface{} `json:"offer,omitempty"`
	Request        map[string]interface{} `json:"request,omitempty"`
	ProblemReport  string                 `json:"problem_report,omitempty"`
}

type envelope struct {
	Version string  `json:"version"`
	Data    *Record `json:"data"`
}

// clone returns a deep enough copy for callers: maps are copied, nested offer/request values are shared.
func (r *Record) clone() *Record {
	c := *r

	c.Attributes = make(map[string]string, len(r.Attributes))
	for k, v := range r.Attributes {
		c.Attributes[k] = v
	}

	c.Offer = copyObject(r.Offer)
	c.Request = copyObject(r.Request)

	return &c
}

func copyObject(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}

	c := make(map[string]interface{}, len(m))
	for k, v := range m {
		c[k] = v
	}

	return c
}

// encodeRecord returns the canonical text of r.
func encodeRecord(r *Record) (string, error) {
	raw, err := json.Marshal(&envelope{Version: SerializationVersion, Data: r})
	if err != nil {
		return "", fmt.Errorf("marshal exchange: %w", err)
	}

	return string(raw), nil
}

// decodeRecord parses and validates canonical text. Numbers inside offer and request are kept verbatim.
func decodeRecord(text string) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	env := &envelope{}

	if err := dec.Decode(env); err != nil {
		return nil, fmt.Errorf("unmarshal exchange: %w", err)
	}

	if dec.More() {
		return nil, errors.New("unexpected data after exchange")
	}

	if env.Version != SerializationVersion {
		return nil, fmt.Errorf("unsupported version %q", env.Version)
	}

	r := env.Data
	if r == nil {
		return nil, errors.New("missing data")
	}

	switch {
	case r.SourceID == "":
		return nil, errors.New("missing source_id")
	case r.CredDefID == "":
		return nil, errors.New("missing cred_def_id")
	case r.CredentialName == "":
		return nil, errors.New("missing credential_name")
	case len(r.Attributes) == 0:
		return nil, errors.New("missing credential_attributes")
	}

	if _, err := CanonicalPrice(r.Price); err != nil {
		return nil, err
	}

	if _, err := stateFromValue(r.State); err != nil {
		return nil, err
	}

	if r.State == None {
		return nil, errors.New("exchange state none cannot be restored")
	}

	if r.State != Initialized && r.ThreadID == "" {
		return nil, fmt.Errorf("exchange in state %s has no thread", r.State)
	}

	return r, nil
}
