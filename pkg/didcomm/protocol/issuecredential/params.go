/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-issuer-go/pkg/common/errcode"
)

// nolint:gochecknoglobals
var decimalPrice = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// CreateParams are the fields of a new exchange. Attributes is either a JSON object of attribute
// name to value or the JSON text of such an object. Price is a non-negative decimal given as a
// number or a string.
type CreateParams struct {
	SourceID       string      `json:"source_id"`
	CredDefID      string      `json:"cred_def_id"`
	Attributes     interface{} `json:"attributes"`
	CredentialName string      `json:"credential_name"`
	Price          interface{} `json:"price"`
	// PleaseAck asks the holder to acknowledge the issued credential.
	PleaseAck bool `json:"please_ack,omitempty"`
}

// validate checks the fields in order and returns the canonical attributes and price.
func (p *CreateParams) validate(op string) (map[string]string, string, error) {
	switch {
	case p.SourceID == "":
		return nil, "", missingField(op, "source_id")
	case p.CredDefID == "":
		return nil, "", missingField(op, "cred_def_id")
	case isEmptyValue(p.Attributes):
		return nil, "", missingField(op, "attributes")
	case p.CredentialName == "":
		return nil, "", missingField(op, "credential_name")
	case isEmptyValue(p.Price):
		return nil, "", missingField(op, "price")
	}

	attrs, err := DecodeAttributes(p.Attributes)
	if err != nil {
		return nil, "", errcode.New(errcode.InvalidJSON, op, fmt.Errorf("attributes: %w", err))
	}

	price, err := CanonicalPrice(p.Price)
	if err != nil {
		return nil, "", errcode.New(errcode.InvalidOption, op, fmt.Errorf("price: %w", err))
	}

	return attrs, price, nil
}

func missingField(op, name string) error {
	return errcode.Newf(errcode.InvalidOption, op, "missing field %s", name)
}

func isEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case json.RawMessage:
		return len(val) == 0 || string(val) == "null"
	default:
		return false
	}
}

// DecodeAttributes decodes structured attribute data into a non-empty map of attribute name to value.
// Scalar values are converted to strings, nested values are rejected.
func DecodeAttributes(v interface{}) (map[string]string, error) {
	switch raw := v.(type) {
	case string:
		var parsed interface{}
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, fmt.Errorf("invalid structured data: %w", err)
		}

		v = parsed
	case json.RawMessage:
		var parsed interface{}
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("invalid structured data: %w", err)
		}

		v = parsed
	}

	if _, ok := v.(string); ok {
		return nil, errors.New("invalid structured data: attributes must be an object")
	}

	attrs := map[string]string{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &attrs,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(v); err != nil {
		return nil, fmt.Errorf("invalid structured data: %w", err)
	}

	if len(attrs) == 0 {
		return nil, errors.New("invalid structured data: no attributes")
	}

	for name := range attrs {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("invalid structured data: empty attribute name")
		}
	}

	return attrs, nil
}

// CanonicalPrice returns the canonical decimal text of a price.
func CanonicalPrice(v interface{}) (string, error) {
	var text string

	switch p := v.(type) {
	case string:
		text = strings.TrimSpace(p)
	case json.Number:
		text = p.String()
	case float64:
		text = strconv.FormatFloat(p, 'f', -1, 64)
	case float32:
		text = strconv.FormatFloat(float64(p), 'f', -1, 32)
	case int:
		text = strconv.Itoa(p)
	case int64:
		text = strconv.FormatInt(p, 10)
	case uint64:
		text = strconv.FormatUint(p, 10)
	default:
		return "", fmt.Errorf("unsupported price type %T", v)
	}

	if !decimalPrice.MatchString(text) {
		return "", fmt.Errorf("price %q is not a non-negative decimal", text)
	}

	return text, nil
}

// preview returns the credential preview of attrs, ordered by attribute name.
func preview(attrs map[string]string) PreviewCredential {
	names := maps.Keys(attrs)
	slices.Sort(names)

	prev := PreviewCredential{Type: CredentialPreviewMsgType}

	for _, name := range names {
		prev.Attributes = append(prev.Attributes, Attribute{Name: name, Value: attrs[name]})
	}

	return prev
}
