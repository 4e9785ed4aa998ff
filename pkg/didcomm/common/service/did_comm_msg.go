/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

const (
	jsonID             = "@id"
	jsonType           = "@type"
	jsonThread         = "~thread"
	jsonThreadID       = "thid"
	jsonParentThreadID = "pthid"
	jsonMetadata       = "_internal_metadata"
)

// ErrNilChannel is returned when a nil channel is registered for events.
var ErrNilChannel = errors.New("channel is nil")

// ErrInvalidMessage is returned when a message carries a thread ID but no message ID.
var ErrInvalidMessage = errors.New("invalid message")

// ErrThreadIDNotFound is returned when neither a thread ID nor a message ID is present.
var ErrThreadIDNotFound = errors.New("threadID not found")

// DIDCommMsgMap is a DIDComm message in its generic JSON object form.
type DIDCommMsgMap map[string]interface{}

// ParseDIDCommMsgMap parses a JSON encoded DIDComm message.
func ParseDIDCommMsgMap(payload []byte) (DIDCommMsgMap, error) {
	var msg DIDCommMsgMap

	err := json.Unmarshal(payload, &msg)
	if err != nil {
		return nil, fmt.Errorf("invalid payload data format: %w", err)
	}

	return msg, nil
}

// NewDIDCommMsgMap converts a message model to DIDCommMsgMap using its JSON tags.
func NewDIDCommMsgMap(v interface{}) (DIDCommMsgMap, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	return ParseDIDCommMsgMap(raw)
}

// ID returns the message @id.
func (m DIDCommMsgMap) ID() string {
	if m == nil {
		return ""
	}

	res, _ := m[jsonID].(string) // nolint: errcheck

	return res
}

// Type returns the message @type.
func (m DIDCommMsgMap) Type() string {
	if m == nil {
		return ""
	}

	res, _ := m[jsonType].(string) // nolint: errcheck

	return res
}

// ThreadID returns ~thread.thid, falling back to @id for the first message of a thread.
func (m DIDCommMsgMap) ThreadID() (string, error) {
	if m == nil {
		return "", ErrInvalidMessage
	}

	thID := m.threadValue(jsonThreadID)
	msgID := m.ID()

	if thID != "" && msgID == "" {
		return "", ErrInvalidMessage
	}

	if thID != "" {
		return thID, nil
	}

	if msgID != "" {
		return msgID, nil
	}

	return "", ErrThreadIDNotFound
}

// ParentThreadID returns ~thread.pthid.
func (m DIDCommMsgMap) ParentThreadID() string {
	return m.threadValue(jsonParentThreadID)
}

func (m DIDCommMsgMap) threadValue(key string) string {
	if m == nil || m[jsonThread] == nil {
		return ""
	}

	if thread, ok := m[jsonThread].(map[string]interface{}); ok && thread != nil {
		if v, ok := thread[key].(string); ok {
			return v
		}
	}

	return ""
}

// SetThread sets ~thread.thid and, if given, ~thread.pthid.
func (m DIDCommMsgMap) SetThread(thID, pthID string) {
	if m == nil || thID == "" {
		return
	}

	thread := map[string]interface{}{jsonThreadID: thID}
	if pthID != "" {
		thread[jsonParentThreadID] = pthID
	}

	m[jsonThread] = thread
}

// Metadata returns the internal metadata of the message.
func (m DIDCommMsgMap) Metadata() map[string]interface{} {
	if m[jsonMetadata] == nil {
		return map[string]interface{}{}
	}

	metadata, ok := m[jsonMetadata].(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}

	return metadata
}

// Clone returns a shallow copy of the message.
func (m DIDCommMsgMap) Clone() DIDCommMsgMap {
	if m == nil {
		return nil
	}

	msg := DIDCommMsgMap{}
	for k, v := range m {
		msg[k] = v
	}

	return msg
}

// Decode converts the message into the given model, matching keys to JSON tags.
func (m DIDCommMsgMap) Decode(v interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			base64HookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           v,
		TagName:          "json",
	})
	if err != nil {
		return err
	}

	return decoder.Decode(m)
}

// base64HookFunc decodes JSON strings into byte slices the way encoding/json does.
func base64HookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf([]byte(nil)) {
			return data, nil
		}

		return base64.StdEncoding.DecodeString(data.(string)) // nolint: forcetypeassert
	}
}
