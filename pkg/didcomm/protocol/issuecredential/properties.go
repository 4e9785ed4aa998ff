/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuecredential

import "github.com/hyperledger/aries-issuer-go/pkg/common/handle"

const (
	handlePropKey       = "handle"
	sourceIDPropKey     = "sourceID"
	threadIDPropKey     = "threadID"
	connectionIDPropKey = "connectionID"
	previousPropKey     = "previousState"
	errorPropKey        = "error"
)

type eventProps struct {
	handle       handle.Handle
	sourceID     string
	threadID     string
	connectionID string
	previous     State
	err          error
}

func newEventProps(h handle.Handle, rec *Record, previous State) *eventProps {
	return &eventProps{
		handle:       h,
		sourceID:     rec.SourceID,
		threadID:     rec.ThreadID,
		connectionID: rec.ConnectionID,
		previous:     previous,
	}
}

// Handle of the exchange.
func (e *eventProps) Handle() handle.Handle {
	return e.handle
}

// SourceID of the exchange.
func (e *eventProps) SourceID() string {
	return e.sourceID
}

// PreviousState of the exchange.
func (e *eventProps) PreviousState() State {
	return e.previous
}

// Err is the failure reported with the transition.
func (e *eventProps) Err() error {
	return e.err
}

// All implements EventProperties interface.
func (e *eventProps) All() map[string]interface{} {
	properties := map[string]interface{}{
		handlePropKey:   e.handle,
		sourceIDPropKey: e.sourceID,
		previousPropKey: e.previous.String(),
	}

	if e.threadID != "" {
		properties[threadIDPropKey] = e.threadID
	}

	if e.connectionID != "" {
		properties[connectionIDPropKey] = e.connectionID
	}

	if e.err != nil {
		properties[errorPropKey] = e.err.Error()
	}

	return properties
}
