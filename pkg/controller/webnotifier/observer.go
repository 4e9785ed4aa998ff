/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"encoding/json"

	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
)

// StateMsg is the notification payload of a state change.
type StateMsg struct {
	ProtocolName string                 `json:"protocolName"`
	Message      service.DIDCommMsgMap  `json:"message,omitempty"`
	StateID      string                 `json:"stateID"`
	Type         string                 `json:"type"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// Observer forwards state events to a notifier.
type Observer struct {
	notifier Notifier
}

// NewObserver returns a new observer.
func NewObserver(notifier Notifier) *Observer {
	return &Observer{notifier: notifier}
}

// RegisterStateMsg forwards every message received on states under topic until states is closed.
func (o *Observer) RegisterStateMsg(topic string, states <-chan service.StateMsg) {
	go func() {
		for state := range states {
			msg := StateMsg{
				ProtocolName: state.ProtocolName,
				StateID:      state.StateID,
				Type:         state.Type.String(),
			}

			if state.Msg != nil {
				msg.Message = state.Msg.Clone()
			}

			if state.Properties != nil {
				msg.Properties = state.Properties.All()
			}

			o.notify(topic, msg)
		}
	}()
}

func (o *Observer) notify(topic string, msg interface{}) {
	src, err := json.Marshal(msg)
	if err != nil {
		logger.Errorf("[%s] json marshal: %v", topic, err)
		return
	}

	if err := o.notifier.Notify(topic, src); err != nil {
		logger.Warnf("[%s] notify: %v", topic, err)
	}
}
