/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
	mocks "github.com/hyperledger/aries-issuer-go/pkg/internal/gomocks/controller/webnotifier"
)

func TestObserver_RegisterStateMsg(t *testing.T) {
	const topic = "issue-credential_states"

	t.Run("forwards state messages", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		msg, err := service.NewDIDCommMsgMap(map[string]interface{}{"@id": "1", "@type": "offer"})
		require.NoError(t, err)

		payload := service.StateMsg{
			ProtocolName: "issue-credential",
			Type:         service.PostState,
			StateID:      "offer-sent",
			Msg:          msg,
			Properties:   properties{"handle": 1},
		}

		src, err := json.Marshal(StateMsg{
			ProtocolName: payload.ProtocolName,
			StateID:      payload.StateID,
			Type:         "post",
			Message:      payload.Msg.Clone(),
			Properties:   payload.Properties.All(),
		})
		require.NoError(t, err)

		states := make(chan service.StateMsg, 1)
		states <- payload

		done := make(chan struct{})
		notifier := mocks.NewMockNotifier(ctrl)
		notifier.EXPECT().Notify(topic, src).Do(func(string, []byte) {
			close(done)
		})

		NewObserver(notifier).RegisterStateMsg(topic, states)

		<-done
	})

	t.Run("notify error does not stop forwarding", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		states := make(chan service.StateMsg, 2)
		states <- service.StateMsg{ProtocolName: "issue-credential", StateID: "initialized"}
		states <- service.StateMsg{ProtocolName: "issue-credential", StateID: "offer-sent"}

		done := make(chan struct{})
		notifier := mocks.NewMockNotifier(ctrl)
		gomock.InOrder(
			notifier.EXPECT().Notify(topic, gomock.Any()).Return(errors.New("unreachable")),
			notifier.EXPECT().Notify(topic, gomock.Any()).DoAndReturn(func(_ string, src []byte) error {
				require.Contains(t, string(src), `"stateID":"offer-sent"`)
				require.NotContains(t, string(src), `"message"`)
				close(done)

				return nil
			}),
		)

		NewObserver(notifier).RegisterStateMsg(topic, states)

		<-done
	})
}

type properties map[string]interface{}

func (p properties) All() map[string]interface{} {
	return p
}
