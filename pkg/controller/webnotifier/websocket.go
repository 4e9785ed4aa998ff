/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"nhooyr.io/websocket"

	"github.com/hyperledger/aries-issuer-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/rest"
)

// TopicQueryParam selects the topics a websocket subscriber receives. It may be repeated;
// without it every topic is delivered.
const TopicQueryParam = "topic"

// subscriber is one websocket client and the topics it asked for.
type subscriber struct {
	conn   *websocket.Conn
	topics map[string]struct{}
}

func (s *subscriber) wants(topic string) bool {
	if len(s.topics) == 0 {
		return true
	}

	_, ok := s.topics[topic]

	return ok
}

// WSNotifier pushes exchange state notifications to websocket subscribers.
type WSNotifier struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	handlers    []rest.Handler
}

// NewWSNotifier returns a notifier accepting subscribers on path.
func NewWSNotifier(path string) *WSNotifier {
	n := &WSNotifier{subscribers: map[*subscriber]struct{}{}}

	n.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(path, http.MethodGet, n.subscribe),
	}

	return n
}

// Notify sends the topic message to every subscriber of topic. A subscriber that cannot be written
// to is dropped and its error is part of the returned error.
func (n *WSNotifier) Notify(topic string, message []byte) error {
	if topic == "" {
		return fmt.Errorf(emptyTopicErrMsg)
	}

	if len(message) == 0 {
		return fmt.Errorf(emptyMessageErrMsg)
	}

	topicMsg, err := PrepareTopicMessage(topic, message)
	if err != nil {
		return fmt.Errorf(failedToCreateErrMsg, err)
	}

	var allErrs error

	for _, s := range n.subscribersOf(topic) {
		ctx, cancel := context.WithTimeout(context.Background(), notificationSendTimeout)
		err := s.conn.Write(ctx, websocket.MessageText, topicMsg)

		cancel()

		if err != nil {
			logger.Infof("dropping websocket subscriber of topic [%s]: %v", topic, err)

			n.remove(s)
			allErrs = appendError(allErrs, err)
		}
	}

	return allErrs
}

func (n *WSNotifier) subscribersOf(topic string) []*subscriber {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var subs []*subscriber

	for s := range n.subscribers {
		if s.wants(topic) {
			subs = append(subs, s)
		}
	}

	return subs
}

// subscribe upgrades the request and holds the subscriber until it goes away. Subscribers only
// listen, a data frame from them ends the subscription.
func (n *WSNotifier) subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		logger.Infof("failed to upgrade the websocket notification connection: %v", err)

		return
	}

	s := &subscriber{conn: conn, topics: map[string]struct{}{}}
	for _, topic := range r.URL.Query()[TopicQueryParam] {
		s.topics[topic] = struct{}{}
	}

	n.mu.Lock()
	n.subscribers[s] = struct{}{}
	n.mu.Unlock()

	logger.Debugf("websocket subscriber connected, topics %v", r.URL.Query()[TopicQueryParam])

	<-conn.CloseRead(context.Background()).Done()

	n.remove(s)
}

func (n *WSNotifier) remove(s *subscriber) {
	n.mu.Lock()
	_, ok := n.subscribers[s]
	delete(n.subscribers, s)
	n.mu.Unlock()

	if !ok {
		return
	}

	if err := s.conn.Close(websocket.StatusNormalClosure, ""); err != nil {
		logger.Debugf("closing websocket subscriber: %v", err)
	}

	logger.Debugf("websocket subscriber dropped")
}

func (n *WSNotifier) count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return len(n.subscribers)
}

// GetRESTHandlers returns the websocket subscription handler.
func (n *WSNotifier) GetRESTHandlers() []rest.Handler {
	return n.handlers
}
