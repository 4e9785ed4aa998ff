/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webhook

import "sync"

// NewMockWebhookNotifier returns a notifier that records the state notifications it receives.
func NewMockWebhookNotifier() *Notifier {
	return &Notifier{}
}

// Notification is a recorded topic message.
type Notification struct {
	Topic   string
	Message []byte
}

// Notifier records notifications and optionally delegates them to NotifyFunc.
type Notifier struct {
	NotifyFunc func(topic string, message []byte) error

	mu       sync.Mutex
	received []Notification
}

// Notify records the message and calls NotifyFunc when set.
func (n *Notifier) Notify(topic string, message []byte) error {
	n.mu.Lock()
	n.received = append(n.received, Notification{Topic: topic, Message: message})
	n.mu.Unlock()

	if n.NotifyFunc != nil {
		return n.NotifyFunc(topic, message)
	}

	return nil
}

// Received returns a copy of the notifications recorded so far.
func (n *Notifier) Received() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]Notification(nil), n.received...)
}
