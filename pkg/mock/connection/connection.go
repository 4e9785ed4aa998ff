/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyperledger/aries-issuer-go/pkg/connection"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
)

// MockConnection is an in-memory connection. Inbound messages are queued with Inject.
type MockConnection struct {
	mu          sync.Mutex
	id          string
	established bool
	sent        []service.DIDCommMsgMap
	inbound     map[string][]service.DIDCommMsgMap
	SendErr     error
	PollErr     error
	// Reply, if set, is called for every sent message and its result is queued as inbound.
	Reply  func(msg service.DIDCommMsgMap) service.DIDCommMsgMap
	closed bool
}

// New returns an established mock connection.
func New(id string) *MockConnection {
	return &MockConnection{
		id:          id,
		established: true,
		inbound:     map[string][]service.DIDCommMsgMap{},
	}
}

// ID returns the connection ID.
func (c *MockConnection) ID() string {
	return c.id
}

// IsEstablished reports the established flag.
func (c *MockConnection) IsEstablished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.established && !c.closed
}

// SetEstablished sets the established flag.
func (c *MockConnection) SetEstablished(v bool) {
	c.mu.Lock()
	c.established = v
	c.mu.Unlock()
}

// Send records msg.
func (c *MockConnection) Send(_ context.Context, msg service.DIDCommMsgMap) error {
	if c.SendErr != nil {
		return c.SendErr
	}

	c.mu.Lock()
	c.sent = append(c.sent, msg)
	reply := c.Reply
	c.mu.Unlock()

	if reply != nil {
		if r := reply(msg); r != nil {
			c.Inject(r)
		}
	}

	return nil
}

// Poll drains the messages queued for threadID.
func (c *MockConnection) Poll(_ context.Context, threadID string) ([]service.DIDCommMsgMap, error) {
	if c.PollErr != nil {
		return nil, c.PollErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := c.inbound[threadID]
	delete(c.inbound, threadID)

	return msgs, nil
}

// Inject queues an inbound message under its thread ID.
func (c *MockConnection) Inject(msg service.DIDCommMsgMap) {
	thID, err := msg.ThreadID()
	if err != nil {
		thID = ""
	}

	c.mu.Lock()
	c.inbound[thID] = append(c.inbound[thID], msg)
	c.mu.Unlock()
}

// Sent returns the messages sent so far.
func (c *MockConnection) Sent() []service.DIDCommMsgMap {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]service.DIDCommMsgMap(nil), c.sent...)
}

// Close marks the connection as not established.
func (c *MockConnection) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	return nil
}

// Resolver resolves connections from a map.
type Resolver map[string]*MockConnection

// Resolve implements connection.Resolver.
func (r Resolver) Resolve(id string) (connection.Connection, error) {
	c, ok := r[id]
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", id, connection.ErrNotFound)
	}

	return c, nil
}
