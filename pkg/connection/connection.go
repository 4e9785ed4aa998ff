/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package connection describes the secure channels credential exchanges are carried over.
package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-issuer-go/pkg/common/handle"
	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
)

var logger = log.New("aries-issuer/connection")

// ErrNotFound is returned when a connection cannot be resolved.
var ErrNotFound = errors.New("connection not found")

// Connection is an established channel to a holder.
type Connection interface {
	// ID is a stable identifier of the connection, kept in serialized exchanges.
	ID() string
	// IsEstablished reports whether messages can be exchanged.
	IsEstablished() bool
	// Send delivers msg to the holder.
	Send(ctx context.Context, msg service.DIDCommMsgMap) error
	// Poll returns and removes the messages received for the given thread.
	Poll(ctx context.Context, threadID string) ([]service.DIDCommMsgMap, error)
}

// Resolver finds a connection by its ID.
type Resolver interface {
	Resolve(id string) (Connection, error)
}

// Registry is the handle table of open connections.
type Registry struct {
	conns *handle.Registry[Connection]
}

// NewRegistry returns an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{conns: handle.NewRegistry[Connection]("connection")}
}

// Add registers conn and returns its handle.
func (r *Registry) Add(conn Connection) handle.Handle {
	h := r.conns.Add(conn)

	logger.Debugf("connection %s registered with handle %d", conn.ID(), h)

	return h
}

// Get returns the connection registered under h.
func (r *Registry) Get(h handle.Handle) (Connection, error) {
	return r.conns.Get(h)
}

// Remove unregisters h. Connections implementing Close are closed.
func (r *Registry) Remove(h handle.Handle) error {
	conn, err := r.conns.Remove(h)
	if err != nil {
		return err
	}

	if c, ok := conn.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close connection %s: %w", conn.ID(), err)
		}
	}

	return nil
}

// Handles returns the registered handles.
func (r *Registry) Handles() []handle.Handle {
	return r.conns.Handles()
}

// Resolve implements Resolver.
func (r *Registry) Resolve(id string) (Connection, error) {
	_, conn, ok := r.conns.Find(func(c Connection) bool { return c.ID() == id })
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", id, ErrNotFound)
	}

	return conn, nil
}
