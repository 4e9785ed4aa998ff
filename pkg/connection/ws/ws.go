/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ws carries DIDComm messages over a websocket.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/pkg/errors"
	"nhooyr.io/websocket"

	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
)

var logger = log.New("aries-issuer/connection/ws")

const (
	webSocketScheme = "ws"

	defaultMaxPerThread = 32
	defaultMaxThreads   = 1024
)

// Opt configures a Connection.
type Opt func(c *Connection)

// WithQueueLimits bounds the inbound messages kept until polled: at most perThread messages for
// each of at most threads threads. Messages beyond the limits are dropped.
func WithQueueLimits(perThread, threads int) Opt {
	return func(c *Connection) {
		c.maxPerThread = perThread
		c.maxThreads = threads
	}
}

// Connection is a connection.Connection over a websocket. Inbound messages are read in the background
// and kept per thread until polled.
type Connection struct {
	id     string
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}

	mu           sync.Mutex
	open         bool
	inbound      map[string][]service.DIDCommMsgMap
	maxPerThread int
	maxThreads   int
}

// Accept checks for the url scheme.
func Accept(url string) bool {
	return strings.HasPrefix(url, webSocketScheme)
}

// Dial opens a websocket connection to url.
func Dial(ctx context.Context, id, url string, opts ...Opt) (*Connection, error) {
	if url == "" {
		return nil, errors.New("url is mandatory")
	}

	conn, _, err := websocket.Dial(ctx, url, nil) // nolint: bodyclose
	if err != nil {
		return nil, errors.Wrap(err, "websocket client")
	}

	return newConnection(id, conn, opts...), nil
}

// Upgrade accepts a websocket handshake and returns the server side of the connection.
func Upgrade(w http.ResponseWriter, r *http.Request, id string, opts ...Opt) (*Connection, error) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return nil, errors.Wrap(err, "websocket accept")
	}

	return newConnection(id, conn, opts...), nil
}

func newConnection(id string, conn *websocket.Conn, opts ...Opt) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Connection{
		id:      id,
		conn:    conn,
		cancel:  cancel,
		done:    make(chan struct{}),
		open:    true,
		inbound: map[string][]service.DIDCommMsgMap{},

		maxPerThread: defaultMaxPerThread,
		maxThreads:   defaultMaxThreads,
	}

	for _, opt := range opts {
		opt(c)
	}

	go c.listen(ctx)

	return c
}

func (c *Connection) listen(ctx context.Context) {
	defer close(c.done)

	for {
		messageType, message, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && ctx.Err() == nil {
				logger.Errorf("connection %s: error reading message: %v", c.id, err)
			}

			c.setClosed()

			return
		}

		if messageType != websocket.MessageText {
			logger.Warnf("connection %s: ignoring binary message", c.id)

			continue
		}

		msg, err := service.ParseDIDCommMsgMap(message)
		if err != nil {
			logger.Errorf("connection %s: %v", c.id, err)

			continue
		}

		thID, err := msg.ThreadID()
		if err != nil {
			logger.Warnf("connection %s: dropping message without thread: %v", c.id, err)

			continue
		}

		if !c.enqueue(thID, msg) {
			logger.Warnf("connection %s: inbound queue full, dropping message %s on thread %s", c.id, msg.ID(), thID)
		}
	}
}

func (c *Connection) enqueue(thID string, msg service.DIDCommMsgMap) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue, known := c.inbound[thID]
	if !known && len(c.inbound) >= c.maxThreads {
		return false
	}

	if len(queue) >= c.maxPerThread {
		return false
	}

	c.inbound[thID] = append(queue, msg)

	return true
}

func (c *Connection) setClosed() {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
}

// ID returns the connection ID.
func (c *Connection) ID() string {
	return c.id
}

// IsEstablished reports whether the websocket is open.
func (c *Connection) IsEstablished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.open
}

// Send writes msg as a text frame.
func (c *Connection) Send(ctx context.Context, msg service.DIDCommMsgMap) error {
	if !c.IsEstablished() {
		return errors.Errorf("connection %s is closed", c.id)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}

	if err := c.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return errors.Wrap(err, "websocket write message")
	}

	return nil
}

// Poll returns and forgets the messages received on threadID.
func (c *Connection) Poll(_ context.Context, threadID string) ([]service.DIDCommMsgMap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := c.inbound[threadID]
	delete(c.inbound, threadID)

	return msgs, nil
}

// Close closes the websocket and waits for the reader to stop.
func (c *Connection) Close() error {
	c.setClosed()

	err := c.conn.Close(websocket.StatusNormalClosure, "closing the connection")
	if err != nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		logger.Warnf("connection %s: close: %v", c.id, err)
	}

	c.cancel()
	<-c.done

	return nil
}
