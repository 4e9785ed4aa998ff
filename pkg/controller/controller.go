/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"fmt"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-issuer-go/pkg/controller/command"
	connectioncmd "github.com/hyperledger/aries-issuer-go/pkg/controller/command/connection"
	issuecredentialcmd "github.com/hyperledger/aries-issuer-go/pkg/controller/command/issuecredential"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/rest"
	connectionrest "github.com/hyperledger/aries-issuer-go/pkg/controller/rest/connection"
	issuecredentialrest "github.com/hyperledger/aries-issuer-go/pkg/controller/rest/issuecredential"
	"github.com/hyperledger/aries-issuer-go/pkg/controller/webnotifier"
	"github.com/hyperledger/aries-issuer-go/pkg/framework/context"
)

var logger = log.New("aries-issuer/controller")

type allOpts struct {
	webhookURLs []string
	notifier    command.Notifier
	timeout     time.Duration
	dialer      connectioncmd.Dialer
}

const wsPath = "/ws"

// Opt represents a controller option.
type Opt func(opts *allOpts)

// WithWebhookURLs is an option for setting up a webhook dispatcher which will notify clients of events.
func WithWebhookURLs(webhookURLs ...string) Opt {
	return func(opts *allOpts) {
		opts.webhookURLs = webhookURLs
	}
}

// WithNotifier is an option for setting up a notifier which will notify clients of events.
func WithNotifier(notifier command.Notifier) Opt {
	return func(opts *allOpts) {
		opts.notifier = notifier
	}
}

// WithCommandTimeout bounds the time a command waits for an exchange operation.
func WithCommandTimeout(timeout time.Duration) Opt {
	return func(opts *allOpts) {
		opts.timeout = timeout
	}
}

// WithDialer replaces the websocket dialer used to open connections.
func WithDialer(dialer connectioncmd.Dialer) Opt {
	return func(opts *allOpts) {
		opts.dialer = dialer
	}
}

func (o *allOpts) issueCredentialOptions() []issuecredentialcmd.Option {
	if o.timeout <= 0 {
		return nil
	}

	return []issuecredentialcmd.Option{issuecredentialcmd.WithTimeout(o.timeout)}
}

func (o *allOpts) connectionOptions() []connectioncmd.Option {
	if o.dialer == nil {
		return nil
	}

	return []connectioncmd.Option{connectioncmd.WithDialer(o.dialer)}
}

func (o *allOpts) getNotifier() command.Notifier {
	if o.notifier == nil {
		o.notifier = webnotifier.New(wsPath, o.webhookURLs)
	}

	return o.notifier
}

// GetRESTHandlers returns all REST handlers provided by controller.
func GetRESTHandlers(ctx *context.Provider, opts ...Opt) ([]rest.Handler, error) {
	restAPIOpts := &allOpts{}
	// Apply options
	for _, opt := range opts {
		opt(restAPIOpts)
	}

	notifier := restAPIOpts.getNotifier()

	// issue credential REST operation
	issuecredentialOp, err := issuecredentialrest.New(ctx, notifier, restAPIOpts.issueCredentialOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create issue-credential rest command : %w", err)
	}

	// connection REST operation
	connectionOp, err := connectionrest.New(ctx, restAPIOpts.connectionOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create connection rest command : %w", err)
	}

	// creat handlers from all operations
	var allHandlers []rest.Handler
	allHandlers = append(allHandlers, issuecredentialOp.GetRESTHandlers()...)
	allHandlers = append(allHandlers, connectionOp.GetRESTHandlers()...)

	nhp, ok := notifier.(handlerProvider)
	if ok {
		allHandlers = append(allHandlers, nhp.GetRESTHandlers()...)
	}

	for _, h := range allHandlers {
		logger.Debugf("rest handler: %s %s", h.Method(), h.Path())
	}

	return allHandlers, nil
}

type handlerProvider interface {
	GetRESTHandlers() []rest.Handler
}

// GetCommandHandlers returns all command handlers provided by controller.
func GetCommandHandlers(ctx *context.Provider, opts ...Opt) ([]command.Handler, error) {
	cmdOpts := &allOpts{}
	// Apply options
	for _, opt := range opts {
		opt(cmdOpts)
	}

	// issue credential command operation
	issuecredentialCmd, err := issuecredentialcmd.New(ctx, cmdOpts.getNotifier(), cmdOpts.issueCredentialOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create issue-credential command : %w", err)
	}

	// connection command operation
	connectionCmd, err := connectioncmd.New(ctx, cmdOpts.connectionOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create connection command : %w", err)
	}

	var allHandlers []command.Handler
	allHandlers = append(allHandlers, issuecredentialCmd.GetHandlers()...)
	allHandlers = append(allHandlers, connectionCmd.GetHandlers()...)

	return allHandlers, nil
}
