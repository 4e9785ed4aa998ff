/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package webnotifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultNotifyRetries  = 2
	defaultNotifyInterval = 500 * time.Millisecond
)

// HTTPNotifierOpt configures the HTTPNotifier.
type HTTPNotifierOpt func(n *HTTPNotifier)

// WithHTTPClient sets the client used to post notifications.
func WithHTTPClient(client *http.Client) HTTPNotifierOpt {
	return func(n *HTTPNotifier) {
		n.client = client
	}
}

// WithRetry sets how many times a notification is re-sent to a subscriber that failed with a
// transport error or a 5xx status, and the pause between attempts.
func WithRetry(retries uint64, interval time.Duration) HTTPNotifierOpt {
	return func(n *HTTPNotifier) {
		n.retries = retries
		n.interval = interval
	}
}

// HTTPNotifier is a webhook dispatcher capable of notifying multiple subscribers via HTTP.
type HTTPNotifier struct {
	urls     []string
	client   *http.Client
	retries  uint64
	interval time.Duration
}

// NewHTTPNotifier returns a new instance of an HTTPNotifier.
func NewHTTPNotifier(webhookURLs []string, opts ...HTTPNotifierOpt) *HTTPNotifier {
	n := &HTTPNotifier{
		urls:     webhookURLs,
		client:   http.DefaultClient,
		retries:  defaultNotifyRetries,
		interval: defaultNotifyInterval,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Notify posts the state message wrapped in a topic message to every subscriber URL.
// Failures of all subscribers are combined into the returned error.
func (n *HTTPNotifier) Notify(topic string, message []byte) error {
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

	for _, webhookURL := range n.urls {
		err := n.notifyWithRetry(webhookURL, topicMsg)
		allErrs = appendError(allErrs, err)
	}

	return allErrs
}

func (n *HTTPNotifier) notifyWithRetry(destination string, message []byte) error {
	return backoff.RetryNotify(
		func() error {
			return n.notifyWH(destination, message)
		},
		backoff.WithMaxRetries(backoff.NewConstantBackOff(n.interval), n.retries),
		func(err error, d time.Duration) {
			logger.Warnf("notification to %s failed, retrying in %s : %s", destination, d, err)
		},
	)
}

// notifyWH posts a single notification. Errors that another attempt cannot fix are permanent.
func (n *HTTPNotifier) notifyWH(destination string, message []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), notificationSendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, destination,
		bytes.NewBuffer(message))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create new http post request for %s: %w", destination, err))
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post notification to %s: %w", destination, err)
	}

	defer closeResponse(resp.Body)

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		logger.Debugf("notification sent to %s", destination)
		return nil
	}

	err = fmt.Errorf("notification was sent to %s, but %s was received", destination, resp.Status)

	if resp.StatusCode < http.StatusInternalServerError {
		return backoff.Permanent(err)
	}

	return err
}

func closeResponse(c io.Closer) {
	err := c.Close()
	if err != nil {
		logger.Errorf("Failed to close response body")
	}
}
