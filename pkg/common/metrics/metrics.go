/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package metrics exposes Prometheus metrics of the issuer agent.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hyperledger/aries-issuer-go/pkg/didcomm/common/service"
)

const namespace = "aries_issuer"

var logger = log.New("aries-issuer/metrics")

// Metrics holds the agent collectors.
type Metrics struct {
	transitions  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers the agent collectors with reg. live reports the number of live exchanges.
func New(reg prometheus.Registerer, live func() float64) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "exchange",
				Name:      "transitions_total",
				Help:      "Credential exchange state transitions by protocol and entered state.",
			},
			[]string{"protocol", "state"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}

	collectors := []prometheus.Collector{m.transitions, m.httpRequests, m.httpDuration}

	if live != nil {
		collectors = append(collectors, prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "exchange",
				Name:      "live",
				Help:      "Credential exchanges currently held in the registry.",
			},
			live,
		))
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveTransition counts a transition into state.
func (m *Metrics) ObserveTransition(protocol, state string) {
	m.transitions.WithLabelValues(protocol, state).Inc()
}

// Watch counts the post-state events received on events until ctx ends or events is closed.
func (m *Metrics) Watch(ctx context.Context, events <-chan service.StateMsg) {
	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return
			}

			if msg.Type != service.PostState {
				continue
			}

			m.ObserveTransition(msg.ProtocolName, msg.StateID)
		case <-ctx.Done():
			logger.Debugf("stop watching state events: %v", ctx.Err())

			return
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware records the count and duration of requests by route template.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}

		status := strconv.Itoa(rec.status)
		m.httpRequests.WithLabelValues(r.Method, path, status).Inc()
		m.httpDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}
