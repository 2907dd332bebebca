/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics exposes an optional Prometheus /metrics endpoint a
// client.Client can be wired to: one counter per request opcode, a
// latency histogram, and a timeout counter. Passing a nil *Collector
// anywhere in this package's API is valid and simply skips instrumentation.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Collector holds the series a request/response client needs: how many
// requests went out per opcode, how long each took, and how many timed
// out waiting for a reply.
type Collector struct {
	registry *prometheus.Registry

	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	Timeouts prometheus.Counter
}

// processRegistry is shared by every Collector in the process, so two
// collectors built under the same namespace resolve to the same series.
var processRegistry = prometheus.NewRegistry()

// NewCollector builds a Collector under the given metric namespace and
// registers its series, reusing an already-registered collector of the
// same name if one exists (the same defensive pattern the teacher's
// ad hoc scrape-and-register exporter uses).
func NewCollector(namespace string) *Collector {
	c := &Collector{registry: processRegistry}

	c.Requests = register(c.registry, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "XCMP requests sent, labeled by opcode.",
	}, []string{"opcode"})).(*prometheus.CounterVec)

	c.Latency = register(c.registry, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_latency_seconds",
		Help:      "XCMP request/response round-trip latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"opcode"})).(*prometheus.HistogramVec)

	c.Timeouts = register(c.registry, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_timeouts_total",
		Help:      "XCMP requests that timed out waiting for a response.",
	})).(prometheus.Counter)

	return c
}

// register registers coll, or returns the already-registered collector of
// the same name if one was registered earlier (NewCollector may be called
// more than once per process, e.g. from tests).
func register(registry *prometheus.Registry, coll prometheus.Collector) prometheus.Collector {
	if err := registry.Register(coll); err != nil {
		var are *prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		log.WithError(err).Warn("metrics: failed to register collector")
	}
	return coll
}

// ObserveRequest records one request/response round trip for opcode. The
// timeout counter is incremented when isTimeout is true; err itself is not
// inspected.
func (c *Collector) ObserveRequest(opcode string, took time.Duration, err error, isTimeout bool) {
	if c == nil {
		return
	}
	c.Requests.WithLabelValues(opcode).Inc()
	c.Latency.WithLabelValues(opcode).Observe(took.Seconds())
	if isTimeout {
		c.Timeouts.Inc()
	}
}

// Serve blocks, serving /metrics on the given port.
func (c *Collector) Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	addr := fmt.Sprintf(":%d", port)
	log.WithField("addr", addr).Info("metrics: serving /metrics")
	return http.ListenAndServe(addr, mux)
}
