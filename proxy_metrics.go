// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDurationObjectives = map[float64]float64{
	0.5:  0.01,
	0.9:  0.01,
	0.99: 0.001,
}

type proxyMetrics struct {
	errors          *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.SummaryVec
	tunnelsActive   prometheus.Gauge
	tunnelDuration  prometheus.Summary
}

func newProxyMetrics(r prometheus.Registerer, namespace string) *proxyMetrics {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	return &proxyMetrics{
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_errors_total",
			Help:      "Number of proxy errors",
		}, []string{"reason"}),
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_requests_total",
			Help:      "Total number of proxy requests processed.",
		}, []string{"code", "method"}),
		requestDuration: f.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  namespace,
			Name:       "proxy_request_duration_seconds",
			Help:       "The proxy request latencies in seconds.",
			Objectives: requestDurationObjectives,
		}, []string{"code", "method"}),
		tunnelsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "proxy_tunnels_active",
			Help:      "Current number of open CONNECT tunnels.",
		}),
		tunnelDuration: f.NewSummary(prometheus.SummaryOpts{
			Namespace:  namespace,
			Name:       "proxy_tunnel_duration_seconds",
			Help:       "The CONNECT tunnel lifetimes in seconds.",
			Objectives: requestDurationObjectives,
		}),
	}
}

func (m *proxyMetrics) error(reason string) {
	m.errors.WithLabelValues(reason).Inc()
}

func (m *proxyMetrics) request(code int, method string, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(strconv.Itoa(code), method).Inc()
	m.requestDuration.WithLabelValues(strconv.Itoa(code), method).Observe(elapsed.Seconds())
}

func (m *proxyMetrics) tunnelOpened() {
	m.tunnelsActive.Inc()
}

func (m *proxyMetrics) tunnelClosed(elapsed time.Duration) {
	m.tunnelsActive.Dec()
	m.tunnelDuration.Observe(elapsed.Seconds())
}
