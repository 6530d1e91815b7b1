// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var objectives = map[float64]float64{
	0.5:  0.01,  // Median (50th percentile) with ±1% error
	0.9:  0.01,  // 90th percentile with ±1% error
	0.99: 0.001, // 99th percentile with ±0.1% error
}

// Prometheus is a middleware that collects metrics about the HTTP requests and responses.
// It partitions the metrics by HTTP status code and HTTP method.
type Prometheus struct {
	requestsInFlight *prometheus.GaugeVec
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.SummaryVec
}

func NewPrometheus(r prometheus.Registerer, namespace string) *Prometheus {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	p := &Prometheus{}

	labels := []string{"method"}
	labelsWithStatus := append([]string{"code"}, labels...)

	p.requestsInFlight = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Current number of HTTP requests being served.",
	}, labels)

	p.requestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests processed.",
	}, labelsWithStatus)

	p.requestDuration = f.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  namespace,
		Name:       "http_request_duration_seconds",
		Help:       "The HTTP request latencies in seconds.",
		Objectives: objectives,
	}, labelsWithStatus)

	return p
}

func (p *Prometheus) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.requestsInFlight.WithLabelValues(r.Method).Inc()

		d := newDelegator(w)

		start := time.Now()
		h.ServeHTTP(d, r)
		elapsed := time.Since(start).Seconds()

		labelsWithStatus := []string{strconv.Itoa(d.Status()), r.Method}

		p.requestsTotal.WithLabelValues(labelsWithStatus...).Inc()
		p.requestDuration.WithLabelValues(labelsWithStatus...).Observe(elapsed)

		p.requestsInFlight.WithLabelValues(r.Method).Dec()
	})
}

// delegator records the status code written to a response.
// It exposes Unwrap so that http.ResponseController can reach the
// underlying writer's optional interfaces (Flusher, Hijacker).
type delegator struct {
	http.ResponseWriter
	status int
}

func newDelegator(w http.ResponseWriter) *delegator {
	return &delegator{ResponseWriter: w}
}

func (d *delegator) WriteHeader(code int) {
	if d.status == 0 {
		d.status = code
	}
	d.ResponseWriter.WriteHeader(code)
}

func (d *delegator) Write(b []byte) (int, error) {
	if d.status == 0 {
		d.status = http.StatusOK
	}
	return d.ResponseWriter.Write(b)
}

func (d *delegator) Unwrap() http.ResponseWriter {
	return d.ResponseWriter
}

func (d *delegator) Status() int {
	if d.status == 0 {
		return http.StatusOK
	}
	return d.status
}
