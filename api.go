// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yinyancute2022/dshp/internal/version"
	"github.com/yinyancute2022/dshp/log"
	"github.com/yinyancute2022/dshp/middleware"
)

type server interface {
	Addr() string
}

// APIHandler serves API endpoints.
// It provides health and readiness endpoints, prometheus metrics, and pprof debug endpoints.
type APIHandler struct {
	mux    *http.ServeMux
	server server
	config string
}

func NewAPIHandler(r prometheus.Gatherer, s server, config string) *APIHandler {
	m := http.NewServeMux()
	a := &APIHandler{
		mux:    m,
		server: s,
		config: config,
	}
	m.HandleFunc("/metrics", promhttp.HandlerFor(r, promhttp.HandlerOpts{}).ServeHTTP)
	m.HandleFunc("/healthz", a.healthz)
	m.HandleFunc("/readyz", a.readyz)
	m.HandleFunc("/configz", a.configz)
	m.HandleFunc("/version", a.version)

	m.HandleFunc("/debug/pprof/", pprof.Index)
	m.HandleFunc("/debug/pprof/profile", pprof.Profile)
	m.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	m.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return a
}

func (h *APIHandler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *APIHandler) readyz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if h.server != nil && h.server.Addr() != "" {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Service Unavailable"))
	}
}

func (h *APIHandler) configz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.config))
}

func (h *APIHandler) version(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	v := struct {
		Version string `json:"version"`
		Time    string `json:"time"`
		Commit  string `json:"commit"`
	}{
		Version: version.Version,
		Time:    version.Time,
		Commit:  version.Commit,
	}
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best effort
}

func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// APIServer hosts an APIHandler on its own listener, next to the proxy.
type APIServer struct {
	handler  http.Handler
	log      log.Logger
	listener net.Listener
}

func NewAPIServer(addr string, h *APIHandler, r prometheus.Registerer, log log.Logger) (*APIServer, error) {
	l, err := Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	log.Infof("API server listen address=%s", l.Addr())

	return &APIServer{
		handler:  middleware.NewPrometheus(r, "dshp_api").Wrap(h),
		log:      log,
		listener: l,
	}, nil
}

func (s *APIServer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler: s.handler,
	}

	donec := make(chan struct{})
	go func() {
		defer close(donec)
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			s.log.Errorf("failed to shutdown API server error=%s", err)
		}
	}()

	err := srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
		err = nil
	}

	cancel()
	<-donec

	return err
}

// Addr returns the address the server is listening on.
func (s *APIServer) Addr() string {
	return s.listener.Addr().String()
}

func (s *APIServer) Close() error {
	return s.listener.Close()
}
