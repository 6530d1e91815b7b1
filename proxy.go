// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/textproto"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/yinyancute2022/dshp/log"
	"github.com/yinyancute2022/dshp/middleware"
)

type ProxyConfig struct {
	// Addr is the TCP address the proxy listens on.
	Addr string
	// BasicAuth is the proxy credential pair.
	// If nil, all requests bypass authentication.
	BasicAuth *Credential
	// ConnectTimeout limits dialing CONNECT targets.
	ConnectTimeout    time.Duration
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration

	PromNamespace string
	PromRegistry  prometheus.Registerer
}

func DefaultProxyConfig() *ProxyConfig {
	return &ProxyConfig{
		Addr:              ":8080",
		ConnectTimeout:    30 * time.Second,
		ReadHeaderTimeout: 1 * time.Minute,
		IdleTimeout:       1 * time.Hour,
	}
}

func (c *ProxyConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("addr: %w", err)
	}
	if c.BasicAuth != nil {
		if err := c.BasicAuth.Validate(); err != nil {
			return fmt.Errorf("basic_auth: %w", err)
		}
	}
	return nil
}

// Proxy is a forward HTTP proxy.
// CONNECT requests are tunneled, everything else is forwarded to the
// target named by the request URI.
type Proxy struct {
	config    ProxyConfig
	transport http.RoundTripper
	log       log.Logger
	metrics   *proxyMetrics
	auth      *middleware.BasicAuth
	dialer    *Dialer
	idSeq     atomic.Uint64

	listener net.Listener
}

// NewProxy creates a new proxy listening on cfg.Addr.
// It is the caller's responsibility to call Close on the returned proxy.
func NewProxy(cfg *ProxyConfig, rt http.RoundTripper, log log.Logger) (*Proxy, error) {
	p, err := newProxy(cfg, rt, log)
	if err != nil {
		return nil, err
	}

	l, err := Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	p.listener = l

	p.log.Infof("PROXY server listen address=%s", l.Addr())

	return p, nil
}

// NewProxyHandler is like NewProxy but returns an http.Handler that is not
// bound to a listener, for serving with an external server.
func NewProxyHandler(cfg *ProxyConfig, rt http.RoundTripper, log log.Logger) (http.Handler, error) {
	p, err := newProxy(cfg, rt, log)
	if err != nil {
		return nil, err
	}
	return p.Handler(), nil
}

func newProxy(cfg *ProxyConfig, rt http.RoundTripper, log log.Logger) (*Proxy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if rt == nil {
		log.Infof("HTTP transport not configured, using standard library default")
		t := http.DefaultTransport.(*http.Transport).Clone()
		// The proxy dials targets directly, never through another proxy.
		t.Proxy = nil
		rt = t
	}

	p := &Proxy{
		config:    *cfg,
		transport: rt,
		log:       log,
		metrics:   newProxyMetrics(cfg.PromRegistry, cfg.PromNamespace),
		dialer:    NewDialer(cfg.ConnectTimeout),
	}

	if cfg.BasicAuth != nil {
		p.log.Infof("proxy basic auth enabled for user %q", cfg.BasicAuth.Username)
		p.auth = middleware.NewProxyBasicAuth()
	}

	return p, nil
}

// Handler returns the proxy as http.Handler.
func (p *Proxy) Handler() http.Handler {
	return p
}

// ServeHTTP dispatches a single proxy request: it assigns the request id,
// gates on authentication and branches between the CONNECT tunnel and the
// plain HTTP forwarder.
func (p *Proxy) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	t := newTraceID(p.idSeq.Add(1))
	req = req.WithContext(withTraceID(req.Context(), t))

	p.log.Debugf("[%d] %s %s from %s", t.id, req.Method, req.RequestURI, req.RemoteAddr)

	if res := p.authenticate(req); res != nil {
		p.log.Debugf("[%d] proxy authentication failed", t.id)
		p.metrics.error("auth")
		p.writeResponse(rw, res)
		p.metrics.request(res.StatusCode, req.Method, t.Duration())
		return
	}

	if req.Method == http.MethodConnect {
		p.handleConnect(rw, req)
		return
	}

	p.handleRequest(rw, req)
}

// authenticate checks the request against the configured credential.
// It returns nil if the request is allowed, or the 407 response to send.
// Credentials are checked on every request, there is no session state.
func (p *Proxy) authenticate(req *http.Request) *http.Response {
	if p.auth == nil {
		return nil
	}
	if p.auth.AuthenticatedRequest(req, p.config.BasicAuth.Username, p.config.BasicAuth.Password) {
		// Do not expose the authentication header to the upstream servers.
		req.Header.Del(middleware.ProxyAuthorizationHeader)
		return nil
	}
	return unauthorizedResponse(req)
}

// handleRequest forwards a non-CONNECT request to the target named by its
// absolute-form URI and relays the upstream response verbatim.
// Transport errors are translated into a 502 response, they never propagate
// to the server layer.
func (p *Proxy) handleRequest(rw http.ResponseWriter, req *http.Request) {
	id := ContextTraceID(req.Context())

	if !req.URL.IsAbs() {
		p.log.Debugf("[%d] rejecting non-proxy request for %q", id, req.RequestURI)
		p.metrics.error("bad_request")
		res := badRequestResponse(req, "proxy requests must use absolute-form URIs")
		p.writeResponse(rw, res)
		p.metrics.request(res.StatusCode, req.Method, ContextDuration(req.Context()))
		return
	}

	outreq := req.Clone(req.Context())
	if req.ContentLength == 0 {
		outreq.Body = http.NoBody
	}
	if outreq.Body != nil {
		defer outreq.Body.Close()
	}
	outreq.RequestURI = ""
	outreq.Close = false
	removeHopByHopHeaders(outreq.Header)
	if _, ok := outreq.Header["User-Agent"]; !ok {
		// If the inbound request doesn't have a User-Agent header set,
		// don't send the default Go HTTP client User-Agent.
		outreq.Header.Set("User-Agent", "")
	}

	p.log.Debugf("[%d] forwarding %s %s", id, outreq.Method, outreq.URL)

	res, err := p.transport.RoundTrip(outreq)
	if err != nil {
		if isClosedConnError(err) {
			p.log.Debugf("[%d] connection closed prematurely: %s", id, err)
		} else {
			p.log.Errorf("[%d] failed to round trip: %s", id, err)
		}
		res = p.errorResponse(req, err)
	} else {
		p.log.Debugf("[%d] upstream response %s", id, res.Status)
	}
	defer res.Body.Close()

	p.writeResponse(rw, res)
	p.metrics.request(res.StatusCode, req.Method, ContextDuration(req.Context()))
}

func (p *Proxy) writeResponse(rw http.ResponseWriter, res *http.Response) {
	copyHeader(rw.Header(), res.Header)
	if res.Close {
		rw.Header().Set("Connection", "close")
	}
	announcedTrailers := addTrailerHeader(rw, res.Trailer)
	rw.WriteHeader(res.StatusCode)

	// Flush the status code and headers, it prevents the server from
	// buffering the response and trying to calculate the response size.
	if f, ok := rw.(http.Flusher); ok {
		f.Flush()
	}

	if err := copyBody(rw, res.Body); err != nil {
		if isClosedConnError(err) {
			p.log.Debugf("connection closed prematurely while writing response: %s", err)
		} else {
			p.log.Errorf("got error while writing response: %s", err)
		}
		panic(http.ErrAbortHandler)
	}

	res.Body.Close() // close now, instead of defer, to populate res.Trailer
	if len(res.Trailer) == announcedTrailers {
		copyHeader(rw.Header(), res.Trailer)
	} else {
		h := rw.Header()
		for k, vv := range res.Trailer {
			for _, v := range vv {
				h.Add(http.TrailerPrefix+k, v)
			}
		}
	}
}

func copyHeader(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

func addTrailerHeader(rw http.ResponseWriter, tr http.Header) int {
	// The "Trailer" header isn't included in the Transport's response,
	// at least for *http.Transport. Build it up from Trailer.
	announcedTrailers := len(tr)
	if announcedTrailers == 0 {
		return 0
	}

	trailerKeys := make([]string, 0, announcedTrailers)
	for k := range tr {
		trailerKeys = append(trailerKeys, k)
	}
	rw.Header().Add("Trailer", strings.Join(trailerKeys, ", "))

	return announcedTrailers
}

func copyBody(w io.Writer, body io.ReadCloser) error {
	if body == http.NoBody {
		return nil
	}

	bufp := copyBufPool.Get().(*[]byte) //nolint:forcetypeassert // It's *[]byte.
	buf := *bufp
	defer copyBufPool.Put(bufp)

	_, err := io.CopyBuffer(w, body, buf)
	return err
}

var hopByHopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// removeHopByHopHeaders removes RFC 9110 hop-by-hop headers and the headers
// named by the Connection header before the request is reissued upstream.
func removeHopByHopHeaders(h http.Header) {
	for _, f := range h["Connection"] {
		for _, sf := range strings.Split(f, ",") {
			if sf = textproto.TrimString(sf); sf != "" {
				h.Del(sf)
			}
		}
	}
	for _, f := range hopByHopHeaders {
		h.Del(f)
	}
}

// Run serves the proxy until ctx is canceled.
// In-flight CONNECT tunnels are not awaited on shutdown, they end when
// either of their streams closes.
func (p *Proxy) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler:           p.Handler(),
		IdleTimeout:       p.config.IdleTimeout,
		ReadHeaderTimeout: p.config.ReadHeaderTimeout,
	}

	donec := make(chan struct{})
	go func() {
		defer close(donec)
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			p.log.Errorf("failed to shutdown server error=%s", err)
		}
	}()

	err := srv.Serve(p.listener)
	if errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
		err = nil
	}

	cancel()
	<-donec

	return err
}

// Addr returns the address the proxy is listening on.
func (p *Proxy) Addr() string {
	return p.listener.Addr().String()
}

func (p *Proxy) Close() error {
	return p.listener.Close()
}
