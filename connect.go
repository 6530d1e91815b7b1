// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"time"
)

// connectResponse is written to the hijacked connection before the target
// is dialed. It carries no body and no framing headers, after the final
// CRLF the connection is an opaque byte tunnel.
const connectResponse = "HTTP/1.1 200 OK\r\n\r\n"

// handleConnect establishes a CONNECT tunnel.
// The client connection is hijacked out of HTTP framing and the 200
// response is committed immediately, the target dial and the relay run in
// their own goroutine so the client can start its TLS handshake right after
// reading the status line. Failures past this point are logged only, the
// client's failure signal is an unexpectedly closed tunnel.
func (p *Proxy) handleConnect(rw http.ResponseWriter, req *http.Request) {
	t, _ := contextTrace(req.Context())

	target := req.URL.Host
	if target == "" {
		p.log.Debugf("[%d] rejecting CONNECT with no authority", t.id)
		p.metrics.error("bad_request")
		res := badRequestResponse(req, "CONNECT requests must name a host:port authority")
		p.writeResponse(rw, res)
		p.metrics.request(res.StatusCode, req.Method, t.Duration())
		return
	}

	p.log.Debugf("[%d] attempting to establish CONNECT tunnel: %s", t.id, target)

	conn, brw, err := http.NewResponseController(rw).Hijack()
	if err != nil {
		p.log.Errorf("[%d] cannot hijack CONNECT request: %s", t.id, err)
		p.metrics.error("connect_hijack")
		res := newResponse(http.StatusInternalServerError, "", req)
		p.writeResponse(rw, res)
		p.metrics.request(res.StatusCode, req.Method, t.Duration())
		return
	}

	if _, err := brw.WriteString(connectResponse); err == nil {
		err = brw.Flush()
	}
	if err != nil {
		p.log.Errorf("[%d] got error while writing response back to client: %s", t.id, err)
		p.metrics.error("connect_write")
		conn.Close()
		return
	}

	p.metrics.request(http.StatusOK, req.Method, t.Duration())

	// The relay owns both streams from here on, decoupled from this
	// request's context which is canceled once the handler returns.
	go p.tunnel(withTraceID(context.Background(), t), conn, brw.Reader, target)
}

// tunnel dials the CONNECT target and relays bytes in both directions until
// either side reaches end of stream or errors.
func (p *Proxy) tunnel(ctx context.Context, cconn net.Conn, br *bufio.Reader, target string) {
	id := ContextTraceID(ctx)
	defer cconn.Close()

	p.metrics.tunnelOpened()
	start := time.Now()
	defer func() {
		p.metrics.tunnelClosed(time.Since(start))
	}()

	tconn, err := p.dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		p.log.Errorf("[%d] failed to connect to CONNECT target %s: %s", id, target, err)
		p.metrics.error("connect_dial")
		return
	}
	defer tconn.Close()

	p.log.Debugf("[%d] connected to %s, proxying traffic", id, target)

	// Bytes the client sent ahead of the 200 are sitting in the server's
	// request reader, they belong to the tunnel.
	if err := drainBuffer(tconn, br); err != nil {
		p.log.Errorf("[%d] got error while draining buffer: %s", id, err)
		p.metrics.error("connect_drain")
		return
	}

	bicopy(ctx, p.log,
		copier{name: "outbound CONNECT", dst: tconn, src: cconn},
		copier{name: "inbound CONNECT", dst: cconn, src: tconn},
	)

	p.log.Debugf("[%d] closed CONNECT tunnel: %s", id, target)
}
