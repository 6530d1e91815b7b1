// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import (
	"errors"
	"net"
	"net/http"
)

// ErrorHeader is the header that is set on error responses with the error message.
const ErrorHeader = "X-Dshp-Error"

// ProxyAuthenticate is the challenge sent with every 407 response.
const ProxyAuthenticate = `Basic realm="dshp"`

// errorResponse translates an upstream transport error into a 502 response.
// The error never reaches the caller's transport layer, the body carries
// the error's textual description.
func (p *Proxy) errorResponse(req *http.Request, err error) *http.Response {
	handlers := []errorHandler{
		handleNetError,
		handleDNSError,
	}

	var msg, label string
	for _, h := range handlers {
		msg, label = h(err)
		if label != "" {
			break
		}
	}
	if label == "" {
		msg = "Failed to forward request to remote host"
		label = "upstream"
	}

	p.metrics.error(label)

	res := newResponse(http.StatusBadGateway, msg+"\n"+err.Error()+"\n", req)
	res.Header.Set(ErrorHeader, err.Error())
	return res
}

type errorHandler func(error) (msg, label string)

func handleNetError(err error) (msg, label string) {
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			msg = "Timed out connecting to remote host"
		} else {
			msg = "Failed to connect to remote host"
		}
		label = "net_" + netErr.Op
	}

	return
}

func handleDNSError(err error) (msg, label string) {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		msg = "Failed to resolve remote host"
		label = "dns"
	}

	return
}

func unauthorizedResponse(req *http.Request) *http.Response {
	res := newResponse(http.StatusProxyAuthRequired, "Proxy Authentication Required", req)
	res.Header.Set("Proxy-Authenticate", ProxyAuthenticate)
	return res
}

func badRequestResponse(req *http.Request, msg string) *http.Response {
	return newResponse(http.StatusBadRequest, msg+"\n", req)
}
