// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import (
	"io"
	"net/http"
	"strings"
)

// newResponse builds a new HTTP response with the protocol version of req.
// If body is not a *strings.Reader the content length is unknown.
func newResponse(code int, body string, req *http.Request) *http.Response {
	res := &http.Response{
		StatusCode: code,
		Status:     http.StatusText(code),
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
		Request:    req,
	}

	if req != nil {
		res.Close = req.Close
		res.Proto = req.Proto
		res.ProtoMajor = req.ProtoMajor
		res.ProtoMinor = req.ProtoMinor
	}

	if body != "" {
		res.Header.Set("Content-Type", "text/plain; charset=utf-8")
		res.ContentLength = int64(len(body))
		res.Body = io.NopCloser(strings.NewReader(body))
	} else {
		res.ContentLength = 0
		res.Body = http.NoBody
	}

	return res
}
