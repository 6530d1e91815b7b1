// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package dshp implements a forward HTTP proxy.
//
// CONNECT requests are answered with an immediate 200 and the connection is
// turned into an opaque full-duplex byte tunnel to the requested authority.
// Any other method is forwarded to the target named by its absolute-form URI
// and the upstream response is relayed verbatim; transport failures are
// translated into 502 responses.
//
// The proxy optionally enforces a single username/password credential via
// proxy basic authentication (Proxy-Authorization header, 407 challenge).
package dshp
