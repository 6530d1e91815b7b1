// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import (
	"context"
	"net"
	"time"
)

// Listen creates a TCP listener for the provided address.
// See net.Listen for more information.
func Listen(network, address string) (net.Listener, error) {
	var lc net.ListenConfig
	// The context cancellation does not close the listener.
	return lc.Listen(context.Background(), network, address)
}

// Dialer dials outbound TCP connections for CONNECT tunnels.
type Dialer struct {
	nd net.Dialer
}

func NewDialer(timeout time.Duration) *Dialer {
	return &Dialer{
		nd: net.Dialer{
			Timeout: timeout,
			Resolver: &net.Resolver{
				PreferGo: true,
			},
		},
	}
}

func (d *Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return d.nd.DialContext(ctx, network, address)
}
