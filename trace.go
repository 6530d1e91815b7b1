// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import (
	"context"
	"time"
)

// traceID is a unique identifier for a request.
// It is assigned from a per-proxy sequence, ids are unique within a single
// Proxy instance and are only meaningful for log correlation.
type traceID struct {
	id        uint64
	createdAt time.Time
}

func newTraceID(n uint64) traceID {
	return traceID{
		id:        n,
		createdAt: time.Now(),
	}
}

func (t traceID) Duration() time.Duration {
	return time.Since(t.createdAt)
}

type contextKey int

const traceIDContextKey contextKey = iota

func withTraceID(ctx context.Context, id traceID) context.Context {
	return context.WithValue(ctx, traceIDContextKey, id)
}

func contextTrace(ctx context.Context) (traceID, bool) {
	if v := ctx.Value(traceIDContextKey); v != nil {
		return v.(traceID), true
	}
	return traceID{}, false
}

// ContextTraceID returns the request id stored in ctx, or 0 if there is none.
func ContextTraceID(ctx context.Context) uint64 {
	if v := ctx.Value(traceIDContextKey); v != nil {
		return v.(traceID).id
	}
	return 0
}

// ContextDuration returns the time elapsed since the request id was assigned.
func ContextDuration(ctx context.Context) time.Duration {
	if v := ctx.Value(traceIDContextKey); v != nil {
		return v.(traceID).Duration()
	}
	return 0
}
