// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import (
	"context"
	"testing"
)

func TestContextTraceID(t *testing.T) {
	ctx := context.Background()

	if got := ContextTraceID(ctx); got != 0 {
		t.Errorf("ContextTraceID() on empty context: got %d, want 0", got)
	}
	if got := ContextDuration(ctx); got != 0 {
		t.Errorf("ContextDuration() on empty context: got %v, want 0", got)
	}

	ctx = withTraceID(ctx, newTraceID(7))

	if got := ContextTraceID(ctx); got != 7 {
		t.Errorf("ContextTraceID(): got %d, want 7", got)
	}
	if _, ok := contextTrace(ctx); !ok {
		t.Error("contextTrace(): got ok=false, want true")
	}
	if got := ContextDuration(ctx); got <= 0 {
		t.Errorf("ContextDuration(): got %v, want > 0", got)
	}
}

func TestProxyAssignsSequentialIDs(t *testing.T) {
	p, err := newProxy(DefaultProxyConfig(), nil, testLogger{t})
	if err != nil {
		t.Fatal(err)
	}

	var ids []uint64
	for i := 0; i < 3; i++ {
		ids = append(ids, p.idSeq.Add(1))
	}
	for i, id := range ids {
		if want := uint64(i + 1); id != want {
			t.Errorf("id %d: got %d, want %d", i, id, want)
		}
	}
}
