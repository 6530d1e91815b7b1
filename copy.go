// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/yinyancute2022/dshp/log"
)

// drainBuffer flushes to w any bytes the client sent ahead of the tunnel,
// buffered by the server's request reader.
func drainBuffer(w io.Writer, r *bufio.Reader) error {
	if n := r.Buffered(); n > 0 {
		rbuf, err := r.Peek(n)
		if err != nil {
			return err
		}
		if _, err := w.Write(rbuf); err != nil {
			return err
		}
	}
	return nil
}

var copyBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 32*1024)
		return &b
	},
}

var bicopyGracefulTimeout = 1 * time.Minute

// bicopy relays bytes between the copier pairs until all of them finish.
// The two directions are independent, bytes are in order within a direction
// only. Once the first copier finishes, the rest are forcibly closed after
// a graceful period.
func bicopy(ctx context.Context, log log.Logger, cc ...copier) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	donec := make(chan struct{}, len(cc))
	for i := range cc {
		go cc[i].copy(ctx, log, donec)
	}

	for i := range cc {
		<-donec
		if i == 0 {
			go gracefulCloseAfter(ctx, log, bicopyGracefulTimeout, cc...)
		}
	}
}

func gracefulCloseAfter(ctx context.Context, log log.Logger, d time.Duration, cc ...copier) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(d):
		log.Infof("[%d] forcibly closing tunnel after graceful period of %s", ContextTraceID(ctx), d)
	}
	for i := range cc {
		cc[i].close(ctx, log)
	}
}

type copier struct {
	name string
	dst  io.Writer
	src  io.Reader
}

func (c copier) copy(ctx context.Context, log log.Logger, donec chan<- struct{}) {
	bufp := copyBufPool.Get().(*[]byte) //nolint:forcetypeassert // It's *[]byte.
	buf := *bufp
	defer copyBufPool.Put(bufp)

	if _, err := io.CopyBuffer(c.dst, c.src, buf); err != nil && !isClosedConnError(err) {
		log.Errorf("[%d] failed to copy %s tunnel: %s", ContextTraceID(ctx), c.name, err)
	}
	c.closeWriter(ctx, log)

	log.Debugf("[%d] %s tunnel finished copying", ContextTraceID(ctx), c.name)
	donec <- struct{}{}
}

func (c copier) closeWriter(ctx context.Context, log log.Logger) {
	var closeErr error
	if cw, ok := asCloseWriter(c.dst); ok {
		closeErr = cw.CloseWrite()
	} else if pw, ok := c.dst.(*io.PipeWriter); ok {
		closeErr = pw.Close()
	} else {
		log.Errorf("[%d] cannot close write side of %s tunnel (%T)", ContextTraceID(ctx), c.name, c.dst)
	}
	if closeErr != nil && !isClosedConnError(closeErr) {
		log.Infof("[%d] failed to close write side of %s tunnel: %s", ContextTraceID(ctx), c.name, closeErr)
	}
}

func (c copier) close(ctx context.Context, log log.Logger) {
	cc, ok := asCloser(c.dst)
	if !ok {
		log.Errorf("[%d] cannot close %s tunnel (%T)", ContextTraceID(ctx), c.name, c.dst)
		return
	}
	if err := cc.Close(); err != nil && !isClosedConnError(err) {
		log.Infof("[%d] failed to close %s tunnel: %s", ContextTraceID(ctx), c.name, err)
	}
}
