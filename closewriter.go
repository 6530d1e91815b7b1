// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import (
	"io"
	"net"
	"reflect"
)

type closeWriter interface {
	CloseWrite() error
}

var _ closeWriter = (*net.TCPConn)(nil)

// asCloseWriter returns a closeWriter for w if it implements closeWriter.
// If w is a pointer to a struct, it checks if any of the fields implement closeWriter.
func asCloseWriter(w io.Writer) (closeWriter, bool) {
	if cw, ok := w.(closeWriter); ok {
		return cw, true
	}

	v := reflect.Indirect(reflect.ValueOf(w))

	if v.Kind() != reflect.Struct {
		return nil, false
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.CanInterface() {
			if cw, ok := f.Interface().(closeWriter); ok {
				return cw, true
			}
		}
	}

	return nil, false
}

// asCloser is the io.Closer counterpart of asCloseWriter.
func asCloser(w io.Writer) (io.Closer, bool) {
	if c, ok := w.(io.Closer); ok {
		return c, true
	}

	v := reflect.Indirect(reflect.ValueOf(w))

	if v.Kind() != reflect.Struct {
		return nil, false
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.CanInterface() {
			if c, ok := f.Interface().(io.Closer); ok {
				return c, true
			}
		}
	}

	return nil, false
}
