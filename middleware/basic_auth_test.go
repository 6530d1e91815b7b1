// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthenticatedRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{name: "valid", header: "Basic " + basicAuth("alice", "secret"), want: true},
		{name: "lowercase scheme", header: "basic " + basicAuth("alice", "secret"), want: true},
		{name: "missing header", header: ""},
		{name: "wrong user", header: "Basic " + basicAuth("bob", "secret")},
		{name: "wrong password", header: "Basic " + basicAuth("alice", "Secret")},
		{name: "wrong scheme", header: "Bearer " + basicAuth("alice", "secret")},
		{name: "garbled base64", header: "Basic !!!"},
		{name: "no colon in payload", header: "Basic " + base64.StdEncoding.EncodeToString([]byte("alicesecret"))},
		{name: "binary payload", header: "Basic " + base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd})},
	}

	ba := NewProxyBasicAuth()

	for i := range tests {
		tc := tests[i]
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example.com/", http.NoBody)
			if tc.header != "" {
				r.Header.Set(ProxyAuthorizationHeader, tc.header)
			}
			if got := ba.AuthenticatedRequest(r, "alice", "secret"); got != tc.want {
				t.Errorf("AuthenticatedRequest(): got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBasicAuthWrap(t *testing.T) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Header.Get(ProxyAuthorizationHeader) != "" {
			t.Error("authentication header not stripped")
		}
	})

	wrapped := NewProxyBasicAuth().Wrap(h, "alice", "secret", "dshp")

	t.Run("unauthenticated", func(t *testing.T) {
		called = false
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example.com/", http.NoBody))

		if called {
			t.Error("handler called for unauthenticated request")
		}
		if w.Code != http.StatusProxyAuthRequired {
			t.Errorf("status: got %d, want %d", w.Code, http.StatusProxyAuthRequired)
		}
		if got, want := w.Header().Get("Proxy-Authenticate"), `Basic realm="dshp"`; got != want {
			t.Errorf("Proxy-Authenticate: got %q, want %q", got, want)
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		called = false
		r := httptest.NewRequest(http.MethodGet, "http://example.com/", http.NoBody)
		NewProxyBasicAuth().SetBasicAuth(r, "alice", "secret")

		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, r)

		if !called {
			t.Error("handler not called for authenticated request")
		}
		if w.Code != http.StatusOK {
			t.Errorf("status: got %d, want %d", w.Code, http.StatusOK)
		}
	})
}

func TestBasicAuthWrapAuthorizationHeader(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	wrapped := NewBasicAuth(AuthorizationHeader).Wrap(h, "alice", "secret", "api")

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example.com/", http.NoBody))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if got, want := w.Header().Get("WWW-Authenticate"), `Basic realm="api"`; got != want {
		t.Errorf("WWW-Authenticate: got %q, want %q", got, want)
	}
}
