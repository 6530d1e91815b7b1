// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import "testing"

func TestParseCredential(t *testing.T) {
	tests := []struct {
		input   string
		want    Credential
		wantErr bool
	}{
		{input: "alice:secret", want: Credential{Username: "alice", Password: "secret"}},
		{input: "alice:se:cret", want: Credential{Username: "alice", Password: "se:cret"}},
		{input: "alice:", want: Credential{Username: "alice", Password: ""}},
		{input: "alice", wantErr: true},
		{input: ":secret", wantErr: true},
		{input: "", wantErr: true},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseCredential(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseCredential(%q): got no error, want error", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCredential(%q): got %v, want no error", tc.input, err)
			}
			if *got != tc.want {
				t.Errorf("ParseCredential(%q): got %+v, want %+v", tc.input, *got, tc.want)
			}
		})
	}
}

func TestCredentialRedacted(t *testing.T) {
	c := Credential{Username: "alice", Password: "secret"}

	if got, want := c.String(), "alice:secret"; got != want {
		t.Errorf("String(): got %q, want %q", got, want)
	}
	if got, want := c.Redacted(), "alice:xxxxx"; got != want {
		t.Errorf("Redacted(): got %q, want %q", got, want)
	}
}
