// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dshp

import (
	"errors"
	"fmt"
	"strings"
)

// Credential is the single username/password pair the proxy authenticates
// requests against. The same pair applies to every request, there is no
// per-user store.
type Credential struct {
	Username string
	Password string
}

// ParseCredential parses a "username:password" string.
// The username must not be empty and must not contain a colon.
func ParseCredential(val string) (*Credential, error) {
	user, pass, ok := strings.Cut(val, ":")
	if !ok {
		return nil, errors.New("expected username:password")
	}
	c := &Credential{
		Username: user,
		Password: pass,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Credential) Validate() error {
	if c.Username == "" {
		return errors.New("username cannot be empty")
	}
	if strings.Contains(c.Username, ":") {
		return errors.New("username cannot contain a colon")
	}
	return nil
}

func (c *Credential) String() string {
	return c.Username + ":" + c.Password
}

// Redacted formats the credential with the password masked, for logs and flag help.
func (c *Credential) Redacted() string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%s:xxxxx", c.Username)
}
