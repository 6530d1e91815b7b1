// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

import (
	"github.com/yinyancute2022/dshp"
)

// RedactCredential masks the password when the flag value is printed.
func RedactCredential(c *dshp.Credential) string {
	return c.Redacted()
}
