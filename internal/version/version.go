// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package version

import (
	"runtime/debug"
)

// These variables are set at build time via ldflags.
var (
	Version = "devel"
	Time    = "unknown"
	Commit  = "unknown"
)

func init() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "devel" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		Version = bi.Main.Version
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.time":
			if Time == "unknown" {
				Time = s.Value
			}
		case "vcs.revision":
			if Commit == "unknown" {
				Commit = s.Value
			}
		}
	}
}
