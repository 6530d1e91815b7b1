// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/yinyancute2022/dshp/internal/version"
)

func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Version:\t%s\n", version.Version)
			fmt.Fprintf(w, "Built time:\t%s\n", version.Time)
			fmt.Fprintf(w, "Git commit:\t%s\n", version.Commit)
			fmt.Fprintf(w, "Go Arch:\t%s\n", runtime.GOARCH)
			fmt.Fprintf(w, "Go OS:\t\t%s\n", runtime.GOOS)
			fmt.Fprintf(w, "Go Version:\t%s\n", runtime.Version())
		},
	}
}
