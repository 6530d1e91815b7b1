// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yinyancute2022/dshp/cmd/dshp/run"
	"github.com/yinyancute2022/dshp/cmd/dshp/version"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dshp",
		Short: "Forward HTTP proxy with CONNECT tunneling and proxy basic authentication",
	}
	cmd.AddCommand(
		run.Command(),
		version.Command(),
	)
	return cmd
}
