// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package run

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/goleak"

	"github.com/yinyancute2022/dshp"
	"github.com/yinyancute2022/dshp/bind"
	"github.com/yinyancute2022/dshp/log"
	"github.com/yinyancute2022/dshp/log/stdlog"
	"github.com/yinyancute2022/dshp/runctx"
)

type command struct {
	promReg     *prometheus.Registry
	proxyConfig *dshp.ProxyConfig
	logConfig   *log.Config
	apiAddr     string
	goleak      bool
}

func (c *command) runE(cmd *cobra.Command, _ []string) (cmdErr error) {
	logger := stdlog.New(c.logConfig)

	defer func() {
		if cmdErr != nil {
			logger.Errorf("fatal error exiting: %s", cmdErr)
			cmd.SilenceErrors = true
		}
	}()

	cfgStr := describeFlags(cmd.Flags())
	logger.Infof("configuration\n%s", cfgStr)

	c.proxyConfig.PromNamespace = "dshp"
	c.proxyConfig.PromRegistry = c.promReg

	p, err := dshp.NewProxy(c.proxyConfig, nil, logger.Named("proxy"))
	if err != nil {
		return err
	}
	defer p.Close()

	g := runctx.NewGroup(p.Run)

	if c.apiAddr != "" {
		h := dshp.NewAPIHandler(c.promReg, p, cfgStr)
		a, err := dshp.NewAPIServer(c.apiAddr, h, c.promReg, logger.Named("api"))
		if err != nil {
			return err
		}
		defer a.Close()
		g.Add(a.Run)
	}

	if c.goleak {
		defer func() {
			if err := goleak.Find(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "goleak: %s", err)
			}
		}()
	}

	return g.Run()
}

// describeFlags renders the flags that were changed from their defaults,
// with redacted values where the flag defines redaction.
func describeFlags(fs *pflag.FlagSet) string {
	var sb strings.Builder
	fs.Visit(func(f *pflag.Flag) {
		fmt.Fprintf(&sb, "%s=%s\n", f.Name, f.Value.String())
	})
	if sb.Len() == 0 {
		return "defaults\n"
	}
	return sb.String()
}

func Command() *cobra.Command {
	c := command{
		promReg:     prometheus.NewRegistry(),
		proxyConfig: dshp.DefaultProxyConfig(),
		logConfig:   log.DefaultConfig(),
	}

	c.promReg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	cmd := &cobra.Command{
		Use:   "run [--listen <host:port>] [--basic-auth <username:password>]",
		Short: "Start the proxy",
		RunE:  c.runE,
	}

	fs := cmd.Flags()
	bind.ProxyConfig(fs, c.proxyConfig)
	bind.APIAddress(fs, &c.apiAddr)
	bind.LogConfig(fs, c.logConfig)

	fs.BoolVar(&c.goleak, "goleak", false, "enable goleak")
	if err := fs.MarkHidden("goleak"); err != nil {
		panic(err)
	}

	return cmd
}
