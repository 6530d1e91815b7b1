// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

import (
	"github.com/mmatczuk/anyflag"
	"github.com/spf13/pflag"

	"github.com/yinyancute2022/dshp"
	"github.com/yinyancute2022/dshp/log"
)

func ProxyConfig(fs *pflag.FlagSet, cfg *dshp.ProxyConfig) {
	fs.StringVarP(&cfg.Addr,
		"listen", "l", cfg.Addr, "<host:port>"+
			"Address the proxy listens on. ")

	fs.VarP(anyflag.NewValueWithRedact[*dshp.Credential](cfg.BasicAuth, &cfg.BasicAuth, dshp.ParseCredential, RedactCredential),
		"basic-auth", "", "<username:password>"+
			"Basic authentication credentials to protect the proxy. "+
			"If not set, authentication is disabled. ")

	fs.DurationVar(&cfg.ConnectTimeout,
		"connect-timeout", cfg.ConnectTimeout,
		"The maximum amount of time a CONNECT tunnel dial will wait for a connect to complete. ")

	fs.DurationVar(&cfg.ReadHeaderTimeout,
		"read-header-timeout", cfg.ReadHeaderTimeout,
		"The amount of time allowed to read request headers. ")

	fs.DurationVar(&cfg.IdleTimeout,
		"idle-timeout", cfg.IdleTimeout,
		"The maximum amount of time to wait for the next request before closing an idle client connection. ")
}

func APIAddress(fs *pflag.FlagSet, addr *string) {
	fs.StringVar(addr,
		"api-address", *addr, "<host:port>"+
			"Address the diagnostics API (metrics, health, pprof) listens on. "+
			"If not set, the API server is disabled. ")
}

func LogConfig(fs *pflag.FlagSet, cfg *log.Config) {
	fs.Var(anyflag.NewValue[log.Level](cfg.Level, &cfg.Level, log.ParseLevel),
		"log-level", "<error|info|debug>"+
			"Log level. Use debug to trace individual requests and tunnels. ")
}
