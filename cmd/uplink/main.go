// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/filetao/pkg/identity"
	"storj.io/filetao/pkg/overlay"
	"storj.io/filetao/pkg/process"
	"storj.io/filetao/pkg/transport"
	"storj.io/filetao/uplink"
)

// UplinkFlags configures the uplink commands.
type UplinkFlags struct {
	uplink.Config

	Wallet string `help:"path to the wallet key file used for encryption" default:""`
}

var (
	rootCmd = &cobra.Command{
		Use:   "uplink",
		Short: "Store and retrieve payloads on storage nodes",
	}

	cfg UplinkFlags
)

func init() {
	process.Bind(rootCmd.PersistentFlags(), &cfg)
}

func main() {
	process.Exec(rootCmd)
}

// environment holds what a command needs to talk to nodes.
type environment struct {
	log    *zap.Logger
	client *uplink.Client
	dialer *transport.Client
}

// newEnvironment loads the membership table and wallet. requireWallet fails
// when no wallet is configured.
func newEnvironment(requireWallet bool) (_ *environment, err error) {
	log, err := process.NewLogger()
	if err != nil {
		return nil, err
	}

	if cfg.Selection.Table == "" {
		return nil, errs.New("no membership table configured, set --selection.table")
	}
	table, err := overlay.LoadStaticTable(cfg.Selection.Table)
	if err != nil {
		return nil, err
	}

	var wallet *identity.Wallet
	switch {
	case cfg.Wallet != "":
		wallet, err = identity.LoadWallet(cfg.Wallet)
		if err != nil {
			return nil, err
		}
	case requireWallet:
		return nil, errs.New("encryption requires a wallet, set --wallet")
	}

	dialer := transport.NewClient(log.Named("transport"))
	selector := overlay.NewSelector(log.Named("overlay"), table, dialer, cfg.Selection)

	return &environment{
		log:    log,
		client: uplink.New(log.Named("uplink"), cfg.Config, wallet, selector, dialer),
		dialer: dialer,
	}, nil
}

// Close releases the connections of the environment.
func (env *environment) Close() error {
	_ = env.log.Sync()
	return env.dialer.Close()
}
