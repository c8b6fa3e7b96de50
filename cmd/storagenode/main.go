// Copyright (C) 2020 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/spf13/cobra"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/filetao/pkg/process"
	"storj.io/filetao/storage/storeurl"
	"storj.io/filetao/storagenode"
)

var (
	rootCmd = &cobra.Command{
		Use:   "storagenode",
		Short: "StorageNode",
	}
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the storagenode",
		Args:  cobra.NoArgs,
		RunE:  cmdRun,
	}

	runCfg = storagenode.DefaultConfig()
)

func init() {
	rootCmd.AddCommand(runCmd)
	process.Bind(runCmd.Flags(), &runCfg)
}

func main() {
	process.Exec(rootCmd)
}

func cmdRun(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := process.Ctx(cmd)
	defer cancel()

	log, err := process.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if _, err := process.InitDebug(log.Named("debug"), monkit.Default); err != nil {
		log.Error("failed to start debug endpoints", zap.Error(err))
	}

	store, err := storeurl.Open(ctx, log, runCfg.Storage)
	if err != nil {
		return errs.New("Error opening payload store on storagenode: %+v", err)
	}
	defer func() { err = errs.Combine(err, store.Close()) }()

	peer, err := storagenode.New(log, store, runCfg)
	if err != nil {
		return err
	}

	runError := peer.Run(ctx)
	closeError := peer.Close()
	return errs.Combine(runError, closeError)
}
