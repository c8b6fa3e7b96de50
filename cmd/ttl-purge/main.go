// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storj.io/filetao/pkg/process"
	"storj.io/filetao/storage/redis"
	"storj.io/filetao/storagenode/collector"
)

var (
	rootCmd = &cobra.Command{
		Use:   "ttl-purge",
		Short: "Delete expired entries from a redis database once",
		Args:  cobra.NoArgs,
		RunE:  cmdPurge,
	}

	purgeCfg struct {
		RedisAddr     string `help:"address of the redis server" default:"127.0.0.1:6379"`
		Password      string `help:"password of the redis server" default:""`
		DatabaseIndex int    `help:"index of the redis database to purge" default:"0"`
	}
)

func init() {
	process.Bind(rootCmd.Flags(), &purgeCfg)
}

func main() {
	process.Exec(rootCmd)
}

func cmdPurge(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := process.Ctx(cmd)
	defer cancel()

	log, err := process.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, err := redis.OpenClient(ctx, purgeCfg.RedisAddr, purgeCfg.Password, purgeCfg.DatabaseIndex)
	if err != nil {
		log.Error("unable to connect", zap.String("Address", purgeCfg.RedisAddr), zap.Error(err))
		return collector.ErrConnection.Wrap(err)
	}
	defer func() { _ = store.Close() }()

	count, err := collector.NewRunnerOnce(log.Named("collector"), store).Run(ctx)
	if err != nil {
		return err
	}

	log.Info("purge complete", zap.Int("Deleted", count), zap.Int("Database", purgeCfg.DatabaseIndex))
	return nil
}
