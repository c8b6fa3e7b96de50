// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"storj.io/filetao/pkg/process"
)

var getCmd = &cobra.Command{
	Use:   "get <cid> [file]",
	Short: "Retrieve a payload by identifier, writing it to file or stdout",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  cmdGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func cmdGet(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := process.Ctx(cmd)
	defer cancel()

	env, err := newEnvironment(false)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, env.Close()) }()

	result, err := env.client.Retrieve(ctx, args[0])
	if err != nil {
		return err
	}
	if !result.Success {
		return errs.New("no node returned %s", args[0])
	}

	if len(args) == 1 {
		_, err = os.Stdout.Write(result.Data)
		return err
	}
	return os.WriteFile(args[1], result.Data, 0644)
}
