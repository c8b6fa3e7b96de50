// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"storj.io/filetao/pkg/process"
	"storj.io/filetao/uplink"
)

var (
	putCmd = &cobra.Command{
		Use:   "put <file>",
		Short: "Store a file on the most trusted live nodes, - reads stdin",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdPut,
	}

	putCfg struct {
		Encrypt bool          `help:"encrypt the payload to the wallet before sending" default:"false"`
		TTL     time.Duration `help:"how long nodes should keep the payload, 0 uses --default-ttl" default:"0s"`
	}
)

func init() {
	rootCmd.AddCommand(putCmd)
	process.Bind(putCmd.Flags(), &putCfg)
}

func cmdPut(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := process.Ctx(cmd)
	defer cancel()

	data, err := readInput(args[0])
	if err != nil {
		return err
	}

	env, err := newEnvironment(putCfg.Encrypt)
	if err != nil {
		return err
	}
	defer func() { err = errs.Combine(err, env.Close()) }()

	result, err := env.client.Store(ctx, data, uplink.StoreOptions{
		Encrypt: putCfg.Encrypt,
		TTL:     putCfg.TTL,
	})
	if err != nil {
		return err
	}

	if !result.Success {
		for _, failure := range result.Failures {
			_, _ = fmt.Fprintf(os.Stderr, "%s: %d %s\n", failure.Node, failure.Code, failure.Message)
		}
		return errs.New("store failed on %d nodes", len(result.Failures))
	}

	fmt.Println(result.CID)
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
