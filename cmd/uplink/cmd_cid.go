// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"storj.io/filetao/pkg/cid"
	"storj.io/filetao/pkg/process"
)

var (
	cidCmd = &cobra.Command{
		Use:   "cid <file>",
		Short: "Print the identifier of a file without storing it",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdCID,
	}

	cidCfg struct {
		Version int    `help:"identifier version (0 or 1)" default:"1"`
		Codec   string `help:"multicodec name encoded into version 1 identifiers" default:"sha2-256"`
	}
)

func init() {
	rootCmd.AddCommand(cidCmd)
	process.Bind(cidCmd.Flags(), &cidCfg)
}

func cmdCID(cmd *cobra.Command, args []string) (err error) {
	data, err := readInput(args[0])
	if err != nil {
		return err
	}

	id, err := cid.MakeWithCodec(data, cidCfg.Version, cidCfg.Codec)
	if err != nil {
		return err
	}

	fmt.Println(id.Encode())
	return nil
}
