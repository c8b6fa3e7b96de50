// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeebo/errs"

	"storj.io/filetao/pkg/identity"
	"storj.io/filetao/pkg/process"
)

var (
	rootCmd = &cobra.Command{
		Use:   "identity",
		Short: "Identity management",
	}
	createCmd = &cobra.Command{
		Use:         "create <path>",
		Short:       "Create a new wallet key file",
		Args:        cobra.ExactArgs(1),
		RunE:        cmdCreate,
		Annotations: map[string]string{"type": "setup"},
	}
	showCmd = &cobra.Command{
		Use:   "show <path>",
		Short: "Print the public key of a wallet key file",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdShow,
	}

	createCfg struct {
		Force bool `help:"overwrite an existing key file" default:"false"`
	}
)

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(showCmd)
	process.Bind(createCmd.Flags(), &createCfg)
}

func main() {
	process.Exec(rootCmd)
}

func cmdCreate(cmd *cobra.Command, args []string) (err error) {
	path := args[0]
	if identity.StatKeyFile(path) == identity.HasKey && !createCfg.Force {
		return errs.New("key file %q already exists, use --force to overwrite", path)
	}

	wallet, err := identity.NewWallet()
	if err != nil {
		return err
	}
	if err := wallet.Save(path); err != nil {
		return err
	}

	fmt.Println("public key:", wallet.PublicKey())
	return nil
}

func cmdShow(cmd *cobra.Command, args []string) (err error) {
	wallet, err := identity.LoadWallet(args[0])
	if err != nil {
		return err
	}
	fmt.Println(wallet.PublicKey())
	return nil
}
