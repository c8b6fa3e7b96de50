// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

package process

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeebo/errs"
)

// EnvPrefix is the prefix of environment variables overriding flags.
const EnvPrefix = "FILETAO"

// Exec runs a *cobra.Command and sets up process wide configuration like a
// configuration file and logging flags. It exits the process on failure.
func Exec(cmd *cobra.Command) {
	Must(execute(cmd))
}

func execute(cmd *cobra.Command) error {
	configFile := cmd.PersistentFlags().String("config", "", "yaml config file")
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	load := func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd.Flags(), *configFile)
	}

	previous := cmd.PersistentPreRunE
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := load(cmd, args); err != nil {
			return err
		}
		if previous != nil {
			return previous(cmd, args)
		}
		return nil
	}

	return cmd.Execute()
}

// loadConfig sets every flag not given on the command line from the
// environment or the config file.
func loadConfig(flags *pflag.FlagSet, configFile string) error {
	vip := viper.New()
	vip.SetEnvPrefix(EnvPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vip.AutomaticEnv()

	if configFile != "" {
		vip.SetConfigFile(configFile)
		vip.SetConfigType("yaml")
		if err := vip.ReadInConfig(); err != nil {
			return Error.New("unable to read config %q: %v", configFile, err)
		}
	}

	var errlist errs.Group
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" || !vip.IsSet(f.Name) {
			return
		}
		if err := f.Value.Set(vip.GetString(f.Name)); err != nil {
			errlist.Add(Error.New("invalid value for %q: %v", f.Name, err))
		}
	})
	return errlist.Err()
}

// Must exits the process when err is not nil.
func Must(err error) {
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
