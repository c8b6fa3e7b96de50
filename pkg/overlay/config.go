// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package overlay

import (
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var (
	mon = monkit.Package()
	// Error represents an overlay error
	Error = errs.Class("overlay")

	// ErrNodeNotFound is returned when a node is not part of the membership table.
	ErrNodeNotFound = errs.Class("node not found")
)

// Config is a configuration struct for choosing which nodes to contact.
type Config struct {
	TopFraction float64       `help:"fraction of the highest trusted nodes to consider" default:"0.1"`
	PingTimeout time.Duration `help:"how long to wait for a liveness probe" default:"3s"`
	Table       string        `help:"path to the membership table yaml file" default:""`
}

// DefaultConfig returns the default selection configuration.
func DefaultConfig() Config {
	return Config{
		TopFraction: 0.1,
		PingTimeout: 3 * time.Second,
	}
}
