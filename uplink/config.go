// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package uplink

import (
	"time"

	"github.com/zeebo/errs"

	"storj.io/filetao/pkg/overlay"
)

// MismatchPolicy decides what happens when a node reports an identifier that
// differs from the one computed locally.
type MismatchPolicy string

const (
	// MismatchWarn logs the mismatch and accepts the response.
	MismatchWarn MismatchPolicy = "warn"
	// MismatchReject treats the response as a failure.
	MismatchReject MismatchPolicy = "reject"
)

// String implements pflag.Value.
func (policy *MismatchPolicy) String() string { return string(*policy) }

// Set implements pflag.Value.
func (policy *MismatchPolicy) Set(value string) error {
	switch MismatchPolicy(value) {
	case MismatchWarn, MismatchReject:
		*policy = MismatchPolicy(value)
		return nil
	default:
		return errs.New("invalid mismatch policy %q, expected %q or %q", value, MismatchWarn, MismatchReject)
	}
}

// Type implements pflag.Value.
func (policy *MismatchPolicy) Type() string { return "policy" }

// Config defines parameters for the uplink client.
type Config struct {
	Timeout        time.Duration  `help:"how long to wait for all nodes to answer" default:"3m0s"`
	CIDVersion     int            `help:"identifier version used when storing (0 or 1)" default:"1"`
	DefaultTTL     time.Duration  `help:"lifetime requested when none is given" default:"720h0m0s"`
	MismatchPolicy MismatchPolicy `help:"what to do when a node reports a different identifier (warn or reject)" default:"warn"`

	Selection overlay.Config
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        180 * time.Second,
		CIDVersion:     1,
		DefaultTTL:     30 * 24 * time.Hour,
		MismatchPolicy: MismatchWarn,
		Selection:      overlay.DefaultConfig(),
	}
}
