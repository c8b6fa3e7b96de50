// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

package storelogger

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"storj.io/filetao/storage/teststore"
	"storj.io/filetao/storage/testsuite"
)

func TestSuite(t *testing.T) {
	store := teststore.New()
	logged := New(zaptest.NewLogger(t), store)
	testsuite.RunTests(t, logged)
}

func TestUnwrap(t *testing.T) {
	store := teststore.New()
	logged := New(zaptest.NewLogger(t), store)
	if logged.Unwrap() != store {
		t.Fatal("unwrap returned a different store")
	}
}
