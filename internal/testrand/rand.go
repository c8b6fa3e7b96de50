// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

// Package testrand generates random test data.
package testrand

import (
	"fmt"
	"io"
	"math/rand"

	"storj.io/filetao/pkg/overlay"
)

// Int63n returns, as an int64, a non-negative pseudo-random number in [0,n)
// from the default Source.
// It panics if n <= 0.
func Int63n(n int64) int64 {
	return rand.Int63n(n)
}

// Read reads pseudo-random data into data.
func Read(data []byte) {
	const newSourceThreshold = 64
	if len(data) < newSourceThreshold {
		_, _ = rand.Read(data)
		return
	}

	src := rand.NewSource(rand.Int63())
	r := rand.New(src)
	_, _ = r.Read(data)
}

// BytesN generates size amount of random data.
func BytesN(size int) []byte {
	data := make([]byte, size)
	Read(data)
	return data
}

// Reader creates a new random data reader.
func Reader() io.Reader {
	return rand.New(rand.NewSource(rand.Int63()))
}

// NodeID creates a random node id.
func NodeID() overlay.NodeID {
	return overlay.NodeID(fmt.Sprintf("node-%016x", rand.Uint64()))
}

// Node creates a validator with a random id and trust.
func Node(address string) overlay.Node {
	return overlay.Node{
		ID:             NodeID(),
		Address:        address,
		Trust:          rand.Float64(),
		ValidatorTrust: 1,
	}
}
