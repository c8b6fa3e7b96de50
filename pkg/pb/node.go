// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package pb contains the messages exchanged between clients and storage
// nodes.
//
// Messages are encoded with CBOR using the field names below, so nodes written
// against a different implementation can interoperate.
package pb

import "fmt"

// Status codes carried in responses. They follow HTTP semantics.
const (
	StatusOK          int32 = 200
	StatusBadRequest  int32 = 400
	StatusNotFound    int32 = 404
	StatusTimeout     int32 = 408
	StatusConflict    int32 = 409
	StatusInternal    int32 = 500
	StatusUnavailable int32 = 503
)

// Status is the outcome reported by a node.
type Status struct {
	Code    int32  `cbor:"status_code"`
	Message string `cbor:"status_message,omitempty"`
}

// OK returns whether the status denotes success.
func (status Status) OK() bool { return status.Code == StatusOK }

// String implements fmt.Stringer.
func (status Status) String() string {
	if status.Message == "" {
		return fmt.Sprintf("%d", status.Code)
	}
	return fmt.Sprintf("%d %s", status.Code, status.Message)
}

// NewStatus creates a status with a formatted message.
func NewStatus(code int32, format string, args ...interface{}) Status {
	return Status{Code: code, Message: fmt.Sprintf(format, args...)}
}

// PingRequest is the liveness probe.
type PingRequest struct{}

// PingResponse answers a PingRequest.
type PingResponse struct {
	Status Status `cbor:"status"`
}

// StoreRequest asks a node to keep a payload.
type StoreRequest struct {
	// EncryptedData is the base64 (standard alphabet) encoding of the payload.
	EncryptedData string `cbor:"encrypted_data"`
	// EncryptionPayload is the encryption descriptor, "{}" when unencrypted.
	EncryptionPayload string `cbor:"encryption_payload"`
	// TTL is the requested lifetime in seconds. Zero selects the node default.
	TTL uint64 `cbor:"ttl"`
}

// StoreResponse answers a StoreRequest.
type StoreResponse struct {
	Status Status `cbor:"status"`
	// DataHash is the identifier the node computed for the payload.
	DataHash string `cbor:"data_hash,omitempty"`
}

// RetrieveRequest asks a node for a payload by identifier.
type RetrieveRequest struct {
	DataHash string `cbor:"data_hash"`
}

// RetrieveResponse answers a RetrieveRequest.
type RetrieveResponse struct {
	Status            Status `cbor:"status"`
	EncryptedData     string `cbor:"encrypted_data,omitempty"`
	EncryptionPayload string `cbor:"encryption_payload,omitempty"`
}
