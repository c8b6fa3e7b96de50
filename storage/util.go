// Copyright (C) 2018 Storj Labs, Inc.
// See LICENSE for copying information.

package storage

import "time"

// CloneKey creates a copy of key
func CloneKey(key Key) Key { return append(key[:0:0], key...) }

// CloneValue creates a copy of value
func CloneValue(value Value) Value { return append(value[:0:0], value...) }

// CloneItem creates a deep copy of item
func CloneItem(item Item) Item {
	return Item{
		Key:     CloneKey(item.Key),
		Expires: item.Expires,
	}
}

// UnixNano returns t as unix nanoseconds, or 0 for the zero time.
func UnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// FromUnixNano is the inverse of UnixNano.
func FromUnixNano(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}
