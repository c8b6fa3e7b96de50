// Copyright (C) 2019 Storj Labs, Inc.
// See LICENSE for copying information.

package identity

import (
	"os"
	"path/filepath"

	"github.com/zeebo/errs"
)

// KeyFileStatus is the status of a wallet key file.
type KeyFileStatus int

// Possible outcomes when looking for a key file.
const (
	NoKey = KeyFileStatus(iota)
	HasKey
)

// writeKeyData writes data to path ensuring permissions are appropriate for a key.
func writeKeyData(path string, data []byte) error {
	err := writeFile(path, 0700, 0600, data)
	if err != nil {
		return errs.New("unable to write key to \"%s\": %v", path, err)
	}
	return nil
}

// writeFile writes to path, creating directories and files with the necessary
// permissions. The file is written next to path and renamed into place.
func writeFile(path string, dirmode, filemode os.FileMode, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirmode); err != nil {
		return errs.Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errs.Wrap(err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(filemode); err != nil {
		return errs.Combine(err, tmp.Close())
	}
	if _, err := tmp.Write(data); err != nil {
		return errs.Combine(err, tmp.Close())
	}
	if err := tmp.Sync(); err != nil {
		return errs.Combine(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(err)
	}

	return errs.Wrap(os.Rename(tmp.Name(), path))
}

// StatKeyFile reports whether a key file exists at path.
func StatKeyFile(path string) KeyFileStatus {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return NoKey
	}
	return HasKey
}

func (t KeyFileStatus) String() string {
	switch t {
	case HasKey:
		return "Key"
	default:
		return "NoKey"
	}
}
