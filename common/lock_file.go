// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"fmt"
	"syscall"
)

// LockFile marks exclusive ownership of a directory by a single process.
// The lock is a file created atomically on acquisition and removed on
// release. A lock not released, for instance due to a crash, remains in
// place and has to be removed manually.
type LockFile interface {
	// Release removes the lock file. A lock can only be released once.
	Release() error
	// Valid reports whether the lock is still held.
	Valid() bool
}

type lockFile struct {
	path string
	fd   int
}

// CreateLockFile creates the lock file at the given path. It fails if the
// file exists already, in particular if the lock is held by another process.
func CreateLockFile(path string) (LockFile, error) {
	fd, err := syscall.Open(path, syscall.O_CREAT|syscall.O_EXCL|syscall.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", path, err)
	}
	return &lockFile{path: path, fd: fd}, nil
}

func (f *lockFile) Valid() bool {
	return f.fd != 0
}

func (f *lockFile) Release() error {
	if !f.Valid() {
		return fmt.Errorf("lock %s is not held", f.path)
	}
	if err := syscall.Close(f.fd); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", f.path, err)
	}
	if err := syscall.Unlink(f.path); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", f.path, err)
	}
	f.fd = 0
	return nil
}
