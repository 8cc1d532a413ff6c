// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"os"
)

// File open modes.
const (
	MODE_CREATE_NEW     = int32(1)
	MODE_CREATE         = int32(2)
	MODE_OPEN           = int32(3)
	MODE_OPEN_OR_CREATE = int32(4)
	MODE_TRUNCATE       = int32(5)
	MODE_APPEND         = int32(6)
)

// File access modes.
const (
	ACCESS_READ       = int32(1)
	ACCESS_WRITE      = int32(2)
	ACCESS_READ_WRITE = int32(3)
)

// FILE_PERM is the permission of created files.
const FILE_PERM = 0o644

// Files is the file system used by the file syscalls. Handles are small
// non-negative integers.
type Files interface {
	// Open opens a file, returning its handle.
	Open(path string, mode, access int32) (fd int32, err error)
	// Read reads from an open handle. A zero count with no error is EOF.
	Read(fd int32, buf []byte) (n int, err error)
	// Write writes to an open handle.
	Write(fd int32, buf []byte) (n int, err error)
	// Close releases a handle.
	Close(fd int32) (err error)
}

var modeFlags = map[int32]int{
	MODE_CREATE_NEW:     os.O_CREATE | os.O_EXCL,
	MODE_CREATE:         os.O_CREATE | os.O_TRUNC,
	MODE_OPEN:           0,
	MODE_OPEN_OR_CREATE: os.O_CREATE,
	MODE_TRUNCATE:       os.O_TRUNC,
	MODE_APPEND:         os.O_CREATE | os.O_APPEND,
}

var accessFlags = map[int32]int{
	ACCESS_READ:       os.O_RDONLY,
	ACCESS_WRITE:      os.O_WRONLY,
	ACCESS_READ_WRITE: os.O_RDWR,
}

// openFlags converts a mode and access pair into open(2) flags.
func openFlags(mode, access int32) (flags int, err error) {
	mflags, ok := modeFlags[mode]
	if !ok {
		err = ErrFileMode
		return
	}

	aflags, ok := accessFlags[access]
	if !ok {
		err = ErrFileAccess
		return
	}

	// Modes that change the file need write access.
	if mflags&(os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 && access == ACCESS_READ {
		err = ErrFileAccess
		return
	}

	flags = mflags | aflags
	return
}
