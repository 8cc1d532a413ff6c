// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

//go:build unix

package io

import (
	"errors"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// rawFiles hands out the host's own file descriptors as handles.
type rawFiles struct {
	mutex  sync.Mutex
	opened map[int32]bool
}

// NewFiles returns the host file system.
func NewFiles() Files {
	return &rawFiles{
		opened: map[int32]bool{},
	}
}

func (rf *rawFiles) check(fd int32) (err error) {
	rf.mutex.Lock()
	defer rf.mutex.Unlock()

	if !rf.opened[fd] {
		err = ErrFileHandle
	}
	return
}

func (rf *rawFiles) Open(path string, mode, access int32) (fd int32, err error) {
	flags, err := openFlags(mode, access)
	if err != nil {
		return
	}

	raw, err := unix.Open(path, flags|unix.O_CLOEXEC, FILE_PERM)
	if err != nil {
		err = &os.PathError{Op: "open", Path: path, Err: err}
		return
	}

	fd = int32(raw)

	rf.mutex.Lock()
	rf.opened[fd] = true
	rf.mutex.Unlock()

	return
}

func (rf *rawFiles) Read(fd int32, buf []byte) (n int, err error) {
	err = rf.check(fd)
	if err != nil {
		return
	}

	for {
		n, err = unix.Read(int(fd), buf)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	return
}

func (rf *rawFiles) Write(fd int32, buf []byte) (n int, err error) {
	err = rf.check(fd)
	if err != nil {
		return
	}

	for len(buf) > 0 {
		var wrote int
		wrote, err = unix.Write(int(fd), buf)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return
		}
		if wrote == 0 {
			err = unix.EIO
			return
		}
		n += wrote
		buf = buf[wrote:]
	}
	return
}

func (rf *rawFiles) Close(fd int32) (err error) {
	err = rf.check(fd)
	if err != nil {
		return
	}

	rf.mutex.Lock()
	delete(rf.opened, fd)
	rf.mutex.Unlock()

	return unix.Close(int(fd))
}
