// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

//go:build !unix

package io

import (
	"errors"
	"io"
	"os"
	"sync"
)

// osFiles keeps a handle table of open files.
type osFiles struct {
	mutex  sync.Mutex
	next   int32
	opened map[int32]*os.File
}

// NewFiles returns the host file system.
func NewFiles() Files {
	return &osFiles{
		next:   3,
		opened: map[int32]*os.File{},
	}
}

func (of *osFiles) file(fd int32) (file *os.File, err error) {
	of.mutex.Lock()
	defer of.mutex.Unlock()

	file, ok := of.opened[fd]
	if !ok {
		err = ErrFileHandle
	}
	return
}

func (of *osFiles) Open(path string, mode, access int32) (fd int32, err error) {
	flags, err := openFlags(mode, access)
	if err != nil {
		return
	}

	file, err := os.OpenFile(path, flags, FILE_PERM)
	if err != nil {
		return
	}

	of.mutex.Lock()
	defer of.mutex.Unlock()

	fd = of.next
	of.next++
	of.opened[fd] = file

	return
}

func (of *osFiles) Read(fd int32, buf []byte) (n int, err error) {
	file, err := of.file(fd)
	if err != nil {
		return
	}

	n, err = file.Read(buf)
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return
}

func (of *osFiles) Write(fd int32, buf []byte) (n int, err error) {
	file, err := of.file(fd)
	if err != nil {
		return
	}

	return file.Write(buf)
}

func (of *osFiles) Close(fd int32) (err error) {
	file, err := of.file(fd)
	if err != nil {
		return
	}

	of.mutex.Lock()
	delete(of.opened, fd)
	of.mutex.Unlock()

	return file.Close()
}
