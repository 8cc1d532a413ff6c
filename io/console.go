// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package io provides the host devices behind the processor syscalls: a
// line oriented console and a table of open files.
package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Console is the character device used by the console syscalls.
type Console struct {
	Input  io.Reader
	Output io.Writer

	reader *bufio.Reader
}

func (con *Console) input() (reader *bufio.Reader, err error) {
	if con.Input == nil {
		err = ErrConsoleInput
		return
	}

	if con.reader == nil {
		con.reader = bufio.NewReader(con.Input)
	}

	reader = con.reader
	return
}

// ReadLine reads a line of input, without its line ending. A final line
// without a line ending is returned without error.
func (con *Console) ReadLine() (line string, err error) {
	reader, err := con.input()
	if err != nil {
		return
	}

	line, err = reader.ReadString('\n')
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	line = strings.TrimRight(line, "\r\n")

	return
}

// ReadInt reads a line of input as a decimal integer.
func (con *Console) ReadInt() (value int32, err error) {
	line, err := con.ReadLine()
	if err != nil {
		return
	}

	v64, err := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
	if err != nil {
		return
	}

	value = int32(v64)
	return
}

// ReadByte reads a single byte of input.
func (con *Console) ReadByte() (c byte, err error) {
	reader, err := con.input()
	if err != nil {
		return
	}

	return reader.ReadByte()
}

// Write sends bytes to the output. Without an output the bytes are discarded.
func (con *Console) Write(buf []byte) (n int, err error) {
	if con.Output == nil {
		n = len(buf)
		return
	}

	return con.Output.Write(buf)
}

// Printf formats to the output.
func (con *Console) Printf(format string, args ...any) (err error) {
	_, err = fmt.Fprintf(con, format, args...)
	return
}

// Bell rings the terminal bell.
func (con *Console) Bell() (err error) {
	_, err = con.Write([]byte{'\a'})
	return
}
