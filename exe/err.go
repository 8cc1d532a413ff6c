// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package exe

import (
	"errors"

	"github.com/ezrec/mipsim/translate"
)

var f = translate.From

var (
	ErrFormat    = errors.New(f("executable format invalid"))
	ErrTruncated = errors.New(f("executable truncated"))
	ErrTextEmpty = errors.New(f("text segment empty"))
)

// ErrSegment reports a malformed segment header.
type ErrSegment struct {
	Segment string
	Err     error
}

func (err *ErrSegment) Error() string {
	return f("segment %v: %v", err.Segment, err.Err)
}

func (err *ErrSegment) Unwrap() error {
	return err.Err
}
