// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package io

import (
	"errors"

	"github.com/ezrec/mipsim/translate"
)

var f = translate.From

var (
	// Console errors
	ErrConsoleInput = errors.New(f("console has no input"))

	// File errors
	ErrFileMode   = errors.New(f("file mode invalid"))
	ErrFileAccess = errors.New(f("file access invalid"))
	ErrFileHandle = errors.New(f("file handle invalid"))
)
