// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"errors"

	"github.com/ezrec/mipsim/translate"
)

var f = translate.From

var (
	ErrNotAssembled       = errors.New(f("no program assembled"))
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelSyntax        = errors.New(f("label syntax"))
	ErrDirectiveInvalid   = errors.New(f("directive invalid"))
	ErrOperandCount       = errors.New(f("wrong number of operands"))
	ErrRegisterMissing    = errors.New(f("register missing"))
	ErrMemoryOperand      = errors.New(f("memory operand invalid"))
	ErrStringSyntax       = errors.New(f("string syntax"))
	ErrSliceInvalid       = errors.New(f("bit slice invalid"))
	ErrBranchRange        = errors.New(f("branch target out of range"))
	ErrJumpRange          = errors.New(f("jump target out of range"))
	ErrRelocationFormat   = errors.New(f("relocation on wrong instruction format"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrLabelMissing is an unresolved label.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrRegisterInvalid is an operand that is not a register name.
type ErrRegisterInvalid string

func (err ErrRegisterInvalid) Error() string {
	return f("'%v' is not a register", string(err))
}

// ErrMnemonicUnknown is a mnemonic with no encoding rule.
type ErrMnemonicUnknown string

func (err ErrMnemonicUnknown) Error() string {
	return f("no encoding for mnemonic '%v'", string(err))
}

func (err ErrMnemonicUnknown) Is(target error) bool {
	return target == ErrInstructionInvalid
}

// ErrDirectiveUnknown is a text section directive other than .equ.
type ErrDirectiveUnknown string

func (err ErrDirectiveUnknown) Error() string {
	return f("directive '%v' ignored in text section", string(err))
}

func (err ErrDirectiveUnknown) Is(target error) bool {
	return target == ErrDirectiveInvalid
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrRange is a value that does not fit its field.
type ErrRange struct {
	Value int64
	Bits  int
}

func (err ErrRange) Error() string {
	return f("%v does not fit in %v bits", err.Value, err.Bits)
}

// ErrSyntax locates an assembly error in the source.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
