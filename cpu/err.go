// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"

	"github.com/ezrec/mipsim/isa"
	"github.com/ezrec/mipsim/translate"
)

var f = translate.From

var (
	// Execution signals
	ErrHalt  = errors.New(f("halted"))
	ErrBreak = errors.New(f("break"))

	// Execution faults
	ErrOverflow           = errors.New(f("arithmetic overflow"))
	ErrDivideByZero       = errors.New(f("divide by zero"))
	ErrMemoryBounds       = errors.New(f("memory access out of bounds"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))

	// Setup errors
	ErrEntryPoint = errors.New(f("entry point is not the text start"))

	// Introspection errors
	ErrNoSnapshot = errors.New(f("no snapshot"))
)

// ErrFault names the instruction that faulted.
type ErrFault struct {
	Pc          uint32
	Instruction isa.Instruction
}

func (err *ErrFault) Error() string {
	return f("fault at 0x%08x: %v", err.Pc, err.Instruction)
}

// ErrAddress is an access outside of memory.
type ErrAddress struct {
	Address uint32
	Size    uint32
}

func (err *ErrAddress) Error() string {
	return f("%v byte access at 0x%08x out of bounds", err.Size, err.Address)
}

func (err *ErrAddress) Is(target error) bool {
	return target == ErrMemoryBounds
}

// ErrSyscall is a syscall that could not be completed.
type ErrSyscall struct {
	Code int32
	Err  error
}

func (err *ErrSyscall) Error() string {
	return f("syscall %v: %v", err.Code, err.Err)
}

func (err *ErrSyscall) Unwrap() error {
	return err.Err
}
