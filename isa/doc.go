// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package isa implements the instruction word codec of the 32-bit MIPS
// subset understood by the assembler and the processor.
//
// An instruction word is one of three fixed layouts, selected by its
// opcode field:
//
//	R: opcode(6) rs(5) rt(5) rd(5) shamt(5) funct(6)
//	I: opcode(6) rs(5) rt(5) immediate(16)
//	J: opcode(6) target(26)
//
// Field accessors never check that the field is meaningful for the
// word's format; callers pick the accessor that matches the opcode.
package isa
