// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package cpu implements the MIPS processor that runs assembled executables.
//
// The processor has 32 general purpose 32-bit registers, the hi and lo
// multiply/divide result registers, a program counter, and a flat little
// endian byte addressable memory. Each Tick fetches, decodes and executes a
// single instruction word. Programs talk to the host through a table of
// syscalls dispatched on $v0.
package cpu
