// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"slices"

	"github.com/ezrec/mipsim/isa"
)

// State is a copy of the register bank and memory.
type State struct {
	Register [isa.REGISTER_COUNT]int32
	Memory   []byte

	compared bool
}

// Diff counts the differences between a snapshot and the current state.
type Diff struct {
	Registers int // Registers changed.
	Memory    int // Bytes of memory changed.
}

// Snapshot saves the register bank and memory for a later Compare. It
// reports whether a snapshot that was never compared was overwritten.
func (cpu *Cpu) Snapshot() (overwritten bool) {
	if cpu.snapshot != nil && !cpu.snapshot.compared {
		overwritten = true
		cpu.Console.Printf("%s\n", f("WARNING: overwriting snapshot without comparing"))
	}

	cpu.snapshot = &State{
		Register: cpu.Register,
		Memory:   slices.Clone(cpu.Memory),
	}

	return
}

// Compare counts the registers and memory bytes changed since the last
// Snapshot, and reports the counts on the console.
func (cpu *Cpu) Compare() (diff Diff, err error) {
	snap := cpu.snapshot
	if snap == nil {
		cpu.Console.Printf("%s\n", f("compare without a snapshot"))
		err = ErrNoSnapshot
		return
	}

	cpu.Console.Printf("%s\n", f("Comparing snapshot to current state..."))

	for n, value := range cpu.Register {
		if value != snap.Register[n] {
			diff.Registers++
		}
	}

	for n, b := range cpu.Memory {
		if n >= len(snap.Memory) || b != snap.Memory[n] {
			diff.Memory++
		}
	}

	snap.compared = true

	cpu.Console.Printf("%s\n", f("Finished comparing: %d changed registers, %d changed memory locations", diff.Registers, diff.Memory))

	return
}
