// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator runs an executable on a simulated processor, mapping
// source lines to runtime errors and handing breakpoints to a debugger.
package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/ezrec/mipsim/asm"
	"github.com/ezrec/mipsim/cpu"
	"github.com/ezrec/mipsim/exe"
	"github.com/ezrec/mipsim/internal"
	"github.com/ezrec/mipsim/io"
	"github.com/ezrec/mipsim/isa"
)

// Debugger is given control of the emulator at a break instruction.
// Returning cpu.ErrHalt ends the program.
type Debugger interface {
	Debug(emu *Emulator) error
}

// Option configures a new emulator.
type Option func(emu *Emulator)

// Emulator state. CPU + listing + debugger.
type Emulator struct {
	Verbose   bool         // If set, enables verbose logging.
	*cpu.Cpu               // Reference to the CPU simulation.
	Program   *asm.Program // Listing of the running program, if known.
	Frequency int          // Instructions per millisecond, or 0 for unlimited.
	Debugger  Debugger     // Debugger invoked at a break, if any.

	Executable *exe.Executable // Executable that was loaded.

	memSize  uint32
	entry    uint32
	hasEntry bool
	console  *io.Console
	files    io.Files
	halted   bool
}

// WithMemorySize sets the size of memory in bytes.
func WithMemorySize(size uint32) Option {
	return func(emu *Emulator) {
		emu.memSize = size
	}
}

// WithEntry sets the initial program counter.
func WithEntry(pc uint32) Option {
	return func(emu *Emulator) {
		emu.entry = pc
		emu.hasEntry = true
	}
}

// WithConsole sets the console used by the console syscalls.
func WithConsole(con *io.Console) Option {
	return func(emu *Emulator) {
		emu.console = con
	}
}

// WithFiles sets the file system used by the file syscalls.
func WithFiles(files io.Files) Option {
	return func(emu *Emulator) {
		emu.files = files
	}
}

// WithFrequency limits execution to khz instructions per millisecond.
func WithFrequency(khz int) Option {
	return func(emu *Emulator) {
		emu.Frequency = khz
	}
}

// WithListing attaches the assembler listing, for line numbers.
func WithListing(prog *asm.Program) Option {
	return func(emu *Emulator) {
		emu.Program = prog
	}
}

// WithDebugger sets the debugger for break instructions.
func WithDebugger(dbg Debugger) Option {
	return func(emu *Emulator) {
		emu.Debugger = dbg
	}
}

// WithVerbose enables verbose logging.
func WithVerbose(verbose bool) Option {
	return func(emu *Emulator) {
		emu.Verbose = verbose
	}
}

// NewEmulator loads an executable into a new emulator.
func NewEmulator(prog *exe.Executable, opts ...Option) (emu *Emulator, err error) {
	emu = &Emulator{
		Executable: prog,
		memSize:    cpu.DEFAULT_MEMORY_SIZE,
	}

	for _, opt := range opts {
		opt(emu)
	}

	if !emu.hasEntry {
		emu.entry = prog.TextStart
	}

	emu.Cpu, err = cpu.NewCpu(prog, emu.memSize, emu.entry)
	if err != nil {
		emu = nil
		return
	}

	if emu.console != nil {
		emu.Cpu.Console = emu.console
	}
	if emu.files != nil {
		emu.Cpu.Files = emu.files
	}

	emu.Cpu.Verbose = emu.Verbose

	return
}

// Defines returns the assembler equates for a processor with the given
// memory size and segment addresses.
func Defines(memSize uint32, textStart uint32, dataStart uint32) iter.Seq2[string, string] {
	defines := map[string]string{
		"MEMORY_SIZE": fmt.Sprintf("%v", memSize),
		"TEXT_START":  fmt.Sprintf("%v", textStart),
		"DATA_START":  fmt.Sprintf("%v", dataStart),
	}

	return internal.IterSeq2Concat(internal.SortedDefines(defines),
		(&cpu.Cpu{}).Defines(),
	)
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return Defines(uint32(len(emu.Cpu.Memory)), emu.Executable.TextStart, emu.Executable.DataStart)
}

// LineNo returns the source line number of an address, or 0 if unknown.
func (emu *Emulator) LineNo(pc uint32) int {
	line, ok := emu.Program.Line(pc)
	if !ok {
		return 0
	}

	return line.LineNo
}

// Code returns the instruction at the program counter.
func (emu *Emulator) Code() isa.Instruction {
	in, _ := emu.Cpu.Fetch()
	return in
}

// Halted is set once the program has exited.
func (emu *Emulator) Halted() bool {
	return emu.halted
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.halted {
		done = true
		return
	}

	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: emu.LineNo(pc), Err: err}
		}
		if done {
			emu.halted = true
		}
	}()

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrBreak) {
		err = nil
		if emu.Debugger != nil {
			err = emu.Debugger.Debug(emu)
		}
	}

	if errors.Is(err, cpu.ErrHalt) {
		err = nil
		done = true
	}

	return
}

// Run ticks until the program exits, fails, or the context is done. With a
// Frequency set, execution is paced to the wall clock.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	var period time.Duration
	if emu.Frequency > 0 {
		period = time.Millisecond / time.Duration(emu.Frequency)
	}

	start := time.Now()
	ticks := 0

	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}

		ticks++
		if period == 0 {
			continue
		}

		ahead := time.Duration(ticks)*period - time.Since(start)
		if ahead < time.Millisecond {
			continue
		}

		timer := time.NewTimer(ahead)
		select {
		case <-ctx.Done():
			timer.Stop()
			err = ctx.Err()
			return
		case <-timer.C:
		}
	}
}
