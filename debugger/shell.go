// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package debugger provides the interactive debuggers entered when a
// program executes a break instruction.
package debugger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/ezrec/mipsim/cpu"
	"github.com/ezrec/mipsim/emulator"
	"github.com/ezrec/mipsim/internal"
	mipsio "github.com/ezrec/mipsim/io"
	"github.com/ezrec/mipsim/isa"
	"github.com/ezrec/mipsim/translate"
)

var f = translate.From

// DISASM_COUNT is the default number of words shown by the disasm command.
const DISASM_COUNT = 8

// Shell is a line oriented debugger.
type Shell struct {
	Input  io.Reader // Commands. When nil, the emulator console input.
	Output io.Writer

	reader *bufio.Reader
}

var _ emulator.Debugger = (*Shell)(nil)

type command struct {
	help string
	run  func(sh *Shell, emu *emulator.Emulator, args []string) (resume bool, err error)
}

var shellCommands map[string]command

func init() {
	step := command{f("execute one instruction"), (*Shell).step}
	resume := command{f("resume execution"), (*Shell).resume}

	shellCommands = map[string]command{
		"c":       step,
		"step":    step,
		"reg":     {f("show the registers"), (*Shell).registers},
		"mem":     {f("mem ADDR N: dump N bytes at ADDR"), (*Shell).mem},
		"memdump": {f("dump memory, prompting for the address and size"), (*Shell).memdump},
		"disasm":  {f("disasm [N]: disassemble N words at the pc"), (*Shell).disasm},
		"snap":    {f("snapshot the registers and memory"), (*Shell).snap},
		"diff":    {f("compare against the snapshot"), (*Shell).diff},
		"help":    {f("show this help"), (*Shell).help},
		"q":       resume,
		"cont":    resume,
	}
}

// sortedHelp yields each command and its help, by name.
func sortedHelp() iter.Seq2[string, string] {
	help := make(map[string]string, len(shellCommands))
	for name, cmd := range shellCommands {
		help[name] = cmd.help
	}
	return internal.SortedDefines(help)
}

func (sh *Shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.Output, format, args...)
}

// readLine returns the next line of input, trimmed. Without an Input of
// its own the shell shares the console reader with the read syscalls, so
// no buffered program input is lost.
func (sh *Shell) readLine(emu *emulator.Emulator) (line string, err error) {
	if sh.Input == nil {
		line, err = emu.Cpu.Console.ReadLine()
		if errors.Is(err, mipsio.ErrConsoleInput) {
			err = io.EOF
		}
		line = strings.TrimSpace(line)
		return
	}

	if sh.reader == nil {
		sh.reader = bufio.NewReader(sh.Input)
	}

	line, err = sh.reader.ReadString('\n')
	if errors.Is(err, io.EOF) && len(line) > 0 {
		err = nil
	}
	line = strings.TrimSpace(line)

	return
}

// Debug reads and runs commands until told to resume. The end of input
// resumes execution.
func (sh *Shell) Debug(emu *emulator.Emulator) (err error) {
	sh.printf("\n")

	for {
		sh.printf("%s\n", f("Debugging mode - pc: %x - command: ", emu.Pc))

		var line string
		line, err = sh.readLine(emu)
		if errors.Is(err, io.EOF) {
			err = nil
			return
		}
		if err != nil {
			return
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		cmd, ok := shellCommands[words[0]]
		if !ok {
			sh.printf("%s\n", f("unknown command %q, try 'help'", words[0]))
			continue
		}

		var resume bool
		resume, err = cmd.run(sh, emu, words[1:])
		if err != nil || resume {
			return
		}
	}
}

func (sh *Shell) resume(emu *emulator.Emulator, args []string) (resume bool, err error) {
	resume = true
	return
}

// step executes one instruction. A break while stepping stays in the
// debugger.
func (sh *Shell) step(emu *emulator.Emulator, args []string) (resume bool, err error) {
	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrBreak) {
		err = nil
	}
	return
}

func (sh *Shell) registers(emu *emulator.Emulator, args []string) (resume bool, err error) {
	sh.printf("%s", emu.Cpu.String())
	return
}

func (sh *Shell) dump(emu *emulator.Emulator, addr uint32, count uint32) {
	text, err := emu.Dump(addr, count)
	if err != nil {
		sh.printf("%v\n", err)
		return
	}
	sh.printf("%s", text)
}

func (sh *Shell) mem(emu *emulator.Emulator, args []string) (resume bool, err error) {
	if len(args) != 2 {
		sh.printf("%s\n", shellCommands["mem"].help)
		return
	}

	addr, perr := strconv.ParseUint(args[0], 0, 32)
	count, cerr := strconv.ParseUint(args[1], 0, 32)
	if perr != nil || cerr != nil {
		sh.printf("%v\n", errors.Join(perr, cerr))
		return
	}

	sh.dump(emu, uint32(addr), uint32(count))
	return
}

// memdump prompts for a hex address and a decimal size.
func (sh *Shell) memdump(emu *emulator.Emulator, args []string) (resume bool, err error) {
	sh.printf("%s", f("Address: "))
	text, err := sh.readLine(emu)
	if err != nil {
		return
	}
	addr, perr := strconv.ParseUint(strings.TrimPrefix(text, "0x"), 16, 32)

	sh.printf("%s", f("N Bytes: "))
	text, err = sh.readLine(emu)
	if err != nil {
		return
	}
	count, cerr := strconv.ParseUint(text, 10, 32)

	if perr != nil || cerr != nil {
		sh.printf("%v\n", errors.Join(perr, cerr))
		return
	}

	sh.dump(emu, uint32(addr), uint32(count))
	return
}

func (sh *Shell) disasm(emu *emulator.Emulator, args []string) (resume bool, err error) {
	count := uint64(DISASM_COUNT)
	if len(args) > 0 {
		var perr error
		count, perr = strconv.ParseUint(args[0], 0, 16)
		if perr != nil {
			sh.printf("%v\n", perr)
			return
		}
	}

	for n := range uint32(count) {
		pc := emu.Pc + n*4
		word, lerr := emu.Load(pc, 4)
		if lerr != nil {
			break
		}
		sh.printf("%08x: %08x  %v\n", pc, word, isa.Instruction(word))
	}

	return
}

func (sh *Shell) snap(emu *emulator.Emulator, args []string) (resume bool, err error) {
	emu.Snapshot()
	return
}

func (sh *Shell) diff(emu *emulator.Emulator, args []string) (resume bool, err error) {
	_, cerr := emu.Compare()
	if cerr != nil && !errors.Is(cerr, cpu.ErrNoSnapshot) {
		err = cerr
	}
	return
}

func (sh *Shell) help(emu *emulator.Emulator, args []string) (resume bool, err error) {
	for name, help := range sortedHelp() {
		sh.printf("%-8s %s\n", name, help)
	}
	return
}
