// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command mips assembles, disassembles and runs MIPS programs.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ezrec/mipsim/asm"
	"github.com/ezrec/mipsim/cpu"
	"github.com/ezrec/mipsim/debugger"
	"github.com/ezrec/mipsim/emulator"
	"github.com/ezrec/mipsim/exe"
	"github.com/ezrec/mipsim/translate"
)

var f = translate.From

var (
	verbose  bool
	language string
)

// rootCmd is the mips command, without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "mips",
	Short: "MIPS assembler and emulator",
	Long: `Mips assembles MIPS assembly source into a small executable container,
and runs executables on an emulated 32-bit MIPS processor with console,
file and timer syscalls.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if len(language) != 0 {
			return translate.SetLanguage(language)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")
	rootCmd.PersistentFlags().StringVar(&language, "lang", "", "Language of diagnostics")
}

// assembleOptions are the assembler flags shared by asm and exec.
type assembleOptions struct {
	textStart uint32
	dataStart uint32
	strict    bool
}

func (opts *assembleOptions) flags(cmd *cobra.Command) {
	cmd.Flags().Uint32Var(&opts.textStart, "text", asm.DEFAULT_TEXT_START, "Text segment address")
	cmd.Flags().Uint32Var(&opts.dataStart, "data", asm.DEFAULT_DATA_START, "Data segment address")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Unknown mnemonics are errors")
}

// assemble assembles a source file.
func (opts *assembleOptions) assemble(path string, memSize uint32) (prog *exe.Executable, listing *asm.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	as := asm.NewAssembler()
	as.Verbose = verbose
	as.Strict = opts.strict
	as.TextStart = opts.textStart
	as.DataStart = opts.dataStart

	for name, value := range emulator.Defines(memSize, as.TextStart, as.DataStart) {
		as.Predefine(name, value)
	}

	prog, err = as.Parse(inf)
	for _, warning := range as.Warnings {
		log.Printf("%v: %v", path, warning)
	}
	if err != nil {
		return
	}

	listing = as.Listing()
	return
}

// runOptions are the emulator flags shared by run and exec.
type runOptions struct {
	memory uint32
	pc     uint32
	freq   int
	tui    bool
}

func (opts *runOptions) flags(cmd *cobra.Command) {
	cmd.Flags().Uint32Var(&opts.memory, "memory", cpu.DEFAULT_MEMORY_SIZE, "Memory size in bytes")
	cmd.Flags().Uint32Var(&opts.pc, "pc", 0, "Entry point (default: text segment address)")
	cmd.Flags().IntVar(&opts.freq, "freq", 0, "Speed limit in KHz (0 for unlimited)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "Full screen debugger at break instructions")
}

// execute runs a program to completion, returning its exit code.
func (opts *runOptions) execute(prog *exe.Executable, listing *asm.Program) (code int, err error) {
	var dbg emulator.Debugger = &debugger.Shell{Output: os.Stderr}
	if opts.tui {
		dbg = debugger.NewViewer()
	}

	options := []emulator.Option{
		emulator.WithMemorySize(opts.memory),
		emulator.WithFrequency(opts.freq),
		emulator.WithListing(listing),
		emulator.WithDebugger(dbg),
		emulator.WithVerbose(verbose),
	}
	if opts.pc != 0 {
		options = append(options, emulator.WithEntry(opts.pc))
	}

	emu, err := emulator.NewEmulator(prog, options...)
	if err != nil {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Printf("%s", f("interrupted at pc=0x%08x", emu.Pc))
	}

	if verbose {
		log.Printf("%s", f("%s instructions executed", translate.Number(int64(emu.Cpu.Ticks))))
	}

	code = emu.ExitCode
	return
}

func main() {
	rootCmd.AddCommand(asmCmd, runCmd, execCmd, disasmCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
