// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ezrec/mipsim/exe"
)

// disasmCmd lists the text segment of an executable.
var disasmCmd = &cobra.Command{
	Use:   "disasm BINARY",
	Short: "Disassemble an executable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		prog, err := exe.Load(args[0])
		if err != nil {
			return
		}

		out := cmd.OutOrStdout()
		for n, code := range prog.Text {
			fmt.Fprintf(out, "%08x: %08x  %v\n", prog.TextStart+uint32(n*4), uint32(code), code)
		}

		if len(prog.Data) != 0 {
			fmt.Fprintf(out, "%s\n", f("data: %d bytes at 0x%08x", len(prog.Data), prog.DataStart))
		}

		return
	},
}
