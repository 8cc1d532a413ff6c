// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var execAsm assembleOptions
var execRun runOptions

// execCmd assembles a source file and runs it without writing an
// executable.
var execCmd = &cobra.Command{
	Use:   "exec SOURCE",
	Short: "Assemble and run a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		source := args[0]

		prog, listing, err := execAsm.assemble(source, execRun.memory)
		if err != nil {
			err = fmt.Errorf("%v: %w", source, err)
			return
		}

		code, err := execRun.execute(prog, listing)
		if err != nil {
			err = fmt.Errorf("%v: %w", source, err)
			return
		}

		os.Exit(code)
		return
	},
}

func init() {
	execAsm.flags(execCmd)
	execRun.flags(execCmd)
}
