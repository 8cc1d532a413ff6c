// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ezrec/mipsim/exe"
)

var runOpts runOptions

// runCmd runs an assembled executable.
var runCmd = &cobra.Command{
	Use:   "run BINARY",
	Short: "Run an executable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		prog, err := exe.Load(args[0])
		if err != nil {
			return
		}

		code, err := runOpts.execute(prog, nil)
		if err != nil {
			err = fmt.Errorf("%v: %w", args[0], err)
			return
		}

		os.Exit(code)
		return
	},
}

func init() {
	runOpts.flags(runCmd)
}
