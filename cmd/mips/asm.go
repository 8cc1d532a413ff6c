// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/mipsim/cpu"
)

// EXECUTABLE_EXT is the extension of assembled files.
const EXECUTABLE_EXT = ".bin"

var asmOutput string
var asmListing bool
var asmOptions assembleOptions

// asmCmd assembles a source file into an executable.
var asmCmd = &cobra.Command{
	Use:   "asm SOURCE",
	Short: "Assemble a source file",
	Long: `Asm assembles a MIPS source file into an executable. The output is
written next to the source, with a .bin extension, unless -o is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		source := args[0]

		prog, listing, err := asmOptions.assemble(source, cpu.DEFAULT_MEMORY_SIZE)
		if err != nil {
			err = fmt.Errorf("%v: %w", source, err)
			return
		}

		if asmListing {
			for _, line := range listing.Lines {
				for n, code := range line.Codes {
					text := ""
					if n == 0 {
						text = line.Source
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%08x: %08x  %4d  %s\n",
						listing.TextStart+line.Offset+uint32(n*4), uint32(code), line.LineNo, text)
				}
			}
		}

		output := asmOutput
		if len(output) == 0 {
			output = strings.TrimSuffix(source, filepath.Ext(source)) + EXECUTABLE_EXT
		}

		err = prog.Save(output)
		return
	},
}

func init() {
	asmCmd.Flags().StringVarP(&asmOutput, "output", "o", "", "Output executable")
	asmCmd.Flags().BoolVarP(&asmListing, "listing", "l", false, "Print a listing")
	asmOptions.flags(asmCmd)
}
