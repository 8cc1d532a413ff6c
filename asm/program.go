// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"iter"

	"github.com/ezrec/mipsim/isa"
)

// Line is a source line and the words it assembled to.
type Line struct {
	LineNo int               // Source line number.
	Offset uint32            // Text offset of the first word.
	Source string            // Source text, without comments.
	Codes  []isa.Instruction // Assembled words.

	count int
}

// Program is the listing of an assembled text section.
type Program struct {
	TextStart uint32
	Lines     []Line
}

// link fills in the final words of each line.
func (prog *Program) link(text []isa.Instruction) {
	for n := range prog.Lines {
		line := &prog.Lines[n]
		index := int(line.Offset / 4)
		line.Codes = text[index : index+line.count]
	}
}

// Line returns the source line that contains an absolute address.
func (prog *Program) Line(pc uint32) (line *Line, ok bool) {
	if prog == nil || pc < prog.TextStart {
		return
	}

	offset := pc - prog.TextStart
	for n := range prog.Lines {
		l := &prog.Lines[n]
		if offset >= l.Offset && offset < l.Offset+uint32(len(l.Codes))*4 {
			line = l
			ok = true
			return
		}
	}

	return
}

// Codes iterates over each word and its absolute address.
func (prog *Program) Codes() iter.Seq2[uint32, isa.Instruction] {
	return func(yield func(pc uint32, code isa.Instruction) bool) {
		for _, line := range prog.Lines {
			pc := prog.TextStart + line.Offset
			for n, code := range line.Codes {
				if !yield(pc+uint32(n*4), code) {
					return
				}
			}
		}
	}
}
