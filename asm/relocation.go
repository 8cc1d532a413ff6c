// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"log"
	"math"

	"github.com/ezrec/mipsim/isa"
)

// RelocKind selects how a relocation is resolved.
type RelocKind int

//go:generate go tool stringer -linecomment -type=RelocKind
const (
	RELOC_NONE      = RelocKind(0) // none
	RELOC_BRANCH    = RelocKind(1) // branch
	RELOC_JUMP      = RelocKind(2) // jump
	RELOC_DATA      = RelocKind(3) // data
	RELOC_DATA_HIGH = RelocKind(4) // data[31:16]
	RELOC_DATA_LOW  = RelocKind(5) // data[15:0]
)

// Relocation is an instruction field that refers to a symbol whose
// address is not known until all of the source has been read.
type Relocation struct {
	Offset uint32    // Byte offset of the instruction in the text segment.
	Symbol string    // Label referenced.
	Kind   RelocKind // Resolution rule.
	LineNo int       // Source line, for diagnostics.
	Line   string
}

func (rel *Relocation) syntax(err error) error {
	return ErrSyntax{LineNo: rel.LineNo, Line: rel.Line, Err: err}
}

// linkLabels resolves branch and jump relocations against text labels.
func (asm *Assembler) linkLabels() (err error) {
	for n := range asm.Relocation {
		rel := &asm.Relocation[n]
		if rel.Kind != RELOC_BRANCH && rel.Kind != RELOC_JUMP {
			continue
		}

		target, ok := asm.Label[rel.Symbol]
		if !ok {
			return rel.syntax(ErrLabelMissing(rel.Symbol))
		}

		index := rel.Offset / 4
		word := asm.text[index]

		switch word.Format() {
		case isa.FORMAT_I:
			if rel.Kind != RELOC_BRANCH {
				return rel.syntax(ErrRelocationFormat)
			}
			// Words from the branch instruction itself.
			disp := (int64(target) - int64(rel.Offset)) / 4
			if disp < math.MinInt16 || disp > math.MaxInt16 {
				return rel.syntax(ErrBranchRange)
			}
			word = word.WithImm16(int16(disp))
		case isa.FORMAT_J:
			if rel.Kind != RELOC_JUMP {
				return rel.syntax(ErrRelocationFormat)
			}
			addr := (uint64(asm.TextStart) + uint64(target)) / 4
			if addr > 0x3ffffff {
				return rel.syntax(ErrJumpRange)
			}
			word = word.WithImm26(uint32(addr))
		default:
			log.Fatalf("asm: %v relocation of '%v' on R format word at 0x%x", rel.Kind, rel.Symbol, rel.Offset)
		}

		if asm.Verbose {
			log.Printf("asm: link %v %v @0x%x: %v", rel.Kind, rel.Symbol, rel.Offset, word)
		}

		asm.text[index] = word
	}

	return
}

// address resolves a symbol to its absolute address, data labels first.
func (asm *Assembler) address(symbol string) (addr uint32, ok bool) {
	offset, ok := asm.DataLabel[symbol]
	if ok {
		addr = asm.DataStart + offset
		return
	}

	offset, ok = asm.Label[symbol]
	if ok {
		addr = asm.TextStart + offset
		return
	}

	return
}

// linkData resolves data address relocations.
func (asm *Assembler) linkData() (err error) {
	for n := range asm.Relocation {
		rel := &asm.Relocation[n]

		var value uint32
		switch rel.Kind {
		case RELOC_DATA, RELOC_DATA_HIGH, RELOC_DATA_LOW:
			addr, ok := asm.address(rel.Symbol)
			if !ok {
				return rel.syntax(ErrLabelMissing(rel.Symbol))
			}
			switch rel.Kind {
			case RELOC_DATA_HIGH:
				value = addr >> 16
			case RELOC_DATA_LOW:
				value = addr & 0xffff
			default:
				if addr > 0xffff {
					return rel.syntax(ErrRange{Value: int64(addr), Bits: 16})
				}
				value = addr
			}
		default:
			continue
		}

		index := rel.Offset / 4
		word := asm.text[index]
		if word.Format() != isa.FORMAT_I {
			return rel.syntax(ErrRelocationFormat)
		}

		word = word.WithImm16(int16(uint16(value)))
		if asm.Verbose {
			log.Printf("asm: link %v %v @0x%x: %v", rel.Kind, rel.Symbol, rel.Offset, word)
		}
		asm.text[index] = word
	}

	return
}
