// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package asm is a two pass assembler for MIPS assembly source.
//
// Source is split into .data and .text sections. The data section is
// assembled first so that data labels are known, then the text section is
// translated one line at a time through a static mnemonic table. Label
// references are recorded as relocations and resolved once all of the
// source has been read.
package asm

import (
	"bufio"
	"io"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/mipsim/exe"
	"github.com/ezrec/mipsim/isa"
)

const (
	DEFAULT_TEXT_START = 0x0040
	DEFAULT_DATA_START = 0x0FFF

	SPACE_BITS = 24 // Largest .space reservation is 16MiB - 1.
)

// sourceLine is a line of source, and where it came from.
type sourceLine struct {
	lineno int
	text   string
}

// Assembler translates assembly source into an executable.
type Assembler struct {
	Verbose   bool   // If set, verbosely logs the assembler actions.
	Strict    bool   // If set, unknown mnemonics are fatal.
	TextStart uint32 // Load address of the text segment.
	DataStart uint32 // Load address of the data segment.

	Warnings []error // Soft diagnostics of the last Parse.

	predefine  map[string]string // Predefines
	Equate     map[string]string // Map of equates.
	Label      map[string]uint32 // Map of text labels to text offsets.
	DataLabel  map[string]uint32 // Map of data labels to data offsets.
	Relocation []Relocation      // Pending label references.

	text    []isa.Instruction
	data    []byte
	listing *Program
	exe     *exe.Executable

	lineno int    // Current line number.
	line   string // Current line text.
}

// NewAssembler returns an assembler with the default segment addresses.
func NewAssembler() *Assembler {
	return &Assembler{
		TextStart: DEFAULT_TEXT_START,
		DataStart: DEFAULT_DATA_START,
	}
}

// Predefine defines an equate that is visible to every Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// Executable returns the result of the last successful Parse.
func (asm *Assembler) Executable() (prog *exe.Executable, err error) {
	if asm.exe == nil {
		err = ErrNotAssembled
		return
	}

	prog = asm.exe
	return
}

// Listing returns the source listing of the last successful Parse.
func (asm *Assembler) Listing() *Program {
	return asm.listing
}

// reset clears the state of any prior Parse.
func (asm *Assembler) reset() {
	asm.Warnings = nil
	asm.Equate = maps.Clone(asm.predefine)
	if asm.Equate == nil {
		asm.Equate = map[string]string{}
	}
	asm.Label = map[string]uint32{}
	asm.DataLabel = map[string]uint32{}
	asm.Relocation = nil
	asm.text = nil
	asm.data = nil
	asm.listing = &Program{TextStart: asm.TextStart}
	asm.exe = nil
	asm.lineno = 0
	asm.line = ""
}

// sections splits the source into data and text lines. Lines before any
// section marker belong to the text section.
func sections(input io.Reader) (data []sourceLine, text []sourceLine, err error) {
	scanner := bufio.NewScanner(input)

	inData := false
	lineno := 0
	for scanner.Scan() {
		lineno++
		raw := scanner.Text()
		line := strings.TrimSpace(stripComment(raw))

		switch line {
		case ".data":
			inData = true
			continue
		case ".text":
			inData = false
			continue
		}

		src := sourceLine{lineno: lineno, text: strings.TrimSpace(raw)}
		if inData {
			data = append(data, src)
		} else {
			text = append(text, src)
		}
	}

	err = scanner.Err()
	return
}

// Parse assembles a source stream into an executable.
func (asm *Assembler) Parse(input io.Reader) (prog *exe.Executable, err error) {
	asm.reset()

	dataLines, textLines, err := sections(input)
	if err != nil {
		return
	}

	defer func() {
		if err == nil {
			return
		}
		if _, ok := err.(ErrSyntax); !ok {
			err = ErrSyntax{LineNo: asm.lineno, Line: asm.line, Err: err}
		}
	}()

	for _, src := range dataLines {
		asm.lineno, asm.line = src.lineno, src.text
		if asm.Verbose {
			log.Printf("asm: %v: %v", src.lineno, src.text)
		}
		err = asm.parseData(src.text)
		if err != nil {
			return
		}
	}

	for _, src := range textLines {
		asm.lineno, asm.line = src.lineno, src.text
		if asm.Verbose {
			log.Printf("asm: %v: %v", src.lineno, src.text)
		}
		err = asm.parseText(src.text)
		if err != nil {
			return
		}
	}

	err = asm.linkLabels()
	if err != nil {
		return
	}

	err = asm.linkData()
	if err != nil {
		return
	}

	asm.listing.link(asm.text)

	prog = &exe.Executable{
		TextStart: asm.TextStart,
		Text:      asm.text,
	}
	if len(asm.data) > 0 {
		prog.DataStart = asm.DataStart
		prog.Data = asm.data
	}

	asm.exe = prog

	return
}

// defineLabel records a label in the given namespace.
func (asm *Assembler) defineLabel(labels map[string]uint32, name string, offset uint32) (err error) {
	if !reLabel.MatchString(name) {
		err = ErrLabelSyntax
		return
	}

	if _, ok := labels[name]; ok {
		err = ErrLabelDuplicate
		return
	}

	if asm.Verbose {
		log.Printf("asm: label %v = 0x%x", name, offset)
	}

	labels[name] = offset
	return
}

// defineEquate handles '.equ NAME VALUE'.
func (asm *Assembler) defineEquate(words []string) (err error) {
	if len(words) != 3 || !reLabel.MatchString(words[1]) {
		err = ErrEquateSyntax
		return
	}

	name, value := words[1], words[2]
	if _, ok := asm.Equate[name]; ok {
		if _, predefined := asm.predefine[name]; !predefined {
			err = ErrEquateDuplicate
			return
		}
	}

	if asm.Verbose {
		log.Printf("asm: .equ %v %v", name, value)
	}

	asm.Equate[name] = value
	return
}

// parseText assembles one line of the text section.
func (asm *Assembler) parseText(text string) (err error) {
	line := strings.TrimSpace(stripComment(text))

	// Labels, possibly sharing the line with an instruction.
	for {
		m := reDef.FindStringSubmatch(line)
		if m == nil {
			break
		}
		err = asm.defineLabel(asm.Label, m[1], uint32(len(asm.text)*4))
		if err != nil {
			return
		}
		line = strings.TrimSpace(m[2])
	}

	if len(line) == 0 {
		return
	}

	if strings.HasPrefix(line, ".") {
		words := splitWords(line)
		if words[0] != ".equ" {
			err = asm.warn(ErrDirectiveUnknown(words[0]))
			return
		}
		return asm.defineEquate(words)
	}

	start := len(asm.text)
	err = asm.generate(line)
	if err != nil {
		return
	}

	asm.listing.Lines = append(asm.listing.Lines, Line{
		LineNo: asm.lineno,
		Offset: uint32(start * 4),
		Source: line,
		count:  len(asm.text) - start,
	})

	return
}

// warn records a soft diagnostic for the current line, or returns it
// when the assembler is strict.
func (asm *Assembler) warn(cause error) (err error) {
	if asm.Strict {
		err = cause
		return
	}

	warning := ErrSyntax{LineNo: asm.lineno, Line: asm.line, Err: cause}
	asm.Warnings = append(asm.Warnings, warning)
	log.Printf("asm: warning: %v", warning)
	return
}

// emit appends an instruction word to the text section.
func (asm *Assembler) emit(word isa.Instruction) {
	if asm.Verbose {
		log.Printf("asm: 0x%04x: %08x %v", len(asm.text)*4, uint32(word), word)
	}
	asm.text = append(asm.text, word)
}

// relocate records a relocation against the next emitted word.
func (asm *Assembler) relocate(reloc *Relocation) {
	if reloc == nil {
		return
	}

	reloc.Offset = uint32(len(asm.text) * 4)
	reloc.LineNo = asm.lineno
	reloc.Line = asm.line
	asm.Relocation = append(asm.Relocation, *reloc)
}
