// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"encoding/binary"
	"log"
	"strings"
)

// directiveWidth is the size in bytes of each numeric data directive.
var directiveWidth = map[string]int{
	".byte":     1,
	".half":     2,
	".halfword": 2,
	".word":     4,
}

// parseData assembles one line of the data section:
//
//	[label:] .directive value...
func (asm *Assembler) parseData(text string) (err error) {
	line := strings.TrimSpace(stripComment(text))

	if m := reDef.FindStringSubmatch(line); m != nil {
		err = asm.defineLabel(asm.DataLabel, m[1], uint32(len(asm.data)))
		if err != nil {
			return
		}
		line = strings.TrimSpace(m[2])
	}

	if len(line) == 0 {
		return
	}

	directive, rest := line, ""
	if n := strings.IndexAny(line, " \t"); n >= 0 {
		directive, rest = line[:n], strings.TrimSpace(line[n:])
	}

	switch directive {
	case ".equ":
		err = asm.defineEquate(splitWords(line))
	case ".ascii", ".asciiz":
		var body []byte
		body, err = quoted(rest)
		if err != nil {
			return
		}
		asm.data = append(asm.data, body...)
		if directive == ".asciiz" {
			asm.data = append(asm.data, 0)
		}
	case ".space":
		var size int64
		size, err = asm.value(rest)
		if err != nil {
			return
		}
		if size < 0 || size >= 1<<SPACE_BITS {
			err = ErrRange{Value: size, Bits: SPACE_BITS}
			return
		}
		asm.data = append(asm.data, make([]byte, size)...)
	default:
		width, ok := directiveWidth[directive]
		if !ok {
			err = ErrDirectiveInvalid
			return
		}
		words := splitWords(rest)
		if len(words) == 0 {
			err = ErrOperandCount
			return
		}
		for _, word := range words {
			var value int64
			value, err = asm.value(word)
			if err != nil {
				return
			}
			err = ranged(value, width*8)
			if err != nil {
				return
			}
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], uint32(value))
			asm.data = append(asm.data, buf[:width]...)
		}
	}

	if asm.Verbose && err == nil {
		log.Printf("asm: data 0x%04x: %v", len(asm.data), directive)
	}

	return
}

// quoted decodes a double quoted string operand.
func quoted(text string) (body []byte, err error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		err = ErrStringSyntax
		return
	}

	body, err = unescape(text[1 : len(text)-1])
	return
}
