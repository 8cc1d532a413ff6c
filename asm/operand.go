// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/mipsim/isa"
)

var (
	reLabel = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
	reSlice = regexp.MustCompile(`^([A-Za-z_.][A-Za-z0-9_.]*)\[(\d+):(\d+)\]$`)
	reDef   = regexp.MustCompile(`^([A-Za-z_.][A-Za-z0-9_.]*):\s*(.*)$`)
)

// splitWords splits a line into words on whitespace and commas, keeping
// $(...) expressions, memory operands and quoted characters whole.
func splitWords(line string) (words []string) {
	var word strings.Builder
	depth := 0
	quoted := false
	escaped := false

	flush := func() {
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}

	for _, r := range line {
		switch {
		case quoted:
			word.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '\'':
				quoted = false
			}
			continue
		case r == '\'':
			quoted = true
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (r == ',' || r == ' ' || r == '\t'):
			flush()
			continue
		}
		word.WriteRune(r)
	}
	flush()

	return
}

// stripComment removes a trailing '#' comment that is not inside a string
// or character literal.
func stripComment(line string) string {
	var quote rune
	escaped := false
	for n, r := range line {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
		case r == '"' || r == '\'':
			quote = r
		case r == '#':
			return line[:n]
		}
	}
	return line
}

// equate substitutes an equate for a word, if one is defined.
func (asm *Assembler) equate(word string) string {
	if value, ok := asm.Equate[word]; ok {
		return value
	}
	return word
}

// register parses a register operand.
func (asm *Assembler) register(word string) (reg uint8, err error) {
	if len(word) == 0 {
		err = ErrRegisterMissing
		return
	}

	word = asm.equate(word)

	reg, ok := isa.RegisterIndex(word)
	if !ok {
		err = ErrRegisterInvalid(word)
		return
	}

	return
}

// parseNumber accepts decimal or 0x prefixed hexadecimal, with an
// optional sign.
func parseNumber(word string) (value int64, err error) {
	text := word
	negative := false
	switch {
	case strings.HasPrefix(text, "-"):
		negative = true
		text = text[1:]
	case strings.HasPrefix(text, "+"):
		text = text[1:]
	}

	base := 10
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		base = 16
		text = text[2:]
	}

	u64, err := strconv.ParseUint(text, base, 64)
	if err != nil || u64 > math.MaxUint32 {
		err = ErrParseNumber(word)
		return
	}

	value = int64(u64)
	if negative {
		value = -value
	}

	return
}

// parseChar decodes a 'c' character literal.
func parseChar(word string) (value int64, err error) {
	if len(word) < 3 || word[0] != '\'' || word[len(word)-1] != '\'' {
		err = ErrParseNumber(word)
		return
	}

	body, err := unescape(word[1 : len(word)-1])
	if err != nil || len(body) != 1 {
		err = ErrParseNumber(word)
		return
	}

	value = int64(body[0])
	return
}

// unescape expands the backslash escapes accepted in strings and
// character literals.
func unescape(text string) (out []byte, err error) {
	out = make([]byte, 0, len(text))
	for n := 0; n < len(text); n++ {
		c := text[n]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		n++
		if n == len(text) {
			err = ErrStringSyntax
			return
		}
		switch text[n] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '0':
			out = append(out, 0)
		case '\\', '"', '\'':
			out = append(out, text[n])
		default:
			err = ErrStringSyntax
			return
		}
	}
	return
}

// value evaluates a numeric operand: a number, a character, an equate, or
// a $(...) compile-time expression.
func (asm *Assembler) value(word string) (value int64, err error) {
	word = asm.equate(word)

	switch {
	case strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")"):
		value, err = asm.parenEval(word[2 : len(word)-1])
	case strings.HasPrefix(word, "'"):
		value, err = parseChar(word)
	default:
		value, err = parseNumber(word)
	}

	return
}

// parenEval does compile-time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		if !isIdentifier(key) {
			continue
		}
		var v int64
		var verr error
		if strings.HasPrefix(str, "'") {
			v, verr = parseChar(str)
		} else {
			v, verr = parseNumber(str)
		}
		if verr != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	return
}

// isIdentifier reports whether a word can name a Starlark variable.
func isIdentifier(word string) bool {
	return reLabel.MatchString(word) && !strings.Contains(word, ".")
}

// ranged checks that a value fits a field of 'bits' width, taken either as
// signed or as unsigned.
func ranged(value int64, bits int) (err error) {
	lo := -(int64(1) << (bits - 1))
	hi := (int64(1) << bits) - 1
	if value < lo || value > hi {
		err = ErrRange{Value: value, Bits: bits}
	}
	return
}

// immediate parses a 16-bit immediate operand. Label operands return a
// data relocation to be resolved once all addresses are known.
func (asm *Assembler) immediate(word string) (imm int16, reloc *Relocation, err error) {
	word = asm.equate(word)

	if m := reSlice.FindStringSubmatch(word); m != nil {
		kind := RELOC_NONE
		switch {
		case m[2] == "31" && m[3] == "16":
			kind = RELOC_DATA_HIGH
		case m[2] == "15" && m[3] == "0":
			kind = RELOC_DATA_LOW
		default:
			err = ErrSliceInvalid
			return
		}
		reloc = &Relocation{Symbol: m[1], Kind: kind}
		return
	}

	value, err := asm.value(word)
	if err == nil {
		err = ranged(value, 16)
		imm = int16(uint16(value))
		return
	}

	if reLabel.MatchString(word) {
		err = nil
		reloc = &Relocation{Symbol: word, Kind: RELOC_DATA}
		return
	}

	return
}

// memory parses an imm(register) operand.
func (asm *Assembler) memory(word string) (imm int16, reg uint8, err error) {
	open := strings.LastIndex(word, "(")
	if open < 0 || !strings.HasSuffix(word, ")") {
		err = ErrMemoryOperand
		return
	}

	reg, err = asm.register(word[open+1 : len(word)-1])
	if err != nil {
		return
	}

	offset := strings.TrimSpace(word[:open])
	if len(offset) == 0 {
		return
	}

	value, err := asm.value(offset)
	if err != nil {
		return
	}
	err = ranged(value, 16)
	imm = int16(uint16(value))

	return
}

// label checks a label operand.
func (asm *Assembler) label(word string) (label string, err error) {
	label = asm.equate(word)
	if !reLabel.MatchString(label) {
		err = ErrLabelSyntax
	}
	return
}
