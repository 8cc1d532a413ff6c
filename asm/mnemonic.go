// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"fmt"
	"strings"

	"github.com/ezrec/mipsim/isa"
)

// Operand shape of a mnemonic.
type shape int

const (
	shapeNone      shape = iota // syscall
	shapeRdRsRt                 // add rd,rs,rt
	shapeRdRtShamt              // sll rd,rt,shamt
	shapeRdRtRs                 // sllv rd,rt,rs
	shapeRsRt                   // mult rs,rt
	shapeRd                     // mfhi rd
	shapeRs                     // jr rs
	shapeJalr                   // jalr [rd,]rs
	shapeRtRsImm                // addi rt,rs,imm
	shapeRtImm                  // lui rt,imm
	shapeRtMem                  // lw rt,imm(rs)
	shapeRsRtLabel              // beq rs,rt,label
	shapeRsLabel                // bgez rs,label
	shapeLabel                  // j label
	shapePseudo                 // expanded to other mnemonics
)

// operandCount is the number of operands of each fixed shape.
var operandCount = map[shape]int{
	shapeNone:      0,
	shapeRdRsRt:    3,
	shapeRdRtShamt: 3,
	shapeRdRtRs:    3,
	shapeRsRt:      2,
	shapeRd:        1,
	shapeRs:        1,
	shapeRtRsImm:   3,
	shapeRtImm:     2,
	shapeRtMem:     2,
	shapeRsRtLabel: 3,
	shapeRsLabel:   2,
	shapeLabel:     1,
}

// encoding is the rule that turns a mnemonic and its operands into
// instruction words.
type encoding struct {
	shape  shape
	op     uint8 // opcode
	funct  uint8 // R format function
	rt     uint8 // REGIMM selector
	expand func(asm *Assembler, args []string) (lines []string, err error)
}

// pseudo expands to a fixed list of template lines, where {n} is replaced
// by the n'th operand.
func pseudo(count int, templates ...string) encoding {
	return encoding{
		shape: shapePseudo,
		expand: func(asm *Assembler, args []string) (lines []string, err error) {
			if len(args) != count {
				err = ErrOperandCount
				return
			}
			pairs := make([]string, 0, 2*count)
			for n, arg := range args {
				pairs = append(pairs, fmt.Sprintf("{%d}", n), arg)
			}
			replacer := strings.NewReplacer(pairs...)
			for _, template := range templates {
				lines = append(lines, replacer.Replace(template))
			}
			return
		},
	}
}

// expandLi loads a 32-bit constant in two halves.
func expandLi(asm *Assembler, args []string) (lines []string, err error) {
	if len(args) != 2 {
		err = ErrOperandCount
		return
	}

	value, err := asm.value(args[1])
	if err != nil {
		return
	}
	err = ranged(value, 32)
	if err != nil {
		return
	}

	u := uint32(value)
	lines = []string{
		fmt.Sprintf("lui %v,0x%x", args[0], u>>16),
		fmt.Sprintf("ori %v,%v,0x%x", args[0], args[0], u&0xffff),
	}
	return
}

// mnemonics is the static mnemonic table.
var mnemonics = map[string]encoding{
	"add":  {shape: shapeRdRsRt, funct: isa.FUNCT_ADD},
	"addu": {shape: shapeRdRsRt, funct: isa.FUNCT_ADDU},
	"sub":  {shape: shapeRdRsRt, funct: isa.FUNCT_SUB},
	"subu": {shape: shapeRdRsRt, funct: isa.FUNCT_SUBU},
	"and":  {shape: shapeRdRsRt, funct: isa.FUNCT_AND},
	"or":   {shape: shapeRdRsRt, funct: isa.FUNCT_OR},
	"xor":  {shape: shapeRdRsRt, funct: isa.FUNCT_XOR},
	"nor":  {shape: shapeRdRsRt, funct: isa.FUNCT_NOR},
	"slt":  {shape: shapeRdRsRt, funct: isa.FUNCT_SLT},
	"sltu": {shape: shapeRdRsRt, funct: isa.FUNCT_SLTU},

	"sll":  {shape: shapeRdRtShamt, funct: isa.FUNCT_SLL},
	"srl":  {shape: shapeRdRtShamt, funct: isa.FUNCT_SRL},
	"sra":  {shape: shapeRdRtShamt, funct: isa.FUNCT_SRA},
	"sllv": {shape: shapeRdRtRs, funct: isa.FUNCT_SLLV},
	"srlv": {shape: shapeRdRtRs, funct: isa.FUNCT_SRLV},
	"srav": {shape: shapeRdRtRs, funct: isa.FUNCT_SRAV},

	"mult":  {shape: shapeRsRt, funct: isa.FUNCT_MULT},
	"multu": {shape: shapeRsRt, funct: isa.FUNCT_MULTU},
	"div":   {shape: shapeRsRt, funct: isa.FUNCT_DIV},
	"divu":  {shape: shapeRsRt, funct: isa.FUNCT_DIVU},
	"mfhi":  {shape: shapeRd, funct: isa.FUNCT_MFHI},
	"mflo":  {shape: shapeRd, funct: isa.FUNCT_MFLO},
	"mthi":  {shape: shapeRs, funct: isa.FUNCT_MTHI},
	"mtlo":  {shape: shapeRs, funct: isa.FUNCT_MTLO},

	"jr":      {shape: shapeRs, funct: isa.FUNCT_JR},
	"jalr":    {shape: shapeJalr, funct: isa.FUNCT_JALR},
	"syscall": {shape: shapeNone, funct: isa.FUNCT_SYSCALL},
	"break":   {shape: shapeNone, funct: isa.FUNCT_BREAK},
	"nop":     {shape: shapeNone, funct: isa.FUNCT_SLL},

	"addi":  {shape: shapeRtRsImm, op: isa.OP_ADDI},
	"addiu": {shape: shapeRtRsImm, op: isa.OP_ADDIU},
	"andi":  {shape: shapeRtRsImm, op: isa.OP_ANDI},
	"ori":   {shape: shapeRtRsImm, op: isa.OP_ORI},
	"xori":  {shape: shapeRtRsImm, op: isa.OP_XORI},
	"slti":  {shape: shapeRtRsImm, op: isa.OP_SLTI},
	"sltiu": {shape: shapeRtRsImm, op: isa.OP_SLTIU},
	"lui":   {shape: shapeRtImm, op: isa.OP_LUI},

	"lb":  {shape: shapeRtMem, op: isa.OP_LB},
	"lbu": {shape: shapeRtMem, op: isa.OP_LBU},
	"lh":  {shape: shapeRtMem, op: isa.OP_LH},
	"lhu": {shape: shapeRtMem, op: isa.OP_LHU},
	"lw":  {shape: shapeRtMem, op: isa.OP_LW},
	"sb":  {shape: shapeRtMem, op: isa.OP_SB},
	"sh":  {shape: shapeRtMem, op: isa.OP_SH},
	"sw":  {shape: shapeRtMem, op: isa.OP_SW},

	"beq":    {shape: shapeRsRtLabel, op: isa.OP_BEQ},
	"bne":    {shape: shapeRsRtLabel, op: isa.OP_BNE},
	"blez":   {shape: shapeRsLabel, op: isa.OP_BLEZ},
	"bgtz":   {shape: shapeRsLabel, op: isa.OP_BGTZ},
	"bltz":   {shape: shapeRsLabel, op: isa.OP_REGIMM, rt: isa.RT_BLTZ},
	"bgez":   {shape: shapeRsLabel, op: isa.OP_REGIMM, rt: isa.RT_BGEZ},
	"bltzal": {shape: shapeRsLabel, op: isa.OP_REGIMM, rt: isa.RT_BLTZAL},
	"bgezal": {shape: shapeRsLabel, op: isa.OP_REGIMM, rt: isa.RT_BGEZAL},
	"j":      {shape: shapeLabel, op: isa.OP_J},
	"jal":    {shape: shapeLabel, op: isa.OP_JAL},

	// Pseudo instructions. Comparisons use $at as scratch.
	"move":  pseudo(2, "add {0},{1},$zero"),
	"clear": pseudo(1, "add {0},$zero,$zero"),
	"not":   pseudo(2, "nor {0},{1},$zero"),
	"neg":   pseudo(2, "sub {0},$zero,{1}"),
	"li":    {shape: shapePseudo, expand: expandLi},
	"la":    pseudo(2, "lui {0},{1}[31:16]", "ori {0},{0},{1}[15:0]"),
	"b":     pseudo(1, "beq $zero,$zero,{0}"),
	"bal":   pseudo(1, "bgezal $zero,{0}"),
	"beqz":  pseudo(2, "beq {0},$zero,{1}"),
	"bnez":  pseudo(2, "bne {0},$zero,{1}"),
	"blt":   pseudo(3, "slt $at,{0},{1}", "bne $at,$zero,{2}"),
	"bgt":   pseudo(3, "slt $at,{1},{0}", "bne $at,$zero,{2}"),
	"ble":   pseudo(3, "slt $at,{1},{0}", "beq $at,$zero,{2}"),
	"bge":   pseudo(3, "slt $at,{0},{1}", "beq $at,$zero,{2}"),
	"bltu":  pseudo(3, "sltu $at,{0},{1}", "bne $at,$zero,{2}"),
	"bgtu":  pseudo(3, "sltu $at,{1},{0}", "bne $at,$zero,{2}"),
	"bleu":  pseudo(3, "sltu $at,{1},{0}", "beq $at,$zero,{2}"),
	"bgeu":  pseudo(3, "sltu $at,{0},{1}", "beq $at,$zero,{2}"),
	"mul":   pseudo(3, "mult {1},{2}", "mflo {0}"),
	"quo":   pseudo(3, "div {1},{2}", "mflo {0}"),
	"rem":   pseudo(3, "div {1},{2}", "mfhi {0}"),
	"remu":  pseudo(3, "divu {1},{2}", "mfhi {0}"),
	"ret":   pseudo(0, "jr $ra"),
	"noop":  pseudo(0, "nop"),
}

// generate emits the instruction words for one mnemonic line.
func (asm *Assembler) generate(line string) (err error) {
	words := splitWords(line)
	if len(words) == 0 {
		return
	}

	name, args := words[0], words[1:]

	enc, ok := mnemonics[name]
	if !ok {
		err = asm.warn(ErrMnemonicUnknown(name))
		return
	}

	if enc.shape == shapePseudo {
		var lines []string
		lines, err = enc.expand(asm, args)
		if err != nil {
			return
		}
		for _, line := range lines {
			err = asm.generate(line)
			if err != nil {
				return
			}
		}
		return
	}

	if count, ok := operandCount[enc.shape]; ok && len(args) != count {
		err = ErrOperandCount
		return
	}

	regs := make([]uint8, 3)
	registers := func(words ...string) (err error) {
		for n, word := range words {
			regs[n], err = asm.register(word)
			if err != nil {
				return
			}
		}
		return
	}

	var word isa.Instruction

	switch enc.shape {
	case shapeNone:
		word = isa.MakeR(enc.funct, 0, 0, 0, 0)
	case shapeRdRsRt:
		// rd, rs, rt
		err = registers(args[0], args[1], args[2])
		if err != nil {
			return
		}
		word = isa.MakeR(enc.funct, regs[1], regs[2], regs[0], 0)
	case shapeRdRtShamt:
		// rd, rt, shamt
		err = registers(args[0], args[1])
		if err != nil {
			return
		}
		var shamt int64
		shamt, err = asm.value(args[2])
		if err != nil {
			return
		}
		if shamt < 0 || shamt > 31 {
			err = ErrRange{Value: shamt, Bits: 5}
			return
		}
		word = isa.MakeR(enc.funct, 0, regs[1], regs[0], uint8(shamt))
	case shapeRdRtRs:
		// rd, rt, rs
		err = registers(args[0], args[1], args[2])
		if err != nil {
			return
		}
		word = isa.MakeR(enc.funct, regs[2], regs[1], regs[0], 0)
	case shapeRsRt:
		err = registers(args[0], args[1])
		if err != nil {
			return
		}
		word = isa.MakeR(enc.funct, regs[0], regs[1], 0, 0)
	case shapeRd:
		err = registers(args[0])
		if err != nil {
			return
		}
		word = isa.MakeR(enc.funct, 0, 0, regs[0], 0)
	case shapeRs:
		err = registers(args[0])
		if err != nil {
			return
		}
		word = isa.MakeR(enc.funct, regs[0], 0, 0, 0)
	case shapeJalr:
		// jalr rs => jalr $ra,rs
		switch len(args) {
		case 1:
			args = []string{"$ra", args[0]}
		case 2:
		default:
			err = ErrOperandCount
			return
		}
		err = registers(args[0], args[1])
		if err != nil {
			return
		}
		word = isa.MakeR(enc.funct, regs[1], 0, regs[0], 0)
	case shapeRtRsImm:
		err = registers(args[0], args[1])
		if err != nil {
			return
		}
		var imm int16
		var reloc *Relocation
		imm, reloc, err = asm.immediate(args[2])
		if err != nil {
			return
		}
		asm.relocate(reloc)
		word = isa.MakeI(enc.op, regs[1], regs[0], imm)
	case shapeRtImm:
		err = registers(args[0])
		if err != nil {
			return
		}
		var imm int16
		var reloc *Relocation
		imm, reloc, err = asm.immediate(args[1])
		if err != nil {
			return
		}
		asm.relocate(reloc)
		word = isa.MakeI(enc.op, 0, regs[0], imm)
	case shapeRtMem:
		err = registers(args[0])
		if err != nil {
			return
		}
		var imm int16
		var base uint8
		imm, base, err = asm.memory(args[1])
		if err != nil {
			return
		}
		word = isa.MakeI(enc.op, base, regs[0], imm)
	case shapeRsRtLabel:
		err = registers(args[0])
		if err != nil {
			return
		}
		regs[1], err = asm.register(args[1])
		if err != nil {
			// Compare against a constant, via $at.
			if _, verr := asm.value(args[1]); verr != nil {
				return
			}
			err = asm.generate(fmt.Sprintf("li $at,%v", args[1]))
			if err != nil {
				return
			}
			regs[1] = isa.REG_AT
		}
		var label string
		label, err = asm.label(args[2])
		if err != nil {
			return
		}
		asm.relocate(&Relocation{Symbol: label, Kind: RELOC_BRANCH})
		word = isa.MakeI(enc.op, regs[0], regs[1], 0)
	case shapeRsLabel:
		err = registers(args[0])
		if err != nil {
			return
		}
		var label string
		label, err = asm.label(args[1])
		if err != nil {
			return
		}
		asm.relocate(&Relocation{Symbol: label, Kind: RELOC_BRANCH})
		word = isa.MakeI(enc.op, regs[0], enc.rt, 0)
	case shapeLabel:
		var label string
		label, err = asm.label(args[0])
		if err != nil {
			return
		}
		asm.relocate(&Relocation{Symbol: label, Kind: RELOC_JUMP})
		word = isa.MakeJ(enc.op, 0)
	}

	asm.emit(word)

	return
}
