// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package isa

import (
	"fmt"
)

// Operand layout used when rendering an instruction.
type shape int

const (
	shapeNone shape = iota
	shapeRdRsRt
	shapeRdRtShamt
	shapeRdRtRs
	shapeRsRt
	shapeRd
	shapeRs
	shapeRdRs
	shapeRtRsImm
	shapeRtImm
	shapeRtMem
	shapeRsRtBranch
	shapeRsBranch
	shapeJump
)

type mnemonic struct {
	name  string
	shape shape
}

var functMnemonic = map[uint8]mnemonic{
	FUNCT_SLL:     {"sll", shapeRdRtShamt},
	FUNCT_SRL:     {"srl", shapeRdRtShamt},
	FUNCT_SRA:     {"sra", shapeRdRtShamt},
	FUNCT_SLLV:    {"sllv", shapeRdRtRs},
	FUNCT_SRLV:    {"srlv", shapeRdRtRs},
	FUNCT_SRAV:    {"srav", shapeRdRtRs},
	FUNCT_JR:      {"jr", shapeRs},
	FUNCT_JALR:    {"jalr", shapeRdRs},
	FUNCT_SYSCALL: {"syscall", shapeNone},
	FUNCT_BREAK:   {"break", shapeNone},
	FUNCT_MFHI:    {"mfhi", shapeRd},
	FUNCT_MTHI:    {"mthi", shapeRs},
	FUNCT_MFLO:    {"mflo", shapeRd},
	FUNCT_MTLO:    {"mtlo", shapeRs},
	FUNCT_MULT:    {"mult", shapeRsRt},
	FUNCT_MULTU:   {"multu", shapeRsRt},
	FUNCT_DIV:     {"div", shapeRsRt},
	FUNCT_DIVU:    {"divu", shapeRsRt},
	FUNCT_ADD:     {"add", shapeRdRsRt},
	FUNCT_ADDU:    {"addu", shapeRdRsRt},
	FUNCT_SUB:     {"sub", shapeRdRsRt},
	FUNCT_SUBU:    {"subu", shapeRdRsRt},
	FUNCT_AND:     {"and", shapeRdRsRt},
	FUNCT_OR:      {"or", shapeRdRsRt},
	FUNCT_XOR:     {"xor", shapeRdRsRt},
	FUNCT_NOR:     {"nor", shapeRdRsRt},
	FUNCT_SLT:     {"slt", shapeRdRsRt},
	FUNCT_SLTU:    {"sltu", shapeRdRsRt},
}

var opcodeMnemonic = map[uint8]mnemonic{
	OP_J:     {"j", shapeJump},
	OP_JAL:   {"jal", shapeJump},
	OP_BEQ:   {"beq", shapeRsRtBranch},
	OP_BNE:   {"bne", shapeRsRtBranch},
	OP_BLEZ:  {"blez", shapeRsBranch},
	OP_BGTZ:  {"bgtz", shapeRsBranch},
	OP_ADDI:  {"addi", shapeRtRsImm},
	OP_ADDIU: {"addiu", shapeRtRsImm},
	OP_SLTI:  {"slti", shapeRtRsImm},
	OP_SLTIU: {"sltiu", shapeRtRsImm},
	OP_ANDI:  {"andi", shapeRtRsImm},
	OP_ORI:   {"ori", shapeRtRsImm},
	OP_XORI:  {"xori", shapeRtRsImm},
	OP_LUI:   {"lui", shapeRtImm},
	OP_LB:    {"lb", shapeRtMem},
	OP_LH:    {"lh", shapeRtMem},
	OP_LW:    {"lw", shapeRtMem},
	OP_LBU:   {"lbu", shapeRtMem},
	OP_LHU:   {"lhu", shapeRtMem},
	OP_SB:    {"sb", shapeRtMem},
	OP_SH:    {"sh", shapeRtMem},
	OP_SW:    {"sw", shapeRtMem},
}

var regimmMnemonic = map[uint8]mnemonic{
	RT_BLTZ:   {"bltz", shapeRsBranch},
	RT_BGEZ:   {"bgez", shapeRsBranch},
	RT_BLTZAL: {"bltzal", shapeRsBranch},
	RT_BGEZAL: {"bgezal", shapeRsBranch},
}

// Mnemonic returns the name of the operation encoded in the word, or false
// if the word does not decode to a known operation.
func (in Instruction) Mnemonic() (name string, ok bool) {
	m, ok := in.lookup()
	name = m.name
	return
}

func (in Instruction) lookup() (m mnemonic, ok bool) {
	switch in.Format() {
	case FORMAT_R:
		m, ok = functMnemonic[in.Funct()]
	default:
		if in.Opcode() == OP_REGIMM {
			m, ok = regimmMnemonic[in.Rt()]
		} else {
			m, ok = opcodeMnemonic[in.Opcode()]
		}
	}
	return
}

// String returns the assembly language rendering of the word.
func (in Instruction) String() (out string) {
	if in == 0 {
		return "nop"
	}

	m, ok := in.lookup()
	if !ok {
		return fmt.Sprintf(".word 0x%08x", uint32(in))
	}

	rs := RegisterName(in.Rs())
	rt := RegisterName(in.Rt())
	rd := RegisterName(in.Rd())

	switch m.shape {
	case shapeNone:
		out = m.name
	case shapeRdRsRt:
		out = fmt.Sprintf("%v %v,%v,%v", m.name, rd, rs, rt)
	case shapeRdRtShamt:
		out = fmt.Sprintf("%v %v,%v,%d", m.name, rd, rt, in.Shamt())
	case shapeRdRtRs:
		out = fmt.Sprintf("%v %v,%v,%v", m.name, rd, rt, rs)
	case shapeRsRt:
		out = fmt.Sprintf("%v %v,%v", m.name, rs, rt)
	case shapeRd:
		out = fmt.Sprintf("%v %v", m.name, rd)
	case shapeRs:
		out = fmt.Sprintf("%v %v", m.name, rs)
	case shapeRdRs:
		out = fmt.Sprintf("%v %v,%v", m.name, rd, rs)
	case shapeRtRsImm:
		out = fmt.Sprintf("%v %v,%v,%d", m.name, rt, rs, in.Imm16())
	case shapeRtImm:
		out = fmt.Sprintf("%v %v,0x%x", m.name, rt, uint16(in.Imm16()))
	case shapeRtMem:
		out = fmt.Sprintf("%v %v,%d(%v)", m.name, rt, in.Imm16(), rs)
	case shapeRsRtBranch:
		out = fmt.Sprintf("%v %v,%v,%+d", m.name, rs, rt, in.Imm16())
	case shapeRsBranch:
		out = fmt.Sprintf("%v %v,%+d", m.name, rs, in.Imm16())
	case shapeJump:
		out = fmt.Sprintf("%v 0x%x", m.name, in.Imm26()<<2)
	}

	return
}
