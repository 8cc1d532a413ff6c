// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package isa

// Instruction is a single 32-bit instruction word.
type Instruction uint32

// Field masks and positions.
const (
	opcodeShift = 26
	rsShift     = 21
	rtShift     = 16
	rdShift     = 11
	shamtShift  = 6

	opcodeMask = 0x3f
	regMask    = 0x1f
	functMask  = 0x3f
	imm16Mask  = 0xffff
	imm26Mask  = 0x3ffffff
)

// Format returns the layout of the instruction, derived from its opcode.
func (in Instruction) Format() Format {
	switch in.Opcode() {
	case OP_SPECIAL:
		return FORMAT_R
	case OP_J, OP_JAL:
		return FORMAT_J
	default:
		return FORMAT_I
	}
}

// Opcode returns bits 31-26.
func (in Instruction) Opcode() uint8 {
	return uint8((in >> opcodeShift) & opcodeMask)
}

// Rs returns bits 25-21.
func (in Instruction) Rs() uint8 {
	return uint8((in >> rsShift) & regMask)
}

// Rt returns bits 20-16.
func (in Instruction) Rt() uint8 {
	return uint8((in >> rtShift) & regMask)
}

// Rd returns bits 15-11.
func (in Instruction) Rd() uint8 {
	return uint8((in >> rdShift) & regMask)
}

// Shamt returns the shift amount, bits 10-6.
func (in Instruction) Shamt() uint8 {
	return uint8((in >> shamtShift) & regMask)
}

// Funct returns bits 5-0.
func (in Instruction) Funct() uint8 {
	return uint8(in & functMask)
}

// Imm16 returns the signed immediate of an I format word.
func (in Instruction) Imm16() int16 {
	return int16(uint16(in & imm16Mask))
}

// Imm26 returns the unsigned word target of a J format word.
func (in Instruction) Imm26() uint32 {
	return uint32(in & imm26Mask)
}

// The setters below OR their field onto the receiver and never clear bits
// already present, so each field must be set at most once on a word that
// started from zero.

// WithOpcode adds the opcode field.
func (in Instruction) WithOpcode(op uint8) Instruction {
	return in | (Instruction(op&opcodeMask) << opcodeShift)
}

// WithRs adds the rs register field.
func (in Instruction) WithRs(reg uint8) Instruction {
	return in | (Instruction(reg&regMask) << rsShift)
}

// WithRt adds the rt register field.
func (in Instruction) WithRt(reg uint8) Instruction {
	return in | (Instruction(reg&regMask) << rtShift)
}

// WithRd adds the rd register field.
func (in Instruction) WithRd(reg uint8) Instruction {
	return in | (Instruction(reg&regMask) << rdShift)
}

// WithShamt adds the shift amount field.
func (in Instruction) WithShamt(shamt uint8) Instruction {
	return in | (Instruction(shamt&regMask) << shamtShift)
}

// WithFunct adds the function field.
func (in Instruction) WithFunct(funct uint8) Instruction {
	return in | Instruction(funct&functMask)
}

// WithImm16 adds the 16-bit immediate field.
func (in Instruction) WithImm16(imm int16) Instruction {
	return in | Instruction(uint16(imm))
}

// WithImm26 adds the 26-bit jump target field.
func (in Instruction) WithImm26(target uint32) Instruction {
	return in | Instruction(target&imm26Mask)
}

// MakeR creates an R format instruction.
func MakeR(funct, rs, rt, rd, shamt uint8) Instruction {
	return Instruction(0).WithOpcode(OP_SPECIAL).WithRs(rs).WithRt(rt).WithRd(rd).WithShamt(shamt).WithFunct(funct)
}

// MakeI creates an I format instruction.
func MakeI(op, rs, rt uint8, imm int16) Instruction {
	return Instruction(0).WithOpcode(op).WithRs(rs).WithRt(rt).WithImm16(imm)
}

// MakeJ creates a J format instruction.
func MakeJ(op uint8, target uint32) Instruction {
	return Instruction(0).WithOpcode(op).WithImm26(target)
}

// RDecode returns all of the R format fields.
func (in Instruction) RDecode() (funct, rs, rt, rd, shamt uint8) {
	return in.Funct(), in.Rs(), in.Rt(), in.Rd(), in.Shamt()
}

// IDecode returns all of the I format fields.
func (in Instruction) IDecode() (op, rs, rt uint8, imm int16) {
	return in.Opcode(), in.Rs(), in.Rt(), in.Imm16()
}

// JDecode returns all of the J format fields.
func (in Instruction) JDecode() (op uint8, target uint32) {
	return in.Opcode(), in.Imm26()
}
