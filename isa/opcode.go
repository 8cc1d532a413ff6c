// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package isa

// Primary opcodes (bits 31-26).
const (
	OP_SPECIAL = uint8(0x00) // R format, operation selected by funct
	OP_REGIMM  = uint8(0x01) // branch on rs vs zero, selected by rt
	OP_J       = uint8(0x02)
	OP_JAL     = uint8(0x03)
	OP_BEQ     = uint8(0x04)
	OP_BNE     = uint8(0x05)
	OP_BLEZ    = uint8(0x06)
	OP_BGTZ    = uint8(0x07)
	OP_ADDI    = uint8(0x08)
	OP_ADDIU   = uint8(0x09)
	OP_SLTI    = uint8(0x0a)
	OP_SLTIU   = uint8(0x0b)
	OP_ANDI    = uint8(0x0c)
	OP_ORI     = uint8(0x0d)
	OP_XORI    = uint8(0x0e)
	OP_LUI     = uint8(0x0f)
	OP_LB      = uint8(0x20)
	OP_LH      = uint8(0x21)
	OP_LW      = uint8(0x23)
	OP_LBU     = uint8(0x24)
	OP_LHU     = uint8(0x25)
	OP_SB      = uint8(0x28)
	OP_SH      = uint8(0x29)
	OP_SW      = uint8(0x2b)
)

// Function codes of OP_SPECIAL (bits 5-0).
const (
	FUNCT_SLL     = uint8(0x00)
	FUNCT_SRL     = uint8(0x02)
	FUNCT_SRA     = uint8(0x03)
	FUNCT_SLLV    = uint8(0x04)
	FUNCT_SRLV    = uint8(0x06)
	FUNCT_SRAV    = uint8(0x07)
	FUNCT_JR      = uint8(0x08)
	FUNCT_JALR    = uint8(0x09)
	FUNCT_SYSCALL = uint8(0x0c)
	FUNCT_BREAK   = uint8(0x0d)
	FUNCT_MFHI    = uint8(0x10)
	FUNCT_MTHI    = uint8(0x11)
	FUNCT_MFLO    = uint8(0x12)
	FUNCT_MTLO    = uint8(0x13)
	FUNCT_MULT    = uint8(0x18)
	FUNCT_MULTU   = uint8(0x19)
	FUNCT_DIV     = uint8(0x1a)
	FUNCT_DIVU    = uint8(0x1b)
	FUNCT_ADD     = uint8(0x20)
	FUNCT_ADDU    = uint8(0x21)
	FUNCT_SUB     = uint8(0x22)
	FUNCT_SUBU    = uint8(0x23)
	FUNCT_AND     = uint8(0x24)
	FUNCT_OR      = uint8(0x25)
	FUNCT_XOR     = uint8(0x26)
	FUNCT_NOR     = uint8(0x27)
	FUNCT_SLT     = uint8(0x2a)
	FUNCT_SLTU    = uint8(0x2b)
)

// Branch selectors of OP_REGIMM, stored in the rt field.
const (
	RT_BLTZ   = uint8(0x00)
	RT_BGEZ   = uint8(0x01)
	RT_BLTZAL = uint8(0x10)
	RT_BGEZAL = uint8(0x11)
)
