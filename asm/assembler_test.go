package asm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/mipsim/isa"
)

func assemble(t *testing.T, asm *Assembler, program ...string) []isa.Instruction {
	require := require.New(t)

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(err)
	require.NotNil(prog)

	return prog.Text
}

func TestAssemblerEmpty(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	assert.Equal(uint32(0x40), asm.TextStart)
	assert.Equal(uint32(0xfff), asm.DataStart)

	_, err := asm.Executable()
	assert.ErrorIs(err, ErrNotAssembled)

	prog, err := asm.Parse(strings.NewReader("# nothing here\n\n"))
	assert.NoError(err)
	assert.Equal(0, len(prog.Text))
	assert.Equal(0, len(prog.Data))
}

func TestAssemblerAdd(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	text := assemble(t, asm, "add $t0,$t1,$t2  # t0 = t1 + t2")
	assert.Equal([]isa.Instruction{0x012a4020}, text)

	prog, err := asm.Executable()
	assert.NoError(err)
	assert.Equal(uint32(0x40), prog.TextStart)
	assert.Equal(text, prog.Text)
}

func TestAssemblerShapes(t *testing.T) {
	assert := assert.New(t)

	cases := map[string]isa.Instruction{
		"sub $v0, $a0, $a1":   isa.MakeR(isa.FUNCT_SUB, 4, 5, 2, 0),
		"sll $t0,$t1,4":       isa.MakeR(isa.FUNCT_SLL, 0, 9, 8, 4),
		"srl $t0,$t1,31":      isa.MakeR(isa.FUNCT_SRL, 0, 9, 8, 31),
		"srlv $t0,$t1,$t2":    isa.MakeR(isa.FUNCT_SRLV, 10, 9, 8, 0),
		"mult $t0,$t1":        isa.MakeR(isa.FUNCT_MULT, 8, 9, 0, 0),
		"mfhi $v1":            isa.MakeR(isa.FUNCT_MFHI, 0, 0, 3, 0),
		"mtlo $s0":            isa.MakeR(isa.FUNCT_MTLO, 16, 0, 0, 0),
		"jr $ra":              isa.MakeR(isa.FUNCT_JR, 31, 0, 0, 0),
		"jalr $t9":            isa.MakeR(isa.FUNCT_JALR, 25, 0, 31, 0),
		"jalr $s1,$t9":        isa.MakeR(isa.FUNCT_JALR, 25, 0, 17, 0),
		"syscall":             isa.MakeR(isa.FUNCT_SYSCALL, 0, 0, 0, 0),
		"break":               isa.MakeR(isa.FUNCT_BREAK, 0, 0, 0, 0),
		"nop":                 0,
		"addi $t0,$t1,-4":     isa.MakeI(isa.OP_ADDI, 9, 8, -4),
		"ori $t0,$t0,0xffff":  isa.MakeI(isa.OP_ORI, 8, 8, -1),
		"andi $t0,$t0,'A'":    isa.MakeI(isa.OP_ANDI, 8, 8, 'A'),
		"lui $at,0x1234":      isa.MakeI(isa.OP_LUI, 0, 1, 0x1234),
		"lw $t0,8($sp)":       isa.MakeI(isa.OP_LW, 29, 8, 8),
		"sb $t0,-1($a0)":      isa.MakeI(isa.OP_SB, 4, 8, -1),
		"lhu $t0,($a0)":       isa.MakeI(isa.OP_LHU, 4, 8, 0),
		"sw $t0, 0x10($gp)":   isa.MakeI(isa.OP_SW, 28, 8, 0x10),
		"slti $t0,$t1,$(3*4)": isa.MakeI(isa.OP_SLTI, 9, 8, 12),
		"add $8,$9,$10":       0x012a4020,
	}

	for line, word := range cases {
		asm := NewAssembler()
		text := assemble(t, asm, line)
		assert.Equal([]isa.Instruction{word}, text, line)
	}
}

func TestAssemblerPseudo(t *testing.T) {
	assert := assert.New(t)

	cases := map[string][]isa.Instruction{
		"move $t3,$t2":      {isa.MakeR(isa.FUNCT_ADD, 10, 0, 11, 0)},
		"clear $t0":         {isa.MakeR(isa.FUNCT_ADD, 0, 0, 8, 0)},
		"not $t0,$t1":       {isa.MakeR(isa.FUNCT_NOR, 9, 0, 8, 0)},
		"neg $t0,$t1":       {isa.MakeR(isa.FUNCT_SUB, 0, 9, 8, 0)},
		"li $t2,5":          {isa.MakeI(isa.OP_LUI, 0, 10, 0), isa.MakeI(isa.OP_ORI, 10, 10, 5)},
		"li $t2,-1":         {isa.MakeI(isa.OP_LUI, 0, 10, -1), isa.MakeI(isa.OP_ORI, 10, 10, -1)},
		"li $t2,0x12345678": {isa.MakeI(isa.OP_LUI, 0, 10, 0x1234), isa.MakeI(isa.OP_ORI, 10, 10, 0x5678)},
		"mul $t0,$t1,$t2":   {isa.MakeR(isa.FUNCT_MULT, 9, 10, 0, 0), isa.MakeR(isa.FUNCT_MFLO, 0, 0, 8, 0)},
		"quo $t0,$t1,$t2":   {isa.MakeR(isa.FUNCT_DIV, 9, 10, 0, 0), isa.MakeR(isa.FUNCT_MFLO, 0, 0, 8, 0)},
		"rem $t0,$t1,$t2":   {isa.MakeR(isa.FUNCT_DIV, 9, 10, 0, 0), isa.MakeR(isa.FUNCT_MFHI, 0, 0, 8, 0)},
		"remu $t0,$t1,$t2":  {isa.MakeR(isa.FUNCT_DIVU, 9, 10, 0, 0), isa.MakeR(isa.FUNCT_MFHI, 0, 0, 8, 0)},
		"ret":               {isa.MakeR(isa.FUNCT_JR, 31, 0, 0, 0)},
		"noop":              {0},
	}

	for line, words := range cases {
		asm := NewAssembler()
		text := assemble(t, asm, line)
		assert.Equal(words, text, line)
	}
}

func TestAssemblerBranchForward(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	text := assemble(t, asm,
		"beq $t0,$t1,done",
		"li $t2,5",
		"move $t3,$t2",
		"done: syscall",
	)

	assert.Equal([]isa.Instruction{
		isa.MakeI(isa.OP_BEQ, 8, 9, 4),
		isa.MakeI(isa.OP_LUI, 0, 10, 0),
		isa.MakeI(isa.OP_ORI, 10, 10, 5),
		isa.MakeR(isa.FUNCT_ADD, 10, 0, 11, 0),
		isa.MakeR(isa.FUNCT_SYSCALL, 0, 0, 0, 0),
	}, text)
	assert.Equal(uint32(16), asm.Label["done"])
}

func TestAssemblerBranchBackward(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	text := assemble(t, asm,
		"loop:",
		"  addi $t0,$t0,-1",
		"  bgtz $t0,loop",
		"  bnez $t0,loop",
	)

	assert.Equal([]isa.Instruction{
		isa.MakeI(isa.OP_ADDI, 8, 8, -1),
		isa.MakeI(isa.OP_BGTZ, 8, 0, -1),
		isa.MakeI(isa.OP_BNE, 8, 0, -2),
	}, text)
}

func TestAssemblerBranchDisplacement(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	text := assemble(t, asm,
		"beq $zero,$zero,L",
		"nop",
		"nop",
		"L: nop",
	)

	// (label - branch) / 4
	assert.Equal(int16(3), text[0].Imm16())
	assert.Equal(uint32(12), asm.Label["L"])
}

func TestAssemblerBranchCompare(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	text := assemble(t, asm,
		"x: bgt $t0,$t1,x",
		"ble $t0,$t1,x",
		"bltu $t0,$t1,x",
		"bal x",
	)

	assert.Equal([]isa.Instruction{
		isa.MakeR(isa.FUNCT_SLT, 9, 8, 1, 0),
		isa.MakeI(isa.OP_BNE, 1, 0, -1),
		isa.MakeR(isa.FUNCT_SLT, 9, 8, 1, 0),
		isa.MakeI(isa.OP_BEQ, 1, 0, -3),
		isa.MakeR(isa.FUNCT_SLTU, 8, 9, 1, 0),
		isa.MakeI(isa.OP_BNE, 1, 0, -5),
		isa.MakeI(isa.OP_REGIMM, 0, isa.RT_BGEZAL, -6),
	}, text)
}

func TestAssemblerBranchLiteral(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	text := assemble(t, asm,
		"beq $t0,5,done",
		"done: nop",
	)

	assert.Equal([]isa.Instruction{
		isa.MakeI(isa.OP_LUI, 0, 1, 0),
		isa.MakeI(isa.OP_ORI, 1, 1, 5),
		isa.MakeI(isa.OP_BEQ, 8, 1, 1),
		0,
	}, text)
}

func TestAssemblerBranchRange(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	_, err := asm.Parse(strings.NewReader("beq $t0,$t1,far\n" + strings.Repeat("nop\n", 0x8000) + "far: nop\n"))
	assert.ErrorIs(err, ErrBranchRange)

	var syn ErrSyntax
	assert.True(errors.As(err, &syn))
	assert.Equal(1, syn.LineNo)
}

func TestAssemblerJump(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	text := assemble(t, asm,
		"j target",
		"nop", "nop", "nop", "nop", "nop", "nop", "nop",
		"target: jal target",
	)

	assert.Equal(uint32(0x20), asm.Label["target"])
	assert.Equal(isa.MakeJ(isa.OP_J, (0x40+0x20)/4), text[0])
	assert.Equal(isa.MakeJ(isa.OP_JAL, (0x40+0x20)/4), text[8])
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	asm := NewAssembler()
	asm.DataStart = 0x12340

	source := []string{
		".data",
		"msg:   .asciiz \"hi\\n\"  # greeting",
		"buf:   .space 4",
		"bytes: .byte 1, -1, 'A'",
		"half:  .halfword 0x1234",
		"       .half -2",
		"word:  .word -2, 0x01020304",
		"raw:   .ascii \"a#b\"",
		".text",
		"la $a0,buf",
		"la $a1,main",
		"main: nop",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(source, "\n")))
	require.NoError(err)

	assert.Equal(uint32(0x12340), prog.DataStart)
	assert.Equal([]byte{
		'h', 'i', '\n', 0,
		0, 0, 0, 0,
		1, 0xff, 'A',
		0x34, 0x12,
		0xfe, 0xff,
		0xfe, 0xff, 0xff, 0xff, 0x04, 0x03, 0x02, 0x01,
		'a', '#', 'b',
	}, prog.Data)

	assert.Equal(uint32(4), asm.DataLabel["buf"])
	assert.Equal(uint32(23), asm.DataLabel["raw"])

	hi := uint32(uint16(prog.Text[0].Imm16()))
	lo := uint32(uint16(prog.Text[1].Imm16()))
	assert.Equal(uint32(0x12344), hi<<16|lo)
	assert.Equal(isa.MakeI(isa.OP_LUI, 0, 4, 1), prog.Text[0])
	assert.Equal(isa.MakeI(isa.OP_ORI, 4, 4, 0x2344), prog.Text[1])

	// Text labels resolve to absolute addresses.
	assert.Equal(isa.MakeI(isa.OP_LUI, 0, 5, 0), prog.Text[2])
	assert.Equal(isa.MakeI(isa.OP_ORI, 5, 5, 0x50), prog.Text[3])

	// A bare data label must fit 16 bits.
	asm.DataStart = 0x100
	source = append(source, "addi $a2,$zero,raw")
	prog, err = asm.Parse(strings.NewReader(strings.Join(source, "\n")))
	require.NoError(err)
	assert.Equal(isa.MakeI(isa.OP_ADDI, 0, 6, 0x117), prog.Text[5])

	asm.DataStart = 0x12340
	_, err = asm.Parse(strings.NewReader(".data\nx: .byte 1\n.text\naddi $t0,$zero,x\n"))
	assert.ErrorIs(err, ErrRange{Value: 0x12340, Bits: 16})
}

func TestAssemblerDataErrors(t *testing.T) {
	assert := assert.New(t)

	cases := map[string]error{
		".byte 256":              ErrRange{Value: 256, Bits: 8},
		".byte -129":             ErrRange{Value: -129, Bits: 8},
		".half 0x10000":          ErrRange{Value: 0x10000, Bits: 16},
		".word 0x100000000":      ErrParseNumber("0x100000000"),
		".ascii hello":           ErrStringSyntax,
		".ascii \"\\q\"":         ErrStringSyntax,
		".float 1.0":             ErrDirectiveInvalid,
		".space 0x1000000":       ErrRange{Value: 0x1000000, Bits: SPACE_BITS},
		".space 0x7fffffff":      ErrRange{Value: 0x7fffffff, Bits: SPACE_BITS},
		".space -1":              ErrRange{Value: -1, Bits: SPACE_BITS},
		".byte":                  ErrOperandCount,
		"x: .byte 1\nx: .byte 2": ErrLabelDuplicate,
	}

	for line, expected := range cases {
		asm := NewAssembler()
		_, err := asm.Parse(strings.NewReader(".data\n" + line))
		assert.ErrorIs(err, expected, line)
	}
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	asm.Predefine("SYS_EXIT", "10")

	text := assemble(t, asm,
		".equ COUNT 10",
		".equ PTR $t0",
		"addi PTR,$zero,COUNT",
		"addi $t1,$zero,$(COUNT * 2 + 1)",
		"addi $v0,$zero,SYS_EXIT",
	)

	assert.Equal([]isa.Instruction{
		isa.MakeI(isa.OP_ADDI, 0, 8, 10),
		isa.MakeI(isa.OP_ADDI, 0, 9, 21),
		isa.MakeI(isa.OP_ADDI, 0, 2, 10),
	}, text)

	// Equates do not leak into the next Parse, predefines do.
	_, err := asm.Parse(strings.NewReader("addi $t0,$zero,COUNT"))
	assert.ErrorIs(err, ErrLabelMissing("COUNT"))
	_, err = asm.Parse(strings.NewReader("addi $t0,$zero,SYS_EXIT"))
	assert.NoError(err)

	_, err = asm.Parse(strings.NewReader(".equ A 1\n.equ A 2"))
	assert.ErrorIs(err, ErrEquateDuplicate)

	_, err = asm.Parse(strings.NewReader(".equ A"))
	assert.ErrorIs(err, ErrEquateSyntax)

	_, err = asm.Parse(strings.NewReader("addi $t0,$zero,$(1 +)"))
	assert.ErrorIs(err, ErrParseExpression("1 +"))
}

func TestAssemblerUnknownMnemonic(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	text := assemble(t, asm, "frob $t0", "syscall")
	assert.Equal([]isa.Instruction{isa.MakeR(isa.FUNCT_SYSCALL, 0, 0, 0, 0)}, text)
	assert.Equal(1, len(asm.Warnings))
	assert.ErrorIs(asm.Warnings[0], ErrInstructionInvalid)

	asm.Strict = true
	_, err := asm.Parse(strings.NewReader("syscall\nfrob $t0"))
	assert.ErrorIs(err, ErrInstructionInvalid)
	assert.ErrorIs(err, ErrMnemonicUnknown("frob"))

	var syn ErrSyntax
	assert.True(errors.As(err, &syn))
	assert.Equal(2, syn.LineNo)
	assert.Equal("frob $t0", syn.Line)

	// A failed Parse forgets the prior result.
	_, err = asm.Executable()
	assert.ErrorIs(err, ErrNotAssembled)
}

func TestAssemblerTextDirective(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	text := assemble(t, asm,
		".text",
		".globl main",
		"main: nop",
		"      .align 2",
		"      syscall",
	)
	assert.Equal([]isa.Instruction{0, isa.MakeR(isa.FUNCT_SYSCALL, 0, 0, 0, 0)}, text)
	assert.Equal(uint32(0), asm.Label["main"])
	assert.Equal(2, len(asm.Warnings))
	assert.ErrorIs(asm.Warnings[0], ErrDirectiveUnknown(".globl"))
	assert.ErrorIs(asm.Warnings[1], ErrDirectiveInvalid)

	asm.Strict = true
	_, err := asm.Parse(strings.NewReader("nop\n.globl main"))
	assert.ErrorIs(err, ErrDirectiveInvalid)

	var syn ErrSyntax
	assert.True(errors.As(err, &syn))
	assert.Equal(2, syn.LineNo)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	cases := map[string]error{
		"add $t0,$t1":         ErrOperandCount,
		"add $t0,$t1,$x":      ErrRegisterInvalid("$x"),
		"add $t0,$t1,":        ErrOperandCount,
		"lw $t0,8":            ErrMemoryOperand,
		"addi $t0,$t1,70000":  ErrRange{Value: 70000, Bits: 16},
		"sll $t0,$t1,32":      ErrRange{Value: 32, Bits: 5},
		"j nowhere":           ErrLabelMissing("nowhere"),
		"beq $t0,$t1,nowhere": ErrLabelMissing("nowhere"),
		"la $t0,nowhere":      ErrLabelMissing("nowhere"),
		"lui $t0,x[7:0]":      ErrSliceInvalid,
		"a: nop\na: nop":      ErrLabelDuplicate,
		"j 0x40":              ErrLabelSyntax,
		"li $t0,0x100000000":  ErrParseNumber("0x100000000"),
		"move $t0":            ErrOperandCount,
	}

	for line, expected := range cases {
		asm := NewAssembler()
		_, err := asm.Parse(strings.NewReader(line))
		assert.ErrorIs(err, expected, line)
	}
}

func TestAssemblerListing(t *testing.T) {
	assert := assert.New(t)

	asm := NewAssembler()
	assemble(t, asm,
		"# header",
		"main: li $t0,1",
		"",
		"      syscall",
	)

	prog := asm.Listing()
	assert.Equal(2, len(prog.Lines))

	line, ok := prog.Line(0x44)
	assert.True(ok)
	assert.Equal(2, line.LineNo)
	assert.Equal("li $t0,1", line.Source)
	assert.Equal(2, len(line.Codes))

	line, ok = prog.Line(0x48)
	assert.True(ok)
	assert.Equal(4, line.LineNo)

	_, ok = prog.Line(0x4c)
	assert.False(ok)
	_, ok = prog.Line(0x3c)
	assert.False(ok)

	var pcs []uint32
	for pc := range prog.Codes() {
		pcs = append(pcs, pc)
	}
	assert.Equal([]uint32{0x40, 0x44, 0x48}, pcs)
}

func TestSplitWords(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{"lw", "$t0", "8($sp)"}, splitWords("lw $t0, 8($sp)"))
	assert.Equal([]string{"addi", "$t0", "$zero", "$(1, 2)[0]"}, splitWords("addi $t0,$zero,$(1, 2)[0]"))
	assert.Equal([]string{"li", "$t0", "','"}, splitWords("li $t0,','"))
	assert.Equal("li $t0,'#' ", stripComment("li $t0,'#' # comment"))
	assert.Nil(splitWords("  \t "))
}
