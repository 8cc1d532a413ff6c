// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ezrec/mipsim/exe"
	"github.com/ezrec/mipsim/internal"
	"github.com/ezrec/mipsim/io"
	"github.com/ezrec/mipsim/isa"
)

// DEFAULT_MEMORY_SIZE is the memory size used when none is given.
const DEFAULT_MEMORY_SIZE = 8192

// Cpu is the simulation context of a MIPS processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Register [isa.REGISTER_COUNT]int32 // Register bank.
	Hi       int32                     // Multiply high word, divide remainder.
	Lo       int32                     // Multiply low word, divide quotient.
	Pc       uint32                    // Program counter.
	Memory   []byte                    // Memory image.

	Console *io.Console // Console for the console syscalls.
	Files   io.Files    // File system for the file syscalls.

	// Tone plays a tone of a frequency (Hz) for a duration (ms). If wait
	// is set, it returns after the tone has finished.
	Tone func(frequency, duration int32, wait bool)

	ExitCode int // Exit code of the program, once halted.
	Ticks    int // Instructions executed.

	snapshot *State

	now   func() time.Time
	sleep func(time.Duration)
}

// NewCpu loads an executable into a new processor with memSize bytes of
// memory, and sets the program counter to pc.
func NewCpu(prog *exe.Executable, memSize uint32, pc uint32) (cpu *Cpu, err error) {
	if memSize == 0 {
		memSize = DEFAULT_MEMORY_SIZE
	}

	if pc != prog.TextStart {
		err = ErrEntryPoint
		return
	}

	cpu = &Cpu{
		Pc:      pc,
		Memory:  make([]byte, memSize),
		Console: &io.Console{Input: os.Stdin, Output: os.Stdout},
		Files:   io.NewFiles(),
		now:     time.Now,
		sleep:   time.Sleep,
	}
	cpu.Tone = cpu.bell

	err = cpu.load(prog.TextStart, prog.TextBytes())
	if err != nil {
		cpu = nil
		return
	}

	err = cpu.load(prog.DataStart, prog.Data)
	if err != nil {
		cpu = nil
		return
	}

	cpu.Register[isa.REG_SP] = int32(memSize)
	cpu.Register[isa.REG_GP] = int32(memSize)

	return
}

// load copies a segment into memory.
func (cpu *Cpu) load(addr uint32, segment []byte) (err error) {
	if len(segment) == 0 {
		return
	}

	mem, err := cpu.Bytes(addr, uint32(len(segment)))
	if err != nil {
		return
	}

	copy(mem, segment)
	return
}

// bell is the default tone, the terminal bell.
func (cpu *Cpu) bell(frequency, duration int32, wait bool) {
	cpu.Console.Bell()
	if wait && duration > 0 {
		cpu.sleep(time.Duration(duration) * time.Millisecond)
	}
}

// Defines returns the syscall numbers as assembler equates.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return internal.SortedDefines(_syscall_defines)
}

// String returns the register state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "% 5s: %08x\n", "pc", cpu.Pc)
	fmt.Fprintf(&sb, "% 5s: %08x\n", "hi", uint32(cpu.Hi))
	fmt.Fprintf(&sb, "% 5s: %08x\n", "lo", uint32(cpu.Lo))
	for n, value := range cpu.Register {
		fmt.Fprintf(&sb, "% 5s: %08x %d\n", isa.RegisterName(uint8(n)), uint32(value), value)
	}

	text = sb.String()
	return
}

// Dump returns a hex dump of a range of memory.
func (cpu *Cpu) Dump(addr uint32, count uint32) (text string, err error) {
	mem, err := cpu.Bytes(addr, count)
	if err != nil {
		return
	}

	var sb strings.Builder
	for n, b := range mem {
		if n%16 == 0 {
			if n != 0 {
				sb.WriteByte('\n')
			}
			fmt.Fprintf(&sb, "%08x:", addr+uint32(n))
		}
		fmt.Fprintf(&sb, " %02x", b)
	}
	if len(mem) > 0 {
		sb.WriteByte('\n')
	}

	text = sb.String()
	return
}

// Fetch reads the instruction word at the program counter.
func (cpu *Cpu) Fetch() (in isa.Instruction, err error) {
	word, err := cpu.Load(cpu.Pc, 4)
	if err != nil {
		return
	}

	in = isa.Instruction(word)
	return
}

// Tick fetches and executes one instruction.
func (cpu *Cpu) Tick() (err error) {
	in, err := cpu.Fetch()
	if err != nil {
		err = errors.Join(&ErrFault{Pc: cpu.Pc}, err)
		return
	}

	cpu.Ticks++

	err = cpu.Execute(in)
	return
}

// Execute executes a single decoded instruction at the program counter.
func (cpu *Cpu) Execute(in isa.Instruction) (err error) {
	pc := cpu.Pc
	defer func() {
		if err == nil || errors.Is(err, ErrHalt) || errors.Is(err, ErrBreak) {
			return
		}
		err = errors.Join(&ErrFault{Pc: pc, Instruction: in}, err)
	}()

	if cpu.Verbose {
		log.Printf("cpu: %08x: %v", pc, in)
	}

	cpu.Pc += 4

	switch in.Format() {
	case isa.FORMAT_R:
		err = cpu.executeR(in)
	case isa.FORMAT_I:
		err = cpu.executeI(in)
	case isa.FORMAT_J:
		err = cpu.executeJ(in)
	}

	return
}

// addChecked adds with a trap on signed overflow.
func addChecked(a, b int32) (sum int32, err error) {
	sum = a + b
	if (a >= 0) == (b >= 0) && (sum >= 0) != (a >= 0) {
		err = ErrOverflow
	}
	return
}

// subChecked subtracts with a trap on signed overflow.
func subChecked(a, b int32) (diff int32, err error) {
	diff = a - b
	if (a >= 0) != (b >= 0) && (diff >= 0) != (a >= 0) {
		err = ErrOverflow
	}
	return
}

func boolValue(cond bool) int32 {
	if cond {
		return 1
	}
	return 0
}

func (cpu *Cpu) executeR(in isa.Instruction) (err error) {
	funct, rs, rt, rd, shamt := in.RDecode()
	reg := &cpu.Register

	s, t := reg[rs], reg[rt]

	switch funct {
	case isa.FUNCT_ADD:
		var sum int32
		sum, err = addChecked(s, t)
		if err == nil {
			reg[rd] = sum
		}
	case isa.FUNCT_ADDU:
		reg[rd] = s + t
	case isa.FUNCT_SUB:
		var diff int32
		diff, err = subChecked(s, t)
		if err == nil {
			reg[rd] = diff
		}
	case isa.FUNCT_SUBU:
		reg[rd] = s - t
	case isa.FUNCT_AND:
		reg[rd] = s & t
	case isa.FUNCT_OR:
		reg[rd] = s | t
	case isa.FUNCT_XOR:
		reg[rd] = s ^ t
	case isa.FUNCT_NOR:
		reg[rd] = ^(s | t)
	case isa.FUNCT_SLL:
		reg[rd] = int32(uint32(t) << shamt)
	case isa.FUNCT_SRL:
		reg[rd] = int32(uint32(t) >> shamt)
	case isa.FUNCT_SRA:
		reg[rd] = t >> shamt
	case isa.FUNCT_SLLV:
		reg[rd] = int32(uint32(t) << (s & 31))
	case isa.FUNCT_SRLV:
		reg[rd] = int32(uint32(t) >> (s & 31))
	case isa.FUNCT_SRAV:
		reg[rd] = t >> (s & 31)
	case isa.FUNCT_SLT:
		reg[rd] = boolValue(s < t)
	case isa.FUNCT_SLTU:
		reg[rd] = boolValue(uint32(s) < uint32(t))
	case isa.FUNCT_MULT:
		product := int64(s) * int64(t)
		cpu.Hi, cpu.Lo = int32(product>>32), int32(product)
	case isa.FUNCT_MULTU:
		product := uint64(uint32(s)) * uint64(uint32(t))
		cpu.Hi, cpu.Lo = int32(product>>32), int32(product)
	case isa.FUNCT_DIV:
		if t == 0 {
			err = ErrDivideByZero
			return
		}
		cpu.Lo, cpu.Hi = s/t, s%t
	case isa.FUNCT_DIVU:
		if t == 0 {
			err = ErrDivideByZero
			return
		}
		cpu.Lo, cpu.Hi = int32(uint32(s)/uint32(t)), int32(uint32(s)%uint32(t))
	case isa.FUNCT_MFHI:
		reg[rd] = cpu.Hi
	case isa.FUNCT_MFLO:
		reg[rd] = cpu.Lo
	case isa.FUNCT_MTHI:
		cpu.Hi = s
	case isa.FUNCT_MTLO:
		cpu.Lo = s
	case isa.FUNCT_JR:
		cpu.Pc = uint32(s)
	case isa.FUNCT_JALR:
		reg[rd] = int32(cpu.Pc)
		cpu.Pc = uint32(s)
	case isa.FUNCT_SYSCALL:
		err = cpu.syscall()
	case isa.FUNCT_BREAK:
		err = ErrBreak
	default:
		err = ErrInstructionInvalid
	}

	return
}

// branch moves the program counter relative to the branch instruction.
// The program counter has already advanced past it.
func (cpu *Cpu) branch(cond bool, imm int16) {
	if cond {
		cpu.Pc = uint32(int32(cpu.Pc) - 4 + int32(imm)*4)
	}
}

func (cpu *Cpu) executeI(in isa.Instruction) (err error) {
	op, rs, rt, imm := in.IDecode()
	reg := &cpu.Register

	s := reg[rs]
	simm := int32(imm)
	zimm := uint32(uint16(imm))
	addr := uint32(s + simm)

	var value uint32

	switch op {
	case isa.OP_REGIMM:
		switch rt {
		case isa.RT_BLTZ:
			cpu.branch(s < 0, imm)
		case isa.RT_BGEZ:
			cpu.branch(s >= 0, imm)
		case isa.RT_BLTZAL:
			reg[isa.REG_RA] = int32(cpu.Pc)
			cpu.branch(s < 0, imm)
		case isa.RT_BGEZAL:
			reg[isa.REG_RA] = int32(cpu.Pc)
			cpu.branch(s >= 0, imm)
		default:
			err = ErrInstructionInvalid
		}
	case isa.OP_BEQ:
		cpu.branch(s == reg[rt], imm)
	case isa.OP_BNE:
		cpu.branch(s != reg[rt], imm)
	case isa.OP_BLEZ:
		cpu.branch(s <= 0, imm)
	case isa.OP_BGTZ:
		cpu.branch(s > 0, imm)
	case isa.OP_ADDI:
		var sum int32
		sum, err = addChecked(s, simm)
		if err == nil {
			reg[rt] = sum
		}
	case isa.OP_ADDIU:
		reg[rt] = s + simm
	case isa.OP_SLTI:
		reg[rt] = boolValue(s < simm)
	case isa.OP_SLTIU:
		reg[rt] = boolValue(uint32(s) < uint32(simm))
	case isa.OP_ANDI:
		reg[rt] = int32(uint32(s) & zimm)
	case isa.OP_ORI:
		reg[rt] = int32(uint32(s) | zimm)
	case isa.OP_XORI:
		reg[rt] = int32(uint32(s) ^ zimm)
	case isa.OP_LUI:
		reg[rt] = int32(zimm << 16)
	case isa.OP_LB:
		value, err = cpu.Load(addr, 1)
		if err == nil {
			reg[rt] = int32(int8(value))
		}
	case isa.OP_LBU:
		value, err = cpu.Load(addr, 1)
		if err == nil {
			reg[rt] = int32(value)
		}
	case isa.OP_LH:
		value, err = cpu.Load(addr, 2)
		if err == nil {
			reg[rt] = int32(int16(value))
		}
	case isa.OP_LHU:
		value, err = cpu.Load(addr, 2)
		if err == nil {
			reg[rt] = int32(value)
		}
	case isa.OP_LW:
		value, err = cpu.Load(addr, 4)
		if err == nil {
			reg[rt] = int32(value)
		}
	case isa.OP_SB:
		err = cpu.Store(addr, 1, uint32(reg[rt]))
	case isa.OP_SH:
		err = cpu.Store(addr, 2, uint32(reg[rt]))
	case isa.OP_SW:
		err = cpu.Store(addr, 4, uint32(reg[rt]))
	default:
		err = ErrInstructionInvalid
	}

	return
}

func (cpu *Cpu) executeJ(in isa.Instruction) (err error) {
	op, target := in.JDecode()

	switch op {
	case isa.OP_JAL:
		cpu.Register[isa.REG_RA] = int32(cpu.Pc)
	case isa.OP_J:
	default:
		err = ErrInstructionInvalid
		return
	}

	cpu.Pc = (cpu.Pc & 0xF0000000) | (target << 2)

	return
}
