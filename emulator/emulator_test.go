package emulator

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/mipsim/asm"
	"github.com/ezrec/mipsim/cpu"
	"github.com/ezrec/mipsim/io"
)

// build assembles a program into a new emulator writing to out.
func build(t *testing.T, input string, program []string, opts ...Option) (emu *Emulator, out *bytes.Buffer) {
	require := require.New(t)

	as := asm.NewAssembler()
	for name, value := range Defines(cpu.DEFAULT_MEMORY_SIZE, as.TextStart, as.DataStart) {
		as.Predefine(name, value)
	}

	prog, err := as.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(err)

	out = &bytes.Buffer{}
	console := &io.Console{Input: strings.NewReader(input), Output: out}

	opts = append([]Option{WithConsole(console), WithListing(as.Listing())}, opts...)
	emu, err = NewEmulator(prog, opts...)
	require.NoError(err)

	return
}

type recorder struct {
	pcs []uint32
	err error
}

func (rec *recorder) Debug(emu *Emulator) error {
	rec.pcs = append(rec.pcs, emu.Pc)
	return rec.err
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu, _ := build(t, "", []string{"nop"}, WithMemorySize(4096))
	defines := maps.Collect(emu.Defines())

	assert.Equal("4096", defines["MEMORY_SIZE"])
	assert.Equal("64", defines["TEXT_START"])
	assert.Equal("4095", defines["DATA_START"])
	assert.Equal("10", defines["SYS_EXIT"])
	assert.Equal(4096, len(emu.Cpu.Memory))
}

func TestEmulatorOptions(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	emu, _ := build(t, "", []string{"nop"})
	prog := emu.Executable

	_, err := NewEmulator(prog, WithEntry(0x44))
	assert.ErrorIs(err, cpu.ErrEntryPoint)

	_, err = NewEmulator(prog, WithMemorySize(0x20))
	assert.ErrorIs(err, cpu.ErrMemoryBounds)

	rec := &recorder{}
	emu, err = NewEmulator(prog, WithFrequency(5), WithDebugger(rec), WithVerbose(true))
	require.NoError(err)
	assert.Equal(5, emu.Frequency)
	assert.Equal(rec, emu.Debugger)
	assert.True(emu.Verbose)
	assert.Nil(emu.Program)
	assert.Equal(0, emu.LineNo(0x40))
}

func TestEmulatorProgram(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".data",
		"msg: .asciiz \"sum=\"",
		".text",
		"li $t0,0",
		"li $t1,10",
		"loop: add $t0,$t0,$t1",
		"addi $t1,$t1,-1",
		"bgtz $t1,loop",
		"la $a0,msg",
		"li $v0,SYS_PRINT_STRING",
		"syscall",
		"move $a0,$t0",
		"li $v0,SYS_PRINT_INT",
		"syscall",
		"li $v0,SYS_EXIT",
		"syscall",
	}

	emu, out := build(t, "", program)

	var done bool
	var err error
	for range 1000 {
		line := emu.LineNo(emu.Pc)
		assert.NotZero(line)
		src, ok := emu.Program.Line(emu.Pc)
		assert.True(ok)
		assert.Contains(src.Codes, emu.Code())
		done, err = emu.Tick()
		assert.NoError(err, program[line-1])
		if done {
			break
		}
	}

	assert.True(done)
	assert.True(emu.Halted())
	assert.Equal("sum=55", out.String())

	ticks := emu.Cpu.Ticks
	done, err = emu.Tick()
	assert.True(done)
	assert.NoError(err)
	assert.Equal(ticks, emu.Cpu.Ticks)
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"li $t0,1",
		"li $t1,0",
		"div $t0,$t1",
		"li $v0,SYS_EXIT",
		"syscall",
	}

	emu, _ := build(t, "", program)
	err := emu.Run(context.Background())
	assert.ErrorIs(err, cpu.ErrDivideByZero)

	var rt *ErrRuntime
	assert.ErrorAs(err, &rt)
	assert.Equal(3, rt.LineNo)
	assert.Equal(uint32(0x50), rt.Pc)
	assert.Contains(rt.Error(), "line 3")
}

func TestEmulatorBreak(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"li $a0,1",
		"break",
		"li $v0,SYS_PRINT_INT",
		"syscall",
		"li $v0,SYS_EXIT",
		"syscall",
	}

	// Without a debugger, a break is ignored.
	emu, out := build(t, "", program)
	assert.NoError(emu.Run(context.Background()))
	assert.Equal("1", out.String())

	rec := &recorder{}
	emu, out = build(t, "", program, WithDebugger(rec))
	assert.NoError(emu.Run(context.Background()))
	assert.Equal("1", out.String())
	assert.Equal([]uint32{0x4c}, rec.pcs)

	// The debugger may end the program.
	rec = &recorder{err: cpu.ErrHalt}
	emu, out = build(t, "", program, WithDebugger(rec))
	assert.NoError(emu.Run(context.Background()))
	assert.Empty(out.String())
	assert.True(emu.Halted())

	rec = &recorder{err: errors.New("debugger failed")}
	emu, _ = build(t, "", program, WithDebugger(rec))
	err := emu.Run(context.Background())
	assert.ErrorIs(err, rec.err)
}

func TestEmulatorContext(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"loop: b loop",
	}

	emu, _ := build(t, "", program)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(emu.Run(ctx), context.Canceled)
	assert.Equal(0, emu.Cpu.Ticks)

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(emu.Run(ctx), context.DeadlineExceeded)
	assert.NotZero(emu.Cpu.Ticks)
}

func TestEmulatorFrequency(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"loop: b loop",
	}

	emu, _ := build(t, "", program, WithFrequency(1))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(emu.Run(ctx), context.DeadlineExceeded)

	// One instruction per millisecond.
	assert.Less(emu.Cpu.Ticks, 100)
}
