package debugger

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"

	"github.com/ezrec/mipsim/cpu"
)

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestViewerStep(t *testing.T) {
	assert := assert.New(t)

	emu, _ := build(t, breakProgram)

	view := NewViewer()
	view.attach(emu)

	assert.Equal(uint32(0xff0), view.MemoryAddr)
	assert.Equal("00000040", view.registers.GetCell(0, 1).Text)
	assert.Equal("$zero", view.registers.GetCell(3, 0).Text)
	assert.Contains(view.code.GetText(true), ">")

	assert.Nil(view.handleKey(key('s')))
	assert.Equal(uint32(0x44), emu.Pc)
	assert.Equal("00000044", view.registers.GetCell(0, 1).Text)
	assert.Contains(view.status.GetText(true), "stepped 0x00000040")

	code := view.code.GetText(true)
	assert.Contains(code, "> 00000044:")
	assert.Contains(code, "   1: li $t0,5")

	// Stepping over a break stays in the viewer.
	view.handleKey(key('s'))
	view.handleKey(key('s'))
	assert.NoError(view.err)
	assert.Contains(view.status.GetText(true), "break at 0x00000048")

	// Unhandled keys pass through.
	assert.NotNil(view.handleKey(key('z')))
}

func TestViewerMemory(t *testing.T) {
	assert := assert.New(t)

	emu, _ := build(t, breakProgram)

	view := NewViewer()
	view.attach(emu)

	view.handleKey(key('p'))
	assert.Equal(uint32(0xef0), view.MemoryAddr)
	view.handleKey(key('n'))
	view.handleKey(key('n'))
	assert.Equal(uint32(0x10f0), view.MemoryAddr)
	assert.True(strings.HasPrefix(view.memory.GetText(true), "000010f0:"))

	view.MemoryAddr = 0x1f80
	view.handleKey(key('n'))
	assert.Equal(uint32(0x1f80), view.MemoryAddr)
	assert.Equal(8, strings.Count(view.memory.GetText(true), "\n"))

	for range 40 {
		view.handleKey(key('p'))
	}
	assert.Equal(uint32(0), view.MemoryAddr)
}

func TestViewerExit(t *testing.T) {
	assert := assert.New(t)

	emu, _ := build(t, []string{
		"li $t1,0",
		"div $t0,$t1",
	})

	view := NewViewer()
	view.attach(emu)

	view.handleKey(key('x'))
	assert.ErrorIs(view.err, cpu.ErrHalt)

	// A new break clears the last result.
	view.attach(emu)
	assert.NoError(view.err)

	view.handleKey(key('s'))
	view.handleKey(key('s'))
	view.handleKey(key('s'))
	assert.ErrorIs(view.err, cpu.ErrDivideByZero)
}
