// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package debugger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ezrec/mipsim/cpu"
	"github.com/ezrec/mipsim/emulator"
	"github.com/ezrec/mipsim/isa"
)

const (
	VIEW_MEMORY_SIZE = 0x100 // Bytes of memory shown.
	VIEW_CODE_BEFORE = 4     // Words shown before the pc.
	VIEW_CODE_AFTER  = 12    // Words shown after the pc.
)

// Viewer is a full screen debugger.
//
// Keys: 's' steps, 'q' resumes, 'x' ends the program, 'n' and 'p' page
// through memory.
type Viewer struct {
	Screen     tcell.Screen // Screen to draw on, or nil for the terminal.
	MemoryAddr uint32       // First address of the memory pane.

	app       *tview.Application
	registers *tview.Table
	code      *tview.TextView
	memory    *tview.TextView
	status    *tview.TextView

	emu *emulator.Emulator
	err error
}

var _ emulator.Debugger = (*Viewer)(nil)

// NewViewer returns a viewer showing memory from the data segment.
func NewViewer() (view *Viewer) {
	view = &Viewer{}

	view.registers = tview.NewTable().SetBorders(false)
	view.registers.SetTitle(f("Registers")).SetBorder(true)

	view.code = tview.NewTextView().SetDynamicColors(true)
	view.code.SetTitle(f("Code")).SetBorder(true)

	view.memory = tview.NewTextView()
	view.memory.SetTitle(f("Memory")).SetBorder(true)

	view.status = tview.NewTextView()

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(view.code, 0, 2, false).
		AddItem(view.memory, 0, 1, false)

	panes := tview.NewFlex().
		AddItem(view.registers, 32, 0, false).
		AddItem(right, 0, 1, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(panes, 0, 1, true).
		AddItem(view.status, 1, 0, false)

	view.app = tview.NewApplication().SetRoot(root, true)
	view.app.SetInputCapture(view.handleKey)

	return
}

// Debug shows the emulator state until resumed.
func (view *Viewer) Debug(emu *emulator.Emulator) (err error) {
	view.attach(emu)

	if view.Screen != nil {
		view.app.SetScreen(view.Screen)
	}

	err = view.app.Run()
	if err == nil {
		err = view.err
	}

	return
}

// attach selects the emulator to show.
func (view *Viewer) attach(emu *emulator.Emulator) {
	if view.emu == nil && emu.Executable != nil {
		view.MemoryAddr = emu.Executable.DataStart &^ 0xf
	}

	view.emu = emu
	view.err = nil
	view.status.SetText(f("break at 0x%08x", emu.Pc))
	view.refresh()
}

func (view *Viewer) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 's':
		view.step()
	case 'q':
		view.app.Stop()
	case 'x':
		view.err = cpu.ErrHalt
		view.app.Stop()
	case 'n':
		if view.MemoryAddr+VIEW_MEMORY_SIZE < uint32(len(view.emu.Memory)) {
			view.MemoryAddr += VIEW_MEMORY_SIZE
		}
		view.refresh()
	case 'p':
		view.MemoryAddr -= min(view.MemoryAddr, VIEW_MEMORY_SIZE)
		view.refresh()
	default:
		return event
	}

	return nil
}

// step executes one instruction, leaving the viewer on a fault or exit.
func (view *Viewer) step() {
	pc := view.emu.Pc

	err := view.emu.Cpu.Tick()
	switch {
	case err == nil:
		view.status.SetText(f("stepped 0x%08x", pc))
	case errors.Is(err, cpu.ErrBreak):
		view.status.SetText(f("break at 0x%08x", pc))
	default:
		view.err = err
		view.app.Stop()
	}

	view.refresh()
}

// refresh redraws every pane from the emulator state.
func (view *Viewer) refresh() {
	emu := view.emu

	view.registers.Clear()
	row := 0
	setRow := func(name string, value int32) {
		view.registers.SetCell(row, 0, tview.NewTableCell(name).SetAttributes(tcell.AttrBold))
		view.registers.SetCell(row, 1, tview.NewTableCell(fmt.Sprintf("%08x", uint32(value))))
		view.registers.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%d", value)).SetAlign(tview.AlignRight))
		row++
	}
	setRow("pc", int32(emu.Pc))
	setRow("hi", emu.Hi)
	setRow("lo", emu.Lo)
	for n, value := range emu.Register {
		setRow(isa.RegisterName(uint8(n)), value)
	}

	view.code.SetText(view.disassemble())

	size := uint32(len(emu.Memory))
	addr := min(view.MemoryAddr, size)
	text, err := emu.Dump(addr, min(VIEW_MEMORY_SIZE, size-addr))
	if err != nil {
		text = err.Error()
	}
	view.memory.SetText(text)
}

// disassemble lists the words around the pc, with their source lines.
func (view *Viewer) disassemble() string {
	emu := view.emu

	var sb strings.Builder

	start := emu.Pc - min(emu.Pc, VIEW_CODE_BEFORE*4)
	for pc := start; pc < emu.Pc+VIEW_CODE_AFTER*4; pc += 4 {
		word, err := emu.Load(pc, 4)
		if err != nil {
			break
		}

		mark := " "
		if pc == emu.Pc {
			mark = "[yellow]>"
		}

		source := ""
		if line, ok := emu.Program.Line(pc); ok {
			source = fmt.Sprintf("%4d: %s", line.LineNo, line.Source)
		}

		fmt.Fprintf(&sb, "%s %08x: %-24s %s[-]\n", mark, pc,
			tview.Escape(isa.Instruction(word).String()), tview.Escape(source))
	}

	return sb.String()
}
