// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ezrec/mipsim/isa"
)

// Syscall numbers, selected by $v0.
const (
	SYS_PRINT_INT      = int32(1)
	SYS_PRINT_STRING   = int32(4)
	SYS_READ_INT       = int32(5)
	SYS_READ_STRING    = int32(8)
	SYS_SBRK           = int32(9)
	SYS_EXIT           = int32(10)
	SYS_PRINT_CHAR     = int32(11)
	SYS_READ_CHAR      = int32(12)
	SYS_OPEN           = int32(13)
	SYS_READ           = int32(14)
	SYS_WRITE          = int32(15)
	SYS_CLOSE          = int32(16)
	SYS_EXIT2          = int32(17)
	SYS_SNAPSHOT       = int32(18)
	SYS_COMPARE        = int32(19)
	SYS_TIME           = int32(30)
	SYS_TONE           = int32(31)
	SYS_SLEEP          = int32(32)
	SYS_TONE_SYNC      = int32(33)
	SYS_PRINT_HEX      = int32(34)
	SYS_PRINT_BINARY   = int32(35)
	SYS_PRINT_UNSIGNED = int32(36)
)

var _syscall_defines = map[string]string{
	"SYS_PRINT_INT":      fmt.Sprint(SYS_PRINT_INT),
	"SYS_PRINT_STRING":   fmt.Sprint(SYS_PRINT_STRING),
	"SYS_READ_INT":       fmt.Sprint(SYS_READ_INT),
	"SYS_READ_STRING":    fmt.Sprint(SYS_READ_STRING),
	"SYS_SBRK":           fmt.Sprint(SYS_SBRK),
	"SYS_EXIT":           fmt.Sprint(SYS_EXIT),
	"SYS_PRINT_CHAR":     fmt.Sprint(SYS_PRINT_CHAR),
	"SYS_READ_CHAR":      fmt.Sprint(SYS_READ_CHAR),
	"SYS_OPEN":           fmt.Sprint(SYS_OPEN),
	"SYS_READ":           fmt.Sprint(SYS_READ),
	"SYS_WRITE":          fmt.Sprint(SYS_WRITE),
	"SYS_CLOSE":          fmt.Sprint(SYS_CLOSE),
	"SYS_EXIT2":          fmt.Sprint(SYS_EXIT2),
	"SYS_SNAPSHOT":       fmt.Sprint(SYS_SNAPSHOT),
	"SYS_COMPARE":        fmt.Sprint(SYS_COMPARE),
	"SYS_TIME":           fmt.Sprint(SYS_TIME),
	"SYS_TONE":           fmt.Sprint(SYS_TONE),
	"SYS_SLEEP":          fmt.Sprint(SYS_SLEEP),
	"SYS_TONE_SYNC":      fmt.Sprint(SYS_TONE_SYNC),
	"SYS_PRINT_HEX":      fmt.Sprint(SYS_PRINT_HEX),
	"SYS_PRINT_BINARY":   fmt.Sprint(SYS_PRINT_BINARY),
	"SYS_PRINT_UNSIGNED": fmt.Sprint(SYS_PRINT_UNSIGNED),
}

// syscallTable maps a syscall number to its handler. Numbers not in the
// table are ignored.
var syscallTable map[int32]func(cpu *Cpu) error

func init() {
	syscallTable = map[int32]func(cpu *Cpu) error{
		SYS_PRINT_INT:      (*Cpu).sysPrintInt,
		SYS_PRINT_STRING:   (*Cpu).sysPrintString,
		SYS_READ_INT:       (*Cpu).sysReadInt,
		SYS_READ_STRING:    (*Cpu).sysReadString,
		SYS_EXIT:           (*Cpu).sysExit,
		SYS_PRINT_CHAR:     (*Cpu).sysPrintChar,
		SYS_READ_CHAR:      (*Cpu).sysReadChar,
		SYS_OPEN:           (*Cpu).sysOpen,
		SYS_READ:           (*Cpu).sysRead,
		SYS_WRITE:          (*Cpu).sysWrite,
		SYS_CLOSE:          (*Cpu).sysClose,
		SYS_EXIT2:          (*Cpu).sysExit2,
		SYS_SNAPSHOT:       (*Cpu).sysSnapshot,
		SYS_COMPARE:        (*Cpu).sysCompare,
		SYS_TIME:           (*Cpu).sysTime,
		SYS_TONE:           (*Cpu).sysTone,
		SYS_SLEEP:          (*Cpu).sysSleep,
		SYS_TONE_SYNC:      (*Cpu).sysToneSync,
		SYS_PRINT_HEX:      (*Cpu).sysPrintHex,
		SYS_PRINT_BINARY:   (*Cpu).sysPrintBinary,
		SYS_PRINT_UNSIGNED: (*Cpu).sysPrintUnsigned,
	}
}

// syscall dispatches on $v0.
func (cpu *Cpu) syscall() (err error) {
	code := cpu.Register[isa.REG_V0]

	handler, ok := syscallTable[code]
	if !ok {
		if cpu.Verbose {
			log.Printf("cpu: syscall %v ignored", code)
		}
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: syscall %v", code)
	}

	err = handler(cpu)
	if err != nil && !errors.Is(err, ErrHalt) {
		err = &ErrSyscall{Code: code, Err: err}
	}

	return
}

func (cpu *Cpu) arg(n int) int32 {
	return cpu.Register[int(isa.REG_A0)+n]
}

func (cpu *Cpu) result(value int32) {
	cpu.Register[isa.REG_V0] = value
}

func (cpu *Cpu) sysPrintInt() error {
	return cpu.Console.Printf("%d", cpu.arg(0))
}

func (cpu *Cpu) sysPrintString() (err error) {
	text, err := cpu.ReadString(uint32(cpu.arg(0)))
	if err != nil {
		return
	}

	return cpu.Console.Printf("%s", text)
}

func (cpu *Cpu) sysReadInt() (err error) {
	value, err := cpu.Console.ReadInt()
	if err != nil {
		return
	}

	cpu.result(value)
	return
}

// sysReadString reads a line into a buffer of $a1 bytes at $a0, truncating
// it to leave room for the NUL terminator.
func (cpu *Cpu) sysReadString() (err error) {
	size := cpu.arg(1)
	if size <= 0 {
		return
	}

	line, err := cpu.Console.ReadLine()
	if errors.Is(err, io.EOF) {
		err = nil
	}
	if err != nil {
		return
	}

	if len(line) > int(size)-1 {
		line = line[:size-1]
	}

	mem, err := cpu.Bytes(uint32(cpu.arg(0)), uint32(len(line)+1))
	if err != nil {
		return
	}

	copy(mem, line)
	mem[len(line)] = 0

	return
}

func (cpu *Cpu) sysExit() error {
	cpu.ExitCode = 0
	return ErrHalt
}

func (cpu *Cpu) sysExit2() error {
	cpu.ExitCode = int(cpu.arg(0))
	return ErrHalt
}

func (cpu *Cpu) sysPrintChar() (err error) {
	_, err = cpu.Console.Write([]byte{byte(cpu.arg(0))})
	return
}

// sysReadChar returns -1 at the end of input.
func (cpu *Cpu) sysReadChar() (err error) {
	c, err := cpu.Console.ReadByte()
	if errors.Is(err, io.EOF) {
		cpu.result(-1)
		err = nil
		return
	}
	if err != nil {
		return
	}

	cpu.result(int32(c))
	return
}

// sysOpen returns a handle in $v0, or -1 on failure.
func (cpu *Cpu) sysOpen() (err error) {
	path, err := cpu.ReadString(uint32(cpu.arg(0)))
	if err != nil {
		return
	}

	fd, ferr := cpu.Files.Open(path, cpu.arg(1), cpu.arg(2))
	if ferr != nil {
		if cpu.Verbose {
			log.Printf("cpu: open %v: %v", path, ferr)
		}
		fd = -1
	}

	cpu.result(fd)
	return
}

// sysRead returns the count read in $v0, or -1 on failure.
func (cpu *Cpu) sysRead() (err error) {
	mem, err := cpu.fileBuffer()
	if err != nil {
		return
	}

	n, ferr := cpu.Files.Read(cpu.arg(0), mem)
	if ferr != nil {
		if cpu.Verbose {
			log.Printf("cpu: read %v: %v", cpu.arg(0), ferr)
		}
		n = -1
	}

	cpu.result(int32(n))
	return
}

// sysWrite returns the count written in $v0, or -1 on failure.
func (cpu *Cpu) sysWrite() (err error) {
	mem, err := cpu.fileBuffer()
	if err != nil {
		return
	}

	n, ferr := cpu.Files.Write(cpu.arg(0), mem)
	if ferr != nil {
		if cpu.Verbose {
			log.Printf("cpu: write %v: %v", cpu.arg(0), ferr)
		}
		n = -1
	}

	cpu.result(int32(n))
	return
}

// fileBuffer is the $a2 byte buffer at $a1.
func (cpu *Cpu) fileBuffer() (mem []byte, err error) {
	size := cpu.arg(2)
	if size < 0 {
		err = &ErrAddress{Address: uint32(cpu.arg(1)), Size: uint32(size)}
		return
	}

	return cpu.Bytes(uint32(cpu.arg(1)), uint32(size))
}

func (cpu *Cpu) sysClose() (err error) {
	ferr := cpu.Files.Close(cpu.arg(0))
	if ferr != nil && cpu.Verbose {
		log.Printf("cpu: close %v: %v", cpu.arg(0), ferr)
	}
	return
}

func (cpu *Cpu) sysSnapshot() (err error) {
	cpu.Snapshot()
	return
}

func (cpu *Cpu) sysCompare() (err error) {
	_, err = cpu.Compare()
	if errors.Is(err, ErrNoSnapshot) {
		err = nil
	}
	return
}

// sysTime returns the seconds since the epoch, low half in $a0 and high
// half in $a1.
func (cpu *Cpu) sysTime() (err error) {
	secs := cpu.now().Unix()
	cpu.Register[isa.REG_A0] = int32(secs)
	cpu.Register[isa.REG_A1] = int32(secs >> 32)
	return
}

func (cpu *Cpu) sysTone() (err error) {
	cpu.Tone(cpu.arg(0), cpu.arg(1), false)
	return
}

func (cpu *Cpu) sysToneSync() (err error) {
	cpu.Tone(cpu.arg(0), cpu.arg(1), true)
	return
}

func (cpu *Cpu) sysSleep() (err error) {
	if ms := cpu.arg(0); ms > 0 {
		cpu.sleep(time.Duration(ms) * time.Millisecond)
	}
	return
}

func (cpu *Cpu) sysPrintHex() error {
	return cpu.Console.Printf("%08x", uint32(cpu.arg(0)))
}

func (cpu *Cpu) sysPrintBinary() error {
	return cpu.Console.Printf("%032b", uint32(cpu.arg(0)))
}

func (cpu *Cpu) sysPrintUnsigned() error {
	return cpu.Console.Printf("%d", uint32(cpu.arg(0)))
}
