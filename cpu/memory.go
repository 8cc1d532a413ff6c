// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bytes"
	"encoding/binary"
)

// Bytes returns a view of count bytes of memory at addr.
func (cpu *Cpu) Bytes(addr uint32, count uint32) (mem []byte, err error) {
	end := uint64(addr) + uint64(count)
	if end > uint64(len(cpu.Memory)) {
		err = &ErrAddress{Address: addr, Size: count}
		return
	}

	mem = cpu.Memory[addr:end]
	return
}

// Load reads a little endian value of 1, 2 or 4 bytes.
func (cpu *Cpu) Load(addr uint32, size uint32) (value uint32, err error) {
	mem, err := cpu.Bytes(addr, size)
	if err != nil {
		return
	}

	switch size {
	case 1:
		value = uint32(mem[0])
	case 2:
		value = uint32(binary.LittleEndian.Uint16(mem))
	default:
		value = binary.LittleEndian.Uint32(mem)
	}

	return
}

// Store writes a little endian value of 1, 2 or 4 bytes.
func (cpu *Cpu) Store(addr uint32, size uint32, value uint32) (err error) {
	mem, err := cpu.Bytes(addr, size)
	if err != nil {
		return
	}

	switch size {
	case 1:
		mem[0] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(mem, uint16(value))
	default:
		binary.LittleEndian.PutUint32(mem, value)
	}

	return
}

// ReadString reads a NUL terminated string. A string that runs off the end of
// memory is out of bounds.
func (cpu *Cpu) ReadString(addr uint32) (text string, err error) {
	mem, err := cpu.Bytes(addr, 0)
	if err != nil {
		return
	}

	mem = cpu.Memory[addr:]
	end := bytes.IndexByte(mem, 0)
	if end < 0 {
		err = &ErrAddress{Address: addr, Size: uint32(len(mem)) + 1}
		return
	}

	text = string(mem[:end])
	return
}
