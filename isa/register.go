// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package isa

import (
	"strconv"
	"strings"
)

// Register numbers by calling convention.
const (
	REG_ZERO = uint8(0)
	REG_AT   = uint8(1)
	REG_V0   = uint8(2)
	REG_V1   = uint8(3)
	REG_A0   = uint8(4)
	REG_A1   = uint8(5)
	REG_A2   = uint8(6)
	REG_A3   = uint8(7)
	REG_T0   = uint8(8)
	REG_S0   = uint8(16)
	REG_T8   = uint8(24)
	REG_K0   = uint8(26)
	REG_GP   = uint8(28)
	REG_SP   = uint8(29)
	REG_FP   = uint8(30)
	REG_RA   = uint8(31)

	REGISTER_COUNT = 32
)

var registerNames = [REGISTER_COUNT]string{
	"$zero", "$at", "$v0", "$v1", "$a0", "$a1", "$a2", "$a3",
	"$t0", "$t1", "$t2", "$t3", "$t4", "$t5", "$t6", "$t7",
	"$s0", "$s1", "$s2", "$s3", "$s4", "$s5", "$s6", "$s7",
	"$t8", "$t9", "$k0", "$k1", "$gp", "$sp", "$fp", "$ra",
}

var registerIndex = func() map[string]uint8 {
	index := make(map[string]uint8, 2*REGISTER_COUNT)
	for n, name := range registerNames {
		index[name] = uint8(n)
		index["$"+strconv.Itoa(n)] = uint8(n)
	}
	return index
}()

// RegisterName returns the conventional name of a register number.
func RegisterName(reg uint8) string {
	return registerNames[reg&regMask]
}

// RegisterIndex looks up a register by its conventional name ($t0) or
// number ($8).
func RegisterIndex(name string) (reg uint8, ok bool) {
	reg, ok = registerIndex[strings.TrimSpace(name)]
	return
}
