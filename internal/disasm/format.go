// Package disasm converts CHIP-8 instruction words into assembly mnemonics
// and writes assembler compatible listings of program images.
package disasm

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/chip8"
	cpuchip8 "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// ErrNonCanonical is returned for instruction words that the interpreter
// executes but that contain bits the mnemonic form can not express, for
// example 5xy1. They are written as data to keep reassembly byte exact.
var ErrNonCanonical = errors.New("non canonical instruction encoding")

// instructions maps the interpreter opcodes to the instruction definitions
// that provide the mnemonic names.
var instructions = map[chip8.Opcode]*cpuchip8.Instruction{
	chip8.OpClear:            cpuchip8.Cls,
	chip8.OpReturn:           cpuchip8.Ret,
	chip8.OpJump:             cpuchip8.Jp,
	chip8.OpCall:             cpuchip8.Call,
	chip8.OpSkipEqualByte:    cpuchip8.Se,
	chip8.OpSkipNotEqualByte: cpuchip8.Sne,
	chip8.OpSkipEqualReg:     cpuchip8.Se,
	chip8.OpLoadByte:         cpuchip8.Ld,
	chip8.OpAddByte:          cpuchip8.Add,
	chip8.OpLoadReg:          cpuchip8.Ld,
	chip8.OpOr:               cpuchip8.Or,
	chip8.OpAnd:              cpuchip8.And,
	chip8.OpXor:              cpuchip8.Xor,
	chip8.OpAddReg:           cpuchip8.Add,
	chip8.OpSub:              cpuchip8.Sub,
	chip8.OpShiftRight:       cpuchip8.Shr,
	chip8.OpSubN:             cpuchip8.Subn,
	chip8.OpShiftLeft:        cpuchip8.Shl,
	chip8.OpSkipNotEqualReg:  cpuchip8.Sne,
	chip8.OpLoadIndex:        cpuchip8.Ld,
	chip8.OpJumpV0:           cpuchip8.Jp,
	chip8.OpRandom:           cpuchip8.Rnd,
	chip8.OpDraw:             cpuchip8.Drw,
	chip8.OpSkipKey:          cpuchip8.Skp,
	chip8.OpSkipNotKey:       cpuchip8.Sknp,
	chip8.OpLoadDelay:        cpuchip8.Ld,
	chip8.OpWaitKey:          cpuchip8.Ld,
	chip8.OpSetDelay:         cpuchip8.Ld,
	chip8.OpSetSound:         cpuchip8.Ld,
	chip8.OpAddIndex:         cpuchip8.Add,
	chip8.OpLoadFont:         cpuchip8.Ld,
	chip8.OpStoreBCD:         cpuchip8.Ld,
	chip8.OpStoreRegisters:   cpuchip8.Ld,
	chip8.OpLoadRegisters:    cpuchip8.Ld,
}

// Disassemble returns the assembly form of an instruction word.
func Disassemble(word uint16) (string, error) {
	ins, err := chip8.Decode(word)
	if err != nil {
		return "", err
	}
	if !canonical(ins) {
		return "", fmt.Errorf("%w: $%04X", ErrNonCanonical, word)
	}
	return formatInstruction(ins, ""), nil
}

// Instruction returns the instruction definition of a decoded instruction.
func Instruction(ins chip8.Instruction) *cpuchip8.Instruction {
	return instructions[ins.Op]
}

// canonical returns whether the mnemonic form of the instruction encodes
// back to the same instruction word.
func canonical(ins chip8.Instruction) bool {
	switch ins.Op {
	case chip8.OpSkipEqualReg, chip8.OpSkipNotEqualReg:
		return ins.N == 0
	}
	return true
}

// formatInstruction formats an instruction with its parameters. A non empty
// label replaces the address parameter of jumps, calls and index loads.
func formatInstruction(ins chip8.Instruction, label string) string {
	name := instructions[ins.Op].Name
	if params := formatParams(ins, label); params != "" {
		return name + " " + params
	}
	return name
}

func formatParams(ins chip8.Instruction, label string) string {
	address := fmt.Sprintf("$%03X", ins.NNN)
	if label != "" {
		address = label
	}

	switch ins.Op {
	case chip8.OpClear, chip8.OpReturn:
		return ""

	case chip8.OpJump, chip8.OpCall:
		return address
	case chip8.OpJumpV0:
		return "V0, " + address
	case chip8.OpLoadIndex:
		return "I, " + address

	case chip8.OpSkipEqualByte, chip8.OpSkipNotEqualByte, chip8.OpLoadByte, chip8.OpAddByte, chip8.OpRandom:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)

	case chip8.OpSkipEqualReg, chip8.OpSkipNotEqualReg, chip8.OpLoadReg, chip8.OpOr, chip8.OpAnd,
		chip8.OpXor, chip8.OpAddReg, chip8.OpSub, chip8.OpSubN:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)

	case chip8.OpShiftRight, chip8.OpShiftLeft:
		// the second register is ignored by the interpreter but kept for reassembly
		if ins.Y != 0 {
			return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
		}
		return fmt.Sprintf("V%X", ins.X)

	case chip8.OpDraw:
		return fmt.Sprintf("V%X, V%X, $%X", ins.X, ins.Y, ins.N)

	case chip8.OpSkipKey, chip8.OpSkipNotKey:
		return fmt.Sprintf("V%X", ins.X)

	case chip8.OpLoadDelay:
		return fmt.Sprintf("V%X, DT", ins.X)
	case chip8.OpWaitKey:
		return fmt.Sprintf("V%X, K", ins.X)
	case chip8.OpSetDelay:
		return fmt.Sprintf("DT, V%X", ins.X)
	case chip8.OpSetSound:
		return fmt.Sprintf("ST, V%X", ins.X)
	case chip8.OpAddIndex:
		return fmt.Sprintf("I, V%X", ins.X)
	case chip8.OpLoadFont:
		return fmt.Sprintf("F, V%X", ins.X)
	case chip8.OpStoreBCD:
		return fmt.Sprintf("B, V%X", ins.X)
	case chip8.OpStoreRegisters:
		return fmt.Sprintf("[I], V%X", ins.X)
	case chip8.OpLoadRegisters:
		return fmt.Sprintf("V%X, [I]", ins.X)
	}
	return ""
}
