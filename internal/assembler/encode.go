package assembler

import (
	"fmt"
	"strings"

	cpuchip8 "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

type encoder func(a *assembler, ops []value) (uint16, error)

var encoders = map[string]encoder{
	mnemonic(cpuchip8.Cls):  fixed(0x00E0),
	mnemonic(cpuchip8.Ret):  fixed(0x00EE),
	mnemonic(cpuchip8.Jp):   encodeJump,
	mnemonic(cpuchip8.Call): encodeCall,
	mnemonic(cpuchip8.Se):   skipEncoder(0x3000, 0x5000),
	mnemonic(cpuchip8.Sne):  skipEncoder(0x4000, 0x9000),
	mnemonic(cpuchip8.Ld):   encodeLoad,
	mnemonic(cpuchip8.Add):  encodeAdd,
	mnemonic(cpuchip8.Or):   arithmetic(0x1),
	mnemonic(cpuchip8.And):  arithmetic(0x2),
	mnemonic(cpuchip8.Xor):  arithmetic(0x3),
	mnemonic(cpuchip8.Sub):  arithmetic(0x5),
	mnemonic(cpuchip8.Subn): arithmetic(0x7),
	mnemonic(cpuchip8.Shr):  shift(0x6),
	mnemonic(cpuchip8.Shl):  shift(0xE),
	mnemonic(cpuchip8.Rnd):  encodeRandom,
	mnemonic(cpuchip8.Drw):  encodeDraw,
	mnemonic(cpuchip8.Skp):  keyEncoder(0x9E),
	mnemonic(cpuchip8.Sknp): keyEncoder(0xA1),
}

func mnemonic(ins *cpuchip8.Instruction) string {
	return strings.ToLower(ins.Name)
}

func (a *assembler) instruction(ins *instruction) (uint16, error) {
	enc, ok := encoders[strings.ToLower(ins.Mnemonic)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMnemonic, ins.Mnemonic)
	}

	ops := make([]value, 0, len(ins.Operands))
	for _, op := range ins.Operands {
		val, err := resolve(op)
		if err != nil {
			return 0, err
		}
		ops = append(ops, val)
	}

	word, err := enc(a, ops)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ins.Mnemonic, err)
	}
	return word, nil
}

// match returns whether the operands have exactly the given kinds.
func match(ops []value, kinds ...operandKind) bool {
	if len(ops) != len(kinds) {
		return false
	}
	for i, kind := range kinds {
		// labels can be used wherever an address is expected
		if kind == kindNumber && ops[i].kind == kindLabel {
			continue
		}
		if ops[i].kind != kind {
			return false
		}
	}
	return true
}

// resolveAddress returns the 12 bit address of a number or label operand.
func (a *assembler) resolveAddress(op value) (uint16, error) {
	if op.kind == kindLabel {
		address, ok := a.labels[op.name]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUndefinedLabel, op.name)
		}
		return address, nil
	}
	if op.number > 0xFFF {
		return 0, fmt.Errorf("%w: address $%X", ErrValueOutOfRange, op.number)
	}
	return op.number, nil
}

// immediate returns the value of an operand that has to fit into bits.
func immediate(op value, bits uint) (uint16, error) {
	if op.kind != kindNumber {
		return 0, fmt.Errorf("%w: number expected, got label %s", ErrInvalidOperands, op.name)
	}
	if op.number >= 1<<bits {
		return 0, fmt.Errorf("%w: $%X does not fit into %d bits", ErrValueOutOfRange, op.number, bits)
	}
	return op.number, nil
}

func registerPair(opcode uint16, x, y value) uint16 {
	return opcode | x.number<<8 | y.number<<4
}

func fixed(word uint16) encoder {
	return func(_ *assembler, ops []value) (uint16, error) {
		if len(ops) != 0 {
			return 0, fmt.Errorf("%w: no operands expected", ErrInvalidOperands)
		}
		return word, nil
	}
}

func encodeJump(a *assembler, ops []value) (uint16, error) {
	switch {
	case match(ops, kindNumber):
		address, err := a.resolveAddress(ops[0])
		return 0x1000 | address, err

	case match(ops, kindRegister, kindNumber):
		if ops[0].number != 0 {
			return 0, fmt.Errorf("%w: only V0 can be used as jump offset", ErrInvalidOperands)
		}
		address, err := a.resolveAddress(ops[1])
		return 0xB000 | address, err
	}
	return 0, ErrInvalidOperands
}

func encodeCall(a *assembler, ops []value) (uint16, error) {
	if !match(ops, kindNumber) {
		return 0, ErrInvalidOperands
	}
	address, err := a.resolveAddress(ops[0])
	return 0x2000 | address, err
}

func skipEncoder(byteOpcode, registerOpcode uint16) encoder {
	return func(_ *assembler, ops []value) (uint16, error) {
		switch {
		case match(ops, kindRegister, kindRegister):
			return registerPair(registerOpcode, ops[0], ops[1]), nil
		case match(ops, kindRegister, kindNumber):
			nn, err := immediate(ops[1], 8)
			return byteOpcode | ops[0].number<<8 | nn, err
		}
		return 0, ErrInvalidOperands
	}
}

// loadForms maps the single register load forms to their opcode. The
// register is encoded into the x nibble.
var loadForms = []struct {
	target, source operandKind
	base           uint16
}{
	{kindRegister, kindDelay, 0xF007},
	{kindRegister, kindKey, 0xF00A},
	{kindDelay, kindRegister, 0xF015},
	{kindSound, kindRegister, 0xF018},
	{kindFont, kindRegister, 0xF029},
	{kindBCD, kindRegister, 0xF033},
	{kindIndirect, kindRegister, 0xF055},
	{kindRegister, kindIndirect, 0xF065},
}

func encodeLoad(a *assembler, ops []value) (uint16, error) {
	switch {
	case match(ops, kindRegister, kindRegister):
		return registerPair(0x8000, ops[0], ops[1]), nil

	case match(ops, kindIndex, kindNumber):
		address, err := a.resolveAddress(ops[1])
		return 0xA000 | address, err

	case match(ops, kindRegister, kindNumber):
		nn, err := immediate(ops[1], 8)
		return 0x6000 | ops[0].number<<8 | nn, err
	}

	for _, form := range loadForms {
		if !match(ops, form.target, form.source) {
			continue
		}
		register := ops[0]
		if form.target != kindRegister {
			register = ops[1]
		}
		return form.base | register.number<<8, nil
	}
	return 0, ErrInvalidOperands
}

func encodeAdd(_ *assembler, ops []value) (uint16, error) {
	switch {
	case match(ops, kindRegister, kindRegister):
		return registerPair(0x8004, ops[0], ops[1]), nil
	case match(ops, kindIndex, kindRegister):
		return 0xF01E | ops[1].number<<8, nil
	case match(ops, kindRegister, kindNumber):
		nn, err := immediate(ops[1], 8)
		return 0x7000 | ops[0].number<<8 | nn, err
	}
	return 0, ErrInvalidOperands
}

func arithmetic(n uint16) encoder {
	return func(_ *assembler, ops []value) (uint16, error) {
		if !match(ops, kindRegister, kindRegister) {
			return 0, ErrInvalidOperands
		}
		return registerPair(0x8000|n, ops[0], ops[1]), nil
	}
}

// shift accepts an optional second register, it is ignored by the
// interpreter but part of the encoding.
func shift(n uint16) encoder {
	return func(_ *assembler, ops []value) (uint16, error) {
		switch {
		case match(ops, kindRegister):
			return 0x8000 | n | ops[0].number<<8, nil
		case match(ops, kindRegister, kindRegister):
			return registerPair(0x8000|n, ops[0], ops[1]), nil
		}
		return 0, ErrInvalidOperands
	}
}

func encodeRandom(_ *assembler, ops []value) (uint16, error) {
	if !match(ops, kindRegister, kindNumber) {
		return 0, ErrInvalidOperands
	}
	nn, err := immediate(ops[1], 8)
	return 0xC000 | ops[0].number<<8 | nn, err
}

func encodeDraw(_ *assembler, ops []value) (uint16, error) {
	if !match(ops, kindRegister, kindRegister, kindNumber) {
		return 0, ErrInvalidOperands
	}
	n, err := immediate(ops[2], 4)
	return registerPair(0xD000, ops[0], ops[1]) | n, err
}

func keyEncoder(nn uint16) encoder {
	return func(_ *assembler, ops []value) (uint16, error) {
		if !match(ops, kindRegister) {
			return 0, ErrInvalidOperands
		}
		return 0xE000 | ops[0].number<<8 | nn, nil
	}
}
