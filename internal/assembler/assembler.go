// Package assembler converts CHIP-8 assembly source into program images.
//
// The accepted syntax is the one written by the disassembler listing:
//
//	.org $200
//	Start:
//	    ld V0, $0A        ; comment
//	    call label_20A
//	    .byte $F0, $90
//
// Mnemonics and register names are case insensitive. Numbers are decimal,
// or hexadecimal with a $ or 0x prefix.
package assembler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/retroenv/retrochip8/internal/chip8"
)

// Errors returned by the assembler, wrapped with the source position.
var (
	ErrUnknownMnemonic  = errors.New("unknown mnemonic")
	ErrUnknownDirective = errors.New("unknown directive")
	ErrInvalidOperands  = errors.New("invalid operands")
	ErrUndefinedLabel   = errors.New("undefined label")
	ErrDuplicateLabel   = errors.New("duplicate label")
	ErrValueOutOfRange  = errors.New("value out of range")
	ErrOriginBackwards  = errors.New("origin before current address")
)

type assembler struct {
	address uint16
	labels  map[string]uint16
	output  []byte
}

// Assemble parses the source and returns the program image. The image is
// loaded at ProgramStart, an origin above the current address is padded with
// zeros.
func Assemble(filename, src string) ([]byte, error) {
	ast, err := parser.ParseString(filename, src)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}

	a := &assembler{
		labels: map[string]uint16{},
	}
	if err := a.layout(ast); err != nil {
		return nil, err
	}
	if err := a.encode(ast); err != nil {
		return nil, err
	}
	return a.output, nil
}

func (a *assembler) reset() {
	a.address = chip8.ProgramStart
}

// layout assigns addresses to all labels.
func (a *assembler) layout(ast *source) error {
	a.reset()

	for _, stmt := range ast.Statements {
		switch {
		case stmt.Label != nil:
			name := *stmt.Label
			if _, ok := a.labels[name]; ok {
				return fmt.Errorf("%s: %w: %s", stmt.Pos, ErrDuplicateLabel, name)
			}
			a.labels[name] = a.address

		case stmt.Directive != nil:
			if err := a.directive(stmt.Directive, false); err != nil {
				return err
			}

		case stmt.Instruction != nil:
			a.advance(2)
		}
	}
	return nil
}

// encode converts all statements to bytes.
func (a *assembler) encode(ast *source) error {
	a.reset()

	for _, stmt := range ast.Statements {
		switch {
		case stmt.Directive != nil:
			if err := a.directive(stmt.Directive, true); err != nil {
				return err
			}

		case stmt.Instruction != nil:
			word, err := a.instruction(stmt.Instruction)
			if err != nil {
				return fmt.Errorf("%s: %w", stmt.Instruction.Pos, err)
			}
			a.output = append(a.output, byte(word>>8), byte(word))
			a.advance(2)
		}
	}
	return nil
}

func (a *assembler) advance(n int) {
	a.address += uint16(n)
}

func (a *assembler) directive(dir *directive, emit bool) error {
	switch strings.ToLower(dir.Name) {
	case ".org":
		return a.origin(dir, emit)

	case ".byte":
		for _, arg := range dir.Args {
			val, err := resolve(arg)
			if err != nil {
				return fmt.Errorf("%s: %w", arg.Pos, err)
			}
			if val.kind != kindNumber || val.number > 0xFF {
				return fmt.Errorf("%s: %w: byte expected", arg.Pos, ErrValueOutOfRange)
			}
			if emit {
				a.output = append(a.output, byte(val.number))
			}
		}
		a.advance(len(dir.Args))
		return nil

	default:
		return fmt.Errorf("%s: %w: %s", dir.Pos, ErrUnknownDirective, dir.Name)
	}
}

// origin sets the address of the following statements. The gap to the current
// address is filled with zeros, an address below it is rejected.
func (a *assembler) origin(dir *directive, emit bool) error {
	if len(dir.Args) != 1 {
		return fmt.Errorf("%s: %w: .org expects one address", dir.Pos, ErrInvalidOperands)
	}
	val, err := resolve(dir.Args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", dir.Pos, err)
	}
	if val.kind != kindNumber || val.number >= chip8.MemorySize {
		return fmt.Errorf("%s: %w: address expected", dir.Pos, ErrValueOutOfRange)
	}

	target := val.number
	if target < a.address {
		return fmt.Errorf("%s: %w: $%03X < $%03X", dir.Pos, ErrOriginBackwards, target, a.address)
	}

	gap := int(target - a.address)
	if emit {
		a.output = append(a.output, make([]byte, gap)...)
	}
	a.advance(gap)
	return nil
}

type operandKind int

const (
	kindNumber operandKind = iota
	kindRegister
	kindLabel
	kindIndex    // I
	kindIndirect // [I]
	kindDelay    // DT
	kindSound    // ST
	kindKey      // K
	kindFont     // F
	kindBCD      // B
)

var specialNames = map[string]operandKind{
	"I":  kindIndex,
	"DT": kindDelay,
	"ST": kindSound,
	"K":  kindKey,
	"F":  kindFont,
	"B":  kindBCD,
}

type value struct {
	kind   operandKind
	number uint16 // number or register index
	name   string // label name
	pos    lexer.Position
}

func resolve(op *operand) (value, error) {
	val := value{pos: op.Pos}

	switch {
	case op.Indirect != nil:
		if !strings.EqualFold(*op.Indirect, "I") {
			return val, fmt.Errorf("%w: [%s]", ErrInvalidOperands, *op.Indirect)
		}
		val.kind = kindIndirect

	case op.Number != nil:
		number, err := parseNumber(*op.Number)
		if err != nil {
			return val, err
		}
		val.kind = kindNumber
		val.number = number

	case op.Name != nil:
		name := *op.Name
		if register, ok := parseRegister(name); ok {
			val.kind = kindRegister
			val.number = register
			return val, nil
		}
		if kind, ok := specialNames[strings.ToUpper(name)]; ok {
			val.kind = kind
			return val, nil
		}
		val.kind = kindLabel
		val.name = name
	}
	return val, nil
}

func parseNumber(s string) (uint16, error) {
	base := 10
	switch {
	case strings.HasPrefix(s, "$"):
		s = s[1:]
		base = 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
		base = 16
	}

	number, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrValueOutOfRange, s)
	}
	return uint16(number), nil
}

func parseRegister(name string) (uint16, bool) {
	if len(name) != 2 || (name[0] != 'V' && name[0] != 'v') {
		return 0, false
	}
	index, err := strconv.ParseUint(name[1:], 16, 8)
	if err != nil {
		return 0, false
	}
	return uint16(index), true
}
