package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	cpuchip8 "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Options defines options to control the listing output.
type Options struct {
	HexComments    bool // output opcode bytes as hex values in comments
	OffsetComments bool // output memory addresses in comments
	Labels         bool // replace jump and call targets by labels
	ZeroBytes      bool // output trailing zero bytes
}

// DefaultOptions returns the default listing options.
func DefaultOptions() Options {
	return Options{
		HexComments:    true,
		OffsetComments: true,
		Labels:         true,
	}
}

// Line is a single line of the listing, either an instruction or data.
type Line struct {
	Address uint16
	Data    []byte
	Label   string
	Code    string

	ins    chip8.Instruction
	isCode bool
}

// IsCode returns whether the line contains an instruction.
func (l Line) IsCode() bool {
	return l.isCode
}

// Lines disassembles a program image loaded at the base address. The image
// is processed as a linear sweep of 2 byte words, words that do not form a
// canonical instruction become data.
func Lines(rom []byte, base uint16, labels bool) []Line {
	lines := make([]Line, 0, len(rom)/2+1)

	for offset := 0; offset < len(rom); offset += 2 {
		address := base + uint16(offset)
		if offset+1 >= len(rom) {
			lines = append(lines, Line{Address: address, Data: rom[offset : offset+1]})
			break
		}

		line := Line{
			Address: address,
			Data:    rom[offset : offset+2],
		}
		word := uint16(line.Data[0])<<8 | uint16(line.Data[1])
		if ins, err := chip8.Decode(word); err == nil && canonical(ins) {
			line.ins = ins
			line.isCode = true
		}
		lines = append(lines, line)
	}

	var names map[uint16]string
	if labels {
		names = assignLabels(lines, base)
	}

	for i := range lines {
		lines[i].Code = lines[i].format(names)
	}
	return lines
}

// assignLabels sets labels for all lines that are targets of code
// references and returns the label names by address.
func assignLabels(lines []Line, base uint16) map[uint16]string {
	names := map[uint16]string{}
	if len(lines) == 0 {
		return names
	}

	names[base] = "Start"
	lines[0].Label = "Start"

	for _, line := range lines {
		target, ok := referencedAddress(line)
		if !ok || target < base || (target-base)%2 != 0 {
			continue
		}

		index := int(target-base) / 2
		if index >= len(lines) || lines[index].Label != "" {
			continue
		}

		name := fmt.Sprintf("label_%03X", target)
		lines[index].Label = name
		names[target] = name
	}
	return names
}

// referencedAddress returns the absolute address that an instruction
// references, if any.
func referencedAddress(line Line) (uint16, bool) {
	if !line.isCode {
		return 0, false
	}

	switch line.ins.Op {
	case chip8.OpJump, chip8.OpCall, chip8.OpLoadIndex:
		return line.ins.NNN, true
	default:
		return 0, false
	}
}

func (l Line) format(names map[uint16]string) string {
	if !l.isCode {
		return formatData(l.Data)
	}

	var label string
	if _, ok := referencedAddress(l); ok {
		label = names[l.ins.NNN]
	}
	return formatInstruction(l.ins, label)
}

func formatData(data []byte) string {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf(".byte $%02X", data[0]))
	for _, b := range data[1:] {
		buf.WriteString(fmt.Sprintf(", $%02X", b))
	}
	return buf.String()
}

func (l Line) comment(opts Options) string {
	var parts []string
	if opts.OffsetComments {
		parts = append(parts, fmt.Sprintf("$%04X", l.Address))
	}
	if opts.HexComments {
		for _, b := range l.Data {
			parts = append(parts, fmt.Sprintf("%02X", b))
		}
	}
	return strings.Join(parts, " ")
}

// Listing writes the listing of a program image loaded at ProgramStart.
func Listing(w io.Writer, rom []byte, opts Options) error {
	lines := Lines(rom, chip8.ProgramStart, opts.Labels)
	return Write(w, lines, chip8.ProgramStart, opts)
}

// Write writes the listing lines in assembler compatible format.
func Write(w io.Writer, lines []Line, base uint16, opts Options) error {
	if _, err := fmt.Fprintf(w, "; CHIP-8 ROM Disassembly\n"); err != nil {
		return fmt.Errorf("writing header comment: %w", err)
	}
	if _, err := fmt.Fprintf(w, "; Code base address: $%04X\n\n", base); err != nil {
		return fmt.Errorf("writing code base address: %w", err)
	}
	if _, err := fmt.Fprintf(w, ".org $%03X\n\n", base); err != nil {
		return fmt.Errorf("writing org directive: %w", err)
	}

	end := endIndex(lines, opts)
	var conditional bool
	for _, line := range lines[:end] {
		if err := writeLine(w, line, conditional, opts); err != nil {
			return fmt.Errorf("writing line at $%04X: %w", line.Address, err)
		}
		conditional = line.IsSkip()

		if line.IsJump() || line.isReturn() {
			if _, err := fmt.Fprintln(w); err != nil {
				return fmt.Errorf("writing separator: %w", err)
			}
		}
	}
	return nil
}

// writeLine writes a single line, instructions that are conditionally
// skipped are indented further.
func writeLine(w io.Writer, line Line, conditional bool, opts Options) error {
	if line.Label != "" {
		if _, err := fmt.Fprintf(w, "%s:\n", line.Label); err != nil {
			return fmt.Errorf("writing label %s: %w", line.Label, err)
		}
	}

	code := "    " + line.Code
	if conditional {
		code = "  " + code
	}
	comment := line.comment(opts)
	if comment == "" {
		_, err := fmt.Fprintf(w, "%s\n", code)
		return err
	}
	_, err := fmt.Fprintf(w, "%-32s ; %s\n", code, comment)
	return err
}

// endIndex finds the end of the last meaningful line, skipping trailing
// zero bytes unless requested.
func endIndex(lines []Line, opts Options) int {
	if opts.ZeroBytes {
		return len(lines)
	}

	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if line.Label != "" || line.isCode {
			return i + 1
		}
		for _, b := range line.Data {
			if b != 0 {
				return i + 1
			}
		}
	}
	return 0
}

// IsJump returns whether the instruction of the line transfers control
// without returning.
func (l Line) IsJump() bool {
	return l.isCode && instructions[l.ins.Op] == cpuchip8.Jp
}

func (l Line) isReturn() bool {
	return l.isCode && instructions[l.ins.Op] == cpuchip8.Ret
}

// IsCall returns whether the instruction of the line is a subroutine call.
func (l Line) IsCall() bool {
	return l.isCode && instructions[l.ins.Op] == cpuchip8.Call
}

// IsSkip returns whether the instruction of the line conditionally skips the
// next instruction.
func (l Line) IsSkip() bool {
	return l.isCode && cpuchip8.SkipInstructions.Contains(instructions[l.ins.Op].Name)
}
