package assembler

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrogolib/assert"
)

func TestAssemble_Instructions(t *testing.T) {
	tests := []struct {
		src  string
		word uint16
	}{
		{"cls", 0x00E0},
		{"RET", 0x00EE},
		{"jp $234", 0x1234},
		{"jp V0, $234", 0xB234},
		{"call 0x345", 0x2345},
		{"se V1, $02", 0x3102},
		{"sne VA, 255", 0x4AFF},
		{"se V1, V2", 0x5120},
		{"sne v1, v2", 0x9120},
		{"ld V3, $7F", 0x637F},
		{"ld V3, V4", 0x8340},
		{"ld I, $123", 0xA123},
		{"ld V5, DT", 0xF507},
		{"ld V5, K", 0xF50A},
		{"ld DT, V5", 0xF515},
		{"ld ST, V5", 0xF518},
		{"ld F, V5", 0xF529},
		{"ld B, V5", 0xF533},
		{"ld [I], V5", 0xF555},
		{"ld V5, [I]", 0xF565},
		{"add V1, $01", 0x7101},
		{"add V1, V2", 0x8124},
		{"add I, V2", 0xF21E},
		{"or V1, V2", 0x8121},
		{"and V1, V2", 0x8122},
		{"xor V1, V2", 0x8123},
		{"sub V1, V2", 0x8125},
		{"subn V1, V2", 0x8127},
		{"shr V1", 0x8106},
		{"shr V1, V2", 0x8126},
		{"shl V1", 0x810E},
		{"rnd V1, $0F", 0xC10F},
		{"drw V1, V2, $5", 0xD125},
		{"skp V3", 0xE39E},
		{"sknp V3", 0xE3A1},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			rom, err := Assemble("test.asm", tt.src+"\n")
			assert.NoError(t, err)
			assert.Equal(t, []byte{byte(tt.word >> 8), byte(tt.word)}, rom)
		})
	}
}

func TestAssemble_Labels(t *testing.T) {
	src := `
Start:
    call sub       ; forward reference
    jp Start
sub:
    ld I, sprite
    ret
sprite:
    .byte $F0, $90
`
	rom, err := Assemble("test.asm", src)
	assert.NoError(t, err)
	assert.Equal(t, []byte{
		0x22, 0x04,
		0x12, 0x00,
		0xA2, 0x08,
		0x00, 0xEE,
		0xF0, 0x90,
	}, rom)
}

func TestAssemble_Origin(t *testing.T) {
	rom, err := Assemble("test.asm", ".org $200\nlabel: jp label\n")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x00}, rom)

	// the image is always loaded at $200, a leading origin pads the gap
	rom, err = Assemble("test.asm", ".org $300\nlabel: jp label\n")
	assert.NoError(t, err)
	assert.Len(t, rom, 0x102)
	assert.Equal(t, make([]byte, 0x100), rom[:0x100])
	assert.Equal(t, []byte{0x13, 0x00}, rom[0x100:])

	_, err = Assemble("test.asm", ".org $100\ncls\n")
	assert.True(t, errors.Is(err, ErrOriginBackwards))

	rom, err = Assemble("test.asm", "cls\n.org $206\n.byte 1\n")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xE0, 0, 0, 0, 0, 0x01}, rom)

	_, err = Assemble("test.asm", "cls\ncls\n.org $201\n")
	assert.True(t, errors.Is(err, ErrOriginBackwards))
}

func TestAssemble_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{"unknown mnemonic", "nop\n", ErrUnknownMnemonic},
		{"unknown directive", ".word $1234\n", ErrUnknownDirective},
		{"undefined label", "jp missing\n", ErrUndefinedLabel},
		{"duplicate label", "a:\na:\n", ErrDuplicateLabel},
		{"byte out of range", "ld V0, $100\n", ErrValueOutOfRange},
		{"address out of range", "jp $1000\n", ErrValueOutOfRange},
		{"draw height out of range", "drw V0, V1, 16\n", ErrValueOutOfRange},
		{"label as byte", "x: ld V0, x\n", ErrInvalidOperands},
		{"operand count", "cls V0\n", ErrInvalidOperands},
		{"jump offset register", "jp V1, $200\n", ErrInvalidOperands},
		{"indirect register", "ld [V0], V1\n", ErrInvalidOperands},
		{"data byte out of range", ".byte $1FF\n", ErrValueOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble("test.asm", tt.src)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

func TestAssemble_ErrorPosition(t *testing.T) {
	_, err := Assemble("game.asm", "cls\n  jp nowhere\n")
	assert.ErrorContains(t, err, "game.asm:2:")
}

func TestAssemble_SyntaxError(t *testing.T) {
	_, err := Assemble("game.asm", "ld V0,, V1\n")
	assert.ErrorContains(t, err, "parsing source")
}

func TestAssemble_ListingRoundTrip(t *testing.T) {
	rom := []byte{
		0x00, 0xE0, // cls
		0xA2, 0x0E, // ld I, $20E
		0x60, 0x05, // ld V0, $05
		0x22, 0x0C, // call sub
		0x3F, 0x01, // se VF, $01
		0x12, 0x02, // jp $202
		0xD0, 0x15, // sub: drw V0, V1, $5
		0x00, 0xEE, // ret
		0xF0, 0x90, // sprite data that decodes as unknown opcode
		0x51, 0x23, // non canonical 5xy3
		0x81, 0x26, // shr V1, V2
		0xAB, // odd trailing byte
	}

	for _, opts := range []disasm.Options{disasm.DefaultOptions(), {}} {
		var buf bytes.Buffer
		assert.NoError(t, disasm.Listing(&buf, rom, opts))

		result, err := Assemble("listing.asm", buf.String())
		assert.NoError(t, err)
		assert.Equal(t, rom, result)
	}
}

func TestAssemble_ListingRoundTripAllWords(t *testing.T) {
	const wordsPerImage = 0x400

	for first := 0; first < 0x10000; first += wordsPerImage {
		rom := make([]byte, 0, wordsPerImage*2)
		for word := first; word < first+wordsPerImage; word++ {
			rom = append(rom, byte(word>>8), byte(word))
		}

		var buf bytes.Buffer
		assert.NoError(t, disasm.Listing(&buf, rom, disasm.Options{}))

		result, err := Assemble("listing.asm", buf.String())
		assert.NoError(t, err)
		assert.True(t, bytes.Equal(rom, result), fmt.Sprintf("image starting with word $%04X differs", first))
	}
}

func TestAssemble_FontGlyphProgram(t *testing.T) {
	src := `
    ld V0, 7
    ld F, V0
    drw V1, V1, 5
`
	rom, err := Assemble("font.asm", src)
	assert.NoError(t, err)

	in := chip8.New()
	assert.NoError(t, in.Load(rom))
	for range 3 {
		assert.NoError(t, in.Step())
	}
	assert.Equal(t, uint16(chip8.FontStart+7*5), in.State().I)
	frame := in.Frame()
	assert.True(t, frame.Pixel(0, 0))
}
