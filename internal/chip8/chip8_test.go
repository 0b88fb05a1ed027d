package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// newWithProgram returns an interpreter with the given instruction words
// loaded at ProgramStart and a random source that always returns 0xFF.
func newWithProgram(t *testing.T, words ...uint16) *Interpreter {
	t.Helper()

	rom := make([]byte, 0, len(words)*opcodeSize)
	for _, word := range words {
		rom = append(rom, byte(word>>8), byte(word))
	}

	in := New(WithRandomSource(RandomFunc(func() byte { return 0xFF })))
	assert.NoError(t, in.Load(rom))
	return in
}

// stepN executes n steps and fails the test on the first error.
func stepN(t *testing.T, in *Interpreter, n int) {
	t.Helper()
	for range n {
		assert.NoError(t, in.Step())
	}
}

func TestNew(t *testing.T) {
	in := New()

	state := in.State()
	assert.Equal(t, uint16(ProgramStart), state.PC)
	assert.Equal(t, uint16(0), state.I)
	assert.Equal(t, uint8(0), state.SP)

	for i, b := range font {
		value, err := in.ReadMemory(uint16(FontStart + i))
		assert.NoError(t, err)
		assert.Equal(t, b, value)
	}

	value, err := in.ReadMemory(ProgramStart)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), value)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, false},
		{"small", 16, false},
		{"largest", MaxProgramSize - 1, false},
		{"exact memory size", MaxProgramSize, true},
		{"oversized", MaxProgramSize + 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New()
			rom := make([]byte, tt.size)
			for i := range rom {
				rom[i] = 0xAA
			}

			err := in.Load(rom)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrProgramTooLarge))
				value, readErr := in.ReadMemory(ProgramStart)
				assert.NoError(t, readErr)
				assert.Equal(t, byte(0), value)
				return
			}

			assert.NoError(t, err)
			if tt.size > 0 {
				value, readErr := in.ReadMemory(uint16(ProgramStart + tt.size - 1))
				assert.NoError(t, readErr)
				assert.Equal(t, byte(0xAA), value)
			}
		})
	}
}

func TestStep_EndToEnd(t *testing.T) {
	in := newWithProgram(t, 0x6A02, 0x00EE)

	assert.NoError(t, in.Step())

	state := in.State()
	assert.Equal(t, byte(2), state.V[0xA])
	assert.Equal(t, uint16(ProgramStart+opcodeSize), state.PC)
}

func TestStep_ProgramCounterOutOfBounds(t *testing.T) {
	in := newWithProgram(t, 0x1FFF) // jump to the last memory cell

	assert.NoError(t, in.Step())
	err := in.Step()
	assert.True(t, errors.Is(err, ErrProgramCounterOutOfBounds))
}

func TestStep_FatalErrorLatches(t *testing.T) {
	in := newWithProgram(t, 0x00EE)

	err := in.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.True(t, errors.Is(in.Err(), ErrStackUnderflow))

	again := in.Step()
	assert.Equal(t, err, again)
	assert.Equal(t, uint16(ProgramStart+opcodeSize), in.State().PC)

	in.Reset()
	assert.NoError(t, in.Err())
	assert.Equal(t, uint16(ProgramStart), in.State().PC)
}

func TestStep_UnknownOpcode(t *testing.T) {
	in := newWithProgram(t, 0x0123)

	err := in.Step()
	assert.True(t, errors.Is(err, ErrUnknownOpcode))
	assert.ErrorContains(t, err, "$0200")
}

func TestSetKey(t *testing.T) {
	in := New()

	assert.NoError(t, in.SetKey(0, true))
	assert.NoError(t, in.SetKey(KeyCount-1, true))
	assert.NoError(t, in.SetKey(0, false))

	state := in.State()
	assert.False(t, state.Keys[0])
	assert.True(t, state.Keys[KeyCount-1])

	assert.True(t, errors.Is(in.SetKey(KeyCount, true), ErrKeyOutOfRange))
	assert.True(t, errors.Is(in.SetKey(-1, true), ErrKeyOutOfRange))
}

func TestConsumeFrame(t *testing.T) {
	// set I to glyph 0 and draw it at 0,0
	in := newWithProgram(t, 0xA050, 0xD005, 0x1204)

	_, ok := in.ConsumeFrame()
	assert.False(t, ok)

	stepN(t, in, 2)
	frame, ok := in.ConsumeFrame()
	assert.True(t, ok)
	assert.True(t, frame.Pixel(0, 0))
	assert.False(t, frame.Pixel(1, 1))

	_, ok = in.ConsumeFrame()
	assert.False(t, ok)

	// the returned frame is a copy
	frame[0] = 0
	current := in.Frame()
	assert.True(t, current.Pixel(0, 0))
}

func TestPeek(t *testing.T) {
	in := newWithProgram(t, 0x6A02, 0x00E0)

	ins, err := in.Peek()
	assert.NoError(t, err)
	assert.Equal(t, OpLoadByte, ins.Op)
	assert.Equal(t, uint16(ProgramStart), in.State().PC)

	assert.NoError(t, in.Step())
	ins, err = in.Peek()
	assert.NoError(t, err)
	assert.Equal(t, OpClear, ins.Op)
}

func TestReadMemory_OutOfBounds(t *testing.T) {
	in := New()
	_, err := in.ReadMemory(MemorySize)
	assert.True(t, errors.Is(err, ErrMemoryOutOfBounds))
}

func TestSoundActive(t *testing.T) {
	in := newWithProgram(t, 0x6002, 0xF018, 0x1204)

	assert.False(t, in.SoundActive())
	stepN(t, in, 2)
	assert.True(t, in.SoundActive())
	stepN(t, in, 1)
	assert.False(t, in.SoundActive())
}

func TestFrame_Pixel(t *testing.T) {
	var frame Frame
	frame[ScreenWidth+2] = 1

	assert.True(t, frame.Pixel(2, 1))
	assert.False(t, frame.Pixel(1, 2))
	assert.False(t, frame.Pixel(-1, 0))
	assert.False(t, frame.Pixel(ScreenWidth, 0))
	assert.False(t, frame.Pixel(0, ScreenHeight))
}
