package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		word uint16
		op   Opcode
	}{
		{"clear", 0x00E0, OpClear},
		{"return", 0x00EE, OpReturn},
		{"jump", 0x1234, OpJump},
		{"call", 0x2345, OpCall},
		{"skip equal byte", 0x3A12, OpSkipEqualByte},
		{"skip not equal byte", 0x4A12, OpSkipNotEqualByte},
		{"skip equal register", 0x5AB0, OpSkipEqualReg},
		{"skip equal register ignores low nibble", 0x5AB3, OpSkipEqualReg},
		{"load byte", 0x6A02, OpLoadByte},
		{"add byte", 0x7A02, OpAddByte},
		{"load register", 0x8AB0, OpLoadReg},
		{"or", 0x8AB1, OpOr},
		{"and", 0x8AB2, OpAnd},
		{"xor", 0x8AB3, OpXor},
		{"add register", 0x8AB4, OpAddReg},
		{"sub", 0x8AB5, OpSub},
		{"shift right", 0x8AB6, OpShiftRight},
		{"subn", 0x8AB7, OpSubN},
		{"shift left", 0x8ABE, OpShiftLeft},
		{"skip not equal register", 0x9AB0, OpSkipNotEqualReg},
		{"load index", 0xA123, OpLoadIndex},
		{"jump v0", 0xB123, OpJumpV0},
		{"random", 0xCA0F, OpRandom},
		{"draw", 0xDAB5, OpDraw},
		{"skip key", 0xEA9E, OpSkipKey},
		{"skip not key", 0xEAA1, OpSkipNotKey},
		{"load delay", 0xFA07, OpLoadDelay},
		{"wait key", 0xFA0A, OpWaitKey},
		{"set delay", 0xFA15, OpSetDelay},
		{"set sound", 0xFA18, OpSetSound},
		{"add index", 0xFA1E, OpAddIndex},
		{"load font", 0xFA29, OpLoadFont},
		{"store bcd", 0xFA33, OpStoreBCD},
		{"store registers", 0xFA55, OpStoreRegisters},
		{"load registers", 0xFA65, OpLoadRegisters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := Decode(tt.word)
			assert.NoError(t, err)
			assert.Equal(t, tt.op, ins.Op)
			assert.Equal(t, tt.word, ins.Word)
		})
	}
}

func TestDecode_Fields(t *testing.T) {
	ins, err := Decode(0xD12F)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0x1), ins.X)
	assert.Equal(t, uint8(0x2), ins.Y)
	assert.Equal(t, uint8(0xF), ins.N)
	assert.Equal(t, uint8(0x2F), ins.NN)
	assert.Equal(t, uint16(0x12F), ins.NNN)
}

func TestDecode_Deterministic(t *testing.T) {
	for word := 0; word <= 0xFFFF; word += 0x0101 {
		first, firstErr := Decode(uint16(word))
		second, secondErr := Decode(uint16(word))
		assert.Equal(t, first, second)
		assert.Equal(t, firstErr == nil, secondErr == nil)
	}
}

func TestDecode_Unknown(t *testing.T) {
	words := []uint16{0x0000, 0x0123, 0x00E1, 0x8008, 0x800F, 0xE000, 0xE09F, 0xF000, 0xF0FF}

	for _, word := range words {
		ins, err := Decode(word)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownOpcode))
		assert.Equal(t, OpUnknown, ins.Op)
	}
}

func TestOpcode_String(t *testing.T) {
	assert.Equal(t, "draw", OpDraw.String())
	assert.Equal(t, "load-registers", OpLoadRegisters.String())
	assert.Equal(t, "opcode(200)", Opcode(200).String())

	ins, err := Decode(0x00E0)
	assert.NoError(t, err)
	assert.Equal(t, "clear ($00E0)", ins.String())
}
