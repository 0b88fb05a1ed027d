package config

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	keyMap := DefaultKeyMap()
	assert.Len(t, keyMap, 16)

	seen := map[int]bool{}
	for _, key := range keyMap {
		assert.True(t, key >= 0 && key < 16)
		seen[key] = true
	}
	assert.Len(t, seen, 16)

	assert.Equal(t, 0xC, keyMap['4'])
	assert.Equal(t, 0x0, keyMap['x'])
	assert.Equal(t, 0xF, keyMap['v'])
}

func TestRGBA(t *testing.T) {
	r, g, b, a := RGBA(DefaultPalette().Background)
	assert.Equal(t, byte(0x9B), r)
	assert.Equal(t, byte(0xBC), g)
	assert.Equal(t, byte(0x0F), b)
	assert.Equal(t, byte(0xFF), a)
}

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
}
