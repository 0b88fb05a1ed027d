// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrogolib/log"
)

// Default run settings.
const (
	DefaultFPS                  = 60
	DefaultInstructionsPerFrame = 10
	DefaultScale                = 8

	// DefaultKeyHoldFrames is the number of frames that a key stays pressed
	// on hosts that do not deliver key release events.
	DefaultKeyHoldFrames = 6
)

// Palette defines the RGB colors of unlit and lit pixels.
type Palette struct {
	Background uint32
	Foreground uint32
}

// DefaultPalette returns the green monochrome palette.
func DefaultPalette() Palette {
	return Palette{
		Background: 0x9BBC0F,
		Foreground: 0x0F380F,
	}
}

// RGBA returns the red, green, blue and alpha components of a palette color.
func RGBA(color uint32) (r, g, b, a byte) {
	return byte(color >> 16), byte(color >> 8), byte(color), 0xFF
}

// DefaultKeyMap returns the mapping of host keyboard characters to the
// hexadecimal keypad. The left block of a QWERTY keyboard is laid out like
// the keypad:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
func DefaultKeyMap() map[rune]int {
	return map[rune]int{
		'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
		'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
		'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
		'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
	}
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
