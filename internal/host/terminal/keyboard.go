package terminal

import (
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/retroenv/retrochip8/internal/chip8"
)

const (
	keyEscape = 0x1B
	keyCtrlC  = 0x03
)

// Keyboard translates characters read from a terminal into keypad states.
// Terminals only report key presses, so a pressed key is held for a number
// of polls. The reader has to return immediately if no input is available,
// an io.EOF result is treated as no input.
type Keyboard struct {
	reader     io.Reader
	keyMap     map[rune]int
	holdFrames int

	held   [chip8.KeyCount]int
	closed bool
	buf    []byte
}

// NewKeyboard returns a keyboard reading from reader.
func NewKeyboard(reader io.Reader, keyMap map[rune]int, holdFrames int) *Keyboard {
	return &Keyboard{
		reader:     reader,
		keyMap:     keyMap,
		holdFrames: max(holdFrames, 1),
		buf:        make([]byte, 64),
	}
}

// Poll reads all pending input and returns the keypad state.
func (k *Keyboard) Poll() ([chip8.KeyCount]bool, error) {
	var keys [chip8.KeyCount]bool

	for i := range k.held {
		if k.held[i] > 0 {
			k.held[i]--
		}
	}

	n, err := k.reader.Read(k.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return keys, fmt.Errorf("reading terminal input: %w", err)
	}
	data := k.buf[:n]
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case keyCtrlC:
			k.closed = true
		case keyEscape:
			// a lone escape is the key itself, otherwise it starts a sequence
			if i == len(data)-1 {
				k.closed = true
			} else {
				i = skipEscapeSequence(data, i)
			}
		default:
			k.press(data[i])
		}
	}

	for i, frames := range k.held {
		keys[i] = frames > 0
	}
	return keys, nil
}

func (k *Keyboard) press(b byte) {
	key, ok := k.keyMap[unicode.ToLower(rune(b))]
	if !ok || key < 0 || key >= chip8.KeyCount {
		return
	}
	k.held[key] = k.holdFrames
}

// skipEscapeSequence returns the index of the last byte of the escape
// sequence that starts at start. CSI and SS3 sequences like cursor keys end
// with a final byte, any other character following escape is an alt key.
func skipEscapeSequence(data []byte, start int) int {
	i := start + 1
	switch data[i] {
	case '[':
		for i++; i < len(data); i++ {
			if data[i] >= 0x40 && data[i] <= 0x7E {
				return i
			}
		}
		return len(data) - 1
	case 'O':
		return min(i+1, len(data)-1)
	default:
		return i
	}
}

// Closed returns whether escape was pressed.
func (k *Keyboard) Closed() bool {
	return k.closed
}
