// Package terminal implements a host that renders to an ANSI terminal and
// reads the keypad from the terminal input.
package terminal

import (
	"fmt"
	"io"
	"os"
)

// bell is written to the terminal when the sound timer becomes active.
const bell = "\a"

// Terminal combines screen, keyboard and buzzer of a terminal session.
type Terminal struct {
	*Screen
	*Keyboard

	out      io.Writer
	sounding bool
	restore  func() error
}

// New puts the input terminal into raw mode and clears the output. Close
// has to be called to restore the terminal.
func New(in *os.File, out io.Writer, keyMap map[rune]int, holdFrames int) (*Terminal, error) {
	restore, err := enableRawMode(int(in.Fd()))
	if err != nil {
		return nil, fmt.Errorf("enabling raw terminal mode: %w", err)
	}

	t := newTerminal(in, out, keyMap, holdFrames)
	t.restore = restore

	if _, err := io.WriteString(out, hideCursor+clearScreen); err != nil {
		_ = restore()
		return nil, fmt.Errorf("clearing terminal: %w", err)
	}
	return t, nil
}

func newTerminal(in io.Reader, out io.Writer, keyMap map[rune]int, holdFrames int) *Terminal {
	return &Terminal{
		Screen:   NewScreen(out),
		Keyboard: NewKeyboard(in, keyMap, holdFrames),
		out:      out,
	}
}

// Buzz rings the terminal bell when the sound becomes active.
func (t *Terminal) Buzz(active bool) {
	if active && !t.sounding {
		_, _ = io.WriteString(t.out, bell)
	}
	t.sounding = active
}

// Close shows the cursor again and restores the terminal state.
func (t *Terminal) Close() error {
	_, _ = io.WriteString(t.out, showCursor)
	if t.restore == nil {
		return nil
	}
	return t.restore()
}
