package terminal

import (
	"bufio"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/chip8"
)

const (
	cursorHome  = "\x1b[H"
	clearScreen = "\x1b[2J"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// half block characters, indexed by top pixel | bottom pixel<<1
var blocks = [4]string{" ", "▀", "▄", "█"}

// Screen renders frames as text, every character cell shows two pixel rows.
type Screen struct {
	w io.Writer
}

// NewScreen returns a screen that writes to w.
func NewScreen(w io.Writer) *Screen {
	return &Screen{w: w}
}

// Draw renders the frame at the top left corner of the terminal.
func (s *Screen) Draw(frame chip8.Frame) error {
	return Render(s.w, frame)
}

// Render writes the frame with the cursor moved to the top left corner
// first. Lines end with carriage return and line feed as output processing
// can be disabled in raw mode.
func Render(w io.Writer, frame chip8.Frame) error {
	buf := bufio.NewWriter(w)
	_, _ = buf.WriteString(cursorHome)

	for y := 0; y < chip8.ScreenHeight; y += 2 {
		for x := range chip8.ScreenWidth {
			index := 0
			if frame.Pixel(x, y) {
				index |= 1
			}
			if frame.Pixel(x, y+1) {
				index |= 2
			}
			_, _ = buf.WriteString(blocks[index])
		}
		_, _ = buf.WriteString("\r\n")
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
