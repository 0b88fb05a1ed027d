package host

import (
	"github.com/retroenv/retrochip8/internal/chip8"
)

type fakeDisplay struct {
	frames     []chip8.Frame
	closeAfter int // close after this many drawn frames, 0 never closes
}

func (d *fakeDisplay) Draw(frame chip8.Frame) error {
	d.frames = append(d.frames, frame)
	return nil
}

func (d *fakeDisplay) Closed() bool {
	return d.closeAfter > 0 && len(d.frames) >= d.closeAfter
}

type fakeKeyboard struct {
	keys  [chip8.KeyCount]bool
	err   error
	polls int
}

func (k *fakeKeyboard) Poll() ([chip8.KeyCount]bool, error) {
	k.polls++
	return k.keys, k.err
}

type fakeBuzzer struct {
	calls []bool
}

func (b *fakeBuzzer) Buzz(active bool) {
	b.calls = append(b.calls, active)
}
