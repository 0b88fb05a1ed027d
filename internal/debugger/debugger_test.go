package debugger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// testProgram calls a subroutine and loops forever afterwards.
var testProgram = []byte{
	0x60, 0x05, // $200 ld V0, $05
	0x22, 0x0A, // $202 call $20A
	0x70, 0x01, // $204 add V0, $01
	0x12, 0x06, // $206 jp $206
	0x00, 0x00, // $208
	0x61, 0x03, // $20A ld V1, $03
	0x00, 0xEE, // $20C ret
}

func newDebugger(t *testing.T, rom []byte) (*Debugger, *chip8.Interpreter, *bytes.Buffer) {
	t.Helper()

	in := chip8.New()
	assert.NoError(t, in.Load(rom))
	var out bytes.Buffer
	return New(log.NewTestLogger(t), in, rom, &out), in, &out
}

func execute(t *testing.T, d *Debugger, line string) {
	t.Helper()
	quit, err := d.Execute(line)
	assert.NoError(t, err)
	assert.False(t, quit)
}

func TestDebugger_Step(t *testing.T) {
	d, in, out := newDebugger(t, testProgram)

	execute(t, d, "step")
	assert.Equal(t, uint16(0x202), in.State().PC)
	assert.True(t, strings.Contains(out.String(), "$0202  call $20A"))

	execute(t, d, "s 2")
	assert.Equal(t, uint16(0x20C), in.State().PC)
	assert.Equal(t, byte(3), in.State().V[1])
}

func TestDebugger_StepInvalidCount(t *testing.T) {
	d, _, _ := newDebugger(t, testProgram)

	_, err := d.Execute("step x")
	assert.True(t, errors.Is(err, ErrUsage))
	_, err = d.Execute("step 0")
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestDebugger_Next(t *testing.T) {
	d, in, _ := newDebugger(t, testProgram)

	execute(t, d, "next")
	assert.Equal(t, uint16(0x202), in.State().PC)

	// the call is executed completely
	execute(t, d, "n")
	state := in.State()
	assert.Equal(t, uint16(0x204), state.PC)
	assert.Equal(t, byte(3), state.V[1])
	assert.Equal(t, uint8(0), state.SP)
}

func TestDebugger_BreakContinue(t *testing.T) {
	d, in, out := newDebugger(t, testProgram)

	execute(t, d, "break $206")
	execute(t, d, "continue")
	assert.Equal(t, uint16(0x206), in.State().PC)
	assert.Equal(t, byte(6), in.State().V[0])
	assert.True(t, strings.Contains(out.String(), "Breakpoint at $206"))

	out.Reset()
	execute(t, d, "b")
	assert.Equal(t, "Breakpoint at $206\n", out.String())

	execute(t, d, "delete 206")
	_, err := d.Execute("delete 206")
	assert.Error(t, err)

	out.Reset()
	execute(t, d, "break")
	assert.Equal(t, "No breakpoints set\n", out.String())
}

func TestDebugger_ContinueStepLimit(t *testing.T) {
	d, _, out := newDebugger(t, testProgram)
	d.MaxSteps = 100

	execute(t, d, "c")
	assert.True(t, strings.Contains(out.String(), "Stopped after 100 steps"))
}

func TestDebugger_FatalError(t *testing.T) {
	d, _, out := newDebugger(t, []byte{0x00, 0xEE})

	_, err := d.Execute("step")
	assert.True(t, errors.Is(err, chip8.ErrStackUnderflow))

	out.Reset()
	execute(t, d, "restart")
	assert.True(t, strings.Contains(out.String(), "Program restarted"))
	assert.True(t, strings.Contains(out.String(), "$0200  ret"))
}

func TestDebugger_Regs(t *testing.T) {
	d, _, out := newDebugger(t, testProgram)

	execute(t, d, "step")
	out.Reset()
	execute(t, d, "regs")
	assert.True(t, strings.Contains(out.String(), "V0=$05"))
	assert.True(t, strings.Contains(out.String(), "PC=$0202"))
}

func TestDebugger_State(t *testing.T) {
	d, _, out := newDebugger(t, testProgram)

	execute(t, d, "state")
	// registers that are still zero are part of the dump
	for _, field := range []string{"SoundTimer", "DelayTimer", "SP", "Stack", "Keys"} {
		assert.True(t, strings.Contains(out.String(), field), field)
	}
}

func TestDebugger_Disasm(t *testing.T) {
	d, _, out := newDebugger(t, testProgram)

	execute(t, d, "break 202")
	out.Reset()
	execute(t, d, "disasm 200 2")
	assert.Equal(t, "=> $0200  60 05  ld V0, $05\n * $0202  22 0A  call $20A\n", out.String())

	_, err := d.Execute("disasm 200 x")
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestDebugger_Mem(t *testing.T) {
	d, _, out := newDebugger(t, testProgram)

	execute(t, d, "mem 0x50 5")
	assert.Equal(t, "$0050  F0 90 90 90 F0\n", out.String())

	out.Reset()
	execute(t, d, "mem FFE 10")
	assert.Equal(t, "$0FFE  00 00\n", out.String())

	_, err := d.Execute("mem")
	assert.True(t, errors.Is(err, ErrUsage))
	_, err = d.Execute("mem 1000")
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestDebugger_Key(t *testing.T) {
	d, in, _ := newDebugger(t, testProgram)

	execute(t, d, "key a on")
	assert.True(t, in.State().Keys[0xA])
	execute(t, d, "k A off")
	assert.False(t, in.State().Keys[0xA])

	_, err := d.Execute("key 10 on")
	assert.True(t, errors.Is(err, chip8.ErrKeyOutOfRange))
	_, err = d.Execute("key 1 maybe")
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestDebugger_Screen(t *testing.T) {
	// draw glyph 0 at 0,0
	d, _, out := newDebugger(t, []byte{0xA0, 0x50, 0xD0, 0x05})

	execute(t, d, "step 2")
	out.Reset()
	execute(t, d, "screen")

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Len(t, lines, chip8.ScreenHeight)
	assert.Equal(t, "####....", lines[0][:8])
	assert.Equal(t, "#..#....", lines[1][:8])
}

func TestDebugger_Restart(t *testing.T) {
	d, in, _ := newDebugger(t, testProgram)

	execute(t, d, "step 2")
	execute(t, d, "restart")
	state := in.State()
	assert.Equal(t, uint16(chip8.ProgramStart), state.PC)
	assert.Equal(t, byte(0), state.V[0])
}

func TestDebugger_Commands(t *testing.T) {
	d, _, out := newDebugger(t, testProgram)

	execute(t, d, "")
	execute(t, d, "help")
	assert.True(t, strings.Contains(out.String(), "continue, c"))

	_, err := d.Execute("bogus")
	assert.ErrorContains(t, err, "unknown command")

	quit, err := d.Execute("quit")
	assert.NoError(t, err)
	assert.True(t, quit)
}

func TestParseAddress(t *testing.T) {
	for _, s := range []string{"$20A", "0x20A", "20a"} {
		address, err := parseAddress(s)
		assert.NoError(t, err)
		assert.Equal(t, uint16(0x20A), address)
	}

	_, err := parseAddress("zz")
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestCompleter(t *testing.T) {
	matches, length := completer{}.Do([]rune("co"), 2)
	assert.Equal(t, 2, length)
	assert.Equal(t, [][]rune{[]rune("ntinue")}, matches)

	matches, _ = completer{}.Do([]rune("step 1"), 6)
	assert.Empty(t, matches)
}
