// Package host drives an interpreter with a frame clock and connects it to
// display, keyboard and sound backends.
package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrogolib/log"
)

// Display shows interpreter frames.
type Display interface {
	Draw(frame chip8.Frame) error
	// Closed returns whether the user requested to end the run.
	Closed() bool
}

// Keyboard reports the current state of the hexadecimal keypad.
type Keyboard interface {
	Poll() ([chip8.KeyCount]bool, error)
}

// Buzzer plays a tone while the sound timer is active.
type Buzzer interface {
	Buzz(active bool)
}

// ErrInvalidSettings is returned for non positive frame rates or instruction
// counts.
var ErrInvalidSettings = errors.New("invalid runner settings")

// Runner executes a fixed number of instructions per display frame.
type Runner struct {
	FPS                  int
	InstructionsPerFrame int
	Trace                bool // log every executed instruction at debug level

	logger      *log.Logger
	interpreter *chip8.Interpreter
	display     Display
	keyboard    Keyboard
	buzzer      Buzzer
}

// NewRunner returns a runner with the default frame rate and instruction
// count. The buzzer is optional and can be nil.
func NewRunner(logger *log.Logger, interpreter *chip8.Interpreter,
	display Display, keyboard Keyboard, buzzer Buzzer) *Runner {

	return &Runner{
		FPS:                  config.DefaultFPS,
		InstructionsPerFrame: config.DefaultInstructionsPerFrame,
		logger:               logger,
		interpreter:          interpreter,
		display:              display,
		keyboard:             keyboard,
		buzzer:               buzzer,
	}
}

// Run executes frames until the context is cancelled, the display is closed
// or the interpreter stops with a fatal error.
func (r *Runner) Run(ctx context.Context) error {
	if r.FPS <= 0 || r.InstructionsPerFrame <= 0 {
		return fmt.Errorf("%w: fps %d, instructions per frame %d",
			ErrInvalidSettings, r.FPS, r.InstructionsPerFrame)
	}

	ticker := time.NewTicker(time.Second / time.Duration(r.FPS))
	defer ticker.Stop()
	defer r.buzz(false)

	r.logger.Debug("Starting run",
		log.Int("fps", r.FPS),
		log.Int("instructionsPerFrame", r.InstructionsPerFrame))

	for frames := 0; ; frames++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.RunFrame(); err != nil {
			return err
		}
		if r.display.Closed() {
			r.logger.Debug("Display closed", log.Int("frames", frames+1))
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunFrame processes a single frame: the keyboard state is applied, the
// instructions of the frame are executed and a changed frame is drawn.
func (r *Runner) RunFrame() error {
	keys, err := r.keyboard.Poll()
	if err != nil {
		return fmt.Errorf("polling keyboard: %w", err)
	}
	for key, pressed := range keys {
		if err := r.interpreter.SetKey(key, pressed); err != nil {
			return fmt.Errorf("setting key state: %w", err)
		}
	}

	for range r.InstructionsPerFrame {
		if r.Trace {
			r.trace()
		}

		pc := r.interpreter.State().PC
		if err := r.interpreter.Step(); err != nil {
			return fmt.Errorf("executing instruction at $%04X: %w", pc, err)
		}
	}

	if frame, ok := r.interpreter.ConsumeFrame(); ok {
		if err := r.display.Draw(frame); err != nil {
			return fmt.Errorf("drawing frame: %w", err)
		}
	}

	r.buzz(r.interpreter.SoundActive())
	return nil
}

func (r *Runner) buzz(active bool) {
	if r.buzzer != nil {
		r.buzzer.Buzz(active)
	}
}

// trace logs the instruction that is executed next.
func (r *Runner) trace() {
	state := r.interpreter.State()
	ins, err := r.interpreter.Peek()
	if err != nil {
		// the step that follows reports the error
		return
	}

	code, err := disasm.Disassemble(ins.Word)
	if err != nil {
		code = ins.String()
	}
	r.logger.Debug("Executing",
		log.Hex("pc", state.PC),
		log.String("instruction", code),
		log.Hex("i", state.I))
}
