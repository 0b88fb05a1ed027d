package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/assembler"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/debugger"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/host"
	sdlhost "github.com/retroenv/retrochip8/internal/host/sdl"
	"github.com/retroenv/retrochip8/internal/host/terminal"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/verification"
	"github.com/retroenv/retrogolib/log"
)

const displaySDL = "sdl"

type runCommand struct {
	options.Run
	app *App
}

func (c *runCommand) Execute(_ []string) error {
	return c.app.run(c.Run)
}

type debugCommand struct {
	options.Debug
	app *App
}

func (c *debugCommand) Execute(_ []string) error {
	return c.app.debug(c.Debug)
}

type disasmCommand struct {
	options.Disasm
	app *App
}

func (c *disasmCommand) Execute(_ []string) error {
	return c.app.disassemble(c.Disasm)
}

type asmCommand struct {
	options.Assemble
	app *App
}

func (c *asmCommand) Execute(_ []string) error {
	return c.app.assemble(c.Assemble)
}

// loadInterpreter reads the program image and returns an interpreter with
// the program loaded.
func (a *App) loadInterpreter(file string) (*chip8.Interpreter, []byte, error) {
	rom, err := a.loader.Load(file)
	if err != nil {
		return nil, nil, fmt.Errorf("loading program: %w", err)
	}

	in := chip8.New()
	if err := in.Load(rom); err != nil {
		return nil, nil, fmt.Errorf("loading program: %w", err)
	}

	a.logger.Debug("Program loaded",
		log.String("file", file),
		log.Int("size", len(rom)))
	return in, rom, nil
}

func (a *App) run(opts options.Run) error {
	in, _, err := a.loadInterpreter(opts.Args.File)
	if err != nil {
		return err
	}

	if opts.Display == displaySDL {
		sdlOptions := sdlhost.Options{
			Scale:   opts.Scale,
			Palette: config.DefaultPalette(),
			KeyMap:  config.DefaultKeyMap(),
			Logger:  a.logger,
		}
		return sdlhost.Run(sdlOptions, func(w *sdlhost.Window) error {
			return a.runHost(in, opts, w, w, w)
		})
	}

	term, err := terminal.New(os.Stdin, a.stdout, config.DefaultKeyMap(), opts.KeyHoldFrames)
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	defer func() {
		if err := term.Close(); err != nil {
			a.logger.Error("Restoring terminal failed", log.Err(err))
		}
	}()
	return a.runHost(in, opts, term, term, term)
}

func (a *App) runHost(in *chip8.Interpreter, opts options.Run,
	display host.Display, keyboard host.Keyboard, buzzer host.Buzzer) error {

	runner := host.NewRunner(a.logger, in, display, keyboard, buzzer)
	runner.FPS = opts.FPS
	runner.InstructionsPerFrame = opts.InstructionsPerFrame
	runner.Trace = opts.Trace

	if err := runner.Run(a.ctx); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

func (a *App) debug(opts options.Debug) error {
	in, rom, err := a.loadInterpreter(opts.Args.File)
	if err != nil {
		return err
	}

	dbg := debugger.New(a.logger, in, rom, a.stdout)
	if err := dbg.Run(opts.HistoryFile); err != nil {
		return fmt.Errorf("running debugger: %w", err)
	}
	return nil
}

func (a *App) disassemble(opts options.Disasm) error {
	rom, err := a.loader.Load(opts.Args.File)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	listingOptions := disasm.Options{
		HexComments:    !opts.NoHexComments,
		OffsetComments: !opts.NoOffsets,
		Labels:         !opts.NoLabels,
		ZeroBytes:      opts.ZeroBytes,
	}

	var buf bytes.Buffer
	if err := disasm.Listing(&buf, rom, listingOptions); err != nil {
		return fmt.Errorf("disassembling: %w", err)
	}

	if err := a.writeOutput(opts.Output, buf.Bytes()); err != nil {
		return err
	}

	if opts.Verify {
		if err := verification.VerifyListing(a.logger, rom, buf.String()); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		a.logger.Info("Verification successful")
	}
	return nil
}

func (a *App) assemble(opts options.Assemble) error {
	source, err := os.ReadFile(opts.Args.File)
	if err != nil {
		return fmt.Errorf("reading source file: %w", err)
	}

	rom, err := assembler.Assemble(opts.Args.File, string(source))
	if err != nil {
		return fmt.Errorf("assembling: %w", err)
	}
	if len(rom) >= chip8.MaxProgramSize {
		return fmt.Errorf("%w: %d bytes", chip8.ErrProgramTooLarge, len(rom))
	}

	if err := os.WriteFile(opts.Output, rom, 0o644); err != nil {
		return fmt.Errorf("writing program image: %w", err)
	}

	a.logger.Info("Program assembled",
		log.String("output", opts.Output),
		log.Int("size", len(rom)))
	return nil
}

// writeOutput writes data to the named file or to stdout if no name is given.
func (a *App) writeOutput(name string, data []byte) error {
	if name == "" {
		if _, err := a.stdout.Write(data); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}

	file, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating file '%s': %w", name, err)
	}
	defer func() { _ = file.Close() }()

	if _, err := io.Copy(file, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing file '%s': %w", name, err)
	}
	return nil
}
