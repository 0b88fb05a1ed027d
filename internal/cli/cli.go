// Package cli handles command line interface logic
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// BuildInfo contains the version details printed in the banner.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App contains the command line parser and the shared state of all
// commands.
type App struct {
	Global options.Global

	build  BuildInfo
	ctx    context.Context
	stdout io.Writer
	logger *log.Logger
	loader *loader.Loader
	parser *flags.Parser
}

// New returns the command line application with all commands registered.
func New(ctx context.Context, stdout io.Writer, build BuildInfo) *App {
	a := &App{
		build:  build,
		ctx:    ctx,
		stdout: stdout,
		loader: loader.New(),
	}

	a.parser = flags.NewParser(&a.Global, flags.HelpFlag|flags.PassDoubleDash)
	a.parser.Name = "retrochip8"
	a.parser.CommandHandler = func(command flags.Commander, args []string) error {
		a.logger = config.CreateLogger(a.Global.Debug, a.Global.Quiet)
		a.printBanner()
		return command.Execute(args)
	}

	a.mustAddCommand("run", "Run a program",
		"Run a program image with a terminal or SDL display.",
		&runCommand{app: a})
	a.mustAddCommand("debug", "Debug a program",
		"Start an interactive debugger for a program image.",
		&debugCommand{app: a})
	a.mustAddCommand("disasm", "Disassemble a program",
		"Write an assembler compatible listing of a program image.",
		&disasmCommand{app: a})
	a.mustAddCommand("asm", "Assemble a program",
		"Assemble a source file into a program image.",
		&asmCommand{app: a})
	return a
}

func (a *App) mustAddCommand(name, short, long string, data any) {
	if _, err := a.parser.AddCommand(name, short, long, data); err != nil {
		panic(fmt.Sprintf("adding command %s: %v", name, err))
	}
}

// Execute parses the arguments and runs the selected command. Argument
// errors are returned as UsageError.
func (a *App) Execute(args []string) error {
	_, err := a.parser.ParseArgs(args)
	if err == nil {
		return nil
	}

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) {
		return &UsageError{parser: a.parser, msg: flagsErr.Message, help: flagsErr.Type == flags.ErrHelp}
	}
	return err
}

// Logger returns the logger created for the executed command, or a default
// logger if no command was executed.
func (a *App) Logger() *log.Logger {
	if a.logger == nil {
		a.logger = config.CreateLogger(a.Global.Debug, a.Global.Quiet)
	}
	return a.logger
}

func (a *App) printBanner() {
	if a.Global.Quiet {
		return
	}
	version := buildinfo.Version(a.build.Version, a.build.Commit, a.build.Date)
	a.logger.Info("retrochip8", log.String("version", version))
}

// UsageError represents an error that should show usage information
type UsageError struct {
	parser *flags.Parser
	msg    string
	help   bool
}

func (e *UsageError) Error() string {
	return e.msg
}

// IsHelp returns whether the usage was explicitly requested.
func (e *UsageError) IsHelp() bool {
	return e.help
}

// ShowUsage prints the usage of the program or the active command.
func (e *UsageError) ShowUsage() {
	if e.help {
		// the message of a help request is the formatted help text
		fmt.Println(e.msg)
		return
	}
	if e.msg != "" {
		fmt.Fprintf(os.Stderr, "%s\n\n", e.msg)
	}
	e.parser.WriteHelp(os.Stdout)
	fmt.Println()
}
