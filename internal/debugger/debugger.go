// Package debugger implements an interactive command line debugger for
// CHIP-8 programs.
package debugger

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/chzyer/readline"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrogolib/log"
)

// DefaultMaxSteps limits the number of instructions executed by continue.
const DefaultMaxSteps = 1_000_000

const (
	defaultDisasmLines = 10
	defaultMemoryBytes = 64
	memoryRowBytes     = 16
)

// ErrUsage is returned for commands with missing or invalid arguments.
var ErrUsage = errors.New("invalid command usage")

// Debugger executes debugger commands against an interpreter.
type Debugger struct {
	MaxSteps int

	logger      *log.Logger
	interpreter *chip8.Interpreter
	rom         []byte
	out         io.Writer
	breakpoints map[uint16]struct{}
}

// New returns a debugger for the interpreter. The program image is used to
// reload the program on restart.
func New(logger *log.Logger, interpreter *chip8.Interpreter, rom []byte, out io.Writer) *Debugger {
	return &Debugger{
		MaxSteps:    DefaultMaxSteps,
		logger:      logger,
		interpreter: interpreter,
		rom:         rom,
		out:         out,
		breakpoints: map[uint16]struct{}{},
	}
}

type command struct {
	names   []string
	args    string
	help    string
	handler func(d *Debugger, args []string) (bool, error)
}

var commands []command

func init() {
	commands = []command{
		{[]string{"step", "s"}, "[n]", "execute the next n instructions", (*Debugger).cmdStep},
		{[]string{"next", "n"}, "", "execute the next instruction, stepping over calls", (*Debugger).cmdNext},
		{[]string{"continue", "c"}, "", "run until a breakpoint or an error", (*Debugger).cmdContinue},
		{[]string{"break", "b"}, "[addr]", "set a breakpoint or list all breakpoints", (*Debugger).cmdBreak},
		{[]string{"delete"}, "addr", "delete a breakpoint", (*Debugger).cmdDelete},
		{[]string{"regs", "r"}, "", "show the registers", (*Debugger).cmdRegs},
		{[]string{"state"}, "", "dump the complete interpreter state", (*Debugger).cmdState},
		{[]string{"disasm", "d"}, "[addr [n]]", "disassemble n instructions", (*Debugger).cmdDisasm},
		{[]string{"mem", "m"}, "addr [n]", "show n bytes of memory", (*Debugger).cmdMem},
		{[]string{"key", "k"}, "key on|off", "press or release a keypad key", (*Debugger).cmdKey},
		{[]string{"screen"}, "", "show the display", (*Debugger).cmdScreen},
		{[]string{"restart"}, "", "reset the interpreter and reload the program", (*Debugger).cmdRestart},
		{[]string{"help", "h"}, "", "show this help message", (*Debugger).cmdHelp},
		{[]string{"quit", "q"}, "", "exit the debugger", (*Debugger).cmdQuit},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if slices.Contains(cmd.names, name) {
			return cmd, true
		}
	}
	return command{}, false
}

// Run reads and executes commands until quit is entered or the input ends.
func (d *Debugger) Run(historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "chip8> ",
		HistoryFile:     historyFile,
		HistoryLimit:    1000,
		AutoComplete:    completer{},
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("creating line editor: %w", err)
	}
	defer func() { _ = rl.Close() }()

	fmt.Fprintln(d.out, "Type 'help' for available commands")
	d.printLocation()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
				return nil
			}
			return fmt.Errorf("reading command: %w", err)
		}

		quit, err := d.Execute(line)
		if err != nil {
			fmt.Fprintf(d.out, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Execute runs a single command line and returns whether the debugger
// should quit.
func (d *Debugger) Execute(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}

	cmd, ok := lookupCommand(strings.ToLower(args[0]))
	if !ok {
		return false, fmt.Errorf("unknown command '%s'", args[0])
	}
	return cmd.handler(d, args[1:])
}

func (d *Debugger) cmdStep(args []string) (bool, error) {
	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return false, fmt.Errorf("%w: step count '%s'", ErrUsage, args[0])
		}
		count = n
	}

	for i := range count {
		if err := d.step(); err != nil {
			return false, err
		}
		if i < count-1 && d.atBreakpoint() {
			fmt.Fprintf(d.out, "Breakpoint at $%03X\n", d.pc())
			break
		}
	}
	d.printLocation()
	return false, nil
}

func (d *Debugger) cmdNext(_ []string) (bool, error) {
	line, err := d.currentLine()
	if err != nil {
		return false, err
	}
	if !line.IsCall() {
		return d.cmdStep(nil)
	}

	returnAddress := d.pc() + uint16(len(line.Data))
	depth := d.interpreter.State().SP
	if err := d.runUntil(func(state chip8.State) bool {
		return state.PC == returnAddress && state.SP == depth
	}); err != nil {
		return false, err
	}
	d.printLocation()
	return false, nil
}

func (d *Debugger) cmdContinue(_ []string) (bool, error) {
	if err := d.runUntil(func(chip8.State) bool { return false }); err != nil {
		return false, err
	}
	d.printLocation()
	return false, nil
}

// runUntil steps until the condition is met, a breakpoint is reached or
// the step limit is exceeded.
func (d *Debugger) runUntil(done func(state chip8.State) bool) error {
	for range d.MaxSteps {
		if err := d.step(); err != nil {
			return err
		}
		if done(d.interpreter.State()) {
			return nil
		}
		if d.atBreakpoint() {
			fmt.Fprintf(d.out, "Breakpoint at $%03X\n", d.pc())
			return nil
		}
	}
	fmt.Fprintf(d.out, "Stopped after %d steps\n", d.MaxSteps)
	return nil
}

func (d *Debugger) step() error {
	if err := d.interpreter.Step(); err != nil {
		d.logger.Debug("Program stopped", log.Err(err))
		return fmt.Errorf("program stopped: %w", err)
	}
	return nil
}

func (d *Debugger) cmdBreak(args []string) (bool, error) {
	if len(args) == 0 {
		if len(d.breakpoints) == 0 {
			fmt.Fprintln(d.out, "No breakpoints set")
			return false, nil
		}
		addresses := make([]uint16, 0, len(d.breakpoints))
		for address := range d.breakpoints {
			addresses = append(addresses, address)
		}
		slices.Sort(addresses)
		for _, address := range addresses {
			fmt.Fprintf(d.out, "Breakpoint at $%03X\n", address)
		}
		return false, nil
	}

	address, err := parseAddress(args[0])
	if err != nil {
		return false, err
	}
	d.breakpoints[address] = struct{}{}
	fmt.Fprintf(d.out, "Breakpoint set at $%03X\n", address)
	return false, nil
}

func (d *Debugger) cmdDelete(args []string) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("%w: delete expects an address", ErrUsage)
	}
	address, err := parseAddress(args[0])
	if err != nil {
		return false, err
	}
	if _, ok := d.breakpoints[address]; !ok {
		return false, fmt.Errorf("no breakpoint at $%03X", address)
	}
	delete(d.breakpoints, address)
	fmt.Fprintf(d.out, "Breakpoint deleted at $%03X\n", address)
	return false, nil
}

func (d *Debugger) cmdRegs(_ []string) (bool, error) {
	state := d.interpreter.State()

	var buf strings.Builder
	for i, value := range state.V {
		fmt.Fprintf(&buf, "V%X=$%02X", i, value)
		if i%8 == 7 {
			buf.WriteByte('\n')
		} else {
			buf.WriteByte(' ')
		}
	}
	fmt.Fprintf(&buf, "PC=$%04X I=$%04X SP=%d DT=$%02X ST=$%02X\n",
		state.PC, state.I, state.SP, state.DelayTimer, state.SoundTimer)

	_, err := io.WriteString(d.out, buf.String())
	return false, err
}

func (d *Debugger) cmdState(_ []string) (bool, error) {
	repr.New(d.out, repr.Indent("  "), repr.OmitEmpty(false)).Println(d.interpreter.State())
	return false, nil
}

func (d *Debugger) cmdDisasm(args []string) (bool, error) {
	address := d.pc()
	count := defaultDisasmLines
	if len(args) > 0 {
		var err error
		if address, err = parseAddress(args[0]); err != nil {
			return false, err
		}
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return false, fmt.Errorf("%w: instruction count '%s'", ErrUsage, args[1])
		}
		count = n
	}

	data := d.readMemory(address, 2*count)
	for _, line := range disasm.Lines(data, address, false) {
		marker := "  "
		if line.Address == d.pc() {
			marker = "=>"
		}
		if _, ok := d.breakpoints[line.Address]; ok {
			marker = marker[:1] + "*"
		}
		fmt.Fprintf(d.out, "%s $%04X  % X  %s\n", marker, line.Address, line.Data, line.Code)
	}
	return false, nil
}

func (d *Debugger) cmdMem(args []string) (bool, error) {
	if len(args) == 0 {
		return false, fmt.Errorf("%w: mem expects an address", ErrUsage)
	}
	address, err := parseAddress(args[0])
	if err != nil {
		return false, err
	}
	count := defaultMemoryBytes
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return false, fmt.Errorf("%w: byte count '%s'", ErrUsage, args[1])
		}
		count = n
	}

	data := d.readMemory(address, count)
	for offset := 0; offset < len(data); offset += memoryRowBytes {
		end := min(offset+memoryRowBytes, len(data))
		fmt.Fprintf(d.out, "$%04X  % X\n", int(address)+offset, data[offset:end])
	}
	return false, nil
}

func (d *Debugger) cmdKey(args []string) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("%w: key expects a key and on or off", ErrUsage)
	}
	key, err := strconv.ParseUint(args[0], 16, 8)
	if err != nil {
		return false, fmt.Errorf("%w: key '%s'", ErrUsage, args[0])
	}

	var pressed bool
	switch strings.ToLower(args[1]) {
	case "on", "down":
		pressed = true
	case "off", "up":
	default:
		return false, fmt.Errorf("%w: key state '%s'", ErrUsage, args[1])
	}

	if err := d.interpreter.SetKey(int(key), pressed); err != nil {
		return false, fmt.Errorf("setting key: %w", err)
	}
	return false, nil
}

func (d *Debugger) cmdScreen(_ []string) (bool, error) {
	frame := d.interpreter.Frame()

	var buf strings.Builder
	for y := range chip8.ScreenHeight {
		for x := range chip8.ScreenWidth {
			if frame.Pixel(x, y) {
				buf.WriteByte('#')
			} else {
				buf.WriteByte('.')
			}
		}
		buf.WriteByte('\n')
	}

	_, err := io.WriteString(d.out, buf.String())
	return false, err
}

func (d *Debugger) cmdRestart(_ []string) (bool, error) {
	d.interpreter.Reset()
	if err := d.interpreter.Load(d.rom); err != nil {
		return false, fmt.Errorf("reloading program: %w", err)
	}
	fmt.Fprintln(d.out, "Program restarted")
	d.printLocation()
	return false, nil
}

func (d *Debugger) cmdHelp(_ []string) (bool, error) {
	fmt.Fprintln(d.out, "Available commands:")
	for _, cmd := range commands {
		usage := strings.Join(cmd.names, ", ")
		if cmd.args != "" {
			usage += " " + cmd.args
		}
		fmt.Fprintf(d.out, "  %-24s %s\n", usage, cmd.help)
	}
	fmt.Fprintln(d.out, "\nAddresses and keys are hexadecimal, an optional $ or 0x prefix is accepted.")
	return false, nil
}

func (d *Debugger) cmdQuit(_ []string) (bool, error) {
	return true, nil
}

func (d *Debugger) pc() uint16 {
	return d.interpreter.State().PC
}

func (d *Debugger) atBreakpoint() bool {
	_, ok := d.breakpoints[d.pc()]
	return ok
}

// currentLine returns the disassembled instruction at the program counter.
func (d *Debugger) currentLine() (disasm.Line, error) {
	pc := d.pc()
	data := d.readMemory(pc, 2)
	lines := disasm.Lines(data, pc, false)
	if len(lines) == 0 {
		return disasm.Line{}, fmt.Errorf("program counter $%04X is outside of memory", pc)
	}
	return lines[0], nil
}

func (d *Debugger) printLocation() {
	if err := d.interpreter.Err(); err != nil {
		fmt.Fprintf(d.out, "Program stopped: %v\n", err)
		return
	}

	line, err := d.currentLine()
	if err != nil {
		fmt.Fprintln(d.out, err)
		return
	}
	fmt.Fprintf(d.out, "$%04X  %s\n", line.Address, line.Code)
}

// readMemory returns up to count bytes starting at address, reading stops at
// the end of memory.
func (d *Debugger) readMemory(address uint16, count int) []byte {
	count = min(count, chip8.MemorySize-int(address))
	data := make([]byte, 0, max(count, 0))
	for i := range count {
		value, err := d.interpreter.ReadMemory(address + uint16(i))
		if err != nil {
			break
		}
		data = append(data, value)
	}
	return data
}

func parseAddress(s string) (uint16, error) {
	trimmed := strings.TrimPrefix(s, "$")
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")

	address, err := strconv.ParseUint(trimmed, 16, 16)
	if err != nil || address >= chip8.MemorySize {
		return 0, fmt.Errorf("%w: address '%s'", ErrUsage, s)
	}
	return uint16(address), nil
}

// completer implements readline.AutoCompleter for the command names.
type completer struct{}

func (completer) Do(line []rune, pos int) ([][]rune, int) {
	input := string(line[:pos])
	if strings.Contains(input, " ") {
		return nil, 0
	}

	var matches [][]rune
	for _, cmd := range commands {
		name := cmd.names[0]
		if strings.HasPrefix(name, input) {
			matches = append(matches, []rune(name[len(input):]))
		}
	}
	return matches, len(input)
}
