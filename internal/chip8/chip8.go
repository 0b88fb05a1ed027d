package chip8

import "fmt"

// CHIP-8 machine constants.
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000
	// FontStart is the memory address of the built-in hexadecimal font.
	FontStart = 0x050
	// ProgramStart is the memory address that programs are loaded to and
	// where execution begins.
	ProgramStart = 0x200
	// MaxProgramSize is the exclusive upper bound of a loadable program size.
	MaxProgramSize = MemorySize - ProgramStart

	RegisterCount = 16
	StackSize     = 16
	KeyCount      = 16

	ScreenWidth  = 64
	ScreenHeight = 32
	ScreenSize   = ScreenWidth * ScreenHeight
)

const (
	flagRegister = 0xF
	opcodeSize   = 2
	glyphSize    = 5
)

// Interpreter is the CHIP-8 virtual CPU. It owns all machine state.
type Interpreter struct {
	memory [MemorySize]byte
	v      [RegisterCount]byte
	i      uint16
	pc     uint16

	stack [StackSize]uint16
	sp    uint8

	delayTimer byte
	soundTimer byte

	screen Frame
	dirty  bool
	keys   [KeyCount]bool

	random RandomSource
	err    error // latched fatal error
}

// State is a snapshot of the interpreter registers.
type State struct {
	V          [RegisterCount]byte
	I          uint16
	PC         uint16
	SP         uint8
	Stack      [StackSize]uint16
	DelayTimer byte
	SoundTimer byte
	Keys       [KeyCount]bool
}

// Option configures an interpreter.
type Option func(*Interpreter)

// WithRandomSource sets the source of the bytes returned by the RND instruction.
func WithRandomSource(source RandomSource) Option {
	return func(in *Interpreter) {
		in.random = source
	}
}

// New returns a new interpreter with the font loaded and the program counter
// pointing to ProgramStart.
func New(options ...Option) *Interpreter {
	in := &Interpreter{
		random: systemRandom{},
	}
	for _, option := range options {
		option(in)
	}
	in.Reset()
	return in
}

// Reset restores the state of a newly created interpreter. Any loaded
// program is cleared, the random source is kept.
func (in *Interpreter) Reset() {
	random := in.random
	*in = Interpreter{
		pc:     ProgramStart,
		random: random,
	}
	copy(in.memory[FontStart:], font[:])
}

// Load copies the program image into memory starting at ProgramStart.
// Memory is not modified if the image does not fit.
func (in *Interpreter) Load(rom []byte) error {
	if len(rom) >= MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, must be less than %d", ErrProgramTooLarge, len(rom), MaxProgramSize)
	}
	copy(in.memory[ProgramStart:], rom)
	return nil
}

// Step executes a single instruction and ticks both timers once.
func (in *Interpreter) Step() error {
	if in.err != nil {
		return in.err
	}
	if err := in.step(); err != nil {
		in.err = err
		return err
	}
	return nil
}

func (in *Interpreter) step() error {
	address := in.pc
	word, err := in.fetch(address)
	if err != nil {
		return err
	}

	ins, err := Decode(word)
	if err != nil {
		return fmt.Errorf("decoding at $%04X: %w", address, err)
	}

	in.pc += opcodeSize
	if err := in.execute(ins); err != nil {
		return fmt.Errorf("executing %s at $%04X: %w", ins, address, err)
	}

	in.tickTimers()
	return nil
}

// fetch reads the big-endian instruction word at the given address.
func (in *Interpreter) fetch(address uint16) (uint16, error) {
	if int(address)+1 >= MemorySize {
		return 0, fmt.Errorf("%w: $%04X", ErrProgramCounterOutOfBounds, address)
	}
	return uint16(in.memory[address])<<8 | uint16(in.memory[address+1]), nil
}

func (in *Interpreter) tickTimers() {
	if in.delayTimer > 0 {
		in.delayTimer--
	}
	if in.soundTimer > 0 {
		in.soundTimer--
	}
}

// SetKey sets the pressed state of a key, it stays in effect until changed.
func (in *Interpreter) SetKey(index int, pressed bool) error {
	if index < 0 || index >= KeyCount {
		return fmt.Errorf("%w: %d", ErrKeyOutOfRange, index)
	}
	in.keys[index] = pressed
	return nil
}

// ConsumeFrame returns a copy of the display buffer and clears the dirty
// flag if the display changed since the last call. It returns false if
// nothing changed.
func (in *Interpreter) ConsumeFrame() (Frame, bool) {
	if !in.dirty {
		return Frame{}, false
	}
	in.dirty = false
	return in.screen, true
}

// Frame returns a copy of the display buffer without clearing the dirty flag.
func (in *Interpreter) Frame() Frame {
	return in.screen
}

// SoundActive returns whether the sound timer is running. Hosts use it to
// drive a buzzer.
func (in *Interpreter) SoundActive() bool {
	return in.soundTimer > 0
}

// Err returns the fatal error that stopped the interpreter, if any.
func (in *Interpreter) Err() error {
	return in.err
}

// State returns a snapshot of the registers, timers and keys.
func (in *Interpreter) State() State {
	return State{
		V:          in.v,
		I:          in.i,
		PC:         in.pc,
		SP:         in.sp,
		Stack:      in.stack,
		DelayTimer: in.delayTimer,
		SoundTimer: in.soundTimer,
		Keys:       in.keys,
	}
}

// ReadMemory returns the byte at the given address.
func (in *Interpreter) ReadMemory(address uint16) (byte, error) {
	if int(address) >= MemorySize {
		return 0, fmt.Errorf("%w: $%04X", ErrMemoryOutOfBounds, address)
	}
	return in.memory[address], nil
}

// Peek decodes the instruction at the program counter without executing it.
func (in *Interpreter) Peek() (Instruction, error) {
	word, err := in.fetch(in.pc)
	if err != nil {
		return Instruction{}, err
	}
	return Decode(word)
}
