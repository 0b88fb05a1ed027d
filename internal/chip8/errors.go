package chip8

import "errors"

// Errors returned by the interpreter. All errors except ErrProgramTooLarge are
// fatal: once Step returned one, every later call returns the same error until
// Reset is called.
var (
	ErrProgramTooLarge           = errors.New("program too large")
	ErrProgramCounterOutOfBounds = errors.New("program counter out of bounds")
	ErrStackOverflow             = errors.New("stack overflow")
	ErrStackUnderflow            = errors.New("stack underflow")
	ErrKeyOutOfRange             = errors.New("key index out of range")
	ErrUnknownOpcode             = errors.New("unknown opcode")
	ErrMemoryOutOfBounds         = errors.New("memory access out of bounds")
)
