// Package loader handles program image loading operations.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
)

// Loader handles loading program images from disk.
type Loader struct{}

// New creates a new program image loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a raw program image without header from the given file.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return l.LoadFromReader(file)
}

// LoadFromReader reads a raw program image and checks that it fits into the
// program area of the interpreter memory.
func (l *Loader) LoadFromReader(reader io.Reader) ([]byte, error) {
	// read one byte more than allowed to detect oversized images
	data, err := io.ReadAll(io.LimitReader(reader, chip8.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading program image: %w", err)
	}
	if len(data) >= chip8.MaxProgramSize {
		return nil, fmt.Errorf("%w: at least %d bytes, must be less than %d",
			chip8.ErrProgramTooLarge, len(data), chip8.MaxProgramSize)
	}
	return data, nil
}
