package chip8

import "math/rand/v2"

// RandomSource provides the bytes used by the RND instruction.
type RandomSource interface {
	RandomByte() byte
}

// RandomFunc adapts a function to the RandomSource interface.
type RandomFunc func() byte

// RandomByte returns the next random byte.
func (f RandomFunc) RandomByte() byte {
	return f()
}

type systemRandom struct{}

func (systemRandom) RandomByte() byte {
	return byte(rand.Uint32())
}
