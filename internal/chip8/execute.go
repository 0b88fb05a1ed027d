package chip8

import "fmt"

// execute runs the instruction body. The program counter already points to
// the next instruction.
func (in *Interpreter) execute(ins Instruction) error {
	v := &in.v

	switch ins.Op {
	case OpClear:
		in.screen = Frame{}
		in.dirty = true

	case OpReturn:
		if in.sp == 0 {
			return ErrStackUnderflow
		}
		in.sp--
		// the stack holds the address of the call instruction itself
		in.pc = in.stack[in.sp] + opcodeSize

	case OpJump:
		in.pc = ins.NNN

	case OpCall:
		if int(in.sp) >= StackSize {
			return ErrStackOverflow
		}
		in.stack[in.sp] = in.pc - opcodeSize
		in.sp++
		in.pc = ins.NNN

	case OpSkipEqualByte:
		in.skipIf(v[ins.X] == ins.NN)
	case OpSkipNotEqualByte:
		in.skipIf(v[ins.X] != ins.NN)
	case OpSkipEqualReg:
		in.skipIf(v[ins.X] == v[ins.Y])
	case OpSkipNotEqualReg:
		in.skipIf(v[ins.X] != v[ins.Y])

	case OpLoadByte:
		v[ins.X] = ins.NN
	case OpAddByte:
		v[ins.X] += ins.NN

	case OpLoadReg:
		v[ins.X] = v[ins.Y]
	case OpOr:
		v[ins.X] |= v[ins.Y]
	case OpAnd:
		v[ins.X] &= v[ins.Y]
	case OpXor:
		v[ins.X] ^= v[ins.Y]

	// For the flag setting arithmetic the flag is written before the result,
	// with x = F the result overwrites the flag.
	case OpAddReg:
		sum := uint16(v[ins.X]) + uint16(v[ins.Y])
		v[flagRegister] = byte(sum >> 8)
		v[ins.X] = byte(sum)
	case OpSub:
		x, y := v[ins.X], v[ins.Y]
		v[flagRegister] = boolToByte(x >= y)
		v[ins.X] = x - y
	case OpSubN:
		x, y := v[ins.X], v[ins.Y]
		v[flagRegister] = boolToByte(y >= x)
		v[ins.X] = y - x
	case OpShiftRight:
		v[flagRegister] = v[ins.X] & 0x01
		v[ins.X] >>= 1
	case OpShiftLeft:
		// the flag receives the masked bit, it is not normalized to 1
		v[flagRegister] = v[ins.X] & 0x80
		v[ins.X] <<= 1

	case OpLoadIndex:
		in.i = ins.NNN
	case OpJumpV0:
		in.pc = ins.NNN + uint16(v[0])
	case OpRandom:
		v[ins.X] = in.random.RandomByte() & ins.NN

	case OpDraw:
		return in.draw(ins)

	case OpSkipKey:
		in.skipIf(in.keys[v[ins.X]&0x0F])
	case OpSkipNotKey:
		in.skipIf(!in.keys[v[ins.X]&0x0F])

	case OpLoadDelay:
		v[ins.X] = in.delayTimer
	case OpWaitKey:
		in.waitKey(ins.X)
	case OpSetDelay:
		in.delayTimer = v[ins.X]
	case OpSetSound:
		in.soundTimer = v[ins.X]

	case OpAddIndex:
		// quirk: Vx is also written to the sound timer
		in.soundTimer = v[ins.X]
		sum := in.i + uint16(v[ins.X])
		if sum >= MemorySize {
			in.i = sum % MemorySize
			v[flagRegister] = 1
		} else {
			in.i = sum
			v[flagRegister] = 0
		}

	case OpLoadFont:
		in.i = FontStart + uint16(v[ins.X]&0x0F)*glyphSize

	case OpStoreBCD:
		if err := in.checkMemoryRange(in.i, 3); err != nil {
			return err
		}
		value := v[ins.X]
		in.memory[in.i] = value / 100
		in.memory[in.i+1] = value / 10 % 10
		in.memory[in.i+2] = value % 10

	case OpStoreRegisters:
		count := int(ins.X) + 1
		if err := in.checkMemoryRange(in.i, count); err != nil {
			return err
		}
		copy(in.memory[in.i:], v[:count])

	case OpLoadRegisters:
		count := int(ins.X) + 1
		if err := in.checkMemoryRange(in.i, count); err != nil {
			return err
		}
		copy(v[:count], in.memory[in.i:])

	default:
		return fmt.Errorf("%w: $%04X", ErrUnknownOpcode, ins.Word)
	}

	return nil
}

// draw XORs an 8 pixel wide and N rows high sprite read from I onto the
// display at (Vx, Vy). Pixel positions are flattened and wrapped with a
// single modulo over the whole buffer, a sprite leaving the right edge
// continues one row further down.
func (in *Interpreter) draw(ins Instruction) error {
	if err := in.checkMemoryRange(in.i, int(ins.N)); err != nil {
		return err
	}

	x := uint16(in.v[ins.X])
	y := uint16(in.v[ins.Y])
	in.v[flagRegister] = 0

	for row := range uint16(ins.N) {
		data := in.memory[in.i+row]
		rowOffset := (y + row) * ScreenWidth

		for bit := range uint16(8) {
			if data&(0x80>>bit) == 0 {
				continue
			}

			pixel := (x + bit + rowOffset) % ScreenSize
			if in.screen[pixel] == 1 {
				in.v[flagRegister] = 1
			}
			in.screen[pixel] ^= 1
		}
	}

	in.dirty = true
	return nil
}

// waitKey stores the lowest pressed key in Vx. Without a pressed key the
// program counter is rewound so that the instruction executes again on the
// next step.
func (in *Interpreter) waitKey(x uint8) {
	for key, pressed := range in.keys {
		if pressed {
			in.v[x] = byte(key)
			return
		}
	}
	in.pc -= opcodeSize
}

func (in *Interpreter) skipIf(condition bool) {
	if condition {
		in.pc += opcodeSize
	}
}

// checkMemoryRange returns an error if count bytes starting at address do
// not fit into memory.
func (in *Interpreter) checkMemoryRange(address uint16, count int) error {
	if int(address)+count > MemorySize {
		return fmt.Errorf("%w: %d bytes at $%04X", ErrMemoryOutOfBounds, count, address)
	}
	return nil
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
