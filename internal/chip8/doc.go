// Package chip8 implements the CHIP-8 virtual machine.
//
// # Machine Overview
//
// CHIP-8 is an interpreted programming language from the 1970s with a fixed
// instruction set and a fixed peripheral model:
//   - 4KB of memory, 16 general-purpose 8-bit registers (V0-VF)
//   - a 16-bit index register (I) and program counter (PC)
//   - a 16 entry call stack
//   - delay and sound timers, decremented once per executed instruction
//   - a 64x32 monochrome display and a 16 key hexadecimal keypad
//
// # Memory Layout
//
//	0x000-0x1FF: Reserved, the built-in font is stored at FontStart (0x050)
//	0x200-0xFFF: Program image and data
//
// # Usage
//
//	in := chip8.New()
//	if err := in.Load(rom); err != nil {
//		return fmt.Errorf("loading rom: %w", err)
//	}
//	for {
//		_ = in.SetKey(0x5, pressed)
//		for range ipf {
//			if err := in.Step(); err != nil {
//				return err
//			}
//		}
//		if frame, ok := in.ConsumeFrame(); ok {
//			draw(frame)
//		}
//	}
//
// The interpreter is not safe for concurrent use. Hosts that render on a
// different goroutine should pass the Frame copies returned by ConsumeFrame.
package chip8
