package chip8

import "fmt"

// Opcode identifies a decoded CHIP-8 instruction.
type Opcode uint8

// Supported opcodes, the comment lists the matching instruction word pattern.
const (
	OpUnknown          Opcode = iota
	OpClear                   // 00E0
	OpReturn                  // 00EE
	OpJump                    // 1nnn
	OpCall                    // 2nnn
	OpSkipEqualByte           // 3xnn
	OpSkipNotEqualByte        // 4xnn
	OpSkipEqualReg            // 5xy_
	OpLoadByte                // 6xnn
	OpAddByte                 // 7xnn
	OpLoadReg                 // 8xy0
	OpOr                      // 8xy1
	OpAnd                     // 8xy2
	OpXor                     // 8xy3
	OpAddReg                  // 8xy4
	OpSub                     // 8xy5
	OpShiftRight              // 8xy6
	OpSubN                    // 8xy7
	OpShiftLeft               // 8xyE
	OpSkipNotEqualReg         // 9xy_
	OpLoadIndex               // Annn
	OpJumpV0                  // Bnnn
	OpRandom                  // Cxnn
	OpDraw                    // Dxyn
	OpSkipKey                 // Ex9E
	OpSkipNotKey              // ExA1
	OpLoadDelay               // Fx07
	OpWaitKey                 // Fx0A
	OpSetDelay                // Fx15
	OpSetSound                // Fx18
	OpAddIndex                // Fx1E
	OpLoadFont                // Fx29
	OpStoreBCD                // Fx33
	OpStoreRegisters          // Fx55
	OpLoadRegisters           // Fx65
)

var opcodeNames = [...]string{
	OpUnknown:          "unknown",
	OpClear:            "clear",
	OpReturn:           "return",
	OpJump:             "jump",
	OpCall:             "call",
	OpSkipEqualByte:    "skip-equal-byte",
	OpSkipNotEqualByte: "skip-not-equal-byte",
	OpSkipEqualReg:     "skip-equal-reg",
	OpLoadByte:         "load-byte",
	OpAddByte:          "add-byte",
	OpLoadReg:          "load-reg",
	OpOr:               "or",
	OpAnd:              "and",
	OpXor:              "xor",
	OpAddReg:           "add-reg",
	OpSub:              "sub",
	OpShiftRight:       "shift-right",
	OpSubN:             "subn",
	OpShiftLeft:        "shift-left",
	OpSkipNotEqualReg:  "skip-not-equal-reg",
	OpLoadIndex:        "load-index",
	OpJumpV0:           "jump-v0",
	OpRandom:           "random",
	OpDraw:             "draw",
	OpSkipKey:          "skip-key",
	OpSkipNotKey:       "skip-not-key",
	OpLoadDelay:        "load-delay",
	OpWaitKey:          "wait-key",
	OpSetDelay:         "set-delay",
	OpSetSound:         "set-sound",
	OpAddIndex:         "add-index",
	OpLoadFont:         "load-font",
	OpStoreBCD:         "store-bcd",
	OpStoreRegisters:   "store-registers",
	OpLoadRegisters:    "load-registers",
}

// String returns the name of the opcode.
func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("opcode(%d)", uint8(o))
}

// Instruction is a decoded instruction word with all of its operand fields
// extracted. Fields that the opcode does not use are still filled in.
type Instruction struct {
	Op   Opcode
	Word uint16

	X   uint8  // second nibble, register index
	Y   uint8  // third nibble, register index
	N   uint8  // low nibble
	NN  uint8  // low byte
	NNN uint16 // low 12 bits, address
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s ($%04X)", i.Op, i.Word)
}

// Decode maps an instruction word to its instruction. It does not depend on
// any machine state.
func Decode(word uint16) (Instruction, error) {
	ins := Instruction{
		Word: word,
		X:    uint8(word>>8) & 0x0F,
		Y:    uint8(word>>4) & 0x0F,
		N:    uint8(word) & 0x0F,
		NN:   uint8(word),
		NNN:  word & 0x0FFF,
	}

	switch word >> 12 {
	case 0x0:
		switch word {
		case 0x00E0:
			ins.Op = OpClear
		case 0x00EE:
			ins.Op = OpReturn
		}
	case 0x1:
		ins.Op = OpJump
	case 0x2:
		ins.Op = OpCall
	case 0x3:
		ins.Op = OpSkipEqualByte
	case 0x4:
		ins.Op = OpSkipNotEqualByte
	case 0x5:
		ins.Op = OpSkipEqualReg
	case 0x6:
		ins.Op = OpLoadByte
	case 0x7:
		ins.Op = OpAddByte
	case 0x8:
		ins.Op = decodeArithmetic(ins.N)
	case 0x9:
		ins.Op = OpSkipNotEqualReg
	case 0xA:
		ins.Op = OpLoadIndex
	case 0xB:
		ins.Op = OpJumpV0
	case 0xC:
		ins.Op = OpRandom
	case 0xD:
		ins.Op = OpDraw
	case 0xE:
		switch ins.NN {
		case 0x9E:
			ins.Op = OpSkipKey
		case 0xA1:
			ins.Op = OpSkipNotKey
		}
	case 0xF:
		ins.Op = decodeMisc(ins.NN)
	}

	if ins.Op == OpUnknown {
		return ins, fmt.Errorf("%w: $%04X", ErrUnknownOpcode, word)
	}
	return ins, nil
}

// decodeArithmetic decodes the 8xyN register to register instructions.
func decodeArithmetic(n uint8) Opcode {
	switch n {
	case 0x0:
		return OpLoadReg
	case 0x1:
		return OpOr
	case 0x2:
		return OpAnd
	case 0x3:
		return OpXor
	case 0x4:
		return OpAddReg
	case 0x5:
		return OpSub
	case 0x6:
		return OpShiftRight
	case 0x7:
		return OpSubN
	case 0xE:
		return OpShiftLeft
	default:
		return OpUnknown
	}
}

// decodeMisc decodes the FxNN timer, keyboard and memory instructions.
func decodeMisc(nn uint8) Opcode {
	switch nn {
	case 0x07:
		return OpLoadDelay
	case 0x0A:
		return OpWaitKey
	case 0x15:
		return OpSetDelay
	case 0x18:
		return OpSetSound
	case 0x1E:
		return OpAddIndex
	case 0x29:
		return OpLoadFont
	case 0x33:
		return OpStoreBCD
	case 0x55:
		return OpStoreRegisters
	case 0x65:
		return OpLoadRegisters
	default:
		return OpUnknown
	}
}
