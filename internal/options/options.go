// Package options contains the program options.
package options

// Global contains options shared by all commands.
type Global struct {
	Debug bool `long:"debug" description:"enable debug logging"`
	Quiet bool `short:"q" long:"quiet" description:"quiet mode"`
}

// ROMFile contains the positional program image argument.
type ROMFile struct {
	Args struct {
		File string `positional-arg-name:"ROM" required:"yes" description:"program image to load"`
	} `positional-args:"yes"`
}

// Run contains the options of the run command.
type Run struct {
	FPS                  int    `long:"fps" description:"frames per second" default:"60"`
	InstructionsPerFrame int    `long:"ipf" description:"instructions executed per frame" default:"10"`
	Display              string `long:"display" description:"display backend" choice:"terminal" choice:"sdl" default:"terminal"`
	Scale                int    `long:"scale" description:"window scale factor of the sdl display" default:"8"`
	KeyHoldFrames        int    `long:"key-hold" description:"frames a key stays pressed on the terminal display" default:"6"`
	Trace                bool   `long:"trace" description:"log every executed instruction at debug level"`

	ROMFile
}

// Debug contains the options of the debug command.
type Debug struct {
	HistoryFile string `long:"history" description:"debugger command history file"`

	ROMFile
}

// Disasm contains the options of the disasm command.
type Disasm struct {
	Output        string `short:"o" long:"output" description:"output .asm file (default: stdout)"`
	Verify        bool   `long:"verify" description:"verify output by reassembling and comparing to input"`
	NoHexComments bool   `long:"nohexcomments" description:"omit hex opcode bytes in comments"`
	NoOffsets     bool   `long:"nooffsets" description:"omit addresses in comments"`
	NoLabels      bool   `long:"nolabels" description:"do not replace jump and call targets by labels"`
	ZeroBytes     bool   `short:"z" long:"zerobytes" description:"include trailing zero bytes"`

	ROMFile
}

// Assemble contains the options of the asm command.
type Assemble struct {
	Output string `short:"o" long:"output" description:"output program image" required:"yes"`

	Args struct {
		File string `positional-arg-name:"SOURCE" required:"yes" description:"assembly source file"`
	} `positional-args:"yes"`
}
