// Package sdl implements a host that renders to an SDL window and reads the
// keypad from the keyboard state. All SDL calls are executed on the main
// thread, the run has to be wrapped in Run.
package sdl

import (
	"fmt"
	"strings"

	"github.com/faiface/mainthread"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	bytesPerPixel = 4
	title         = "retrochip8"
)

// Window is an SDL window that implements the display, keyboard and buzzer
// of a host.
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	buzzer   *buzzer

	buffer     []byte
	background [bytesPerPixel]byte
	foreground [bytesPerPixel]byte
	keyMap     map[sdl.Scancode]int
	closed     bool
}

// Options defines the window settings.
type Options struct {
	Scale   int
	Palette config.Palette
	KeyMap  map[rune]int
	Logger  *log.Logger
}

// Run starts the main thread handling and calls fn with an opened window.
// It blocks until fn returns.
func Run(opts Options, fn func(w *Window) error) error {
	var err error
	mainthread.Run(func() {
		var w *Window
		w, err = New(opts)
		if err != nil {
			return
		}
		defer w.Close()
		err = fn(w)
	})
	return err
}

// New initializes SDL and opens the window.
func New(opts Options) (*Window, error) {
	w := &Window{
		buffer: make([]byte, chip8.ScreenSize*bytesPerPixel),
		keyMap: scancodeKeyMap(opts.KeyMap),
	}
	w.background = colorBytes(opts.Palette.Background)
	w.foreground = colorBytes(opts.Palette.Foreground)

	if err := mainthread.CallErr(func() error { return w.open(opts.Logger, max(opts.Scale, 1)) }); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func (w *Window) open(logger *log.Logger, scale int) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("initializing sdl: %w", err)
	}

	var err error
	w.window, err = sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(chip8.ScreenWidth*scale), int32(chip8.ScreenHeight*scale),
		sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}

	w.renderer, err = sdl.CreateRenderer(w.window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	// the renderer stretches the texture to the window size
	w.texture, err = w.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_RGBA32),
		sdl.TEXTUREACCESS_STREAMING, chip8.ScreenWidth, chip8.ScreenHeight)
	if err != nil {
		return fmt.Errorf("creating texture: %w", err)
	}

	w.buzzer, err = openBuzzer()
	if err != nil {
		logger.Warn("Sound disabled", log.Err(err))
	}
	return nil
}

// Close frees all resources created by SDL.
func (w *Window) Close() {
	mainthread.Call(func() {
		if w.buzzer != nil {
			w.buzzer.close()
		}
		if w.texture != nil {
			_ = w.texture.Destroy()
		}
		if w.renderer != nil {
			_ = w.renderer.Destroy()
		}
		if w.window != nil {
			_ = w.window.Destroy()
		}
		sdl.Quit()
	})
}

// Draw updates the texture with the frame and presents it.
func (w *Window) Draw(frame chip8.Frame) error {
	fillBuffer(w.buffer, frame, w.background, w.foreground)

	return mainthread.CallErr(func() error {
		if err := w.texture.Update(nil, w.buffer, chip8.ScreenWidth*bytesPerPixel); err != nil {
			return fmt.Errorf("updating texture: %w", err)
		}
		if err := w.renderer.Copy(w.texture, nil, nil); err != nil {
			return fmt.Errorf("copying texture: %w", err)
		}
		w.renderer.Present()
		return nil
	})
}

// Closed returns whether the window was closed or escape was pressed.
func (w *Window) Closed() bool {
	return w.closed
}

// Poll processes the pending window events and returns the keypad state.
func (w *Window) Poll() ([chip8.KeyCount]bool, error) {
	var keys [chip8.KeyCount]bool

	mainthread.Call(func() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if _, ok := event.(*sdl.QuitEvent); ok {
				w.closed = true
			}
		}

		state := sdl.GetKeyboardState()
		if state[sdl.SCANCODE_ESCAPE] != 0 {
			w.closed = true
		}
		for scancode, key := range w.keyMap {
			if int(scancode) < len(state) && state[scancode] != 0 {
				keys[key] = true
			}
		}
	})
	return keys, nil
}

// Buzz plays the tone while active is set.
func (w *Window) Buzz(active bool) {
	mainthread.Call(func() {
		w.buzzer.buzz(active)
	})
}

// scancodeKeyMap converts the character key map to physical key positions.
func scancodeKeyMap(keyMap map[rune]int) map[sdl.Scancode]int {
	scancodes := make(map[sdl.Scancode]int, len(keyMap))
	for char, key := range keyMap {
		if key < 0 || key >= chip8.KeyCount {
			continue
		}
		scancode := sdl.GetScancodeFromName(strings.ToUpper(string(char)))
		if scancode != sdl.SCANCODE_UNKNOWN {
			scancodes[scancode] = key
		}
	}
	return scancodes
}

func colorBytes(color uint32) [bytesPerPixel]byte {
	r, g, b, a := config.RGBA(color)
	return [bytesPerPixel]byte{r, g, b, a}
}

// fillBuffer converts the frame into RGBA32 texture data.
func fillBuffer(buffer []byte, frame chip8.Frame, background, foreground [bytesPerPixel]byte) {
	for i, pixel := range frame {
		color := background
		if pixel != 0 {
			color = foreground
		}
		copy(buffer[i*bytesPerPixel:], color[:])
	}
}
