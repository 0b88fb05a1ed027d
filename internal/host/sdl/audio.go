package sdl

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

const (
	sampleRate    = 44100
	toneFrequency = 440
	toneVolume    = 0x20

	// the queue is refilled once less than this many samples are left
	queueLowWater = sampleRate / 30
)

// buzzer plays a square wave through a queued audio device. A buzzer without
// device is silent.
type buzzer struct {
	device sdl.AudioDeviceID
	tone   []byte
	active bool
}

func openBuzzer() (*buzzer, error) {
	spec := sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}

	device, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return &buzzer{}, fmt.Errorf("opening audio device: %w", err)
	}

	return &buzzer{
		device: device,
		tone:   squareWave(sampleRate/10, sampleRate, toneFrequency),
	}, nil
}

func (b *buzzer) buzz(active bool) {
	if b.device == 0 {
		return
	}

	if !active {
		if b.active {
			sdl.PauseAudioDevice(b.device, true)
			sdl.ClearQueuedAudio(b.device)
			b.active = false
		}
		return
	}

	if sdl.GetQueuedAudioSize(b.device) < queueLowWater {
		_ = sdl.QueueAudio(b.device, b.tone)
	}
	if !b.active {
		sdl.PauseAudioDevice(b.device, false)
		b.active = true
	}
}

func (b *buzzer) close() {
	if b.device != 0 {
		sdl.CloseAudioDevice(b.device)
		b.device = 0
	}
}

// squareWave returns unsigned 8 bit samples of a square wave with the volume
// centered around the silence level 0x80.
func squareWave(samples, rate, frequency int) []byte {
	data := make([]byte, samples)
	period := rate / frequency
	for i := range data {
		if i%period < period/2 {
			data[i] = 0x80 + toneVolume
		} else {
			data[i] = 0x80 - toneVolume
		}
	}
	return data
}
