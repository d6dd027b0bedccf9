// Package audio provides input-device capture and buffer finalization
// for voice messages.
package audio

import (
	"errors"
	"fmt"

	"github.com/gen2brain/malgo"
)

// ErrDeviceUnavailable marks a device-acquisition failure (permission
// denied, no input device). It is distinct from a generic capture
// failure so the user gets an actionable message.
var ErrDeviceUnavailable = errors.New("audio input device unavailable")

// Format describes the PCM stream a recorder produces and the container
// the finalized file uses.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
	MimeType   string
	Extension  string
}

// Recorder acquires an audio input device and streams raw PCM chunks to
// the given callback until stopped. Implementations own exactly one
// device at a time.
type Recorder interface {
	// Start acquires the device and begins capture. The callback runs on
	// the capture thread and must not block.
	Start(onChunk func([]byte)) error
	// Stop releases the device. Safe to call after a failed Start.
	Stop() error
	// Format reports the encoding the recorder actually produces.
	Format() Format
}

// DeviceRecorder captures from the default input device via miniaudio.
type DeviceRecorder struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

// NewDeviceRecorder returns an idle device recorder.
func NewDeviceRecorder() *DeviceRecorder {
	return &DeviceRecorder{}
}

// Start acquires the default capture device at 16 kHz mono S16.
func (r *DeviceRecorder) Start(onChunk func([]byte)) error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = 16000
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			if len(input) == 0 {
				return
			}
			chunk := make([]byte, len(input))
			copy(chunk, input)
			onChunk(chunk)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	r.ctx = ctx
	r.device = device
	return nil
}

// Stop releases the capture device and the backend context.
func (r *DeviceRecorder) Stop() error {
	if r.device != nil {
		r.device.Uninit()
		r.device = nil
	}
	if r.ctx != nil {
		err := r.ctx.Uninit()
		r.ctx.Free()
		r.ctx = nil
		if err != nil {
			return fmt.Errorf("failed to release audio context: %w", err)
		}
	}
	return nil
}

// Format reports the S16 mono PCM stream this recorder produces.
func (r *DeviceRecorder) Format() Format {
	return Format{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
		MimeType:   "audio/wav",
		Extension:  ".wav",
	}
}
