package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gen2brain/malgo"
)

// MalgoOpener opens capture streams on the default microphone through
// miniaudio. One Opener holds one audio context for the process lifetime.
type MalgoOpener struct {
	ctx *malgo.AllocatedContext
}

// NewMalgoOpener initializes the audio context. Call Close when done.
func NewMalgoOpener() (*MalgoOpener, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: initializing context: %w", err)
	}
	return &MalgoOpener{ctx: ctx}, nil
}

// Open initializes a capture device with the fixed f32 format. Each data
// callback converts the raw frames into a fresh float32 chunk, so chunks
// never alias the driver's reused byte buffer. The device's stop callback
// fires when capture halts without a Stop call from us, which is the fault
// signal for a vanished device.
func (o *MalgoOpener) Open(cfg Config, onChunk func([]float32), onStop func()) (Stream, error) {
	deviceCfg := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceCfg.Capture.Format = malgo.FormatF32
	deviceCfg.Capture.Channels = cfg.Channels
	deviceCfg.SampleRate = cfg.SampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pSample []byte, frameCount uint32) {
			onChunk(bytesToFloat32(pSample, frameCount*cfg.Channels))
		},
		Stop: onStop,
	}

	device, err := malgo.InitDevice(o.ctx.Context, deviceCfg, callbacks)
	if err != nil {
		return nil, fmt.Errorf("initializing capture device: %w", err)
	}

	return &malgoStream{device: device}, nil
}

// Close releases the audio context.
func (o *MalgoOpener) Close() error {
	if o.ctx != nil {
		if err := o.ctx.Uninit(); err != nil {
			return fmt.Errorf("audio: uninitializing context: %w", err)
		}
		o.ctx.Free()
		o.ctx = nil
	}
	return nil
}

// malgoStream adapts a malgo device to the Stream interface.
type malgoStream struct {
	device *malgo.Device
}

func (s *malgoStream) Start() error {
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("starting capture device: %w", err)
	}
	return nil
}

func (s *malgoStream) IsStarted() bool {
	return s.device.IsStarted()
}

func (s *malgoStream) Uninit() {
	s.device.Uninit()
}

// bytesToFloat32 converts raw bytes (little-endian float32) to a float32 slice.
func bytesToFloat32(data []byte, sampleCount uint32) []float32 {
	samples := make([]float32, 0, sampleCount)
	for i := uint32(0); i < sampleCount; i++ {
		offset := i * 4
		if offset+4 > uint32(len(data)) {
			break
		}
		bits := binary.LittleEndian.Uint32(data[offset : offset+4])
		samples = append(samples, math.Float32frombits(bits))
	}
	return samples
}
