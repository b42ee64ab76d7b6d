//go:build !linux

package audio

import (
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoContext{ctx: ctx}, nil
}

// Backend reports the capture backend, which decides the upload container:
// malgo capture is paired with the WAV payload encoder.
func Backend() string { return "malgo" }

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID.Pointer()[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

func (m *malgoContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	c := &malgoCapture{}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	name := "system default"
	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		deviceConfig.Capture.DeviceID = devID.Pointer()
		name = device.Name
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, frameCount uint32) {
			if cb := c.callback.Load(); cb != nil {
				(*cb)(data, frameCount)
			}
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, err
	}
	c.device = dev
	c.name = name
	return c, nil
}

func (m *malgoContext) NewPlayback() (PlaybackDevice, error) {
	return &malgoPlayback{ctx: m.ctx}, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoCapture struct {
	device   *malgo.Device
	name     string
	callback atomic.Pointer[DataCallback]
}

func (c *malgoCapture) Start() error {
	return c.device.Start()
}

func (c *malgoCapture) Stop() {
	c.device.Stop()
}

func (c *malgoCapture) Close() {
	c.device.Uninit()
}

func (c *malgoCapture) SetCallback(cb DataCallback) {
	c.callback.Store(&cb)
}

func (c *malgoCapture) ClearCallback() {
	c.callback.Store(nil)
}

func (c *malgoCapture) DeviceName() string {
	return c.name
}

type malgoPlayback struct {
	ctx *malgo.AllocatedContext

	mu       sync.Mutex
	device   *malgo.Device
	gen      uint64
	canceled chan struct{}
}

func (p *malgoPlayback) Play(samples []int16, sampleRate, channels int, done func()) error {
	p.mu.Lock()
	p.stopLocked()
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)

	pos := 0
	finished := make(chan struct{})
	canceled := make(chan struct{})
	var finishOnce sync.Once

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			want := int(frameCount) * channels
			for i := 0; i < want; i++ {
				var s int16
				if pos < len(samples) {
					s = samples[pos]
					pos++
				}
				out[i*2] = byte(s)
				out[i*2+1] = byte(s >> 8)
			}
			if pos >= len(samples) {
				finishOnce.Do(func() { close(finished) })
			}
		},
	}

	dev, err := malgo.InitDevice(p.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("malgo playback: %w", err)
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		return fmt.Errorf("malgo playback start: %w", err)
	}

	p.mu.Lock()
	p.device = dev
	p.canceled = canceled
	p.mu.Unlock()

	// Uninit must not run inside the data callback; tear down from here
	// once the buffer drains.
	go func() {
		select {
		case <-finished:
		case <-canceled:
			return
		}
		p.mu.Lock()
		current := p.gen == gen && p.device == dev
		if current {
			p.device = nil
			p.canceled = nil
		}
		p.mu.Unlock()
		if current {
			dev.Uninit()
			if done != nil {
				done()
			}
		}
	}()
	return nil
}

func (p *malgoPlayback) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.stopLocked()
}

func (p *malgoPlayback) stopLocked() {
	if p.canceled != nil {
		close(p.canceled)
		p.canceled = nil
	}
	if p.device != nil {
		p.device.Uninit()
		p.device = nil
	}
}

func (p *malgoPlayback) Close() {
	p.Stop()
}
