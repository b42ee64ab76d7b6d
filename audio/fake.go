package audio

import (
	"sync"
)

// FakeContext provides in-memory capture and playback devices for tests.
// FakeCapture feeds a fixed PCM buffer through the data callback on Start;
// FakePlayback records the order of load/stop calls so tests can assert the
// unload-before-load discipline.
type FakeContext struct {
	PCM        []byte
	DeviceList []DeviceInfo

	CaptureErr  error
	PlaybackErr error

	playback *FakePlayback
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) { return f.DeviceList, nil }
func (f *FakeContext) Close()                         {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	if f.CaptureErr != nil {
		return nil, f.CaptureErr
	}
	return &FakeCapture{pcm: f.PCM}, nil
}

func (f *FakeContext) NewPlayback() (PlaybackDevice, error) {
	if f.PlaybackErr != nil {
		return nil, f.PlaybackErr
	}
	if f.playback == nil {
		f.playback = &FakePlayback{}
	}
	return f.playback, nil
}

// Playback returns the shared fake playback device, creating it if needed.
func (f *FakeContext) Playback() *FakePlayback {
	p, _ := f.NewPlayback()
	return p.(*FakePlayback)
}

type FakeCapture struct {
	pcm []byte

	mu      sync.Mutex
	cb      DataCallback
	started bool
	stops   int
	closed  bool
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

const fakeChunkFrames = 1024

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	cb := f.cb
	f.started = true
	f.mu.Unlock()

	if cb == nil {
		return nil
	}
	chunkBytes := fakeChunkFrames * 2
	for pos := 0; pos < len(f.pcm); pos += chunkBytes {
		end := pos + chunkBytes
		if end > len(f.pcm) {
			end = len(f.pcm)
		}
		chunk := make([]byte, end-pos)
		copy(chunk, f.pcm[pos:end])
		cb(chunk, uint32(len(chunk)/2))
	}
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	f.stops++
	f.mu.Unlock()
}

func (f *FakeCapture) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *FakeCapture) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func (f *FakeCapture) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// FakePlayback records call ordering. Calls records "play" and "stop"
// entries; Active reports whether a clip is currently loaded.
type FakePlayback struct {
	PlayErr error

	mu     sync.Mutex
	calls  []string
	active bool
	done   func()
}

func (p *FakePlayback) Play(samples []int16, sampleRate, channels int, done func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.PlayErr != nil {
		return p.PlayErr
	}
	p.calls = append(p.calls, "play")
	p.active = true
	p.done = done
	return nil
}

func (p *FakePlayback) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "stop")
	p.active = false
	p.done = nil
}

func (p *FakePlayback) Close() {
	p.Stop()
}

// Finish simulates the platform completion callback for the current clip.
func (p *FakePlayback) Finish() {
	p.mu.Lock()
	done := p.done
	p.active = false
	p.done = nil
	p.mu.Unlock()
	if done != nil {
		done()
	}
}

func (p *FakePlayback) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

func (p *FakePlayback) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}
