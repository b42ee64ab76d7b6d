package voice

import (
	"context"
	"sync"

	"chekinn/audio"
	"chekinn/encoder"
)

type PermissionStatus int

const (
	PermissionUndetermined PermissionStatus = iota
	PermissionGranted
	PermissionDenied
)

func (s PermissionStatus) String() string {
	switch s {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "undetermined"
	}
}

// PermissionGate tracks microphone authorization. Request may block on a
// platform prompt; concurrent Requests coalesce into a single probe and
// share its outcome.
type PermissionGate interface {
	Status() PermissionStatus
	Request(ctx context.Context) (PermissionStatus, error)
}

// DeviceGate probes authorization by briefly opening a capture device.
// Desktop audio servers have no prompt API; a failed open is the closest
// observable signal to a denial.
type probeResult struct {
	status PermissionStatus
	done   chan struct{}
}

type DeviceGate struct {
	ctx audio.Context

	mu      sync.Mutex
	status  PermissionStatus
	pending *probeResult
}

func NewDeviceGate(actx audio.Context) *DeviceGate {
	return &DeviceGate{ctx: actx, status: PermissionUndetermined}
}

func (g *DeviceGate) Status() PermissionStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *DeviceGate) Request(ctx context.Context) (PermissionStatus, error) {
	g.mu.Lock()
	if g.pending != nil {
		// A probe is already in flight; wait for its outcome.
		res := g.pending
		g.mu.Unlock()
		select {
		case <-res.done:
			return res.status, nil
		case <-ctx.Done():
			return PermissionUndetermined, ctx.Err()
		}
	}
	res := &probeResult{done: make(chan struct{})}
	g.pending = res
	g.mu.Unlock()

	status := g.probe()

	g.mu.Lock()
	g.status = status
	g.pending = nil
	g.mu.Unlock()

	res.status = status
	close(res.done)
	return status, nil
}

func (g *DeviceGate) probe() PermissionStatus {
	cap, err := g.ctx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		return PermissionDenied
	}
	defer cap.Close()
	if err := cap.Start(); err != nil {
		return PermissionDenied
	}
	cap.Stop()
	return PermissionGranted
}

// FakeGate is a scriptable gate for tests and for the denied-permission
// behavior checks.
type FakeGate struct {
	mu       sync.Mutex
	status   PermissionStatus
	OnReq    PermissionStatus // status Request flips to; zero value keeps current
	Requests int
}

func NewFakeGate(status PermissionStatus) *FakeGate {
	return &FakeGate{status: status}
}

func (g *FakeGate) Status() PermissionStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *FakeGate) Request(context.Context) (PermissionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests++
	if g.OnReq != PermissionUndetermined {
		g.status = g.OnReq
	}
	return g.status, nil
}
