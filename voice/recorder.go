package voice

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"chekinn/audio"
	"chekinn/encoder"
	"chekinn/log"
)

type State int

const (
	Idle State = iota
	Recording
)

func (s State) String() string {
	if s == Recording {
		return "recording"
	}
	return "idle"
}

// Artifact is a finished recording: raw mono PCM16 plus its timing.
type Artifact struct {
	Samples    []int16
	SampleRate int
	StartedAt  time.Time
}

func (a Artifact) DurationSeconds() float64 {
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Recorder owns the single capture session. Exactly one recording may be
// live at a time; Start and Stop are guarded so misuse fails cleanly
// instead of corrupting the session.
type Recorder struct {
	gate    PermissionGate
	capture audio.CaptureDevice

	mu        sync.Mutex
	state     State
	samples   []int16
	startedAt time.Time
}

func NewRecorder(gate PermissionGate, capture audio.CaptureDevice) *Recorder {
	return &Recorder{gate: gate, capture: capture}
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start begins capturing. The caller is responsible for requesting
// permission first; Start only checks the gate's current status.
func (r *Recorder) Start(ctx context.Context) error {
	if r.gate.Status() != PermissionGranted {
		return ErrPermissionDenied
	}

	r.mu.Lock()
	if r.state == Recording {
		r.mu.Unlock()
		return ErrAlreadyRecording
	}
	r.state = Recording
	r.samples = nil
	r.startedAt = time.Now()
	r.mu.Unlock()

	r.capture.SetCallback(func(data []byte, frameCount uint32) {
		r.mu.Lock()
		if r.state == Recording {
			for i := 0; i+1 < len(data); i += 2 {
				r.samples = append(r.samples, int16(binary.LittleEndian.Uint16(data[i:])))
			}
		}
		r.mu.Unlock()
	})

	if err := r.capture.Start(); err != nil {
		r.capture.ClearCallback()
		r.mu.Lock()
		r.state = Idle
		r.mu.Unlock()
		log.Errorf("capture start error: %v", err)
		return err
	}
	log.Info("recording_start: " + r.capture.DeviceName())
	return nil
}

// Stop ends the capture and returns the recorded artifact. A capture that
// produced zero samples is an error; the recorder is back at Idle either
// way.
func (r *Recorder) Stop() (Artifact, error) {
	r.mu.Lock()
	if r.state != Recording {
		r.mu.Unlock()
		return Artifact{}, ErrNoActiveRecording
	}
	r.mu.Unlock()

	r.capture.Stop()
	r.capture.ClearCallback()

	r.mu.Lock()
	r.state = Idle
	samples := r.samples
	startedAt := r.startedAt
	r.samples = nil
	r.mu.Unlock()

	log.Info("recording_stop")
	if len(samples) == 0 {
		return Artifact{}, ErrNoAudioCaptured
	}
	return Artifact{
		Samples:    samples,
		SampleRate: encoder.SampleRate,
		StartedAt:  startedAt,
	}, nil
}

// Close releases a still-active capture without error; safe on teardown
// in any state.
func (r *Recorder) Close() {
	r.mu.Lock()
	active := r.state == Recording
	r.state = Idle
	r.samples = nil
	r.mu.Unlock()

	if active {
		r.capture.Stop()
	}
	r.capture.ClearCallback()
	r.capture.Close()
}
