package voice

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chekinn/audio"
	"chekinn/encoder"
)

func sinePCM(t *testing.T, frames int) []byte {
	t.Helper()
	buf := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		v := int16(math.Sin(2*math.Pi*440*float64(i)/float64(encoder.SampleRate)) * 12000)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	return buf
}

func newTestRecorder(t *testing.T, pcm []byte, status PermissionStatus) (*Recorder, *audio.FakeCapture) {
	t.Helper()
	fctx := &audio.FakeContext{PCM: pcm}
	cap, err := fctx.NewCapture(nil, audio.CaptureConfig{SampleRate: encoder.SampleRate, Channels: encoder.Channels})
	require.NoError(t, err)
	return NewRecorder(NewFakeGate(status), cap), cap.(*audio.FakeCapture)
}

func TestRecorderRoundTrip(t *testing.T) {
	pcm := sinePCM(t, 3000)
	rec, _ := newTestRecorder(t, pcm, PermissionGranted)

	require.NoError(t, rec.Start(context.Background()))
	assert.Equal(t, Recording, rec.State())

	art, err := rec.Stop()
	require.NoError(t, err)
	assert.Equal(t, Idle, rec.State())
	assert.Len(t, art.Samples, 3000)
	assert.Equal(t, encoder.SampleRate, art.SampleRate)
	assert.InDelta(t, 3000.0/float64(encoder.SampleRate), art.DurationSeconds(), 1e-9)

	for i := 0; i < 10; i++ {
		want := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		assert.Equal(t, want, art.Samples[i])
	}
}

func TestRecorderDoubleStart(t *testing.T) {
	rec, _ := newTestRecorder(t, sinePCM(t, 100), PermissionGranted)
	require.NoError(t, rec.Start(context.Background()))
	assert.ErrorIs(t, rec.Start(context.Background()), ErrAlreadyRecording)
}

func TestRecorderStopWithoutStart(t *testing.T) {
	rec, _ := newTestRecorder(t, nil, PermissionGranted)
	_, err := rec.Stop()
	assert.ErrorIs(t, err, ErrNoActiveRecording)
}

func TestRecorderEmptyCapture(t *testing.T) {
	rec, _ := newTestRecorder(t, nil, PermissionGranted)
	require.NoError(t, rec.Start(context.Background()))
	_, err := rec.Stop()
	assert.ErrorIs(t, err, ErrNoAudioCaptured)
	assert.Equal(t, Idle, rec.State())
}

func TestRecorderDeniedGate(t *testing.T) {
	rec, _ := newTestRecorder(t, sinePCM(t, 100), PermissionDenied)
	assert.ErrorIs(t, rec.Start(context.Background()), ErrPermissionDenied)
	assert.Equal(t, Idle, rec.State())
}

func TestRecorderCloseWhileRecording(t *testing.T) {
	rec, cap := newTestRecorder(t, sinePCM(t, 100), PermissionGranted)
	require.NoError(t, rec.Start(context.Background()))
	rec.Close()
	assert.Equal(t, Idle, rec.State())
	assert.Equal(t, 1, cap.Stops())
	assert.True(t, cap.Closed())
}
