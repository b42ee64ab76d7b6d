// Package beep plays short earcons marking voice turn boundaries: a high
// tick when recording starts, a lower one when it stops, and a low
// double-beep on failure.
package beep

import (
	"math"

	"chekinn/audio"
)

const (
	sampleRate = 44100

	startFreq   = 1150
	startVolume = 0.5
	startDecay  = 60

	endFreq   = 850
	endVolume = 0.5
	endDecay  = 40

	errorFreq   = 340
	errorVolume = 0.6
	errorDecay  = 30
)

type Beeper struct {
	dev      audio.PlaybackDevice
	disabled bool

	start []int16
	end   []int16
	fail  []int16
}

// New builds a beeper on the platform playback device. A nil context
// yields a silent beeper.
func New(actx audio.Context) *Beeper {
	b := &Beeper{
		start: tone(startFreq, 0.2, startVolume, startDecay),
		end:   tone(endFreq, 0.2, endVolume, endDecay),
		fail:  doubleBeep(errorFreq, 0.08, 0.05, errorVolume, errorDecay),
	}
	if actx == nil {
		b.disabled = true
		return b
	}
	dev, err := actx.NewPlayback()
	if err != nil {
		b.disabled = true
		return b
	}
	b.dev = dev
	return b
}

func (b *Beeper) Disable() { b.disabled = true }

func (b *Beeper) Start() { b.play(b.start) }
func (b *Beeper) End()   { b.play(b.end) }
func (b *Beeper) Error() { b.play(b.fail) }

func (b *Beeper) play(samples []int16) {
	if b.disabled || b.dev == nil {
		return
	}
	// Best effort; a failed earcon is not worth surfacing.
	b.dev.Play(samples, sampleRate, 1, nil)
}

func (b *Beeper) Close() {
	if b.dev != nil {
		b.dev.Close()
	}
}

func tone(freq, duration, volume, decay float64) []int16 {
	n := int(sampleRate * duration)
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		envelope := math.Exp(-t * decay)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
	}
	return samples
}

func doubleBeep(freq, beepDur, gapDur, volume, decay float64) []int16 {
	one := tone(freq, beepDur, volume, decay)
	gap := make([]int16, int(sampleRate*gapDur))
	out := make([]int16, 0, len(one)*2+len(gap))
	out = append(out, one...)
	out = append(out, gap...)
	out = append(out, one...)
	return out
}
