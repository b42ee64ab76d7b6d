package voice

import (
	"fmt"
	"sync"

	"chekinn/audio"
	"chekinn/encoder"
	"chekinn/log"
)

// Player plays synthesized replies through the platform playback device.
// At most one clip is audible at a time; loading a new clip silences the
// previous one first.
type Player struct {
	device audio.PlaybackDevice

	mu      sync.Mutex
	playing bool
}

func NewPlayer(device audio.PlaybackDevice) *Player {
	return &Player{device: device}
}

// LoadAndPlay decodes the container (WAV or FLAC, sniffed from the bytes)
// and starts playback. onDone fires once when the clip finishes on its
// own; a Stop or a replacement clip suppresses it.
func (p *Player) LoadAndPlay(data []byte, onDone func()) error {
	dec, err := encoder.Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}

	p.mu.Lock()
	if p.playing {
		p.device.Stop()
	}
	p.playing = true
	p.mu.Unlock()

	err = p.device.Play(dec.Samples, dec.SampleRate, dec.Channels, func() {
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
		if onDone != nil {
			onDone()
		}
	})
	if err != nil {
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
		log.Errorf("playback error: %v", err)
		return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}
	return nil
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Stop silences the current clip, if any. Stopping while idle is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	wasPlaying := p.playing
	p.playing = false
	p.mu.Unlock()
	if wasPlaying {
		p.device.Stop()
	}
}

func (p *Player) Close() {
	p.Stop()
	p.device.Close()
}
