package hotkey

import (
	"time"
)

// Toggle turns raw keydown/keyup pairs into mic toggle signals. A tap
// toggles the mic and leaves it on until the next press; a hold longer
// than longPress acts as push-to-talk, toggling on at the press and off
// at the release.
type Toggle struct {
	toggles chan struct{}
	done    chan struct{}
}

func NewToggle(hk Hotkey, longPress time.Duration) *Toggle {
	t := &Toggle{
		toggles: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go t.run(hk, longPress)
	return t
}

// Toggles delivers one signal per mic state flip.
func (t *Toggle) Toggles() <-chan struct{} { return t.toggles }

func (t *Toggle) Close() { close(t.done) }

func (t *Toggle) emit() {
	select {
	case t.toggles <- struct{}{}:
	default:
	}
}

func (t *Toggle) run(hk Hotkey, longPress time.Duration) {
	recording := false
	for {
		select {
		case <-t.done:
			return
		case <-hk.Keydown():
		}

		if recording {
			// Any press while on turns the mic off at its release.
			select {
			case <-t.done:
				return
			case <-hk.Keyup():
			}
			t.emit()
			recording = false
			continue
		}

		t.emit()
		recording = true

		timer := time.NewTimer(longPress)
		select {
		case <-t.done:
			timer.Stop()
			return
		case <-timer.C:
			// Held past the threshold: push-to-talk, off on release.
			select {
			case <-t.done:
				return
			case <-hk.Keyup():
			}
			t.emit()
			recording = false
		case <-hk.Keyup():
			// Tap: stay on until the next press.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
	}
}
