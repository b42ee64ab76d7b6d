package audio

import "testing"

func TestIsBluetooth(t *testing.T) {
	for name, want := range map[string]bool{
		"AirPods Pro":              true,
		"Jabra Elite 5":            true,
		"Built-in Audio Analog":    false,
		"USB Condenser Microphone": false,
		"WH-1000XM4 (Bluetooth)":   true,
	} {
		if got := IsBluetooth(name); got != want {
			t.Errorf("IsBluetooth(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestFakeCaptureFeedsAllPCM(t *testing.T) {
	pcm := make([]byte, 5000)
	ctx := &FakeContext{PCM: pcm}
	cap, err := ctx.NewCapture(nil, CaptureConfig{SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}

	var got int
	cap.SetCallback(func(data []byte, frames uint32) {
		got += len(data)
	})
	if err := cap.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got != len(pcm) {
		t.Errorf("callback saw %d bytes, want %d", got, len(pcm))
	}
}

func TestFakePlaybackOrdering(t *testing.T) {
	ctx := &FakeContext{}
	p := ctx.Playback()

	p.Play(nil, 16000, 1, nil)
	p.Stop()
	p.Play(nil, 16000, 1, nil)

	want := []string{"play", "stop", "play"}
	got := p.Calls()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("calls = %v, want %v", got, want)
		}
	}
	if !p.Active() {
		t.Error("expected active after final play")
	}
}
