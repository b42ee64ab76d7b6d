package encoder

import "testing"

func TestDecodeSniffsContainer(t *testing.T) {
	wav, _ := NewWav()
	wav.EncodeBlock(sine(200, 440))
	wav.Close()
	if _, err := Decode(wav.Bytes()); err != nil {
		t.Errorf("Decode(wav): %v", err)
	}

	fl, _ := NewFlac()
	fl.EncodeBlock(sine(200, 440))
	fl.Close()
	if _, err := Decode(fl.Bytes()); err != nil {
		t.Errorf("Decode(flac): %v", err)
	}
}

func TestDecodeRejectsUnknown(t *testing.T) {
	if _, err := Decode([]byte("ID3\x04mp3 data here")); err == nil {
		t.Error("expected error for unknown container")
	}
	if _, err := Decode(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestDecodedDuration(t *testing.T) {
	d := Decoded{Samples: make([]int16, SampleRate*2), SampleRate: SampleRate, Channels: 1}
	if got := d.DurationSeconds(); got != 2.0 {
		t.Errorf("DurationSeconds = %v, want 2.0", got)
	}
	var zero Decoded
	if zero.DurationSeconds() != 0 {
		t.Error("zero value should report 0 duration")
	}
}
