package encoder

import "testing"

func TestFlacEncoder(t *testing.T) {
	samples := sine(SampleRate, 440) // 1s

	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	var totalFed uint64
	for i := 0; i < len(samples); i += BlockSize {
		end := i + BlockSize
		if end > len(samples) {
			end = len(samples)
		}
		block := samples[i:end]
		if err := enc.EncodeBlock(block); err != nil {
			t.Fatalf("EncodeBlock at offset %d: %v", i, err)
		}
		totalFed += uint64(len(block))
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if enc.TotalFrames() != totalFed {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), totalFed)
	}

	flacData := enc.Bytes()
	if len(flacData) < 4 || string(flacData[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
}

func TestFlacEncoderEmpty(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close on empty encoder: %v", err)
	}
	if enc.TotalFrames() != 0 {
		t.Errorf("TotalFrames = %d, want 0", enc.TotalFrames())
	}
	if len(enc.Bytes()) == 0 {
		t.Error("expected non-empty FLAC output (at least header)")
	}
}

func TestFlacRoundTrip(t *testing.T) {
	block := sine(BlockSize, 330)

	enc, _ := NewFlac()
	if err := enc.EncodeBlock(block); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	enc.Close()

	dec, err := DecodeFlac(enc.Bytes())
	if err != nil {
		t.Fatalf("DecodeFlac: %v", err)
	}
	if dec.SampleRate != SampleRate || dec.Channels != Channels {
		t.Fatalf("decoded params %d/%d, want %d/%d", dec.SampleRate, dec.Channels, SampleRate, Channels)
	}
	if len(dec.Samples) != len(block) {
		t.Fatalf("decoded %d samples, want %d", len(dec.Samples), len(block))
	}
	for i := range block {
		if dec.Samples[i] != block[i] {
			t.Fatalf("sample %d = %d, want %d", i, dec.Samples[i], block[i])
		}
	}
}
