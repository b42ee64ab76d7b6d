package encoder

import (
	"encoding/binary"
	"math"
	"testing"
)

func sine(n int, freq float64) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / float64(SampleRate)
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 16000)
	}
	return samples
}

func TestWavEncoderHeader(t *testing.T) {
	enc, err := NewWav()
	if err != nil {
		t.Fatalf("NewWav: %v", err)
	}

	block := sine(BlockSize, 440)
	if err := enc.EncodeBlock(block); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b := enc.Bytes()
	if len(b) != wavHeaderSize+BlockSize*2 {
		t.Fatalf("size = %d, want %d", len(b), wavHeaderSize+BlockSize*2)
	}
	if string(b[:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint32(b[24:28]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint16(b[22:24]); got != Channels {
		t.Errorf("channels = %d, want %d", got, Channels)
	}
	if got := binary.LittleEndian.Uint32(b[40:44]); got != BlockSize*2 {
		t.Errorf("data length = %d, want %d", got, BlockSize*2)
	}
	if enc.TotalFrames() != BlockSize {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), BlockSize)
	}
}

func TestWavRoundTrip(t *testing.T) {
	enc, _ := NewWav()
	block := sine(1000, 220)
	enc.EncodeBlock(block)
	enc.Close()

	dec, err := DecodeWav(enc.Bytes())
	if err != nil {
		t.Fatalf("DecodeWav: %v", err)
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

func TestWavCloseIdempotent(t *testing.T) {
	enc, _ := NewWav()
	enc.EncodeBlock(sine(100, 440))
	if err := enc.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := DecodeWav(enc.Bytes()); err != nil {
		t.Fatalf("decode after double close: %v", err)
	}
}
