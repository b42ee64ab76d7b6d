package voice

import (
	"fmt"

	"chekinn/audio"
	"chekinn/encoder"
)

// Payload is an upload-ready encoded recording.
type Payload struct {
	Bytes    []byte
	Filename string
	MIME     string
}

// PayloadEncoder turns a raw artifact into the container the transcription
// endpoint accepts. The concrete encoder is chosen once at startup from
// the audio backend in use.
type PayloadEncoder interface {
	Encode(a Artifact) (Payload, error)
}

// NewPayloadEncoder picks the container per platform: pulse systems get
// FLAC, everything else WAV.
func NewPayloadEncoder() PayloadEncoder {
	if audio.Backend() == "pulse" {
		return flacPayloadEncoder{}
	}
	return wavPayloadEncoder{}
}

type flacPayloadEncoder struct{}

func (flacPayloadEncoder) Encode(a Artifact) (Payload, error) {
	enc, err := encoder.NewFlac()
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	if err := encodeBlocks(enc, a.Samples); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	return Payload{Bytes: enc.Bytes(), Filename: "audio.flac", MIME: "audio/flac"}, nil
}

type wavPayloadEncoder struct{}

func (wavPayloadEncoder) Encode(a Artifact) (Payload, error) {
	enc, err := encoder.NewWav()
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	if err := encodeBlocks(enc, a.Samples); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}
	return Payload{Bytes: enc.Bytes(), Filename: "audio.wav", MIME: "audio/wav"}, nil
}

func encodeBlocks(enc encoder.Encoder, samples []int16) error {
	for off := 0; off < len(samples); off += encoder.BlockSize {
		end := off + encoder.BlockSize
		if end > len(samples) {
			end = len(samples)
		}
		if err := enc.EncodeBlock(samples[off:end]); err != nil {
			return err
		}
	}
	return enc.Close()
}
