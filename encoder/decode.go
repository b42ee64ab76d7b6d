package encoder

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mewkiz/flac"
)

// Decoded holds PCM16 pulled back out of a container, ready for a playback
// device.
type Decoded struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

func (d Decoded) DurationSeconds() float64 {
	if d.SampleRate == 0 || d.Channels == 0 {
		return 0
	}
	return float64(len(d.Samples)/d.Channels) / float64(d.SampleRate)
}

// Decode sniffs the container by magic bytes and decodes WAV or FLAC.
// Anything else is rejected; the backend is asked for these formats only.
func Decode(data []byte) (Decoded, error) {
	switch {
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("RIFF")):
		return DecodeWav(data)
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("fLaC")):
		return DecodeFlac(data)
	default:
		return Decoded{}, fmt.Errorf("unsupported audio container (%d bytes)", len(data))
	}
}

func DecodeWav(data []byte) (Decoded, error) {
	if len(data) < wavHeaderSize {
		return Decoded{}, fmt.Errorf("wav too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[8:12], []byte("WAVE")) {
		return Decoded{}, fmt.Errorf("not a WAVE file")
	}

	format := binary.LittleEndian.Uint16(data[20:22])
	if format != 1 {
		return Decoded{}, fmt.Errorf("unsupported wav format %d (want PCM)", format)
	}
	channels := int(binary.LittleEndian.Uint16(data[22:24]))
	sampleRate := int(binary.LittleEndian.Uint32(data[24:28]))
	bits := binary.LittleEndian.Uint16(data[34:36])
	if bits != 16 {
		return Decoded{}, fmt.Errorf("unsupported wav bit depth %d", bits)
	}

	// Walk chunks from offset 12 to find "data"; simple writers (including
	// ours) put it right after fmt, but some insert LIST chunks.
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		if id == "data" {
			end := pos + 8 + size
			if end > len(data) {
				end = len(data)
			}
			pcm := data[pos+8 : end]
			samples := make([]int16, len(pcm)/2)
			for i := range samples {
				samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
			}
			return Decoded{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
		}
		pos += 8 + size
		if size%2 == 1 {
			pos++
		}
	}
	return Decoded{}, fmt.Errorf("wav has no data chunk")
}

func DecodeFlac(data []byte) (Decoded, error) {
	stream, err := flac.Parse(bytes.NewReader(data))
	if err != nil {
		return Decoded{}, fmt.Errorf("parsing flac: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	out := Decoded{
		SampleRate: int(info.SampleRate),
		Channels:   int(info.NChannels),
	}

	for {
		f, err := stream.ParseNext()
		if err != nil {
			break
		}
		n := f.Subframes[0].NSamples
		for i := 0; i < n; i++ {
			for _, sub := range f.Subframes {
				s := sub.Samples[i]
				if s > 32767 {
					s = 32767
				} else if s < -32768 {
					s = -32768
				}
				out.Samples = append(out.Samples, int16(s))
			}
		}
	}

	if len(out.Samples) == 0 {
		return Decoded{}, fmt.Errorf("flac stream has no frames")
	}
	return out, nil
}
