package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chekinn/encoder"
)

func testArtifact(samples int) Artifact {
	s := make([]int16, samples)
	for i := range s {
		s[i] = int16(i % 2048)
	}
	return Artifact{Samples: s, SampleRate: encoder.SampleRate}
}

func TestWavPayloadRoundTrip(t *testing.T) {
	art := testArtifact(encoder.BlockSize*2 + 137)

	p, err := wavPayloadEncoder{}.Encode(art)
	require.NoError(t, err)
	assert.Equal(t, "audio.wav", p.Filename)
	assert.Equal(t, "audio/wav", p.MIME)

	dec, err := encoder.Decode(p.Bytes)
	require.NoError(t, err)
	assert.Equal(t, art.Samples, dec.Samples)
	assert.Equal(t, encoder.SampleRate, dec.SampleRate)
}

func TestFlacPayloadRoundTrip(t *testing.T) {
	art := testArtifact(encoder.BlockSize + 55)

	p, err := flacPayloadEncoder{}.Encode(art)
	require.NoError(t, err)
	assert.Equal(t, "audio.flac", p.Filename)
	assert.Equal(t, "audio/flac", p.MIME)

	dec, err := encoder.Decode(p.Bytes)
	require.NoError(t, err)
	assert.Equal(t, art.Samples, dec.Samples)
}

func TestPayloadEncoderMatchesBackend(t *testing.T) {
	p := NewPayloadEncoder()
	assert.NotNil(t, p)
}
