package audioproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sineish fills a buffer with a deterministic non-silent sample pattern.
func sineish(n int) []int {
	samples := make([]int, n)
	for i := range samples {
		samples[i] = (i%200 - 100) * 50
	}
	return samples
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	samples := sineish(CanonicalSampleRate) // one second

	encoded := EncodeWAV(samples, CanonicalSampleRate)

	decoded, format, err := DecodePCM(encoded)
	require.NoError(t, err)
	assert.Equal(t, CanonicalSampleRate, format.SampleRate)
	assert.Equal(t, CanonicalChannels, format.Channels)
	assert.Equal(t, CanonicalBitDepth, format.BitDepth)
	assert.Equal(t, samples, decoded)
}

func TestProbeWAVReportsFormat(t *testing.T) {
	encoded := EncodeWAV(sineish(800), 8000)

	format, err := ProbeWAV(encoded)
	require.NoError(t, err)
	assert.Equal(t, 8000, format.SampleRate)
	assert.Equal(t, 1, format.Channels)
	assert.Equal(t, 16, format.BitDepth)
	assert.False(t, format.IsCanonical())
}

func TestProbeWAVRejectsGarbage(t *testing.T) {
	_, err := ProbeWAV([]byte("definitely not audio data"))
	assert.Error(t, err)
}

func TestEncodeWAVClampsOutOfRangeSamples(t *testing.T) {
	encoded := EncodeWAV([]int{40000, -40000}, CanonicalSampleRate)

	decoded, _, err := DecodePCM(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, 32767, decoded[0])
	assert.Equal(t, -32768, decoded[1])
}

func TestFormatIsCanonical(t *testing.T) {
	assert.True(t, Format{SampleRate: 16000, Channels: 1, BitDepth: 16}.IsCanonical())
	assert.False(t, Format{SampleRate: 44100, Channels: 1, BitDepth: 16}.IsCanonical())
	assert.False(t, Format{SampleRate: 16000, Channels: 2, BitDepth: 16}.IsCanonical())
	assert.False(t, Format{SampleRate: 16000, Channels: 1, BitDepth: 24}.IsCanonical())
}
