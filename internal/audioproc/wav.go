// Package audioproc handles the canonical audio format: single-channel,
// 16-bit linear PCM at 16 kHz, carried in WAV framing.
package audioproc

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-audio/wav"
)

const (
	// CanonicalSampleRate is the sample rate every pipeline stage assumes.
	CanonicalSampleRate = 16000
	// CanonicalChannels is the channel count of canonical audio.
	CanonicalChannels = 1
	// CanonicalBitDepth is the bit depth of canonical audio.
	CanonicalBitDepth = 16

	wavHeaderSize = 44
)

// Format describes a decoded WAV stream's layout.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// IsCanonical reports whether the format matches the canonical layout.
func (f Format) IsCanonical() bool {
	return f.SampleRate == CanonicalSampleRate &&
		f.Channels == CanonicalChannels &&
		f.BitDepth == CanonicalBitDepth
}

// ProbeWAV parses only the WAV headers of data and returns the stream format.
// It fails if data is not a readable WAV container.
func ProbeWAV(data []byte) (Format, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return Format{}, fmt.Errorf("not a valid WAV container")
	}
	d.ReadInfo()
	return Format{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}, nil
}

// DecodePCM decodes a WAV byte stream into its full PCM sample buffer.
// Returns the samples, the source format, and an error if decoding fails.
func DecodePCM(data []byte) ([]int, Format, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, Format{}, fmt.Errorf("not a valid WAV container")
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, Format{}, fmt.Errorf("decoding PCM data: %w", err)
	}

	format := Format{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   int(d.BitDepth),
	}
	return buf.Data, format, nil
}

// EncodeWAV writes 16-bit PCM samples into a self-contained mono WAV byte
// slice with proper RIFF headers, so each clip is independently playable.
func EncodeWAV(samples []int, sampleRate int) []byte {
	dataLen := len(samples) * 2
	buf := make([]byte, wavHeaderSize+dataLen)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(wavHeaderSize+dataLen-8))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // linear PCM
	binary.LittleEndian.PutUint16(buf[22:24], CanonicalChannels)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2)) // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], 2)                    // block align
	binary.LittleEndian.PutUint16(buf[34:36], CanonicalBitDepth)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	for i, s := range samples {
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		binary.LittleEndian.PutUint16(buf[wavHeaderSize+i*2:], uint16(int16(s)))
	}

	return buf
}
