// Package ffmpeg wraps the ffmpeg and ffprobe binaries for in-memory audio
// probing and transcoding. Audio moves through stdin/stdout pipes; no
// temporary files are written.
package ffmpeg

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// Spec describes the target PCM layout for a transcode.
type Spec struct {
	SampleRate int
	Channels   int
}

// ProbeInfo holds the subset of ffprobe output the pipeline cares about.
type ProbeInfo struct {
	FormatName string
	Duration   float64
	SampleRate int
	Channels   int
}

// ffprobeOutput mirrors the ffprobe JSON document.
type ffprobeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// Transcoder shells out to ffmpeg/ffprobe.
type Transcoder struct{}

// New returns a Transcoder. It does not verify the binaries exist; use
// Available for that.
func New() *Transcoder { return &Transcoder{} }

// Available reports whether the ffmpeg binary can be found on PATH.
func (t *Transcoder) Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// Probe runs ffprobe over in-memory audio bytes and returns stream info.
// An error means ffprobe could not decode the input as audio at all.
func (t *Transcoder) Probe(data []byte) (*ProbeInfo, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"pipe:0",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %v\nStderr: %s", err, stderr.String())
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("error unmarshalling ffprobe output: %v", err)
	}

	info := &ProbeInfo{FormatName: out.Format.FormatName}
	if out.Format.Duration != "" {
		d, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err == nil {
			info.Duration = d
		}
	}

	for _, s := range out.Streams {
		if s.CodecType != "audio" {
			continue
		}
		info.Channels = s.Channels
		if sr, err := strconv.Atoi(s.SampleRate); err == nil {
			info.SampleRate = sr
		}
		break
	}

	if info.Channels == 0 {
		return nil, fmt.Errorf("ffprobe found no audio stream (format: %s)", info.FormatName)
	}

	return info, nil
}

// Transcode converts arbitrary audio bytes to 16-bit PCM WAV with the given
// sample rate and channel count. A non-zero exit or stream error is returned
// with ffmpeg's stderr attached.
func (t *Transcoder) Transcode(data []byte, spec Spec) ([]byte, error) {
	cmd := exec.Command("ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-f", "wav",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(spec.SampleRate),
		"-ac", strconv.Itoa(spec.Channels),
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg transcode failed: %v\nStderr: %s", err, stderr.String())
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output\nStderr: %s", stderr.String())
	}

	return stdout.Bytes(), nil
}
