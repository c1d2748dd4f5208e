// Package pyannote implements diarize.Engine against a Pyannote HTTP
// sidecar, which hosts the pretrained model and its device placement.
package pyannote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Korak-997/emma-wave/internal/diarize"
)

const (
	defaultBaseURL = "http://localhost:8388"
	defaultTimeout = 300 * time.Second
)

// Config holds connection settings for the Pyannote sidecar.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Engine talks to the Pyannote sidecar over HTTP.
type Engine struct {
	cfg    Config
	client *http.Client
}

// New creates a Pyannote engine. Zero-value config fields fall back to
// localhost defaults.
func New(cfg Config) *Engine {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Engine{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// IsAvailable checks the sidecar's health endpoint. A false return at process
// start is the ModelUnavailable condition: the server must not come up.
func (e *Engine) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Diarize uploads canonical WAV audio as multipart form data and decodes the
// sidecar's segment list.
func (e *Engine) Diarize(ctx context.Context, audio []byte) (*diarize.Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("create multipart field: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/diarize", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diarization request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("diarization sidecar returned %d: %s", resp.StatusCode, msg)
	}

	var result diarize.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode diarization response: %w", err)
	}

	return &result, nil
}
