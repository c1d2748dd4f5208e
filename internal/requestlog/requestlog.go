// Package requestlog persists one structured JSON document per processed
// request under a logs directory. Persistence is best-effort: a failed write
// is logged and never fails the request that produced the record.
package requestlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Korak-997/emma-wave/internal/clips"
	"github.com/Korak-997/emma-wave/internal/telemetry"
)

const (
	filePrefix = "log_"
	fileSuffix = ".json"
	// timeLayout keeps filenames filesystem-safe (no colons).
	timeLayout = "2006-01-02T15-04-05"
)

// Disabled is the sentinel Record returns when logging is switched off.
const Disabled = ""

// FileMetadata describes the uploaded file.
type FileMetadata struct {
	FileName      string `json:"file_name"`
	FileSizeBytes int    `json:"file_size_bytes"`
}

// MetricsReport brackets the pipeline with resource snapshots.
type MetricsReport struct {
	Before telemetry.Snapshot   `json:"before_processing"`
	During []telemetry.Snapshot `json:"during_processing,omitempty"`
	After  telemetry.Snapshot   `json:"after_processing"`
}

// Record is the append-only log document for one request. It is never
// mutated after creation.
type Record struct {
	RequestID             string                  `json:"request_id"`
	CreatedAt             time.Time               `json:"created_at"`
	File                  FileMetadata            `json:"file_metadata"`
	ProcessingTimeSeconds float64                 `json:"processing_time_seconds"`
	StepTimings           map[string]float64      `json:"step_timings"`
	SystemMetrics         *MetricsReport          `json:"system_metrics,omitempty"`
	Speakers              map[string][]clips.Clip `json:"speakers,omitempty"`
	Error                 string                  `json:"error,omitempty"`
}

// Recorder writes, lists and reads request log files.
type Recorder struct {
	dir     string
	enabled bool
	log     *logrus.Logger
}

// NewRecorder creates a Recorder rooted at dir. When enabled is false every
// Record call is a no-op returning the Disabled sentinel.
func NewRecorder(dir string, enabled bool, log *logrus.Logger) (*Recorder, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve logs directory: %w", err)
	}
	if enabled {
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return nil, fmt.Errorf("create logs directory: %w", err)
		}
	}
	return &Recorder{dir: abs, enabled: enabled, log: log}, nil
}

// Enabled reports whether request logging is switched on. Callers skip
// telemetry sampling entirely when it is off.
func (r *Recorder) Enabled() bool { return r.enabled }

// Record serializes rec to logs/log_<timestamp>_<request_id>.json and
// returns the file path. Write failures are logged locally and reported as
// an empty path; they never propagate.
func (r *Recorder) Record(rec Record) string {
	if !r.enabled {
		return Disabled
	}

	name := fmt.Sprintf("%s%s_%s%s", filePrefix, rec.CreatedAt.Format(timeLayout), rec.RequestID, fileSuffix)
	path := filepath.Join(r.dir, name)

	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		r.log.WithError(err).Error("Failed to serialize request log record")
		return Disabled
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.log.WithError(err).WithField("path", path).Error("Failed to save request log file")
		return Disabled
	}

	return path
}

// List returns the names of recognized log files in the logs directory.
func (r *Recorder) List() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list logs directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Read returns the raw contents of one log file by exact name. Names with
// path separators are rejected.
func (r *Recorder) Read(name string) ([]byte, error) {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid log filename: %s", name)
	}
	return os.ReadFile(filepath.Join(r.dir, name))
}
