package clipstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local stores clips on the local filesystem. References are URLs under the
// service's own /audio route.
type Local struct {
	dir     string
	urlBase string
}

// NewLocal creates a Local store rooted at dir. urlBase is the public prefix
// clips are served from, e.g. "http://localhost:7000/audio".
func NewLocal(dir, urlBase string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve clip directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create clip directory: %w", err)
	}
	return &Local{dir: abs, urlBase: urlBase}, nil
}

// Dir returns the absolute directory clips are written to.
func (l *Local) Dir() string { return l.dir }

// Save writes data to dir/name and returns the serving URL.
func (l *Local) Save(_ context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(l.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write clip file: %w", err)
	}
	return l.urlBase + "/" + filepath.Base(name), nil
}
