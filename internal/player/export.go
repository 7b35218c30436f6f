package player

import (
	"fmt"
	"os"
	"path/filepath"
)

// Exporter persists serialized frames as uniquely named text files.
// Writes either succeed or surface the underlying I/O failure; there is
// no retry or atomicity beyond that.
type Exporter struct {
	dir string
}

// NewExporter creates an exporter targeting dir, creating it if needed.
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create export directory: %w", err)
	}
	return &Exporter{dir: dir}, nil
}

// Write persists one frame under its stream index.
func (e *Exporter) Write(index int, frame string) error {
	name := filepath.Join(e.dir, fmt.Sprintf("frame_%06d.txt", index))
	return os.WriteFile(name, []byte(frame), 0o644)
}
