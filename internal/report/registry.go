package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"
)

const timestampLayout = "20060102_150405"

var filePrefixes = map[string]string{
	FormatPDF: "inventory_report",
	FormatCSV: "inventory_export",
}

// Registry holds the enabled renderers and writes their output into a directory.
type Registry struct {
	mu        sync.RWMutex
	dir       string
	renderers map[string]Renderer
	now       func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces the clock used for file names.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry writing into dir.
func NewRegistry(dir string, opts ...Option) *Registry {
	r := &Registry{
		dir:       dir,
		renderers: make(map[string]Renderer),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register makes renderer available under its format, replacing any previous one.
func (r *Registry) Register(renderer Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[renderer.Format()] = renderer
}

// Available reports whether format can be exported.
func (r *Registry) Available(format string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.renderers[format]
	return ok
}

// Formats lists the registered formats.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]string, 0, len(r.renderers))
	for _, f := range []string{FormatPDF, FormatCSV} {
		if _, ok := r.renderers[f]; ok {
			formats = append(formats, f)
		}
	}
	for f := range r.renderers {
		if _, known := filePrefixes[f]; !known {
			formats = append(formats, f)
		}
	}
	return formats
}

// Export renders rows with the format's renderer and returns the path of the written file.
// A zero meta.GeneratedAt is replaced by the registry clock.
func (r *Registry) Export(format string, rows []Row, meta Meta) (string, error) {
	r.mu.RLock()
	renderer, ok := r.renderers[format]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRendererUnavailable, format)
	}
	if len(rows) == 0 {
		return "", ErrNothingToReport
	}
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = r.now()
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, rows, meta); err != nil {
		return "", err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", r.dir, err)
	}
	path := filepath.Join(r.dir, FileName(format, meta.GeneratedAt))
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}

// FileName returns the timestamped file name of a report, e.g. inventory_report_20250102_150405.pdf.
func FileName(format string, at time.Time) string {
	prefix, ok := filePrefixes[format]
	if !ok {
		prefix = "inventory_" + format
	}
	return fmt.Sprintf("%s_%s.%s", prefix, at.Format(timestampLayout), format)
}
