package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/calvinalkan/school-reports/internal/report"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644

	maxBaseNameLen = 100
)

// Renderer turns a report into one concrete file format. Render validates
// the report before writing anything to w.
type Renderer interface {
	Format() Format
	Extension() string
	Render(w io.Writer, rep *report.Report) error
}

// Artifact describes a saved export.
type Artifact struct {
	ID     uuid.UUID
	Format Format
	Path   string
	Size   int
}

// Engine dispatches reports to the registered renderers and saves the
// result.
type Engine struct {
	renderers map[Format]Renderer
	log       *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithRenderer registers r, replacing the default renderer for its format.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) { e.renderers[r.Format()] = r }
}

// NewEngine returns an engine with the three default renderers registered.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		renderers: make(map[Format]Renderer, 3),
		log:       zap.NewNop(),
	}

	e.Register(NewDelimitedRenderer())
	e.Register(NewWorkbookRenderer())
	e.Register(NewDocumentRenderer())

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Register adds or replaces the renderer for r.Format().
func (e *Engine) Register(r Renderer) {
	e.renderers[r.Format()] = r
	e.log.Debug("registered renderer",
		zap.String("format", r.Format().String()),
		zap.String("extension", r.Extension()),
	)
}

// Renderer returns the renderer registered for f.
func (e *Engine) Renderer(f Format) (Renderer, error) {
	r, ok := e.renderers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}

	return r, nil
}

// Formats returns the registered formats in display order.
func (e *Engine) Formats() []Format {
	formats := make([]Format, 0, len(e.renderers))

	for _, f := range AllFormats() {
		if _, ok := e.renderers[f]; ok {
			formats = append(formats, f)
		}
	}

	return formats
}

// Render renders rep into a fresh buffer.
func (e *Engine) Render(f Format, rep *report.Report) ([]byte, error) {
	r, err := e.Renderer(f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	start := time.Now()

	renderErr := r.Render(&buf, rep)
	if renderErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, f, renderErr)
	}

	e.log.Debug("rendered report",
		zap.String("format", f.String()),
		zap.String("title", rep.Title),
		zap.Int("rows", len(rep.Rows)),
		zap.Int("bytes", buf.Len()),
		zap.Duration("took", time.Since(start)),
	)

	return buf.Bytes(), nil
}

// Export renders rep and saves it as dir/<baseName><ext>. The file is
// written atomically, so a failed export never leaves a partial file.
func (e *Engine) Export(f Format, rep *report.Report, dir, baseName string) (Artifact, error) {
	name := SanitizeFilename(baseName)
	if name == "" {
		return Artifact{}, ErrBaseNameEmpty
	}

	r, err := e.Renderer(f)
	if err != nil {
		return Artifact{}, err
	}

	data, err := e.Render(f, rep)
	if err != nil {
		return Artifact{}, err
	}

	art := Artifact{
		ID:     uuid.New(),
		Format: f,
		Path:   filepath.Join(dir, name+r.Extension()),
		Size:   len(data),
	}

	saveErr := save(art.Path, data)
	if saveErr != nil {
		e.log.Warn("export failed",
			zap.String("report_id", art.ID.String()),
			zap.String("format", f.String()),
			zap.String("path", art.Path),
			zap.Error(saveErr),
		)

		return Artifact{}, fmt.Errorf("%w: %s: %w", ErrSave, art.Path, saveErr)
	}

	e.log.Info("report exported",
		zap.String("report_id", art.ID.String()),
		zap.String("format", f.String()),
		zap.String("path", art.Path),
		zap.Int("bytes", art.Size),
	)

	return art, nil
}

func save(path string, data []byte) error {
	mkdirErr := os.MkdirAll(filepath.Dir(path), dirPerms)
	if mkdirErr != nil {
		return fmt.Errorf("create output directory: %w", mkdirErr)
	}

	writeErr := atomic.WriteFile(path, bytes.NewReader(data))
	if writeErr != nil {
		return fmt.Errorf("write file: %w", writeErr)
	}

	// atomic.WriteFile doesn't set permissions for new files
	chmodErr := os.Chmod(path, filePerms)
	if chmodErr != nil {
		return fmt.Errorf("set file permissions: %w", chmodErr)
	}

	return nil
}

// SanitizeFilename replaces path separators and other unsafe characters
// with underscores, collapses runs of them and caps the length.
func SanitizeFilename(name string) string {
	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "}

	result := strings.TrimSpace(name)
	for _, char := range unsafe {
		result = strings.ReplaceAll(result, char, "_")
	}

	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}

	result = strings.Trim(result, "_.")

	if len(result) > maxBaseNameLen {
		result = result[:maxBaseNameLen]
	}

	return result
}
