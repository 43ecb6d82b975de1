package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wenyunvip/ai-daily-digest/internal/domain"
	"github.com/wenyunvip/ai-daily-digest/internal/ports"
)

// File writes the rendered digest as a dated markdown file under dir,
// plus a latest.md symlink-free copy for tooling that wants a fixed path.
type File struct {
	dir    string
	logger *slog.Logger
}

var _ ports.Exporter = (*File)(nil)

func NewFile(dir string, logger *slog.Logger) *File {
	return &File{dir: dir, logger: logger}
}

func (f *File) Name() string { return "file" }

func (f *File) Export(ctx context.Context, doc domain.Document) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("export file: %w", err)
	}

	name := fmt.Sprintf("digest-%s.md", doc.GeneratedAt.Format("2006-01-02"))
	path := filepath.Join(f.dir, name)
	if err := os.WriteFile(path, []byte(doc.Markdown), 0o644); err != nil {
		return fmt.Errorf("export file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(f.dir, "latest.md"), []byte(doc.Markdown), 0o644); err != nil {
		return fmt.Errorf("export file: %w", err)
	}

	if f.logger != nil {
		f.logger.Info("digest written", "path", path)
	}
	return nil
}
