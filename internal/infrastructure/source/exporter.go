package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/reglet-dev/defimport/internal/application/ports"
	"github.com/reglet-dev/defimport/internal/domain/entities"
)

// Ensure interface compliance
var _ ports.DefinitionExporter = (*FileExporter)(nil)

// FileExporter writes stored definition content back to files.
type FileExporter struct {
	logger *slog.Logger
}

// NewFileExporter creates a new exporter.
func NewFileExporter(logger *slog.Logger) *FileExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileExporter{logger: logger}
}

// Export writes each content row to a file named by its stored file name.
// When dir is empty a fresh temporary directory is created. It returns the
// directory used and the paths written.
func (e *FileExporter) Export(ctx context.Context, dir string, contents []entities.DefinitionContent) (string, []string, error) {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "defimport-export-")
		if err != nil {
			return "", nil, fmt.Errorf("failed to create export directory: %w", err)
		}
		dir = tmp
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	// Security: Use os.OpenRoot so stored file names cannot escape dir
	root, err := os.OpenRoot(dir)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open export directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	files := make([]string, 0, len(contents))
	for _, c := range contents {
		if err := ctx.Err(); err != nil {
			return dir, files, err
		}
		name := c.FileName
		if name == "" {
			name = c.Identifier + FileExtension
		}
		if err := root.WriteFile(name, []byte(c.Content), 0o600); err != nil {
			return dir, files, fmt.Errorf("failed to write %s: %w", name, err)
		}
		files = append(files, filepath.Join(dir, name))
		e.logger.Debug("definition exported", "definition", c.Identifier, "file", name)
	}
	return dir, files, nil
}
