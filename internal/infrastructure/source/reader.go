// Package source reads definition files from disk and writes them back.
package source

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"runtime"
	"sort"
	"strings"

	"github.com/reglet-dev/defimport/internal/application/ports"
	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/validation"
	"golang.org/x/sync/errgroup"
)

// Ensure interface compliance
var _ ports.DefinitionSource = (*XMLReader)(nil)

// FileExtension is the extension of definition files. Other files are ignored.
const FileExtension = ".xml"

// ErrNoDefinitionFiles is returned when a directory holds no definition files.
var ErrNoDefinitionFiles = errors.New("no definition files found")

// XMLReader parses definition files.
type XMLReader struct {
	logger *slog.Logger
	// maxConcurrency bounds parallel file parsing. Zero means GOMAXPROCS.
	maxConcurrency int
}

// NewXMLReader creates a new definition file reader.
func NewXMLReader(maxConcurrency int, logger *slog.Logger) *XMLReader {
	if logger == nil {
		logger = slog.Default()
	}
	if maxConcurrency <= 0 {
		maxConcurrency = runtime.GOMAXPROCS(0)
	}
	return &XMLReader{logger: logger, maxConcurrency: maxConcurrency}
}

type fileResult struct {
	parsed  *entities.ParsedDefinition
	failure *validation.Message
}

// ReadDirectory parses every definition file under dir, recursively.
//
// Files that fail to parse and base names used by more than one file are
// reported through an *entities.DefinitionValidationError returned together
// with the definitions that did parse. Any other error aborts the read.
func (r *XMLReader) ReadDirectory(ctx context.Context, dir string) ([]*entities.ParsedDefinition, error) {
	// Security: Use os.OpenRoot to prevent path traversal attacks
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open definition directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	files, err := listDefinitionFiles(root.FS())
	if err != nil {
		return nil, fmt.Errorf("failed to list definition files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoDefinitionFiles)
	}

	var messages []validation.Message
	for _, dup := range duplicateBaseNames(files) {
		messages = append(messages, validation.NewError(validation.KindDuplicatedFileName, "", strings.Join(dup, ", ")))
	}

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrency)

	for i, name := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := root.ReadFile(name)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", name, err)
			}
			parsed, err := parse(path.Base(name), data)
			if err != nil {
				msg := validation.NewError(validation.KindXMLParsingFailure, "", path.Base(name), err.Error())
				results[i] = fileResult{failure: &msg}
				return nil
			}
			parsed.Definition.SourceFile = parsed.FileName
			parsed.Definition.SourceContent = string(data)
			results[i] = fileResult{parsed: parsed}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	parsed := make([]*entities.ParsedDefinition, 0, len(files))
	for _, res := range results {
		if res.failure != nil {
			messages = append(messages, *res.failure)
			continue
		}
		parsed = append(parsed, res.parsed)
	}

	r.logger.Debug("definition files read", "directory", dir, "files", len(files), "failures", len(messages))
	if len(messages) > 0 {
		return parsed, entities.NewDefinitionValidationError(messages...)
	}
	return parsed, nil
}

// ParseContent parses a stored content row. The result carries no source
// markers, so it is never treated as part of the current import by itself.
func (r *XMLReader) ParseContent(_ context.Context, content entities.DefinitionContent) (*entities.ParsedDefinition, error) {
	parsed, err := parse(content.FileName, []byte(content.Content))
	if err != nil {
		return nil, entities.NewDefinitionValidationError(
			validation.NewError(validation.KindXMLParsingFailure, content.Identifier, content.FileName, err.Error()))
	}
	return parsed, nil
}

func parse(fileName string, data []byte) (*entities.ParsedDefinition, error) {
	var doc xmlDefinition
	decoder := xml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.ID) == "" {
		return nil, errors.New("definition has no id attribute")
	}
	return doc.toParsed(fileName), nil
}

// listDefinitionFiles returns the slash-separated paths of every definition
// file in fsys, sorted.
func listDefinitionFiles(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(p), FileExtension) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	sort.Strings(files)
	return files, err
}

// duplicateBaseNames groups paths sharing a base name.
func duplicateBaseNames(files []string) [][]string {
	byBase := make(map[string][]string)
	var order []string
	for _, f := range files {
		base := path.Base(f)
		if _, ok := byBase[base]; !ok {
			order = append(order, base)
		}
		byBase[base] = append(byBase[base], f)
	}

	var dups [][]string
	for _, base := range order {
		if len(byBase[base]) > 1 {
			dups = append(dups, byBase[base])
		}
	}
	return dups
}
