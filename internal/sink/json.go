// Package sink persists collected entries as a JSON document.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pharaohanjay-gif/dado-stream/internal/scrape"
)

// JSONFile writes the full entry list to one file at end of run.
type JSONFile struct {
	path   string
	logger *zap.Logger
}

// NewJSONFile returns a sink targeting path, creating parent directories as
// needed at save time.
func NewJSONFile(path string, logger *zap.Logger) *JSONFile {
	return &JSONFile{path: path, logger: logger}
}

// Save serializes entries as an indented JSON array. A nil entry list is
// written as an empty array so the output file is always valid JSON.
func (s *JSONFile) Save(ctx context.Context, entries []scrape.VideoEntry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save canceled: %w", err)
	}
	if entries == nil {
		entries = []scrape.VideoEntry{}
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	s.logger.Info("wrote output", zap.String("path", s.path), zap.Int("entries", len(entries)))
	return nil
}
