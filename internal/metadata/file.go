package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
)

// FileSource is a metadata source backed by a JSON array of records.
type FileSource struct {
	Path string
}

// Records reads every record from the file.
func (f FileSource) Records(ctx context.Context) ([]domain.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found", domain.ErrMetadataUnavailable, f.Path)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMetadataUnavailable, err)
	}
	var recs []domain.Metadata
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrMetadataUnavailable, f.Path, err)
	}
	return recs, nil
}

// Write replaces the file with recs.
func (f FileSource) Write(recs []domain.Metadata) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	if recs == nil {
		recs = []domain.Metadata{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o644)
}
