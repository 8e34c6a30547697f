package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"salestats/internal/core"
)

// FileSource reads records from a local JSON document in the upstream format.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string { return "file:" + s.path }

func (s *FileSource) Fetch(_ context.Context) ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read seed file: %w", core.ErrStoreUnavailable, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decode seed file %s: %v", core.ErrInvalidRecord, s.path, err)
	}
	return records, nil
}
