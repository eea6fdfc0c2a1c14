package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"github.com/shiliao/dietplan/internal/ports/outbound"
)

//go:embed data/diet_helper_data.json
var defaultCatalog []byte

// Default parses the catalog shipped with the binary
func Default() (*outbound.CatalogSnapshot, error) {
	return ParseHelperData(bytes.NewReader(defaultCatalog))
}

// FileSource loads the catalog from a file, or from the embedded default
// catalog when no path is configured.
type FileSource struct {
	path string
}

var _ outbound.CatalogSource = (*FileSource)(nil)

// NewFileSource creates a file-backed catalog source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name identifies the source in logs
func (s *FileSource) Name() string {
	if s.path == "" {
		return "embedded"
	}
	return "file:" + s.path
}

// LoadSnapshot reads and parses the catalog
func (s *FileSource) LoadSnapshot(ctx context.Context) (*outbound.CatalogSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.path == "" {
		snapshot, err := Default()
		if err != nil {
			return nil, fmt.Errorf("embedded catalog: %w", err)
		}
		return snapshot, nil
	}
	return LoadFile(s.path)
}
