package catalog

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
)

// FileSource reads a newline separated export of gallery values.
type FileSource struct {
	fs   afero.Fs
	path string
}

// NewFileSource creates a source reading path on fs.
func NewFileSource(fs afero.Fs, path string) *FileSource {
	return &FileSource{fs: fs, path: path}
}

// Name implements Source.
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) ([]string, error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file: %w", err)
	}
	defer f.Close()

	ids, err := readLines(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference file %s: %w", s.path, err)
	}
	return ids, ctx.Err()
}
