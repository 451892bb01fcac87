package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kirillkom/resume-screener/internal/core/domain"
)

// Source reads artifacts from a directory on local disk.
type Source struct {
	basePath string
}

func New(basePath string) (*Source, error) {
	if basePath == "" {
		basePath = "./artifacts"
	}
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrMissingArtifact, "open artifact dir", err)
	}
	if !info.IsDir() {
		return nil, domain.WrapError(domain.ErrMissingArtifact, "open artifact dir", fmt.Errorf("%s is not a directory", basePath))
	}
	return &Source{basePath: basePath}, nil
}

func (s *Source) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !filepath.IsLocal(key) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open artifact", fmt.Errorf("key %q escapes %s", key, s.basePath))
	}

	path := filepath.Join(s.basePath, key)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.WrapError(domain.ErrMissingArtifact, "open artifact", fmt.Errorf("%s: %w", path, err))
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *Source) String() string {
	return "file://" + s.basePath
}
