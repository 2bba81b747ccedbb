package fetch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/toxscope/toxscope/pkg/errors"
)

type fileFetcher struct {
	root string
}

// NewFileFetcher builds a Fetcher over a local directory. Resource names are
// resolved relative to root; escapes above the root are rejected.
func NewFileFetcher(root string) (Fetcher, error) {
	if root == "" {
		return nil, errors.Validation("file fetcher requires a root directory")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid root directory")
	}
	return &fileFetcher{root: abs}, nil
}

func (f *fileFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Cancelled("fetch cancelled").WithCause(err)
	}

	full := filepath.Join(f.root, filepath.FromSlash(name))
	if !strings.HasPrefix(full, f.root+string(filepath.Separator)) && full != f.root {
		return nil, errors.Validation("resource path escapes data root").WithDetail(name)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("resource not found").WithDetail(name)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatasetLoad, "failed to read resource").WithDetail(name)
	}
	return data, nil
}
