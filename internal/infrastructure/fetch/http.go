package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/toxscope/toxscope/pkg/errors"
)

// HTTPConfig holds HTTP backend parameters.
type HTTPConfig struct {
	// BaseURL is prepended to every resource name.
	BaseURL string `mapstructure:"base_url"`

	// Timeout bounds a single fetch end to end.
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxBodySize caps the accepted response size in bytes.
	MaxBodySize int64 `mapstructure:"max_body_size"`
}

type httpFetcher struct {
	base   string
	client *http.Client
	maxLen int64
}

// NewHTTPFetcher builds a Fetcher over HTTP(S) resources rooted at
// cfg.BaseURL.
func NewHTTPFetcher(cfg HTTPConfig) (Fetcher, error) {
	if cfg.BaseURL == "" {
		return nil, errors.Validation("http fetcher requires a base URL")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid base URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxLen := cfg.MaxBodySize
	if maxLen <= 0 {
		maxLen = 64 << 20
	}
	return &httpFetcher{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{Timeout: timeout},
		maxLen: maxLen,
	}, nil
}

func (f *httpFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	target := f.base + "/" + strings.TrimLeft(name, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetLoad, "failed to build request").WithDetail(target)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Cancelled("fetch cancelled").WithCause(err)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatasetLoad, "resource fetch failed").WithDetail(target)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		code := errors.ErrCodeDatasetLoad
		if resp.StatusCode == http.StatusNotFound {
			code = errors.ErrCodeNotFound
		}
		return nil, errors.Newf(code, "resource fetch returned status %d", resp.StatusCode).WithDetail(target)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxLen))
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Cancelled("fetch cancelled").WithCause(err)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatasetLoad, "failed to read response body").WithDetail(target)
	}
	return data, nil
}
