package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toxscope/toxscope/internal/config"
	"github.com/toxscope/toxscope/internal/infrastructure/fetch"
	"github.com/toxscope/toxscope/pkg/errors"
)

const datasetJSON = `[
	{"id": "1", "name": "aspirin", "descriptors": {"mol_weight": 180.2}, "doses": "0.1, 1, 10", "endpoints": {}}
]`

const statsJSON = `{"mol_weight": {"min": 100, "mean": 180, "max": 600, "count": 1}}`

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "compounds.json"), []byte(datasetJSON), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stats.json"), []byte(statsJSON), 0o600))
	return dir
}

func fileConfig(root string) *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Data.Source = "file"
	cfg.Data.Root = root
	return cfg
}

func TestNewFetcherFileSource(t *testing.T) {
	dir := writeDataDir(t)
	f, err := NewFetcher(fileConfig(dir), nil, nil)
	require.NoError(t, err)

	data, err := f.Fetch(context.Background(), "compounds.json")
	require.NoError(t, err)
	assert.JSONEq(t, datasetJSON, string(data))
}

func TestNewFetcherUnknownSource(t *testing.T) {
	cfg := fileConfig(t.TempDir())
	cfg.Data.Source = "carrier-pigeon"

	_, err := NewFetcher(cfg, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestLoadDatasetFromFetcher(t *testing.T) {
	cfg := fileConfig(writeDataDir(t))
	f, err := NewFetcher(cfg, nil, nil)
	require.NoError(t, err)

	compounds, stats, err := LoadDataset(context.Background(), cfg, f, nil)
	require.NoError(t, err)
	require.Len(t, compounds, 1)
	assert.Equal(t, "aspirin", compounds[0].Name)
	assert.Len(t, stats, 1)
}

func TestLoadDatasetMissingResource(t *testing.T) {
	cfg := fileConfig(t.TempDir())
	f, err := NewFetcher(cfg, nil, nil)
	require.NoError(t, err)

	_, _, err = LoadDataset(context.Background(), cfg, f, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetLoad))
}

func TestLoadDatasetMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "compounds.json"), []byte("{not json"), 0o600))
	cfg := fileConfig(dir)
	f, err := NewFetcher(cfg, nil, nil)
	require.NoError(t, err)

	_, _, err = LoadDataset(context.Background(), cfg, f, nil)
	assert.Error(t, err)
}

func TestLoadDatasetCustomResourceNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tox.json"), []byte(datasetJSON), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "summary.json"), []byte(statsJSON), 0o600))

	cfg := fileConfig(dir)
	cfg.Data.CompoundsResource = "tox.json"
	cfg.Data.StatsResource = "summary.json"

	var f fetch.Fetcher
	f, err := NewFetcher(cfg, nil, nil)
	require.NoError(t, err)

	compounds, _, err := LoadDataset(context.Background(), cfg, f, nil)
	require.NoError(t, err)
	assert.Len(t, compounds, 1)
}
