package dgedata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utils "gitlab.com/Grouumf/DGEvignettes/DGEUtils"
)

func TestDefaultRegistry(t *testing.T) {
	registry, err := DefaultRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{"pca", "wrangling"}, registry.Labels())

	dataset, err := registry.Lookup("wrangling")
	require.NoError(t, err)
	assert.Equal(t, "wrangling", dataset.Label)
	assert.Equal(t, "matrix.mtx.gz", dataset.Matrix)
	assert.Len(t, dataset.FileNames(), 5)

	dataset, err = registry.Lookup("pca")
	require.NoError(t, err)
	assert.Equal(t, []string{"dge_matrix.tsv"}, dataset.FileNames())
}

func TestLookupUnknownLabel(t *testing.T) {
	registry, err := DefaultRegistry()
	require.NoError(t, err)

	_, err = registry.Lookup("tutorial")

	var labelErr *utils.UnrecognizedLabelError
	require.True(t, errors.As(err, &labelErr))
	assert.Equal(t, "tutorial", labelErr.Label)
	assert.Equal(t, []string{"pca", "wrangling"}, labelErr.Known)
}

func TestFetchUnknownLabelWritesNothing(t *testing.T) {
	registry, err := DefaultRegistry()
	require.NoError(t, err)

	baseDir := t.TempDir()
	logger, _ := test.NewNullLogger()
	fetcher := NewFetcher(baseDir, registry, logger)

	_, err = fetcher.Fetch(context.Background(), "tutorial")

	var labelErr *utils.UnrecognizedLabelError
	require.True(t, errors.As(err, &labelErr))

	entries, err := os.ReadDir(baseDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func userRegistry(t *testing.T, sourceDir string) *Registry {
	t.Helper()

	fname := filepath.Join(t.TempDir(), "registry.yaml")
	content := "defaults:\n  baseURL: file://" + sourceDir + "\n" +
		"datasets:\n  pca:\n    dense: small.tsv\n"
	require.NoError(t, os.WriteFile(fname, []byte(content), 0644))

	registry, err := LoadRegistry(fname)
	require.NoError(t, err)

	return registry
}

func TestFetchFromMirror(t *testing.T) {
	sourceDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "small.tsv"),
		[]byte("gene\tW1\ng1\t5\n"), 0644))

	registry := userRegistry(t, sourceDir)
	assert.Equal(t, "file://"+sourceDir, registry.Defaults.BaseURL)
	assert.Equal(t, "DGE plate", registry.Defaults.Description)

	baseDir := t.TempDir()
	logger, _ := test.NewNullLogger()
	fetcher := NewFetcher(baseDir, registry, logger)

	dataset, err := fetcher.Fetch(context.Background(), "pca")
	require.NoError(t, err)

	local := filepath.Join(baseDir, "pca", "small.tsv")
	assert.Equal(t, local, dataset.Dense)

	content, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "gene\tW1\ng1\t5\n", string(content))

	// already present files are not downloaded again
	require.NoError(t, os.Remove(filepath.Join(sourceDir, "small.tsv")))
	_, err = fetcher.Fetch(context.Background(), "pca")
	assert.NoError(t, err)
}

func TestFetchWithoutBaseURL(t *testing.T) {
	registry, err := DefaultRegistry()
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	fetcher := NewFetcher(t.TempDir(), registry, logger)

	_, err = fetcher.Fetch(context.Background(), "pca")
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	registry, err := DefaultRegistry()
	require.NoError(t, err)

	fetcher := NewFetcher("/data", registry, nil)

	dataset, err := fetcher.Paths("wrangling")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "wrangling", "genes.tsv"), dataset.Genes)
	assert.Equal(t, "", dataset.Dense)
}
