package download

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadCreatesParentsAndWritesFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "acme", "P-1-A_B", "5-x.png")
	src := &countingSource{body: "png-bytes"}

	result, err := New().Download(context.Background(), src, dest)
	require.NoError(t, err)
	assert.Equal(t, Downloaded, result)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.NoFileExists(t, dest+partSuffix)
}

func TestDownloadTwiceSkipsWithoutNetwork(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "5-x.png")
	src := &countingSource{body: "png-bytes"}
	d := New()

	first, err := d.Download(context.Background(), src, dest)
	require.NoError(t, err)
	second, err := d.Download(context.Background(), src, dest)
	require.NoError(t, err)

	assert.Equal(t, Downloaded, first)
	assert.Equal(t, Skipped, second)
	assert.Equal(t, 1, src.opens)
}

func TestDownloadSkipsExistingFileContents(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "5-x.png")
	require.NoError(t, os.WriteFile(dest, []byte("local"), 0o644))
	src := &countingSource{body: "remote"}

	result, err := New().Download(context.Background(), src, dest)
	require.NoError(t, err)
	assert.Equal(t, Skipped, result)
	assert.Zero(t, src.opens)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))
}

func TestDownloadOpenFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "acme", "5-x.png")
	src := SourceFunc(func(context.Context) (io.ReadCloser, error) {
		return nil, errors.New("connection refused")
	})

	_, err := New().Download(context.Background(), src, dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransfer)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoDirExists(t, filepath.Join(dir, "acme"))
}

func TestDownloadTruncatedTransferIsRetriedNextRun(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "5-x.png")
	broken := SourceFunc(func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(io.MultiReader(strings.NewReader("half"), failingReader{})), nil
	})

	_, err := New().Download(context.Background(), broken, dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransfer)
	assert.NoFileExists(t, dest)
	assert.NoFileExists(t, dest+partSuffix)

	src := &countingSource{body: "whole"}
	result, err := New().Download(context.Background(), src, dest)
	require.NoError(t, err)
	assert.Equal(t, Downloaded, result)
}

func TestDownloadIgnoresStalePartFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "5-x.png")
	require.NoError(t, os.WriteFile(dest+partSuffix, []byte("stale"), 0o644))
	src := &countingSource{body: "fresh"}

	result, err := New().Download(context.Background(), src, dest)
	require.NoError(t, err)
	assert.Equal(t, Downloaded, result)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
}

func TestDownloadRejectsDirectoryAtPath(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "5-x.png")
	require.NoError(t, os.Mkdir(dest, 0o755))
	src := &countingSource{body: "x"}

	_, err := New().Download(context.Background(), src, dest)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTransfer)
	assert.Zero(t, src.opens)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "downloaded", Downloaded.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "unknown", Result(0).String())
}

type countingSource struct {
	body  string
	opens int
}

func (s *countingSource) Open(context.Context) (io.ReadCloser, error) {
	s.opens++
	return io.NopCloser(strings.NewReader(s.body)), nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
