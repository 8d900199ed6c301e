// Package download mirrors remote files to disk, skipping files that are
// already present.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrTransfer marks a download whose remote side failed or was cut short.
var ErrTransfer = errors.New("transfer failed")

// partSuffix names the in-flight file; it is never mistaken for a finished download.
const partSuffix = ".part"

type Result int

const (
	Downloaded Result = iota + 1
	Skipped
)

func (r Result) String() string {
	switch r {
	case Downloaded:
		return "downloaded"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

type SourceFunc func(ctx context.Context) (io.ReadCloser, error)

func (f SourceFunc) Open(ctx context.Context) (io.ReadCloser, error) {
	return f(ctx)
}

type Downloader struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

func New() *Downloader {
	return &Downloader{dirPerm: 0o755, filePerm: 0o644}
}

// Download writes src to localPath unless a regular file is already there, in
// which case src is never opened. Data lands in a sibling .part file first and
// is renamed into place only after the whole body was read.
func (d *Downloader) Download(ctx context.Context, src Source, localPath string) (Result, error) {
	info, err := os.Stat(localPath)
	switch {
	case err == nil && info.Mode().IsRegular():
		return Skipped, nil
	case err == nil:
		return 0, fmt.Errorf("%s exists and is not a regular file", localPath)
	case !errors.Is(err, os.ErrNotExist):
		return 0, fmt.Errorf("stat %s: %w", localPath, err)
	}

	body, err := src.Open(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrTransfer, localPath, err)
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), d.dirPerm); err != nil {
		return 0, fmt.Errorf("create directory for %s: %w", localPath, err)
	}

	partPath := localPath + partSuffix
	file, err := os.OpenFile(partPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, d.filePerm)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", partPath, err)
	}

	_, copyErr := io.Copy(file, body)
	closeErr := file.Close()
	if copyErr != nil {
		_ = os.Remove(partPath)
		return 0, fmt.Errorf("%w: %s: %w", ErrTransfer, localPath, copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(partPath)
		return 0, fmt.Errorf("write %s: %w", partPath, closeErr)
	}

	if err := os.Rename(partPath, localPath); err != nil {
		_ = os.Remove(partPath)
		return 0, fmt.Errorf("finalize %s: %w", localPath, err)
	}
	return Downloaded, nil
}
