// Package download retrieves task output assets and unpacks them.
package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/mholt/archives"
	"github.com/sirupsen/logrus"

	"github.com/hotosm/scaleodm-go/client"
)

// functions for mocking
var (
	mkdirAllFn  = os.MkdirAll
	createFn    = os.Create
	copyFn      = io.Copy
	removeAllFn = os.RemoveAll
	extractFn   = extractZip
)

// AssetClient is the slice of the task client the downloader needs.
type AssetClient interface {
	DownloadAsset(ctx context.Context, uuid, asset string) (io.ReadCloser, error)
}

// Downloader fetches task assets to a local directory. Zip archives are
// extracted in place and zstd-compressed payloads are decompressed.
type Downloader struct {
	client AssetClient
	dir    string // top-level download directory
}

// New returns a downloader which places everything under dir.
func New(c AssetClient, dir string) *Downloader {
	return &Downloader{client: c, dir: dir}
}

// Fetch downloads the named asset of a task and returns the local path of the
// result: the extraction directory for archives, the file path otherwise.
// Partial output is removed on failure so the fetch can be retried.
func (d *Downloader) Fetch(ctx context.Context, uuid, asset string) (string, error) {
	dest := filepath.Join(d.dir, uuid)
	if err := mkdirAllFn(dest, 0777); err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"uuid":        uuid,
		"asset":       asset,
		"destination": dest,
	}).Debug("downloading task asset")

	body, err := d.client.DownloadAsset(ctx, uuid, asset)
	if err != nil {
		return "", err
	}
	defer body.Close()

	path := filepath.Join(dest, asset)
	out, err := createFn(path)
	if err != nil {
		return "", fmt.Errorf("failed to create asset file: %w", err)
	}
	_, err = copyFn(out, body)
	out.Close()
	if err != nil {
		removeAllFn(dest)
		return "", fmt.Errorf("failed to write asset file: %w", err)
	}

	if strings.HasSuffix(path, ".zst") {
		if path, err = decompressFile(path); err != nil {
			removeAllFn(dest)
			return "", fmt.Errorf("failed to decompress asset [%s]: %w", asset, err)
		}
	}

	if strings.HasSuffix(path, ".zip") {
		if err := extractFn(ctx, path, dest); err != nil {
			removeAllFn(dest)
			return "", fmt.Errorf("failed to extract asset [%s]: %w", asset, err)
		}
		return dest, nil
	}
	return path, nil
}

// decompressFile decompresses a zstd file and removes the compressed
// original. It returns the path without the .zst extension.
func decompressFile(path string) (string, error) {
	compressed, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer compressed.Close()

	decoder, err := zstd.NewReader(compressed)
	if err != nil {
		return "", err
	}
	defer decoder.Close()

	target := strings.TrimSuffix(path, ".zst")
	out, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, decoder.IOReadCloser()); err != nil {
		return "", err
	}
	os.Remove(path)
	return target, nil
}

// extractZip unpacks a zip archive into dest and removes the archive.
func extractZip(ctx context.Context, path, dest string) error {
	archive, err := os.Open(path)
	if err != nil {
		return err
	}
	defer archive.Close()

	err = archives.Zip{}.Extract(ctx, archive, func(ctx context.Context, f archives.FileInfo) error {
		target := filepath.Join(dest, filepath.Clean(f.NameInArchive))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes destination: %s", f.NameInArchive)
		}
		if f.IsDir() {
			return os.MkdirAll(target, 0777)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0777); err != nil {
			return err
		}
		in, err := f.Open()
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, in)
		return err
	})
	if err != nil {
		return err
	}
	return os.Remove(path)
}

var _ AssetClient = (client.Client)(nil)
